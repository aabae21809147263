package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

var keysFlags struct {
	output string
	keyID  string
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage ledger signing keys",
	Long: `Generate and manage Ed25519 keypairs for ledger signing.

Every ledger entry and export package is signed with an Ed25519 private
key. The public half is distributed to verifiers; the private half must
stay with the ledger writer.

Examples:
  # Generate a new keypair
  meridian keys generate

  # Generate with a custom key ID
  meridian keys generate --key-id "ledger-2026"`,
}

var keysGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new keypair",
	Long: `Generate a new Ed25519 keypair for ledger signing.

The generated keys are saved to PEM files with restrictive permissions:
  - Public key:  0644 (readable by all)
  - Private key: 0600 (readable only by owner)

Examples:
  # Generate a keypair with an auto-generated ID
  meridian keys generate

  # Save to a custom directory
  meridian keys generate --output /etc/meridian/keys`,
	RunE: generateKeys,
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysGenerateCmd)

	keysGenerateCmd.Flags().StringVarP(&keysFlags.output, "output", "o", "./keys", "output directory")
	keysGenerateCmd.Flags().StringVar(&keysFlags.keyID, "key-id", "", "key ID (auto-generated if empty)")
}

func generateKeys(cmd *cobra.Command, args []string) error {
	if keysFlags.keyID == "" {
		keysFlags.keyID = fmt.Sprintf("key-%d", time.Now().Unix())
	}

	fmt.Println("Generating Ed25519 keypair...")
	fmt.Println()

	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to generate keypair: %w", err)
	}

	if err := os.MkdirAll(keysFlags.output, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	publicKeyPath := filepath.Join(keysFlags.output, keysFlags.keyID+"_public.pem")
	if err := savePublicKey(publicKeyPath, publicKey); err != nil {
		return fmt.Errorf("failed to save public key: %w", err)
	}

	privateKeyPath := filepath.Join(keysFlags.output, keysFlags.keyID+"_private.pem")
	if err := savePrivateKey(privateKeyPath, privateKey); err != nil {
		return fmt.Errorf("failed to save private key: %w", err)
	}

	fmt.Printf("Key ID: %s\n", keysFlags.keyID)
	fmt.Printf("Public Key:  %s\n", publicKeyPath)
	fmt.Printf("Private Key: %s\n", privateKeyPath)
	fmt.Println()
	fmt.Println("⚠️  Warning: Store private key securely and never commit to version control")
	fmt.Println("✓  Keys generated successfully")
	fmt.Println()
	fmt.Println("Configuration snippet:")
	fmt.Println("ledger:")
	fmt.Printf("  signing_key_path: \"%s\"\n", privateKeyPath)

	return nil
}

func savePublicKey(path string, key ed25519.PublicKey) error {
	block := &pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: key,
	}

	// #nosec G304 G302 - User-specified output path for public key is expected behavior for a CLI tool.
	// Public key file permissions (0644) are intentionally world-readable as this is a public key.
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	return pem.Encode(file, block)
}

func savePrivateKey(path string, key ed25519.PrivateKey) error {
	block := &pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: key,
	}

	// #nosec G304 - User-specified output path for private key is expected behavior for a CLI tool.
	// File permissions (0600) are correctly restricted to owner-only access.
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	return pem.Encode(file, block)
}
