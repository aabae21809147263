package ledger

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
)

func writeKeyPEM(t *testing.T, path, blockType string, bytes []byte) {
	t.Helper()
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		t.Fatalf("failed to create key file: %v", err)
	}
	defer file.Close()
	if err := pem.Encode(file, &pem.Block{Type: blockType, Bytes: bytes}); err != nil {
		t.Fatalf("failed to encode PEM: %v", err)
	}
}

func TestLoadSigner(t *testing.T) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate keypair: %v", err)
	}

	dir := t.TempDir()
	privatePath := filepath.Join(dir, "private.pem")
	writeKeyPEM(t, privatePath, "PRIVATE KEY", private)

	signer, err := LoadSigner(privatePath)
	if err != nil {
		t.Fatalf("LoadSigner() error: %v", err)
	}
	if !signer.PublicKey().Equal(public) {
		t.Error("loaded signer public key does not match generated key")
	}

	// A signature from the loaded signer verifies with the original key.
	message := []byte("message")
	if !VerifySignature(public, message, signer.Sign(message)) {
		t.Error("signature from loaded signer does not verify")
	}
}

func TestLoadSignerErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadSigner(filepath.Join(dir, "missing.pem")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("wrong block type", func(t *testing.T) {
		path := filepath.Join(dir, "wrong.pem")
		writeKeyPEM(t, path, "CERTIFICATE", []byte("junk"))
		if _, err := LoadSigner(path); err == nil {
			t.Error("expected error for wrong PEM block type")
		}
	})

	t.Run("bad key size", func(t *testing.T) {
		path := filepath.Join(dir, "short.pem")
		writeKeyPEM(t, path, "PRIVATE KEY", []byte("too short"))
		if _, err := LoadSigner(path); err == nil {
			t.Error("expected error for invalid key size")
		}
	})
}

func TestLoadPublicKey(t *testing.T) {
	public, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate keypair: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "public.pem")
	writeKeyPEM(t, path, "PUBLIC KEY", public)

	loaded, err := LoadPublicKey(path)
	if err != nil {
		t.Fatalf("LoadPublicKey() error: %v", err)
	}
	if !loaded.Equal(public) {
		t.Error("loaded public key does not match")
	}

	badPath := filepath.Join(dir, "bad.pem")
	writeKeyPEM(t, badPath, "PUBLIC KEY", []byte("short"))
	if _, err := LoadPublicKey(badPath); err == nil {
		t.Error("expected error for invalid public key size")
	}
}
