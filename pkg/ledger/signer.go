package ledger

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"os"
)

// Signer holds the ledger's Ed25519 signing key. The private half lives
// only inside the ledger's writer; read paths (verification, export
// consumers) get the public key alone.
type Signer struct {
	private ed25519.PrivateKey
	public  ed25519.PublicKey
}

// GenerateSigner creates a signer with a fresh Ed25519 keypair.
func GenerateSigner() (*Signer, error) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	return &Signer{private: private, public: public}, nil
}

// NewSigner creates a signer from an existing private key.
func NewSigner(private ed25519.PrivateKey) (*Signer, error) {
	if len(private) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key size: %d", len(private))
	}
	return &Signer{
		private: private,
		public:  private.Public().(ed25519.PublicKey),
	}, nil
}

// LoadSigner reads an Ed25519 private key from a PEM file.
func LoadSigner(path string) (*Signer, error) {
	data, err := os.ReadFile(path) // #nosec G304 - key path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read signing key %q: %w", path, err)
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("no PRIVATE KEY block in %q", path)
	}
	return NewSigner(ed25519.PrivateKey(block.Bytes))
}

// LoadPublicKey reads an Ed25519 public key from a PEM file.
func LoadPublicKey(path string) (ed25519.PublicKey, error) {
	data, err := os.ReadFile(path) // #nosec G304 - key path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read public key %q: %w", path, err)
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "PUBLIC KEY" {
		return nil, fmt.Errorf("no PUBLIC KEY block in %q", path)
	}
	if len(block.Bytes) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid public key size: %d", len(block.Bytes))
	}
	return ed25519.PublicKey(block.Bytes), nil
}

// Sign signs a message and returns the hex-encoded signature.
func (s *Signer) Sign(message []byte) string {
	return hex.EncodeToString(ed25519.Sign(s.private, message))
}

// PublicKey returns the public half of the signing key.
func (s *Signer) PublicKey() ed25519.PublicKey {
	return s.public
}

// VerifySignature checks a hex-encoded Ed25519 signature over a message.
func VerifySignature(public ed25519.PublicKey, message []byte, signature string) bool {
	sig, err := hex.DecodeString(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(public, message, sig)
}
