package export

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"veritas-hq/meridian/pkg/ledger"
)

// Format selects the body serialization of an export package.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Options adjusts what entry detail the body carries.
type Options struct {
	// IncludeSignatures carries per-entry signatures in the body.
	IncludeSignatures bool `json:"include_signatures"`

	// IncludeEvidence carries full decision payloads. When false the
	// body carries content hashes only.
	IncludeEvidence bool `json:"include_evidence"`
}

// Package is a signed export of a ledger range. The signature covers
// signedContent — everything except GeneratedAt, which is informational
// and would break byte-for-byte reproducibility if pinned inside.
type Package struct {
	// FormatVersion identifies the package layout.
	FormatVersion int `json:"format_version"`

	// From and To bound the exported sequence range (inclusive).
	From uint64 `json:"from"`
	To   uint64 `json:"to"`

	// Format is the body serialization.
	Format Format `json:"format"`

	// Options records what the body includes.
	Options Options `json:"options"`

	// PriorHash is the content hash expected as the first entry's
	// prev_hash, so the package verifies without the full chain.
	PriorHash string `json:"prior_hash"`

	// Body is the serialized entries.
	Body []byte `json:"body"`

	// BodyHash is the hex SHA-256 of Body.
	BodyHash string `json:"body_hash"`

	// PublicKey is the hex-encoded ledger verification key.
	PublicKey string `json:"public_key"`

	// Signature is the hex Ed25519 signature over the canonical signed
	// content.
	Signature string `json:"signature"`

	// GeneratedAt accompanies the package but is NOT covered by
	// Signature.
	GeneratedAt time.Time `json:"generated_at"`
}

// FormatVersionCurrent is the package layout emitted by this builder.
const FormatVersionCurrent = 1

// ExportError indicates an export failure. Retryable by the caller.
type ExportError struct {
	Format Format
	Cause  error
}

// Error returns the error message.
func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [format=%s]: %v", e.Format, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ExportError) Unwrap() error {
	return e.Cause
}

// Builder produces export packages from a ledger store, signing them
// with the ledger's key.
type Builder struct {
	store  ledger.Store
	signer *ledger.Signer
}

// NewBuilder creates an export builder.
func NewBuilder(store ledger.Store, signer *ledger.Signer) *Builder {
	return &Builder{store: store, signer: signer}
}

// Build exports the inclusive range [from, to]. to == 0 pins the range
// at the head sequence before reading, so exports can run concurrently
// with ongoing appends.
func (b *Builder) Build(ctx context.Context, from, to uint64, format Format, opts Options) (*Package, error) {
	if from == 0 {
		from = 1
	}
	if to == 0 {
		head, err := b.store.Head(ctx)
		if err != nil {
			return nil, &ExportError{Format: format, Cause: err}
		}
		if head == nil {
			return nil, &ExportError{Format: format, Cause: fmt.Errorf("ledger is empty")}
		}
		to = head.Sequence
	}
	if to < from {
		return nil, &ExportError{Format: format, Cause: fmt.Errorf("invalid range %d..%d", from, to)}
	}

	entries, err := b.store.Get(ctx, from, to)
	if err != nil {
		return nil, &ExportError{Format: format, Cause: err}
	}

	priorHash := ledger.GenesisHash
	if from > 1 {
		prior, err := b.store.Get(ctx, from-1, from-1)
		if err != nil {
			return nil, &ExportError{Format: format, Cause: err}
		}
		if len(prior) != 1 {
			return nil, &ExportError{Format: format, Cause: fmt.Errorf("prior entry %d not found", from-1)}
		}
		priorHash = prior[0].ContentHash
	}

	var body []byte
	switch format {
	case FormatJSON:
		body, err = serializeJSON(entries, opts)
	case FormatCSV:
		body, err = serializeCSV(entries, opts)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, &ExportError{Format: format, Cause: err}
	}

	pkg := &Package{
		FormatVersion: FormatVersionCurrent,
		From:          from,
		To:            to,
		Format:        format,
		Options:       opts,
		PriorHash:     priorHash,
		Body:          body,
		BodyHash:      ledger.HashContent(body),
		PublicKey:     hex.EncodeToString(b.signer.PublicKey()),
	}

	signed, err := pkg.signedContent()
	if err != nil {
		return nil, &ExportError{Format: format, Cause: err}
	}
	pkg.Signature = b.signer.Sign(signed)
	pkg.GeneratedAt = time.Now().UTC()

	return pkg, nil
}

// signedContent is the canonical byte form the package signature covers:
// every field except Signature and GeneratedAt, serialized with stable
// field ordering.
func (p *Package) signedContent() ([]byte, error) {
	shadow := struct {
		FormatVersion int     `json:"format_version"`
		From          uint64  `json:"from"`
		To            uint64  `json:"to"`
		Format        Format  `json:"format"`
		Options       Options `json:"options"`
		PriorHash     string  `json:"prior_hash"`
		Body          []byte  `json:"body"`
		BodyHash      string  `json:"body_hash"`
		PublicKey     string  `json:"public_key"`
	}{
		p.FormatVersion, p.From, p.To, p.Format, p.Options,
		p.PriorHash, p.Body, p.BodyHash, p.PublicKey,
	}
	return json.Marshal(shadow)
}

// Verify checks a package's body hash and signature against the given
// public key, independently of the channel that delivered it.
func (p *Package) Verify(public ed25519.PublicKey) error {
	if ledger.HashContent(p.Body) != p.BodyHash {
		return fmt.Errorf("export body hash mismatch")
	}
	signed, err := p.signedContent()
	if err != nil {
		return err
	}
	if !ledger.VerifySignature(public, signed, p.Signature) {
		return fmt.Errorf("export signature invalid")
	}
	return nil
}
