package ledger

import (
	"bytes"
	"testing"
	"time"

	"veritas-hq/meridian/pkg/policy/engine"
)

func TestCanonicalPayloadDeterministic(t *testing.T) {
	decision := testDecision("dec-1")

	first, err := CanonicalPayload(decision)
	if err != nil {
		t.Fatalf("CanonicalPayload() error: %v", err)
	}
	second, err := CanonicalPayload(decision)
	if err != nil {
		t.Fatalf("CanonicalPayload() error: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("identical decisions must serialize to identical bytes")
	}
}

func TestCanonicalPayloadExcludesEvaluationTime(t *testing.T) {
	a := testDecision("dec-1")
	b := testDecision("dec-1")
	a.EvaluationTime = 5 * time.Millisecond
	b.EvaluationTime = 900 * time.Millisecond

	pa, err := CanonicalPayload(a)
	if err != nil {
		t.Fatalf("CanonicalPayload() error: %v", err)
	}
	pb, err := CanonicalPayload(b)
	if err != nil {
		t.Fatalf("CanonicalPayload() error: %v", err)
	}
	if !bytes.Equal(pa, pb) {
		t.Error("evaluation time must not influence the canonical payload")
	}
}

func TestDecodePayloadRoundTrip(t *testing.T) {
	decision := testDecision("dec-1")
	decision.AppliedRules = []engine.AppliedRule{
		{RuleID: "r1", Priority: 100, Action: "deny", Matched: false},
		{RuleID: "r2", Priority: 50, Action: "allow", Matched: true},
	}

	payload, err := CanonicalPayload(decision)
	if err != nil {
		t.Fatalf("CanonicalPayload() error: %v", err)
	}

	decoded, err := DecodePayload(payload)
	if err != nil {
		t.Fatalf("DecodePayload() error: %v", err)
	}
	if decoded.ID != decision.ID || decoded.Outcome != decision.Outcome {
		t.Errorf("decoded = %+v, want %+v", decoded, decision)
	}
	if len(decoded.AppliedRules) != 2 || decoded.AppliedRules[1].RuleID != "r2" {
		t.Errorf("decoded applied rules = %+v", decoded.AppliedRules)
	}

	if _, err := DecodePayload([]byte("{broken")); err == nil {
		t.Error("DecodePayload() expected error for malformed payload")
	}
}

func TestHashContent(t *testing.T) {
	payload := []byte("payload")
	hash := HashContent(payload)
	if len(hash) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(hash))
	}
	if hash != HashContent([]byte("payload")) {
		t.Error("same content must hash identically")
	}
	if hash == HashContent([]byte("Payload")) {
		t.Error("different content must hash differently")
	}
}

func TestSignerRoundTrip(t *testing.T) {
	signer := mustSigner(t)
	message := []byte("1|prev|content|1234567890")

	signature := signer.Sign(message)
	if !VerifySignature(signer.PublicKey(), message, signature) {
		t.Error("signature must verify with the matching public key")
	}
	if VerifySignature(signer.PublicKey(), []byte("tampered"), signature) {
		t.Error("signature must not verify for a different message")
	}

	other := mustSigner(t)
	if VerifySignature(other.PublicKey(), message, signature) {
		t.Error("signature must not verify with a different key")
	}

	if VerifySignature(signer.PublicKey(), message, "not-hex") {
		t.Error("malformed signature must not verify")
	}
}
