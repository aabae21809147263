package verify

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"veritas-hq/meridian/pkg/ledger"
	"veritas-hq/meridian/pkg/ledger/storage"
	"veritas-hq/meridian/pkg/policy/engine"
)

// buildChain appends n decisions through a real ledger over a memory
// store and returns the store with the ledger's public key.
func buildChain(t *testing.T, n int) (*storage.MemoryStore, *ledger.Ledger) {
	t.Helper()
	store := storage.NewMemoryStore()
	signer, err := ledger.GenerateSigner()
	if err != nil {
		t.Fatalf("GenerateSigner() error: %v", err)
	}
	led := ledger.New(store, signer, nil)

	for i := 0; i < n; i++ {
		decision := &engine.Decision{
			ID:        string(rune('a' + i)),
			Kind:      engine.KindDecision,
			Actor:     "agent-7",
			Action:    "write_data",
			Outcome:   engine.OutcomeAllow,
			RiskLevel: 1,
		}
		if _, err := led.Append(context.Background(), decision); err != nil {
			t.Fatalf("Append(%d) error: %v", i, err)
		}
	}
	return store, led
}

func getAll(t *testing.T, store ledger.Store) []*ledger.Entry {
	t.Helper()
	entries, err := store.Get(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	return entries
}

func failureSet(report *Report) map[uint64][]FailureReason {
	set := make(map[uint64][]FailureReason)
	for _, f := range report.Failures {
		set[f.Sequence] = append(set[f.Sequence], f.Reason)
	}
	return set
}

func hasFailure(set map[uint64][]FailureReason, seq uint64, reason FailureReason) bool {
	for _, r := range set[seq] {
		if r == reason {
			return true
		}
	}
	return false
}

func TestEntriesIntactChain(t *testing.T) {
	store, led := buildChain(t, 5)
	report := Entries(getAll(t, store), led.PublicKey(), nil)

	if report.Total != 5 || report.Verified != 5 || report.Failed != 0 {
		t.Errorf("report = %+v, want 5 verified", report)
	}
	if !report.ChainIntact || !report.SignaturesValid {
		t.Errorf("report flags = intact=%v sigs=%v, want both true", report.ChainIntact, report.SignaturesValid)
	}
}

func TestEntriesDetectsPayloadTampering(t *testing.T) {
	store, led := buildChain(t, 5)
	entries := getAll(t, store)

	// Mutate the payload of entry 3. Its content hash no longer matches,
	// and entry 4's prev_hash no longer links to the recomputed hash.
	entries[2].Payload = []byte(`{"id":"forged"}`)

	report := Entries(entries, led.PublicKey(), nil)
	if report.Failed != 2 {
		t.Fatalf("Failed = %d, want 2 (the mutated entry and its successor)", report.Failed)
	}

	set := failureSet(report)
	if !hasFailure(set, 3, ReasonHashMismatch) {
		t.Error("entry 3 should fail hash_mismatch")
	}
	if !hasFailure(set, 4, ReasonChainBreak) {
		t.Error("entry 4 should fail chain_break")
	}
	if report.ChainIntact {
		t.Error("ChainIntact should be false")
	}
	if !report.SignaturesValid {
		t.Error("signatures over the stored tuples are still valid")
	}
}

func TestEntriesDetectsRelinkedChain(t *testing.T) {
	store, led := buildChain(t, 3)
	entries := getAll(t, store)

	// An attacker rewrites entry 2's payload AND its content hash, and
	// relinks entry 3, keeping the hashes self-consistent. The signatures
	// still cover the original tuples and give the forgery away.
	entries[1].Payload = []byte(`{"id":"forged"}`)
	forgedHash := ledger.HashContent(entries[1].Payload)
	oldHash := entries[1].ContentHash
	entries[1].ContentHash = forgedHash
	entries[2].PrevHash = forgedHash

	report := Entries(entries, led.PublicKey(), nil)
	set := failureSet(report)

	if !hasFailure(set, 2, ReasonBadSignature) {
		t.Error("entry 2 should fail bad_signature (signature covers the old hash)")
	}
	if !hasFailure(set, 3, ReasonBadSignature) {
		t.Error("entry 3 should fail bad_signature (signature covers the old prev_hash)")
	}
	if oldHash == forgedHash {
		t.Fatal("test setup: hashes should differ")
	}
}

func TestEntriesDetectsBadSignature(t *testing.T) {
	store, led := buildChain(t, 3)
	entries := getAll(t, store)

	other, err := ledger.GenerateSigner()
	if err != nil {
		t.Fatalf("GenerateSigner() error: %v", err)
	}
	message := ledger.SigningMessage(entries[1].Sequence, entries[1].PrevHash,
		entries[1].ContentHash, entries[1].Timestamp)
	entries[1].Signature = other.Sign(message)

	report := Entries(entries, led.PublicKey(), nil)
	set := failureSet(report)

	if !hasFailure(set, 2, ReasonBadSignature) {
		t.Error("entry 2 should fail bad_signature")
	}
	if report.SignaturesValid {
		t.Error("SignaturesValid should be false")
	}
	// Hashes and linkage are untouched.
	if !report.ChainIntact {
		t.Error("ChainIntact should be true")
	}
}

func TestEntriesPartialRange(t *testing.T) {
	store, led := buildChain(t, 5)
	all := getAll(t, store)
	partial := all[2:] // entries 3..5

	t.Run("without anchor", func(t *testing.T) {
		// Entry 3's linkage cannot be checked; the rest of the range can.
		report := Entries(partial, led.PublicKey(), nil)
		if report.Failed != 0 {
			t.Errorf("Failed = %d, want 0", report.Failed)
		}
	})

	t.Run("with correct anchor", func(t *testing.T) {
		report := Entries(partial, led.PublicKey(), &Options{
			ExpectedPriorHash: all[1].ContentHash,
		})
		if report.Failed != 0 {
			t.Errorf("Failed = %d, want 0", report.Failed)
		}
	})

	t.Run("with wrong anchor", func(t *testing.T) {
		report := Entries(partial, led.PublicKey(), &Options{
			ExpectedPriorHash: ledger.HashContent([]byte("wrong")),
		})
		set := failureSet(report)
		if !hasFailure(set, 3, ReasonChainBreak) {
			t.Error("entry 3 should fail chain_break against the wrong anchor")
		}
	})
}

func TestEntriesFirstEntryGenesis(t *testing.T) {
	store, led := buildChain(t, 1)
	entries := getAll(t, store)
	entries[0].PrevHash = ledger.HashContent([]byte("not genesis"))

	report := Entries(entries, led.PublicKey(), nil)
	set := failureSet(report)
	if !hasFailure(set, 1, ReasonChainBreak) {
		t.Error("entry 1 with non-genesis prev_hash should fail chain_break")
	}
}

func TestFilterVerified(t *testing.T) {
	store, led := buildChain(t, 5)
	entries := getAll(t, store)

	// Re-seed a store where entry 2's payload is tampered. Entry 2 fails
	// its hash check; entry 3's linkage no longer anchors on the
	// recomputed hash of its stored predecessor.
	tampered := storage.NewMemoryStore()
	for _, entry := range entries {
		if entry.Sequence == 2 {
			entry.Payload = []byte(`{"id":"forged"}`)
		}
		if err := tampered.Append(context.Background(), entry); err != nil {
			t.Fatalf("Append(%d) error: %v", entry.Sequence, err)
		}
	}

	all := getAll(t, tampered)
	kept, err := FilterVerified(context.Background(), tampered, all, led.PublicKey())
	if err != nil {
		t.Fatalf("FilterVerified() error: %v", err)
	}

	want := []uint64{1, 4, 5}
	if len(kept) != len(want) {
		t.Fatalf("kept %d entries, want %d", len(kept), len(want))
	}
	for i, seq := range want {
		if kept[i].Sequence != seq {
			t.Errorf("kept[%d].Sequence = %d, want %d", i, kept[i].Sequence, seq)
		}
	}

	t.Run("intact chain keeps everything", func(t *testing.T) {
		intact := getAll(t, store)
		kept, err := FilterVerified(context.Background(), store, intact, led.PublicKey())
		if err != nil {
			t.Fatalf("FilterVerified() error: %v", err)
		}
		if len(kept) != 5 {
			t.Errorf("kept %d entries, want 5", len(kept))
		}
	})

	t.Run("non-contiguous subset", func(t *testing.T) {
		// A filtered result set: entries 1 and 4 only. Entry 4 anchors on
		// the stored entry 3, not on entry 1.
		subset := []*ledger.Entry{entries[0], entries[3]}
		kept, err := FilterVerified(context.Background(), store, subset, led.PublicKey())
		if err != nil {
			t.Fatalf("FilterVerified() error: %v", err)
		}
		if len(kept) != 2 {
			t.Errorf("kept %d entries, want 2", len(kept))
		}
	})
}

func TestConcurrentAppends(t *testing.T) {
	const writers = 32
	const perWriter = 8

	store := storage.NewMemoryStore()
	signer, err := ledger.GenerateSigner()
	if err != nil {
		t.Fatalf("GenerateSigner() error: %v", err)
	}
	led := ledger.New(store, signer, nil)

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				decision := &engine.Decision{
					ID:        fmt.Sprintf("dec-%d-%d", w, i),
					Kind:      engine.KindDecision,
					Actor:     "agent-7",
					Action:    "write_data",
					Outcome:   engine.OutcomeAllow,
					RiskLevel: 1,
				}
				if _, err := led.Append(context.Background(), decision); err != nil {
					t.Errorf("Append() error: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	entries := getAll(t, store)
	if len(entries) != writers*perWriter {
		t.Fatalf("ledger holds %d entries, want %d", len(entries), writers*perWriter)
	}

	// Sequences are contiguous and duplicate-free regardless of append
	// interleaving.
	for i, entry := range entries {
		if entry.Sequence != uint64(i+1) {
			t.Fatalf("entries[%d].Sequence = %d, want %d", i, entry.Sequence, i+1)
		}
	}

	report := Entries(entries, led.PublicKey(), nil)
	if report.Failed != 0 || report.Verified != writers*perWriter {
		t.Errorf("report = %+v, want all %d verified", report, writers*perWriter)
	}
	if !report.ChainIntact || !report.SignaturesValid {
		t.Errorf("report flags = intact=%v sigs=%v, want both true",
			report.ChainIntact, report.SignaturesValid)
	}
}

func TestChain(t *testing.T) {
	store, led := buildChain(t, 4)

	t.Run("full range pinned at head", func(t *testing.T) {
		report, err := Chain(context.Background(), store, 1, 0, led.PublicKey(), nil)
		if err != nil {
			t.Fatalf("Chain() error: %v", err)
		}
		if report.Total != 4 || report.Failed != 0 {
			t.Errorf("report = %+v, want 4 verified", report)
		}
	})

	t.Run("empty ledger", func(t *testing.T) {
		empty := storage.NewMemoryStore()
		report, err := Chain(context.Background(), empty, 1, 0, led.PublicKey(), nil)
		if err != nil {
			t.Fatalf("Chain() error: %v", err)
		}
		if report.Total != 0 || !report.ChainIntact || !report.SignaturesValid {
			t.Errorf("empty report = %+v", report)
		}
	})
}
