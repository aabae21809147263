package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"veritas-hq/meridian/pkg/ledger"
	"veritas-hq/meridian/pkg/ledger/verify"

	ledgerstorage "veritas-hq/meridian/pkg/ledger/storage"
)

var verifyFlags struct {
	dbPath        string
	publicKeyPath string
	from          uint64
	to            uint64
	priorHash     string
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify ledger chain integrity",
	Long: `Verify the hash chain and signatures of a ledger database.

Each entry is checked on three properties: the content hash matches the
recomputed hash of the payload, prev_hash links to the recomputed hash
of the preceding entry, and the Ed25519 signature verifies against the
given public key.

Examples:
  # Verify the full chain
  meridian verify --db data/ledger.db --public-key keys/ledger_public.pem

  # Verify a partial range, anchored on a known prior hash
  meridian verify --db data/ledger.db --public-key keys/ledger_public.pem \
    --from 100 --to 200 --prior-hash <hash of entry 99>`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyFlags.dbPath, "db", "data/ledger.db", "ledger database path")
	verifyCmd.Flags().StringVar(&verifyFlags.publicKeyPath, "public-key", "", "public key PEM file")
	verifyCmd.Flags().Uint64Var(&verifyFlags.from, "from", 1, "first sequence to verify")
	verifyCmd.Flags().Uint64Var(&verifyFlags.to, "to", 0, "last sequence to verify (0 = head)")
	verifyCmd.Flags().StringVar(&verifyFlags.priorHash, "prior-hash", "", "expected prev_hash of the first entry")
	_ = verifyCmd.MarkFlagRequired("public-key")
}

func runVerify(cmd *cobra.Command, args []string) error {
	public, err := ledger.LoadPublicKey(verifyFlags.publicKeyPath)
	if err != nil {
		return err
	}

	store, err := ledgerstorage.NewSQLiteStore(&ledgerstorage.SQLiteConfig{
		Path:    verifyFlags.dbPath,
		WALMode: true,
	})
	if err != nil {
		return fmt.Errorf("failed to open ledger store: %w", err)
	}
	defer store.Close()

	var opts *verify.Options
	if verifyFlags.priorHash != "" {
		opts = &verify.Options{ExpectedPriorHash: verifyFlags.priorHash}
	}

	report, err := verify.Chain(cmd.Context(), store, verifyFlags.from, verifyFlags.to, public, opts)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	fmt.Printf("Entries checked:   %d\n", report.Total)
	fmt.Printf("Verified:          %d\n", report.Verified)
	fmt.Printf("Failed:            %d\n", report.Failed)
	fmt.Printf("Chain intact:      %v\n", report.ChainIntact)
	fmt.Printf("Signatures valid:  %v\n", report.SignaturesValid)

	if report.Failed > 0 {
		fmt.Println()
		for _, failure := range report.Failures {
			fmt.Printf("  sequence %d: %s\n", failure.Sequence, failure.Reason)
		}
		return fmt.Errorf("chain verification failed: %d of %d entries", report.Failed, report.Total)
	}

	fmt.Println()
	fmt.Println("✓ Chain verified")
	return nil
}
