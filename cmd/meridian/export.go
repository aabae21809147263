package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"veritas-hq/meridian/pkg/ledger"
	"veritas-hq/meridian/pkg/ledger/export"

	ledgerstorage "veritas-hq/meridian/pkg/ledger/storage"
)

var exportFlags struct {
	dbPath            string
	signingKeyPath    string
	from              uint64
	to                uint64
	format            string
	output            string
	includeSignatures bool
	includeEvidence   bool
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Build a signed export package",
	Long: `Export a ledger range as a signed, reproducible package.

The package carries the serialized entries, the prior hash anchoring the
range to the chain, the ledger's public key, and an Ed25519 signature
over the package content. Identical inputs produce byte-identical signed
content, so auditors can re-run an export and compare.

Examples:
  # Export the full ledger as JSON
  meridian export --db data/ledger.db --signing-key keys/ledger_private.pem

  # Export a range as CSV with payloads included
  meridian export --db data/ledger.db --signing-key keys/ledger_private.pem \
    --from 1 --to 100 --format csv --include-evidence`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFlags.dbPath, "db", "data/ledger.db", "ledger database path")
	exportCmd.Flags().StringVar(&exportFlags.signingKeyPath, "signing-key", "", "private key PEM file")
	exportCmd.Flags().Uint64Var(&exportFlags.from, "from", 1, "first sequence to export")
	exportCmd.Flags().Uint64Var(&exportFlags.to, "to", 0, "last sequence to export (0 = head)")
	exportCmd.Flags().StringVar(&exportFlags.format, "format", "json", "body format: json, csv")
	exportCmd.Flags().StringVarP(&exportFlags.output, "output", "o", "", "output file (default stdout)")
	exportCmd.Flags().BoolVar(&exportFlags.includeSignatures, "include-signatures", true, "include per-entry signatures")
	exportCmd.Flags().BoolVar(&exportFlags.includeEvidence, "include-evidence", false, "include full decision payloads")
	_ = exportCmd.MarkFlagRequired("signing-key")
}

func runExport(cmd *cobra.Command, args []string) error {
	signer, err := ledger.LoadSigner(exportFlags.signingKeyPath)
	if err != nil {
		return err
	}

	store, err := ledgerstorage.NewSQLiteStore(&ledgerstorage.SQLiteConfig{
		Path:    exportFlags.dbPath,
		WALMode: true,
	})
	if err != nil {
		return fmt.Errorf("failed to open ledger store: %w", err)
	}
	defer store.Close()

	builder := export.NewBuilder(store, signer)
	pkg, err := builder.Build(cmd.Context(),
		exportFlags.from, exportFlags.to,
		export.Format(exportFlags.format),
		export.Options{
			IncludeSignatures: exportFlags.includeSignatures,
			IncludeEvidence:   exportFlags.includeEvidence,
		})
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode package: %w", err)
	}
	encoded = append(encoded, '\n')

	if exportFlags.output == "" {
		_, err = os.Stdout.Write(encoded)
		return err
	}

	if err := os.WriteFile(exportFlags.output, encoded, 0644); err != nil {
		return fmt.Errorf("failed to write package: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Export written to %s (entries %d..%d)\n",
		exportFlags.output, pkg.From, pkg.To)
	return nil
}
