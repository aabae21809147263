// Meridian is a decision governance service with a tamper-evident audit
// ledger.
//
// It evaluates proposed actions against a declarative policy and records
// every decision in a hash-chained, Ed25519-signed append-only ledger:
//   - Policy-based allow/deny/escalate/require_confirmation decisions
//   - Hash-chained, signed audit entries with gap-free sequences
//   - Chain verification detecting tampering, truncation, and forgery
//   - Signed, reproducible export packages for external auditors
//
// Usage:
//
//	# Start the server with default configuration
//	meridian run
//
//	# Start with a custom configuration file
//	meridian run --config /path/to/config.yaml
//
//	# Generate a signing keypair
//	meridian keys generate
//
//	# Verify ledger chain integrity
//	meridian verify --db data/ledger.db --public-key keys/ledger_public.pem
//
//	# Build a signed export package
//	meridian export --db data/ledger.db --from 1 --to 100 --format json
//
//	# Validate a policy file
//	meridian policy validate --file policies/policy.yaml
package main

func main() {
	Execute()
}
