package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"veritas-hq/meridian/pkg/policy/parser"
)

var policyFlags struct {
	file string
}

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Work with policy files",
	Long: `Validate and inspect Meridian policy files.

Examples:
  # Validate a policy file
  meridian policy validate --file policies/policy.yaml`,
}

var policyValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a policy file",
	Long: `Parse and validate a policy YAML file without loading it.

Validation checks the policy structure, rule IDs, condition shapes, and
mode settings. A policy that validates here will load cleanly at
startup and on hot reload.`,
	RunE: runPolicyValidate,
}

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyValidateCmd)

	policyValidateCmd.Flags().StringVarP(&policyFlags.file, "file", "f", "policies/policy.yaml", "policy file path")
}

func runPolicyValidate(cmd *cobra.Command, args []string) error {
	policy, err := parser.ParseFile(policyFlags.file)
	if err != nil {
		return fmt.Errorf("policy validation failed: %w", err)
	}

	fmt.Printf("✓ Policy valid\n")
	fmt.Printf("  Name:    %s\n", policy.Name)
	fmt.Printf("  Version: %d\n", policy.Version)
	fmt.Printf("  Mode:    %s\n", policy.Mode)
	fmt.Printf("  Rules:   %d\n", policy.RuleCount())
	return nil
}
