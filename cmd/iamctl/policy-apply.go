package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/iam-admin/pkg/policy"
)

// policyApplyCmd represents the policy apply command
var policyApplyCmd = &cobra.Command{
	Use:   "apply <file>",
	Short: "Apply a policy document",
	Long: `Apply a policy document. Kinds an organization still takes from the
instance default are created, the others are modified. Policies that already
match the document are left alone.

Example:
  iamctl policy apply policies.yml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := applyPolicyFile(cmd.Context(), os.Stdout, apiClient(cmd), args[0]); err != nil {
			fail("Failed to apply policies", err)
		}
	},
}

func init() {
	policyCmd.AddCommand(policyApplyCmd)
}

func applyPolicyFile(ctx context.Context, out io.Writer, m policy.Manager, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open policy file: %w", err)
	}
	defer func() { _ = f.Close() }()

	doc, err := policy.ParseDocument(f)
	if err != nil {
		return err
	}

	results, err := doc.Apply(ctx, m)
	printResults(out, results)
	return err
}

func printResults(out io.Writer, results []policy.Result) {
	for _, r := range results {
		if !r.Changed {
			fmt.Fprintf(out, "%s: %s policy unchanged\n", r.Org, r.Kind)
			continue
		}
		verb := "modified"
		if r.Mode == policy.ModeCreate {
			verb = "created"
		}
		fmt.Fprintf(out, "%s: %s policy %s\n", r.Org, r.Kind, verb)
	}
}
