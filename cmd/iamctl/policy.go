package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/iam-admin/pkg/client"
	"github.com/doodlesbykumbi/iam-admin/pkg/policy"
)

// policyCmd represents the policy command
var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Manage password policies",
	Long: `Show, apply, export and delete the password policies of organizations.

Policy documents map organization names to tagged policies:

  acme:
    - !complexity
      min_length: 12
      has_uppercase: true
      has_lowercase: true
      has_number: true
      has_symbol: true
    - !lockout
      max_attempts: 5
      show_lockout_failures: true`,
	Run: requireSubcommand,
}

var policyShowCmd = &cobra.Command{
	Use:   "show <org> [kind]",
	Short: "Show the effective policies of an organization",
	Long: `Show the effective policies of an organization. Kinds the organization
has no policy of its own for are marked as defaults.

Example:
  iamctl policy show acme
  iamctl policy show acme complexity -o json`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		kind := ""
		if len(args) > 1 {
			kind = args[1]
		}
		if err := showPolicies(cmd.Context(), os.Stdout, apiClient(cmd), args[0], kind, output); err != nil {
			fail("Failed to show policies", err)
		}
	},
}

var policyDeleteCmd = &cobra.Command{
	Use:   "delete <org> <kind>",
	Short: "Delete an organization policy, reverting it to the default",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		kind, err := policy.KindString(args[1])
		if err != nil {
			fail("Invalid policy kind", err)
		}
		if err := apiClient(cmd).DeletePolicy(cmd.Context(), args[0], kind); err != nil {
			fail("Failed to delete policy", err)
		}
		fmt.Printf("Deleted %s policy of '%s'\n", kind, args[0])
	},
}

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyShowCmd, policyDeleteCmd)
	policyShowCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func showPolicies(ctx context.Context, out io.Writer, c client.OrgService, org, kind, output string) error {
	var policies []*policy.Policy
	if kind != "" {
		k, err := policy.KindString(kind)
		if err != nil {
			return err
		}
		p, err := c.GetPolicy(ctx, org, k)
		if err != nil {
			return err
		}
		policies = []*policy.Policy{p}
	} else {
		var err error
		if policies, err = c.GetPolicies(ctx, org); err != nil {
			return err
		}
	}

	if output == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(policies)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tSOURCE\tSETTINGS")
	for _, p := range policies {
		source := "org"
		if p.Default {
			source = "default"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Kind, source, settings(p))
	}
	return w.Flush()
}

// settings renders the section of p as compact JSON.
func settings(p *policy.Policy) string {
	var section interface{}
	switch p.Kind {
	case policy.KindComplexity:
		section = p.Complexity
	case policy.KindAge:
		section = p.Age
	case policy.KindLockout:
		section = p.Lockout
	}
	b, err := json.Marshal(section)
	if err != nil {
		return "?"
	}
	return string(b)
}
