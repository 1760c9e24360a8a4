package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/iam-admin/pkg/client"
	"github.com/doodlesbykumbi/iam-admin/pkg/policy"
)

// policyExportCmd represents the policy export command
var policyExportCmd = &cobra.Command{
	Use:   "export [org...]",
	Short: "Export organization policies as a policy document",
	Long: `Export organization policies as a policy document that "iamctl policy
apply" accepts. Without arguments every organization the token may manage is
exported. Defaults are left out unless --include-defaults is set.

Example:
  iamctl policy export > policies.yml
  iamctl policy export acme --include-defaults`,
	Run: func(cmd *cobra.Command, args []string) {
		withDefaults, _ := cmd.Flags().GetBool("include-defaults")
		if err := exportPolicies(cmd.Context(), os.Stdout, apiClient(cmd), args, withDefaults); err != nil {
			fail("Failed to export policies", err)
		}
	},
}

func init() {
	policyCmd.AddCommand(policyExportCmd)
	policyExportCmd.Flags().Bool("include-defaults", false, "include kinds that use the instance default")
}

func exportPolicies(ctx context.Context, out io.Writer, c *client.Client, orgs []string, withDefaults bool) error {
	if len(orgs) == 0 {
		all, err := c.ListOrgs(ctx)
		if err != nil {
			return err
		}
		for _, o := range all {
			orgs = append(orgs, o.Name)
		}
	}

	doc := policy.Document{}
	for _, org := range orgs {
		policies, err := c.GetPolicies(ctx, org)
		if err != nil {
			return err
		}
		var statements policy.Statements
		for _, p := range policies {
			if p.Default && !withDefaults {
				continue
			}
			statements = append(statements, p)
		}
		if len(statements) > 0 {
			doc[org] = statements
		}
	}
	return doc.Encode(out)
}
