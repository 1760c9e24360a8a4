package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/iam-admin/pkg/client"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/endpoints"
)

// orgCmd represents the org command
var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Manage organizations",
	Long:  `Create, list and delete organizations through the administration API.`,
	Run:   requireSubcommand,
}

var orgCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an organization",
	Long: `Create an organization. Requires an iam_admin token.

Example:
  iamctl org create acme --domain acme.com --origin https://app.acme.com`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		domain, _ := cmd.Flags().GetString("domain")
		origins, _ := cmd.Flags().GetStringSlice("origin")
		req := endpoints.OrgRequest{Name: args[0], PrimaryDomain: domain, AllowedOrigins: origins}
		if err := createOrg(cmd.Context(), os.Stdout, apiClient(cmd), req); err != nil {
			fail("Failed to create organization", err)
		}
	},
}

var orgListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the organizations the token may manage",
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		if err := listOrgs(cmd.Context(), os.Stdout, apiClient(cmd), output); err != nil {
			fail("Failed to list organizations", err)
		}
	},
}

var orgDeleteCmd = &cobra.Command{
	Use:   "delete <org>",
	Short: "Delete an organization and everything it owns",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := apiClient(cmd).DeleteOrg(cmd.Context(), args[0]); err != nil {
			fail("Failed to delete organization", err)
		}
		fmt.Printf("Deleted organization '%s'\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(orgCmd)
	orgCmd.AddCommand(orgCreateCmd, orgListCmd, orgDeleteCmd)

	orgCreateCmd.Flags().String("domain", "", "primary domain")
	orgCreateCmd.Flags().StringSlice("origin", nil, "allowed origin (repeatable)")
	orgListCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func createOrg(ctx context.Context, out io.Writer, c *client.Client, req endpoints.OrgRequest) error {
	org, err := c.CreateOrg(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Created organization '%s' with id %s\n", org.Name, org.ID)
	return nil
}

func listOrgs(ctx context.Context, out io.Writer, c *client.Client, output string) error {
	orgs, err := c.ListOrgs(ctx)
	if err != nil {
		return err
	}

	if output == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(orgs)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATE\tDOMAIN\tORIGINS")
	for _, o := range orgs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o.ID, o.Name, o.State, o.PrimaryDomain, strings.Join(o.AllowedOrigins, ","))
	}
	return w.Flush()
}
