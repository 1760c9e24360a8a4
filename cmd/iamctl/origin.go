package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/iam-admin/pkg/client"
	"github.com/doodlesbykumbi/iam-admin/pkg/origin"
)

// originCmd represents the origin command
var originCmd = &cobra.Command{
	Use:   "origin",
	Short: "Work with allowed origins",
	Run:   requireSubcommand,
}

var originCheckCmd = &cobra.Command{
	Use:   "check <origin>",
	Short: "Check whether an origin is valid",
	Long: `Check whether an origin is an absolute http or https URL that an
organization can allow. With --remote the server is asked instead.

Example:
  iamctl origin check https://app.acme.com`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		remote, _ := cmd.Flags().GetBool("remote")
		var c *client.Client
		if remote {
			c = apiClient(cmd)
		}
		ok, err := checkOrigin(cmd.Context(), os.Stdout, c, args[0])
		if err != nil {
			fail("Failed to check origin", err)
		}
		if !ok {
			os.Exit(2)
		}
	},
}

func init() {
	rootCmd.AddCommand(originCmd)
	originCmd.AddCommand(originCheckCmd)
	originCheckCmd.Flags().Bool("remote", false, "ask the server instead of checking locally")
}

// checkOrigin validates o locally, or through c when it is set.
func checkOrigin(ctx context.Context, out io.Writer, c *client.Client, o string) (bool, error) {
	valid := origin.IsValid(o)
	if c != nil {
		var err error
		if valid, err = c.CheckOrigin(ctx, o); err != nil {
			return false, err
		}
	}

	if valid {
		fmt.Fprintf(out, "%s is a valid origin\n", o)
	} else {
		fmt.Fprintf(out, "%s is not a valid origin\n", o)
	}
	return valid, nil
}
