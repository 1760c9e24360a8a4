package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/iam-admin/pkg/client"
)

// policyCheckCmd represents the policy check command
var policyCheckCmd = &cobra.Command{
	Use:   "check <org>",
	Short: "Check a password read from stdin against the complexity policy",
	Long: `Check a password against the effective complexity policy of an
organization. The password is read from the first line of stdin so it does not
show up in the process list. Exits non-zero when the password is rejected.

Example:
  echo 'Sup3r-secret' | iamctl policy check acme`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ok, err := checkPassword(cmd.Context(), os.Stdin, os.Stdout, apiClient(cmd), args[0])
		if err != nil {
			fail("Failed to check password", err)
		}
		if !ok {
			os.Exit(2)
		}
	},
}

func init() {
	policyCmd.AddCommand(policyCheckCmd)
}

func checkPassword(ctx context.Context, in io.Reader, out io.Writer, c client.OrgService, org string) (bool, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	password := strings.TrimRight(line, "\r\n")

	resp, err := c.CheckPassword(ctx, org, password)
	if err != nil {
		return false, err
	}
	if resp.Valid {
		fmt.Fprintln(out, "Password accepted")
		return true, nil
	}
	for _, v := range resp.Violations {
		fmt.Fprintf(out, "Password rejected: %s\n", v)
	}
	return false, nil
}
