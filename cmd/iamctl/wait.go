package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/iam-admin/pkg/client"
)

// waitCmd represents the wait command
var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for the server to be ready",
	Long: `Wait for the server to be ready by polling its health endpoint.

This command will repeatedly check the server and its database until they
respond successfully or the maximum number of retries is reached.

Example:
  iamctl wait
  iamctl wait --url http://localhost:3000 --retries 60`,
	Run: func(cmd *cobra.Command, args []string) {
		retries, _ := cmd.Flags().GetInt("retries")
		if err := waitForServer(cmd.Context(), os.Stdout, apiClient(cmd), retries, time.Second); err != nil {
			fail("Server did not become ready", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().IntP("retries", "r", 90, "Number of retries")
}

func waitForServer(ctx context.Context, out io.Writer, c *client.Client, retries int, interval time.Duration) error {
	fmt.Fprintln(out, "Waiting for the server to be ready...")

	for i := 0; i < retries; i++ {
		attempt, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := c.Health(attempt)
		cancel()
		if err == nil {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Server is ready!")
			return nil
		}

		fmt.Fprint(out, ".")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}

	fmt.Fprintln(out)
	return fmt.Errorf("server is not ready after %d attempts", retries)
}
