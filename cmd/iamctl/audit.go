package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/iam-admin/pkg/audit"
	"github.com/doodlesbykumbi/iam-admin/pkg/db"
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Read the persisted audit log",
	Long: `Read the audit messages the server stores when audit_database is enabled.

These commands connect to the database named by DATABASE_URL directly.`,
	Run: requireSubcommand,
}

var auditRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show the newest audit messages",
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		output, _ := cmd.Flags().GetString("output")

		if db.URL() == "" {
			fail("Failed to read audit log", fmt.Errorf("DATABASE_URL environment variable is required"))
		}
		s, err := audit.NewStore(db.URL())
		if err != nil {
			fail("Failed to open audit log", err)
		}
		defer s.Close()

		if err := showAuditMessages(os.Stdout, s, limit, output); err != nil {
			fail("Failed to read audit log", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditRecentCmd)

	auditRecentCmd.Flags().IntP("limit", "n", 20, "number of messages to show")
	auditRecentCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func showAuditMessages(out io.Writer, s *audit.Store, limit int, output string) error {
	if limit < 1 {
		return fmt.Errorf("limit must be at least 1")
	}
	messages, err := s.Recent(limit)
	if err != nil {
		return err
	}

	if output == "json" {
		if messages == nil {
			messages = []audit.Message{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(messages)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSEVERITY\tMSGID\tMESSAGE")
	for _, m := range messages {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", m.Timestamp.UTC().Format(time.RFC3339), m.Severity, m.Msgid, m.Message)
	}
	return w.Flush()
}
