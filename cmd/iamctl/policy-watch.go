package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/iam-admin/pkg/policy"
)

// policyWatchCmd represents the policy watch command
var policyWatchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Watch a policy document and apply it whenever it changes",
	Long: `Apply a policy document, then apply it again every time it is written
or replaced. Errors are logged and the watch continues.

Example:
  iamctl policy watch /etc/iam/policies.yml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := watchPolicy(ctx, os.Stdout, apiClient(cmd), args[0]); err != nil {
			fail("Failed to watch policy", err)
		}
	},
}

func init() {
	policyCmd.AddCommand(policyWatchCmd)
}

// watchPolicy applies filename until ctx is done. The directory is watched
// rather than the file so editors that replace the file are followed.
func watchPolicy(ctx context.Context, out io.Writer, m policy.Manager, filename string) error {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filename, err)
	}

	fmt.Fprintf(out, "Watching %s for policy changes\n", filename)
	reapply(ctx, out, m, abs)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				reapply(ctx, out, m, abs)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logrus.WithError(err).Warn("Watcher error")
		case <-ctx.Done():
			fmt.Fprintln(out, "Shutting down...")
			return nil
		}
	}
}

func reapply(ctx context.Context, out io.Writer, m policy.Manager, filename string) {
	if err := applyPolicyFile(ctx, out, m, filename); err != nil {
		logrus.WithError(err).WithField("file", filename).Error("Failed to apply policy document")
		return
	}
	logrus.WithField("file", filename).Info("Applied policy document")
}
