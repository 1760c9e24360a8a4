package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/iam-admin/pkg/config"
)

// configurationApplyCmd represents the configuration apply command
var configurationApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Validate the configuration and signal the server to reload it",
	Long: `Validate the current state of the configuration file and send SIGHUP to
a running "iamctl server", which reloads its logging settings. Other settings
need a restart.

Use --test to validate configuration without signalling.

Example:
  iamctl configuration apply
  iamctl configuration apply --test`,
	Run: func(cmd *cobra.Command, args []string) {
		testMode, _ := cmd.Flags().GetBool("test")
		if err := applyConfiguration(os.Stdout, testMode); err != nil {
			fail("Failed to apply configuration", err)
		}
	},
}

func init() {
	configurationCmd.AddCommand(configurationApplyCmd)
	configurationApplyCmd.Flags().Bool("test", false, "Validate configuration without signalling the server")
}

func validateConfiguration(out io.Writer) error {
	fmt.Fprintln(out, "Validating configuration...")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	fmt.Fprintf(out, "Config file: %s\n", cfg.ConfigFilePath())

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	for _, name := range []string{"DATABASE_URL", "IAM_DATA_KEY", "IAM_TOKEN_SIGNING_KEY"} {
		if os.Getenv(name) == "" {
			return fmt.Errorf("%s is not set", name)
		}
	}

	fmt.Fprintln(out, "Configuration is valid.")
	return nil
}

func applyConfiguration(out io.Writer, testMode bool) error {
	if err := validateConfiguration(out); err != nil {
		return err
	}
	if testMode {
		fmt.Fprintln(out, "Test mode: not signalling server.")
		return nil
	}

	output, err := exec.Command("pgrep", "-f", "iamctl server").Output()
	if err != nil {
		return fmt.Errorf("no running iamctl server found")
	}

	var pid int
	if _, err := fmt.Sscanf(string(output), "%d", &pid); err != nil {
		return fmt.Errorf("failed to parse PID: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}
	if err := process.Signal(syscall.SIGHUP); err != nil {
		return fmt.Errorf("failed to send signal: %w", err)
	}

	fmt.Fprintf(out, "Sent reload signal to process %d\n", pid)
	return nil
}
