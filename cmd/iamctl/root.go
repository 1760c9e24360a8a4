package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/iam-admin/pkg/client"
	"github.com/doodlesbykumbi/iam-admin/pkg/config"
	"github.com/doodlesbykumbi/iam-admin/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:   "iamctl",
	Short: "IAM administration server and client",
	Long: `Run the IAM administration server and manage organizations, password
policies and instance settings through its API.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := logging.Setup(config.Get()); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid logging configuration: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("url", defaultURL(), "administration API URL (IAM_URL)")
	rootCmd.PersistentFlags().String("token", os.Getenv("IAM_TOKEN"), "bearer token for the API (IAM_TOKEN)")
}

func defaultURL() string {
	if u := os.Getenv("IAM_URL"); u != "" {
		return u
	}
	return "http://localhost:8080"
}

// apiClient builds a client from the persistent --url and --token flags.
func apiClient(cmd *cobra.Command) *client.Client {
	u, _ := cmd.Flags().GetString("url")
	token, _ := cmd.Flags().GetString("token")
	return client.New(u, token, nil)
}

// requireSubcommand is the Run of parent commands.
func requireSubcommand(cmd *cobra.Command, _ []string) {
	fmt.Printf("error: Command '%s' requires a subcommand\n", cmd.Name())
	fmt.Println()
	_ = cmd.Help()
	os.Exit(1)
}

// fail prints a failure and exits.
func fail(what string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", what, err)
	os.Exit(1)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
