package main

import (
	"github.com/spf13/cobra"
)

// configurationCmd represents the configuration command
var configurationCmd = &cobra.Command{
	Use:   "configuration",
	Short: "Manage server configuration",
	Long:  `Show and validate the IAM administration server configuration.`,
	Run:   requireSubcommand,
}

func init() {
	rootCmd.AddCommand(configurationCmd)
}
