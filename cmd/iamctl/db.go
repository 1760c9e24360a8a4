package main

import (
	"github.com/spf13/cobra"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the database",
	Long:  `Manage the database schema and migrations.`,
	Run:   requireSubcommand,
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.PersistentFlags().String("migrations", "", "run migrations from this directory instead of the embedded ones")
}
