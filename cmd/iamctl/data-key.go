package main

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/iam-admin/pkg/secretbox"
)

// dataKeyCmd represents the data-key command
var dataKeyCmd = &cobra.Command{
	Use:   "data-key",
	Short: "Manage the data encryption key",
	Long:  `Manage the data encryption key`,
	Run:   requireSubcommand,
}

// dataKeyGenerateCmd represents the data-key > generate command
var dataKeyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a data encryption key",
	Long: `
Generate a data encryption key

Use this command to generate a new Base64-encoded 256 bit data encryption key.
Once generated, this key should be placed into the environment of the server.
It seals SMTP passwords and identity provider client secrets in the database.

Example:

$ export IAM_DATA_KEY="$(iamctl data-key generate)"
`,
	Run: func(cmd *cobra.Command, args []string) {
		key, err := generateDataKey()
		if err != nil {
			fail("Failed to generate key", err)
		}
		fmt.Print(key)
	},
}

func init() {
	rootCmd.AddCommand(dataKeyCmd)
	dataKeyCmd.AddCommand(dataKeyGenerateCmd)
}

func generateDataKey() (string, error) {
	key, err := secretbox.GenerateKey()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.Strict().EncodeToString(key), nil
}
