package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/iam-admin/pkg/config"
	"github.com/doodlesbykumbi/iam-admin/pkg/identity"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage admin tokens",
	Run:   requireSubcommand,
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue an admin bearer token",
	Long: `Issue an admin bearer token signed with IAM_TOKEN_SIGNING_KEY.

An org_owner token needs --org naming the organization, by id or name.

Example:
  export IAM_TOKEN=$(iamctl token issue --subject ops --role iam_admin)
  iamctl token issue --subject alice --role org_owner --org acme --ttl 15m`,
	Run: func(cmd *cobra.Command, args []string) {
		subject, _ := cmd.Flags().GetString("subject")
		roles, _ := cmd.Flags().GetStringSlice("role")
		org, _ := cmd.Flags().GetString("org")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		token, err := issueToken(config.Get(), &identity.Identity{Subject: subject, OrgID: org, Roles: roles}, ttl)
		if err != nil {
			fail("Failed to issue token", err)
		}
		fmt.Println(token)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenIssueCmd)

	tokenIssueCmd.Flags().String("subject", "", "token subject")
	tokenIssueCmd.Flags().StringSlice("role", []string{identity.RoleIAMAdmin}, "role claim (repeatable)")
	tokenIssueCmd.Flags().String("org", "", "organization an org_owner manages")
	tokenIssueCmd.Flags().Duration("ttl", 0, "token lifetime (default: token_ttl from the configuration)")
	_ = tokenIssueCmd.MarkFlagRequired("subject")
}

func issueToken(cfg *config.IAMConfig, id *identity.Identity, ttl time.Duration) (string, error) {
	if id.HasRole(identity.RoleOrgOwner) && id.OrgID == "" {
		return "", fmt.Errorf("an %s token needs --org", identity.RoleOrgOwner)
	}
	for _, role := range id.Roles {
		if role != identity.RoleIAMAdmin && role != identity.RoleOrgOwner {
			return "", fmt.Errorf("unknown role %q", role)
		}
	}
	if ttl <= 0 {
		ttl = cfg.TokenLifetime()
	}

	authn, err := authenticator(cfg)
	if err != nil {
		return "", err
	}
	return authn.Issue(id, ttl)
}
