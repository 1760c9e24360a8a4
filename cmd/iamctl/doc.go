// Command iamctl runs the IAM administration server and talks to its API.
//
// # Quick Start
//
//	# Generate a data key for secret columns and a token signing key
//	export IAM_DATA_KEY=$(iamctl data-key generate)
//	export IAM_TOKEN_SIGNING_KEY=$(iamctl data-key generate)
//
//	# Run database migrations
//	iamctl db migrate
//
//	# Start the server
//	iamctl server
//
//	# Issue an admin token and create an organization
//	export IAM_TOKEN=$(iamctl token issue --subject ops --role iam_admin)
//	iamctl org create acme --domain acme.com
//
//	# Apply password policies from a document
//	iamctl policy apply policies.yml
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - IAM_DATA_KEY: Base64 encoded 256 bit key sealing SMTP passwords and client secrets
//   - IAM_TOKEN_SIGNING_KEY: HS256 key for admin tokens, at least 32 bytes
//   - IAM_CONFIG_PATH: directory holding iam.yml (default /etc/iam/config)
//   - IAM_LOG_LEVEL: Log level (debug, info, warn, error)
//   - IAM_URL, IAM_TOKEN: API address and bearer token for client commands
package main
