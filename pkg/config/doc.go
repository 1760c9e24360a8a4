// Package config provides configuration management for the IAM administration server.
//
// # Configuration Sources
//
// Each attribute starts from a built-in default, is overridden by the YAML
// file at $IAM_CONFIG_PATH/iam.yml (default /etc/iam/config/iam.yml), and then
// by environment variables. The source of every attribute is tracked and shown
// by `iamctl configuration show`.
//
// # Key Configuration Options
//
//   - IAM_PORT / PORT: Server listen port
//   - IAM_LOG_LEVEL, IAM_LOG_FORMAT: Logging verbosity and format
//   - IAM_CORS_ALLOWED_ORIGINS: Extra CORS origins, comma separated
//   - IAM_TOKEN_ISSUER, IAM_TOKEN_TTL: Admin token settings
//   - IAM_AUDIT_DATABASE: Persist audit messages
//
// Secrets are read from the environment only and are not part of IAMConfig:
//
//   - DATABASE_URL: Database connection
//   - IAM_DATA_KEY: Base64 key sealing SMTP passwords and IDP client secrets
//   - IAM_TOKEN_SIGNING_KEY: HMAC key for admin tokens
//
// Default password policies can only be set in the file. Each listed section
// replaces the built-in one:
//
//	default_policies:
//	  complexity:
//	    min_length: 10
//	    has_symbol: true
//	  lockout:
//	    max_attempts: 5
package config
