package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/doodlesbykumbi/iam-admin/pkg/origin"
	"github.com/doodlesbykumbi/iam-admin/pkg/policy"
)

const (
	DefaultConfigPath = "/etc/iam/config"
	ConfigFileName    = "iam.yml"
)

// Sources an attribute value can come from.
const (
	SourceDefault     = "default"
	SourceFile        = "file"
	SourceEnvironment = "environment"
)

// IAMConfig holds all server configuration settings
type IAMConfig struct {
	// ListenAddress is the interface the API server binds to
	ListenAddress string `yaml:"listen_address" json:"listen_address"`

	// Port is the API server port
	Port int `yaml:"port" json:"port"`

	// LogLevel is a logrus level name
	LogLevel string `yaml:"log_level" json:"log_level"`

	// LogFormat is "text" or "json"
	LogFormat string `yaml:"log_format" json:"log_format"`

	// CORSAllowedOrigins are allowed in addition to every organization's allowed origins
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" json:"cors_allowed_origins"`

	// TrustedProxies is a list of CIDR ranges whose forwarding headers are honored
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`

	// TokenIssuer is the iss claim of issued and accepted admin tokens
	TokenIssuer string `yaml:"token_issuer" json:"token_issuer"`

	// TokenTTL is the lifetime of issued admin tokens in seconds
	TokenTTL int `yaml:"token_ttl" json:"token_ttl"`

	// AuditDatabase persists audit messages in addition to logging them
	AuditDatabase bool `yaml:"audit_database" json:"audit_database"`

	// DefaultPolicies apply to organizations without a policy of their own
	DefaultPolicies policy.Defaults `yaml:"default_policies" json:"default_policies"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// fileConfig mirrors IAMConfig with pointers so unset keys can be told apart
// from zero values.
type fileConfig struct {
	ListenAddress      *string            `yaml:"listen_address"`
	Port               *int               `yaml:"port"`
	LogLevel           *string            `yaml:"log_level"`
	LogFormat          *string            `yaml:"log_format"`
	CORSAllowedOrigins []string           `yaml:"cors_allowed_origins"`
	TrustedProxies     []string           `yaml:"trusted_proxies"`
	TokenIssuer        *string            `yaml:"token_issuer"`
	TokenTTL           *int               `yaml:"token_ttl"`
	AuditDatabase      *bool              `yaml:"audit_database"`
	DefaultPolicies    *fileDefaultPolicy `yaml:"default_policies"`
}

type fileDefaultPolicy struct {
	Complexity *policy.Complexity `yaml:"complexity"`
	Age        *policy.Age        `yaml:"age"`
	Lockout    *policy.Lockout    `yaml:"lockout"`
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *IAMConfig
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *IAMConfig {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			logrus.WithError(err).Warn("Falling back to default configuration")
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values
func newDefault() *IAMConfig {
	return &IAMConfig{
		ListenAddress:      "0.0.0.0",
		Port:               8080,
		LogLevel:           "info",
		LogFormat:          "text",
		CORSAllowedOrigins: []string{},
		TrustedProxies:     []string{},
		TokenIssuer:        "iam-admin",
		TokenTTL:           3600,
		AuditDatabase:      false,
		DefaultPolicies:    policy.DefaultPolicies(),
		sources:            make(map[string]string),
	}
}

// Load loads configuration from file and environment variables
// Environment variables take precedence over file values
func Load() (*IAMConfig, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = SourceDefault
	}

	configPath := os.Getenv("IAM_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&file)
	}

	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}

	return config, nil
}

func attributeNames() []string {
	return []string{
		"listen_address", "port", "log_level", "log_format",
		"cors_allowed_origins", "trusted_proxies", "token_issuer", "token_ttl",
		"audit_database", "default_policies",
	}
}

func (c *IAMConfig) applyFileConfig(file *fileConfig) {
	if file.ListenAddress != nil {
		c.ListenAddress = *file.ListenAddress
		c.sources["listen_address"] = SourceFile
	}
	if file.Port != nil {
		c.Port = *file.Port
		c.sources["port"] = SourceFile
	}
	if file.LogLevel != nil {
		c.LogLevel = *file.LogLevel
		c.sources["log_level"] = SourceFile
	}
	if file.LogFormat != nil {
		c.LogFormat = *file.LogFormat
		c.sources["log_format"] = SourceFile
	}
	if len(file.CORSAllowedOrigins) > 0 {
		c.CORSAllowedOrigins = file.CORSAllowedOrigins
		c.sources["cors_allowed_origins"] = SourceFile
	}
	if len(file.TrustedProxies) > 0 {
		c.TrustedProxies = file.TrustedProxies
		c.sources["trusted_proxies"] = SourceFile
	}
	if file.TokenIssuer != nil {
		c.TokenIssuer = *file.TokenIssuer
		c.sources["token_issuer"] = SourceFile
	}
	if file.TokenTTL != nil {
		c.TokenTTL = *file.TokenTTL
		c.sources["token_ttl"] = SourceFile
	}
	if file.AuditDatabase != nil {
		c.AuditDatabase = *file.AuditDatabase
		c.sources["audit_database"] = SourceFile
	}
	if d := file.DefaultPolicies; d != nil {
		if d.Complexity != nil {
			c.DefaultPolicies.Complexity = *d.Complexity
		}
		if d.Age != nil {
			c.DefaultPolicies.Age = *d.Age
		}
		if d.Lockout != nil {
			c.DefaultPolicies.Lockout = *d.Lockout
		}
		c.sources["default_policies"] = SourceFile
	}
}

func (c *IAMConfig) applyEnvConfig() error {
	if val := os.Getenv("IAM_LISTEN_ADDRESS"); val != "" {
		c.ListenAddress = val
		c.sources["listen_address"] = SourceEnvironment
	}
	// PORT is honored for platforms that inject it.
	for _, name := range []string{"PORT", "IAM_PORT"} {
		if val := os.Getenv(name); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid %s value %q: %w", name, val, err)
			}
			c.Port = i
			c.sources["port"] = SourceEnvironment
		}
	}
	if val := os.Getenv("IAM_LOG_LEVEL"); val != "" {
		c.LogLevel = val
		c.sources["log_level"] = SourceEnvironment
	}
	if val := os.Getenv("IAM_LOG_FORMAT"); val != "" {
		c.LogFormat = val
		c.sources["log_format"] = SourceEnvironment
	}
	if val := os.Getenv("IAM_CORS_ALLOWED_ORIGINS"); val != "" {
		c.CORSAllowedOrigins = splitAndTrim(val)
		c.sources["cors_allowed_origins"] = SourceEnvironment
	}
	if val := os.Getenv("IAM_TRUSTED_PROXIES"); val != "" {
		c.TrustedProxies = splitAndTrim(val)
		c.sources["trusted_proxies"] = SourceEnvironment
	}
	if val := os.Getenv("IAM_TOKEN_ISSUER"); val != "" {
		c.TokenIssuer = val
		c.sources["token_issuer"] = SourceEnvironment
	}
	if val := os.Getenv("IAM_TOKEN_TTL"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid IAM_TOKEN_TTL value %q: %w", val, err)
		}
		c.TokenTTL = i
		c.sources["token_ttl"] = SourceEnvironment
	}
	if val := os.Getenv("IAM_AUDIT_DATABASE"); val != "" {
		c.AuditDatabase = val == "true" || val == "1"
		c.sources["audit_database"] = SourceEnvironment
	}
	return nil
}

// ConfigFilePath returns the path to the config file
func (c *IAMConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *IAMConfig) Source(name string) string {
	if c.sources == nil {
		return SourceDefault
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return SourceDefault
}

// Addr returns the host:port the server listens on.
func (c *IAMConfig) Addr() string {
	return net.JoinHostPort(c.ListenAddress, strconv.Itoa(c.Port))
}

// TokenLifetime returns the admin token TTL as a duration
func (c *IAMConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenTTL) * time.Second
}

// IsTrustedProxy checks if an IP is from a trusted proxy
func (c *IAMConfig) IsTrustedProxy(ip string) bool {
	if len(c.TrustedProxies) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidr := range c.TrustedProxies {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			// Try as plain IP
			if net.ParseIP(cidr) != nil && cidr == ip {
				return true
			}
			continue
		}
		if network.Contains(parsedIP) {
			return true
		}
	}
	return false
}

// Validate validates the configuration
func (c *IAMConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log_format: %s", c.LogFormat)
	}
	if err := origin.ValidateAll(c.CORSAllowedOrigins); err != nil {
		return fmt.Errorf("invalid cors_allowed_origins: %w", err)
	}
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			if net.ParseIP(cidr) == nil {
				return fmt.Errorf("invalid trusted_proxies value: %s", cidr)
			}
		}
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("invalid token_ttl: %d", c.TokenTTL)
	}
	return c.DefaultPolicies.Validate()
}

func formatDefaults(d policy.Defaults) string {
	return fmt.Sprintf("min_length=%d max_age_days=%d max_attempts=%d",
		d.Complexity.MinLength, d.Age.MaxAgeDays, d.Lockout.MaxAttempts)
}

// Attributes returns all configuration attributes with their values and sources
func (c *IAMConfig) Attributes() []Attribute {
	return []Attribute{
		{Name: "listen_address", Value: c.ListenAddress, Source: c.Source("listen_address")},
		{Name: "port", Value: strconv.Itoa(c.Port), Source: c.Source("port")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "log_format", Value: c.LogFormat, Source: c.Source("log_format")},
		{Name: "cors_allowed_origins", Value: strings.Join(c.CORSAllowedOrigins, ","), Source: c.Source("cors_allowed_origins")},
		{Name: "trusted_proxies", Value: strings.Join(c.TrustedProxies, ","), Source: c.Source("trusted_proxies")},
		{Name: "token_issuer", Value: c.TokenIssuer, Source: c.Source("token_issuer")},
		{Name: "token_ttl", Value: strconv.Itoa(c.TokenTTL), Source: c.Source("token_ttl")},
		{Name: "audit_database", Value: strconv.FormatBool(c.AuditDatabase), Source: c.Source("audit_database")},
		{Name: "default_policies", Value: formatDefaults(c.DefaultPolicies), Source: c.Source("default_policies")},
	}
}

// FormatText returns a text representation of the configuration
func (c *IAMConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-24s %-48s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-24s %-48s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-24s %-48s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *IAMConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
