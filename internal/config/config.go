package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/thinkthink/core/internal/pkg/mail"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 2333
	defaultEnv        = "development"
)

// AppConfig holds runtime configuration loaded from YAML. Key material is
// never read from the YAML file alone: every secret field has an environment
// override so deployments can keep credentials out of the config file.
type AppConfig struct {
	Port           int          `yaml:"port"`
	Env            string       `yaml:"env"` // "development" | "production"
	DSN            string       `yaml:"dsn"` // MySQL DSN
	RedisURL       string       `yaml:"redis_url"`
	BaseURL        string       `yaml:"base_url"` // public URL used in magic-link emails
	AllowedOrigins []string     `yaml:"allowed_origins"`
	JWTSecret      string       `yaml:"jwt_secret"`
	Mail           mail.Config  `yaml:"mail"`
	AI             AIConfig     `yaml:"ai"`
	OAuth          OAuthConfig  `yaml:"oauth"`
	S3             S3Options    `yaml:"s3"`
	AutoMigrate    *bool        `yaml:"auto_migrate"`
}

// AIConfig configures the evaluation model provider.
type AIConfig struct {
	// Type is one of "anthropic", "openai", "openai-compatible".
	Type     string `yaml:"type"`
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
}

// OAuthConfig lists enabled social sign-in providers.
type OAuthConfig struct {
	Providers []OAuthProvider `yaml:"providers"`
}

// OAuthProvider is one social sign-in provider. ClientSecret is normally
// injected via TT_OAUTH_<TYPE>_SECRET.
type OAuthProvider struct {
	Type         string `yaml:"type"` // "github" | "google"
	Enabled      bool   `yaml:"enabled"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// S3Options configures the optional export upload target.
type S3Options struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Endpoint        string `yaml:"endpoint"`
	PathStyleAccess bool   `yaml:"path_style_access"`
	CustomDomain    string `yaml:"custom_domain"`
	PathTemplate    string `yaml:"path_template"`
}

// Load reads the YAML config file, applies defaults and environment
// overrides. A missing file is not an error; env-only deployments work.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to defaults + env
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("database dsn is required (dsn in %s or TT_DSN)", path)
	}
	return cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if strings.TrimSpace(c.Env) == "" {
		c.Env = defaultEnv
	}
	if strings.TrimSpace(c.RedisURL) == "" {
		c.RedisURL = "redis://localhost:6379/0"
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = fmt.Sprintf("http://localhost:%d", c.Port)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
}

// applyEnvOverrides lets deployments keep secrets out of the YAML file.
func (c *AppConfig) applyEnvOverrides() {
	override(&c.DSN, "TT_DSN")
	override(&c.RedisURL, "TT_REDIS_URL")
	override(&c.JWTSecret, "TT_JWT_SECRET")
	override(&c.AI.APIKey, "TT_AI_API_KEY")
	override(&c.Mail.Pass, "TT_SMTP_PASS")
	override(&c.Mail.ResendKey, "TT_RESEND_KEY")
	override(&c.S3.AccessKeyID, "TT_S3_ACCESS_KEY_ID")
	override(&c.S3.SecretAccessKey, "TT_S3_SECRET_ACCESS_KEY")

	for i := range c.OAuth.Providers {
		p := &c.OAuth.Providers[i]
		key := "TT_OAUTH_" + strings.ToUpper(strings.TrimSpace(p.Type)) + "_SECRET"
		override(&p.ClientSecret, key)
	}
}

func override(dst *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = v
	}
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "development")
}

// ShouldAutoMigrate defaults to true unless explicitly disabled.
func (c *AppConfig) ShouldAutoMigrate() bool {
	if c.AutoMigrate == nil {
		return true
	}
	return *c.AutoMigrate
}
