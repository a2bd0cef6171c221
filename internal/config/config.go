package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// minJWTSecretLen is the shortest HS256 signing secret accepted.
const minJWTSecretLen = 32

type Config struct {
	HTTP struct {
		Addr           string
		RequestTimeout time.Duration
	}
	DB struct {
		Driver string
		DSN    string
	}
	JWT struct {
		Secret   string
		Lifetime time.Duration
	}
	OIDC struct {
		Issuer       string
		ClientID     string
		ClientSecret string
		RedirectURL  string
	}
	// AdminEmails is the allow-list of accounts provisioned as admins when
	// they register or sign in.
	AdminEmails     []string
	SessionLifetime time.Duration
	InsecureCookies bool
}

// OIDCEnabled reports whether single sign-on is configured.
func (c *Config) OIDCEnabled() bool {
	return c.OIDC.Issuer != ""
}

// IsAdminEmail reports whether email is on the admin allow-list.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range c.AdminEmails {
		if e == email {
			return true
		}
	}
	return false
}

// Load reads config from environment (MEDIASHARE_ prefix) and optional mediashare.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MEDIASHARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("mediashare")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.request_timeout", "30s")
	v.SetDefault("jwt.lifetime", "168h")
	v.SetDefault("session.lifetime", "168h")

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.JWT.Secret = v.GetString("jwt.secret")
	cfg.OIDC.Issuer = v.GetString("oidc.issuer")
	cfg.OIDC.ClientID = v.GetString("oidc.client_id")
	cfg.OIDC.ClientSecret = v.GetString("oidc.client_secret")
	cfg.OIDC.RedirectURL = v.GetString("oidc.redirect_url")
	cfg.InsecureCookies = v.GetBool("insecure_cookies")
	cfg.AdminEmails = splitEmails(v.GetString("admin_emails"))

	var err error
	if cfg.HTTP.RequestTimeout, err = time.ParseDuration(v.GetString("http.request_timeout")); err != nil {
		return nil, fmt.Errorf("invalid MEDIASHARE_HTTP_REQUEST_TIMEOUT: %w", err)
	}
	if cfg.JWT.Lifetime, err = time.ParseDuration(v.GetString("jwt.lifetime")); err != nil {
		return nil, fmt.Errorf("invalid MEDIASHARE_JWT_LIFETIME: %w", err)
	}
	if cfg.SessionLifetime, err = time.ParseDuration(v.GetString("session.lifetime")); err != nil {
		return nil, fmt.Errorf("invalid MEDIASHARE_SESSION_LIFETIME: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DB.Driver == "" {
		return fmt.Errorf("MEDIASHARE_DB_DRIVER is required (sqlite3, mysql, postgres)")
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("MEDIASHARE_DB_DSN is required")
	}
	if len(c.JWT.Secret) < minJWTSecretLen {
		return fmt.Errorf("MEDIASHARE_JWT_SECRET is required and must be at least %d bytes", minJWTSecretLen)
	}
	if c.OIDCEnabled() {
		if c.OIDC.ClientID == "" {
			return fmt.Errorf("MEDIASHARE_OIDC_CLIENT_ID is required when MEDIASHARE_OIDC_ISSUER is set")
		}
		if c.OIDC.ClientSecret == "" {
			return fmt.Errorf("MEDIASHARE_OIDC_CLIENT_SECRET is required when MEDIASHARE_OIDC_ISSUER is set")
		}
		if c.OIDC.RedirectURL == "" {
			return fmt.Errorf("MEDIASHARE_OIDC_REDIRECT_URL is required when MEDIASHARE_OIDC_ISSUER is set")
		}
	}
	return nil
}

func splitEmails(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
