package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/joestump/mediashare/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("MEDIASHARE_DB_DRIVER", "sqlite3")
	t.Setenv("MEDIASHARE_DB_DSN", "file:test.db")
	t.Setenv("MEDIASHARE_JWT_SECRET", testSecret)
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("http.addr = %q, want %q", cfg.HTTP.Addr, ":8080")
	}
	if cfg.JWT.Lifetime != 168*time.Hour {
		t.Errorf("jwt.lifetime = %v, want 168h", cfg.JWT.Lifetime)
	}
	if cfg.HTTP.RequestTimeout != 30*time.Second {
		t.Errorf("request timeout = %v, want 30s", cfg.HTTP.RequestTimeout)
	}
	if cfg.OIDCEnabled() {
		t.Error("OIDC should be disabled without an issuer")
	}
}

func TestLoad_AdminEmails(t *testing.T) {
	setRequired(t)
	t.Setenv("MEDIASHARE_ADMIN_EMAILS", " Root@Example.com, ops@example.com ,")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.AdminEmails) != 2 {
		t.Fatalf("len(admin emails) = %d, want 2", len(cfg.AdminEmails))
	}
	if !cfg.IsAdminEmail("root@example.com") {
		t.Error("expected root@example.com to be allow-listed")
	}
	if !cfg.IsAdminEmail("OPS@example.com") {
		t.Error("allow-list match should ignore case")
	}
	if cfg.IsAdminEmail("someone@example.com") {
		t.Error("unexpected allow-list match")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing driver", map[string]string{"MEDIASHARE_DB_DRIVER": ""}, "DB_DRIVER"},
		{"short secret", map[string]string{"MEDIASHARE_JWT_SECRET": "short"}, "JWT_SECRET"},
		{"bad lifetime", map[string]string{"MEDIASHARE_JWT_LIFETIME": "forever"}, "JWT_LIFETIME"},
		{"oidc without client", map[string]string{"MEDIASHARE_OIDC_ISSUER": "https://id.example.com"}, "OIDC_CLIENT_ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
