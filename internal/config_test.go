package internal

import (
	"strings"
	"testing"
	"time"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestVaultConfig_InvalidTimezone(t *testing.T) {
	cfg := VaultConfig{Path: "./vault", Timezone: "Mars/Olympus"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid timezone should fail validation")
	}
	if !strings.Contains(err.Error(), "timezone") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestVaultConfig_Location(t *testing.T) {
	cfg := VaultConfig{Path: "./vault", Timezone: "Asia/Jerusalem"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid timezone should pass: %v", err)
	}
	if got := cfg.Location().String(); got != "Asia/Jerusalem" {
		t.Errorf("Location = %q", got)
	}

	empty := VaultConfig{Path: "./vault"}
	if empty.Location() != time.Local {
		t.Error("empty timezone should fall back to local")
	}
}

func TestVaultConfig_TimeoutFallback(t *testing.T) {
	cfg := VaultConfig{Path: "./vault"}
	if got := cfg.Timeout(); got != 5*time.Second {
		t.Errorf("zero timeout should default to 5s, got %v", got)
	}
	cfg.IOTimeoutSec = 30
	if got := cfg.Timeout(); got != 30*time.Second {
		t.Errorf("Timeout = %v", got)
	}
}

func TestVaultConfig_RequiresPath(t *testing.T) {
	cfg := VaultConfig{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing path should fail validation")
	}
}

func TestHistoryConfig_EmptyPathDisables(t *testing.T) {
	cfg := HistoryConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty history config should pass: %v", err)
	}
	if cfg.Enabled() {
		t.Error("empty path should disable history")
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.App.HTTP.Address() != ":8080" {
		t.Errorf("address = %q", cfg.App.HTTP.Address())
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}
