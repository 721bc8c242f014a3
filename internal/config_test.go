package internal

import (
	"strings"
	"testing"

	"github.com/starford/jera/internal/periodic"
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

func TestEngineConfig_EmptyScopeDefaults(t *testing.T) {
	cfg := EngineConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty scope should default: %v", err)
	}
	if cfg.Scope != "all-periodic" {
		t.Errorf("scope = %q, want all-periodic", cfg.Scope)
	}
}

func TestEngineConfig_InvalidScope(t *testing.T) {
	cfg := EngineConfig{Scope: "somewhere"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid scope should fail validation")
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

func TestFullConfig_PeriodicValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Periodic = &periodic.PeriodicSettings{
		Granularities: map[string]periodic.Record{
			"fortnight": {Enabled: true},
		},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch unknown granularity")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}
