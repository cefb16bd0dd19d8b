package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("FORTRESS_CONFIG_PATH", "/custom/config.toml")
		t.Setenv("FORTRESS_HOME", "/custom/fortress")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		if defaults["config_path"] != "/custom/config.toml" {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], "/custom/config.toml")
		}
		if defaults["base_dir"] != "/custom/fortress" {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], "/custom/fortress")
		}
		if defaults["log_dir"] != "/custom/fortress/log" {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], "/custom/fortress/log")
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv("FORTRESS_CONFIG_PATH", "")
		t.Setenv("FORTRESS_HOME", "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()

		wantConfig := filepath.Join(homeDir, ".config", "fortress.toml")
		if defaults["config_path"] != wantConfig {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], wantConfig)
		}

		wantBase := filepath.Join(homeDir, ".local", "share", "fortress")
		if defaults["base_dir"] != wantBase {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], wantBase)
		}

		wantLog := filepath.Join(wantBase, "log")
		if defaults["log_dir"] != wantLog {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], wantLog)
		}
	})
}

func TestEnvironment_AssistantAPIKey(t *testing.T) {
	tests := []struct {
		name   string
		gemini string
		apiKey string
		want   string
	}{
		{name: "gemini key wins", gemini: "g-key", apiKey: "a-key", want: "g-key"},
		{name: "falls back to API_KEY", gemini: "", apiKey: "a-key", want: "a-key"},
		{name: "none set", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GEMINI_API_KEY", tt.gemini)
			t.Setenv("API_KEY", tt.apiKey)

			e, err := LoadEnvironment()
			if err != nil {
				t.Fatalf("LoadEnvironment() error = %v", err)
			}
			if got := e.AssistantAPIKey(); got != tt.want {
				t.Errorf("AssistantAPIKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadEnvironment_StorageCredentials(t *testing.T) {
	t.Setenv("FORTRESS_STORAGE_ACCESS_KEY_ID", "AKIA")
	t.Setenv("FORTRESS_STORAGE_SECRET_ACCESS_KEY", "shh")

	e, err := LoadEnvironment()
	if err != nil {
		t.Fatalf("LoadEnvironment() error = %v", err)
	}
	if e.StorageAccessKeyID != "AKIA" || e.StorageSecretAccessKey != "shh" {
		t.Errorf("storage credentials = %q/%q, want AKIA/shh", e.StorageAccessKeyID, e.StorageSecretAccessKey)
	}
}
