package encryption

import (
	"testing"

	"fortress-go/internal/config"
)

func TestNewCryptoFromConfig(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.EncryptionConfig
		wantErr     bool
		wantDeriver string
	}{
		{name: "default", cfg: config.EncryptionConfig{}, wantDeriver: "argon2"},
		{name: "standard", cfg: config.EncryptionConfig{Type: "standard", KDFTime: 2}, wantDeriver: "argon2"},
		{name: "test", cfg: config.EncryptionConfig{Type: "test"}, wantDeriver: "test"},
		{name: "unknown", cfg: config.EncryptionConfig{Type: "rot13"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewCryptoFromConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewCryptoFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Cipher == nil || got.Wrapper == nil || got.Deriver == nil {
				t.Fatalf("NewCryptoFromConfig() returned incomplete crypto: %+v", got)
			}

			var kind string
			switch got.Deriver.(type) {
			case *Argon2Deriver:
				kind = "argon2"
			case TestDeriver:
				kind = "test"
			}
			if kind != tt.wantDeriver {
				t.Errorf("deriver = %q, want %q", kind, tt.wantDeriver)
			}
		})
	}
}
