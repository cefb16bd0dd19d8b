package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for fortress.
type Config struct {
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Verbose    bool             `toml:"verbose"`
	Storage    StorageConfig    `toml:"storage"`
	Encryption EncryptionConfig `toml:"encryption"`
	Assistant  AssistantConfig  `toml:"assistant"`
}

// StorageConfig selects the key-value backend holding the user record and the
// note ciphertext.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StorageConfig struct {
	Type string `toml:"type"` // "sqlite", "filesystem", "memory", "s3" or "minio"

	// SQLite-specific fields (only used when Type == "sqlite")
	DataDir string `toml:"data_dir,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`

	// Object storage fields (used when Type == "s3" or "minio")
	Bucket   string `toml:"bucket,omitempty"`
	Prefix   string `toml:"prefix,omitempty"`
	Region   string `toml:"region,omitempty"`
	Endpoint string `toml:"endpoint,omitempty"` // s3: optional override; minio: required host:port
	UseSSL   bool   `toml:"use_ssl,omitempty"`

	// Static object storage credentials come from the environment, never the file.
	AccessKeyID     string `toml:"-"`
	SecretAccessKey string `toml:"-"`
}

// EncryptionConfig tunes the key derivation and quick-access PIN wrapping.
type EncryptionConfig struct {
	Type          string `toml:"type"`            // "standard" (default) or "test"
	KDFTime       uint32 `toml:"kdf_time"`        // argon2id passes
	KDFMemoryKiB  uint32 `toml:"kdf_memory_kib"`  // argon2id memory
	KDFThreads    uint8  `toml:"kdf_threads"`     // argon2id parallelism
	PinLength     int    `toml:"pin_length"`      // quick-access PIN digits
	PinWorkFactor int    `toml:"pin_work_factor"` // age scrypt log2(N) used when wrapping
}

// AssistantConfig selects the transcription/autocomplete service.
// The API key is read from the environment.
type AssistantConfig struct {
	Type  string `toml:"type"` // "gemini" or "none"
	Model string `toml:"model,omitempty"`
}

// Defaults applied by NewConfig.
const (
	DefaultKDFTime       = 1
	DefaultKDFMemoryKiB  = 64 * 1024
	DefaultKDFThreads    = 4
	DefaultPinLength     = 4
	DefaultPinWorkFactor = 18
	DefaultAssistantType = "gemini"
	DefaultModel         = "gemini-2.5-flash"
)

// NewConfig creates a new Config rooted at baseDir with default settings.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Storage: StorageConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "data"),
		},
		Encryption: EncryptionConfig{
			Type:          "standard",
			KDFTime:       DefaultKDFTime,
			KDFMemoryKiB:  DefaultKDFMemoryKiB,
			KDFThreads:    DefaultKDFThreads,
			PinLength:     DefaultPinLength,
			PinWorkFactor: DefaultPinWorkFactor,
		},
		Assistant: AssistantConfig{
			Type:  DefaultAssistantType,
			Model: DefaultModel,
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
