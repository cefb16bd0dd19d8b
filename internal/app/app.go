package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"fortress-go/internal/assistant"
	"fortress-go/internal/config"
	"fortress-go/internal/encryption"
	"fortress-go/internal/fortress"
	"fortress-go/internal/storage"
)

// FortressApp is the application layer between the CLI and the vault.
// It constructs all dependencies from config and the environment, exposes
// high-level operations that accept raw strings, and locks the vault and
// closes the store on Close.
type FortressApp struct {
	cfg       *config.Config
	store     fortress.Store
	vault     *fortress.Vault
	assistant fortress.Assistant
	logger    *slog.Logger
	op        *Operation
	logFile   *os.File
	theme     Theme
}

// NewFortressApp creates a fully wired FortressApp from the given config.
// operation identifies the CLI command being run (e.g. "Add", "List").
// The caller must call Close when done.
func NewFortressApp(ctx context.Context, cfg *config.Config, operation string) (*FortressApp, error) {
	environment, err := LoadEnvironment()
	if err != nil {
		return nil, err
	}

	op := NewOperation(operation)
	logger, logFile, err := newLogger(cfg.LogDir, op.ID, cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	adapter := &slogAdapter{l: logger}

	crypto, err := encryption.NewCryptoFromConfig(cfg.Encryption)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating crypto: %w", err)
	}

	storageCfg := cfg.Storage
	storageCfg.AccessKeyID = environment.StorageAccessKeyID
	storageCfg.SecretAccessKey = environment.StorageSecretAccessKey
	store, err := storage.NewStoreFromConfig(ctx, storageCfg)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating store: %w", err)
	}

	asst, err := assistant.NewAssistantFromConfig(ctx, cfg.Assistant, environment.AssistantAPIKey(), adapter)
	if err != nil {
		store.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating assistant: %w", err)
	}

	theme, err := loadTheme(ctx, store)
	if err != nil {
		store.Close()
		logFile.Close()
		return nil, err
	}

	v := fortress.NewVault(store, crypto, cfg.Encryption.PinLength, fortress.RealClock{}, fortress.UUIDGenerator{}, adapter)
	logger.Debug("operation started", "operation", op.Name, "storage", storageCfg.Type)

	return &FortressApp{
		cfg:       cfg,
		store:     store,
		vault:     v,
		assistant: asst,
		logger:    logger,
		op:        op,
		logFile:   logFile,
		theme:     theme,
	}, nil
}

// Vault returns the session. It starts locked.
func (a *FortressApp) Vault() *fortress.Vault {
	return a.vault
}

// Fail records err as the outcome of the operation.
func (a *FortressApp) Fail(err error) {
	a.op.Fail(err)
}

// ListNotes parses the raw view and sort names and returns the matching notes.
func (a *FortressApp) ListNotes(view, search, sort string) ([]fortress.Note, error) {
	v, err := fortress.ParseView(view)
	if err != nil {
		return nil, err
	}
	s, err := fortress.ParseSort(sort)
	if err != nil {
		return nil, err
	}
	return a.vault.Notes(fortress.Query{View: v, Search: search, Sort: s})
}

// NewEditor returns an editor backed by the configured assistant.
func (a *FortressApp) NewEditor() *fortress.Editor {
	return fortress.NewEditor(a.assistant, &slogAdapter{l: a.logger})
}

// AwaitTasks applies editor results until no task of the open context is
// pending. Failed tasks do not stop the wait; their errors are returned joined.
func (a *FortressApp) AwaitTasks(ctx context.Context, e *fortress.Editor) error {
	var errs []error
	for e.Pending() > 0 {
		select {
		case r := <-e.Results():
			if r.Err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", r.Kind, r.Err))
			}
			e.Apply(r)
		case <-ctx.Done():
			e.Close()
			return ctx.Err()
		}
	}
	return errors.Join(errs...)
}

// Theme returns the theme loaded at startup or last set.
func (a *FortressApp) Theme() Theme {
	return a.theme
}

// SetTheme parses and persists a theme.
func (a *FortressApp) SetTheme(ctx context.Context, raw string) (Theme, error) {
	t, err := ParseTheme(raw)
	if err != nil {
		return "", err
	}
	if err := saveTheme(ctx, a.store, t); err != nil {
		return "", err
	}
	a.theme = t
	a.logger.Info("theme changed", "theme", string(t))
	return t, nil
}

// Backup copies the account record, the note ciphertext and the theme into a
// filesystem store at dir. Nothing is decrypted. It returns the copied keys.
func (a *FortressApp) Backup(ctx context.Context, dir string) ([]string, error) {
	dst, err := storage.NewFileSystemStore(dir)
	if err != nil {
		return nil, fmt.Errorf("opening backup directory: %w", err)
	}
	defer dst.Close()

	copied, err := storage.Copy(ctx, a.store, dst, fortress.UserRecordKey, fortress.NotesKey, fortress.ThemeKey)
	if err != nil {
		return copied, fmt.Errorf("backing up: %w", err)
	}
	a.logger.Info("backup written", "dir", dir, "keys", len(copied))
	return copied, nil
}

// schemaChecker is implemented by stores with a versioned schema.
type schemaChecker interface {
	CheckMigrations() error
}

// CheckStorage verifies the store schema is current. Stores without a
// schema always pass.
func (a *FortressApp) CheckStorage() error {
	sc, ok := a.store.(schemaChecker)
	if !ok {
		return nil
	}
	if err := sc.CheckMigrations(); err != nil {
		return fmt.Errorf("checking storage schema: %w", err)
	}
	return nil
}

// Close locks the vault, closes the store and finishes the operation log.
func (a *FortressApp) Close() error {
	var firstErr error

	a.vault.Lock()

	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}

	msg := "operation finished"
	if a.op.Failed() {
		msg = "operation failed"
	}
	a.logger.Info(msg,
		"operation", a.op.Name, "status", a.op.Status, "duration", time.Since(a.op.Started).Round(time.Millisecond))

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
