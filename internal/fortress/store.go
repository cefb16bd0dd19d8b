package fortress

import (
	"context"
	"fmt"
	"regexp"
)

// Keys under which the vault persists its resources.
const (
	UserRecordKey = "fortress_user_auth"
	NotesKey      = "fortress_notes_data"
	ThemeKey      = "theme"
)

// Store is the key-value collaborator every persisted resource goes through.
// Set must replace the whole value or fail; it never applies partially.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9_.-]*$`)

// ValidateKey rejects keys that could escape a directory or object prefix.
// Every Store implementation applies it.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid storage key: %q", key)
	}
	return nil
}
