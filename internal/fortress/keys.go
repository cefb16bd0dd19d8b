package fortress

import (
	"context"
	"fmt"
)

// DefaultPinLength is the quick-access PIN length used when none is configured.
const DefaultPinLength = 4

// KeyManager derives session keys from passwords and manages the PIN-wrapped
// quick-access copy of the key.
type KeyManager struct {
	deriver   KeyDeriver
	wrapper   KeyWrapper
	creds     *CredentialStore
	pinLength int
	logger    Logger
}

func NewKeyManager(deriver KeyDeriver, wrapper KeyWrapper, creds *CredentialStore, pinLength int, logger Logger) *KeyManager {
	if pinLength <= 0 {
		pinLength = DefaultPinLength
	}
	return &KeyManager{
		deriver:   deriver,
		wrapper:   wrapper,
		creds:     creds,
		pinLength: pinLength,
		logger:    logger,
	}
}

// Derive produces the session key for a verified record and its password.
func (m *KeyManager) Derive(rec *UserRecord, password []byte) (*SessionKey, error) {
	salt, err := rec.saltBytes()
	if err != nil {
		return nil, err
	}
	b, err := m.deriver.DeriveKey(password, salt)
	if err != nil {
		return nil, fmt.Errorf("deriving session key: %w", err)
	}
	defer clear(b)
	return NewSessionKey(b), nil
}

// PinLength is the number of digits a PIN must have.
func (m *KeyManager) PinLength() int {
	return m.pinLength
}

// ValidPIN reports whether pin has the configured length and only digits.
func (m *KeyManager) ValidPIN(pin string) bool {
	if len(pin) != m.pinLength {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// EnableQuickAccess wraps key under pin and persists it on the record,
// replacing any previous wrapped key. The updated record is returned.
func (m *KeyManager) EnableQuickAccess(ctx context.Context, rec *UserRecord, key *SessionKey, pin string) (*UserRecord, error) {
	if !m.ValidPIN(pin) {
		return nil, ErrInvalidPinFormat
	}
	if key.Destroyed() {
		return nil, ErrLocked
	}
	wrapped, err := m.wrapper.Wrap(key.Bytes(), pin)
	if err != nil {
		return nil, fmt.Errorf("wrapping session key: %w", err)
	}

	updated := *rec
	updated.EncryptedMasterKey = wrapped
	if err := m.creds.Save(ctx, &updated); err != nil {
		return nil, err
	}
	m.logger.Info("quick access enabled", "replaced", rec.QuickAccess())
	return &updated, nil
}

// Unwrap recovers the session key from the record's wrapped copy. A wrong
// PIN, a malformed PIN and a corrupted wrapped key are all ErrInvalidPin.
func (m *KeyManager) Unwrap(rec *UserRecord, pin string) (*SessionKey, error) {
	if !rec.QuickAccess() {
		return nil, ErrNoQuickAccess
	}
	if !m.ValidPIN(pin) {
		return nil, ErrInvalidPin
	}
	b, err := m.wrapper.Unwrap(rec.EncryptedMasterKey, pin)
	if err != nil {
		m.logger.Warn("quick access unlock rejected")
		return nil, ErrInvalidPin
	}
	defer clear(b)
	if len(b) != SessionKeySize {
		m.logger.Warn("quick access unlock rejected", "reason", "implausible key")
		return nil, ErrInvalidPin
	}
	return NewSessionKey(b), nil
}
