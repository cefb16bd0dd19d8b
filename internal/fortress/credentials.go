package fortress

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const saltSize = 16

// UserRecord is the single account persisted on a device.
type UserRecord struct {
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
	Salt         string `json:"salt"`
	// EncryptedMasterKey is the session key wrapped under the quick-access PIN.
	EncryptedMasterKey string `json:"encryptedMasterKey,omitempty"`
}

// QuickAccess reports whether a PIN-wrapped key is present.
func (r *UserRecord) QuickAccess() bool {
	return r.EncryptedMasterKey != ""
}

func (r *UserRecord) saltBytes() ([]byte, error) {
	salt, err := hex.DecodeString(r.Salt)
	if err != nil {
		return nil, fmt.Errorf("decoding salt: %w", err)
	}
	return salt, nil
}

// CredentialStore holds exactly one local account and verifies its password.
type CredentialStore struct {
	store   Store
	deriver KeyDeriver
	rand    io.Reader
	logger  Logger
}

func NewCredentialStore(store Store, deriver KeyDeriver, logger Logger) *CredentialStore {
	return &CredentialStore{
		store:   store,
		deriver: deriver,
		rand:    rand.Reader,
		logger:  logger,
	}
}

// Load returns the persisted record or ErrNoAccount.
func (c *CredentialStore) Load(ctx context.Context) (*UserRecord, error) {
	data, ok, err := c.store.Get(ctx, UserRecordKey)
	if err != nil {
		return nil, fmt.Errorf("reading user record: %w", err)
	}
	if !ok {
		return nil, ErrNoAccount
	}
	var rec UserRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding user record: %w", err)
	}
	return &rec, nil
}

// Exists reports whether an account has been registered.
func (c *CredentialStore) Exists(ctx context.Context) (bool, error) {
	_, ok, err := c.store.Get(ctx, UserRecordKey)
	if err != nil {
		return false, fmt.Errorf("reading user record: %w", err)
	}
	return ok, nil
}

// Save persists rec, replacing any previous record.
func (c *CredentialStore) Save(ctx context.Context, rec *UserRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding user record: %w", err)
	}
	if err := c.store.Set(ctx, UserRecordKey, data); err != nil {
		return fmt.Errorf("writing user record: %w", err)
	}
	return nil
}

// Register creates the device account with a fresh salt. An existing account
// is only replaced when reset is true; otherwise ErrAccountExists is returned.
func (c *CredentialStore) Register(ctx context.Context, username string, password []byte, reset bool) (*UserRecord, error) {
	username, err := checkCredentials(username, password)
	if err != nil {
		return nil, err
	}

	exists, err := c.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if exists && !reset {
		return nil, ErrAccountExists
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(c.rand, salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	hash, err := c.deriver.PasswordHash(password, salt)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	rec := &UserRecord{
		Username:     username,
		PasswordHash: hex.EncodeToString(hash),
		Salt:         hex.EncodeToString(salt),
	}
	if err := c.Save(ctx, rec); err != nil {
		return nil, err
	}
	c.logger.Info("account registered", "replaced", exists)
	return rec, nil
}

// Verify checks username and password against the stored record. Both a
// wrong username and a wrong password yield ErrInvalidCredentials.
func (c *CredentialStore) Verify(ctx context.Context, username string, password []byte) (*UserRecord, error) {
	rec, err := c.Load(ctx)
	if err != nil {
		return nil, err
	}
	salt, err := rec.saltBytes()
	if err != nil {
		return nil, err
	}
	want, err := hex.DecodeString(rec.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("decoding password hash: %w", err)
	}

	// The hash is computed even for a wrong username so both failures cost the same.
	got, err := c.deriver.PasswordHash(password, salt)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(rec.Username)) == 1
	hashOK := subtle.ConstantTimeCompare(got, want) == 1
	if !userOK || !hashOK {
		c.logger.Warn("login rejected")
		return nil, ErrInvalidCredentials
	}
	return rec, nil
}

func checkCredentials(username string, password []byte) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(password) == 0 {
		return "", ErrMissingCredentials
	}
	return username, nil
}
