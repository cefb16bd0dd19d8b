package fortress

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// NoteStore is the only code path that reads or writes the note ciphertext.
//
// It remembers a digest of the blob it last loaded or wrote. Save re-reads the
// persisted blob first and refuses to write when it changed in between, so two
// processes sharing one store cannot silently drop each other's updates.
type NoteStore struct {
	store  Store
	cipher Cipher
	logger Logger

	version string
	tracked bool
}

func NewNoteStore(store Store, cipher Cipher, logger Logger) *NoteStore {
	return &NoteStore{store: store, cipher: cipher, logger: logger}
}

// Load decrypts the persisted collection. A missing blob is an empty
// collection. A blob that cannot be decrypted or parsed yields
// ErrDecryptionUnavailable and leaves the blob untouched.
func (s *NoteStore) Load(ctx context.Context, key *SessionKey) (Collection, error) {
	blob, ok, err := s.store.Get(ctx, NotesKey)
	if err != nil {
		return nil, fmt.Errorf("reading notes: %w", err)
	}
	s.remember(blob, ok)
	if !ok {
		return Collection{}, nil
	}

	plaintext, err := s.cipher.Decrypt(blob, key.Bytes())
	if err != nil {
		s.logger.Error("notes could not be decrypted", "bytes", len(blob))
		return nil, fmt.Errorf("%w: %v", ErrDecryptionUnavailable, err)
	}
	var notes Collection
	if err := json.Unmarshal(plaintext, &notes); err != nil {
		s.logger.Error("decrypted notes could not be parsed", "bytes", len(plaintext))
		return nil, fmt.Errorf("%w: %v", ErrDecryptionUnavailable, err)
	}
	if notes == nil {
		notes = Collection{}
	}
	s.logger.Debug("notes loaded", "count", len(notes))
	return notes, nil
}

// Save serializes the full collection, encrypts it under key and replaces the
// persisted blob.
func (s *NoteStore) Save(ctx context.Context, notes Collection, key *SessionKey) error {
	if err := s.checkVersion(ctx); err != nil {
		return err
	}
	if notes == nil {
		notes = Collection{}
	}
	plaintext, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("encoding notes: %w", err)
	}
	blob, err := s.cipher.Encrypt(plaintext, key.Bytes())
	if err != nil {
		return fmt.Errorf("encrypting notes: %w", err)
	}
	if err := s.store.Set(ctx, NotesKey, blob); err != nil {
		return fmt.Errorf("writing notes: %w", err)
	}
	s.remember(blob, true)
	s.logger.Debug("notes saved", "count", len(notes))
	return nil
}

// Discard deletes the persisted ciphertext. Only account reset uses it.
func (s *NoteStore) Discard(ctx context.Context) error {
	if err := s.store.Delete(ctx, NotesKey); err != nil {
		return fmt.Errorf("deleting notes: %w", err)
	}
	s.remember(nil, false)
	return nil
}

// Forget drops the remembered version, e.g. on lock.
func (s *NoteStore) Forget() {
	s.version = ""
	s.tracked = false
}

func (s *NoteStore) checkVersion(ctx context.Context) error {
	if !s.tracked {
		return nil
	}
	blob, ok, err := s.store.Get(ctx, NotesKey)
	if err != nil {
		return fmt.Errorf("reading notes: %w", err)
	}
	if digest(blob, ok) != s.version {
		s.logger.Warn("notes changed since load; refusing to overwrite")
		return ErrVersionConflict
	}
	return nil
}

func (s *NoteStore) remember(blob []byte, ok bool) {
	s.version = digest(blob, ok)
	s.tracked = true
}

func digest(blob []byte, ok bool) string {
	if !ok {
		return ""
	}
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:])
}
