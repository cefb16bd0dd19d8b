package fortress

import (
	"context"
	"errors"
	"fmt"
)

// Status summarizes what the entry screen needs to know.
type Status struct {
	AccountExists bool
	QuickAccess   bool
	Unlocked      bool
	Unavailable   bool
	Username      string
	NoteCount     int
}

// Vault is one unlocked-or-locked session over the device account. It owns the
// session key, the in-memory collection and the unavailable flag.
//
// Vault is not safe for concurrent use. Long-running assistant work goes
// through an Editor and never touches the Vault directly.
type Vault struct {
	creds  *CredentialStore
	keys   *KeyManager
	notes  *NoteStore
	clock  Clock
	ids    IDGenerator
	logger Logger

	record      *UserRecord
	key         *SessionKey
	collection  Collection
	unavailable bool
}

// NewVault wires the vault components over a single store.
func NewVault(store Store, crypto Crypto, pinLength int, clock Clock, ids IDGenerator, logger Logger) *Vault {
	creds := NewCredentialStore(store, crypto.Deriver, logger)
	return &Vault{
		creds:  creds,
		keys:   NewKeyManager(crypto.Deriver, crypto.Wrapper, creds, pinLength, logger),
		notes:  NewNoteStore(store, crypto.Cipher, logger),
		clock:  clock,
		ids:    ids,
		logger: logger,
	}
}

// Status reports account presence, quick-access availability and session state.
func (v *Vault) Status(ctx context.Context) (Status, error) {
	st := Status{
		Unlocked:    v.Unlocked(),
		Unavailable: v.unavailable,
		NoteCount:   len(v.collection),
	}
	rec, err := v.creds.Load(ctx)
	if errors.Is(err, ErrNoAccount) {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	st.AccountExists = true
	st.QuickAccess = rec.QuickAccess()
	st.Username = rec.Username
	return st, nil
}

// QuickAccessAvailable reports whether PIN unlock should be offered.
func (v *Vault) QuickAccessAvailable(ctx context.Context) (bool, error) {
	rec, err := v.creds.Load(ctx)
	if errors.Is(err, ErrNoAccount) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return rec.QuickAccess(), nil
}

// Register creates the device account and logs in with the same credentials.
// With reset, an existing account and its notes are replaced.
func (v *Vault) Register(ctx context.Context, username string, password []byte, reset bool) error {
	v.Lock()
	// The old notes go first so a failed reset never leaves them under a new key.
	if reset {
		if _, err := checkCredentials(username, password); err != nil {
			return err
		}
		if err := v.notes.Discard(ctx); err != nil {
			return err
		}
	}
	if _, err := v.creds.Register(ctx, username, password, reset); err != nil {
		return err
	}
	return v.Login(ctx, username, password)
}

// Login verifies the password and unlocks the vault with the derived key.
func (v *Vault) Login(ctx context.Context, username string, password []byte) error {
	v.Lock()
	rec, err := v.creds.Verify(ctx, username, password)
	if err != nil {
		return err
	}
	key, err := v.keys.Derive(rec, password)
	if err != nil {
		return err
	}
	return v.open(ctx, rec, key)
}

// UnlockWithPIN unlocks the vault through the quick-access wrapped key.
func (v *Vault) UnlockWithPIN(ctx context.Context, pin string) error {
	v.Lock()
	rec, err := v.creds.Load(ctx)
	if err != nil {
		return err
	}
	key, err := v.keys.Unwrap(rec, pin)
	if err != nil {
		return err
	}
	return v.open(ctx, rec, key)
}

// open installs key as the session key and loads the collection. A collection
// that cannot be decrypted leaves the vault open, empty and read-only.
func (v *Vault) open(ctx context.Context, rec *UserRecord, key *SessionKey) error {
	notes, err := v.notes.Load(ctx, key)
	switch {
	case errors.Is(err, ErrDecryptionUnavailable):
		v.unavailable = true
		notes = nil
	case err != nil:
		key.Destroy()
		return err
	}
	v.record = rec
	v.key = key
	v.collection = notes
	v.logger.Info("vault unlocked", "notes", len(notes), "unavailable", v.unavailable)
	return nil
}

// EnableQuickAccess wraps the current session key under pin, replacing any
// previous PIN.
func (v *Vault) EnableQuickAccess(ctx context.Context, pin string) error {
	if !v.Unlocked() {
		return ErrLocked
	}
	rec, err := v.keys.EnableQuickAccess(ctx, v.record, v.key, pin)
	if err != nil {
		return err
	}
	v.record = rec
	return nil
}

// PinLength is the number of digits a quick-access PIN must have.
func (v *Vault) PinLength() int {
	return v.keys.PinLength()
}

// Lock zeroes the session key and drops the in-memory collection.
func (v *Vault) Lock() {
	if v.key != nil {
		v.logger.Info("vault locked")
	}
	v.key.Destroy()
	v.key = nil
	v.record = nil
	v.collection = nil
	v.unavailable = false
	v.notes.Forget()
}

func (v *Vault) Unlocked() bool {
	return !v.key.Destroyed()
}

// Unavailable reports whether the stored notes could not be decrypted in this
// session. Saving is refused while it is true.
func (v *Vault) Unavailable() bool {
	return v.unavailable
}

// Notes runs q over the collection.
func (v *Vault) Notes(q Query) ([]Note, error) {
	if !v.Unlocked() {
		return nil, ErrLocked
	}
	return q.Apply(v.collection), nil
}

// Note returns a single note by id.
func (v *Vault) Note(id string) (Note, error) {
	if !v.Unlocked() {
		return Note{}, ErrLocked
	}
	n, ok := v.collection.Find(id)
	if !ok {
		return Note{}, fmt.Errorf("%w: %s", ErrNoteNotFound, id)
	}
	return n, nil
}

// SaveNote creates or updates a note and persists the collection.
func (v *Vault) SaveNote(ctx context.Context, d Draft) (Note, error) {
	var saved Note
	err := v.mutate(ctx, "save", func(c Collection) (Collection, error) {
		next, n, err := c.Save(d, v.clock.Now(), v.ids)
		saved = n
		return next, err
	})
	if err != nil {
		return Note{}, err
	}
	return saved, nil
}

func (v *Vault) Pin(ctx context.Context, id string) error {
	return v.mutateNote(ctx, "pin", id, Collection.Pin)
}

func (v *Vault) Unpin(ctx context.Context, id string) error {
	return v.mutateNote(ctx, "unpin", id, Collection.Unpin)
}

func (v *Vault) Archive(ctx context.Context, id string) error {
	return v.mutateNote(ctx, "archive", id, Collection.Archive)
}

func (v *Vault) Unarchive(ctx context.Context, id string) error {
	return v.mutateNote(ctx, "unarchive", id, Collection.Unarchive)
}

func (v *Vault) Trash(ctx context.Context, id string) error {
	return v.mutateNote(ctx, "trash", id, Collection.Trash)
}

func (v *Vault) Restore(ctx context.Context, id string) error {
	return v.mutateNote(ctx, "restore", id, Collection.Restore)
}

func (v *Vault) Purge(ctx context.Context, id string) error {
	return v.mutateNote(ctx, "purge", id, Collection.Purge)
}

func (v *Vault) mutateNote(ctx context.Context, op, id string, fn func(Collection, string) (Collection, error)) error {
	return v.mutate(ctx, op, func(c Collection) (Collection, error) {
		return fn(c, id)
	})
}

// mutate applies fn to the collection and persists the result. The in-memory
// collection only changes once the save has succeeded.
func (v *Vault) mutate(ctx context.Context, op string, fn func(Collection) (Collection, error)) error {
	if !v.Unlocked() {
		return ErrLocked
	}
	if v.unavailable {
		return ErrDecryptionUnavailable
	}
	next, err := fn(v.collection)
	if err != nil {
		return err
	}
	if err := v.notes.Save(ctx, next, v.key); err != nil {
		return err
	}
	v.collection = next
	v.logger.Info("notes updated", "op", op, "notes", len(next))
	return nil
}
