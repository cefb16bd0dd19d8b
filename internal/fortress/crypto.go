package fortress

// SessionKeySize is the length in bytes of every session key.
const SessionKeySize = 32

// KeyDeriver turns a password and a per-account salt into secret material.
// The same inputs always yield the same outputs, and the session key is
// never derivable from the password hash.
type KeyDeriver interface {
	DeriveKey(password, salt []byte) ([]byte, error)
	PasswordHash(password, salt []byte) ([]byte, error)
}

// Cipher is the authenticated cipher protecting the note collection.
// Decrypt with the wrong key must fail rather than return garbage.
type Cipher interface {
	Encrypt(plaintext, key []byte) ([]byte, error)
	Decrypt(ciphertext, key []byte) ([]byte, error)
}

// KeyWrapper protects a session key under a short PIN.
type KeyWrapper interface {
	Wrap(key []byte, pin string) (string, error)
	Unwrap(wrapped string, pin string) ([]byte, error)
}

// Crypto bundles the primitives the vault is built on.
type Crypto struct {
	Deriver KeyDeriver
	Cipher  Cipher
	Wrapper KeyWrapper
}

// SessionKey holds the symmetric key of an unlocked session in memory only.
type SessionKey struct {
	b []byte
}

// NewSessionKey copies b into a new SessionKey.
func NewSessionKey(b []byte) *SessionKey {
	return &SessionKey{b: append([]byte(nil), b...)}
}

// Bytes exposes the key material. Callers must not retain or modify it.
func (k *SessionKey) Bytes() []byte {
	if k == nil {
		return nil
	}
	return k.b
}

// Destroy zeroes the key material. The key is unusable afterwards.
func (k *SessionKey) Destroy() {
	if k == nil {
		return
	}
	clear(k.b)
	k.b = nil
}

// Destroyed reports whether Destroy has been called.
func (k *SessionKey) Destroyed() bool {
	return k == nil || k.b == nil
}
