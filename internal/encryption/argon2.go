package encryption

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"

	"fortress-go/internal/fortress"
)

// HKDF info strings separating the two outputs of one argon2id stretch.
const (
	sessionKeyInfo   = "fortress session key v1"
	passwordHashInfo = "fortress password verifier v1"
)

// Argon2Deriver stretches a password with argon2id and expands the result
// with HKDF-SHA256 into independent session key and password hash outputs.
type Argon2Deriver struct {
	time      uint32
	memoryKiB uint32
	threads   uint8
}

var _ fortress.KeyDeriver = (*Argon2Deriver)(nil)

// NewArgon2Deriver creates a deriver. Zero parameters fall back to
// time=1, memory=64MiB, threads=4.
func NewArgon2Deriver(time, memoryKiB uint32, threads uint8) *Argon2Deriver {
	if time == 0 {
		time = 1
	}
	if memoryKiB == 0 {
		memoryKiB = 64 * 1024
	}
	if threads == 0 {
		threads = 4
	}
	return &Argon2Deriver{time: time, memoryKiB: memoryKiB, threads: threads}
}

func (d *Argon2Deriver) DeriveKey(password, salt []byte) ([]byte, error) {
	return d.derive(password, salt, sessionKeyInfo)
}

func (d *Argon2Deriver) PasswordHash(password, salt []byte) ([]byte, error) {
	return d.derive(password, salt, passwordHashInfo)
}

func (d *Argon2Deriver) derive(password, salt []byte, info string) ([]byte, error) {
	if len(salt) == 0 {
		return nil, errors.New("salt is required")
	}
	secret := argon2.IDKey(password, salt, d.time, d.memoryKiB, d.threads, fortress.SessionKeySize)
	defer clear(secret)
	return expand(secret, info)
}

func expand(secret []byte, info string) ([]byte, error) {
	out := make([]byte, fortress.SessionKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(info)), out); err != nil {
		return nil, fmt.Errorf("expanding key material: %w", err)
	}
	return out, nil
}
