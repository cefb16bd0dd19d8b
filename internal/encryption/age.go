package encryption

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"filippo.io/age"
	"filippo.io/age/armor"

	"fortress-go/internal/fortress"
)

// maxWrappedKeySize bounds how much plaintext Unwrap reads.
const maxWrappedKeySize = 1024

// AgeKeyWrapper implements fortress.KeyWrapper using age's scrypt-based
// passphrase encryption with the PIN as passphrase. The wrapped key is an
// ASCII-armored age file, so it can be stored inside the JSON user record.
type AgeKeyWrapper struct {
	workFactor int
}

var _ fortress.KeyWrapper = (*AgeKeyWrapper)(nil)

// NewAgeKeyWrapper creates a wrapper whose scrypt cost is 2^workFactor.
// A non-positive workFactor keeps age's default.
func NewAgeKeyWrapper(workFactor int) *AgeKeyWrapper {
	return &AgeKeyWrapper{workFactor: workFactor}
}

func (w *AgeKeyWrapper) Wrap(key []byte, pin string) (string, error) {
	recipient, err := age.NewScryptRecipient(pin)
	if err != nil {
		return "", fmt.Errorf("creating scrypt recipient: %w", err)
	}
	if w.workFactor > 0 {
		recipient.SetWorkFactor(w.workFactor)
	}

	var buf bytes.Buffer
	armored := armor.NewWriter(&buf)
	encWriter, err := age.Encrypt(armored, recipient)
	if err != nil {
		return "", fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := encWriter.Write(key); err != nil {
		return "", fmt.Errorf("writing key: %w", err)
	}
	if err := encWriter.Close(); err != nil {
		return "", fmt.Errorf("finalizing encryption: %w", err)
	}
	if err := armored.Close(); err != nil {
		return "", fmt.Errorf("finalizing armor: %w", err)
	}
	return buf.String(), nil
}

func (w *AgeKeyWrapper) Unwrap(wrapped string, pin string) ([]byte, error) {
	identity, err := age.NewScryptIdentity(pin)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}
	if w.workFactor > 22 {
		identity.SetMaxWorkFactor(w.workFactor)
	}

	r, err := age.Decrypt(armor.NewReader(strings.NewReader(wrapped)), identity)
	if err != nil {
		return nil, fmt.Errorf("decrypting wrapped key: %w", err)
	}
	key, err := io.ReadAll(io.LimitReader(r, maxWrappedKeySize))
	if err != nil {
		return nil, fmt.Errorf("reading wrapped key: %w", err)
	}
	return key, nil
}
