package encryption

import (
	"crypto/sha256"
	"errors"

	"fortress-go/internal/fortress"
)

// testWorkFactor keeps PIN wrapping fast enough for exhaustive PIN tests.
const testWorkFactor = 10

// TestDeriver is a fast, deterministic KeyDeriver for tests. It is NOT a
// password hashing function: each output is a single SHA-256 over a
// domain-separated input.
type TestDeriver struct{}

var _ fortress.KeyDeriver = TestDeriver{}

func (TestDeriver) DeriveKey(password, salt []byte) ([]byte, error) {
	return testDigest("key", password, salt)
}

func (TestDeriver) PasswordHash(password, salt []byte) ([]byte, error) {
	return testDigest("hash", password, salt)
}

func testDigest(label string, password, salt []byte) ([]byte, error) {
	if len(salt) == 0 {
		return nil, errors.New("salt is required")
	}
	h := sha256.New()
	h.Write([]byte(label))
	h.Write([]byte{0})
	h.Write(salt)
	h.Write(password)
	return h.Sum(nil), nil
}

// NewTestCrypto returns primitives for tests: the fast TestDeriver, the real
// AES-GCM cipher and age PIN wrapping at a low work factor.
func NewTestCrypto() fortress.Crypto {
	return fortress.Crypto{
		Deriver: TestDeriver{},
		Cipher:  NewAESGCMCipher(),
		Wrapper: NewAgeKeyWrapper(testWorkFactor),
	}
}
