package fortress_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fortress-go/internal/fortress"
	"fortress-go/internal/testutil"
)

type keyFixture struct {
	creds *fortress.CredentialStore
	keys  *fortress.KeyManager
	rec   *fortress.UserRecord
}

func newKeyFixture(t *testing.T) keyFixture {
	t.Helper()
	crypto := testutil.NewTestCrypto()
	creds := fortress.NewCredentialStore(testutil.NewTestStore(), crypto.Deriver, fortress.NewNopLogger())
	keys := fortress.NewKeyManager(crypto.Deriver, crypto.Wrapper, creds, 4, fortress.NewNopLogger())

	rec, err := creds.Register(context.Background(), "alice", []byte("pw1"), false)
	require.NoError(t, err)
	return keyFixture{creds: creds, keys: keys, rec: rec}
}

func TestKeyManager_DeriveIsDeterministic(t *testing.T) {
	f := newKeyFixture(t)

	k1, err := f.keys.Derive(f.rec, []byte("pw1"))
	require.NoError(t, err)
	k2, err := f.keys.Derive(f.rec, []byte("pw1"))
	require.NoError(t, err)
	other, err := f.keys.Derive(f.rec, []byte("pw2"))
	require.NoError(t, err)

	assert.Len(t, k1.Bytes(), fortress.SessionKeySize)
	assert.Equal(t, k1.Bytes(), k2.Bytes())
	assert.NotEqual(t, k1.Bytes(), other.Bytes())
	assert.NotEqual(t, f.rec.PasswordHash, fmt.Sprintf("%x", k1.Bytes()))
}

func TestKeyManager_ValidPIN(t *testing.T) {
	f := newKeyFixture(t)
	assert.Equal(t, 4, f.keys.PinLength())

	for pin, want := range map[string]bool{
		"1234":  true,
		"0000":  true,
		"123":   false,
		"12345": false,
		"12a4":  false,
		"":      false,
		"١٢٣٤":  false,
	} {
		assert.Equal(t, want, f.keys.ValidPIN(pin), "ValidPIN(%q)", pin)
	}
}

func TestKeyManager_QuickAccess(t *testing.T) {
	ctx := context.Background()
	f := newKeyFixture(t)
	key, err := f.keys.Derive(f.rec, []byte("pw1"))
	require.NoError(t, err)

	_, err = f.keys.Unwrap(f.rec, "1234")
	assert.ErrorIs(t, err, fortress.ErrNoQuickAccess)

	_, err = f.keys.EnableQuickAccess(ctx, f.rec, key, "12")
	assert.ErrorIs(t, err, fortress.ErrInvalidPinFormat)

	rec, err := f.keys.EnableQuickAccess(ctx, f.rec, key, "1234")
	require.NoError(t, err)
	assert.True(t, rec.QuickAccess())
	assert.False(t, f.rec.QuickAccess(), "the input record is not modified")

	persisted, err := f.creds.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, rec.EncryptedMasterKey, persisted.EncryptedMasterKey)

	unwrapped, err := f.keys.Unwrap(persisted, "1234")
	require.NoError(t, err)
	assert.Equal(t, key.Bytes(), unwrapped.Bytes())

	for _, pin := range []string{"9999", "123", "abcd", ""} {
		_, err := f.keys.Unwrap(persisted, pin)
		assert.ErrorIs(t, err, fortress.ErrInvalidPin, "Unwrap(%q)", pin)
	}
}

func TestKeyManager_EnableQuickAccessReplacesPin(t *testing.T) {
	ctx := context.Background()
	f := newKeyFixture(t)
	key, err := f.keys.Derive(f.rec, []byte("pw1"))
	require.NoError(t, err)

	rec, err := f.keys.EnableQuickAccess(ctx, f.rec, key, "1111")
	require.NoError(t, err)
	rec, err = f.keys.EnableQuickAccess(ctx, rec, key, "2222")
	require.NoError(t, err)

	_, err = f.keys.Unwrap(rec, "1111")
	assert.ErrorIs(t, err, fortress.ErrInvalidPin)
	_, err = f.keys.Unwrap(rec, "2222")
	assert.NoError(t, err)
}

func TestKeyManager_CorruptedWrappedKeyIsInvalidPin(t *testing.T) {
	f := newKeyFixture(t)
	rec := *f.rec
	rec.EncryptedMasterKey = "-----BEGIN AGE ENCRYPTED FILE-----\ngarbage\n-----END AGE ENCRYPTED FILE-----\n"

	_, err := f.keys.Unwrap(&rec, "1234")
	assert.ErrorIs(t, err, fortress.ErrInvalidPin)
}

func TestKeyManager_ImplausibleKeyIsInvalidPin(t *testing.T) {
	f := newKeyFixture(t)
	wrapped, err := testutil.NewTestCrypto().Wrapper.Wrap([]byte("short"), "1234")
	require.NoError(t, err)
	rec := *f.rec
	rec.EncryptedMasterKey = wrapped

	_, err = f.keys.Unwrap(&rec, "1234")
	assert.ErrorIs(t, err, fortress.ErrInvalidPin)
}

func TestKeyManager_RandomPinsNeverUnlock(t *testing.T) {
	if testing.Short() {
		t.Skip("exhaustive PIN check skipped in short mode")
	}
	ctx := context.Background()
	f := newKeyFixture(t)
	key, err := f.keys.Derive(f.rec, []byte("pw1"))
	require.NoError(t, err)
	rec, err := f.keys.EnableQuickAccess(ctx, f.rec, key, "4821")
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(1, 2))
	tried := 0
	for tried < 1000 {
		pin := fmt.Sprintf("%04d", rng.IntN(10000))
		if pin == "4821" {
			continue
		}
		tried++
		_, err := f.keys.Unwrap(rec, pin)
		require.ErrorIs(t, err, fortress.ErrInvalidPin, "PIN %s unlocked the vault", pin)
	}
}

func TestSessionKey_Destroy(t *testing.T) {
	raw := []byte("0123456789abcdef0123456789abcdef")
	key := fortress.NewSessionKey(raw)
	b := key.Bytes()

	key.Destroy()

	assert.True(t, key.Destroyed())
	assert.Nil(t, key.Bytes())
	assert.Equal(t, make([]byte, len(b)), b, "key material is zeroed")
	assert.Equal(t, "0123456789abcdef0123456789abcdef", string(raw), "caller's slice is not aliased")

	var nilKey *fortress.SessionKey
	assert.True(t, nilKey.Destroyed())
	nilKey.Destroy()
}
