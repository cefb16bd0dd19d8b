package testutil

import (
	"fortress-go/internal/encryption"
	"fortress-go/internal/fortress"
)

// NewTestCrypto returns fast primitives with a real authenticated cipher.
func NewTestCrypto() fortress.Crypto {
	return encryption.NewTestCrypto()
}

// NewTestVault creates a vault over store with test crypto, a fixed clock,
// sequential IDs and 4-digit PINs.
func NewTestVault(store fortress.Store) *fortress.Vault {
	return fortress.NewVault(store, NewTestCrypto(), fortress.DefaultPinLength, FixedClock(), NewStubIDGenerator(), fortress.NewNopLogger())
}
