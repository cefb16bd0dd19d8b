package encryption

import (
	"fmt"

	"fortress-go/internal/config"
	"fortress-go/internal/fortress"
)

// NewCryptoFromConfig creates the vault primitives based on the configuration type.
func NewCryptoFromConfig(cfg config.EncryptionConfig) (fortress.Crypto, error) {
	switch cfg.Type {
	case "standard", "":
		return fortress.Crypto{
			Deriver: NewArgon2Deriver(cfg.KDFTime, cfg.KDFMemoryKiB, cfg.KDFThreads),
			Cipher:  NewAESGCMCipher(),
			Wrapper: NewAgeKeyWrapper(cfg.PinWorkFactor),
		}, nil
	case "test":
		return NewTestCrypto(), nil
	default:
		return fortress.Crypto{}, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
