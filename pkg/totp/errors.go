package totp

import "errors"

var (
	ErrInvalidLength                 = errors.New("invalid secret length, must be between 16 and 128 bytes")
	ErrInvalidEncoding               = errors.New("invalid base32 encoding")
	ErrRandomSource                  = errors.New("random source failure")
	ErrFailedToGenerateSecretKey     = errors.New("failed to generate TOTP secret key")
	ErrFailedToComputeCode           = errors.New("failed to compute TOTP code")
	ErrFailedToEncryptSecret         = errors.New("failed to encrypt TOTP secret")
	ErrFailedToDecryptSecret         = errors.New("failed to decrypt TOTP secret")
	ErrInvalidCipherTooShort         = errors.New("cipher text too short")
	ErrFailedToGenerateEncryptionKey = errors.New("failed to generate encryption key")
	ErrFailedToLoadEncryptionKey     = errors.New("failed to load encryption key")
	ErrInvalidEncryptionKeyLength    = errors.New("invalid encryption key length")
	ErrEncryptionKeyNotSet           = errors.New("TOTP encryption key not set")
	ErrMissingSecret                 = errors.New("missing secret")
	ErrMissingAccountName            = errors.New("missing account name")
	ErrInvalidRescueCodeCount        = errors.New("invalid rescue code count, must be greater than 0")
)
