package totp

// Config holds settings for protecting stored secrets.
// EncryptionKey is optional; when empty, secrets are stored as issued.
type Config struct {
	EncryptionKey string `env:"TOTP_ENCRYPTION_KEY"` // Base64 encoded 32-byte AES-256 key
}
