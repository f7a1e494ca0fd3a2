// Package totp implements the time-based one-time password primitives used by
// the second-factor login flow: secret generation, a strict base32 codec,
// RFC 6238 code derivation and verification, rescue codes, otpauth://
// provisioning URIs and AES-256-GCM protection of secrets at rest.
//
// The package has no dependency on third-party TOTP libraries; the code
// derivation follows RFC 4226 dynamic truncation over HMAC-SHA1 with 6-digit
// codes and 30-second steps.
//
// # Secrets
//
// GenerateSecret draws N random bytes and maps the low five bits of each onto
// the base32 alphabet, so a secret of length N has N characters and no
// padding. Valid lengths are 16 to 128; the default is 24. DecodeBase32 turns
// a secret back into the HMAC key and rejects malformed padding or characters
// outside A-Z2-7 with ErrInvalidEncoding.
//
// # Verification
//
// VerifyCodeAt accepts a code computed for the current step or any step within
// the discrepancy window (default ±1, i.e. ±30 seconds). Submitted codes that
// are not exactly six characters long are rejected without computing any
// candidate, and candidates are compared with ConstantTimeEquals.
//
//	engine := totp.NewEngine()
//	secret, _ := engine.GenerateSecret()
//	ok, err := engine.Verify(secret, "123456")
//
// # Provisioning
//
//	uri, _ := totp.ProvisioningURI(secret, "Jane Doe", totp.Issuer{
//	    SiteName: "Acme Wiki",
//	    Template: "__SITENAME__ 2FA",
//	})
//	// otpauth://totp/Jane-Doe?secret=...&issuer=Acme+Wiki+2FA
//
// # Storage
//
// EncryptSecret and DecryptSecret protect stored secrets and rescue codes with
// AES-256-GCM. The 32-byte master key comes from TOTP_ENCRYPTION_KEY and is
// expanded per account with HKDF-SHA256, so ciphertexts cannot be moved
// between accounts. The twofa-keygen command prints a fresh key.
//
// # Error Handling
//
// Errors are package-level sentinels combined with errors.Join; inspect them
// with errors.Is (ErrInvalidLength, ErrInvalidEncoding, ErrRandomSource, ...).
// A code that does not verify is not an error.
package totp
