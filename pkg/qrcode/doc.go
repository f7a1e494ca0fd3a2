// Package qrcode renders QR code images for authenticator enrollment, either
// as raw PNG bytes or as a data URI that can be embedded in a page or JSON
// response.
//
// The package is a thin wrapper around github.com/skip2/go-qrcode. Only
// otpauth:// URIs are accepted, rendered at High error correction.
//
//	uri, _ := totp.ProvisioningURI(secret, "alice", issuer)
//	img, err := qrcode.ProvisioningDataURI(uri, 200)
//
// Errors are package-level sentinels (ErrNotProvisioningURI,
// ErrorFailedToGenerateQRCode) to be compared with errors.Is.
package qrcode
