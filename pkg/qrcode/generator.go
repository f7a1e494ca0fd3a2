package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrNotProvisioningURI is returned when an enrollment image is requested
	// for something other than an otpauth:// URI.
	ErrNotProvisioningURI = errors.New("content is not an otpauth provisioning URI")
	// ErrorFailedToGenerateQRCode is returned when the QR code generation fails.
	ErrorFailedToGenerateQRCode = errors.New("failed to generate QR code")
)

const (
	// DefaultSize is the size in pixels used when no size is specified.
	DefaultSize = 200

	dataURIPrefix = "data:image/png;base64,"
)

// ProvisioningPNG renders an otpauth:// URI for authenticator enrollment.
// High error correction keeps the code scannable from screens with glare.
func ProvisioningPNG(uri string, size int) ([]byte, error) {
	if !strings.HasPrefix(strings.TrimSpace(uri), "otpauth://") {
		return nil, ErrNotProvisioningURI
	}
	return encode(uri, skipqrcode.High, size)
}

// ProvisioningDataURI is ProvisioningPNG encoded as a base64 data URI for
// use in an <img src> attribute.
func ProvisioningDataURI(uri string, size int) (string, error) {
	png, err := ProvisioningPNG(uri, size)
	if err != nil {
		return "", err
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}

func encode(content string, level skipqrcode.RecoveryLevel, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	png, err := skipqrcode.Encode(content, level, size)
	if err != nil {
		return nil, errors.Join(ErrorFailedToGenerateQRCode, err)
	}
	return png, nil
}
