// Command twofa-keygen prints a fresh base64 AES-256 key for
// TOTP_ENCRYPTION_KEY.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dmitrymomot/twofa/pkg/logger"
	"github.com/dmitrymomot/twofa/pkg/totp"
)

func main() {
	key, err := totp.GenerateEncodedEncryptionKey()
	if err != nil {
		slog.Error("cannot generate encryption key", logger.Error(err))
		os.Exit(1)
	}
	fmt.Println(key)
}
