package totp

import (
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
)

// Alphabet is the RFC 4648 base32 symbol table used for shared secrets.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

const padChar = '='

var (
	paddedEncoding   = base32.StdEncoding
	unpaddedEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// EncodeBase32 encodes b with the standard alphabet, padding the output
// to a multiple of 8 characters.
func EncodeBase32(b []byte) string {
	return paddedEncoding.EncodeToString(b)
}

// DecodeBase32 decodes a base32 secret.
//
// Padded input must be a whole number of 8-character blocks and end in a
// run of 1, 3, 4 or 6 '=' characters. Unpadded input may have any length;
// bits that do not fill a whole trailing byte are discarded, which is how
// authenticator apps read secrets produced by GenerateSecret.
func DecodeBase32(s string) ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}

	padding := strings.Count(s, string(padChar))
	switch padding {
	case 0, 1, 3, 4, 6:
	default:
		return nil, errors.Join(ErrInvalidEncoding, fmt.Errorf("unexpected padding length %d", padding))
	}

	data := s[:len(s)-padding]
	if strings.Repeat(string(padChar), padding) != s[len(data):] {
		return nil, errors.Join(ErrInvalidEncoding, errors.New("padding must be a trailing run"))
	}
	for i := 0; i < len(data); i++ {
		if strings.IndexByte(Alphabet, data[i]) < 0 {
			return nil, errors.Join(ErrInvalidEncoding, fmt.Errorf("illegal character %q at offset %d", data[i], i))
		}
	}

	if padding > 0 {
		if len(s)%8 != 0 {
			return nil, errors.Join(ErrInvalidEncoding, errors.New("padded input must be a multiple of 8 characters"))
		}
		out, err := paddedEncoding.DecodeString(s)
		if err != nil {
			return nil, errors.Join(ErrInvalidEncoding, err)
		}
		return out, nil
	}

	// A dangling 1, 3 or 6 character tail carries fewer bits than its
	// neighbour length would, so its last symbol never completes a byte.
	switch len(data) % 8 {
	case 1, 3, 6:
		data = data[:len(data)-1]
	}
	out, err := unpaddedEncoding.DecodeString(data)
	if err != nil {
		return nil, errors.Join(ErrInvalidEncoding, err)
	}
	return out, nil
}
