package totp_test

import (
	"crypto/rand"
	"testing"

	"github.com/dmitrymomot/twofa/pkg/totp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeBase32(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"f", "MY======"},
		{"fo", "MZXQ===="},
		{"foo", "MZXW6==="},
		{"foob", "MZXW6YQ="},
		{"fooba", "MZXW6YTB"},
		{"foobar", "MZXW6YTBOI======"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, totp.EncodeBase32([]byte(tt.in)))
		})
	}
}

func TestDecodeBase32_RoundTrip(t *testing.T) {
	t.Parallel()
	for n := 0; n <= 64; n++ {
		b := make([]byte, n)
		_, err := rand.Read(b)
		require.NoError(t, err)

		decoded, err := totp.DecodeBase32(totp.EncodeBase32(b))
		require.NoError(t, err, "length %d", n)
		assert.Equal(t, b, decoded, "length %d", n)
	}
}

func TestDecodeBase32_Unpadded(t *testing.T) {
	t.Parallel()

	key, err := totp.DecodeBase32("JBSWY3DPEHPK3PXP")
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello!\xde\xad\xbe\xef"), key)

	key, err = totp.DecodeBase32("MZXW6YQ")
	require.NoError(t, err)
	assert.Equal(t, []byte("foob"), key)

	// 24 symbols carry 120 bits.
	key, err = totp.DecodeBase32("ABCDEFGHIJKLMNOPQRSTUVWX")
	require.NoError(t, err)
	assert.Len(t, key, 15)

	// A lone trailing symbol never completes a byte.
	key, err = totp.DecodeBase32("MZXW6YTBA")
	require.NoError(t, err)
	assert.Equal(t, []byte("fooba"), key)

	// Secrets differing only in that symbol share a key.
	short, err := totp.DecodeBase32("ABCDEFGH")
	require.NoError(t, err)
	long, err := totp.DecodeBase32("ABCDEFGHI")
	require.NoError(t, err)
	assert.Len(t, short, 5)
	assert.Equal(t, short, long)
}

func TestDecodeBase32_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
	}{
		{name: "two padding characters", input: "MZXW6Y=="},
		{name: "five padding characters", input: "MZX====="},
		{name: "seven padding characters", input: "M======="},
		{name: "padding in the middle", input: "MZ=W6YQ="},
		{name: "padding not trailing", input: "M=XW6==="},
		{name: "lowercase", input: "mzxw6ytb"},
		{name: "digit outside alphabet", input: "MZXW6YT1"},
		{name: "punctuation", input: "invalid-base32!@#$"},
		{name: "padded block too short", input: "MZXW6YQ=MY"},
		{name: "padding after partial block", input: "MZXW6YTBMY==="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, err := totp.DecodeBase32(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, totp.ErrInvalidEncoding)
			assert.Nil(t, out)
		})
	}
}

func TestDecodeBase32_Empty(t *testing.T) {
	t.Parallel()
	out, err := totp.DecodeBase32("")
	require.NoError(t, err)
	assert.Empty(t, out)
}
