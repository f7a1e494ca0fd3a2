package totp_test

import (
	"testing"

	"github.com/dmitrymomot/twofa/pkg/totp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRescueCodes(t *testing.T) {
	t.Parallel()

	codes, err := totp.GenerateRescueCodes(nil, 3, totp.DefaultSecretLength)
	require.NoError(t, err)
	require.Len(t, codes, 3)

	seen := make(map[string]struct{})
	for _, code := range codes {
		assert.Len(t, code, totp.DefaultSecretLength)
		assert.Regexp(t, "^[A-Z2-7]+$", code)
		seen[code] = struct{}{}
	}
	assert.Len(t, seen, 3, "codes must be unique")
}

func TestGenerateRescueCodes_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := totp.GenerateRescueCodes(nil, 0, totp.DefaultSecretLength)
	assert.ErrorIs(t, err, totp.ErrInvalidRescueCodeCount)

	_, err = totp.GenerateRescueCodes(nil, 3, 4)
	assert.ErrorIs(t, err, totp.ErrInvalidLength)
}

func TestEngine_GenerateRescueCodes(t *testing.T) {
	t.Parallel()
	codes, err := totp.NewEngine(totp.WithSecretLength(20)).GenerateRescueCodes(3)
	require.NoError(t, err)
	for _, code := range codes {
		assert.Len(t, code, 20)
	}
}

func TestMatchRescueCode(t *testing.T) {
	t.Parallel()
	codes := []string{"AAAABBBBCCCCDDDD", "EEEEFFFFGGGGHHHH", "IIIIJJJJKKKKLLLL"}

	tests := []struct {
		name  string
		token string
		codes []string
		want  bool
	}{
		{name: "first", token: codes[0], codes: codes, want: true},
		{name: "second", token: codes[1], codes: codes, want: true},
		{name: "third", token: codes[2], codes: codes, want: true},
		{name: "unknown", token: "MMMMNNNNOOOOPPPP", codes: codes, want: false},
		{name: "prefix", token: "AAAABBBB", codes: codes, want: false},
		{name: "empty token", token: "", codes: codes, want: false},
		{name: "empty token against cleared codes", token: "", codes: []string{"", "", ""}, want: false},
		{name: "no codes", token: codes[0], codes: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, totp.MatchRescueCode(tt.token, tt.codes))
		})
	}
}
