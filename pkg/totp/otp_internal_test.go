package totp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantTimeEquals_VisitsEveryByte(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, b string
	}{
		{name: "equal", a: "123456", b: "123456"},
		{name: "first byte differs", a: "923456", b: "123456"},
		{name: "last byte differs", a: "123459", b: "123456"},
		{name: "all bytes differ", a: "000000", b: "999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			visited := 0
			constantTimeEquals(tt.a, tt.b, func(int) { visited++ })
			assert.Equal(t, len(tt.a), visited)
		})
	}
}

func TestConstantTimeEquals_LengthMismatchVisitsNothing(t *testing.T) {
	t.Parallel()
	visited := 0
	assert.False(t, constantTimeEquals("12345", "123456", func(int) { visited++ }))
	assert.Zero(t, visited)
}

func TestVerifyCode_CandidateCount(t *testing.T) {
	t.Parallel()

	counting := func(calls *int) func(string, int64) (string, error) {
		return func(secret string, step int64) (string, error) {
			*calls++
			return ComputeCode(secret, step)
		}
	}

	t.Run("wrong length computes nothing", func(t *testing.T) {
		t.Parallel()
		calls := 0
		ok, err := verifyCode("JBSWY3DPEHPK3PXP", "12345", 1, 0, counting(&calls))
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, calls)
	})

	t.Run("mismatch checks the whole window", func(t *testing.T) {
		t.Parallel()
		calls := 0
		// Codes for steps 98..102 are 676771 307781 594318 485956 885497.
		ok, err := verifyCode("JBSWY3DPEHPK3PXP", "676771", 1, 100, counting(&calls))
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 3, calls)
	})

	t.Run("first match short-circuits", func(t *testing.T) {
		t.Parallel()
		calls := 0
		ok, err := verifyCode("JBSWY3DPEHPK3PXP", "307781", 1, 100, counting(&calls))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1, calls)
	})

	t.Run("wider window", func(t *testing.T) {
		t.Parallel()
		calls := 0
		ok, err := verifyCode("JBSWY3DPEHPK3PXP", "885497", 2, 100, counting(&calls))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 5, calls)
	})
}
