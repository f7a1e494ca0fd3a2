package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

const (
	DefaultSecretLength = 24 // Source bytes per generated secret
	MinSecretLength     = 16 // 80 bits
	MaxSecretLength     = 128
	CodeLength          = 6  // Digits shown by authenticator apps
	DefaultPeriod       = 30 // Seconds per time step (RFC 6238)
	DefaultDiscrepancy  = 1  // Adjacent steps accepted on each side
)

var codeModulo = uint32(1_000_000)

// GenerateSecret draws length bytes from r and maps the low five bits of
// each byte onto the base32 alphabet. The result is length characters long
// and carries no padding.
func GenerateSecret(r io.Reader, length int) (string, error) {
	if length < MinSecretLength || length > MaxSecretLength {
		return "", errors.Join(ErrFailedToGenerateSecretKey, ErrInvalidLength)
	}
	if r == nil {
		r = rand.Reader
	}

	raw := make([]byte, length)
	if _, err := io.ReadFull(r, raw); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecretKey, ErrRandomSource, err)
	}

	secret := make([]byte, length)
	for i, b := range raw {
		secret[i] = Alphabet[b&31]
	}
	return string(secret), nil
}

// TimeStep returns the 30-second window containing t.
func TimeStep(t time.Time) int64 {
	return t.Unix() / DefaultPeriod
}

// ComputeCode derives the 6-digit code for secret at the given time step
// (RFC 4226 dynamic truncation over HMAC-SHA1).
func ComputeCode(secret string, step int64) (string, error) {
	key, err := DecodeBase32(secret)
	if err != nil {
		return "", errors.Join(ErrFailedToComputeCode, err)
	}
	return hotp(key, step), nil
}

func hotp(key []byte, step int64) string {
	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], uint64(step))

	mac := hmac.New(sha1.New, key)
	mac.Write(counter[:])
	sum := mac.Sum(nil)

	// Dynamic truncation: low nibble of the last byte selects the offset.
	offset := sum[len(sum)-1] & 0x0f
	value := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return fmt.Sprintf("%0*d", CodeLength, value%codeModulo)
}

// VerifyCodeAt reports whether code matches secret in any step of
// [step-discrepancy, step+discrepancy]. Codes of the wrong length are
// rejected before any candidate is computed.
func VerifyCodeAt(secret, code string, discrepancy int, step int64) (bool, error) {
	return verifyCode(secret, code, discrepancy, step, ComputeCode)
}

func verifyCode(secret, code string, discrepancy int, step int64, compute func(string, int64) (string, error)) (bool, error) {
	if len(code) != CodeLength {
		return false, nil
	}
	if discrepancy < 0 {
		discrepancy = 0
	}

	for i := -int64(discrepancy); i <= int64(discrepancy); i++ {
		candidate, err := compute(secret, step+i)
		if err != nil {
			return false, err
		}
		if ConstantTimeEquals(candidate, code) {
			return true, nil
		}
	}
	return false, nil
}

// ConstantTimeEquals compares a and b without an early exit on the first
// differing byte. Inputs of different length return false immediately;
// code length is public, so that check leaks nothing.
func ConstantTimeEquals(a, b string) bool {
	return constantTimeEquals(a, b, nil)
}

func constantTimeEquals(a, b string, visit func(int)) bool {
	if len(a) != len(b) {
		return false
	}

	var acc byte
	for i := 0; i < len(a); i++ {
		if visit != nil {
			visit(i)
		}
		acc |= a[i] ^ b[i]
	}
	return acc == 0
}

// Engine bundles the clock, random source and tuning knobs used by the
// login flow.
type Engine struct {
	now          func() time.Time
	random       io.Reader
	secretLength int
	discrepancy  int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock overrides the wall clock. Nil is ignored.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRandom overrides the random source. Nil is ignored.
func WithRandom(r io.Reader) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.random = r
		}
	}
}

func WithSecretLength(n int) EngineOption {
	return func(e *Engine) { e.secretLength = n }
}

func WithDiscrepancy(n int) EngineOption {
	return func(e *Engine) {
		if n >= 0 {
			e.discrepancy = n
		}
	}
}

// NewEngine returns an Engine with RFC 6238 defaults: crypto/rand, the
// system clock, 24-byte secrets and a one-step window.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		now:          time.Now,
		random:       rand.Reader,
		secretLength: DefaultSecretLength,
		discrepancy:  DefaultDiscrepancy,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) GenerateSecret() (string, error) {
	return GenerateSecret(e.random, e.secretLength)
}

func (e *Engine) TimeStep() int64 {
	return TimeStep(e.now())
}

// Verify checks code against secret around the current time step.
func (e *Engine) Verify(secret, code string) (bool, error) {
	return VerifyCodeAt(secret, code, e.discrepancy, e.TimeStep())
}
