package totp

import "io"

// GenerateRescueCodes issues count one-time recovery codes. Each code is
// produced exactly like a master secret.
func GenerateRescueCodes(r io.Reader, count, length int) ([]string, error) {
	if count < 1 {
		return nil, ErrInvalidRescueCodeCount
	}

	codes := make([]string, count)
	for i := range count {
		code, err := GenerateSecret(r, length)
		if err != nil {
			return nil, err
		}
		codes[i] = code
	}
	return codes, nil
}

// MatchRescueCode reports whether token equals any of codes. Every stored
// code is compared so the match position is not observable; empty codes
// and an empty token never match.
func MatchRescueCode(token string, codes []string) bool {
	if token == "" {
		return false
	}

	matched := false
	for _, code := range codes {
		if code == "" {
			continue
		}
		if ConstantTimeEquals(code, token) {
			matched = true
		}
	}
	return matched
}

// GenerateRescueCodes issues count rescue codes with the engine's random
// source and secret length.
func (e *Engine) GenerateRescueCodes(count int) ([]string, error) {
	return GenerateRescueCodes(e.random, count, e.secretLength)
}
