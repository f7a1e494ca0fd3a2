package secondfactor

import (
	"time"

	"github.com/dmitrymomot/twofa/pkg/totp"
)

// Config holds the tunables of the login flow.
type Config struct {
	SiteName     string        `env:"TWOFA_SITE_NAME" envDefault:"twofa"`
	Issuer       string        `env:"TWOFA_ISSUER" envDefault:"__SITENAME__"`
	SecretLength int           `env:"TWOFA_SECRET_LENGTH" envDefault:"24"`
	Discrepancy  int           `env:"TWOFA_DISCREPANCY" envDefault:"1"`
	MaxRetries   int           `env:"TWOFA_MAX_RETRIES" envDefault:"4"`
	QRSize       int           `env:"TWOFA_QR_SIZE" envDefault:"200"`
	AttemptTTL   time.Duration `env:"TWOFA_ATTEMPT_TTL" envDefault:"10m"`
}

// Options translates cfg into provider options, including an engine built
// with the configured secret length and discrepancy.
func (cfg Config) Options() []Option {
	return []Option{
		WithAuthenticator(totp.NewEngine(
			totp.WithSecretLength(cfg.SecretLength),
			totp.WithDiscrepancy(cfg.Discrepancy),
		)),
		WithIssuer(totp.Issuer{SiteName: cfg.SiteName, Template: cfg.Issuer}),
		WithMaxRetries(cfg.MaxRetries),
		WithQRSize(cfg.QRSize),
	}
}
