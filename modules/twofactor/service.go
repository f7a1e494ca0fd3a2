package twofactor

import (
	"log/slog"

	"github.com/dmitrymomot/twofa/pkg/logger"
	"github.com/dmitrymomot/twofa/pkg/qrcode"
	"github.com/dmitrymomot/twofa/pkg/ratelimiter"
	"github.com/dmitrymomot/twofa/pkg/secondfactor"
)

// Service exposes the second-factor login flow over HTTP. It trusts the
// account named in the request: mount it behind whatever authenticated the
// first factor.
type Service struct {
	provider *secondfactor.Provider
	recovery *secondfactor.Recovery
	attempts secondfactor.AttemptStore
	locker   secondfactor.AttemptLocker
	throttle ratelimiter.Limiter
	logger   *slog.Logger
	qrSize   int
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithQRSize sets the edge length of PNGs served by GET /qr/{attempt_id}.
func WithQRSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.qrSize = size
		}
	}
}

// WithRecovery enables POST /recover. Without it the route answers 501.
func WithRecovery(r *secondfactor.Recovery) Option {
	return func(s *Service) { s.recovery = r }
}

// WithThrottle draws one token per begin, continue and recover request
// from a bucket keyed by operation and account. This caps guesses across
// attempts, which the per-attempt retry limit cannot. When the limiter also
// implements Reset, a passed attempt refills the account's continue bucket.
func WithThrottle(l ratelimiter.Limiter) Option {
	return func(s *Service) { s.throttle = l }
}

// WithAttemptLocker overrides the lock serializing /continue per attempt.
// By default the attempt store is used when it implements
// secondfactor.AttemptLocker, and an in-process lock otherwise.
func WithAttemptLocker(l secondfactor.AttemptLocker) Option {
	return func(s *Service) {
		if l != nil {
			s.locker = l
		}
	}
}

func NewService(provider *secondfactor.Provider, attempts secondfactor.AttemptStore, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		attempts: attempts,
		logger:   logger.Nop(),
		qrSize:   qrcode.DefaultSize,
	}
	if l, ok := attempts.(secondfactor.AttemptLocker); ok {
		s.locker = l
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.locker == nil {
		s.locker = secondfactor.NewKeyedMutex()
	}
	s.logger = s.logger.With(logger.Component("twofactor.http"))
	return s
}
