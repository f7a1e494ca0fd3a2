package secondfactor

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/twofa/pkg/logger"
	"github.com/dmitrymomot/twofa/pkg/qrcode"
	"github.com/dmitrymomot/twofa/pkg/statemachine"
	"github.com/dmitrymomot/twofa/pkg/totp"
)

// DefaultMaxRetries is the number of wrong codes after setup that end an attempt.
const DefaultMaxRetries = 4

// Authenticator generates and verifies TOTP material. *totp.Engine
// implements it.
type Authenticator interface {
	GenerateSecret() (string, error)
	GenerateRescueCodes(count int) ([]string, error)
	Verify(secret, code string) (bool, error)
}

// Provider runs the second-factor login flow for accounts kept in an
// OptionStore.
type Provider struct {
	store      OptionStore
	auth       Authenticator
	issuer     totp.Issuer
	maxRetries int
	qrSize     int
	newID      func() string
	logger     *slog.Logger
	machine    []statemachine.Option[*flow]
}

// Option configures a Provider.
type Option func(*Provider)

func WithAuthenticator(a Authenticator) Option {
	return func(p *Provider) {
		if a != nil {
			p.auth = a
		}
	}
}

func WithIssuer(issuer totp.Issuer) Option {
	return func(p *Provider) { p.issuer = issuer }
}

// WithMaxRetries sets the lockout threshold. Values below 1 are ignored.
func WithMaxRetries(n int) Option {
	return func(p *Provider) {
		if n > 0 {
			p.maxRetries = n
		}
	}
}

// WithQRSize enables QR images of size pixels in setup challenges. Zero
// disables them.
func WithQRSize(size int) Option {
	return func(p *Provider) {
		if size >= 0 {
			p.qrSize = size
		}
	}
}

// WithIDGenerator overrides uuid.NewString for attempt IDs.
func WithIDGenerator(fn func() string) Option {
	return func(p *Provider) {
		if fn != nil {
			p.newID = fn
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProvider returns a Provider with a default totp.Engine, four retries
// and no QR rendering.
func NewProvider(store OptionStore, opts ...Option) *Provider {
	p := &Provider{
		store:      store,
		auth:       totp.NewEngine(),
		maxRetries: DefaultMaxRetries,
		newID:      uuid.NewString,
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(logger.Component("secondfactor"))
	p.machine = []statemachine.Option[*flow]{
		statemachine.WithFinalStates[*flow](StatePassed, StateFailed, StateRetryLimitExceeded),
		statemachine.WithTransitions(p.transitions()),
	}
	return p
}

// Begin starts a login attempt for account. Accounts without a secret get
// one provisioned, together with fresh rescue codes.
func (p *Provider) Begin(ctx context.Context, account string) (*LoginAttempt, Response, error) {
	if account == "" {
		return nil, Response{}, ErrInvalidAccount
	}

	attempt := &LoginAttempt{
		ID:         p.newID(),
		Account:    account,
		State:      StateNew,
		MaxRetries: p.maxRetries,
	}
	log := p.logger.With(logger.Account(account), logger.AttemptID(attempt.ID))

	state, err := LoadState(ctx, p.store, account)
	if err != nil {
		resp, err := p.fail(ctx, log, attempt, err)
		return attempt, resp, err
	}

	f := &flow{attempt: attempt, state: state, message: MessageInfo}
	if err := p.fire(ctx, log, f, eventBegin); err != nil {
		resp, err := p.fail(ctx, log, attempt, err)
		return attempt, resp, err
	}
	return attempt, p.respond(ctx, log, f), nil
}

// Continue evaluates token for attempt and advances it. The attempt is
// updated in place. Wrong codes are not errors: they show up in the
// returned state and message.
func (p *Provider) Continue(ctx context.Context, attempt *LoginAttempt, token string) (Response, error) {
	if attempt == nil {
		return Response{}, ErrAttemptNotFound
	}

	log := p.logger.With(logger.Account(attempt.Account), logger.AttemptID(attempt.ID))

	switch {
	case attempt.State == StateRetryLimitExceeded:
		return Response{Status: StatusFail, State: attempt.State, Message: MessageRetryLimit}, ErrRetryLimitExceeded
	case attempt.State.Terminal():
		return p.respond(ctx, log, &flow{attempt: attempt}), ErrAttemptFinished
	case attempt.State != StateNeedsSetup && attempt.State != StateAwaitingCode:
		return p.fail(ctx, log, attempt, ErrCorruptState)
	}
	if attempt.MaxRetries <= 0 {
		attempt.MaxRetries = p.maxRetries
	}

	state, err := LoadState(ctx, p.store, attempt.Account)
	if err != nil {
		return p.fail(ctx, log, attempt, err)
	}

	f := &flow{attempt: attempt, state: state, token: strings.TrimSpace(token)}
	f.rescue = totp.MatchRescueCode(f.token, state.RescueCodes())
	if !f.rescue && state.Secret != "" {
		if f.verified, err = p.auth.Verify(state.Secret, f.token); err != nil {
			return p.fail(ctx, log, attempt, errors.Join(ErrCorruptState, err))
		}
	}
	if state.SetupComplete && state.Secret == "" {
		log.WarnContext(ctx, "setup marked complete without a secret")
	}

	if err := p.fire(ctx, log, f, eventSubmit); err != nil {
		return p.fail(ctx, log, attempt, err)
	}
	return p.respond(ctx, log, f), nil
}

func (p *Provider) fire(ctx context.Context, log *slog.Logger, f *flow, event statemachine.Event) error {
	from := f.attempt.State
	sm, err := statemachine.New(from, p.machine...)
	if err != nil {
		return err
	}
	if err := sm.Fire(ctx, event, f); err != nil {
		return err
	}

	f.attempt.State = State(sm.Current().Name())
	log.DebugContext(ctx, "login attempt advanced",
		logger.Event(event.Name()),
		logger.Transition(from.Name(), f.attempt.State.Name()),
		logger.FailureCount(f.attempt.FailureCount),
	)
	switch f.attempt.State {
	case StatePassed:
		log.InfoContext(ctx, "second factor passed")
	case StateRetryLimitExceeded:
		log.WarnContext(ctx, "second factor retry limit exceeded", logger.FailureCount(f.attempt.FailureCount))
	}
	return nil
}

func (p *Provider) fail(ctx context.Context, log *slog.Logger, attempt *LoginAttempt, err error) (Response, error) {
	attempt.State = StateFailed
	log.ErrorContext(ctx, "login attempt failed", logger.Error(err))
	return Response{Status: StatusFail, State: StateFailed}, err
}

func (p *Provider) respond(ctx context.Context, log *slog.Logger, f *flow) Response {
	resp := Response{State: f.attempt.State, Message: f.message}

	switch f.attempt.State {
	case StateNeedsSetup:
		resp.Status = StatusUI
		resp.Challenge = p.setupChallenge(ctx, log, f)
	case StateAwaitingCode:
		resp.Status = StatusUI
		resp.Challenge = &Challenge{
			TokenLost: f.state.HasRescueCodes() && !f.state.RecoveryMailSent,
		}
	case StatePassed:
		resp.Status = StatusPass
	default:
		resp.Status = StatusFail
	}
	return resp
}

func (p *Provider) setupChallenge(ctx context.Context, log *slog.Logger, f *flow) *Challenge {
	c := &Challenge{
		Setup:       true,
		Secret:      f.state.Secret,
		RescueCodes: f.state.RescueCodes(),
	}

	uri, err := totp.ProvisioningURI(f.state.Secret, f.attempt.Account, p.issuer)
	if err != nil {
		log.WarnContext(ctx, "cannot build provisioning uri", logger.Error(err))
		return c
	}
	c.ProvisioningURI = uri

	if p.qrSize > 0 {
		if c.QRCode, err = qrcode.ProvisioningDataURI(uri, p.qrSize); err != nil {
			log.WarnContext(ctx, "cannot render provisioning qr code", logger.Error(err))
		}
	}
	return c
}

// SetupURI returns the provisioning URI for an attempt that is still in
// setup.
func (p *Provider) SetupURI(ctx context.Context, attempt *LoginAttempt) (string, error) {
	if attempt == nil {
		return "", ErrAttemptNotFound
	}
	if attempt.State != StateNeedsSetup {
		return "", ErrNotInSetup
	}
	state, err := LoadState(ctx, p.store, attempt.Account)
	if err != nil {
		return "", err
	}
	return totp.ProvisioningURI(state.Secret, attempt.Account, p.issuer)
}
