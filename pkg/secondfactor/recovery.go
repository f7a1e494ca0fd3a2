package secondfactor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/twofa/pkg/logger"
)

// Notifier delivers an account's rescue codes out of band, typically by
// e-mail to the address on file.
type Notifier interface {
	SendRecoveryMessage(ctx context.Context, account string, codes []string) error
}

// Recovery sends rescue codes to users who lost their authenticator. Each
// set of rescue codes is mailed at most once; the flag is cleared when the
// account is reset.
type Recovery struct {
	store    OptionStore
	notifier Notifier
	logger   *slog.Logger
}

type RecoveryOption func(*Recovery)

func WithRecoveryLogger(l *slog.Logger) RecoveryOption {
	return func(r *Recovery) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewRecovery(store OptionStore, notifier Notifier, opts ...RecoveryOption) *Recovery {
	r := &Recovery{store: store, notifier: notifier, logger: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("recovery"))
	return r
}

// Send mails the rescue codes of account. The sent flag is only recorded
// after the notifier succeeds.
func (r *Recovery) Send(ctx context.Context, account string) error {
	if account == "" {
		return ErrInvalidAccount
	}
	if r.notifier == nil {
		return ErrMissingNotifier
	}

	state, err := LoadState(ctx, r.store, account)
	if err != nil {
		return err
	}
	if state.RecoveryMailSent {
		return ErrRecoveryMailAlreadySent
	}
	if !state.HasRescueCodes() {
		return ErrNoRescueCodes
	}

	if err := r.notifier.SendRecoveryMessage(ctx, account, state.RescueCodes()); err != nil {
		r.logger.ErrorContext(ctx, "recovery message not sent", logger.Account(account), logger.Error(err))
		return errors.Join(ErrNotificationFailure, err)
	}

	if err := persistOption(ctx, r.store, account, KeyRecoveryMailSent, formatBool(true)); err != nil {
		r.logger.ErrorContext(ctx, "recovery message sent but flag not saved", logger.Account(account), logger.Error(err))
		return err
	}
	r.logger.InfoContext(ctx, "recovery message sent", logger.Account(account))
	return nil
}
