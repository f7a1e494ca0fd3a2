package secondfactor

import (
	"context"

	"github.com/dmitrymomot/twofa/pkg/logger"
	"github.com/dmitrymomot/twofa/pkg/statemachine"
)

const (
	eventBegin  = statemachine.StringEvent("begin")
	eventSubmit = statemachine.StringEvent("submit")
)

// flow is the payload handed to guards and actions. The submission is
// evaluated before the machine fires so the authenticator is consulted at
// most once per token.
type flow struct {
	attempt  *LoginAttempt
	state    AccountState
	token    string
	rescue   bool
	verified bool
	message  string
}

type (
	guard  = statemachine.Guard[*flow]
	action = statemachine.Action[*flow]
)

// transitions lists the flow in priority order: for a given state and
// event the first transition whose guards pass is taken.
func (p *Provider) transitions() []statemachine.TransitionDef[*flow] {
	defs := []statemachine.TransitionDef[*flow]{
		{From: StateNew, To: StateNeedsSetup, Event: eventBegin,
			Guards: []guard{needsProvisioning}, Actions: []action{p.provision}},
		{From: StateNew, To: StateNeedsSetup, Event: eventBegin,
			Guards: []guard{setupPending}},
		{From: StateNew, To: StateAwaitingCode, Event: eventBegin},
	}

	for _, from := range []State{StateNeedsSetup, StateAwaitingCode} {
		defs = append(defs,
			statemachine.TransitionDef[*flow]{From: from, To: StateNeedsSetup, Event: eventSubmit,
				Guards: []guard{rescueMatched}, Actions: []action{p.reset}},
			statemachine.TransitionDef[*flow]{From: from, To: StatePassed, Event: eventSubmit,
				Guards: []guard{tokenVerified}, Actions: []action{p.completeSetup}},
			statemachine.TransitionDef[*flow]{From: from, To: StateNeedsSetup, Event: eventSubmit,
				Guards: []guard{setupPending}, Actions: []action{p.setupFailure}},
			statemachine.TransitionDef[*flow]{From: from, To: StateRetryLimitExceeded, Event: eventSubmit,
				Guards: []guard{retryLimitReached}, Actions: []action{countFailure(MessageRetryLimit)}},
			statemachine.TransitionDef[*flow]{From: from, To: StateAwaitingCode, Event: eventSubmit,
				Actions: []action{countFailure(MessageLoginFailure)}},
		)
	}
	return defs
}

func needsProvisioning(_ context.Context, _ statemachine.State, _ statemachine.Event, f *flow) bool {
	return f.state.Secret == "" && !f.state.SetupComplete
}

func setupPending(_ context.Context, _ statemachine.State, _ statemachine.Event, f *flow) bool {
	return !f.state.SetupComplete
}

func rescueMatched(_ context.Context, _ statemachine.State, _ statemachine.Event, f *flow) bool {
	return f.rescue
}

func tokenVerified(_ context.Context, _ statemachine.State, _ statemachine.Event, f *flow) bool {
	return f.verified
}

// The failure being recorded is the one that reaches the limit.
func retryLimitReached(_ context.Context, _ statemachine.State, _ statemachine.Event, f *flow) bool {
	return f.attempt.FailureCount+1 >= f.attempt.MaxRetries
}

func countFailure(message string) action {
	return func(_ context.Context, _, _ statemachine.State, _ statemachine.Event, f *flow) error {
		f.attempt.FailureCount++
		f.message = message
		return nil
	}
}

// provision replaces the account's options with a fresh secret and rescue
// codes and commits them.
func (p *Provider) provision(ctx context.Context, _, _ statemachine.State, _ statemachine.Event, f *flow) error {
	secret, err := p.auth.GenerateSecret()
	if err != nil {
		return err
	}
	codes, err := p.auth.GenerateRescueCodes(RescueCodeCount)
	if err != nil {
		return err
	}
	if len(codes) != RescueCodeCount {
		return ErrCorruptState
	}

	next := AccountState{Secret: secret}
	copy(next.Rescue[:], codes)

	if err := saveState(ctx, p.store, f.attempt.Account, next); err != nil {
		return err
	}
	f.state = next
	return nil
}

// reset consumes a rescue code: everything is wiped and the account goes
// through setup again with new material.
func (p *Provider) reset(ctx context.Context, from, to statemachine.State, event statemachine.Event, f *flow) error {
	if err := p.provision(ctx, from, to, event, f); err != nil {
		return err
	}
	f.message = MessageReset
	p.logger.InfoContext(ctx, "rescue code used, second factor reset",
		logger.Account(f.attempt.Account), logger.AttemptID(f.attempt.ID))
	return nil
}

func (p *Provider) setupFailure(ctx context.Context, from, to statemachine.State, event statemachine.Event, f *flow) error {
	f.message = MessageSetupFailure
	if f.state.Secret != "" {
		return nil
	}
	return p.provision(ctx, from, to, event, f)
}

func (p *Provider) completeSetup(ctx context.Context, _, _ statemachine.State, _ statemachine.Event, f *flow) error {
	if f.state.SetupComplete {
		return nil
	}
	if err := persistOption(ctx, p.store, f.attempt.Account, KeySetupComplete, formatBool(true)); err != nil {
		return err
	}
	f.state.SetupComplete = true
	return nil
}
