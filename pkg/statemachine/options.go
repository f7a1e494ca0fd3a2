package statemachine

import (
	"fmt"
)

// Option configures a state machine during construction.
type Option[D any] func(*SimpleStateMachine[D]) error

// TransitionOption configures a single transition with guards and actions.
type TransitionOption[D any] func(*transitionConfig[D])

// TransitionDef defines a transition between states.
type TransitionDef[D any] struct {
	From    State
	To      State
	Event   Event
	Guards  []Guard[D]
	Actions []Action[D]
}

type transitionConfig[D any] struct {
	guards  []Guard[D]
	actions []Action[D]
}

// New creates a new state machine with the given initial state and options.
func New[D any](initialState State, opts ...Option[D]) (StateMachine[D], error) {
	if initialState == nil {
		return nil, ErrInvalidInitialState
	}

	sm := newSimpleStateMachine[D](initialState)
	for _, opt := range opts {
		if err := opt(sm); err != nil {
			return nil, err
		}
	}

	return sm, nil
}

// MustNew creates a new state machine with the given initial state and options.
// Panics if any option fails to apply.
func MustNew[D any](initialState State, opts ...Option[D]) StateMachine[D] {
	sm, err := New(initialState, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create state machine: %v", err))
	}
	return sm
}

// WithFinalStates marks states that accept no events. Register them before
// any transitions.
func WithFinalStates[D any](states ...State) Option[D] {
	return func(sm *SimpleStateMachine[D]) error {
		for _, s := range states {
			if s == nil {
				return ErrInvalidTransition
			}
			sm.final[s.Name()] = struct{}{}
		}
		return nil
	}
}

// WithTransition adds a single transition to the state machine.
func WithTransition[D any](from, to State, event Event, opts ...TransitionOption[D]) Option[D] {
	return func(sm *SimpleStateMachine[D]) error {
		cfg := &transitionConfig[D]{}
		for _, opt := range opts {
			opt(cfg)
		}

		return sm.AddTransition(from, to, event, cfg.guards, cfg.actions)
	}
}

// WithTransitions adds multiple transitions to the state machine at once.
func WithTransitions[D any](transitions []TransitionDef[D]) Option[D] {
	return func(sm *SimpleStateMachine[D]) error {
		for i, t := range transitions {
			if err := sm.AddTransition(t.From, t.To, t.Event, t.Guards, t.Actions); err != nil {
				return fmt.Errorf("failed to add transition[%d] %s->%s on %s: %w",
					i, nameOf(t.From), nameOf(t.To), nameOf(t.Event), err)
			}
		}
		return nil
	}
}

func nameOf(n interface{ Name() string }) string {
	if n == nil {
		return "<nil>"
	}
	return n.Name()
}

// WithGuards adds guards to a transition. Nil guards are skipped.
func WithGuards[D any](guards ...Guard[D]) TransitionOption[D] {
	return func(cfg *transitionConfig[D]) {
		for _, guard := range guards {
			if guard != nil {
				cfg.guards = append(cfg.guards, guard)
			}
		}
	}
}

// WithActions adds actions to a transition. Nil actions are skipped.
func WithActions[D any](actions ...Action[D]) TransitionOption[D] {
	return func(cfg *transitionConfig[D]) {
		for _, action := range actions {
			if action != nil {
				cfg.actions = append(cfg.actions, action)
			}
		}
	}
}
