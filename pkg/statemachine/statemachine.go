package statemachine

import (
	"context"
)

// State represents a state in the state machine.
type State interface {
	Name() string
}

// Event represents an event that can trigger a state transition.
type Event interface {
	Name() string
}

// Action executes side effects during state transitions. Returning an error prevents the transition.
type Action[D any] func(ctx context.Context, from, to State, event Event, data D) error

// Guard evaluates whether a transition should be allowed based on runtime conditions.
type Guard[D any] func(ctx context.Context, from State, event Event, data D) bool

// Transition defines a state change triggered by an event, with optional guards and actions.
type Transition[D any] struct {
	From    State
	To      State
	Event   Event
	Guards  []Guard[D]  // All must pass for transition to proceed
	Actions []Action[D] // Executed in order before state change
}

// StateMachine defines the core finite state machine operations. D is the
// payload type handed to guards and actions.
type StateMachine[D any] interface {
	Current() State
	IsFinal() bool
	AddTransition(from, to State, event Event, guards []Guard[D], actions []Action[D]) error
	Fire(ctx context.Context, event Event, data D) error
	CanFire(ctx context.Context, event Event, data D) bool
	Reset() error
}

// StringState provides a simple string-based state implementation for basic use cases.
type StringState string

func (s StringState) Name() string {
	return string(s)
}

// StringEvent provides a simple string-based event implementation for basic use cases.
type StringEvent string

func (e StringEvent) Name() string {
	return string(e)
}
