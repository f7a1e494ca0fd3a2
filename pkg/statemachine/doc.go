// Package statemachine implements a small finite-state machine whose guards
// and actions receive a typed payload.
//
// States and events are anything with a Name method; StringState and
// StringEvent cover the common case. Transitions are keyed by
// (from state, event) and several transitions may share a key: the first
// one whose guards all pass is taken, so registration order is priority
// order. Actions run before the state changes and any action error leaves
// the machine where it was.
//
// States passed to WithFinalStates accept no events. Firing at a final state
// returns *ErrFinalState without evaluating guards.
//
//	const (
//	    Pending = statemachine.StringState("pending")
//	    Done    = statemachine.StringState("done")
//	    Finish  = statemachine.StringEvent("finish")
//	)
//
//	machine := statemachine.MustNew[int](Pending,
//	    statemachine.WithFinalStates[int](Done),
//	    statemachine.WithTransition[int](Pending, Done, Finish),
//	)
//
//	_ = machine.Fire(ctx, Finish, 42)
//
// Errors can be told apart with IsNoTransitionAvailableError,
// IsTransitionRejectedError and IsFinalStateError.
//
// SimpleStateMachine is safe for concurrent use. Fire holds the write lock
// while guards and actions run, so those must not call back into the machine.
package statemachine
