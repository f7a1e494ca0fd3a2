package statemachine

import (
	"context"
	"errors"
	"sync"
)

// SimpleStateMachine provides a thread-safe in-memory state machine implementation.
// Uses a nested map structure for O(1) transition lookups: [fromState][event][]Transition
type SimpleStateMachine[D any] struct {
	initialState State
	currentState State
	transitions  map[string]map[string][]Transition[D]
	final        map[string]struct{}
	mu           sync.RWMutex
}

func newSimpleStateMachine[D any](initialState State) *SimpleStateMachine[D] {
	return &SimpleStateMachine[D]{
		initialState: initialState,
		currentState: initialState,
		transitions:  make(map[string]map[string][]Transition[D]),
		final:        make(map[string]struct{}),
	}
}

func (sm *SimpleStateMachine[D]) Current() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.currentState
}

// IsFinal reports whether the current state accepts no further events.
func (sm *SimpleStateMachine[D]) IsFinal() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	_, ok := sm.final[sm.currentState.Name()]
	return ok
}

func (sm *SimpleStateMachine[D]) AddTransition(from, to State, event Event, guards []Guard[D], actions []Action[D]) error {
	if from == nil || to == nil || event == nil {
		return ErrInvalidTransition
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, ok := sm.final[from.Name()]; ok {
		return ErrTransitionFromFinal
	}

	fromStateName := from.Name()
	eventName := event.Name()

	if _, ok := sm.transitions[fromStateName]; !ok {
		sm.transitions[fromStateName] = make(map[string][]Transition[D])
	}

	// Multiple transitions allowed for same from/event to support guard-based branching
	sm.transitions[fromStateName][eventName] = append(sm.transitions[fromStateName][eventName], Transition[D]{
		From:    from,
		To:      to,
		Event:   event,
		Guards:  guards,
		Actions: actions,
	})
	return nil
}

func (sm *SimpleStateMachine[D]) Fire(ctx context.Context, event Event, data D) error {
	if event == nil {
		return ErrInvalidEvent
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	currentStateName := sm.currentState.Name()
	eventName := event.Name()

	if _, ok := sm.final[currentStateName]; ok {
		return NewErrFinalState(currentStateName, eventName)
	}

	transitions := sm.transitions[currentStateName][eventName]
	if len(transitions) == 0 {
		return NewErrNoTransitionAvailable(currentStateName, eventName)
	}

	// First transition with passing guards wins (enables priority ordering)
	t := sm.firstAllowed(ctx, transitions, event, data)
	if t == nil {
		return NewErrTransitionRejected(currentStateName, eventName)
	}

	// Actions run before the state change; any failure aborts the transition.
	for _, action := range t.Actions {
		if action == nil {
			continue
		}
		if err := action(ctx, sm.currentState, t.To, event, data); err != nil {
			return errors.Join(ErrActionFailed, err)
		}
	}

	sm.currentState = t.To
	return nil
}

func (sm *SimpleStateMachine[D]) CanFire(ctx context.Context, event Event, data D) bool {
	if event == nil {
		return false
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if _, ok := sm.final[sm.currentState.Name()]; ok {
		return false
	}
	transitions := sm.transitions[sm.currentState.Name()][event.Name()]
	return sm.firstAllowed(ctx, transitions, event, data) != nil
}

// Must be called with lock held.
func (sm *SimpleStateMachine[D]) firstAllowed(ctx context.Context, transitions []Transition[D], event Event, data D) *Transition[D] {
	for i, t := range transitions {
		allowed := true
		for _, guard := range t.Guards {
			if guard != nil && !guard(ctx, sm.currentState, event, data) {
				allowed = false
				break
			}
		}
		if allowed {
			return &transitions[i]
		}
	}
	return nil
}

func (sm *SimpleStateMachine[D]) Reset() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.currentState = sm.initialState
	return nil
}
