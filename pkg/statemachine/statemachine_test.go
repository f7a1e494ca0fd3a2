package statemachine_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofa/pkg/statemachine"
)

const (
	draft     = statemachine.StringState("draft")
	review    = statemachine.StringState("review")
	published = statemachine.StringState("published")
	rejected  = statemachine.StringState("rejected")

	submit  = statemachine.StringEvent("submit")
	approve = statemachine.StringEvent("approve")
	reject  = statemachine.StringEvent("reject")
)

type doc struct {
	score   int
	visited []string
}

func minScore(n int) statemachine.Guard[*doc] {
	return func(_ context.Context, _ statemachine.State, _ statemachine.Event, d *doc) bool {
		return d.score >= n
	}
}

func record(name string) statemachine.Action[*doc] {
	return func(_ context.Context, _, _ statemachine.State, _ statemachine.Event, d *doc) error {
		d.visited = append(d.visited, name)
		return nil
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil initial state", func(t *testing.T) {
		t.Parallel()
		_, err := statemachine.New[*doc](nil)
		assert.ErrorIs(t, err, statemachine.ErrInvalidInitialState)
	})

	t.Run("invalid transition", func(t *testing.T) {
		t.Parallel()
		_, err := statemachine.New(draft, statemachine.WithTransition[*doc](draft, nil, submit))
		assert.ErrorIs(t, err, statemachine.ErrInvalidTransition)
	})

	t.Run("transition out of final state", func(t *testing.T) {
		t.Parallel()
		_, err := statemachine.New(draft,
			statemachine.WithFinalStates[*doc](published),
			statemachine.WithTransition[*doc](published, draft, submit),
		)
		assert.ErrorIs(t, err, statemachine.ErrTransitionFromFinal)
	})

	t.Run("must new panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { statemachine.MustNew[*doc](nil) })
	})
}

func TestFire(t *testing.T) {
	t.Parallel()

	sm := statemachine.MustNew(draft,
		statemachine.WithTransition[*doc](draft, review, submit, statemachine.WithActions(record("submitted"))),
		statemachine.WithTransition[*doc](review, published, approve),
	)

	d := &doc{}
	require.NoError(t, sm.Fire(context.Background(), submit, d))
	assert.Equal(t, review, sm.Current())
	assert.Equal(t, []string{"submitted"}, d.visited)

	require.NoError(t, sm.Fire(context.Background(), approve, d))
	assert.Equal(t, published, sm.Current())

	require.NoError(t, sm.Reset())
	assert.Equal(t, draft, sm.Current())
}

func TestFire_NoTransition(t *testing.T) {
	t.Parallel()

	sm := statemachine.MustNew(draft, statemachine.WithTransition[*doc](draft, review, submit))

	err := sm.Fire(context.Background(), approve, &doc{})
	require.Error(t, err)
	assert.True(t, statemachine.IsNoTransitionAvailableError(err))
	assert.Equal(t, draft, sm.Current())

	assert.ErrorIs(t, sm.Fire(context.Background(), nil, &doc{}), statemachine.ErrInvalidEvent)
}

func TestFire_GuardPriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		score int
		want  statemachine.State
	}{
		{name: "high score publishes", score: 90, want: published},
		{name: "medium score goes to review", score: 50, want: review},
		{name: "low score is rejected", score: 10, want: rejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sm := statemachine.MustNew(draft, statemachine.WithTransitions([]statemachine.TransitionDef[*doc]{
				{From: draft, To: published, Event: submit, Guards: []statemachine.Guard[*doc]{minScore(80)}},
				{From: draft, To: review, Event: submit, Guards: []statemachine.Guard[*doc]{minScore(40)}},
				{From: draft, To: rejected, Event: submit},
			}))

			require.NoError(t, sm.Fire(context.Background(), submit, &doc{score: tt.score}))
			assert.Equal(t, tt.want, sm.Current())
		})
	}
}

func TestFire_GuardRejects(t *testing.T) {
	t.Parallel()

	sm := statemachine.MustNew(draft,
		statemachine.WithTransition(draft, review, submit,
			statemachine.WithGuards(minScore(50)),
			statemachine.WithActions(record("never")),
		),
	)

	d := &doc{score: 1}
	assert.False(t, sm.CanFire(context.Background(), submit, d))

	err := sm.Fire(context.Background(), submit, d)
	assert.True(t, statemachine.IsTransitionRejectedError(err))
	assert.Equal(t, draft, sm.Current())
	assert.Empty(t, d.visited)

	d.score = 60
	assert.True(t, sm.CanFire(context.Background(), submit, d))
}

func TestFire_ActionFailureKeepsState(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	sm := statemachine.MustNew(draft,
		statemachine.WithTransition(draft, review, submit, statemachine.WithActions[*doc](
			record("first"),
			func(context.Context, statemachine.State, statemachine.State, statemachine.Event, *doc) error {
				return boom
			},
			record("never"),
		)),
	)

	d := &doc{}
	err := sm.Fire(context.Background(), submit, d)
	assert.ErrorIs(t, err, statemachine.ErrActionFailed)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, draft, sm.Current())
	assert.Equal(t, []string{"first"}, d.visited)
}

func TestFire_FinalState(t *testing.T) {
	t.Parallel()

	guardCalls := 0
	var counting statemachine.Guard[*doc] = func(context.Context, statemachine.State, statemachine.Event, *doc) bool {
		guardCalls++
		return true
	}

	sm := statemachine.MustNew(draft,
		statemachine.WithFinalStates[*doc](published),
		statemachine.WithTransition(draft, published, approve, statemachine.WithGuards(counting)),
	)
	assert.False(t, sm.IsFinal())

	require.NoError(t, sm.Fire(context.Background(), approve, &doc{}))
	assert.True(t, sm.IsFinal())
	assert.Equal(t, 1, guardCalls)

	err := sm.Fire(context.Background(), approve, &doc{})
	assert.True(t, statemachine.IsFinalStateError(err))
	assert.False(t, sm.CanFire(context.Background(), approve, &doc{}))
	assert.Equal(t, 1, guardCalls)
}

func TestConcurrentFire(t *testing.T) {
	t.Parallel()

	sm := statemachine.MustNew(draft,
		statemachine.WithFinalStates[int](review),
		statemachine.WithTransition[int](draft, review, submit),
	)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sm.Fire(context.Background(), submit, i) == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, review, sm.Current())
}
