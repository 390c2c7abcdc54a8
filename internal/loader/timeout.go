package loader

import (
	"context"
	"time"
)

// Outcome is the tagged result of a deadline-raced operation. Exactly one
// of the three shapes holds: a value, an error, or TimedOut. The tag keeps
// timeouts distinguishable from any legitimate payload, including nil.
type Outcome[T any] struct {
	Value    T
	Err      error
	TimedOut bool
}

// Ok reports whether the outcome carries a usable value
func (o Outcome[T]) Ok() bool {
	return !o.TimedOut && o.Err == nil
}

// Race runs op against a timer and returns whichever finishes first. The
// operation is deliberately not cancelled on timeout: some sources have
// side effects (cache invalidation, write-through) that must settle even
// when the caller has moved on. Cancelling the parent context still wins
// over both.
func Race[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) Outcome[T] {
	return RaceWithLate(ctx, timeout, op, nil)
}

// RaceWithLate is Race with a hook for the abandoned case: when the timer
// fires first, onLate receives the operation's eventual result from a
// background goroutine. Callers use it to commit late-but-still-current
// results; see the loading discipline in app.
func RaceWithLate[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error), onLate func(T, error)) Outcome[T] {
	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := op(ctx)
		done <- result{value: v, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		return Outcome[T]{Value: r.value, Err: r.err}
	case <-ctx.Done():
		return Outcome[T]{Err: ctx.Err()}
	case <-timer.C:
		if onLate != nil {
			go func() {
				r := <-done
				onLate(r.value, r.err)
			}()
		}
		return Outcome[T]{TimedOut: true}
	}
}
