package translate

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Completion is delivered once per dispatched unit.
type Completion struct {
	Unit   *Unit
	Result Result
}

// Dispatch translates every unit with at most capacity calls in flight and
// returns a channel yielding one Completion per unit in completion order.
// The channel is closed after the last task has finished. Capacity <= 0
// means DefaultMaxConcurrent.
//
// Tasks are independent: a failed or panicking task does not affect the
// others, and nothing is retried.
func Dispatch(ctx context.Context, units []*Unit, tr Translator, capacity int) <-chan Completion {
	if capacity <= 0 {
		capacity = DefaultMaxConcurrent
	}
	// Buffered for every unit so workers never wait on the consumer.
	out := make(chan Completion, len(units))

	go func() {
		defer close(out)

		var g errgroup.Group
		g.SetLimit(capacity)
		for _, u := range units {
			u.Status = StatusDispatched
			g.Go(func() error {
				res := runTask(ctx, tr, u)
				if res.Err != nil {
					u.Status = StatusFailed
				} else {
					u.Status = StatusCompleted
				}
				u.Result = res
				out <- Completion{Unit: u, Result: res}
				return nil
			})
		}
		_ = g.Wait()
	}()

	return out
}

// runTask calls the translator for one unit and normalizes the result:
// failures always carry a *TranslationError tagged with the unit ID and the
// original text.
func runTask(ctx context.Context, tr Translator, u *Unit) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{
				Text: u.Original,
				Err:  &TranslationError{UnitID: u.ID, Reason: ReasonPanic, Err: fmt.Errorf("panic: %v", r)},
			}
		}
	}()

	if tr == nil {
		return Result{
			Text: u.Original,
			Err:  &TranslationError{UnitID: u.ID, Reason: ReasonNoClient, Err: errors.New("no translator configured")},
		}
	}

	res = tr.Translate(ctx, u.Original)
	if res.Err == nil {
		return res
	}

	var te *TranslationError
	if errors.As(res.Err, &te) {
		tagged := *te
		tagged.UnitID = u.ID
		te = &tagged
	} else {
		te = &TranslationError{UnitID: u.ID, Reason: ReasonRequest, Err: res.Err}
	}
	return Result{Text: u.Original, Err: te}
}
