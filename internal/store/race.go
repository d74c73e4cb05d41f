package store

import (
	"context"
	"errors"
)

type attempt[T any] func(ctx context.Context) (T, error)

// firstFulfilled runs every attempt concurrently and returns the value of the
// first one to succeed. The others are canceled through ctx. When every
// attempt fails the errors are joined.
func firstFulfilled[T any](ctx context.Context, attempts ...attempt[T]) (T, error) {
	type settled struct {
		val T
		err error
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan settled, len(attempts))
	for _, try := range attempts {
		go func() {
			v, err := try(ctx)
			results <- settled{val: v, err: err}
		}()
	}

	errs := make([]error, 0, len(attempts))
	for range attempts {
		r := <-results
		if r.err == nil {
			return r.val, nil
		}
		errs = append(errs, r.err)
	}

	var zero T
	if len(errs) == 0 {
		return zero, errors.New("no attempts")
	}
	return zero, errors.Join(errs...)
}
