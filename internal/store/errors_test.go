package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitLoop(t *testing.T, done <-chan bool) bool {
	t.Helper()
	select {
	case ok := <-done:
		return ok
	case <-time.After(time.Second):
		t.Fatal("error loop did not finish")
		return false
	}
}

func TestErrorLoopDrainsInOrder(t *testing.T) {
	s := newTestStore(t, newFakes(), Options{})
	e1, e2, e3 := errors.New("one"), errors.New("two"), errors.New("three")
	s.PushError(e1)
	s.PushError(e2)
	s.PushError(e3)

	var seen []error
	ok := waitLoop(t, s.ErrorLoop(func(err error) error {
		seen = append(seen, err)
		return nil
	}))

	assert.True(t, ok)
	assert.Equal(t, []error{e1, e2, e3}, seen)
	assert.False(t, s.ErrorsAvailable())
}

func TestErrorLoopResetsQueueWhenCallbackFails(t *testing.T) {
	s := newTestStore(t, newFakes(), Options{})
	s.PushError(errors.New("one"))
	s.PushError(errors.New("two"))
	s.PushError(errors.New("three"))

	calls := 0
	ok := waitLoop(t, s.ErrorLoop(func(err error) error {
		calls++
		if calls == 2 {
			return errors.New("dialog closed")
		}
		return nil
	}))

	assert.False(t, ok)
	assert.Equal(t, 2, calls)
	assert.False(t, s.ErrorsAvailable())
}

func TestErrorLoopRecoversPanic(t *testing.T) {
	s := newTestStore(t, newFakes(), Options{})
	s.PushError(errors.New("one"))
	s.PushError(errors.New("two"))

	ok := waitLoop(t, s.ErrorLoop(func(error) error {
		panic("renderer crashed")
	}))

	assert.False(t, ok)
	assert.False(t, s.ErrorsAvailable())
}

func TestErrorLoopsRunOneAfterAnother(t *testing.T) {
	s := newTestStore(t, newFakes(), Options{})
	s.PushError(errors.New("one"))
	s.PushError(errors.New("two"))

	var order []string
	gate := make(chan struct{})
	first := s.ErrorLoop(func(err error) error {
		<-gate
		order = append(order, "first:"+err.Error())
		return nil
	})
	second := s.ErrorLoop(func(err error) error {
		order = append(order, "second:"+err.Error())
		return nil
	})
	close(gate)

	assert.True(t, waitLoop(t, first))
	assert.True(t, waitLoop(t, second))
	assert.Equal(t, []string{"first:one", "first:two"}, order)
}

func TestErrorLoopAfterClose(t *testing.T) {
	s := newTestStore(t, newFakes(), Options{})
	require.NoError(t, s.Close())

	assert.False(t, waitLoop(t, s.ErrorLoop(func(error) error { return nil })))
}

func TestPopErrorOnlyRemovesMatchingHead(t *testing.T) {
	s := newTestStore(t, newFakes(), Options{})
	e1, e2 := errors.New("one"), errors.New("two")
	s.PushError(e1)
	s.PushError(e2)

	s.PopError(e2)
	assert.Equal(t, []error{e1, e2}, drainCopy(s))

	s.PopError(e1)
	assert.Equal(t, []error{e2}, drainCopy(s))
}

// drainCopy reads the queue without consuming it.
func drainCopy(s *Store) []error {
	s.errs.mu.RLock()
	defer s.errs.mu.RUnlock()
	return append([]error(nil), s.errs.errors...)
}

type codeError struct{ code int }

func (e codeError) Error() string { return "code" }

type listError struct{ parts []string }

func (e listError) Error() string { return "list" }

func TestSameError(t *testing.T) {
	a := errors.New("x")
	assert.True(t, sameError(a, a))
	assert.False(t, sameError(a, errors.New("x")))
	assert.True(t, sameError(codeError{1}, codeError{1}))
	assert.False(t, sameError(codeError{1}, codeError{2}))
	assert.False(t, sameError(listError{}, listError{}))
	assert.True(t, sameError(nil, nil))
	assert.False(t, sameError(a, nil))
}

func TestErrorLoopPopsNonComparableErrorsOnce(t *testing.T) {
	s := newTestStore(t, newFakes(), Options{})
	s.PushError(listError{parts: []string{"a"}})
	s.PushError(listError{parts: []string{"b"}})

	var seen []error
	ok := waitLoop(t, s.ErrorLoop(func(err error) error {
		seen = append(seen, err)
		if len(seen) > 2 {
			return errors.New("queue did not shrink")
		}
		return nil
	}))

	assert.True(t, ok)
	assert.Equal(t, []error{listError{parts: []string{"a"}}, listError{parts: []string{"b"}}}, seen)
	assert.False(t, s.ErrorsAvailable())
}

func TestGetErrorNeverHandsOutTheSameErrorTwice(t *testing.T) {
	s := newTestStore(t, newFakes(), Options{})
	var pushed []error
	for i := 0; i < 200; i++ {
		err := fmt.Errorf("err %d", i)
		pushed = append(pushed, err)
		s.PushError(err)
	}

	var (
		mu  sync.Mutex
		got []error
		wg  sync.WaitGroup
	)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				err := s.GetError()
				if err == nil {
					return
				}
				mu.Lock()
				got = append(got, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.ElementsMatch(t, pushed, got)
	assert.Nil(t, s.GetError())
}
