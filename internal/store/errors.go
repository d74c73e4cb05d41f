package store

import (
	"fmt"
	"reflect"
	"sync"
)

type errorModule struct {
	mu     sync.RWMutex
	errors []error
}

func (m *errorModule) name() string { return errorModuleName }

func (m *errorModule) mutate(mu Mutation) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch mu.Kind {
	case PushError:
		err, ok := mu.Payload.(error)
		if !ok || err == nil {
			return false
		}
		m.errors = append(m.errors, err)
	case PopError:
		match, _ := mu.Payload.(error)
		if len(m.errors) == 0 || !sameError(m.errors[0], match) {
			return false
		}
		m.errors = m.errors[1:]
	case ResetErrors:
		m.errors = nil
	default:
		return false
	}
	return true
}

func (m *errorModule) reset() {
	m.mu.Lock()
	m.errors = nil
	m.mu.Unlock()
}

// shift removes and returns the head of the queue.
func (m *errorModule) shift() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.errors) == 0 {
		return nil
	}
	head := m.errors[0]
	m.errors = m.errors[1:]
	return head
}

// sameError is identity for pointer errors and equality for comparable
// values. Values of non-comparable types never match.
func sameError(a, b error) bool {
	if a == nil || b == nil {
		return a == b
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// PushError queues err for the error loop.
func (s *Store) PushError(err error) {
	s.commit(PushError, err)
}

// PopError drops the head of the queue if it is match.
func (s *Store) PopError(match error) {
	s.commit(PopError, match)
}

// GetError pops and returns the head of the queue, or nil when empty.
// Concurrent callers never receive the same error.
func (s *Store) GetError() error {
	head := s.errs.shift()
	if head != nil {
		s.feed.publish(errorModuleName, PopError)
	}
	return head
}

func (s *Store) ErrorsAvailable() bool {
	s.errs.mu.RLock()
	defer s.errs.mu.RUnlock()
	return len(s.errs.errors) > 0
}

// ErrorLoop schedules cb to drain the error queue, one error at a time.
// Loops run one after another on the store's error worker, never
// overlapping. The returned channel yields true once the queue was drained,
// or false if cb failed, in which case the queue is reset.
func (s *Store) ErrorLoop(cb func(error) error) <-chan bool {
	done := make(chan bool, 1)
	if !s.worker.enqueue(loopJob{cb: cb, done: done}) {
		done <- false
	}
	return done
}

func (s *Store) drainErrors(cb func(error) error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error(errorModuleName, "error loop panicked", map[string]interface{}{
				"panic": fmt.Sprint(r),
			})
			s.commit(ResetErrors, nil)
			ok = false
		}
	}()

	for s.ErrorsAvailable() {
		e := s.GetError()
		if err := cb(e); err != nil {
			s.log.Warn(errorModuleName, "error loop aborted", map[string]interface{}{
				"error": err.Error(),
			})
			s.commit(ResetErrors, nil)
			return false
		}
	}
	return true
}

type loopJob struct {
	cb   func(error) error
	done chan bool
}

// errorWorker is the single consumer of error loops.
type errorWorker struct {
	store *Store

	mu      sync.Mutex
	pending []loopJob
	stopped bool

	wake chan struct{}
	quit chan struct{}
	wg   sync.WaitGroup
}

func newErrorWorker(s *Store) *errorWorker {
	w := &errorWorker{
		store: s,
		wake:  make(chan struct{}, 1),
		quit:  make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *errorWorker) enqueue(job loopJob) bool {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return false
	}
	w.pending = append(w.pending, job)
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return true
}

func (w *errorWorker) next() (loopJob, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return loopJob{}, false
	}
	job := w.pending[0]
	w.pending = w.pending[1:]
	return job, true
}

func (w *errorWorker) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.quit:
			for {
				job, ok := w.next()
				if !ok {
					return
				}
				job.done <- false
			}
		case <-w.wake:
		}

		for {
			job, ok := w.next()
			if !ok {
				break
			}
			job.done <- w.store.drainErrors(job.cb)
		}
	}
}

// stop resolves every loop not yet started with false and waits for the
// running one to finish.
func (w *errorWorker) stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	w.mu.Unlock()

	close(w.quit)
	w.wg.Wait()
}
