package store

import (
	"reflect"
	"sync"
)

type Handler func(payload any)

type eventModule struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func newEventModule() *eventModule {
	return &eventModule{handlers: map[string][]Handler{}}
}

func (m *eventModule) name() string { return eventModuleName }

func (m *eventModule) mutate(mu Mutation) bool {
	if mu.Kind != EventOn && mu.Kind != EventOff {
		return false
	}
	p, ok := mu.Payload.(EventHandler)
	if !ok || p.Handler == nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if mu.Kind == EventOn {
		m.handlers[p.Event] = append(m.handlers[p.Event], p.Handler)
		return true
	}

	list := m.handlers[p.Event]
	target := reflect.ValueOf(p.Handler).Pointer()
	for i, h := range list {
		if reflect.ValueOf(h).Pointer() == target {
			m.handlers[p.Event] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

func (m *eventModule) reset() {
	m.mu.Lock()
	m.handlers = map[string][]Handler{}
	m.mu.Unlock()
}

// On registers h for event. A handler registered twice runs twice.
func (s *Store) On(event string, h Handler) {
	s.commit(EventOn, EventHandler{Event: event, Handler: h})
}

// Off removes the first registration of h for event. Handlers are matched
// by code pointer, so closures built from the same function literal are
// indistinguishable: keep the registered func value and pass that exact
// value back, and give handlers that must be removed separately their own
// literal.
func (s *Store) Off(event string, h Handler) {
	s.commit(EventOff, EventHandler{Event: event, Handler: h})
}

// Emit calls the handlers of event in registration order on the calling
// goroutine. Handlers may call On or Off; the change applies to the next
// Emit.
func (s *Store) Emit(event string, payload any) {
	s.events.mu.RLock()
	list := append([]Handler(nil), s.events.handlers[event]...)
	s.events.mu.RUnlock()

	for _, h := range list {
		h(payload)
	}
}
