package store

import (
	"context"
	"sync"
)

type acronymModule struct {
	mu       sync.RWMutex
	loading  int
	acronyms []string
}

func (m *acronymModule) name() string { return acronymModuleName }

func (m *acronymModule) mutate(mu Mutation) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch mu.Kind {
	case AcronymLoading:
		delta, ok := mu.Payload.(int)
		if !ok {
			return false
		}
		m.loading += delta
	case SetAcronyms:
		list, ok := mu.Payload.([]string)
		if !ok && mu.Payload != nil {
			return false
		}
		m.acronyms = append([]string{}, list...)
	default:
		return false
	}
	return true
}

func (m *acronymModule) reset() {
	m.mu.Lock()
	m.acronyms = nil
	m.mu.Unlock()
}

func (s *Store) AcronymResults() []string {
	s.acronyms.mu.RLock()
	defer s.acronyms.mu.RUnlock()
	return append([]string{}, s.acronyms.acronyms...)
}

func (s *Store) AcronymLoading() bool {
	s.acronyms.mu.RLock()
	defer s.acronyms.mu.RUnlock()
	return s.acronyms.loading > 0
}

// Acronyms looks up the expansions of an acronym. An empty acronym clears
// the results.
func (s *Store) Acronyms(ctx context.Context, acronym string) []string {
	if acronym == "" {
		s.commit(SetAcronyms, []string{})
		return nil
	}
	defer s.track(AcronymLoading)()

	matched, err := s.svc.Acronym.Get(ctx, acronym)
	if err != nil {
		s.recordError(acronymModuleName, "ACRONYMS", err)
		return nil
	}
	s.commit(SetAcronyms, matched)
	return matched
}
