package store

import "sync"

type recentsModule struct {
	mu    sync.RWMutex
	files []string
}

func (m *recentsModule) name() string { return recentsModuleName }

func (m *recentsModule) mutate(mu Mutation) bool {
	if mu.Kind != Touch {
		return false
	}
	id, ok := mu.Payload.(string)
	if !ok || id == "" {
		return false
	}
	m.mu.Lock()
	m.files = append([]string{id}, without(m.files, id)...)
	m.mu.Unlock()
	return true
}

func (m *recentsModule) reset() {
	m.mu.Lock()
	m.files = nil
	m.mu.Unlock()
}

// Touch moves a file to the front of the recent list.
func (s *Store) Touch(fileID string) {
	s.commit(Touch, fileID)
}

func (s *Store) RecentFiles() []string {
	s.recents.mu.RLock()
	defer s.recents.mu.RUnlock()
	return append([]string{}, s.recents.files...)
}
