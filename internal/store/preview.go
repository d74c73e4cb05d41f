package store

import (
	"context"
	"sync"

	"github.com/patrickmn/go-cache"
)

const previewFallback = "Unable to load preview of file."

// previewRecord is created on first touch of a file id. A nil lines slice
// means no preview was loaded yet.
type previewRecord struct {
	loading int
	lines   []string
}

type previewModule struct {
	mu      sync.Mutex
	records *cache.Cache
}

func newPreviewModule() *previewModule {
	return &previewModule{records: cache.New(cache.NoExpiration, 0)}
}

func (m *previewModule) name() string { return previewModuleName }

// record must be called with mu held.
func (m *previewModule) record(id string) *previewRecord {
	if v, ok := m.records.Get(id); ok {
		return v.(*previewRecord)
	}
	rec := &previewRecord{}
	m.records.Set(id, rec, cache.NoExpiration)
	return rec
}

func (m *previewModule) mutate(mu Mutation) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch mu.Kind {
	case PreviewLoading:
		p, ok := mu.Payload.(LineDelta)
		if !ok {
			return false
		}
		m.record(p.Id).loading += p.Delta
	case SetPreview:
		p, ok := mu.Payload.(PreviewLines)
		if !ok {
			return false
		}
		lines := p.Lines
		if lines == nil {
			lines = []string{}
		}
		m.record(p.Id).lines = append([]string{}, lines...)
	default:
		return false
	}
	return true
}

// reset drops loaded previews. Records with requests in flight keep their
// counters.
func (m *previewModule) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, item := range m.records.Items() {
		rec := item.Object.(*previewRecord)
		if rec.loading == 0 {
			m.records.Delete(id)
		} else {
			rec.lines = nil
		}
	}
}

func (m *previewModule) cached(id string) ([]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.records.Get(id)
	if !ok {
		return nil, false
	}
	rec := v.(*previewRecord)
	if rec.lines == nil {
		return nil, false
	}
	return append([]string{}, rec.lines...), true
}

func (m *previewModule) anyLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.records.Items() {
		if item.Object.(*previewRecord).loading > 0 {
			return true
		}
	}
	return false
}

type Preview struct {
	Loading bool
	Lines   []string
}

// FilePreview reports the preview state of a file without loading it.
func (s *Store) FilePreview(id string) Preview {
	s.preview.mu.Lock()
	defer s.preview.mu.Unlock()
	v, ok := s.preview.records.Get(id)
	if !ok {
		return Preview{}
	}
	rec := v.(*previewRecord)
	return Preview{Loading: rec.loading > 0, Lines: append([]string(nil), rec.lines...)}
}

// LoadPreview returns the first lines of a file, fetching them once. On
// failure the fallback message and the error text are cached as the preview.
func (s *Store) LoadPreview(ctx context.Context, id string) []string {
	s.commit(PreviewLoading, LineDelta{Id: id, Delta: 1})
	defer s.commit(PreviewLoading, LineDelta{Id: id, Delta: -1})

	if lines, ok := s.preview.cached(id); ok {
		return lines
	}

	content, err := s.svc.File.Slice(ctx, id, 0, s.opts.PreviewLines)
	if err != nil {
		lines := []string{previewFallback, err.Error()}
		s.commit(SetPreview, PreviewLines{Id: id, Lines: lines})
		s.recordError(previewModuleName, "LOAD_PREVIEW", err)
		return lines
	}

	lines := make([]string, 0, len(content.Lines))
	for _, l := range content.Lines {
		lines = append(lines, l.Text())
	}
	s.commit(SetPreview, PreviewLines{Id: id, Lines: lines})
	return lines
}
