package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"knaxim-client/internal/dto"
)

var (
	ErrUnknownCategory = errors.New("unknown nlp category")
	ErrBadRange        = errors.New("invalid nlp range")
)

type Category int

const (
	Topics Category = iota
	Actions
	Resources
	Processes

	categoryCount
)

// ParseCategory accepts the short and long spellings, "t" and "topic" and
// so on.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "t", "topic":
		return Topics, nil
	case "a", "action":
		return Actions, nil
	case "r", "resource":
		return Resources, nil
	case "p", "process":
		return Processes, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Code is the path segment the backend expects.
func (c Category) Code() string {
	switch c {
	case Topics:
		return "t"
	case Actions:
		return "a"
	case Resources:
		return "r"
	case Processes:
		return "p"
	}
	return ""
}

func (c Category) String() string {
	switch c {
	case Topics:
		return "topics"
	case Actions:
		return "actions"
	case Resources:
		return "resources"
	case Processes:
		return "processes"
	}
	return "unknown"
}

// nlpModule keeps, per category and file, tags indexed by absolute sentence
// position. Unfetched positions are nil.
type nlpModule struct {
	mu      sync.RWMutex
	loading int
	tags    [categoryCount]map[string][]*dto.NLPTag
}

func newNLPModule() *nlpModule {
	m := &nlpModule{}
	m.clear()
	return m
}

func (m *nlpModule) clear() {
	for i := range m.tags {
		m.tags[i] = map[string][]*dto.NLPTag{}
	}
}

func (m *nlpModule) name() string { return nlpModuleName }

func (m *nlpModule) mutate(mu Mutation) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch mu.Kind {
	case NLPLoading:
		delta, ok := mu.Payload.(int)
		if !ok {
			return false
		}
		m.loading += delta
	case SetNLP:
		p, ok := mu.Payload.(NLPPayload)
		if !ok || p.Category < 0 || p.Category >= categoryCount || p.Start < 0 {
			return false
		}
		cached := m.tags[p.Category][p.Fid]
		for len(cached) < p.Start+len(p.Info) {
			cached = append(cached, nil)
		}
		for i := range p.Info {
			tag := p.Info[i]
			cached[p.Start+i] = &tag
		}
		m.tags[p.Category][p.Fid] = cached
	default:
		return false
	}
	return true
}

func (m *nlpModule) reset() {
	m.mu.Lock()
	m.clear()
	m.mu.Unlock()
}

// covers reports whether every position in [start, end) is cached.
func (m *nlpModule) covers(c Category, fid string, start, end int) bool {
	cached, ok := m.tags[c][fid]
	if !ok || start < 0 || end < start || len(cached) < end {
		return false
	}
	for i := start; i < end; i++ {
		if cached[i] == nil {
			return false
		}
	}
	return true
}

func (s *Store) NLPLoading() bool {
	s.nlp.mu.RLock()
	defer s.nlp.mu.RUnlock()
	return s.nlp.loading > 0
}

// NLPTags returns a copy of the sparse tag array for a file.
func (s *Store) NLPTags(c Category, fid string) []*dto.NLPTag {
	s.nlp.mu.RLock()
	defer s.nlp.mu.RUnlock()
	if c < 0 || c >= categoryCount {
		return nil
	}
	return append([]*dto.NLPTag(nil), s.nlp.tags[c][fid]...)
}

// NLPData returns the tags of sentences [start, end). The range is served
// from cache when fully covered; otherwise it is fetched, merged in place and
// the fetched slice returned. A failed fetch is recorded and yields nil.
func (s *Store) NLPData(ctx context.Context, fid, category string, start, end int, overwrite bool) ([]*dto.NLPTag, error) {
	c, err := ParseCategory(category)
	if err != nil {
		return nil, err
	}
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: [%d, %d)", ErrBadRange, start, end)
	}

	if !overwrite {
		s.nlp.mu.RLock()
		covered := s.nlp.covers(c, fid, start, end)
		var cached []*dto.NLPTag
		if covered {
			cached = append(cached, s.nlp.tags[c][fid][start:end]...)
		}
		s.nlp.mu.RUnlock()
		if covered {
			return cached, nil
		}
	}

	defer s.track(NLPLoading)()

	resp, err := s.svc.NLP.Info(ctx, dto.NLPRequest{Fid: fid, Category: c.Code(), Start: start, End: end})
	if err != nil {
		s.recordError(nlpModuleName, "NLP_DATA", err)
		return nil, nil
	}
	s.commit(SetNLP, NLPPayload{Fid: fid, Category: c, Start: start, Info: resp.Info})

	out := make([]*dto.NLPTag, len(resp.Info))
	for i := range resp.Info {
		tag := resp.Info[i]
		out[i] = &tag
	}
	return out, nil
}
