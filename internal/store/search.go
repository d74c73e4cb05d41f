package store

import (
	"context"
	"errors"
	"sync"

	"knaxim-client/internal/dto"
	"knaxim-client/internal/service"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrSearchCanceled is returned by a search that a newer search replaced
// before its results arrived.
var ErrSearchCanceled = errors.New("search canceled")

// minLineMatches stops paging through a file once this many lines matched.
const minLineMatches = 4

// searchTicket identifies one logical search. Closing superseded tells the
// waiting action its result is no longer wanted.
type searchTicket struct {
	id         uuid.UUID
	superseded chan struct{}
	once       sync.Once
}

func newSearchTicket() *searchTicket {
	return &searchTicket{id: uuid.New(), superseded: make(chan struct{})}
}

func (t *searchTicket) cancel() {
	t.once.Do(func() { close(t.superseded) })
}

type lineRecord struct {
	loading int
	matched []dto.ContentLine
}

// MatchedLineSet is the per-file result of line matching.
type MatchedLineSet struct {
	Loading bool
	Matched []dto.ContentLine
}

type searchModule struct {
	mu      sync.RWMutex
	loading int
	limit   int
	history []string
	active  bool
	matches []dto.FileRecord
	lines   map[string]*lineRecord
	ticket  *searchTicket
}

func newSearchModule(limit int) *searchModule {
	return &searchModule{limit: limit, lines: map[string]*lineRecord{}}
}

func (m *searchModule) name() string { return searchModuleName }

func (m *searchModule) line(id string) *lineRecord {
	rec, ok := m.lines[id]
	if !ok {
		rec = &lineRecord{}
		m.lines[id] = rec
	}
	return rec
}

func (m *searchModule) mutate(mu Mutation) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch mu.Kind {
	case SearchLoading:
		delta, ok := mu.Payload.(int)
		if !ok {
			return false
		}
		m.loading += delta
	case CancelSearch:
		next, ok := mu.Payload.(*searchTicket)
		if !ok {
			return false
		}
		if m.ticket != nil {
			m.ticket.cancel()
		}
		m.ticket = next
	case NewSearch:
		find, ok := mu.Payload.(string)
		if !ok {
			return false
		}
		m.history = append([]string{find}, without(m.history, find)...)
		if len(m.history) > m.limit {
			m.history = m.history[:m.limit]
		}
		m.active = true
		m.matches = nil
	case DeactivateSearch:
		m.active = false
	case SetMatches:
		p, ok := mu.Payload.(Matches)
		if !ok || m.ticket == nil || m.ticket.id != p.Ticket {
			return false
		}
		m.matches = append([]dto.FileRecord{}, p.Files...)
	case LoadingMatchedLines:
		p, ok := mu.Payload.(LineDelta)
		if !ok {
			return false
		}
		m.line(p.Id).loading += p.Delta
	case SetMatchedLines:
		p, ok := mu.Payload.(MatchedLines)
		if !ok {
			return false
		}
		m.line(p.Id).matched = append([]dto.ContentLine{}, p.Lines...)
	default:
		return false
	}
	return true
}

func (m *searchModule) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ticket != nil {
		m.ticket.cancel()
		m.ticket = nil
	}
	m.history = nil
	m.active = false
	m.matches = nil
	for id, rec := range m.lines {
		if rec.loading == 0 {
			delete(m.lines, id)
		} else {
			rec.matched = nil
		}
	}
}

func (s *Store) SearchLoading() bool {
	s.search.mu.RLock()
	defer s.search.mu.RUnlock()
	return s.search.loading > 0
}

// SearchMatches is empty unless a search is active.
func (s *Store) SearchMatches() []dto.FileRecord {
	s.search.mu.RLock()
	defer s.search.mu.RUnlock()
	if !s.search.active {
		return nil
	}
	return append([]dto.FileRecord{}, s.search.matches...)
}

func (s *Store) CurrentSearch() string {
	s.search.mu.RLock()
	defer s.search.mu.RUnlock()
	if !s.search.active || len(s.search.history) == 0 {
		return ""
	}
	return s.search.history[0]
}

// SearchHistory lists past queries, most recent first.
func (s *Store) SearchHistory() []string {
	s.search.mu.RLock()
	defer s.search.mu.RUnlock()
	return append([]string{}, s.search.history...)
}

func (s *Store) SearchLines() map[string]MatchedLineSet {
	s.search.mu.RLock()
	defer s.search.mu.RUnlock()
	out := make(map[string]MatchedLineSet, len(s.search.lines))
	for id, rec := range s.search.lines {
		out[id] = MatchedLineSet{
			Loading: rec.loading > 0,
			Matched: append([]dto.ContentLine{}, rec.matched...),
		}
	}
	return out
}

func (s *Store) DeactivateSearch() {
	s.commit(DeactivateSearch, nil)
}

// Search runs a text search over the current scope. An acronym narrows it to
// the quoted phrase followed by the acronym. An empty query returns false
// without touching state. Starting a search supersedes any search still in
// flight; the superseded call returns ErrSearchCanceled.
func (s *Store) Search(ctx context.Context, find, acronym string) (bool, error) {
	if acronym != "" {
		find = `"` + find + `" ` + acronym
	}
	if len(find) < 1 {
		return false, nil
	}

	owner := s.activeGroupID()
	if owner == "" {
		owner = s.CurrentUser().Id
	}
	req := dto.TagSearchRequest{
		Context: []dto.SearchContext{service.NewOwnerContext(owner, "")},
		Match:   service.NewMatchCondition(find, "", false, ""),
	}
	return s.runSearch(ctx, "SEARCH", find, req)
}

// SearchTag searches by a structured tag condition within the given contexts.
func (s *Store) SearchTag(ctx context.Context, contexts []dto.SearchContext, match dto.MatchCondition) (bool, error) {
	req := dto.TagSearchRequest{
		Context: contexts,
		Match:   []dto.MatchCondition{match},
	}
	return s.runSearch(ctx, "SEARCH_TAG", match.Word, req)
}

func (s *Store) runSearch(ctx context.Context, action, find string, req dto.TagSearchRequest) (bool, error) {
	defer s.track(SearchLoading)()

	ticket := newSearchTicket()
	s.commit(CancelSearch, ticket)
	s.commit(NewSearch, find)

	files, err := s.awaitMatches(ctx, ticket, req)
	if err != nil {
		if !errors.Is(err, ErrSearchCanceled) && ctx.Err() == nil {
			s.recordError(searchModuleName, action, err)
		}
		return false, err
	}

	if !s.commit(SetMatches, Matches{Ticket: ticket.id, Files: files}) {
		return false, ErrSearchCanceled
	}
	s.LoadMatchedLines(ctx, find, files)
	return true, nil
}

// awaitMatches waits for the tag search unless the ticket is superseded
// first. The request itself is left to finish; its result is dropped.
func (s *Store) awaitMatches(ctx context.Context, ticket *searchTicket, req dto.TagSearchRequest) ([]dto.FileRecord, error) {
	type result struct {
		resp *dto.SearchResponse
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := s.svc.Search.FileTags(ctx, req)
		done <- result{resp: resp, err: err}
	}()

	select {
	case <-ticket.superseded:
		return nil, ErrSearchCanceled
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		files := make([]dto.FileRecord, 0, len(r.resp.Matched))
		for _, m := range r.resp.Matched {
			record := m.File
			record.Count = m.Count
			files = append(files, record)
		}
		return files, nil
	}
}

// LoadMatchedLines loads matching lines for every file side by side. Each
// file's line set is reset and marked loading before any request starts.
func (s *Store) LoadMatchedLines(ctx context.Context, find string, files []dto.FileRecord) {
	for _, f := range files {
		s.commit(LoadingMatchedLines, LineDelta{Id: f.Id, Delta: 1})
		s.commit(SetMatchedLines, MatchedLines{Id: f.Id})
	}

	var g errgroup.Group
	for _, f := range files {
		g.Go(func() error {
			defer s.commit(LoadingMatchedLines, LineDelta{Id: f.Id, Delta: -1})
			s.LoadFileMatchLines(ctx, find, f.Id, int(f.Count))
			return nil
		})
	}
	_ = g.Wait()
}

// LoadFileMatchLines pages through a file until limit lines were scanned or
// enough matches were found, then commits what it collected.
func (s *Store) LoadFileMatchLines(ctx context.Context, find, id string, limit int) {
	s.commit(LoadingMatchedLines, LineDelta{Id: id, Delta: 1})
	defer s.commit(LoadingMatchedLines, LineDelta{Id: id, Delta: -1})
	s.commit(SetMatchedLines, MatchedLines{Id: id})

	step := s.opts.SearchPageSize
	var found []dto.ContentLine
	for start := 0; start < limit && len(found) < minLineMatches; start += step {
		content, err := s.svc.File.Search(ctx, id, start, start+step, find)
		if err != nil {
			s.recordError(searchModuleName, "LOAD_FILE_MATCH_LINES", err)
			return
		}
		found = append(found, content.Lines...)
	}
	s.commit(SetMatchedLines, MatchedLines{Id: id, Lines: found})
}
