package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"knaxim-client/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchHistoryBoundedAndDeduplicated(t *testing.T) {
	s := newTestStore(t, newFakes(), Options{})
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		ok, err := s.Search(ctx, fmt.Sprintf("q%d", i), "")
		require.NoError(t, err)
		require.True(t, ok)
	}
	_, err := s.Search(ctx, "q5", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"q5", "q11", "q10", "q9", "q8", "q7", "q6", "q4", "q3", "q2"}, s.SearchHistory())
	assert.Equal(t, "q5", s.CurrentSearch())
}

func TestSearchEmptyQueryIsNoop(t *testing.T) {
	s := newTestStore(t, newFakes(), Options{})

	ok, err := s.Search(context.Background(), "", "")

	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, s.SearchHistory())
	assert.False(t, s.SearchLoading())
}

func TestSearchScopesToActiveOwner(t *testing.T) {
	f := newFakes()
	var got dto.TagSearchRequest
	f.search.fileTags = func(_ context.Context, req dto.TagSearchRequest) (*dto.SearchResponse, error) {
		got = req
		return &dto.SearchResponse{}, nil
	}
	s := newTestStore(t, f, Options{})
	s.Commit(SetUser, &dto.User{Id: "u-alice"})
	ctx := context.Background()

	_, err := s.Search(ctx, "growth", "NASA")
	require.NoError(t, err)
	assert.Equal(t, `"growth" NASA`, s.CurrentSearch())
	assert.Equal(t, `"growth" NASA`, got.Match)
	assert.Equal(t, []dto.SearchContext{{Type: "owner", Id: "u-alice"}}, got.Context)

	s.ActivateGroup("g1")
	_, err = s.Search(ctx, "growth", "")
	require.NoError(t, err)
	assert.Equal(t, "g1", got.Context[0].Id)

	s.DeactivateSearch()
	assert.Equal(t, "", s.CurrentSearch())
	assert.Nil(t, s.SearchMatches())
}

func TestSearchLoadsMatchedLines(t *testing.T) {
	f := newFakes()
	f.search.fileTags = func(context.Context, dto.TagSearchRequest) (*dto.SearchResponse, error) {
		return &dto.SearchResponse{Matched: []dto.FileInfo{
			{File: dto.FileRecord{Id: "f1", Name: "report"}, Count: 2},
		}}, nil
	}
	f.file.search = func(_ context.Context, id string, start, end int, find string) (*dto.FileContent, error) {
		return &dto.FileContent{Lines: []dto.ContentLine{
			{ID: id, Position: 1, Content: []string{"NASA growth"}},
			{ID: id, Position: 4, Content: []string{"more growth"}},
		}}, nil
	}
	s := newTestStore(t, f, Options{})

	ok, err := s.Search(context.Background(), "growth", "")

	require.NoError(t, err)
	require.True(t, ok)
	matches := s.SearchMatches()
	require.Len(t, matches, 1)
	assert.Equal(t, int64(2), matches[0].Count)

	lines := s.SearchLines()["f1"]
	assert.False(t, lines.Loading)
	require.Len(t, lines.Matched, 2)
	assert.Equal(t, "more growth", lines.Matched[1].Text())
	assert.False(t, s.Loading())
}

func TestLoadFileMatchLinesStopsAtFourMatches(t *testing.T) {
	f := newFakes()
	var pages atomic.Int32
	f.file.search = func(_ context.Context, id string, start, end int, _ string) (*dto.FileContent, error) {
		pages.Add(1)
		return &dto.FileContent{Lines: []dto.ContentLine{{ID: id, Position: start, Content: []string{"hit"}}}}, nil
	}
	s := newTestStore(t, f, Options{SearchPageSize: 2})

	s.LoadFileMatchLines(context.Background(), "hit", "f1", 10)

	assert.Equal(t, int32(4), pages.Load())
	set := s.SearchLines()["f1"]
	assert.Len(t, set.Matched, 4)
	assert.False(t, set.Loading)
}

func TestLoadFileMatchLinesRecordsFailure(t *testing.T) {
	f := newFakes()
	f.file.search = func(context.Context, string, int, int, string) (*dto.FileContent, error) {
		return nil, errors.New("slice failed")
	}
	s := newTestStore(t, f, Options{})

	s.LoadFileMatchLines(context.Background(), "x", "f1", 5)

	assert.Empty(t, s.SearchLines()["f1"].Matched)
	assert.Len(t, drain(s), 1)
}

func TestNewerSearchSupersedesOlder(t *testing.T) {
	f := newFakes()
	started := make(chan struct{})
	release := make(chan struct{})
	f.search.fileTags = func(_ context.Context, req dto.TagSearchRequest) (*dto.SearchResponse, error) {
		if req.Match == "slow" {
			close(started)
			<-release
			return &dto.SearchResponse{Matched: []dto.FileInfo{{File: dto.FileRecord{Id: "stale"}}}}, nil
		}
		return &dto.SearchResponse{Matched: []dto.FileInfo{{File: dto.FileRecord{Id: "fresh"}, Count: 1}}}, nil
	}
	s := newTestStore(t, f, Options{})
	ctx := context.Background()
	defer close(release)

	type outcome struct {
		ok  bool
		err error
	}
	first := make(chan outcome, 1)
	go func() {
		ok, err := s.Search(ctx, "slow", "")
		first <- outcome{ok, err}
	}()
	<-started

	ok, err := s.Search(ctx, "fast", "")
	require.NoError(t, err)
	require.True(t, ok)

	old := <-first
	assert.False(t, old.ok)
	assert.ErrorIs(t, old.err, ErrSearchCanceled)

	matches := s.SearchMatches()
	require.Len(t, matches, 1)
	assert.Equal(t, "fresh", matches[0].Id)
	assert.Equal(t, "fast", s.CurrentSearch())
	assert.False(t, s.ErrorsAvailable())
}

func TestStaleMatchesAreDropped(t *testing.T) {
	s := newTestStore(t, newFakes(), Options{})
	live := newSearchTicket()
	s.commit(CancelSearch, live)
	s.commit(NewSearch, "q")

	stale := newSearchTicket()
	assert.False(t, s.commit(SetMatches, Matches{Ticket: stale.id, Files: []dto.FileRecord{{Id: "x"}}}))
	assert.Empty(t, s.SearchMatches())

	assert.True(t, s.commit(SetMatches, Matches{Ticket: live.id, Files: []dto.FileRecord{{Id: "y"}}}))
	assert.Len(t, s.SearchMatches(), 1)
}

func TestSearchFailureIsRecorded(t *testing.T) {
	f := newFakes()
	f.search.fileTags = func(context.Context, dto.TagSearchRequest) (*dto.SearchResponse, error) {
		return nil, errors.New("search unavailable")
	}
	s := newTestStore(t, f, Options{})

	ok, err := s.Search(context.Background(), "x", "")

	assert.False(t, ok)
	assert.Error(t, err)
	assert.Len(t, drain(s), 1)
	assert.False(t, s.SearchLoading())
}

func TestSearchTagSendsConditionList(t *testing.T) {
	f := newFakes()
	var got dto.TagSearchRequest
	f.search.fileTags = func(_ context.Context, req dto.TagSearchRequest) (*dto.SearchResponse, error) {
		got = req
		return &dto.SearchResponse{}, nil
	}
	s := newTestStore(t, f, Options{})

	cond := dto.MatchCondition{TagType: "topic", Word: "growth"}
	ok, err := s.SearchTag(context.Background(), []dto.SearchContext{{Type: "file", Id: "f1"}}, cond)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []dto.MatchCondition{cond}, got.Match)
	assert.Equal(t, "growth", s.CurrentSearch())
}

func TestAcronyms(t *testing.T) {
	f := newFakes()
	f.acronym.get = func(_ context.Context, acr string) ([]string, error) {
		return []string{"National Aeronautics and Space Administration"}, nil
	}
	s := newTestStore(t, f, Options{})
	ctx := context.Background()

	assert.Len(t, s.Acronyms(ctx, "NASA"), 1)
	assert.Len(t, s.AcronymResults(), 1)

	assert.Empty(t, s.Acronyms(ctx, ""))
	assert.Empty(t, s.AcronymResults())
	assert.False(t, s.AcronymLoading())
}
