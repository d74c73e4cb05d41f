package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"knaxim-client/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(tags []*dto.NLPTag) []string {
	out := make([]string, len(tags))
	for i, tag := range tags {
		if tag != nil {
			out[i] = tag.Word
		}
	}
	return out
}

func TestSetNLPPadsSparseArray(t *testing.T) {
	s := newTestStore(t, newFakes(), Options{})

	s.Commit(SetNLP, NLPPayload{
		Fid:      "f1",
		Category: Topics,
		Start:    2,
		Info:     []dto.NLPTag{{Word: "a"}, {Word: "b"}, {Word: "c"}},
	})

	tags := s.NLPTags(Topics, "f1")
	require.Len(t, tags, 5)
	assert.Nil(t, tags[0])
	assert.Nil(t, tags[1])
	assert.Equal(t, []string{"", "", "a", "b", "c"}, words(tags))
	assert.Empty(t, s.NLPTags(Actions, "f1"))
}

func TestNLPDataServesCoveredRangesFromCache(t *testing.T) {
	f := newFakes()
	f.nlp.info = func(_ context.Context, req dto.NLPRequest) (*dto.NLPResponse, error) {
		assert.Equal(t, "t", req.Category)
		info := make([]dto.NLPTag, 0, req.End-req.Start)
		for i := req.Start; i < req.End; i++ {
			info = append(info, dto.NLPTag{Word: fmt.Sprintf("w%d", i)})
		}
		return &dto.NLPResponse{Fid: req.Fid, Info: info}, nil
	}
	s := newTestStore(t, f, Options{})
	ctx := context.Background()

	s.Commit(SetNLP, NLPPayload{
		Fid:      "f1",
		Category: Topics,
		Start:    2,
		Info:     []dto.NLPTag{{Word: "a"}, {Word: "b"}, {Word: "c"}},
	})

	got, err := s.NLPData(ctx, "f1", "topic", 0, 3, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"w0", "w1", "w2"}, words(got))
	assert.Equal(t, int32(1), f.nlp.calls.Load())

	got, err = s.NLPData(ctx, "f1", "t", 2, 5, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"w2", "b", "c"}, words(got))
	assert.Equal(t, int32(1), f.nlp.calls.Load())

	_, err = s.NLPData(ctx, "f1", "t", 2, 5, true)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.nlp.calls.Load())
	assert.Equal(t, []string{"w0", "w1", "w2", "w3", "w4"}, words(s.NLPTags(Topics, "f1")))
}

func TestNLPDataFailureYieldsNothing(t *testing.T) {
	f := newFakes()
	f.nlp.info = func(context.Context, dto.NLPRequest) (*dto.NLPResponse, error) {
		return nil, errors.New("nlp offline")
	}
	s := newTestStore(t, f, Options{})

	got, err := s.NLPData(context.Background(), "f1", "a", 0, 3, false)

	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.Len(t, drain(s), 1)
	assert.False(t, s.NLPLoading())
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
		code string
	}{
		{"t", Topics, "t"},
		{"topic", Topics, "t"},
		{"action", Actions, "a"},
		{"r", Resources, "r"},
		{"process", Processes, "p"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseCategory(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c)
			assert.Equal(t, tt.code, c.Code())
		})
	}

	_, err := ParseCategory("x")
	assert.ErrorIs(t, err, ErrUnknownCategory)

	s := newTestStore(t, newFakes(), Options{})
	_, err = s.NLPData(context.Background(), "f1", "x", 0, 1, false)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestNLPDataRejectsInvertedRange(t *testing.T) {
	f := newFakes()
	s := newTestStore(t, f, Options{})
	s.Commit(SetNLP, NLPPayload{
		Fid:      "f1",
		Category: Topics,
		Info:     []dto.NLPTag{{Word: "a"}, {Word: "b"}, {Word: "c"}, {Word: "d"}, {Word: "e"}},
	})

	for _, tc := range []struct {
		name       string
		start, end int
		overwrite  bool
	}{
		{"inverted", 4, 2, false},
		{"inverted overwrite", 4, 2, true},
		{"negative start", -1, 2, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.NLPData(context.Background(), "f1", "t", tc.start, tc.end, tc.overwrite)
			assert.ErrorIs(t, err, ErrBadRange)
			assert.Nil(t, got)
		})
	}

	assert.Equal(t, int32(0), f.nlp.calls.Load())
	assert.Empty(t, drain(s))

	got, err := s.NLPData(context.Background(), "f1", "t", 3, 3, false)
	require.NoError(t, err)
	assert.Empty(t, got)
}
