package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"knaxim-client/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOwnerShowsPlaceholderWhileInFlight(t *testing.T) {
	f := newFakes()
	release := make(chan struct{})
	var userCalls atomic.Int32
	f.user.info = func(ctx context.Context, id string) (*dto.User, error) {
		userCalls.Add(1)
		<-release
		return &dto.User{Id: id, Name: "alice"}, nil
	}
	f.group.info = func(context.Context, string) (*dto.GroupInfo, error) {
		return nil, errors.New("group not found")
	}
	s := newTestStore(t, f, Options{})
	ctx := context.Background()

	result := make(chan string, 1)
	go func() {
		name, _ := s.LoadOwner(ctx, UntaggedOwner("u-alice"), false)
		result <- name
	}()

	assert.Eventually(t, func() bool {
		name, ok := s.OwnerName("u-alice")
		return ok && name == OwnerLoadingName
	}, time.Second, 5*time.Millisecond)
	assert.True(t, s.OwnerLoading())

	close(release)
	assert.Equal(t, "alice", <-result)

	name, _ := s.OwnerName("u-alice")
	assert.Equal(t, "alice", name)
	assert.False(t, s.OwnerLoading())

	again, err := s.LoadOwner(ctx, UntaggedOwner("u-alice"), false)
	require.NoError(t, err)
	assert.Equal(t, "alice", again)
	assert.Equal(t, int32(1), userCalls.Load())
	assert.False(t, s.ErrorsAvailable())
}

func TestLoadOwnerRaceTakesFirstSuccess(t *testing.T) {
	f := newFakes()
	f.user.info = func(ctx context.Context, _ string) (*dto.User, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	f.group.info = func(_ context.Context, id string) (*dto.GroupInfo, error) {
		return &dto.GroupInfo{Id: id, Name: "research"}, nil
	}
	s := newTestStore(t, f, Options{})

	name, err := s.LoadOwner(context.Background(), UntaggedOwner("g1"), false)

	require.NoError(t, err)
	assert.Equal(t, "research", name)
}

func TestLoadOwnerTaggedSkipsRace(t *testing.T) {
	f := newFakes()
	f.group.info = func(_ context.Context, id string) (*dto.GroupInfo, error) {
		return &dto.GroupInfo{Id: id, Name: "research"}, nil
	}
	s := newTestStore(t, f, Options{})

	name, err := s.LoadOwner(context.Background(), GroupOwner("g1"), false)
	require.NoError(t, err)
	assert.Equal(t, "research", name)

	name, err = s.LoadOwner(context.Background(), UserOwner("u-x"), true)
	require.NoError(t, err)
	assert.Equal(t, OwnerUnknownName, name)
}

func TestLoadOwnerFailureCachesUnknown(t *testing.T) {
	s := newTestStore(t, newFakes(), Options{})

	name, err := s.LoadOwner(context.Background(), UntaggedOwner("ghost"), false)

	require.NoError(t, err)
	assert.Equal(t, OwnerUnknownName, name)
	cached, _ := s.OwnerName("ghost")
	assert.Equal(t, OwnerUnknownName, cached)
	assert.Len(t, drain(s), 1)
}

func TestLoadOwnerEmptyID(t *testing.T) {
	s := newTestStore(t, newFakes(), Options{})

	_, err := s.LoadOwner(context.Background(), UntaggedOwner(""), false)

	assert.ErrorIs(t, err, ErrEmptyOwnerID)
	assert.True(t, s.ErrorsAvailable())
}

func TestLookupOwner(t *testing.T) {
	f := newFakes()
	var lookups atomic.Int32
	f.group.lookup = func(_ context.Context, name string) (*dto.GroupInfo, error) {
		lookups.Add(1)
		if name != "research" {
			return nil, errors.New("group not found")
		}
		return &dto.GroupInfo{Id: "g1", Name: name}, nil
	}
	s := newTestStore(t, f, Options{})
	ctx := context.Background()

	id, err := s.LookupOwner(ctx, "research", false)
	require.NoError(t, err)
	assert.Equal(t, "g1", id)

	id, err = s.LookupOwner(ctx, "research", false)
	require.NoError(t, err)
	assert.Equal(t, "g1", id)
	assert.Equal(t, int32(1), lookups.Load())

	_, err = s.LookupOwner(ctx, "nobody", true)
	assert.Error(t, err)
	assert.Equal(t, int32(2), lookups.Load())
	assert.Len(t, drain(s), 1)
}

func TestFirstFulfilledJoinsErrors(t *testing.T) {
	a := errors.New("a")
	b := errors.New("b")
	_, err := firstFulfilled[int](context.Background(),
		func(context.Context) (int, error) { return 0, a },
		func(context.Context) (int, error) { return 0, b },
	)
	assert.ErrorIs(t, err, a)
	assert.ErrorIs(t, err, b)

	_, err = firstFulfilled[int](context.Background())
	assert.Error(t, err)
}

func TestOwnerKindString(t *testing.T) {
	assert.Equal(t, "user", OwnerUser.String())
	assert.Equal(t, "group", OwnerGroup.String())
	assert.Equal(t, "untagged", OwnerUntagged.String())
}
