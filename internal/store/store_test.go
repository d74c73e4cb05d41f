package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"knaxim-client/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aliceProfile() *dto.CompleteProfile {
	return &dto.CompleteProfile{
		User: dto.UserProfile{
			Id:      "u-alice",
			Name:    "alice",
			Folders: []string{"finance"},
			Files:   dto.OwnedFiles{Own: []string{"f1"}, View: []string{"f2"}},
		},
		Public: []string{"f4"},
		Groups: map[string]dto.GroupProfile{
			"g1": {
				Id:      "g1",
				Name:    "research",
				Owner:   "u-alice",
				Members: []string{"u-bob"},
				Folders: []string{"plans"},
				Files:   dto.OwnedFiles{Own: []string{"f3"}},
			},
		},
		Files: map[string]dto.FileRecord{
			"f1": {Id: "f1", Name: "report"},
			"f2": {Id: "f2", Name: "notes"},
			"f3": {Id: "f3", Name: "plan"},
			"f4": {Name: "handbook"},
		},
	}
}

func TestLoadingCounterBalances(t *testing.T) {
	f := newFakes()
	release := make(chan struct{})
	f.user.complete = func(ctx context.Context) (*dto.CompleteProfile, error) {
		<-release
		return nil, errors.New("backend down")
	}
	s := newTestStore(t, f, Options{})

	done := make(chan struct{})
	go func() {
		s.LoadServer(context.Background())
		close(done)
	}()

	assert.Eventually(t, s.Loading, time.Second, 5*time.Millisecond)
	close(release)
	<-done

	assert.False(t, s.Loading())
	assert.True(t, s.ErrorsAvailable())
}

func TestLoadServerFansOut(t *testing.T) {
	f := newFakes()
	f.user.complete = func(context.Context) (*dto.CompleteProfile, error) {
		return aliceProfile(), nil
	}
	f.folder.info = func(_ context.Context, name, group string) (*dto.FolderInfo, error) {
		return &dto.FolderInfo{Name: name, Files: []string{group + "/" + name}}, nil
	}
	s := newTestStore(t, f, Options{})

	s.LoadServer(context.Background())

	assert.Equal(t, "alice", s.CurrentUser().Name)
	assert.Equal(t, []string{"f1"}, s.OwnedFiles())
	assert.Equal(t, []string{"f2"}, s.SharedFiles())
	assert.Equal(t, []string{"f4"}, s.PublicFiles())

	handbook, ok := s.PopulateFile("f4")
	require.True(t, ok)
	assert.Equal(t, "f4", handbook.Id)

	groups := s.AvailableGroups()
	require.Len(t, groups, 1)
	assert.Equal(t, "research", groups[0].Name)

	name, ok := s.OwnerName("g1")
	assert.True(t, ok)
	assert.Equal(t, "research", name)

	assert.Equal(t, map[string][]string{"finance": {"/finance"}}, s.Folders())
	assert.Equal(t, map[string][]string{"plans": {"g1/plans"}}, s.FoldersFor("g1"))

	s.ActivateGroup("g1")
	assert.Equal(t, []string{"f3"}, s.OwnedFiles())
	assert.Empty(t, s.SharedFiles())
	assert.Equal(t, []string{"g1/plans"}, s.GetFolder("plans"))
	assert.False(t, s.Loading())
}

func TestLoginFailureIsRecordedAndReturned(t *testing.T) {
	f := newFakes()
	f.user.login = func(context.Context, dto.LoginRequest) (*dto.User, error) {
		return nil, errors.New("invalid credentials")
	}
	s := newTestStore(t, f, Options{})
	s.Commit(SetUser, &dto.User{Id: "u-old"})

	_, err := s.Login(context.Background(), dto.LoginRequest{Name: "alice", Password: "bad"})

	require.Error(t, err)
	assert.False(t, s.IsAuthenticated())
	errs := drain(s)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "invalid credentials")
	assert.False(t, s.AuthLoading())
}

func TestLoginBootstrapsSession(t *testing.T) {
	f := newFakes()
	f.user.login = func(_ context.Context, req dto.LoginRequest) (*dto.User, error) {
		return &dto.User{Id: "u-alice", Name: req.Name}, nil
	}
	f.user.complete = func(context.Context) (*dto.CompleteProfile, error) {
		return aliceProfile(), nil
	}
	f.group.options = func(context.Context, string) (*dto.GroupOptions, error) {
		return &dto.GroupOptions{Own: []dto.GroupInfo{{Id: "g1", Name: "research"}}}, nil
	}
	s := newTestStore(t, f, Options{})

	user, err := s.Login(context.Background(), dto.LoginRequest{Name: "alice", Password: "wonderland"})

	require.NoError(t, err)
	assert.Equal(t, "u-alice", user.Id)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, int32(1), f.user.completeCalls.Load())
	assert.Len(t, s.AvailableGroups(), 1)
	assert.Empty(t, drain(s))
}

func TestRegisterDoesNotRecord(t *testing.T) {
	f := newFakes()
	f.user.create = func(context.Context, dto.RegisterRequest) error {
		return errors.New("name taken")
	}
	s := newTestStore(t, f, Options{})

	err := s.Register(context.Background(), dto.RegisterRequest{Name: "alice"})

	assert.EqualError(t, err, "name taken")
	assert.False(t, s.ErrorsAvailable())
}

func TestGetUserQuiet(t *testing.T) {
	f := newFakes()
	f.user.info = func(context.Context, string) (*dto.User, error) {
		return nil, errors.New("login required")
	}
	s := newTestStore(t, f, Options{})

	_, err := s.GetUser(context.Background(), true)
	require.Error(t, err)
	assert.False(t, s.ErrorsAvailable())

	_, err = s.GetUser(context.Background(), false)
	require.Error(t, err)
	assert.True(t, s.ErrorsAvailable())
}

func TestLogoutClearsSessionButKeepsErrors(t *testing.T) {
	f := newFakes()
	f.user.complete = func(context.Context) (*dto.CompleteProfile, error) {
		return aliceProfile(), nil
	}
	s := newTestStore(t, f, Options{})
	ctx := context.Background()

	s.LoadServer(ctx)
	s.Touch("f1")
	s.PushError(errors.New("earlier failure"))
	s.On("opened", func(any) {})

	s.Logout(ctx)

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.OwnedFiles())
	assert.Empty(t, s.AvailableGroups())
	assert.Empty(t, s.Folders())
	assert.Empty(t, s.RecentFiles())
	assert.Empty(t, s.OwnerNames())
	assert.True(t, s.ErrorsAvailable())
	assert.Len(t, s.events.handlers["opened"], 1)
}

func TestResetKeepsLoadingCounters(t *testing.T) {
	s := newTestStore(t, newFakes(), Options{})

	done := s.track(FileLoading)
	s.PushError(errors.New("x"))
	s.Reset()

	assert.True(t, s.FileLoading())
	assert.False(t, s.ErrorsAvailable())
	done()
	assert.False(t, s.FileLoading())
}

func TestChangeFeedPublishesMutations(t *testing.T) {
	s := newTestStore(t, newFakes(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed, err := s.Subscribe(ctx)
	require.NoError(t, err)

	s.Touch("f1")

	select {
	case evt := <-feed:
		assert.Equal(t, "recents.TOUCH", evt.EventType())
		assert.Equal(t, "recents", evt.Payload()["module"])
	case <-time.After(time.Second):
		t.Fatal("no event on the change feed")
	}
}

func TestUnhandledMutationIsIgnored(t *testing.T) {
	s := newTestStore(t, newFakes(), Options{})
	assert.False(t, s.commit(Touch, 42))
	assert.False(t, s.commit(SetFile, dto.FileRecord{}))
	assert.Equal(t, "UNKNOWN_MUTATION", MutationKind(-1).String())
	assert.Equal(t, "SET_MATCHES", SetMatches.String())
}

func TestRecentFiles(t *testing.T) {
	s := newTestStore(t, newFakes(), Options{})
	s.Touch("a")
	s.Touch("b")
	s.Touch("a")
	s.Touch("")

	assert.Equal(t, []string{"a", "b"}, s.RecentFiles())
}
