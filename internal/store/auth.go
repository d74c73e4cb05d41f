package store

import (
	"context"
	"sync"

	"knaxim-client/internal/dto"

	"golang.org/x/sync/errgroup"
)

type authModule struct {
	mu      sync.RWMutex
	user    *dto.User
	loading int
}

func (m *authModule) name() string { return authModuleName }

func (m *authModule) mutate(mu Mutation) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch mu.Kind {
	case SetUser:
		user, ok := mu.Payload.(*dto.User)
		if !ok || user == nil {
			return false
		}
		u := *user
		m.user = &u
	case PurgeAuth:
		m.user = nil
	case ProcessServerState:
		profile, ok := mu.Payload.(*dto.CompleteProfile)
		if !ok || profile == nil {
			return false
		}
		m.user = &dto.User{
			Id:    profile.User.Id,
			Name:  profile.User.Name,
			Roles: profile.User.Roles,
			Data:  profile.User.Data,
		}
	case AuthLoading:
		delta, ok := mu.Payload.(int)
		if !ok {
			return false
		}
		m.loading += delta
	default:
		return false
	}
	return true
}

func (m *authModule) reset() {
	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()
}

// CurrentUser returns a copy of the signed-in user, or the zero User.
func (s *Store) CurrentUser() dto.User {
	s.auth.mu.RLock()
	defer s.auth.mu.RUnlock()
	if s.auth.user == nil {
		return dto.User{}
	}
	return *s.auth.user
}

func (s *Store) IsAuthenticated() bool {
	s.auth.mu.RLock()
	defer s.auth.mu.RUnlock()
	return s.auth.user != nil
}

func (s *Store) AuthLoading() bool {
	s.auth.mu.RLock()
	defer s.auth.mu.RUnlock()
	return s.auth.loading > 0
}

// Login signs in and bootstraps the session. Any previous session is
// purged before the request goes out.
func (s *Store) Login(ctx context.Context, req dto.LoginRequest) (*dto.User, error) {
	s.commit(PurgeAuth, nil)
	defer s.track(AuthLoading)()

	user, err := s.svc.User.Login(ctx, req)
	if err != nil {
		s.recordError(authModuleName, "LOGIN", err)
		return nil, err
	}
	s.commit(SetUser, user)

	s.AfterLogin(ctx)
	return user, nil
}

// AfterLogin refreshes groups and loads the complete profile side by side.
func (s *Store) AfterLogin(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error {
		s.RefreshGroups(ctx)
		return nil
	})
	g.Go(func() error {
		s.LoadServer(ctx)
		return nil
	})
	_ = g.Wait()
}

// Logout clears the session state immediately, then tells the server.
// A failed request is recorded, not returned.
func (s *Store) Logout(ctx context.Context) {
	s.commit(PurgeAuth, nil)
	s.resetSession()
	defer s.track(AuthLoading)()

	if err := s.svc.User.Logout(ctx); err != nil {
		s.recordError(authModuleName, "LOGOUT", err)
	}
}

// GetUser fetches the session user. Quiet skips recording a failure, for
// passive checks where being signed out is expected.
func (s *Store) GetUser(ctx context.Context, quiet bool) (*dto.User, error) {
	defer s.track(AuthLoading)()

	user, err := s.svc.User.Info(ctx, "")
	if err != nil {
		if !quiet {
			s.recordError(authModuleName, "GET_USER", err)
		}
		return nil, err
	}
	s.commit(SetUser, user)
	return user, nil
}

func (s *Store) Register(ctx context.Context, req dto.RegisterRequest) error {
	defer s.track(AuthLoading)()
	return s.svc.User.Create(ctx, req)
}

// ChangePassword signs out on success; the old session is invalid.
func (s *Store) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) error {
	done := s.track(AuthLoading)
	err := s.svc.User.ChangePassword(ctx, req)
	done()

	if err != nil {
		s.recordError(authModuleName, "CHANGE_PASSWORD", err)
		return err
	}
	s.Logout(ctx)
	return nil
}

func (s *Store) SendResetRequest(ctx context.Context, name string) error {
	defer s.track(AuthLoading)()

	if err := s.svc.User.RequestReset(ctx, dto.ResetRequest{Name: name}); err != nil {
		s.recordError(authModuleName, "SEND_RESET_REQUEST", err)
		return err
	}
	return nil
}

func (s *Store) ResetPassword(ctx context.Context, key, newPassword string) error {
	defer s.track(AuthLoading)()

	err := s.svc.User.ResetPassword(ctx, dto.ResetPasswordRequest{Key: key, NewPassword: newPassword})
	if err != nil {
		s.recordError(authModuleName, "RESET_PASSWORD", err)
		return err
	}
	return nil
}
