package service

import (
	"context"
	"net/url"

	"knaxim-client/internal/dto"
	"knaxim-client/pkg/api"
)

type IUserService interface {
	Create(ctx context.Context, req dto.RegisterRequest) error
	// Info returns the session user when id is empty.
	Info(ctx context.Context, id string) (*dto.User, error)
	Lookup(ctx context.Context, name string) (*dto.User, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.User, error)
	Logout(ctx context.Context) error
	Complete(ctx context.Context) (*dto.CompleteProfile, error)
	ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) error
	Data(ctx context.Context) (*dto.UserData, error)
	RequestReset(ctx context.Context, req dto.ResetRequest) error
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error
}

type userService struct {
	*base
}

func NewUserService(client Requester, debug bool) IUserService {
	return &userService{base: newBase(client, debug)}
}

func (s *userService) Create(ctx context.Context, req dto.RegisterRequest) error {
	const op = "UserService.create"
	if err := s.check(op, req); err != nil {
		return err
	}
	_, err := exec(ctx, s.base, op, func(ctx context.Context) (*api.Response, error) {
		return s.client.Put(ctx, "user", api.Form{
			"name":  req.Name,
			"pass":  req.Password,
			"email": req.Email,
		})
	})
	return err
}

func (s *userService) Info(ctx context.Context, id string) (*dto.User, error) {
	return fetch[dto.User](ctx, s.base, "UserService.info", func(ctx context.Context) (*api.Response, error) {
		if id == "" {
			return s.client.Get(ctx, "user")
		}
		return s.client.Query(ctx, "user", api.Form{"id": id})
	})
}

func (s *userService) Lookup(ctx context.Context, name string) (*dto.User, error) {
	return fetch[dto.User](ctx, s.base, "UserService.lookup", func(ctx context.Context) (*api.Response, error) {
		return s.client.Get(ctx, "user/name/"+url.PathEscape(name))
	})
}

func (s *userService) Login(ctx context.Context, req dto.LoginRequest) (*dto.User, error) {
	const op = "UserService.login"
	if err := s.check(op, req); err != nil {
		return nil, err
	}
	return fetch[dto.User](ctx, s.base, op, func(ctx context.Context) (*api.Response, error) {
		return s.client.Post(ctx, "user/login", api.Form{
			"name": req.Name,
			"pass": req.Password,
		})
	})
}

func (s *userService) Logout(ctx context.Context) error {
	_, err := exec(ctx, s.base, "UserService.logout", func(ctx context.Context) (*api.Response, error) {
		return s.client.Delete(ctx, "user", nil)
	})
	return err
}

func (s *userService) Complete(ctx context.Context) (*dto.CompleteProfile, error) {
	return fetch[dto.CompleteProfile](ctx, s.base, "UserService.completeProfile", func(ctx context.Context) (*api.Response, error) {
		return s.client.Get(ctx, "user/complete")
	})
}

func (s *userService) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) error {
	const op = "UserService.changePassword"
	if err := s.check(op, req); err != nil {
		return err
	}
	_, err := exec(ctx, s.base, op, func(ctx context.Context) (*api.Response, error) {
		return s.client.Post(ctx, "user/pass", api.Form{
			"oldpass": req.OldPassword,
			"newpass": req.NewPassword,
		})
	})
	return err
}

func (s *userService) Data(ctx context.Context) (*dto.UserData, error) {
	return fetch[dto.UserData](ctx, s.base, "UserService.data", func(ctx context.Context) (*api.Response, error) {
		return s.client.Get(ctx, "user/data")
	})
}

func (s *userService) RequestReset(ctx context.Context, req dto.ResetRequest) error {
	const op = "UserService.requestReset"
	if err := s.check(op, req); err != nil {
		return err
	}
	_, err := exec(ctx, s.base, op, func(ctx context.Context) (*api.Response, error) {
		return s.client.Put(ctx, "user/reset", api.Form{"name": req.Name})
	})
	return err
}

func (s *userService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	const op = "UserService.resetPass"
	if err := s.check(op, req); err != nil {
		return err
	}
	_, err := exec(ctx, s.base, op, func(ctx context.Context) (*api.Response, error) {
		return s.client.Post(ctx, "user/reset", api.Form{
			"key":     req.Key,
			"newpass": req.NewPassword,
		})
	})
	return err
}
