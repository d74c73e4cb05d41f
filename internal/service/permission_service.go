package service

import (
	"context"
	"net/url"

	"knaxim-client/internal/dto"
	"knaxim-client/pkg/api"
)

type IPermissionService interface {
	Get(ctx context.Context, fileId string) (*dto.PermissionInfo, error)
	Share(ctx context.Context, req dto.ShareRequest) error
	StopSharing(ctx context.Context, req dto.ShareRequest) error
	MakePublic(ctx context.Context, fileId string) error
	MakePrivate(ctx context.Context, fileId string) error
}

type permissionService struct {
	*base
}

func NewPermissionService(client Requester, debug bool) IPermissionService {
	return &permissionService{base: newBase(client, debug)}
}

func permPath(fileId string) string {
	return "perm/file/" + url.PathEscape(fileId)
}

func (s *permissionService) Get(ctx context.Context, fileId string) (*dto.PermissionInfo, error) {
	return fetch[dto.PermissionInfo](ctx, s.base, "PermissionService.permissions", func(ctx context.Context) (*api.Response, error) {
		return s.client.Get(ctx, permPath(fileId))
	})
}

func (s *permissionService) Share(ctx context.Context, req dto.ShareRequest) error {
	const op = "PermissionService.shareFile"
	if err := s.check(op, req); err != nil {
		return err
	}
	_, err := exec(ctx, s.base, op, func(ctx context.Context) (*api.Response, error) {
		return s.client.Post(ctx, permPath(req.FileId), api.Form{"id": req.Targets})
	})
	return err
}

func (s *permissionService) StopSharing(ctx context.Context, req dto.ShareRequest) error {
	const op = "PermissionService.stopSharing"
	if err := s.check(op, req); err != nil {
		return err
	}
	_, err := exec(ctx, s.base, op, func(ctx context.Context) (*api.Response, error) {
		return s.client.Delete(ctx, permPath(req.FileId), api.Form{"id": req.Targets})
	})
	return err
}

func (s *permissionService) MakePublic(ctx context.Context, fileId string) error {
	_, err := exec(ctx, s.base, "PermissionService.makePublic", func(ctx context.Context) (*api.Response, error) {
		return s.client.Post(ctx, permPath(fileId)+"/public", nil)
	})
	return err
}

func (s *permissionService) MakePrivate(ctx context.Context, fileId string) error {
	_, err := exec(ctx, s.base, "PermissionService.makePrivate", func(ctx context.Context) (*api.Response, error) {
		return s.client.Delete(ctx, permPath(fileId)+"/public", nil)
	})
	return err
}
