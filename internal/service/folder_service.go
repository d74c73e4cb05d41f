package service

import (
	"context"
	"net/url"

	"knaxim-client/internal/dto"
	"knaxim-client/pkg/api"
)

type IFolderService interface {
	Create(ctx context.Context, req dto.CreateFolderRequest) error
	List(ctx context.Context, group string) ([]string, error)
	Info(ctx context.Context, name, group string) (*dto.FolderInfo, error)
	Add(ctx context.Context, req dto.FolderContentRequest) error
	Remove(ctx context.Context, req dto.FolderContentRequest) error
	Delete(ctx context.Context, name, group string) error
}

type folderService struct {
	*base
}

func NewFolderService(client Requester, debug bool) IFolderService {
	return &folderService{base: newBase(client, debug)}
}

func dirPath(name string, rest ...string) string {
	p := "dir/" + url.PathEscape(name)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

func (s *folderService) Create(ctx context.Context, req dto.CreateFolderRequest) error {
	const op = "FolderService.create"
	if err := s.check(op, req); err != nil {
		return err
	}
	_, err := exec(ctx, s.base, op, func(ctx context.Context) (*api.Response, error) {
		return s.client.Put(ctx, "dir", api.Form{
			"newname": req.Name,
			"content": req.Content,
			"group":   optional(req.Group),
		})
	})
	return err
}

func (s *folderService) List(ctx context.Context, group string) ([]string, error) {
	out, err := fetch[dto.FolderList](ctx, s.base, "FolderService.list", func(ctx context.Context) (*api.Response, error) {
		return s.client.Query(ctx, "dir", api.Form{"group": optional(group)})
	})
	if err != nil {
		return nil, err
	}
	return out.Folders, nil
}

func (s *folderService) Info(ctx context.Context, name, group string) (*dto.FolderInfo, error) {
	return fetch[dto.FolderInfo](ctx, s.base, "FolderService.info", func(ctx context.Context) (*api.Response, error) {
		return s.client.Query(ctx, dirPath(name), api.Form{"group": optional(group)})
	})
}

func (s *folderService) Add(ctx context.Context, req dto.FolderContentRequest) error {
	const op = "FolderService.add"
	if err := s.check(op, req); err != nil {
		return err
	}
	_, err := exec(ctx, s.base, op, func(ctx context.Context) (*api.Response, error) {
		return s.client.Post(ctx, dirPath(req.Name, "content"), api.Form{
			"id":    req.FileIds,
			"group": optional(req.Group),
		})
	})
	return err
}

func (s *folderService) Remove(ctx context.Context, req dto.FolderContentRequest) error {
	const op = "FolderService.remove"
	if err := s.check(op, req); err != nil {
		return err
	}
	_, err := exec(ctx, s.base, op, func(ctx context.Context) (*api.Response, error) {
		return s.client.Delete(ctx, dirPath(req.Name, "content"), api.Form{
			"id":    req.FileIds,
			"group": optional(req.Group),
		})
	})
	return err
}

func (s *folderService) Delete(ctx context.Context, name, group string) error {
	_, err := exec(ctx, s.base, "FolderService.delete", func(ctx context.Context) (*api.Response, error) {
		return s.client.Delete(ctx, dirPath(name), api.Form{"group": optional(group)})
	})
	return err
}
