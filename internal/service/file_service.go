package service

import (
	"context"
	"fmt"
	"net/url"

	"knaxim-client/internal/dto"
	"knaxim-client/pkg/api"
)

type IFileService interface {
	Info(ctx context.Context, id string) (*dto.FileInfo, error)
	Slice(ctx context.Context, id string, start, end int) (*dto.FileContent, error)
	Search(ctx context.Context, id string, start, end int, find string) (*dto.FileContent, error)
	Create(ctx context.Context, req dto.CreateFileRequest) (*dto.CreatedFile, error)
	CreateWebPage(ctx context.Context, req dto.CreateWebFileRequest) (*dto.CreatedFile, error)
	Delete(ctx context.Context, id string) error
	Rename(ctx context.Context, req dto.RenameFileRequest) error
	List(ctx context.Context, shared bool, group string) (*dto.FileList, error)
	DownloadURL(id string) string
	ViewURL(id string) string
}

type fileService struct {
	*base
}

func NewFileService(client Requester, debug bool) IFileService {
	return &fileService{base: newBase(client, debug)}
}

func filePath(id string, rest ...string) string {
	p := "file/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

func (s *fileService) Info(ctx context.Context, id string) (*dto.FileInfo, error) {
	return fetch[dto.FileInfo](ctx, s.base, "FileService.info", func(ctx context.Context) (*api.Response, error) {
		return s.client.Get(ctx, filePath(id))
	})
}

func (s *fileService) Slice(ctx context.Context, id string, start, end int) (*dto.FileContent, error) {
	return fetch[dto.FileContent](ctx, s.base, "FileService.slice", func(ctx context.Context) (*api.Response, error) {
		return s.client.Get(ctx, filePath(id, "slice", fmt.Sprint(start), fmt.Sprint(end)))
	})
}

func (s *fileService) Search(ctx context.Context, id string, start, end int, find string) (*dto.FileContent, error) {
	return fetch[dto.FileContent](ctx, s.base, "FileService.search", func(ctx context.Context) (*api.Response, error) {
		return s.client.Query(ctx, filePath(id, "search", fmt.Sprint(start), fmt.Sprint(end)), api.Form{"find": find})
	})
}

func (s *fileService) Create(ctx context.Context, req dto.CreateFileRequest) (*dto.CreatedFile, error) {
	const op = "FileService.create"
	if err := s.check(op, req); err != nil {
		return nil, err
	}
	return fetch[dto.CreatedFile](ctx, s.base, op, func(ctx context.Context) (*api.Response, error) {
		return s.client.Put(ctx, "file", api.Multipart{
			Fields:    api.Form{"group": optional(req.Group), "dir": optional(req.Dir)},
			FileField: "file",
			FileName:  req.Name,
			File:      req.Content,
		})
	})
}

func (s *fileService) CreateWebPage(ctx context.Context, req dto.CreateWebFileRequest) (*dto.CreatedFile, error) {
	const op = "FileService.webpage"
	if err := s.check(op, req); err != nil {
		return nil, err
	}
	return fetch[dto.CreatedFile](ctx, s.base, op, func(ctx context.Context) (*api.Response, error) {
		return s.client.Put(ctx, "file/webpage", api.Form{
			"url":   req.URL,
			"group": optional(req.Group),
			"dir":   optional(req.Dir),
		})
	})
}

func (s *fileService) Delete(ctx context.Context, id string) error {
	_, err := exec(ctx, s.base, "FileService.erase", func(ctx context.Context) (*api.Response, error) {
		return s.client.Delete(ctx, filePath(id), nil)
	})
	return err
}

func (s *fileService) Rename(ctx context.Context, req dto.RenameFileRequest) error {
	const op = "FileService.rename"
	if err := s.check(op, req); err != nil {
		return err
	}
	_, err := exec(ctx, s.base, op, func(ctx context.Context) (*api.Response, error) {
		return s.client.Post(ctx, "record/"+url.PathEscape(req.Id)+"/name", api.Form{"name": req.Name})
	})
	return err
}

func (s *fileService) List(ctx context.Context, shared bool, group string) (*dto.FileList, error) {
	path := "record"
	if shared {
		path = "record/view"
	}
	return fetch[dto.FileList](ctx, s.base, "FileService.list", func(ctx context.Context) (*api.Response, error) {
		return s.client.Query(ctx, path, api.Form{"group": optional(group)})
	})
}

func (s *fileService) DownloadURL(id string) string {
	return s.client.URL(filePath(id, "download"))
}

func (s *fileService) ViewURL(id string) string {
	return s.client.URL(filePath(id, "view"))
}

// optional maps "" to nil so the key is dropped from the form.
func optional(v string) any {
	if v == "" {
		return nil
	}
	return v
}
