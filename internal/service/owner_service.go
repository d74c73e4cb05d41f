package service

import (
	"context"
	"net/url"

	"knaxim-client/internal/dto"
	"knaxim-client/pkg/api"
)

type IOwnerService interface {
	ById(ctx context.Context, id string) (*dto.OwnerInfo, error)
	ByName(ctx context.Context, name string) (*dto.OwnerInfo, error)
}

type ownerService struct {
	*base
}

func NewOwnerService(client Requester, debug bool) IOwnerService {
	return &ownerService{base: newBase(client, debug)}
}

func (s *ownerService) ById(ctx context.Context, id string) (*dto.OwnerInfo, error) {
	return fetch[dto.OwnerInfo](ctx, s.base, "OwnerService.id", func(ctx context.Context) (*api.Response, error) {
		return s.client.Get(ctx, "owner/id/"+url.PathEscape(id))
	})
}

func (s *ownerService) ByName(ctx context.Context, name string) (*dto.OwnerInfo, error) {
	return fetch[dto.OwnerInfo](ctx, s.base, "OwnerService.name", func(ctx context.Context) (*api.Response, error) {
		return s.client.Get(ctx, "owner/name/"+url.PathEscape(name))
	})
}
