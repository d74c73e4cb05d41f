package service

import (
	"context"
	"net/url"

	"knaxim-client/internal/dto"
	"knaxim-client/pkg/api"
)

type IAcronymService interface {
	Get(ctx context.Context, acronym string) ([]string, error)
}

type acronymService struct {
	*base
}

func NewAcronymService(client Requester, debug bool) IAcronymService {
	return &acronymService{base: newBase(client, debug)}
}

func (s *acronymService) Get(ctx context.Context, acronym string) ([]string, error) {
	out, err := fetch[dto.AcronymResponse](ctx, s.base, "AcronymService.get", func(ctx context.Context) (*api.Response, error) {
		return s.client.Get(ctx, "acronym/"+url.PathEscape(acronym))
	})
	if err != nil {
		return nil, err
	}
	return out.Matched, nil
}
