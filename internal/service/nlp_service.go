package service

import (
	"context"
	"fmt"
	"net/url"

	"knaxim-client/internal/dto"
	"knaxim-client/pkg/api"
)

type INLPService interface {
	Info(ctx context.Context, req dto.NLPRequest) (*dto.NLPResponse, error)
}

type nlpService struct {
	*base
}

func NewNLPService(client Requester, debug bool) INLPService {
	return &nlpService{base: newBase(client, debug)}
}

func (s *nlpService) Info(ctx context.Context, req dto.NLPRequest) (*dto.NLPResponse, error) {
	const op = "NLPService.info"
	if err := s.check(op, req); err != nil {
		return nil, err
	}
	return fetch[dto.NLPResponse](ctx, s.base, op, func(ctx context.Context) (*api.Response, error) {
		return s.client.Get(ctx, fmt.Sprintf("nlp/file/%s/%s/%d/%d", url.PathEscape(req.Fid), req.Category, req.Start, req.End))
	})
}
