package service

import (
	"context"
	"net/url"

	"knaxim-client/internal/dto"
	"knaxim-client/pkg/api"
)

type IGroupService interface {
	Create(ctx context.Context, req dto.CreateGroupRequest) error
	// Options lists the groups the session user owns or belongs to, or
	// those of group when it is set.
	Options(ctx context.Context, group string) (*dto.GroupOptions, error)
	Info(ctx context.Context, id string) (*dto.GroupInfo, error)
	AddMember(ctx context.Context, req dto.MemberRequest) error
	RemoveMember(ctx context.Context, req dto.MemberRequest) error
	Lookup(ctx context.Context, name string) (*dto.GroupInfo, error)
}

type groupService struct {
	*base
}

func NewGroupService(client Requester, debug bool) IGroupService {
	return &groupService{base: newBase(client, debug)}
}

func (s *groupService) Create(ctx context.Context, req dto.CreateGroupRequest) error {
	const op = "GroupService.create"
	if err := s.check(op, req); err != nil {
		return err
	}
	_, err := exec(ctx, s.base, op, func(ctx context.Context) (*api.Response, error) {
		return s.client.Put(ctx, "group", api.Form{
			"newname": req.Name,
			"group":   optional(req.Group),
		})
	})
	return err
}

func (s *groupService) Options(ctx context.Context, group string) (*dto.GroupOptions, error) {
	path := "group/options"
	if group != "" {
		path += "/" + url.PathEscape(group)
	}
	return fetch[dto.GroupOptions](ctx, s.base, "GroupService.associated", func(ctx context.Context) (*api.Response, error) {
		return s.client.Get(ctx, path)
	})
}

func (s *groupService) Info(ctx context.Context, id string) (*dto.GroupInfo, error) {
	return fetch[dto.GroupInfo](ctx, s.base, "GroupService.info", func(ctx context.Context) (*api.Response, error) {
		return s.client.Get(ctx, "group/"+url.PathEscape(id))
	})
}

func (s *groupService) AddMember(ctx context.Context, req dto.MemberRequest) error {
	const op = "GroupService.add"
	if err := s.check(op, req); err != nil {
		return err
	}
	_, err := exec(ctx, s.base, op, func(ctx context.Context) (*api.Response, error) {
		return s.client.Post(ctx, "group/"+url.PathEscape(req.Group)+"/member", api.Form{"id": req.Members})
	})
	return err
}

func (s *groupService) RemoveMember(ctx context.Context, req dto.MemberRequest) error {
	const op = "GroupService.remove"
	if err := s.check(op, req); err != nil {
		return err
	}
	_, err := exec(ctx, s.base, op, func(ctx context.Context) (*api.Response, error) {
		return s.client.Delete(ctx, "group/"+url.PathEscape(req.Group)+"/member", api.Form{"id": req.Members})
	})
	return err
}

func (s *groupService) Lookup(ctx context.Context, name string) (*dto.GroupInfo, error) {
	return fetch[dto.GroupInfo](ctx, s.base, "GroupService.lookup", func(ctx context.Context) (*api.Response, error) {
		return s.client.Get(ctx, "group/name/"+url.PathEscape(name))
	})
}
