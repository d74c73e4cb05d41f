package service

import (
	"context"
	"net/url"

	"knaxim-client/internal/dto"
	"knaxim-client/pkg/api"
)

type ISearchService interface {
	// FileTags posts a tag query. The body goes out as JSON.
	FileTags(ctx context.Context, req dto.TagSearchRequest) (*dto.SearchResponse, error)
	UserFiles(ctx context.Context, find string) (*dto.SearchResponse, error)
	GroupFiles(ctx context.Context, group, find string) (*dto.SearchResponse, error)
	FolderFiles(ctx context.Context, req dto.SearchScope) (*dto.SearchResponse, error)
	PublicFiles(ctx context.Context, find string) (*dto.SearchResponse, error)
}

type searchService struct {
	*base
}

func NewSearchService(client Requester, debug bool) ISearchService {
	return &searchService{base: newBase(client, debug)}
}

func (s *searchService) FileTags(ctx context.Context, req dto.TagSearchRequest) (*dto.SearchResponse, error) {
	const op = "SearchService.FileTags"
	if err := s.check(op, req); err != nil {
		return nil, err
	}
	return fetch[dto.SearchResponse](ctx, s.base, op, func(ctx context.Context) (*api.Response, error) {
		return s.client.Post(ctx, "search/tags", api.JSON{Value: req})
	})
}

func (s *searchService) UserFiles(ctx context.Context, find string) (*dto.SearchResponse, error) {
	return fetch[dto.SearchResponse](ctx, s.base, "SearchService.userFiles", func(ctx context.Context) (*api.Response, error) {
		return s.client.Query(ctx, "user/search", api.Form{"find": find})
	})
}

func (s *searchService) GroupFiles(ctx context.Context, group, find string) (*dto.SearchResponse, error) {
	return fetch[dto.SearchResponse](ctx, s.base, "SearchService.groupFiles", func(ctx context.Context) (*api.Response, error) {
		return s.client.Query(ctx, "group/"+url.PathEscape(group)+"/search", api.Form{"find": find})
	})
}

func (s *searchService) FolderFiles(ctx context.Context, req dto.SearchScope) (*dto.SearchResponse, error) {
	const op = "SearchService.folderFiles"
	if err := s.check(op, req); err != nil {
		return nil, err
	}
	return fetch[dto.SearchResponse](ctx, s.base, op, func(ctx context.Context) (*api.Response, error) {
		return s.client.Query(ctx, dirPath(req.Folder, "search"), api.Form{
			"find":  req.Find,
			"group": optional(req.Group),
		})
	})
}

func (s *searchService) PublicFiles(ctx context.Context, find string) (*dto.SearchResponse, error) {
	return fetch[dto.SearchResponse](ctx, s.base, "SearchService.publicFiles", func(ctx context.Context) (*api.Response, error) {
		return s.client.Query(ctx, "public/search", api.Form{"find": find})
	})
}

func NewOwnerContext(ownerId, only string) dto.SearchContext {
	return dto.SearchContext{Type: "owner", Id: ownerId, Only: only}
}

func NewFileContext(fileId string) dto.SearchContext {
	return dto.SearchContext{Type: "file", Id: fileId}
}

// NewMatchCondition returns the bare word when tagType is empty, which the
// backend treats as a plain text match.
func NewMatchCondition(find, tagType string, regex bool, owner string) any {
	if tagType == "" {
		return find
	}
	return []dto.MatchCondition{{
		TagType: tagType,
		Word:    find,
		Regex:   regex,
		Owner:   owner,
	}}
}
