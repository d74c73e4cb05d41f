package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"knaxim-client/internal/dto"
	"knaxim-client/internal/service"
)

var errNotStubbed = errors.New("not stubbed")

// The fakes embed the service interface so unset methods panic, and expose
// one func field per method a test may stub.

type fakeUser struct {
	service.IUserService
	info     func(ctx context.Context, id string) (*dto.User, error)
	lookup   func(ctx context.Context, name string) (*dto.User, error)
	login    func(ctx context.Context, req dto.LoginRequest) (*dto.User, error)
	logout   func(ctx context.Context) error
	create   func(ctx context.Context, req dto.RegisterRequest) error
	complete func(ctx context.Context) (*dto.CompleteProfile, error)

	completeCalls atomic.Int32
}

func (f *fakeUser) Info(ctx context.Context, id string) (*dto.User, error) {
	if f.info == nil {
		return nil, errNotStubbed
	}
	return f.info(ctx, id)
}

func (f *fakeUser) Lookup(ctx context.Context, name string) (*dto.User, error) {
	if f.lookup == nil {
		return nil, errNotStubbed
	}
	return f.lookup(ctx, name)
}

func (f *fakeUser) Login(ctx context.Context, req dto.LoginRequest) (*dto.User, error) {
	if f.login == nil {
		return nil, errNotStubbed
	}
	return f.login(ctx, req)
}

func (f *fakeUser) Logout(ctx context.Context) error {
	if f.logout == nil {
		return nil
	}
	return f.logout(ctx)
}

func (f *fakeUser) Create(ctx context.Context, req dto.RegisterRequest) error {
	if f.create == nil {
		return errNotStubbed
	}
	return f.create(ctx, req)
}

func (f *fakeUser) Complete(ctx context.Context) (*dto.CompleteProfile, error) {
	f.completeCalls.Add(1)
	if f.complete == nil {
		return &dto.CompleteProfile{}, nil
	}
	return f.complete(ctx)
}

type fakeGroup struct {
	service.IGroupService
	info    func(ctx context.Context, id string) (*dto.GroupInfo, error)
	lookup  func(ctx context.Context, name string) (*dto.GroupInfo, error)
	options func(ctx context.Context, group string) (*dto.GroupOptions, error)
}

func (f *fakeGroup) Info(ctx context.Context, id string) (*dto.GroupInfo, error) {
	if f.info == nil {
		return nil, errNotStubbed
	}
	return f.info(ctx, id)
}

func (f *fakeGroup) Lookup(ctx context.Context, name string) (*dto.GroupInfo, error) {
	if f.lookup == nil {
		return nil, errNotStubbed
	}
	return f.lookup(ctx, name)
}

func (f *fakeGroup) Options(ctx context.Context, group string) (*dto.GroupOptions, error) {
	if f.options == nil {
		return &dto.GroupOptions{}, nil
	}
	return f.options(ctx, group)
}

type fakeFile struct {
	service.IFileService
	del    func(ctx context.Context, id string) error
	search func(ctx context.Context, id string, start, end int, find string) (*dto.FileContent, error)
	slice  func(ctx context.Context, id string, start, end int) (*dto.FileContent, error)
	rename func(ctx context.Context, req dto.RenameFileRequest) error

	mu      sync.Mutex
	deleted []string
	slices  atomic.Int32
}

func (f *fakeFile) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	f.mu.Unlock()
	if f.del == nil {
		return nil
	}
	return f.del(ctx, id)
}

func (f *fakeFile) Search(ctx context.Context, id string, start, end int, find string) (*dto.FileContent, error) {
	if f.search == nil {
		return &dto.FileContent{}, nil
	}
	return f.search(ctx, id, start, end, find)
}

func (f *fakeFile) Slice(ctx context.Context, id string, start, end int) (*dto.FileContent, error) {
	f.slices.Add(1)
	if f.slice == nil {
		return nil, errNotStubbed
	}
	return f.slice(ctx, id, start, end)
}

func (f *fakeFile) Rename(ctx context.Context, req dto.RenameFileRequest) error {
	if f.rename == nil {
		return nil
	}
	return f.rename(ctx, req)
}

type fakeFolder struct {
	service.IFolderService
	list func(ctx context.Context, group string) ([]string, error)
	info func(ctx context.Context, name, group string) (*dto.FolderInfo, error)
	add  func(ctx context.Context, req dto.FolderContentRequest) error
	del  func(ctx context.Context, name, group string) error
}

func (f *fakeFolder) List(ctx context.Context, group string) ([]string, error) {
	if f.list == nil {
		return nil, nil
	}
	return f.list(ctx, group)
}

func (f *fakeFolder) Info(ctx context.Context, name, group string) (*dto.FolderInfo, error) {
	if f.info == nil {
		return &dto.FolderInfo{Name: name}, nil
	}
	return f.info(ctx, name, group)
}

func (f *fakeFolder) Add(ctx context.Context, req dto.FolderContentRequest) error {
	if f.add == nil {
		return nil
	}
	return f.add(ctx, req)
}

func (f *fakeFolder) Delete(ctx context.Context, name, group string) error {
	if f.del == nil {
		return nil
	}
	return f.del(ctx, name, group)
}

type fakeSearch struct {
	service.ISearchService
	fileTags func(ctx context.Context, req dto.TagSearchRequest) (*dto.SearchResponse, error)
}

func (f *fakeSearch) FileTags(ctx context.Context, req dto.TagSearchRequest) (*dto.SearchResponse, error) {
	if f.fileTags == nil {
		return &dto.SearchResponse{}, nil
	}
	return f.fileTags(ctx, req)
}

type fakeNLP struct {
	service.INLPService
	info  func(ctx context.Context, req dto.NLPRequest) (*dto.NLPResponse, error)
	calls atomic.Int32
}

func (f *fakeNLP) Info(ctx context.Context, req dto.NLPRequest) (*dto.NLPResponse, error) {
	f.calls.Add(1)
	if f.info == nil {
		return nil, errNotStubbed
	}
	return f.info(ctx, req)
}

type fakeAcronym struct {
	service.IAcronymService
	get func(ctx context.Context, acronym string) ([]string, error)
}

func (f *fakeAcronym) Get(ctx context.Context, acronym string) ([]string, error) {
	if f.get == nil {
		return nil, errNotStubbed
	}
	return f.get(ctx, acronym)
}

type fakes struct {
	user    *fakeUser
	group   *fakeGroup
	file    *fakeFile
	folder  *fakeFolder
	search  *fakeSearch
	nlp     *fakeNLP
	acronym *fakeAcronym
}

func newFakes() *fakes {
	return &fakes{
		user:    &fakeUser{},
		group:   &fakeGroup{},
		file:    &fakeFile{},
		folder:  &fakeFolder{},
		search:  &fakeSearch{},
		nlp:     &fakeNLP{},
		acronym: &fakeAcronym{},
	}
}

func (f *fakes) services() *service.Services {
	return &service.Services{
		User:    f.user,
		Group:   f.group,
		File:    f.file,
		Folder:  f.folder,
		Search:  f.search,
		NLP:     f.nlp,
		Acronym: f.acronym,
	}
}

func newTestStore(t *testing.T, f *fakes, opts Options) *Store {
	t.Helper()
	s := New(Deps{Services: f.services(), Options: opts})
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// drain empties the error queue and returns what was in it.
func drain(s *Store) []error {
	var out []error
	for s.ErrorsAvailable() {
		out = append(out, s.GetError())
	}
	return out
}
