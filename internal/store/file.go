package store

import (
	"context"
	"errors"
	"sync"

	"knaxim-client/internal/dto"

	"golang.org/x/sync/errgroup"
)

type ownership struct {
	owned  []string
	shared []string
}

type fileModule struct {
	mu      sync.RWMutex
	loading int
	fileSet map[string]dto.FileRecord
	user    ownership
	groups  map[string]ownership
	public  []string
}

func newFileModule() *fileModule {
	m := &fileModule{}
	m.clear()
	return m
}

func (m *fileModule) clear() {
	m.fileSet = map[string]dto.FileRecord{}
	m.user = ownership{}
	m.groups = map[string]ownership{}
	m.public = nil
}

func (m *fileModule) name() string { return fileModuleName }

func (m *fileModule) mutate(mu Mutation) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch mu.Kind {
	case FileLoading:
		delta, ok := mu.Payload.(int)
		if !ok {
			return false
		}
		m.loading += delta
	case SetFile:
		file, ok := mu.Payload.(dto.FileRecord)
		if !ok || file.Id == "" {
			return false
		}
		m.fileSet[file.Id] = mergeFile(m.fileSet[file.Id], file)
	case ProcessServerState:
		profile, ok := mu.Payload.(*dto.CompleteProfile)
		if !ok || profile == nil {
			return false
		}
		m.fileSet = make(map[string]dto.FileRecord, len(profile.Files))
		for id, f := range profile.Files {
			if f.Id == "" {
				f.Id = id
			}
			m.fileSet[id] = f
		}
		m.public = append([]string(nil), profile.Public...)
		m.user = ownership{
			owned:  append([]string{}, profile.User.Files.Own...),
			shared: append([]string{}, profile.User.Files.View...),
		}
		m.groups = make(map[string]ownership, len(profile.Groups))
		for id, g := range profile.Groups {
			m.groups[id] = ownership{
				owned:  append([]string{}, g.Files.Own...),
				shared: append([]string{}, g.Files.View...),
			}
		}
	default:
		return false
	}
	return true
}

func (m *fileModule) reset() {
	m.mu.Lock()
	m.clear()
	m.mu.Unlock()
}

// mergeFile lays the non-zero fields of next over prev.
func mergeFile(prev, next dto.FileRecord) dto.FileRecord {
	out := prev
	out.Id = next.Id
	if next.Name != "" {
		out.Name = next.Name
	}
	if next.Types != "" {
		out.Types = next.Types
	}
	if next.Owner != "" {
		out.Owner = next.Owner
	}
	if next.Own != "" {
		out.Own = next.Own
	}
	if next.IsOwned {
		out.IsOwned = true
	}
	if !next.Date.Upload.IsZero() {
		out.Date = next.Date
	}
	if next.Size != 0 {
		out.Size = next.Size
	}
	if next.Count != 0 {
		out.Count = next.Count
	}
	if next.URL != "" {
		out.URL = next.URL
	}
	if next.Viewers != nil {
		out.Viewers = append([]string(nil), next.Viewers...)
	}
	return out
}

func (s *Store) FileLoading() bool {
	s.files.mu.RLock()
	defer s.files.mu.RUnlock()
	return s.files.loading > 0
}

func (s *Store) PopulateFile(id string) (dto.FileRecord, bool) {
	s.files.mu.RLock()
	defer s.files.mu.RUnlock()
	f, ok := s.files.fileSet[id]
	return f, ok
}

// PopulateFiles resolves ids in order, skipping ids that are not cached.
func (s *Store) PopulateFiles(ids ...string) []dto.FileRecord {
	s.files.mu.RLock()
	defer s.files.mu.RUnlock()
	out := make([]dto.FileRecord, 0, len(ids))
	for _, id := range ids {
		if f, ok := s.files.fileSet[id]; ok {
			out = append(out, f)
		}
	}
	return out
}

// OwnedFiles lists the file ids owned in the current scope.
func (s *Store) OwnedFiles() []string {
	return s.scopeFiles(func(o ownership) []string { return o.owned })
}

// SharedFiles lists the file ids shared with the current scope.
func (s *Store) SharedFiles() []string {
	return s.scopeFiles(func(o ownership) []string { return o.shared })
}

func (s *Store) scopeFiles(pick func(ownership) []string) []string {
	group := s.activeGroupID()

	s.files.mu.RLock()
	defer s.files.mu.RUnlock()
	o := s.files.user
	if group != "" {
		o = s.files.groups[group]
	}
	return append([]string{}, pick(o)...)
}

func (s *Store) PublicFiles() []string {
	s.files.mu.RLock()
	defer s.files.mu.RUnlock()
	return append([]string{}, s.files.public...)
}

// GetFile returns the cached record, fetching it first when missing or when
// overwrite is set. A failed fetch is recorded.
func (s *Store) GetFile(ctx context.Context, id string, overwrite bool) (dto.FileRecord, bool) {
	if !overwrite {
		if f, ok := s.PopulateFile(id); ok {
			return f, true
		}
	}

	done := s.track(FileLoading)
	info, err := s.svc.File.Info(ctx, id)
	done()

	if err != nil {
		s.recordError(fileModuleName, "GET_FILE", err)
	} else {
		record := info.File
		if record.Id == "" {
			record.Id = id
		}
		if record.Size == 0 {
			record.Size = info.Size
		}
		if record.Count == 0 {
			record.Count = info.Count
		}
		s.commit(SetFile, record)
	}
	return s.PopulateFile(id)
}

// CreateFile uploads a file, then reloads server state whatever the outcome.
func (s *Store) CreateFile(ctx context.Context, req dto.CreateFileRequest) (*dto.CreatedFile, error) {
	defer s.track(FileLoading)()

	created, err := s.svc.File.Create(ctx, req)
	if err != nil {
		s.recordError(fileModuleName, "CREATE_FILE", err)
	}
	s.LoadServer(ctx)
	return created, err
}

func (s *Store) CreateWebFile(ctx context.Context, req dto.CreateWebFileRequest) (*dto.CreatedFile, error) {
	defer s.track(FileLoading)()

	created, err := s.svc.File.CreateWebPage(ctx, req)
	if err != nil {
		s.recordError(fileModuleName, "CREATE_WEB_FILE", err)
	}
	s.LoadServer(ctx)
	return created, err
}

// DeleteFiles deletes every id concurrently. One failure does not stop the
// others; each is recorded, and server state is reloaded once at the end.
func (s *Store) DeleteFiles(ctx context.Context, ids []string) error {
	defer s.track(FileLoading)()

	errs := make([]error, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			if err := s.svc.File.Delete(ctx, id); err != nil {
				s.recordError(fileModuleName, "DELETE_FILES{"+id+"}", err)
				errs[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	s.LoadServer(ctx)
	return errors.Join(errs...)
}

func (s *Store) RenameFile(ctx context.Context, id, name string) error {
	defer s.track(FileLoading)()

	if err := s.svc.File.Rename(ctx, dto.RenameFileRequest{Id: id, Name: name}); err != nil {
		s.recordError(fileModuleName, "RENAME_FILE", err)
		return err
	}
	s.commit(SetFile, dto.FileRecord{Id: id, Name: name})
	return nil
}

// ListFiles merges the owned (or shared) records of the current scope into
// the file cache.
func (s *Store) ListFiles(ctx context.Context, shared bool) {
	defer s.track(FileLoading)()

	list, err := s.svc.File.List(ctx, shared, s.activeGroupID())
	if err != nil {
		s.recordError(fileModuleName, "FILES_LIST", err)
		return
	}
	for _, info := range list.Files {
		record := info.File
		record.Count = info.Count
		if info.Size != 0 {
			record.Size = info.Size
		}
		s.commit(SetFile, record)
	}
}

func (s *Store) FilePermissions(ctx context.Context, id string) (*dto.PermissionInfo, error) {
	defer s.track(FileLoading)()

	perm, err := s.svc.Permission.Get(ctx, id)
	if err != nil {
		s.recordError(fileModuleName, "FILE_PERMISSIONS", err)
		return nil, err
	}
	return perm, nil
}

func (s *Store) ShareFile(ctx context.Context, id string, targets ...string) error {
	return s.changeSharing(ctx, "SHARE_FILE", func() error {
		return s.svc.Permission.Share(ctx, dto.ShareRequest{FileId: id, Targets: targets})
	})
}

func (s *Store) StopSharingFile(ctx context.Context, id string, targets ...string) error {
	return s.changeSharing(ctx, "STOP_SHARING_FILE", func() error {
		return s.svc.Permission.StopSharing(ctx, dto.ShareRequest{FileId: id, Targets: targets})
	})
}

func (s *Store) SetFilePublic(ctx context.Context, id string, public bool) error {
	return s.changeSharing(ctx, "SET_FILE_PUBLIC", func() error {
		if public {
			return s.svc.Permission.MakePublic(ctx, id)
		}
		return s.svc.Permission.MakePrivate(ctx, id)
	})
}

func (s *Store) changeSharing(ctx context.Context, action string, call func() error) error {
	defer s.track(FileLoading)()

	if err := call(); err != nil {
		s.recordError(fileModuleName, action, err)
		return err
	}
	s.LoadServer(ctx)
	return nil
}

func (s *Store) DownloadURL(id string) string {
	return s.svc.File.DownloadURL(id)
}

func (s *Store) ViewURL(id string) string {
	return s.svc.File.ViewURL(id)
}
