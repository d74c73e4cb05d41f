package store

import (
	"context"
	"sync"

	"knaxim-client/internal/dto"

	"golang.org/x/sync/errgroup"
)

// folderModule maps folder name to file ids. Folders without a group belong
// to the user scope.
type folderModule struct {
	mu      sync.RWMutex
	loading int
	user    map[string][]string
	group   map[string]map[string][]string
	active  []string
}

func newFolderModule() *folderModule {
	return &folderModule{
		user:  map[string][]string{},
		group: map[string]map[string][]string{},
	}
}

func (m *folderModule) name() string { return folderModuleName }

// scope returns the partition for group, creating it when create is set.
func (m *folderModule) scope(group string, create bool) map[string][]string {
	if group == "" {
		return m.user
	}
	p, ok := m.group[group]
	if !ok && create {
		p = map[string][]string{}
		m.group[group] = p
	}
	return p
}

func (m *folderModule) mutate(mu Mutation) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch mu.Kind {
	case FolderLoading:
		delta, ok := mu.Payload.(int)
		if !ok {
			return false
		}
		m.loading += delta
	case SetFolder:
		p, ok := mu.Payload.(FolderPayload)
		if !ok {
			return false
		}
		files := append([]string{}, p.Files...)
		m.scope(p.Group, true)[p.Name] = files
	case FolderAdd:
		p, ok := mu.Payload.(FolderFile)
		if !ok {
			return false
		}
		scope := m.scope(p.Group, true)
		scope[p.Name] = append(scope[p.Name], p.FileId)
	case FolderRemove:
		p, ok := mu.Payload.(FolderFile)
		if !ok {
			return false
		}
		scope := m.scope(p.Group, false)
		files, found := scope[p.Name]
		if !found {
			return true
		}
		kept := make([]string, 0, len(files))
		for _, f := range files {
			if f != p.FileId {
				kept = append(kept, f)
			}
		}
		scope[p.Name] = kept
	case DropFolder:
		p, ok := mu.Payload.(FolderPayload)
		if !ok {
			return false
		}
		if scope := m.scope(p.Group, false); scope != nil {
			delete(scope, p.Name)
		}
	case ActivateFolder:
		name, ok := mu.Payload.(string)
		if !ok {
			return false
		}
		m.active = append([]string{name}, without(m.active, name)...)
	case DeactivateFolder:
		name, ok := mu.Payload.(string)
		if !ok {
			return false
		}
		m.active = without(m.active, name)
	case ActivateGroup:
		m.active = nil
	default:
		return false
	}
	return true
}

func (m *folderModule) reset() {
	m.mu.Lock()
	m.user = map[string][]string{}
	m.group = map[string]map[string][]string{}
	m.active = nil
	m.mu.Unlock()
}

// without returns list minus every occurrence of v, as a new slice.
func without(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

func copyFolders(src map[string][]string) map[string][]string {
	out := make(map[string][]string, len(src))
	for k, v := range src {
		out[k] = append([]string{}, v...)
	}
	return out
}

func (s *Store) FolderLoading() bool {
	s.folders.mu.RLock()
	defer s.folders.mu.RUnlock()
	return s.folders.loading > 0
}

// Folders returns the folders of the current scope.
func (s *Store) Folders() map[string][]string {
	return s.FoldersFor(s.activeGroupID())
}

// FoldersFor returns the folders of group, or of the user when group is empty.
func (s *Store) FoldersFor(group string) map[string][]string {
	s.folders.mu.RLock()
	defer s.folders.mu.RUnlock()
	return copyFolders(s.folders.scope(group, false))
}

// GetFolder returns the file ids of a folder in the current scope.
func (s *Store) GetFolder(name string) []string {
	return s.folderFiles(s.activeGroupID(), name)
}

func (s *Store) folderFiles(group, name string) []string {
	s.folders.mu.RLock()
	defer s.folders.mu.RUnlock()
	return append([]string{}, s.folders.scope(group, false)[name]...)
}

func (s *Store) ActiveFolders() []string {
	s.folders.mu.RLock()
	defer s.folders.mu.RUnlock()
	return append([]string{}, s.folders.active...)
}

// LoadFolders lists the folder names of a scope, then loads each in parallel.
func (s *Store) LoadFolders(ctx context.Context, group string, overwrite bool) {
	defer s.track(FolderLoading)()

	names, err := s.svc.Folder.List(ctx, group)
	if err != nil {
		s.recordError(folderModuleName, "LOAD_FOLDERS", err)
		return
	}

	var g errgroup.Group
	for _, name := range names {
		g.Go(func() error {
			s.LoadFolder(ctx, name, group, overwrite)
			return nil
		})
	}
	_ = g.Wait()
}

// LoadFolder is a no-op when the folder is already cached for its scope,
// unless overwrite is set.
func (s *Store) LoadFolder(ctx context.Context, name, group string, overwrite bool) {
	if !overwrite && len(s.folderFiles(group, name)) > 0 {
		return
	}
	defer s.track(FolderLoading)()

	info, err := s.svc.Folder.Info(ctx, name, group)
	if err != nil {
		s.recordError(folderModuleName, "LOAD_FOLDER", err)
		return
	}
	if info.Name != "" {
		name = info.Name
	}
	s.commit(SetFolder, FolderPayload{Group: group, Name: name, Files: info.Files})
}

type FolderFilesRequest struct {
	Name    string
	Group   string
	FileIds []string
	// PreventReload skips the trailing server-state reload.
	PreventReload bool
}

func (s *Store) PutFileFolder(ctx context.Context, req FolderFilesRequest) error {
	return s.adjustFolder(ctx, "PUT_FILE_FOLDER", req, true)
}

func (s *Store) RemoveFileFolder(ctx context.Context, req FolderFilesRequest) error {
	return s.adjustFolder(ctx, "REMOVE_FILE_FOLDER", req, false)
}

func (s *Store) adjustFolder(ctx context.Context, action string, req FolderFilesRequest, add bool) error {
	defer s.track(FolderLoading)()

	body := dto.FolderContentRequest{Name: req.Name, Group: req.Group, FileIds: req.FileIds}
	var err error
	if add {
		err = s.svc.Folder.Add(ctx, body)
	} else {
		err = s.svc.Folder.Remove(ctx, body)
	}

	if err != nil {
		s.recordError(folderModuleName, action, err)
	} else {
		kind := FolderRemove
		if add {
			kind = FolderAdd
		}
		for _, fid := range req.FileIds {
			s.commit(kind, FolderFile{Group: req.Group, Name: req.Name, FileId: fid})
		}
		s.LoadFolder(ctx, req.Name, req.Group, true)
	}

	if !req.PreventReload {
		s.LoadServer(ctx)
	}
	return err
}

func (s *Store) CreateFolder(ctx context.Context, req dto.CreateFolderRequest) error {
	defer s.track(FolderLoading)()

	if err := s.svc.Folder.Create(ctx, req); err != nil {
		s.recordError(folderModuleName, "CREATE_FOLDER", err)
		return err
	}
	s.LoadFolder(ctx, req.Name, req.Group, true)
	s.LoadServer(ctx)
	return nil
}

func (s *Store) DeleteFolder(ctx context.Context, name, group string) error {
	defer s.track(FolderLoading)()

	if err := s.svc.Folder.Delete(ctx, name, group); err != nil {
		s.recordError(folderModuleName, "DELETE_FOLDER", err)
		return err
	}
	s.commit(DropFolder, FolderPayload{Group: group, Name: name})
	s.commit(DeactivateFolder, name)
	s.LoadServer(ctx)
	return nil
}

// HandleServerState loads every folder the profile references, for the user
// and each group, in parallel.
func (s *Store) HandleServerState(ctx context.Context, profile *dto.CompleteProfile) {
	defer s.track(FolderLoading)()

	var g errgroup.Group
	for _, name := range profile.User.Folders {
		g.Go(func() error {
			s.LoadFolder(ctx, name, "", false)
			return nil
		})
	}
	for gid, gp := range profile.Groups {
		for _, name := range gp.Folders {
			g.Go(func() error {
				s.LoadFolder(ctx, name, gid, false)
				return nil
			})
		}
	}
	_ = g.Wait()
}
