package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"knaxim-client/internal/dto"

	"github.com/patrickmn/go-cache"
)

const (
	OwnerLoadingName = "loading..."
	OwnerUnknownName = "Unknown"
)

var ErrEmptyOwnerID = errors.New("owner id is empty")

type OwnerKind int

const (
	// OwnerUntagged is an id of unknown kind; both lookups are raced.
	OwnerUntagged OwnerKind = iota
	OwnerUser
	OwnerGroup
)

func (k OwnerKind) String() string {
	switch k {
	case OwnerUser:
		return dto.OwnerTypeUser
	case OwnerGroup:
		return dto.OwnerTypeGroup
	default:
		return "untagged"
	}
}

type OwnerRef struct {
	Kind OwnerKind
	ID   string
}

func UserOwner(id string) OwnerRef { return OwnerRef{Kind: OwnerUser, ID: id} }
func GroupOwner(id string) OwnerRef { return OwnerRef{Kind: OwnerGroup, ID: id} }
func UntaggedOwner(id string) OwnerRef { return OwnerRef{Kind: OwnerUntagged, ID: id} }

// ownerModule holds display names in a go-cache keyed by owner id. Entries
// never expire; the cache is flushed on reset.
type ownerModule struct {
	mu      sync.RWMutex
	loading int
	names   *cache.Cache
}

func newOwnerModule() *ownerModule {
	return &ownerModule{names: cache.New(cache.NoExpiration, 0)}
}

func (m *ownerModule) name() string { return ownerModuleName }

func (m *ownerModule) setName(id, name string) {
	if id == "" {
		return
	}
	m.names.Set(id, name, cache.NoExpiration)
}

func (m *ownerModule) mutate(mu Mutation) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch mu.Kind {
	case OwnerLoading:
		delta, ok := mu.Payload.(int)
		if !ok {
			return false
		}
		m.loading += delta
	case SetOwnerName:
		p, ok := mu.Payload.(OwnerName)
		if !ok || p.Id == "" {
			return false
		}
		m.setName(p.Id, p.Name)
	case ProcessServerState:
		profile, ok := mu.Payload.(*dto.CompleteProfile)
		if !ok || profile == nil {
			return false
		}
		m.setName(profile.User.Id, profile.User.Name)
		for id, g := range profile.Groups {
			m.setName(id, g.Name)
		}
	default:
		return false
	}
	return true
}

func (m *ownerModule) reset() {
	m.mu.Lock()
	m.names.Flush()
	m.mu.Unlock()
}

func (m *ownerModule) lookup(id string) (string, bool) {
	v, ok := m.names.Get(id)
	if !ok {
		return "", false
	}
	name, ok := v.(string)
	return name, ok
}

func (s *Store) OwnerLoading() bool {
	s.owners.mu.RLock()
	defer s.owners.mu.RUnlock()
	return s.owners.loading > 0
}

// OwnerName returns the cached display name for id. A pending lookup reads
// as "loading...".
func (s *Store) OwnerName(id string) (string, bool) {
	return s.owners.lookup(id)
}

func (s *Store) OwnerNames() map[string]string {
	items := s.owners.names.Items()
	out := make(map[string]string, len(items))
	for id, item := range items {
		if name, ok := item.Object.(string); ok {
			out[id] = name
		}
	}
	return out
}

// LoadOwner resolves an owner id to a display name. While the lookup is in
// flight the cache holds the "loading..." placeholder. Tagged refs hit the
// matching endpoint; untagged ids race the user and group lookups and take
// the first success. A failed lookup caches and returns "Unknown".
func (s *Store) LoadOwner(ctx context.Context, ref OwnerRef, overwrite bool) (string, error) {
	if ref.ID == "" {
		s.recordError(ownerModuleName, "LOAD_OWNER", ErrEmptyOwnerID)
		return "", ErrEmptyOwnerID
	}
	if !overwrite {
		if name, ok := s.owners.lookup(ref.ID); ok {
			return name, nil
		}
	}

	defer s.track(OwnerLoading)()
	s.commit(SetOwnerName, OwnerName{Id: ref.ID, Name: OwnerLoadingName})

	name, err := s.resolveOwner(ctx, ref)
	if err != nil {
		s.commit(SetOwnerName, OwnerName{Id: ref.ID, Name: OwnerUnknownName})
		s.recordError(ownerModuleName, "LOAD_OWNER", err)
		return OwnerUnknownName, nil
	}
	s.commit(SetOwnerName, OwnerName{Id: ref.ID, Name: name})
	return name, nil
}

func (s *Store) resolveOwner(ctx context.Context, ref OwnerRef) (string, error) {
	byUser := func(ctx context.Context) (string, error) {
		u, err := s.svc.User.Info(ctx, ref.ID)
		if err != nil {
			return "", err
		}
		return u.Name, nil
	}
	byGroup := func(ctx context.Context) (string, error) {
		g, err := s.svc.Group.Info(ctx, ref.ID)
		if err != nil {
			return "", err
		}
		return g.Name, nil
	}

	switch ref.Kind {
	case OwnerUser:
		return byUser(ctx)
	case OwnerGroup:
		return byGroup(ctx)
	default:
		return firstFulfilled[string](ctx, byUser, byGroup)
	}
}

// LookupOwner finds the owner id for a display name. The cache is scanned
// first unless overwrite is set; otherwise user and group name lookups race.
func (s *Store) LookupOwner(ctx context.Context, name string, overwrite bool) (string, error) {
	if !overwrite {
		if id, ok := s.ownerByName(name); ok {
			return id, nil
		}
	}

	defer s.track(OwnerLoading)()

	id, err := firstFulfilled[string](ctx,
		func(ctx context.Context) (string, error) {
			u, err := s.svc.User.Lookup(ctx, name)
			if err != nil {
				return "", err
			}
			return u.Id, nil
		},
		func(ctx context.Context) (string, error) {
			g, err := s.svc.Group.Lookup(ctx, name)
			if err != nil {
				return "", err
			}
			return g.Id, nil
		},
	)
	if err != nil {
		s.recordError(ownerModuleName, "LOOKUP_OWNER", err)
		return "", err
	}
	s.commit(SetOwnerName, OwnerName{Id: id, Name: name})
	return id, nil
}

// ownerByName scans ids in sorted order so a name shared by several owners
// resolves the same way every time.
func (s *Store) ownerByName(name string) (string, bool) {
	names := s.OwnerNames()
	ids := make([]string, 0, len(names))
	for id, n := range names {
		if n == name {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return "", false
	}
	sort.Strings(ids)
	return ids[0], true
}

// ClassifyOwner asks the server what kind of owner id is, turning a legacy
// untagged id into a tagged ref. The name is cached on the way.
func (s *Store) ClassifyOwner(ctx context.Context, id string) (OwnerRef, error) {
	if id == "" {
		return OwnerRef{}, ErrEmptyOwnerID
	}
	defer s.track(OwnerLoading)()

	info, err := s.svc.Owner.ById(ctx, id)
	if err != nil {
		s.recordError(ownerModuleName, "CLASSIFY_OWNER", err)
		return UntaggedOwner(id), err
	}

	ref := UntaggedOwner(id)
	switch info.Type {
	case dto.OwnerTypeUser:
		ref.Kind = OwnerUser
	case dto.OwnerTypeGroup:
		ref.Kind = OwnerGroup
	}
	if info.Name != "" {
		s.commit(SetOwnerName, OwnerName{Id: id, Name: info.Name})
	}
	return ref, nil
}
