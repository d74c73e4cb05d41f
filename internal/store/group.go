package store

import (
	"context"
	"sort"
	"sync"

	"knaxim-client/internal/dto"
)

// groupModule keeps insertion order in ids with per-field maps beside it.
type groupModule struct {
	mu      sync.RWMutex
	loading int
	ids     []string
	names   map[string]string
	members map[string][]string
	owners  map[string]string
	active  string
}

func newGroupModule() *groupModule {
	m := &groupModule{}
	m.clear()
	return m
}

func (m *groupModule) clear() {
	m.ids = nil
	m.names = map[string]string{}
	m.members = map[string][]string{}
	m.owners = map[string]string{}
	m.active = ""
}

func (m *groupModule) name() string { return groupModuleName }

func (m *groupModule) set(g dto.GroupInfo) {
	if _, ok := m.names[g.Id]; !ok {
		m.ids = append(m.ids, g.Id)
	}
	m.names[g.Id] = g.Name
	m.members[g.Id] = append([]string{}, g.Members...)
	m.owners[g.Id] = g.Owner
}

func (m *groupModule) mutate(mu Mutation) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch mu.Kind {
	case GroupLoading:
		delta, ok := mu.Payload.(int)
		if !ok {
			return false
		}
		m.loading += delta
	case SetGroup:
		g, ok := mu.Payload.(dto.GroupInfo)
		if !ok || g.Id == "" {
			return false
		}
		m.set(g)
	case ActivateGroup:
		id, ok := mu.Payload.(string)
		if !ok {
			return false
		}
		m.active = id
	case ProcessServerState:
		profile, ok := mu.Payload.(*dto.CompleteProfile)
		if !ok || profile == nil {
			return false
		}
		ids := make([]string, 0, len(profile.Groups))
		for id := range profile.Groups {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			gp := profile.Groups[id]
			m.set(dto.GroupInfo{Id: id, Name: gp.Name, Owner: gp.Owner, Members: gp.Members})
		}
	default:
		return false
	}
	return true
}

func (m *groupModule) reset() {
	m.mu.Lock()
	m.clear()
	m.mu.Unlock()
}

type GroupView struct {
	Id      string
	Name    string
	Owner   string
	Members []string
}

func (m *groupModule) view(id string) GroupView {
	return GroupView{
		Id:      id,
		Name:    m.names[id],
		Owner:   m.owners[id],
		Members: append([]string{}, m.members[id]...),
	}
}

func (s *Store) activeGroupID() string {
	s.groups.mu.RLock()
	defer s.groups.mu.RUnlock()
	return s.groups.active
}

// ActiveGroup returns the selected group, or nil in personal scope.
func (s *Store) ActiveGroup() *GroupView {
	s.groups.mu.RLock()
	defer s.groups.mu.RUnlock()
	if s.groups.active == "" {
		return nil
	}
	v := s.groups.view(s.groups.active)
	return &v
}

// AvailableGroups lists known groups in the order they were first seen.
func (s *Store) AvailableGroups() []GroupView {
	s.groups.mu.RLock()
	defer s.groups.mu.RUnlock()
	out := make([]GroupView, 0, len(s.groups.ids))
	for _, id := range s.groups.ids {
		out = append(out, s.groups.view(id))
	}
	return out
}

func (s *Store) GroupMembers(id string) []string {
	s.groups.mu.RLock()
	defer s.groups.mu.RUnlock()
	return append([]string{}, s.groups.members[id]...)
}

func (s *Store) GroupLoading() bool {
	s.groups.mu.RLock()
	defer s.groups.mu.RUnlock()
	return s.groups.loading > 0
}

// ActivateGroup switches scope; an empty id returns to the personal scope.
// The active folder stack is cleared.
func (s *Store) ActivateGroup(id string) {
	s.commit(ActivateGroup, id)
}

// RefreshGroups loads the groups the user owns and belongs to.
func (s *Store) RefreshGroups(ctx context.Context) {
	defer s.track(GroupLoading)()

	opts, err := s.svc.Group.Options(ctx, "")
	if err != nil {
		s.recordError(groupModuleName, "REFRESH_GROUPS", err)
		return
	}
	for _, g := range opts.Own {
		s.commit(SetGroup, g)
	}
	for _, g := range opts.Member {
		s.commit(SetGroup, g)
	}
}

func (s *Store) CreateGroup(ctx context.Context, name string) error {
	return s.changeGroup(ctx, "CREATE_GROUP", func() error {
		return s.svc.Group.Create(ctx, dto.CreateGroupRequest{Name: name})
	})
}

func (s *Store) AddMember(ctx context.Context, group string, members ...string) error {
	return s.changeGroup(ctx, "ADD_MEMBER", func() error {
		return s.svc.Group.AddMember(ctx, dto.MemberRequest{Group: group, Members: members})
	})
}

func (s *Store) RemoveMember(ctx context.Context, group string, members ...string) error {
	return s.changeGroup(ctx, "REMOVE_MEMBER", func() error {
		return s.svc.Group.RemoveMember(ctx, dto.MemberRequest{Group: group, Members: members})
	})
}

func (s *Store) changeGroup(ctx context.Context, action string, call func() error) error {
	defer s.track(GroupLoading)()

	err := call()
	if err != nil {
		s.recordError(groupModuleName, action, err)
	}
	s.LoadServer(ctx)
	return err
}
