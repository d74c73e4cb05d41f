package mockserver

import (
	"slices"

	"knaxim-client/internal/dto"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) registerGroupRoutes(r fiber.Router) {
	g := r.Group("/group")
	g.Put("/", s.authed(s.createGroup))
	g.Get("/options", s.authed(s.groupOptions))
	g.Get("/options/:id", s.authed(s.groupOptions))
	g.Get("/name/:name", s.authed(s.lookupGroup))
	g.Get("/:id", s.authed(s.getGroup))
	g.Post("/:id/member", s.authed(s.addMember))
	g.Delete("/:id/member", s.authed(s.removeMember))
	g.Get("/:id/search", s.authed(s.searchGroupFiles))

	o := r.Group("/owner")
	o.Get("/id/:id", s.authed(s.ownerByID))
	o.Get("/name/:name", s.authed(s.ownerByName))
}

func (s *Server) createGroup(c *fiber.Ctx, me *User) error {
	name := c.FormValue("newname")
	if name == "" {
		return fail(c, fiber.StatusBadRequest, "group name required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.groups {
		if g.Name == name {
			return fail(c, fiber.StatusConflict, "name already taken")
		}
	}
	g := &Group{Id: newID("g"), Name: name, Owner: me.Id}
	s.groups[g.Id] = g
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": g.Id, "name": g.Name})
}

// groupOptions lists the groups owned by and joined by the session user, or
// by the group in the path. Groups cannot join groups, so the latter is
// always empty.
func (s *Server) groupOptions(c *fiber.Ctx, me *User) error {
	out := dto.GroupOptions{Own: []dto.GroupInfo{}, Member: []dto.GroupInfo{}}
	if c.Params("id") != "" {
		return c.JSON(out)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, gid := range s.memberOf(me.Id) {
		g := s.groups[gid]
		if g.Owner == me.Id {
			out.Own = append(out.Own, s.groupInfo(g))
		} else {
			out.Member = append(out.Member, s.groupInfo(g))
		}
	}
	return c.JSON(out)
}

func (s *Server) getGroup(c *fiber.Ctx, _ *User) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[c.Params("id")]
	if !ok {
		return fail(c, fiber.StatusNotFound, "group not found")
	}
	return c.JSON(s.groupInfo(g))
}

func (s *Server) lookupGroup(c *fiber.Ctx, _ *User) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.groups {
		if g.Name == c.Params("name") {
			return c.JSON(s.groupInfo(g))
		}
	}
	return fail(c, fiber.StatusNotFound, "group not found")
}

func (s *Server) addMember(c *fiber.Ctx, me *User) error {
	return s.changeMembers(c, me, func(g *Group, id string) {
		if !slices.Contains(g.Members, id) {
			g.Members = append(g.Members, id)
		}
	})
}

func (s *Server) removeMember(c *fiber.Ctx, me *User) error {
	return s.changeMembers(c, me, func(g *Group, id string) {
		g.Members = slices.DeleteFunc(g.Members, func(m string) bool { return m == id })
	})
}

func (s *Server) changeMembers(c *fiber.Ctx, me *User, apply func(*Group, string)) error {
	ids := formValues(c, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[c.Params("id")]
	if !ok {
		return fail(c, fiber.StatusNotFound, "group not found")
	}
	if g.Owner != me.Id {
		return fail(c, fiber.StatusForbidden, "only the owner can change members")
	}
	for _, id := range ids {
		if _, known := s.users[id]; !known {
			return fail(c, fiber.StatusNotFound, "user "+id+" not found")
		}
	}
	for _, id := range ids {
		apply(g, id)
	}
	return c.JSON(fiber.Map{"message": "members updated"})
}

func (s *Server) ownerByID(c *fiber.Ctx, _ *User) error {
	id := c.Params("id")
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return c.JSON(dto.OwnerInfo{Id: u.Id, Name: u.Name, Type: dto.OwnerTypeUser})
	}
	if g, ok := s.groups[id]; ok {
		return c.JSON(dto.OwnerInfo{Id: g.Id, Name: g.Name, Type: dto.OwnerTypeGroup})
	}
	return fail(c, fiber.StatusNotFound, "owner not found")
}

func (s *Server) ownerByName(c *fiber.Ctx, _ *User) error {
	name := c.Params("name")
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u := s.userByName(name); u != nil {
		return c.JSON(dto.OwnerInfo{Id: u.Id, Name: u.Name, Type: dto.OwnerTypeUser})
	}
	for _, g := range s.groups {
		if g.Name == name {
			return c.JSON(dto.OwnerInfo{Id: g.Id, Name: g.Name, Type: dto.OwnerTypeGroup})
		}
	}
	return fail(c, fiber.StatusNotFound, "owner not found")
}
