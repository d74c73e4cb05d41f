package mockserver

import (
	"slices"
	"time"

	"knaxim-client/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (s *Server) registerUserRoutes(r fiber.Router) {
	u := r.Group("/user")
	u.Put("/", s.createUser)
	u.Get("/", s.authed(s.getUser))
	u.Delete("/", s.logout)
	u.Post("/login", s.login)
	u.Get("/complete", s.authed(s.complete))
	u.Get("/data", s.authed(s.userData))
	u.Post("/pass", s.authed(s.changePassword))
	u.Put("/reset", s.requestReset)
	u.Post("/reset", s.resetPassword)
	u.Get("/name/:name", s.authed(s.lookupUser))
	u.Get("/search", s.authed(s.searchUserFiles))
}

func (s *Server) userDTO(u *User) dto.User {
	return dto.User{
		Id:    u.Id,
		Name:  u.Name,
		Roles: append([]string(nil), u.Roles...),
		Data:  s.usage(u.Id),
	}
}

func (s *Server) usage(owner string) dto.UserData {
	var used int64
	for _, f := range s.files {
		if f.Owner == owner {
			used += f.size()
		}
	}
	return dto.UserData{Current: used, Total: quotaBytes}
}

func (s *Server) userByName(name string) *User {
	for _, u := range s.users {
		if u.Name == name {
			return u
		}
	}
	return nil
}

func (s *Server) createUser(c *fiber.Ctx) error {
	name, pass, email := c.FormValue("name"), c.FormValue("pass"), c.FormValue("email")
	if name == "" || pass == "" {
		return fail(c, fiber.StatusBadRequest, "name and password required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userByName(name) != nil {
		return fail(c, fiber.StatusConflict, "name already taken")
	}
	hash, err := hashPassword(pass)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	u := &User{Id: newID("u"), Name: name, Email: email, hash: hash}
	s.users[u.Id] = u
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "user created"})
}

func (s *Server) login(c *fiber.Ctx) error {
	name, pass := c.FormValue("name"), c.FormValue("pass")

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.userByName(name)
	if u == nil || !checkPassword(u, pass) {
		return fail(c, fiber.StatusUnauthorized, "invalid name or password")
	}
	token, err := s.issueToken(u.Id)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Expires:  time.Now().Add(sessionTTL),
	})
	return c.JSON(s.userDTO(u))
}

func (s *Server) logout(c *fiber.Ctx) error {
	if jti, _, err := s.parseToken(c.Cookies(sessionCookie)); err == nil {
		s.mu.Lock()
		delete(s.sessions, jti)
		s.mu.Unlock()
	}
	c.ClearCookie(sessionCookie)
	return c.JSON(fiber.Map{"message": "logged out"})
}

func (s *Server) getUser(c *fiber.Ctx, me *User) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id := c.Query("id")
	if id == "" {
		return c.JSON(s.userDTO(me))
	}
	u, ok := s.users[id]
	if !ok {
		return fail(c, fiber.StatusNotFound, "user not found")
	}
	return c.JSON(dto.User{Id: u.Id, Name: u.Name})
}

func (s *Server) lookupUser(c *fiber.Ctx, _ *User) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.userByName(c.Params("name"))
	if u == nil {
		return fail(c, fiber.StatusNotFound, "user not found")
	}
	return c.JSON(dto.User{Id: u.Id, Name: u.Name})
}

func (s *Server) userData(c *fiber.Ctx, me *User) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.JSON(s.usage(me.Id))
}

func (s *Server) changePassword(c *fiber.Ctx, me *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !checkPassword(me, c.FormValue("oldpass")) {
		return fail(c, fiber.StatusUnauthorized, "old password does not match")
	}
	hash, err := hashPassword(c.FormValue("newpass"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	me.hash = hash
	return c.JSON(fiber.Map{"message": "password changed"})
}

// requestReset always answers the same way so names cannot be probed.
func (s *Server) requestReset(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.userByName(c.FormValue("name")); u != nil {
		key := uuid.NewString()
		s.resetKeys[key] = u.Id
		s.log.Info("MOCK", "Reset key issued", map[string]interface{}{"user": u.Name, "key": key})
	}
	return c.JSON(fiber.Map{"message": "reset requested"})
}

func (s *Server) resetPassword(c *fiber.Ctx) error {
	key := c.FormValue("key")
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.resetKeys[key]
	if !ok {
		return fail(c, fiber.StatusNotFound, "unknown reset key")
	}
	hash, err := hashPassword(c.FormValue("newpass"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	delete(s.resetKeys, key)
	s.users[uid].hash = hash
	return c.JSON(fiber.Map{"message": "password reset"})
}

// complete builds the consolidated profile the client bootstraps from.
func (s *Server) complete(c *fiber.Ctx, me *User) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile := dto.CompleteProfile{
		User: dto.UserProfile{
			Id:      me.Id,
			Name:    me.Name,
			Roles:   append([]string(nil), me.Roles...),
			Data:    s.usage(me.Id),
			Folders: s.folderNames(me.Id),
			Files:   s.ownedBy(me.Id),
			Groups:  dto.Affiliations{Own: []string{}, Member: []string{}},
		},
		Public: []string{},
		Groups: map[string]dto.GroupProfile{},
		Files:  map[string]dto.FileRecord{},
	}

	referenced := append(append([]string{}, profile.User.Files.Own...), profile.User.Files.View...)
	for _, gid := range s.memberOf(me.Id) {
		g := s.groups[gid]
		if g.Owner == me.Id {
			profile.User.Groups.Own = append(profile.User.Groups.Own, gid)
		} else {
			profile.User.Groups.Member = append(profile.User.Groups.Member, gid)
		}
		files := s.ownedBy(gid)
		profile.Groups[gid] = dto.GroupProfile{
			Id:      gid,
			Name:    g.Name,
			Owner:   g.Owner,
			IsOwned: g.Owner == me.Id,
			Members: append([]string{}, g.Members...),
			Folders: s.folderNames(gid),
			Files:   files,
			Groups:  dto.Affiliations{Own: []string{}, Member: []string{}},
		}
		referenced = append(referenced, files.Own...)
		referenced = append(referenced, files.View...)
	}

	for id, f := range s.files {
		if f.Public {
			profile.Public = append(profile.Public, id)
			referenced = append(referenced, id)
		}
	}
	slices.Sort(profile.Public)

	for _, id := range referenced {
		if f, ok := s.files[id]; ok {
			profile.Files[id] = s.record(me, f)
		}
	}
	return c.JSON(profile)
}
