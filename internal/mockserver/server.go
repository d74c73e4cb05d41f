package mockserver

import (
	"errors"
	"net"
	"slices"
	"sync"
	"time"

	"knaxim-client/internal/dto"
	"knaxim-client/internal/pkg/logger"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	sessionCookie = "session"
	quotaBytes    = 50 << 20
)

type folderKey struct {
	owner string
	name  string
}

// Server is an in-memory Knaxim backend. It serves the routes the client
// uses under /api, with signed session cookies.
type Server struct {
	app    *fiber.App
	log    logger.ILogger
	secret []byte

	mu        sync.RWMutex
	users     map[string]*User
	groups    map[string]*Group
	files     map[string]*File
	folders   map[folderKey]*Folder
	acronyms  map[string][]string
	sessions  map[string]string // token id -> user id
	resetKeys map[string]string // key -> user id
}

// New seeds a server from data. Session tokens are signed with secret, or
// with a random key when it is empty.
func New(data Dataset, secret string, log logger.ILogger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	if secret == "" {
		secret = uuid.NewString()
	}
	s := &Server{
		log:       log,
		secret:    []byte(secret),
		users:     map[string]*User{},
		groups:    map[string]*Group{},
		files:     map[string]*File{},
		folders:   map[folderKey]*Folder{},
		acronyms:  map[string][]string{},
		sessions:  map[string]string{},
		resetKeys: map[string]string{},
	}
	for _, u := range data.Users {
		hash, err := hashPassword(u.Password)
		if err != nil {
			log.Warn("MOCK", "Seed password rejected", map[string]interface{}{"user": u.Name, "error": err.Error()})
		}
		u.Password, u.hash = "", hash
		s.users[u.Id] = &u
	}
	for _, g := range data.Groups {
		s.groups[g.Id] = &g
	}
	for _, f := range data.Files {
		s.files[f.Id] = &f
	}
	for _, d := range data.Folders {
		s.folders[folderKey{d.Owner, d.Name}] = &d
	}
	for k, v := range data.Acronyms {
		s.acronyms[k] = v
	}

	app := fiber.New(fiber.Config{
		BodyLimit:             10 * 1024 * 1024, // 10MB
		DisableStartupMessage: true,
	})
	app.Use(otelfiber.Middleware())
	app.Use(s.logRequests)

	api := app.Group("/api")
	s.registerUserRoutes(api)
	s.registerGroupRoutes(api)
	s.registerFolderRoutes(api)
	s.registerFileRoutes(api)
	s.registerSearchRoutes(api)

	s.app = app
	return s
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.log.Info("MOCK", "Mock backend listening", map[string]interface{}{"addr": addr})
	return s.app.Listen(addr)
}

func (s *Server) Serve(ln net.Listener) error {
	return s.app.Listener(ln)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.log.Debug("MOCK", "request", map[string]interface{}{
		"method":   c.Method(),
		"path":     c.Path(),
		"status":   c.Response().StatusCode(),
		"duration": time.Since(start).String(),
	})
	return err
}

var errUnauthorized = errors.New("login required")

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"message": message})
}

// session returns the signed-in user. It must be called without mu held.
func (s *Server) session(c *fiber.Ctx) (*User, error) {
	jti, uid, err := s.parseToken(c.Cookies(sessionCookie))
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sessions[jti] != uid {
		return nil, errUnauthorized
	}
	u, ok := s.users[uid]
	if !ok {
		return nil, errUnauthorized
	}
	return u, nil
}

// authed wraps a handler that needs a session.
func (s *Server) authed(h func(c *fiber.Ctx, u *User) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := s.session(c)
		if err != nil {
			return fail(c, fiber.StatusUnauthorized, err.Error())
		}
		return h(c, u)
	}
}

// formValues returns every value of a repeated form key, urlencoded or
// multipart.
func formValues(c *fiber.Ctx, key string) []string {
	var out []string
	for _, v := range c.Request().PostArgs().PeekMulti(key) {
		out = append(out, string(v))
	}
	if len(out) == 0 {
		if form, err := c.MultipartForm(); err == nil {
			out = append(out, form.Value[key]...)
		}
	}
	return out
}

// memberOf lists the groups uid owns or belongs to. mu must be held.
func (s *Server) memberOf(uid string) []string {
	var out []string
	for id, g := range s.groups {
		if g.Owner == uid || slices.Contains(g.Members, uid) {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// canView reports whether u may read f. mu must be held.
func (s *Server) canView(u *User, f *File) bool {
	if f.Public || f.Owner == u.Id || slices.Contains(f.Viewers, u.Id) {
		return true
	}
	for _, gid := range s.memberOf(u.Id) {
		if f.Owner == gid || slices.Contains(f.Viewers, gid) {
			return true
		}
	}
	return false
}

// canEdit reports whether u owns f directly or owns the owning group.
func (s *Server) canEdit(u *User, f *File) bool {
	if f.Owner == u.Id {
		return true
	}
	g, ok := s.groups[f.Owner]
	return ok && g.Owner == u.Id
}

// scopeOwner resolves the optional group form value to the owner id of a
// request, checking membership. mu must be held.
func (s *Server) scopeOwner(u *User, group string) (string, bool) {
	if group == "" {
		return u.Id, true
	}
	return group, slices.Contains(s.memberOf(u.Id), group)
}

func (s *Server) record(u *User, f *File) dto.FileRecord {
	return dto.FileRecord{
		Id:      f.Id,
		Name:    f.Name,
		Owner:   f.Owner,
		IsOwned: s.canEdit(u, f),
		Date:    dto.FileDate{Upload: f.Uploaded},
		Size:    f.size(),
		Count:   int64(len(f.Lines)),
		Viewers: append([]string(nil), f.Viewers...),
	}
}

func (s *Server) ownedBy(owner string) dto.OwnedFiles {
	files := dto.OwnedFiles{Own: []string{}, View: []string{}}
	for id, f := range s.files {
		if f.Owner == owner {
			files.Own = append(files.Own, id)
		} else if slices.Contains(f.Viewers, owner) {
			files.View = append(files.View, id)
		}
	}
	slices.Sort(files.Own)
	slices.Sort(files.View)
	return files
}

func (s *Server) folderNames(owner string) []string {
	names := []string{}
	for k := range s.folders {
		if k.owner == owner {
			names = append(names, k.name)
		}
	}
	slices.Sort(names)
	return names
}

func (s *Server) groupInfo(g *Group) dto.GroupInfo {
	return dto.GroupInfo{
		Id:      g.Id,
		Name:    g.Name,
		Owner:   g.Owner,
		Members: append([]string{}, g.Members...),
	}
}

func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}
