package mockserver

import (
	"io"
	"slices"
	"strings"
	"time"

	"knaxim-client/internal/dto"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) registerFileRoutes(r fiber.Router) {
	f := r.Group("/file")
	f.Put("/", s.authed(s.uploadFile))
	f.Put("/webpage", s.authed(s.uploadWebpage))
	f.Get("/:id", s.authed(s.getFile))
	f.Delete("/:id", s.authed(s.deleteFile))
	f.Get("/:id/slice/:start/:end", s.authed(s.sliceFile))
	f.Get("/:id/search/:start/:end", s.authed(s.searchFileLines))
	f.Get("/:id/download", s.authed(s.downloadFile))
	f.Get("/:id/view", s.authed(s.downloadFile))

	rec := r.Group("/record")
	rec.Get("/", s.authed(s.listRecords(false)))
	rec.Get("/view", s.authed(s.listRecords(true)))
	rec.Post("/:id/name", s.authed(s.renameFile))

	p := r.Group("/perm/file")
	p.Get("/:id", s.authed(s.getPermissions))
	p.Post("/:id", s.authed(s.share))
	p.Delete("/:id", s.authed(s.stopSharing))
	p.Post("/:id/public", s.authed(s.setPublic(true)))
	p.Delete("/:id/public", s.authed(s.setPublic(false)))
}

// viewable looks up a file the session user may read. mu must be held.
func (s *Server) viewable(c *fiber.Ctx, me *User) (*File, bool) {
	f, ok := s.files[c.Params("id")]
	if !ok || !s.canView(me, f) {
		return nil, false
	}
	return f, true
}

func (s *Server) editable(c *fiber.Ctx, me *User) (*File, int, string) {
	f, ok := s.files[c.Params("id")]
	if !ok || !s.canView(me, f) {
		return nil, fiber.StatusNotFound, "file not found"
	}
	if !s.canEdit(me, f) {
		return nil, fiber.StatusForbidden, "not the owner of the file"
	}
	return f, 0, ""
}

// store adds a new file to the request scope and, when dir is set, to that
// folder. mu must be held.
func (s *Server) store(c *fiber.Ctx, me *User, name string, lines []string) error {
	owner, ok := s.scopeOwner(me, group(c))
	if !ok {
		return fail(c, fiber.StatusForbidden, "not a member of group")
	}
	f := &File{Id: newID("f"), Name: name, Owner: owner, Uploaded: time.Now().UTC(), Lines: lines}
	s.files[f.Id] = f

	if dir := c.FormValue("dir"); dir != "" {
		key := folderKey{owner, dir}
		d, ok := s.folders[key]
		if !ok {
			d = &Folder{Owner: owner, Name: dir}
			s.folders[key] = d
		}
		d.Files = append(d.Files, f.Id)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CreatedFile{Id: f.Id, Name: f.Name})
}

func (s *Server) uploadFile(c *fiber.Ctx, me *User) error {
	header, err := c.FormFile("file")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "file required")
	}
	src, err := header.Open()
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	defer src.Close()
	body, err := io.ReadAll(src)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store(c, me, header.Filename, splitSentences(string(body)))
}

func (s *Server) uploadWebpage(c *fiber.Ctx, me *User) error {
	url := c.FormValue("url")
	if url == "" {
		return fail(c, fiber.StatusBadRequest, "url required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store(c, me, url, []string{"Captured from " + url + "."})
}

func (s *Server) getFile(c *fiber.Ctx, me *User) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.viewable(c, me)
	if !ok {
		return fail(c, fiber.StatusNotFound, "file not found")
	}
	return c.JSON(dto.FileInfo{File: s.record(me, f), Count: int64(len(f.Lines)), Size: f.size()})
}

func (s *Server) deleteFile(c *fiber.Ctx, me *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, status, msg := s.editable(c, me)
	if f == nil {
		return fail(c, status, msg)
	}
	delete(s.files, f.Id)
	for _, d := range s.folders {
		d.Files = slices.DeleteFunc(d.Files, func(id string) bool { return id == f.Id })
	}
	return c.JSON(fiber.Map{"message": "file deleted"})
}

// lineRange parses the start and end path params, clamped to the file.
func lineRange(c *fiber.Ctx, f *File) (int, int, bool) {
	start, err := c.ParamsInt("start")
	if err != nil || start < 0 {
		return 0, 0, false
	}
	end, err := c.ParamsInt("end")
	if err != nil || end < start {
		return 0, 0, false
	}
	return min(start, len(f.Lines)), min(end, len(f.Lines)), true
}

func contentLines(f *File, start, end int, keep func(string) bool) []dto.ContentLine {
	lines := []dto.ContentLine{}
	for i := start; i < end; i++ {
		if keep(f.Lines[i]) {
			lines = append(lines, dto.ContentLine{ID: f.Id, Position: i, Content: []string{f.Lines[i]}})
		}
	}
	return lines
}

func (s *Server) sliceFile(c *fiber.Ctx, me *User) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.viewable(c, me)
	if !ok {
		return fail(c, fiber.StatusNotFound, "file not found")
	}
	start, end, ok := lineRange(c, f)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid range")
	}
	return c.JSON(dto.FileContent{
		Size:  len(f.Lines),
		Lines: contentLines(f, start, end, func(string) bool { return true }),
	})
}

func (s *Server) searchFileLines(c *fiber.Ctx, me *User) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.viewable(c, me)
	if !ok {
		return fail(c, fiber.StatusNotFound, "file not found")
	}
	start, end, ok := lineRange(c, f)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid range")
	}
	m := newMatcher(c.Query("find"))
	return c.JSON(dto.FileContent{
		Size:  len(f.Lines),
		Lines: contentLines(f, start, end, m.matches),
	})
}

func (s *Server) downloadFile(c *fiber.Ctx, me *User) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.viewable(c, me)
	if !ok {
		return fail(c, fiber.StatusNotFound, "file not found")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(strings.Join(f.Lines, "\n"))
}

func (s *Server) listRecords(shared bool) func(*fiber.Ctx, *User) error {
	return func(c *fiber.Ctx, me *User) error {
		s.mu.RLock()
		defer s.mu.RUnlock()
		owner, ok := s.scopeOwner(me, group(c))
		if !ok {
			return fail(c, fiber.StatusForbidden, "not a member of group")
		}
		index := s.ownedBy(owner)
		ids := index.Own
		if shared {
			ids = index.View
		}
		files := make(map[string]dto.FileInfo, len(ids))
		for _, id := range ids {
			f := s.files[id]
			files[id] = dto.FileInfo{File: s.record(me, f), Count: int64(len(f.Lines)), Size: f.size()}
		}
		return c.JSON(fiber.Map{"files": files})
	}
}

func (s *Server) renameFile(c *fiber.Ctx, me *User) error {
	name := c.FormValue("name")
	if name == "" {
		return fail(c, fiber.StatusBadRequest, "name required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, status, msg := s.editable(c, me)
	if f == nil {
		return fail(c, status, msg)
	}
	f.Name = name
	return c.JSON(fiber.Map{"message": "file renamed"})
}

func (s *Server) getPermissions(c *fiber.Ctx, me *User) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.viewable(c, me)
	if !ok {
		return fail(c, fiber.StatusNotFound, "file not found")
	}
	perm := map[string][]string{"view": append([]string{}, f.Viewers...)}
	if f.Public {
		perm["public"] = []string{"view"}
	}
	return c.JSON(dto.PermissionInfo{Owner: f.Owner, IsOwned: s.canEdit(me, f), Permission: perm})
}

func (s *Server) share(c *fiber.Ctx, me *User) error {
	return s.changeViewers(c, me, func(f *File, id string) {
		if !slices.Contains(f.Viewers, id) {
			f.Viewers = append(f.Viewers, id)
		}
	})
}

func (s *Server) stopSharing(c *fiber.Ctx, me *User) error {
	return s.changeViewers(c, me, func(f *File, id string) {
		f.Viewers = slices.DeleteFunc(f.Viewers, func(v string) bool { return v == id })
	})
}

func (s *Server) changeViewers(c *fiber.Ctx, me *User, apply func(*File, string)) error {
	ids := formValues(c, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	f, status, msg := s.editable(c, me)
	if f == nil {
		return fail(c, status, msg)
	}
	for _, id := range ids {
		_, isUser := s.users[id]
		_, isGroup := s.groups[id]
		if !isUser && !isGroup {
			return fail(c, fiber.StatusNotFound, "owner "+id+" not found")
		}
	}
	for _, id := range ids {
		apply(f, id)
	}
	return c.JSON(fiber.Map{"message": "permissions updated"})
}

func (s *Server) setPublic(public bool) func(*fiber.Ctx, *User) error {
	return func(c *fiber.Ctx, me *User) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		f, status, msg := s.editable(c, me)
		if f == nil {
			return fail(c, status, msg)
		}
		f.Public = public
		return c.JSON(fiber.Map{"message": "permissions updated"})
	}
}
