package mockserver

import (
	"slices"

	"knaxim-client/internal/dto"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) registerFolderRoutes(r fiber.Router) {
	d := r.Group("/dir")
	d.Put("/", s.authed(s.createFolder))
	d.Get("/", s.authed(s.listFolders))
	d.Get("/:name", s.authed(s.getFolder))
	d.Delete("/:name", s.authed(s.deleteFolder))
	d.Post("/:name/content", s.authed(s.addFolderContent))
	d.Delete("/:name/content", s.authed(s.removeFolderContent))
	d.Get("/:name/search", s.authed(s.searchFolderFiles))
}

// group reads the scope from the form, falling back to the query string.
func group(c *fiber.Ctx) string {
	if g := c.FormValue("group"); g != "" {
		return g
	}
	return c.Query("group")
}

func (s *Server) createFolder(c *fiber.Ctx, me *User) error {
	name := c.FormValue("newname")
	if name == "" {
		return fail(c, fiber.StatusBadRequest, "folder name required")
	}
	content := formValues(c, "content")

	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.scopeOwner(me, group(c))
	if !ok {
		return fail(c, fiber.StatusForbidden, "not a member of group")
	}
	key := folderKey{owner, name}
	if _, exists := s.folders[key]; exists {
		return fail(c, fiber.StatusConflict, "folder already exists")
	}
	s.folders[key] = &Folder{Owner: owner, Name: name, Files: content}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "folder created"})
}

func (s *Server) listFolders(c *fiber.Ctx, me *User) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner, ok := s.scopeOwner(me, group(c))
	if !ok {
		return fail(c, fiber.StatusForbidden, "not a member of group")
	}
	return c.JSON(dto.FolderList{Folders: s.folderNames(owner)})
}

// folder looks up the folder in the request scope. mu must be held.
func (s *Server) folder(c *fiber.Ctx, me *User) (*Folder, int, string) {
	owner, ok := s.scopeOwner(me, group(c))
	if !ok {
		return nil, fiber.StatusForbidden, "not a member of group"
	}
	d, ok := s.folders[folderKey{owner, c.Params("name")}]
	if !ok {
		return nil, fiber.StatusNotFound, "folder not found"
	}
	return d, 0, ""
}

func (s *Server) getFolder(c *fiber.Ctx, me *User) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, status, msg := s.folder(c, me)
	if d == nil {
		return fail(c, status, msg)
	}
	return c.JSON(dto.FolderInfo{Name: d.Name, Files: append([]string{}, d.Files...)})
}

func (s *Server) deleteFolder(c *fiber.Ctx, me *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, status, msg := s.folder(c, me)
	if d == nil {
		return fail(c, status, msg)
	}
	delete(s.folders, folderKey{d.Owner, d.Name})
	return c.JSON(fiber.Map{"message": "folder deleted"})
}

func (s *Server) addFolderContent(c *fiber.Ctx, me *User) error {
	ids := formValues(c, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	d, status, msg := s.folder(c, me)
	if d == nil {
		return fail(c, status, msg)
	}
	for _, id := range ids {
		f, ok := s.files[id]
		if !ok || !s.canView(me, f) {
			return fail(c, fiber.StatusNotFound, "file "+id+" not found")
		}
	}
	for _, id := range ids {
		if !slices.Contains(d.Files, id) {
			d.Files = append(d.Files, id)
		}
	}
	return c.JSON(fiber.Map{"message": "content added"})
}

func (s *Server) removeFolderContent(c *fiber.Ctx, me *User) error {
	ids := formValues(c, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	d, status, msg := s.folder(c, me)
	if d == nil {
		return fail(c, status, msg)
	}
	d.Files = slices.DeleteFunc(d.Files, func(id string) bool { return slices.Contains(ids, id) })
	return c.JSON(fiber.Map{"message": "content removed"})
}
