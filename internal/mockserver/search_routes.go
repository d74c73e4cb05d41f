package mockserver

import (
	"encoding/json"
	"slices"
	"strings"

	"knaxim-client/internal/dto"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) registerSearchRoutes(r fiber.Router) {
	r.Post("/search/tags", s.authed(s.searchTags))
	r.Get("/public/search", s.authed(s.searchPublicFiles))
	r.Get("/nlp/file/:fid/:category/:start/:end", s.authed(s.nlpInfo))
	r.Get("/acronym/:acronym", s.authed(s.acronym))
}

// matcher is a case-insensitive all-terms match. Quotes are ignored, so
// `"growth" NASA` matches lines holding both words.
type matcher struct {
	terms []string
}

func newMatcher(find string) matcher {
	return matcher{terms: strings.Fields(strings.ToLower(strings.ReplaceAll(find, `"`, " ")))}
}

func (m matcher) matches(line string) bool {
	if len(m.terms) == 0 {
		return false
	}
	line = strings.ToLower(line)
	for _, t := range m.terms {
		if !strings.Contains(line, t) {
			return false
		}
	}
	return true
}

// matchFiles counts matching lines per candidate, dropping files without a
// match. mu must be held.
func (s *Server) matchFiles(me *User, ids []string, m matcher) dto.SearchResponse {
	slices.Sort(ids)
	ids = slices.Compact(ids)
	out := dto.SearchResponse{Matched: []dto.FileInfo{}}
	for _, id := range ids {
		f, ok := s.files[id]
		if !ok || !s.canView(me, f) {
			continue
		}
		var count int64
		for _, l := range f.Lines {
			if m.matches(l) {
				count++
			}
		}
		if count > 0 {
			out.Matched = append(out.Matched, dto.FileInfo{File: s.record(me, f), Count: count, Size: f.size()})
		}
	}
	return out
}

// ownerFiles lists the files of owner filtered by only: "owned",
// "viewable", or both when empty. mu must be held.
func (s *Server) ownerFiles(owner, only string) []string {
	index := s.ownedBy(owner)
	switch only {
	case "owned":
		return index.Own
	case "viewable":
		return index.View
	}
	return append(index.Own, index.View...)
}

// matchWord pulls the search text out of a match that is either a string or
// a list of conditions.
func matchWord(raw json.RawMessage) string {
	var word string
	if err := json.Unmarshal(raw, &word); err == nil {
		return word
	}
	var conds []dto.MatchCondition
	if err := json.Unmarshal(raw, &conds); err == nil {
		words := make([]string, 0, len(conds))
		for _, c := range conds {
			words = append(words, c.Word)
		}
		return strings.Join(words, " ")
	}
	return ""
}

func (s *Server) searchTags(c *fiber.Ctx, me *User) error {
	var req struct {
		Context []dto.SearchContext `json:"context"`
		Match   json.RawMessage     `json:"match"`
	}
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid search body")
	}
	if len(req.Context) == 0 {
		return fail(c, fiber.StatusBadRequest, "search context required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for _, sc := range req.Context {
		switch sc.Type {
		case "owner":
			ids = append(ids, s.ownerFiles(sc.Id, sc.Only)...)
		case "file":
			ids = append(ids, sc.Id)
		default:
			return fail(c, fiber.StatusBadRequest, "unknown context type "+sc.Type)
		}
	}
	return c.JSON(s.matchFiles(me, ids, newMatcher(matchWord(req.Match))))
}

func (s *Server) searchUserFiles(c *fiber.Ctx, me *User) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.JSON(s.matchFiles(me, s.ownerFiles(me.Id, ""), newMatcher(c.Query("find"))))
}

func (s *Server) searchGroupFiles(c *fiber.Ctx, me *User) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	gid := c.Params("id")
	if !slices.Contains(s.memberOf(me.Id), gid) {
		return fail(c, fiber.StatusForbidden, "not a member of group")
	}
	return c.JSON(s.matchFiles(me, s.ownerFiles(gid, ""), newMatcher(c.Query("find"))))
}

func (s *Server) searchFolderFiles(c *fiber.Ctx, me *User) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, status, msg := s.folder(c, me)
	if d == nil {
		return fail(c, status, msg)
	}
	return c.JSON(s.matchFiles(me, append([]string{}, d.Files...), newMatcher(c.Query("find"))))
}

func (s *Server) searchPublicFiles(c *fiber.Ctx, me *User) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id, f := range s.files {
		if f.Public {
			ids = append(ids, id)
		}
	}
	return c.JSON(s.matchFiles(me, ids, newMatcher(c.Query("find"))))
}

// nlpInfo tags each sentence with its longest word. The range rules match
// the real backend: end at most 50 and start before end.
func (s *Server) nlpInfo(c *fiber.Ctx, me *User) error {
	switch c.Params("category") {
	case "t", "topic", "a", "action", "r", "resource", "p", "process":
	default:
		return fail(c, fiber.StatusBadRequest, "unknown category")
	}
	start, err := c.ParamsInt("start")
	if err != nil || start < 0 {
		return fail(c, fiber.StatusBadRequest, "invalid start")
	}
	end, err := c.ParamsInt("end")
	if err != nil || end > 50 || start >= end {
		return fail(c, fiber.StatusBadRequest, "invalid end")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[c.Params("fid")]
	if !ok || !s.canView(me, f) {
		return fail(c, fiber.StatusNotFound, "file not found")
	}

	info := []dto.NLPTag{}
	for i := start; i < end && i < len(f.Lines); i++ {
		info = append(info, dto.NLPTag{Word: longestWord(f.Lines[i]), Count: 1})
	}
	return c.JSON(dto.NLPResponse{Fid: f.Id, Info: info})
}

func longestWord(line string) string {
	var best string
	for _, w := range strings.FieldsFunc(line, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	}) {
		if len(w) > len(best) {
			best = w
		}
	}
	return strings.ToLower(best)
}

func (s *Server) acronym(c *fiber.Ctx, _ *User) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched, ok := s.acronyms[strings.ToUpper(c.Params("acronym"))]
	if !ok {
		matched = []string{}
	}
	return c.JSON(dto.AcronymResponse{Matched: matched})
}
