package mockserver

import (
	"strings"
	"time"
)

// User is an account. Password is only read when seeding; the server keeps a
// bcrypt hash.
type User struct {
	Id       string
	Name     string
	Password string
	Email    string
	Roles    []string

	hash []byte
}

type Group struct {
	Id      string
	Name    string
	Owner   string
	Members []string
}

// File is a stored document. Owner is a user or group id. Viewers may hold
// either kind of id.
type File struct {
	Id       string
	Name     string
	Owner    string
	Viewers  []string
	Public   bool
	Uploaded time.Time
	Lines    []string
}

func (f *File) size() int64 {
	var n int64
	for _, l := range f.Lines {
		n += int64(len(l))
	}
	return n
}

type Folder struct {
	Owner string
	Name  string
	Files []string
}

// Dataset seeds a Server.
type Dataset struct {
	Users    []User
	Groups   []Group
	Files    []File
	Folders  []Folder
	Acronyms map[string][]string
}

// Default returns a small two-user workspace with one shared group.
func Default() Dataset {
	uploaded := time.Date(2020, time.August, 1, 12, 0, 0, 0, time.UTC)
	return Dataset{
		Users: []User{
			{Id: "u-alice", Name: "alice", Password: "wonderland", Email: "alice@example.com"},
			{Id: "u-bob", Name: "bob", Password: "builder42", Email: "bob@example.com"},
		},
		Groups: []Group{
			{Id: "g-research", Name: "research", Owner: "u-alice", Members: []string{"u-bob"}},
		},
		Files: []File{
			{
				Id: "f-report", Name: "annual-report.txt", Owner: "u-alice", Uploaded: uploaded,
				Lines: splitSentences(
					"The annual report covers revenue and growth. " +
						"Revenue grew in every region. " +
						"The NASA contract drove most of the growth. " +
						"Growth is expected to continue next year. " +
						"Costs stayed flat."),
			},
			{
				Id: "f-notes", Name: "meeting-notes.txt", Owner: "u-alice", Viewers: []string{"u-bob"}, Uploaded: uploaded,
				Lines: splitSentences(
					"Meeting opened at noon. " +
						"Bob presented the growth plan. " +
						"Alice asked about revenue targets."),
			},
			{
				Id: "f-plan", Name: "research-plan.txt", Owner: "g-research", Uploaded: uploaded,
				Lines: splitSentences(
					"The research group studies search ranking. " +
						"Ranking quality depends on tagging."),
			},
			{
				Id: "f-handbook", Name: "handbook.txt", Owner: "u-bob", Public: true, Uploaded: uploaded,
				Lines: splitSentences("Welcome to the team. Read the handbook."),
			},
		},
		Folders: []Folder{
			{Owner: "u-alice", Name: "finance", Files: []string{"f-report"}},
			{Owner: "u-alice", Name: "meetings", Files: []string{"f-notes"}},
			{Owner: "g-research", Name: "plans", Files: []string{"f-plan"}},
		},
		Acronyms: map[string][]string{
			"NASA": {"National Aeronautics and Space Administration"},
			"NLP":  {"Natural Language Processing", "Neuro-Linguistic Programming"},
		},
	}
}

// splitSentences breaks text after sentence punctuation and at newlines.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '?' || r == '!' || r == '\n' {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
