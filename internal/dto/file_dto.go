package dto

import (
	"encoding/json"
	"io"
	"sort"
	"time"
)

type FileDate struct {
	Upload time.Time `json:"upload"`
}

// FileRecord is a cached file. Size and Count are zero until known.
type FileRecord struct {
	Id      string   `json:"id"`
	Name    string   `json:"name"`
	Types   string   `json:"types,omitempty"`
	Owner   string   `json:"owner,omitempty"`
	Own     string   `json:"own,omitempty"`
	IsOwned bool     `json:"isOwned"`
	Date    FileDate `json:"date"`
	Size    int64    `json:"size,omitempty"`
	Count   int64    `json:"count,omitempty"`
	URL     string   `json:"url,omitempty"`
	Viewers []string `json:"viewers,omitempty"`
}

// OwnerId returns whichever owner field the server filled in.
func (f FileRecord) OwnerId() string {
	if f.Owner != "" {
		return f.Owner
	}
	return f.Own
}

// FileInfo is the response of GET file/{id} and an entry of a search result.
type FileInfo struct {
	File  FileRecord `json:"file"`
	Count int64      `json:"count,omitempty"`
	Size  int64      `json:"size,omitempty"`
}

// ContentLine is one sentence of a file. The backend encodes it without tags.
type ContentLine struct {
	ID       string   `json:"ID"`
	Position int      `json:"Position"`
	Content  []string `json:"Content"`
}

func (l ContentLine) Text() string {
	if len(l.Content) == 0 {
		return ""
	}
	return l.Content[0]
}

type FileContent struct {
	Size  int           `json:"size"`
	Lines []ContentLine `json:"lines"`
}

type CreateFileRequest struct {
	Name    string    `validate:"required"`
	Content io.Reader `validate:"required"`
	Dir     string
	Group   string
}

type CreateWebFileRequest struct {
	URL   string `validate:"required,url"`
	Dir   string
	Group string
}

type RenameFileRequest struct {
	Id   string `validate:"required"`
	Name string `validate:"required"`
}

// CreatedFile is the acknowledgement of a file or webpage upload.
type CreatedFile struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

// FileList is the response of GET record. The backend keys entries by file
// id; older builds send a plain array.
type FileList struct {
	Files []FileInfo
}

func (l *FileList) UnmarshalJSON(b []byte) error {
	var body struct {
		Files json.RawMessage `json:"files"`
	}
	if err := json.Unmarshal(b, &body); err != nil {
		return err
	}
	if len(body.Files) == 0 || string(body.Files) == "null" {
		l.Files = nil
		return nil
	}

	var keyed map[string]FileInfo
	if err := json.Unmarshal(body.Files, &keyed); err == nil {
		l.Files = make([]FileInfo, 0, len(keyed))
		for _, info := range keyed {
			l.Files = append(l.Files, info)
		}
		sort.Slice(l.Files, func(i, j int) bool { return l.Files[i].File.Id < l.Files[j].File.Id })
		return nil
	}
	return json.Unmarshal(body.Files, &l.Files)
}
