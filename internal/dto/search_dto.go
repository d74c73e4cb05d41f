package dto

type SearchResponse struct {
	Matched []FileInfo `json:"matched"`
}

// SearchContext scopes a tag search to an owner.
type SearchContext struct {
	Type string `json:"type"`
	Id   string `json:"id"`
	Only string `json:"only,omitempty"` // "owned", "viewable" or empty for all
}

type MatchCondition struct {
	TagType string `json:"tagtype,omitempty"`
	Word    string `json:"word"`
	Regex   bool   `json:"regex,omitempty"`
	Owner   string `json:"owner,omitempty"`
}

// TagSearchRequest is the JSON body of search/tags. Match is either a plain
// string or a list of MatchCondition.
type TagSearchRequest struct {
	Context []SearchContext `json:"context" validate:"required,min=1"`
	Match   any             `json:"match" validate:"required"`
}

type SearchScope struct {
	Find   string `validate:"required"`
	Group  string
	Folder string
}

type AcronymResponse struct {
	Matched []string `json:"matched"`
}
