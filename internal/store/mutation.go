package store

import (
	"knaxim-client/internal/dto"

	"github.com/google/uuid"
)

// MutationKind names a synchronous state transition. Every module sees
// every committed mutation and applies the kinds it handles.
type MutationKind int

const (
	ServerLoading MutationKind = iota
	SetUser
	PurgeAuth
	AuthLoading
	ProcessServerState
	FileLoading
	SetFile
	FolderLoading
	SetFolder
	FolderAdd
	FolderRemove
	DropFolder
	ActivateFolder
	DeactivateFolder
	ActivateGroup
	GroupLoading
	SetGroup
	OwnerLoading
	SetOwnerName
	SearchLoading
	NewSearch
	DeactivateSearch
	SetMatches
	LoadingMatchedLines
	SetMatchedLines
	CancelSearch
	AcronymLoading
	SetAcronyms
	PreviewLoading
	SetPreview
	NLPLoading
	SetNLP
	Touch
	PushError
	PopError
	ResetErrors
	EventOn
	EventOff

	mutationKindCount
)

var mutationNames = [mutationKindCount]string{
	ServerLoading:       "SERVER_LOADING",
	SetUser:             "SET_USER",
	PurgeAuth:           "PURGE_AUTH",
	AuthLoading:         "AUTH_LOADING",
	ProcessServerState:  "PROCESS_SERVER_STATE",
	FileLoading:         "FILE_LOADING",
	SetFile:             "SET_FILE",
	FolderLoading:       "FOLDER_LOADING",
	SetFolder:           "SET_FOLDER",
	FolderAdd:           "FOLDER_ADD",
	FolderRemove:        "FOLDER_REMOVE",
	DropFolder:          "DROP_FOLDER",
	ActivateFolder:      "ACTIVATE_FOLDER",
	DeactivateFolder:    "DEACTIVATE_FOLDER",
	ActivateGroup:       "ACTIVATE_GROUP",
	GroupLoading:        "GROUP_LOADING",
	SetGroup:            "SET_GROUP",
	OwnerLoading:        "OWNER_LOADING",
	SetOwnerName:        "SET_OWNER_NAME",
	SearchLoading:       "SEARCH_LOADING",
	NewSearch:           "NEW_SEARCH",
	DeactivateSearch:    "DEACTIVATE_SEARCH",
	SetMatches:          "SET_MATCHES",
	LoadingMatchedLines: "LOADING_MATCHED_LINES",
	SetMatchedLines:     "SET_MATCHED_LINES",
	CancelSearch:        "CANCEL_SEARCH",
	AcronymLoading:      "LOADING_ACRONYMS",
	SetAcronyms:         "SET_ACRONYMS",
	PreviewLoading:      "LOADING_PREVIEW",
	SetPreview:          "SET_PREVIEW",
	NLPLoading:          "LOADING_NLP",
	SetNLP:              "SET_NLP",
	Touch:               "TOUCH",
	PushError:           "PUSH_ERROR",
	PopError:            "POP_ERROR",
	ResetErrors:         "RESET_ERROR",
	EventOn:             "ON",
	EventOff:            "OFF",
}

func (k MutationKind) String() string {
	if k < 0 || k >= mutationKindCount {
		return "UNKNOWN_MUTATION"
	}
	return mutationNames[k]
}

type Mutation struct {
	Kind    MutationKind
	Payload any
}

// Payloads. Loading kinds without a target carry a plain int delta.

type FolderPayload struct {
	Group string // empty for the user scope
	Name  string
	Files []string
}

type FolderFile struct {
	Group  string
	Name   string
	FileId string
}

type OwnerName struct {
	Id   string
	Name string
}

// Matches is dropped unless Ticket is the live search.
type Matches struct {
	Ticket uuid.UUID
	Files  []dto.FileRecord
}

type LineDelta struct {
	Id    string
	Delta int
}

type MatchedLines struct {
	Id    string
	Lines []dto.ContentLine
}

type PreviewLines struct {
	Id    string
	Lines []string
}

type NLPPayload struct {
	Fid      string
	Category Category
	Start    int
	Info     []dto.NLPTag
}

type EventHandler struct {
	Event   string
	Handler Handler
}

// module is one slice of state. mutate applies m under the module lock and
// reports whether the kind was handled. reset restores initial state but
// keeps loading counters, which in-flight actions still decrement.
type module interface {
	name() string
	mutate(m Mutation) bool
	reset()
}
