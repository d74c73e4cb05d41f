package dto

type OwnedFiles struct {
	Own  []string `json:"own"`
	View []string `json:"view"`
}

type Affiliations struct {
	Own    []string `json:"own"`
	Member []string `json:"member"`
}

type UserProfile struct {
	Id      string       `json:"id"`
	Name    string       `json:"name"`
	Groups  Affiliations `json:"groups"`
	Folders []string     `json:"folders"`
	Files   OwnedFiles   `json:"files"`
	Roles   []string     `json:"roles"`
	Data    UserData     `json:"data"`
}

type GroupProfile struct {
	Id      string       `json:"id"`
	Name    string       `json:"name"`
	Owner   string       `json:"owner"`
	IsOwned bool         `json:"isOwned"`
	Members []string     `json:"members"`
	Groups  Affiliations `json:"groups"`
	Folders []string     `json:"folders"`
	Files   OwnedFiles   `json:"files"`
}

// CompleteProfile is the payload of GET user/complete, everything the client
// needs to bootstrap its caches.
type CompleteProfile struct {
	User   UserProfile             `json:"user"`
	Public []string                `json:"public"`
	Groups map[string]GroupProfile `json:"groups"`
	Files  map[string]FileRecord   `json:"files"`
}
