package dto

type GroupInfo struct {
	Id      string   `json:"id"`
	Name    string   `json:"name"`
	Owner   string   `json:"owner,omitempty"`
	Members []string `json:"members,omitempty"`
}

type GroupOptions struct {
	Own    []GroupInfo `json:"own"`
	Member []GroupInfo `json:"member"`
}

type CreateGroupRequest struct {
	Name  string `validate:"required"`
	Group string
}

type MemberRequest struct {
	Group   string   `validate:"required"`
	Members []string `validate:"required,min=1,dive,required"`
}

const (
	OwnerTypeUser   = "user"
	OwnerTypeGroup  = "group"
	OwnerTypePublic = "public"
)

type OwnerInfo struct {
	Id   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}
