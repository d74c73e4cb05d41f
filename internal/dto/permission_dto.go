package dto

type PermissionInfo struct {
	Owner      string              `json:"owner"`
	IsOwned    bool                `json:"isOwned"`
	Permission map[string][]string `json:"permission,omitempty"`
}

type ShareRequest struct {
	FileId  string   `validate:"required"`
	Targets []string `validate:"required,min=1,dive,required"`
}
