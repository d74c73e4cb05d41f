package dto

type FolderList struct {
	Folders []string `json:"folders"`
}

type FolderInfo struct {
	Name  string   `json:"name"`
	Files []string `json:"files"`
}

type CreateFolderRequest struct {
	Name    string `validate:"required"`
	Content []string
	Group   string
}

// FolderContentRequest adds or removes files from a folder.
type FolderContentRequest struct {
	Name    string   `validate:"required"`
	FileIds []string `validate:"required,min=1,dive,required"`
	Group   string
}
