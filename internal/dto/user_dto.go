package dto

type UserData struct {
	Current int64 `json:"current"`
	Total   int64 `json:"total"`
}

// User is the record returned by login, info and name lookup.
type User struct {
	Id    string   `json:"id"`
	Name  string   `json:"name"`
	Roles []string `json:"roles,omitempty"`
	Data  UserData `json:"data"`
}

type LoginRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"pass" validate:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"pass" validate:"required,min=6"`
	Email    string `json:"email" validate:"required,email"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldpass" validate:"required"`
	NewPassword string `json:"newpass" validate:"required,min=6,nefield=OldPassword"`
}

type ResetRequest struct {
	Name string `json:"name" validate:"required"`
}

type ResetPasswordRequest struct {
	Key         string `json:"key" validate:"required"`
	NewPassword string `json:"newpass" validate:"required,min=6"`
}

// Message is the generic {"message": ...} acknowledgement.
type Message struct {
	Message string `json:"message"`
}
