package contracts

type UserUpdateRequest struct {
	Name           *string `json:"name" binding:"omitempty,max=100"`
	DefaultContext *string `json:"default_context" binding:"omitempty,oneof=PERSONAL BUSINESS"`
}

type PasswordUpdateRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}
