package contracts

type CategoryCreateRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Type string `json:"type" binding:"required,oneof=INCOME EXPENSE"`
}

type CategoryUpdateRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	IsActive *bool   `json:"is_active" binding:"omitempty"`
}
