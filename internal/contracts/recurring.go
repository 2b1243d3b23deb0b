package contracts

import (
	"github.com/shopspring/decimal"
)

type RecurringCreateRequest struct {
	Description string          `json:"description" binding:"required,max=255"`
	Type        string          `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Context     string          `json:"context" binding:"required,oneof=PERSONAL BUSINESS"`
	CategoryId  string          `json:"category_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	DueDay      int             `json:"due_day" binding:"required,min=1,max=31"`
}

type RecurringUpdateRequest struct {
	Description *string          `json:"description" binding:"omitempty,max=255"`
	Type        *string          `json:"type" binding:"omitempty,oneof=INCOME EXPENSE"`
	Context     *string          `json:"context" binding:"omitempty,oneof=PERSONAL BUSINESS"`
	CategoryId  *string          `json:"category_id" binding:"omitempty"`
	Amount      *decimal.Decimal `json:"amount"`
	DueDay      *int             `json:"due_day" binding:"omitempty,min=1,max=31"`
	IsActive    *bool            `json:"is_active" binding:"omitempty"`
}
