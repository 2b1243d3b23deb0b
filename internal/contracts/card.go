package contracts

import (
	"github.com/shopspring/decimal"
)

type CardCreateRequest struct {
	Label       string `json:"label" binding:"required,max=100"`
	ClosingDay  int    `json:"closing_day" binding:"required,min=1,max=31"`
	DueDay      int    `json:"due_day" binding:"required,min=1,max=31"`
	ContextMode string `json:"context_mode" binding:"omitempty,oneof=PERSONAL BUSINESS MIXED"`
}

type CardUpdateRequest struct {
	Label       *string `json:"label" binding:"omitempty,max=100"`
	ClosingDay  *int    `json:"closing_day" binding:"omitempty,min=1,max=31"`
	DueDay      *int    `json:"due_day" binding:"omitempty,min=1,max=31"`
	ContextMode *string `json:"context_mode" binding:"omitempty,oneof=PERSONAL BUSINESS MIXED"`
}

// InstallmentPurchaseRequest recebe o total positivo da compra.
type InstallmentPurchaseRequest struct {
	Date         string          `json:"date" binding:"required,datetime=2006-01-02"`
	Description  string          `json:"description" binding:"required,max=255"`
	Total        decimal.Decimal `json:"total"`
	Installments int             `json:"installments" binding:"required,min=1,max=48"`
	Context      string          `json:"context" binding:"required,oneof=PERSONAL BUSINESS"`
	CategoryId   string          `json:"category_id" binding:"required"`
}
