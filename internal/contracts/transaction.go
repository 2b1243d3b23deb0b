package contracts

import (
	"github.com/shopspring/decimal"
)

// TransactionCreateRequest recebe o valor assinado: negativo para saidas.
type TransactionCreateRequest struct {
	Date        string          `json:"date" binding:"required,datetime=2006-01-02"`
	Description string          `json:"description" binding:"required,max=255"`
	Value       decimal.Decimal `json:"value"`
	Type        string          `json:"type" binding:"omitempty,oneof=INCOME EXPENSE"`
	Context     string          `json:"context" binding:"omitempty,oneof=PERSONAL BUSINESS"`
	CategoryId  string          `json:"category_id" binding:"required"`
}

type TransactionListQuery struct {
	From       string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To         string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	CategoryId string `form:"category_id" binding:"omitempty"`
	Context    string `form:"context" binding:"omitempty,oneof=PERSONAL BUSINESS"`
	Status     string `form:"status" binding:"omitempty,oneof=PENDING PAID RECEIVED"`
	Type       string `form:"type" binding:"omitempty,oneof=INCOME EXPENSE"`
}
