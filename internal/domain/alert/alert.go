package alert

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type SourceType string

const (
	SourceTransaction SourceType = "TRANSACTION"
	SourceInvoice     SourceType = "INVOICE"
)

func (t SourceType) IsValid() bool {
	return t == SourceTransaction || t == SourceInvoice
}

// DueItem e um compromisso ainda nao quitado dentro da janela de alerta.
// Amount segue o sinal da transacao; para faturas e o valor devido.
type DueItem struct {
	SourceType   SourceType      `json:"sourceType"`
	SourceId     ulid.ULID       `json:"sourceId"`
	Description  string          `json:"description"`
	DueDate      time.Time       `json:"dueDate"`
	Amount       decimal.Decimal `json:"amount"`
	Overdue      bool            `json:"overdue"`
	DaysUntilDue int             `json:"daysUntilDue"`
}
