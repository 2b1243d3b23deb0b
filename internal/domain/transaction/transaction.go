package transaction

import (
	"time"

	"Fluxo/internal/domain/shared"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusPaid     Status = "PAID"
	StatusReceived Status = "RECEIVED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusReceived:
		return true
	}
	return false
}

// Transaction e um evento financeiro. O valor e assinado: positivo para
// entradas, negativo para saidas. Depois de criada so muda de status.
type Transaction struct {
	Id              ulid.ULID        `json:"id"`
	UserId          ulid.ULID        `json:"userId"`
	Date            time.Time        `json:"date"`
	Description     string           `json:"description"`
	Value           decimal.Decimal  `json:"value"`
	Type            shared.EntryType `json:"type"`
	Context         shared.Context   `json:"context"`
	CategoryId      ulid.ULID        `json:"categoryId"`
	Status          Status           `json:"status"`
	RecurringItemId *ulid.ULID       `json:"recurringItemId,omitempty"`
	RecurringPeriod *string          `json:"recurringPeriod,omitempty"`
	StagingItemId   *ulid.ULID       `json:"stagingItemId,omitempty"`
	SettledAt       *time.Time       `json:"settledAt,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// SettledStatus e o status final de acordo com o tipo.
func (t *Transaction) SettledStatus() Status {
	if t.Type == shared.Expense {
		return StatusPaid
	}
	return StatusReceived
}

// Filter restringe listagens. Campos nil nao filtram.
type Filter struct {
	From       *time.Time
	To         *time.Time
	CategoryId *ulid.ULID
	Context    *shared.Context
	Status     *Status
	Type       *shared.EntryType
}
