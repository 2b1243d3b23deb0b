package staging

import (
	"time"

	"Fluxo/internal/domain/shared"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusIgnored  Status = "IGNORED"
)

// Item e uma linha importada de extrato aguardando classificacao.
// Depois de APPROVED ou IGNORED nao muda mais, exceto pela referencia
// a transacao criada.
type Item struct {
	Id                  ulid.ULID       `json:"id"`
	UserId              ulid.ULID       `json:"userId"`
	RawPayload          string          `json:"rawPayload,omitempty"`
	Date                time.Time       `json:"date"`
	Description         string          `json:"description"`
	Value               decimal.Decimal `json:"value"`
	CardLabel           *string         `json:"cardLabel,omitempty"`
	SuggestedContext    *shared.Context `json:"suggestedContext,omitempty"`
	SuggestedCategoryId *ulid.ULID      `json:"suggestedCategoryId,omitempty"`
	Status              Status          `json:"status"`
	DecidedContext      *shared.Context `json:"decidedContext,omitempty"`
	DecidedCategoryId   *ulid.ULID      `json:"decidedCategoryId,omitempty"`
	TransactionId       *ulid.ULID      `json:"transactionId,omitempty"`
	DecidedAt           *time.Time      `json:"decidedAt,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

func (i *Item) HasCardLabel() bool {
	return i.CardLabel != nil && *i.CardLabel != ""
}

// Decision e a classificacao confirmada pelo usuario para uma linha.
type Decision struct {
	StagingItemId     ulid.ULID
	DecidedContext    shared.Context
	DecidedCategoryId ulid.ULID
}

// NewItem e o formato recebido do importador de extratos.
type NewItem struct {
	RawPayload          string
	Date                time.Time
	Description         string
	Value               decimal.Decimal
	CardLabel           *string
	SuggestedContext    *shared.Context
	SuggestedCategoryId *ulid.ULID
}

// CreationResult descreve o que uma linha aprovada gerou.
type CreationResult struct {
	StagingItemId ulid.ULID  `json:"stagingItemId"`
	TransactionId ulid.ULID  `json:"transactionId"`
	InvoiceId     *ulid.ULID `json:"invoiceId,omitempty"`
	InvoiceItemId *ulid.ULID `json:"invoiceItemId,omitempty"`
	// CardLabelMissing indica apelido de cartao sem cartao correspondente.
	CardLabelMissing bool `json:"cardLabelMissing,omitempty"`
}

type RowFailure struct {
	StagingItemId ulid.ULID `json:"stagingItemId"`
	Code          string    `json:"code"`
	Message       string    `json:"message"`
}

type ApprovalReport struct {
	Results  []*CreationResult `json:"results"`
	Failures []*RowFailure     `json:"failures"`
}

// Partial indica que parte do lote falhou.
func (r *ApprovalReport) Partial() bool {
	return len(r.Failures) > 0
}
