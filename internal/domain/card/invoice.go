package card

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceOpen   InvoiceStatus = "OPEN"
	InvoiceClosed InvoiceStatus = "CLOSED"
	InvoicePaid   InvoiceStatus = "PAID"
)

func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceOpen, InvoiceClosed, InvoicePaid:
		return true
	}
	return false
}

// CanTransitionTo segue OPEN -> CLOSED -> PAID, com CLOSED -> OPEN para reabrir.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	switch s {
	case InvoiceOpen:
		return next == InvoiceClosed
	case InvoiceClosed:
		return next == InvoiceOpen || next == InvoicePaid
	}
	return false
}

// Invoice e a fatura mensal de um cartao. Month segue o formato YYYY-MM.
type Invoice struct {
	Id        ulid.ULID     `json:"id"`
	CardId    ulid.ULID     `json:"cardId"`
	UserId    ulid.ULID     `json:"userId"`
	Month     string        `json:"month"`
	Status    InvoiceStatus `json:"status"`
	DueDate   time.Time     `json:"dueDate"`
	ClosedAt  *time.Time    `json:"closedAt,omitempty"`
	PaidAt    *time.Time    `json:"paidAt,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// InvoiceItem liga uma transacao a uma fatura.
type InvoiceItem struct {
	Id                ulid.ULID  `json:"id"`
	InvoiceId         ulid.ULID  `json:"invoiceId"`
	TransactionId     ulid.ULID  `json:"transactionId"`
	InstallmentOf     *ulid.ULID `json:"installmentOf,omitempty"`
	InstallmentNumber int        `json:"installmentNumber"`
	InstallmentTotal  int        `json:"installmentTotal"`
	CreatedAt         time.Time  `json:"createdAt"`
}

type Installment struct {
	Of     *ulid.ULID
	Number int
	Total  int
}

// SingleInstallment e a compra a vista (1 de 1).
func SingleInstallment() Installment {
	return Installment{Number: 1, Total: 1}
}

// InvoiceLine e um item de fatura com os dados da transacao.
type InvoiceLine struct {
	InvoiceItem
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
}

type InvoiceDetails struct {
	Invoice *Invoice        `json:"invoice"`
	Lines   []*InvoiceLine  `json:"lines"`
	Total   decimal.Decimal `json:"total"`
}

// InvoiceSummary e usado nos alertas de vencimento.
type InvoiceSummary struct {
	Invoice   *Invoice
	CardLabel string
	Total     decimal.Decimal
}

// OutstandingFrom converte a soma assinada dos itens em valor devido:
// compras (negativas) aumentam, estornos (positivos) reduzem.
func OutstandingFrom(sum decimal.Decimal) decimal.Decimal {
	return sum.Neg()
}
