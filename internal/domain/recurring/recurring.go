package recurring

import (
	"time"

	"Fluxo/internal/domain/shared"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// Item e um lancamento fixo mensal (aluguel, salario, assinaturas).
// Amount e sempre positivo; o sinal vem de Type.
type Item struct {
	Id          ulid.ULID        `json:"id"`
	UserId      ulid.ULID        `json:"userId"`
	Description string           `json:"description"`
	Type        shared.EntryType `json:"type"`
	Context     shared.Context   `json:"context"`
	CategoryId  ulid.ULID        `json:"categoryId"`
	Amount      decimal.Decimal  `json:"amount"`
	DueDay      int              `json:"dueDay"`
	IsActive    bool             `json:"isActive"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Run marca que a competencia Period ja foi gerada para o usuario.
type Run struct {
	UserId    ulid.ULID
	Period    string
	Created   int
	CreatedAt time.Time
}

type MaterializationResult struct {
	Period           string `json:"period"`
	Created          int    `json:"created"`
	Skipped          int    `json:"skipped"`
	AlreadyProcessed bool   `json:"alreadyProcessed"`
}

const descriptionPrefix = "Lançamento fixo: "
