package card

import (
	"time"

	"Fluxo/internal/domain/shared"
	appErrors "Fluxo/internal/errors"

	"github.com/oklog/ulid/v2"
)

type ContextMode string

const (
	ContextPersonal ContextMode = "PERSONAL"
	ContextBusiness ContextMode = "BUSINESS"
	ContextMixed    ContextMode = "MIXED"
)

func (m ContextMode) IsValid() bool {
	switch m {
	case ContextPersonal, ContextBusiness, ContextMixed:
		return true
	}
	return false
}

// Allows informa se lancamentos do contexto c podem entrar num cartao deste
// modo. Cartoes MIXED aceitam os dois.
func (m ContextMode) Allows(c shared.Context) bool {
	switch m {
	case ContextPersonal:
		return c == shared.Personal
	case ContextBusiness:
		return c == shared.Business
	}
	return true
}

type Card struct {
	Id          ulid.ULID   `json:"id"`
	UserId      ulid.ULID   `json:"userId"`
	Label       string      `json:"label"`
	ClosingDay  int         `json:"closingDay"`
	DueDay      int         `json:"dueDay"`
	ContextMode ContextMode `json:"contextMode"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func (c *Card) CheckContext(entryContext shared.Context) error {
	if c.ContextMode.Allows(entryContext) {
		return nil
	}
	return appErrors.NewValidationError("context", "contexto incompativel com o cartao").
		WithDetails(map[string]interface{}{
			"card_id":      c.Id.String(),
			"context_mode": string(c.ContextMode),
			"context":      string(entryContext),
		})
}
