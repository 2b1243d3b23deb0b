package shared

import (
	"context"

	"github.com/oklog/ulid/v2"
)

type UserChecker interface {
	Exists(ctx context.Context, userID ulid.ULID) error
}

// Transactor executa fn dentro de uma unica transacao de banco.
// Chamadas aninhadas reaproveitam a transacao ja presente no contexto.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoopTransactor executa fn diretamente. Usado em testes e ferramentas.
type NoopTransactor struct{}

func (NoopTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
