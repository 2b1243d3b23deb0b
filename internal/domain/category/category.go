package category

import (
	"crypto/sha256"
	"time"

	"Fluxo/internal/domain/shared"

	"github.com/oklog/ulid/v2"
)

type Category struct {
	Id        ulid.ULID        `json:"id"`
	UserId    ulid.ULID        `json:"userId"`
	Name      string           `json:"name"`
	Type      shared.EntryType `json:"type"`
	IsActive  bool             `json:"isActive"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

type DefaultCategoryDefinition struct {
	Name string
	Type shared.EntryType
}

var DefaultCategories = []DefaultCategoryDefinition{
	{Name: "Alimentação", Type: shared.Expense},
	{Name: "Transporte", Type: shared.Expense},
	{Name: "Saúde", Type: shared.Expense},
	{Name: "Educação", Type: shared.Expense},
	{Name: "Lazer", Type: shared.Expense},
	{Name: "Moradia", Type: shared.Expense},
	{Name: "Compras", Type: shared.Expense},
	{Name: "Contas", Type: shared.Expense},
	{Name: "Impostos", Type: shared.Expense},
	{Name: "Fornecedores", Type: shared.Expense},
	{Name: "Salário", Type: shared.Income},
	{Name: "Pró-labore", Type: shared.Income},
	{Name: "Vendas", Type: shared.Income},
	{Name: "Outros", Type: shared.Expense},
}

// DefaultCategoriesForUser monta as categorias padrao com ids deterministicos,
// de modo que semear duas vezes nao duplica registros.
func DefaultCategoriesForUser(userID ulid.ULID, now time.Time) []*Category {
	categories := make([]*Category, 0, len(DefaultCategories))
	for _, def := range DefaultCategories {
		categories = append(categories, &Category{
			Id:        deterministicID(userID.String(), def.Name),
			UserId:    userID,
			Name:      def.Name,
			Type:      def.Type,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return categories
}

func deterministicID(userID, name string) ulid.ULID {
	hash := sha256.Sum256([]byte("default_category:" + userID + ":" + name))

	var id ulid.ULID
	if err := id.SetTime(ulid.Timestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))); err != nil {
		panic(err)
	}
	if err := id.SetEntropy(hash[:10]); err != nil {
		panic(err)
	}
	return id
}
