package shared_test

import (
	"testing"

	"Fluxo/internal/domain/shared"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTypeFromValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, shared.Expense, shared.TypeFromValue(decimal.RequireFromString("-150.00")))
	assert.Equal(t, shared.Income, shared.TypeFromValue(decimal.RequireFromString("10")))
	assert.Equal(t, shared.Income, shared.TypeFromValue(decimal.Zero))
}

func TestSignedValue(t *testing.T) {
	t.Parallel()

	assert.True(t, shared.SignedValue(shared.Expense, decimal.NewFromInt(200)).Equal(decimal.NewFromInt(-200)))
	assert.True(t, shared.SignedValue(shared.Income, decimal.NewFromInt(-5)).Equal(decimal.NewFromInt(5)))
}

func TestNormalizeHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Nubank Roxinho", shared.NormalizeName("  nUBANK   roxinho "))
	assert.Equal(t, "Água", shared.NormalizeName("água"))
	assert.Equal(t, "nubank pj", shared.NormalizeLabel(" Nubank   PJ "))
}
