package shared

import (
	"github.com/shopspring/decimal"
)

// EntryType separa entradas de saidas.
type EntryType string

const (
	Income  EntryType = "INCOME"
	Expense EntryType = "EXPENSE"
)

func (t EntryType) IsValid() bool {
	switch t {
	case Income, Expense:
		return true
	}
	return false
}

// Context e a dimensao pessoal/empresa de todos os registros financeiros.
type Context string

const (
	Personal Context = "PERSONAL"
	Business Context = "BUSINESS"
)

func (c Context) IsValid() bool {
	switch c {
	case Personal, Business:
		return true
	}
	return false
}

// TypeFromValue infere o tipo pelo sinal: valores nao negativos sao entradas.
func TypeFromValue(value decimal.Decimal) EntryType {
	if value.IsNegative() {
		return Expense
	}
	return Income
}

// SignedValue aplica o sinal do tipo a um valor absoluto.
func SignedValue(t EntryType, amount decimal.Decimal) decimal.Decimal {
	amount = amount.Abs()
	if t == Expense {
		return amount.Neg()
	}
	return amount
}
