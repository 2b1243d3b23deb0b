package card

import (
	"time"

	"Fluxo/internal/pkg"
)

// BucketMonth devolve o mes (primeiro dia) da fatura que recebe uma compra
// feita em date: ate o dia de fechamento fica no proprio mes, depois vai
// para o mes seguinte.
func BucketMonth(date time.Time, closingDay int) time.Time {
	if date.Day() > closingDay {
		return pkg.AddMonths(date, 1)
	}
	return pkg.FirstOfMonth(date)
}

// BucketKey e a competencia (YYYY-MM) de BucketMonth.
func BucketKey(date time.Time, closingDay int) string {
	return pkg.MonthKey(BucketMonth(date, closingDay))
}

// DueDateFor calcula o vencimento da fatura do mes informado. Se o vencimento
// cai depois do fechamento, vence no proprio mes; senao no mes seguinte.
func DueDateFor(month time.Time, closingDay, dueDay int) time.Time {
	target := pkg.FirstOfMonth(month)
	if dueDay <= closingDay {
		target = pkg.AddMonths(target, 1)
	}
	return pkg.DateInMonth(target.Year(), target.Month(), dueDay, time.UTC)
}
