package pkg

import (
	"fmt"
	"time"
)

// MonthKeyLayout e o formato das chaves de competencia (ex.: 2025-03).
const MonthKeyLayout = "2006-01"

// MonthKey devolve a competencia (YYYY-MM) de t.
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

func ParseMonthKey(key string) (time.Time, error) {
	t, err := time.Parse(MonthKeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("competencia invalida %q: %w", key, err)
	}
	return t, nil
}

// FirstOfMonth devolve o primeiro dia do mes de t, na mesma location.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// AddMonths soma n meses partindo do primeiro dia do mes, sem overflow de dia.
func AddMonths(t time.Time, n int) time.Time {
	return FirstOfMonth(t).AddDate(0, n, 0)
}

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateInMonth monta a data (year, month, day) limitando day ao ultimo dia do mes.
func DateInMonth(year int, month time.Month, day int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	if day < 1 {
		day = 1
	}
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// MonthRange devolve [inicio, fim) do mes de t.
func MonthRange(t time.Time) (time.Time, time.Time) {
	start := FirstOfMonth(t)
	return start, start.AddDate(0, 1, 0)
}

// TruncateDay zera o horario mantendo a data.
func TruncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CalendarDay devolve a data de t como meia-noite UTC, o mesmo formato das
// colunas date lidas do banco.
func CalendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
