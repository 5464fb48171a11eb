// Package format converts between stored values and the strings shown to
// users: DD/MM/YYYY dates, MM/YYYY month keys and Portuguese month names.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout     = "02/01/2006"
	MonthKeyLayout = "01/2006"
)

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// Date formats t as DD/MM/YYYY.
func Date(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a DD/MM/YYYY string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// ValidDate reports whether s is a real DD/MM/YYYY calendar date.
func ValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// MonthKey returns the MM/YYYY grouping key for t.
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

// MonthKeyFrom builds a MM/YYYY key from separate month and year values,
// zero padding the month ("3", "2024" -> "03/2024").
func MonthKeyFrom(month, year string) (string, error) {
	m, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil || m < 1 || m > 12 {
		return "", fmt.Errorf("invalid month %q", month)
	}
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil || y < 1000 || y > 9999 {
		return "", fmt.Errorf("invalid year %q", year)
	}
	return fmt.Sprintf("%02d/%d", m, y), nil
}

// SplitMonthKey returns the month and year parts of a MM/YYYY key.
func SplitMonthKey(key string) (month, year string, ok bool) {
	month, year, ok = strings.Cut(key, "/")
	if !ok || len(month) != 2 || len(year) != 4 {
		return "", "", false
	}
	return month, year, true
}

// MonthName returns the Portuguese name of month m (1-12).
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthNames[m-1]
}

// MonthKeyLong renders "03/2024" as "Março de 2024". Unparseable keys are
// returned unchanged.
func MonthKeyLong(key string) string {
	month, year, ok := SplitMonthKey(key)
	if !ok {
		return key
	}
	m, _ := strconv.Atoi(month)
	name := MonthName(m)
	if name == "" {
		return key
	}
	return name + " de " + year
}

// DateMonthHeading renders the month of a DD/MM/YYYY date as "Março / 2024".
func DateMonthHeading(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s / %d", MonthName(int(t.Month())), t.Year())
}

// CompareMonthKeys orders MM/YYYY keys chronologically.
func CompareMonthKeys(a, b string) int {
	am, ay, aok := SplitMonthKey(a)
	bm, by, bok := SplitMonthKey(b)
	if !aok || !bok {
		return strings.Compare(a, b)
	}
	if c := strings.Compare(ay, by); c != 0 {
		return c
	}
	return strings.Compare(am, bm)
}
