package service

import (
	"time"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
)

// Named date ranges offered by the sales pages
const (
	RangeToday     = "today"
	RangeYesterday = "yesterday"
	RangeWeek      = "week"
	RangeMonth     = "month"
	RangeAll       = "all"
)

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// period resolves a named range to [from, to). "week" and "month" reach back
// 7 and 30 days from the start of today.
func period(name string, now time.Time) (from, to time.Time, ok bool) {
	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	switch name {
	case RangeToday:
		return today, tomorrow, true
	case RangeYesterday:
		return today.AddDate(0, 0, -1), today, true
	case RangeWeek:
		return today.AddDate(0, 0, -7), tomorrow, true
	case RangeMonth:
		return today.AddDate(0, 0, -30), tomorrow, true
	default:
		return time.Time{}, time.Time{}, false
	}
}

func salesBetween(sales []model.Sale, from, to time.Time) []model.Sale {
	out := make([]model.Sale, 0, len(sales))
	for _, s := range sales {
		if !s.CreatedAt.Before(from) && s.CreatedAt.Before(to) {
			out = append(out, s)
		}
	}
	return out
}
