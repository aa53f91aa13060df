package domain

import "time"

// AddBusinessDays advances start by n business days. Saturday and Sunday
// are non-business; no holiday calendar is applied.
func AddBusinessDays(start time.Time, n int) time.Time {
	result := start
	for n > 0 {
		result = result.AddDate(0, 0, 1)
		if isBusinessDay(result) {
			n--
		}
	}
	return result
}

// BusinessDayDiff counts business days between from and to. The sign
// indicates direction: positive when to is after from.
func BusinessDayDiff(from, to time.Time) int {
	from = truncateToDay(from)
	to = truncateToDay(to)
	if from.Equal(to) {
		return 0
	}
	sign := 1
	if to.Before(from) {
		from, to = to, from
		sign = -1
	}
	count := 0
	for cursor := from.AddDate(0, 0, 1); !cursor.After(to); cursor = cursor.AddDate(0, 0, 1) {
		if isBusinessDay(cursor) {
			count++
		}
	}
	return sign * count
}

func isBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
