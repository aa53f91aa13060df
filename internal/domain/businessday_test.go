package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddBusinessDays(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		n     int
		want  time.Time
	}{
		{"friday plus one skips weekend", date(2024, time.March, 1), 1, date(2024, time.March, 4)},
		{"monday plus five is next monday", date(2024, time.March, 4), 5, date(2024, time.March, 11)},
		{"zero days is identity", date(2024, time.March, 4), 0, date(2024, time.March, 4)},
		{"saturday start lands on monday", date(2024, time.March, 2), 1, date(2024, time.March, 4)},
		{"spans two weekends", date(2024, time.March, 4), 10, date(2024, time.March, 18)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddBusinessDays(tt.start, tt.n))
		})
	}
}

func TestBusinessDayDiff(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{"same day", date(2024, time.March, 4), date(2024, time.March, 4), 0},
		{"friday to monday", date(2024, time.March, 1), date(2024, time.March, 4), 1},
		{"full week", date(2024, time.March, 4), date(2024, time.March, 11), 5},
		{"negative direction", date(2024, time.March, 11), date(2024, time.March, 4), -5},
		{"saturday to sunday", date(2024, time.March, 2), date(2024, time.March, 3), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BusinessDayDiff(tt.from, tt.to))
		})
	}
}

func TestBusinessDayDiffIgnoresTimeOfDay(t *testing.T) {
	from := time.Date(2024, time.March, 4, 23, 30, 0, 0, time.UTC)
	to := time.Date(2024, time.March, 5, 0, 15, 0, 0, time.UTC)
	assert.Equal(t, 1, BusinessDayDiff(from, to))
}

func TestBusinessDayRoundTrip(t *testing.T) {
	start := date(2024, time.March, 6)
	for n := 1; n <= 30; n++ {
		end := AddBusinessDays(start, n)
		assert.Equal(t, n, BusinessDayDiff(start, end), "n=%d", n)
	}
}
