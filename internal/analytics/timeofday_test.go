package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToMinutes(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
	}{
		{name: "morning", in: "10:00", want: 600},
		{name: "midnight", in: "00:00", want: 0},
		{name: "past midnight lexical", in: "25:30", want: 1530},
		{name: "padded", in: " 09:05 ", want: 545},
		{name: "missing colon", in: "1000", want: 0},
		{name: "empty", in: "", want: 0},
		{name: "garbage hours", in: "ab:10", want: 0},
		{name: "minutes out of range", in: "10:75", want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ToMinutes(tc.in))
		})
	}
}

func TestSpanMinutes(t *testing.T) {
	cases := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{name: "same day", start: "10:00", end: "18:00", want: 480},
		{name: "ends at midnight", start: "23:30", end: "00:00", want: 30},
		{name: "crosses midnight", start: "22:00", end: "02:00", want: 240},
		{name: "equal times wrap a full day", start: "10:00", end: "10:00", want: 1440},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SpanMinutes(tc.start, tc.end))
		})
	}
}

func TestGridBounds(t *testing.T) {
	open, close := GridBounds("10:00", "00:00")
	assert.Equal(t, 600, open)
	assert.Equal(t, 1440, close)

	open, close = GridBounds("09:00", "21:00")
	assert.Equal(t, 540, open)
	assert.Equal(t, 1260, close)
}
