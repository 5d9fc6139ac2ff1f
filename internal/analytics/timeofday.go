package analytics

import (
	"strconv"
	"strings"
)

// minutesPerDay is added to an end-of-range value whenever the business day
// wraps past midnight.
const minutesPerDay = 24 * 60

// ToMinutes parses an "HH:MM" wall-clock value into minutes since midnight.
// It is a pure lexical parse: "00:00" maps to 0 here, and the overnight
// wraparound is applied by the caller through SpanMinutes or GridBounds.
// Malformed or missing input yields 0, since attendance data is frequently
// incomplete.
func ToMinutes(text string) int {
	parts := strings.SplitN(strings.TrimSpace(text), ":", 2)
	if len(parts) != 2 {
		return 0
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0
	}
	return hours*60 + minutes
}

// SpanMinutes returns the duration in minutes between two "HH:MM" values,
// treating an end numerically ≤ the start as occurring on the next calendar
// day. Shift spans, transaction spans, and grid-cell placement all share this
// single rule; divergent copies of it were a known source of off-by-one-day
// bugs in the system this replaces.
func SpanMinutes(start, end string) int {
	startMin := ToMinutes(start)
	endMin := ToMinutes(end)
	if endMin <= startMin {
		endMin += minutesPerDay
	}
	return endMin - startMin
}

// GridBounds maps shop open/close hours onto a minute axis for the attendance
// grid. A close time numerically ≤ the open time (including the "00:00"
// end-of-service-day convention) belongs to the next calendar day.
func GridBounds(open, close string) (int, int) {
	openMin := ToMinutes(open)
	closeMin := ToMinutes(close)
	if closeMin <= openMin {
		closeMin += minutesPerDay
	}
	return openMin, closeMin
}
