package analytics

import "math"

// Trend pairs a signed delta with a percentage change. When the prior value is
// zero and the current is not, the change is an "infinite increase": Percent
// is omitted and Infinite is set, so the presentation layer never renders a
// finite stand-in.
type Trend struct {
	Delta    float64  `json:"delta"`
	Percent  *float64 `json:"percent,omitempty"`
	Infinite bool     `json:"infinite,omitempty"`
}

// Compare computes the delta and percentage change from prior to current.
// Every metric pair goes through this one function; no metric gets bespoke
// rounding.
func Compare(current, prior float64) Trend {
	trend := Trend{Delta: current - prior}
	switch {
	case prior == 0 && current == 0:
		zero := 0.0
		trend.Percent = &zero
	case prior == 0:
		trend.Infinite = true
	default:
		pct := round1((current - prior) / prior * 100)
		trend.Percent = &pct
	}
	return trend
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
