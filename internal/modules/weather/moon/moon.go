// Package moon estimates the lunar phase for a calendar date. The formula is a
// low precision synodic-cycle approximation, good enough for a dashboard tile.
package moon

import (
	"math"
	"time"
)

const synodicMonth = 29.5305882

// illumination is indexed by phase bucket; waxing and waning buckets share a value.
var illumination = [8]int{0, 25, 50, 75, 100, 75, 50, 25}

type Phase struct {
	// Index is 0 (new) through 4 (full) back to 7 (waning crescent).
	Index        int `json:"index"`
	Illumination int `json:"illumination"`
}

func (p Phase) Waxing() bool {
	return p.Index >= 1 && p.Index <= 3
}

// Estimate returns the phase bucket for the given local calendar date.
func Estimate(year, month, day int) Phase {
	if month < 3 {
		year--
		month += 12
	}
	month++

	jd := 365.25*float64(year) + 30.6*float64(month) + float64(day) - 694039.09
	cycles := jd / synodicMonth
	idx := bucket(cycles - math.Trunc(cycles))
	return Phase{Index: idx, Illumination: illumination[idx]}
}

// ForDate uses the calendar date of t in its own location.
func ForDate(t time.Time) Phase {
	y, m, d := t.Date()
	return Estimate(y, int(m), d)
}

func bucket(fraction float64) int {
	b := int(math.Round(fraction * 8))
	if b >= 8 || b < 0 {
		return 0
	}
	return b
}
