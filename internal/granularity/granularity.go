// Package granularity defines the calendar granularities a periodic
// note can represent and their coarseness order.
package granularity

import (
	"strings"
	"time"
)

// Granularity is the calendar unit a periodic note covers.
type Granularity string

// Granularities, finest to coarsest.
const (
	Day     Granularity = "day"
	Week    Granularity = "week"
	Month   Granularity = "month"
	Quarter Granularity = "quarter"
	Year    Granularity = "year"
)

// Ladder lists all granularities in coarseness order (finest first).
var Ladder = []Granularity{Day, Week, Month, Quarter, Year}

var ranks = map[Granularity]int{
	Day:     0,
	Week:    1,
	Month:   2,
	Quarter: 3,
	Year:    4,
}

// Valid reports whether g is one of the known granularities.
func (g Granularity) Valid() bool {
	_, ok := ranks[g]
	return ok
}

// Rank returns g's position on the coarseness ladder (day=0 … year=4).
func (g Granularity) Rank() int {
	return ranks[g]
}

// AtOrCoarser reports whether g is at or above other on the ladder.
func (g Granularity) AtOrCoarser(other Granularity) bool {
	return ranks[g] >= ranks[other]
}

// Parse maps a unit word ("day", "weeks", "Quarter", …) to its
// granularity. Plural and mixed-case spellings are accepted; spelling
// strictness is the resolver's concern, not this function's.
func Parse(unit string) (Granularity, bool) {
	g := Granularity(strings.TrimSuffix(strings.ToLower(unit), "s"))
	if !g.Valid() {
		return "", false
	}
	return g, true
}

// Add shifts t by n units of g. Week moves in 7-day steps and quarter
// in 3-month steps; everything else maps directly onto AddDate.
func (g Granularity) Add(t time.Time, n int) time.Time {
	switch g {
	case Day:
		return t.AddDate(0, 0, n)
	case Week:
		return t.AddDate(0, 0, 7*n)
	case Month:
		return t.AddDate(0, n, 0)
	case Quarter:
		return t.AddDate(0, 3*n, 0)
	case Year:
		return t.AddDate(n, 0, 0)
	}
	return t
}

// QuarterOf returns the calendar quarter (1–4) containing t.
func QuarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}
