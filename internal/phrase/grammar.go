package phrase

import (
	"regexp"
	"strings"
	"time"
)

// Grammar fragments shared between the recognizer (anchored at the
// cursor) and the resolver (anchored over the whole phrase).
const (
	weekdayAlt = `monday|tuesday|wednesday|thursday|friday|saturday|sunday`
	unitAlt    = `days?|weeks?|months?|quarters?|years?`
	digitCount = `\d{1,3}`

	// Whitespace and punctuation allowed between a phrase and the
	// cursor; captured as the trailing delimiter.
	delimRun = `[\s.,;:!?)\]}"']*`

	// A phrase must begin the line or follow whitespace/punctuation.
	leadIn = `(?:^|[\s.,;:!?(\[{"'])`
)

// staticPhrases maps each fixed idiom to its target granularity and
// signed offset in that granularity's units.
var staticPhrases = map[string]staticEntry{
	"yesterday":    {gran: "day", offset: -1},
	"today":        {gran: "day", offset: 0},
	"tomorrow":     {gran: "day", offset: 1},
	"last week":    {gran: "week", offset: -1},
	"this week":    {gran: "week", offset: 0},
	"next week":    {gran: "week", offset: 1},
	"last month":   {gran: "month", offset: -1},
	"this month":   {gran: "month", offset: 0},
	"next month":   {gran: "month", offset: 1},
	"last quarter": {gran: "quarter", offset: -1},
	"this quarter": {gran: "quarter", offset: 0},
	"next quarter": {gran: "quarter", offset: 1},
	"last year":    {gran: "year", offset: -1},
	"this year":    {gran: "year", offset: 0},
	"next year":    {gran: "year", offset: 1},
}

type staticEntry struct {
	gran   string
	offset int
}

// staticAlt joins every static idiom, including the "this <weekday>"
// family, longest first.
var staticAlt = func() string {
	phrases := make([]string, 0, len(staticPhrases)+7)
	for p := range staticPhrases {
		phrases = append(phrases, p)
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		phrases = append(phrases, "this "+strings.ToLower(wd.String()))
	}
	for i := range phrases {
		for j := i + 1; j < len(phrases); j++ {
			if len(phrases[j]) > len(phrases[i]) {
				phrases[i], phrases[j] = phrases[j], phrases[i]
			}
		}
	}
	return strings.Join(phrases, "|")
}()

// grammar bundles the compiled expressions for one count vocabulary
// (digits only, or digits plus written numbers).
type grammar struct {
	// Cursor-anchored forms: capture (phrase)(delimiter) at end of the
	// line prefix. Inner structure is non-capturing so group indexes
	// are stable across strategies.
	cursorStrategies []*regexp.Regexp

	// Whole-phrase forms used by the resolver.
	nextLastWeekday *regexp.Regexp
	countWeekday    *regexp.Regexp
	inCountWeekday  *regexp.Regexp
	thisWeekday     *regexp.Regexp
	countUnitAgo    *regexp.Regexp
	inCountUnit     *regexp.Regexp
	countUnitFrom   *regexp.Regexp
}

func buildGrammar(count string) *grammar {
	c := `(?:` + count + `)`
	wd := `(?:` + weekdayAlt + `)`
	unit := `(?:` + unitAlt + `)`

	cursor := func(body string) *regexp.Regexp {
		return regexp.MustCompile(`(?i)` + leadIn + `(` + body + `)(` + delimRun + `)$`)
	}
	full := func(body string) *regexp.Regexp {
		return regexp.MustCompile(`(?i)^` + body + `$`)
	}

	nextLastWd := `(?:next|last)\s+` + wd
	countWd := c + `\s+` + wd + `s?\s+(?:from\s+now|ago)`
	inCountWd := `in\s+` + c + `\s+` + wd + `s?`
	countUnitAgo := c + `\s+` + unit + `\s+ago`
	inCountUnit := `in\s+` + c + `\s+` + unit
	countUnitFrom := c + `\s+` + unit + `\s+from\s+now`

	return &grammar{
		// Static idioms, then weekday grammars, then generic durations.
		cursorStrategies: []*regexp.Regexp{
			cursor(`(?:` + staticAlt + `)`),
			cursor(nextLastWd),
			cursor(countWd),
			cursor(inCountWd),
			cursor(countUnitAgo),
			cursor(inCountUnit),
			cursor(countUnitFrom),
		},
		nextLastWeekday: full(`(next|last)\s+(` + weekdayAlt + `)`),
		countWeekday:    full(`(` + count + `)\s+(` + weekdayAlt + `)s?\s+(from\s+now|ago)`),
		inCountWeekday:  full(`in\s+(` + count + `)\s+(` + weekdayAlt + `)s?`),
		thisWeekday:     full(`this\s+(` + weekdayAlt + `)`),
		countUnitAgo:    full(`(` + count + `)\s+(` + unitAlt + `)\s+ago`),
		inCountUnit:     full(`in\s+(` + count + `)\s+(` + unitAlt + `)`),
		countUnitFrom:   full(`(` + count + `)\s+(` + unitAlt + `)\s+from\s+now`),
	}
}

var (
	digitGrammar   = buildGrammar(digitCount)
	writtenGrammar = buildGrammar(digitCount + `|` + writtenNumberAlt)
)

func grammarFor(written bool) *grammar {
	if written {
		return writtenGrammar
	}
	return digitGrammar
}

func weekdayByName(name string) time.Weekday {
	switch strings.ToLower(name) {
	case "sunday":
		return time.Sunday
	case "monday":
		return time.Monday
	case "tuesday":
		return time.Tuesday
	case "wednesday":
		return time.Wednesday
	case "thursday":
		return time.Thursday
	case "friday":
		return time.Friday
	}
	return time.Saturday
}
