// Package pattern compiles date format patterns into matchers and
// provides formatting and parsing of note names against them.
//
// The token vocabulary is the usual periodic-note one: YYYY (calendar
// year), MM/M (month), DD/D (day), gggg (week-year), ww/w (week
// number), Q (quarter digit), MMMM/MMM (month name), dddd/ddd (weekday
// name), and [literal] segments. Any other character matches itself.
package pattern

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type fieldKind int

const (
	fieldNone fieldKind = iota
	fieldYear
	fieldWeekYear
	fieldMonth
	fieldMonthName
	fieldDay
	fieldWeek
	fieldQuarter
	fieldWeekdayName
)

type token struct {
	field   fieldKind
	capture string // regexp fragment, captured when field != fieldNone
	literal string // literal text when field == fieldNone
	name    string // source token ("YYYY", "ww", …) for formatting
}

var tokenDefs = []struct {
	src     string
	field   fieldKind
	capture string
}{
	{"YYYY", fieldYear, `\d{4}`},
	{"gggg", fieldWeekYear, `\d{4}`},
	{"MMMM", fieldMonthName, `(?i:January|February|March|April|May|June|July|August|September|October|November|December)`},
	{"MMM", fieldMonthName, `(?i:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)`},
	{"MM", fieldMonth, `\d{2}`},
	{"M", fieldMonth, `\d{1,2}`},
	{"DD", fieldDay, `\d{2}`},
	{"D", fieldDay, `\d{1,2}`},
	{"dddd", fieldWeekdayName, `(?i:Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)`},
	{"ddd", fieldWeekdayName, `(?i:Mon|Tue|Wed|Thu|Fri|Sat|Sun)`},
	{"ww", fieldWeek, `\d{2}`},
	{"w", fieldWeek, `\d{1,2}`},
	{"Q", fieldQuarter, `[1-4]`},
}

// Compiled is a format pattern turned into an anchored matcher.
type Compiled struct {
	pattern  string
	re       *regexp.Regexp
	fields   []fieldKind // one per capture group, in order
	tokens   []token
	segments int
}

// Compile parses a format pattern into a Compiled matcher.
func Compile(pattern string) (*Compiled, error) {
	if pattern == "" {
		return nil, fmt.Errorf("pattern: empty format")
	}

	var (
		tokens   []token
		segments = 1
	)
	for i := 0; i < len(pattern); {
		if pattern[i] == '[' {
			end := strings.IndexByte(pattern[i+1:], ']')
			if end < 0 {
				return nil, fmt.Errorf("pattern: unclosed literal bracket in %q", pattern)
			}
			tokens = append(tokens, token{field: fieldNone, literal: pattern[i+1 : i+1+end]})
			i += end + 2
			continue
		}
		matched := false
		for _, def := range tokenDefs {
			if strings.HasPrefix(pattern[i:], def.src) {
				tokens = append(tokens, token{field: def.field, capture: def.capture, name: def.src})
				i += len(def.src)
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		if pattern[i] == '/' {
			segments++
		}
		tokens = append(tokens, token{field: fieldNone, literal: pattern[i : i+1]})
		i++
	}

	var (
		sb     strings.Builder
		fields []fieldKind
	)
	sb.WriteString(`^`)
	for _, t := range tokens {
		if t.field == fieldNone {
			sb.WriteString(regexp.QuoteMeta(t.literal))
			continue
		}
		sb.WriteString(`(`)
		sb.WriteString(t.capture)
		sb.WriteString(`)`)
		fields = append(fields, t.field)
	}
	sb.WriteString(`$`)

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, fmt.Errorf("pattern: compile %q: %w", pattern, err)
	}

	return &Compiled{
		pattern:  pattern,
		re:       re,
		fields:   fields,
		tokens:   tokens,
		segments: segments,
	}, nil
}

// String returns the source format pattern.
func (c *Compiled) String() string { return c.pattern }

// Segments returns the number of path-separator-delimited segments in
// the format, for matching folder-encoded date structures.
func (c *Compiled) Segments() int { return c.segments }

// Match reports whether name is exactly a rendering of this pattern.
func (c *Compiled) Match(name string) bool {
	return c.re.MatchString(name)
}

// Parse decodes name into the canonical date it represents: the first
// day of the week/month/quarter/year for coarse patterns, the day
// itself for daily ones. Weekday and month name segments only need to
// be well-formed; numeric fields decide the date.
func (c *Compiled) Parse(name string) (time.Time, bool) {
	m := c.re.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}

	year, month, day := 0, 0, 0
	weekYear, week, quarter := 0, 0, 0

	for i, kind := range c.fields {
		val := m[i+1]
		switch kind {
		case fieldYear:
			year, _ = strconv.Atoi(val)
		case fieldWeekYear:
			weekYear, _ = strconv.Atoi(val)
		case fieldMonth:
			month, _ = strconv.Atoi(val)
		case fieldMonthName:
			month = monthByName(val)
		case fieldDay:
			day, _ = strconv.Atoi(val)
		case fieldWeek:
			week, _ = strconv.Atoi(val)
		case fieldQuarter:
			quarter, _ = strconv.Atoi(val)
		}
	}

	switch {
	case weekYear != 0 && week != 0:
		return isoWeekStart(weekYear, week), true
	case year != 0 && quarter != 0:
		return time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.Local), true
	case year != 0:
		if month == 0 {
			month = 1
		}
		if day == 0 {
			day = 1
		}
		if month > 12 || day > 31 {
			return time.Time{}, false
		}
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
		// Reject rollover from impossible dates like 2025-02-30.
		if int(t.Month()) != month || t.Day() != day {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// Format renders t through the pattern.
func (c *Compiled) Format(t time.Time) string {
	var sb strings.Builder
	for _, tok := range c.tokens {
		if tok.field == fieldNone {
			sb.WriteString(tok.literal)
			continue
		}
		isoYear, isoWeek := t.ISOWeek()
		switch tok.name {
		case "YYYY":
			fmt.Fprintf(&sb, "%04d", t.Year())
		case "gggg":
			fmt.Fprintf(&sb, "%04d", isoYear)
		case "MMMM":
			sb.WriteString(t.Month().String())
		case "MMM":
			sb.WriteString(t.Month().String()[:3])
		case "MM":
			fmt.Fprintf(&sb, "%02d", int(t.Month()))
		case "M":
			fmt.Fprintf(&sb, "%d", int(t.Month()))
		case "DD":
			fmt.Fprintf(&sb, "%02d", t.Day())
		case "D":
			fmt.Fprintf(&sb, "%d", t.Day())
		case "dddd":
			sb.WriteString(t.Weekday().String())
		case "ddd":
			sb.WriteString(t.Weekday().String()[:3])
		case "ww":
			fmt.Fprintf(&sb, "%02d", isoWeek)
		case "w":
			fmt.Fprintf(&sb, "%d", isoWeek)
		case "Q":
			fmt.Fprintf(&sb, "%d", (int(t.Month())-1)/3+1)
		}
	}
	return sb.String()
}

// isoWeekStart returns the Monday of the given ISO week.
func isoWeekStart(year, week int) time.Time {
	// January 4th is always inside ISO week 1.
	jan4 := time.Date(year, 1, 4, 0, 0, 0, 0, time.Local)
	daysFromMonday := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -daysFromMonday)
	return monday.AddDate(0, 0, (week-1)*7)
}

func monthByName(name string) int {
	prefix := strings.ToLower(name)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	for m := time.January; m <= time.December; m++ {
		if strings.ToLower(m.String()[:3]) == prefix {
			return int(m)
		}
	}
	return 0
}
