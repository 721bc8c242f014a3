package phrase

import (
	"regexp"
	"strings"
	"time"

	"github.com/starford/jera/internal/granularity"
)

// Scope controls which granularities an expression may resolve to from
// a given document context.
type Scope string

const (
	// ScopeCurrentType only allows targets at or coarser than the
	// context granularity.
	ScopeCurrentType Scope = "current-type"
	// ScopeAllPeriodic allows any granularity reachable from any
	// periodic document.
	ScopeAllPeriodic Scope = "all-periodic"
	// ScopeEverywhere requires no context at all.
	ScopeEverywhere Scope = "everywhere"
)

// Valid reports whether s is a known scope policy.
func (s Scope) Valid() bool {
	switch s {
	case ScopeCurrentType, ScopeAllPeriodic, ScopeEverywhere:
		return true
	}
	return false
}

// Flags are the session settings passed explicitly into resolution.
type Flags struct {
	WrittenNumbers bool
}

// Target is a resolved link target.
type Target struct {
	Granularity granularity.Granularity
	Date        time.Time
}

// Resolver computes link targets from recognized expressions. Now
// supplies the wall clock and defaults to time.Now.
type Resolver struct {
	Now func() time.Time
}

// NewResolver returns a resolver on the system clock.
func NewResolver() *Resolver {
	return &Resolver{Now: time.Now}
}

var spaceRun = regexp.MustCompile(`\s+`)

// Resolve maps phrase to a link target. ctx is the current document's
// granularity, or empty when the document is not periodic. anchor is
// the reference date relative phrases are computed against. Any gating
// failure, unparseable count, or pluralization mismatch yields ok=false.
func (r *Resolver) Resolve(phrase string, ctx granularity.Granularity, anchor time.Time, flags Flags, scope Scope) (Target, bool) {
	p := spaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(phrase)), " ")
	g := grammarFor(flags.WrittenNumbers)

	if e, ok := staticPhrases[p]; ok {
		target := granularity.Granularity(e.gran)
		if !permitted(target, ctx, scope) {
			return Target{}, false
		}
		return Target{target, target.Add(anchor, e.offset)}, true
	}

	if m := g.thisWeekday.FindStringSubmatch(p); m != nil {
		if !permitted(granularity.Day, ctx, scope) {
			return Target{}, false
		}
		// The named weekday within the anchor's Monday-based week; this
		// one may land on the anchor day itself.
		monday := anchor.AddDate(0, 0, -((int(anchor.Weekday()) + 6) % 7))
		wd := weekdayByName(m[1])
		return Target{granularity.Day, monday.AddDate(0, 0, (int(wd)+6)%7)}, true
	}

	if m := g.nextLastWeekday.FindStringSubmatch(p); m != nil {
		if !permitted(granularity.Day, ctx, scope) {
			return Target{}, false
		}
		wd := weekdayByName(m[2])
		if m[1] == "last" {
			return Target{granularity.Day, prevWeekday(anchor, wd, 1)}, true
		}
		return Target{granularity.Day, nextWeekday(anchor, wd, 1)}, true
	}

	if m := g.countWeekday.FindStringSubmatch(p); m != nil {
		count, ok := parseCount(m[1], flags.WrittenNumbers)
		if !ok || count < 1 || !permitted(granularity.Day, ctx, scope) {
			return Target{}, false
		}
		wd := weekdayByName(m[2])
		if strings.HasPrefix(m[3], "from") {
			// "N <weekday> from now" searches forward from the wall
			// clock regardless of anchor.
			return Target{granularity.Day, nextWeekday(r.Now(), wd, count)}, true
		}
		return Target{granularity.Day, prevWeekday(anchor, wd, count)}, true
	}

	if m := g.inCountWeekday.FindStringSubmatch(p); m != nil {
		count, ok := parseCount(m[1], flags.WrittenNumbers)
		if !ok || count < 1 || !permitted(granularity.Day, ctx, scope) {
			return Target{}, false
		}
		return Target{granularity.Day, nextWeekday(anchor, weekdayByName(m[2]), count)}, true
	}

	if m := g.countUnitAgo.FindStringSubmatch(p); m != nil {
		return r.duration(m[1], m[2], -1, anchor, ctx, flags, scope)
	}
	if m := g.inCountUnit.FindStringSubmatch(p); m != nil {
		return r.duration(m[1], m[2], +1, anchor, ctx, flags, scope)
	}
	if m := g.countUnitFrom.FindStringSubmatch(p); m != nil {
		// Deliberate exception: "from now" is wall-clock-relative.
		return r.duration(m[1], m[2], +1, r.Now(), ctx, flags, scope)
	}

	return Target{}, false
}

// duration resolves "<count> <unit>" phrases shifted sign*count units
// from base. Pluralization is strict: count 1 accepts either spelling,
// any other count requires the plural.
func (r *Resolver) duration(countWord, unitWord string, sign int, base time.Time, ctx granularity.Granularity, flags Flags, scope Scope) (Target, bool) {
	count, ok := parseCount(countWord, flags.WrittenNumbers)
	if !ok {
		return Target{}, false
	}
	plural := strings.HasSuffix(unitWord, "s")
	if count != 1 && !plural {
		return Target{}, false
	}
	target, ok := granularity.Parse(unitWord)
	if !ok || !permitted(target, ctx, scope) {
		return Target{}, false
	}
	return Target{target, target.Add(base, sign*count)}, true
}

// permitted applies the coarseness-ladder gate: under current-type
// scope with a known context, the target must be at or coarser than
// the context; year is always reachable. Day targets therefore require
// a day context under current-type, since day is the ladder's floor.
func permitted(target, ctx granularity.Granularity, scope Scope) bool {
	if ctx == "" || scope != ScopeCurrentType {
		return true
	}
	if target == granularity.Year {
		return true
	}
	return target.AtOrCoarser(ctx)
}

// nextWeekday returns the count-th occurrence of wd strictly after ref:
// a same-weekday reference rolls to the following week, never today.
func nextWeekday(ref time.Time, wd time.Weekday, count int) time.Time {
	delta := (int(wd) - int(ref.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return ref.AddDate(0, 0, delta+7*(count-1))
}

// prevWeekday is the backward analogue of nextWeekday.
func prevWeekday(ref time.Time, wd time.Weekday, count int) time.Time {
	delta := (int(ref.Weekday()) - int(wd) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return ref.AddDate(0, 0, -(delta + 7*(count-1)))
}
