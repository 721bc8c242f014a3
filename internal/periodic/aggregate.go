package periodic

import (
	"sync"

	"github.com/starford/jera/internal/granularity"
)

// Aggregator merges the daily and periodic sources into one lookup
// table keyed by granularity. The periodic source takes precedence for
// any granularity it configures; the daily source alone supplies "day"
// otherwise.
//
// The merged table is read-only per version. Reload rebuilds it from
// whatever the sources currently report and bumps the version, so
// caches keyed by (path, version) go stale naturally.
type Aggregator struct {
	daily    DailySource
	periodic PeriodicSource

	mu      sync.RWMutex
	version uint64
	table   map[granularity.Granularity]Config
}

// NewAggregator builds an aggregator and loads the initial table.
// Either source may be nil.
func NewAggregator(daily DailySource, periodic PeriodicSource) *Aggregator {
	a := &Aggregator{daily: daily, periodic: periodic, version: 1}
	a.table = a.load()
	return a
}

func (a *Aggregator) load() map[granularity.Granularity]Config {
	table := make(map[granularity.Granularity]Config)

	if a.daily != nil {
		if cfg, ok := a.daily.DailyConfig(); ok {
			table[granularity.Day] = cfg
		}
	}

	if a.periodic == nil {
		return table
	}
	set, hasSet := a.periodic.(CalendarSet)
	for _, g := range granularity.Ladder {
		var (
			cfg Config
			ok  bool
		)
		if hasSet {
			cfg, ok = set.ActiveConfig(g)
		}
		if !ok {
			cfg, ok = a.periodic.LegacyConfig(g)
		}
		if ok {
			table[g] = cfg
		}
	}
	return table
}

// Reload rebuilds the table from the sources and bumps the version.
func (a *Aggregator) Reload() {
	table := a.load()
	a.mu.Lock()
	a.table = table
	a.version++
	a.mu.Unlock()
}

// Version returns the current configuration version.
func (a *Aggregator) Version() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.version
}

// Config returns the merged configuration for g, if any.
func (a *Aggregator) Config(g granularity.Granularity) (Config, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	cfg, ok := a.table[g]
	return cfg, ok
}

// EnabledTypes returns the configured granularities in ladder order.
func (a *Aggregator) EnabledTypes() []granularity.Granularity {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []granularity.Granularity
	for _, g := range granularity.Ladder {
		if _, ok := a.table[g]; ok {
			out = append(out, g)
		}
	}
	return out
}

// FormatFor returns the format pattern used to name notes of g: the
// configured one when present, the canonical default otherwise.
func (a *Aggregator) FormatFor(g granularity.Granularity) string {
	if cfg, ok := a.Config(g); ok {
		return cfg.Format
	}
	return DefaultFormats[g]
}
