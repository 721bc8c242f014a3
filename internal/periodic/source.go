// Package periodic aggregates granularity configurations from the
// daily and periodic settings sources and detects which granularity a
// note represents.
package periodic

import (
	"fmt"

	"github.com/starford/jera/internal/granularity"
)

// Config is the internal shape every configuration source maps into.
type Config struct {
	Granularity granularity.Granularity
	Format      string
	Folder      string
	Template    string
	// FromDaily marks configs supplied by the single-granularity daily
	// source, whose separators are literal filename characters rather
	// than folder structure.
	FromDaily bool
}

// DefaultFormats are the canonical patterns used when a source enables
// a granularity without specifying a format.
var DefaultFormats = map[granularity.Granularity]string{
	granularity.Day:     "YYYY-MM-DD",
	granularity.Week:    "gggg-[W]ww",
	granularity.Month:   "YYYY-MM",
	granularity.Quarter: "YYYY-[Q]Q",
	granularity.Year:    "YYYY",
}

// DailySource is the single-granularity settings collaborator
// (configuration source A). It only ever describes "day".
type DailySource interface {
	// DailyConfig returns the day configuration, or ok=false when the
	// source is absent or disabled.
	DailyConfig() (Config, bool)
}

// PeriodicSource is the multi-granularity settings collaborator
// (configuration source B). All implementations expose the legacy
// per-granularity records; newer ones additionally implement
// CalendarSet, which the aggregator probes for and prefers.
type PeriodicSource interface {
	LegacyConfig(g granularity.Granularity) (Config, bool)
}

// CalendarSet is the optional capability of newer periodic sources.
type CalendarSet interface {
	ActiveConfig(g granularity.Granularity) (Config, bool)
}

// Record is one granularity's settings as they appear in YAML.
type Record struct {
	Enabled  bool   `yaml:"enabled"`
	Format   string `yaml:"format"`
	Folder   string `yaml:"folder"`
	Template string `yaml:"template"`
}

func (r Record) config(g granularity.Granularity, fromDaily bool) (Config, bool) {
	if !r.Enabled {
		return Config{}, false
	}
	format := r.Format
	if format == "" {
		format = DefaultFormats[g]
	}
	return Config{
		Granularity: g,
		Format:      format,
		Folder:      r.Folder,
		Template:    r.Template,
		FromDaily:   fromDaily,
	}, true
}

// DailySettings is the YAML shape of the daily source.
type DailySettings struct {
	Record `yaml:",inline"`
}

// DailyConfig implements DailySource.
func (s *DailySettings) DailyConfig() (Config, bool) {
	if s == nil {
		return Config{}, false
	}
	return s.Record.config(granularity.Day, true)
}

// LegacyRecords is the historical flat shape of the periodic source.
type LegacyRecords struct {
	Daily     Record `yaml:"daily"`
	Weekly    Record `yaml:"weekly"`
	Monthly   Record `yaml:"monthly"`
	Quarterly Record `yaml:"quarterly"`
	Yearly    Record `yaml:"yearly"`
}

func (l *LegacyRecords) record(g granularity.Granularity) Record {
	switch g {
	case granularity.Day:
		return l.Daily
	case granularity.Week:
		return l.Weekly
	case granularity.Month:
		return l.Monthly
	case granularity.Quarter:
		return l.Quarterly
	case granularity.Year:
		return l.Yearly
	}
	return Record{}
}

// PeriodicSettings is the YAML section for the periodic source. It
// carries both historical shapes; Source picks the adapter matching
// whichever one is populated.
type PeriodicSettings struct {
	Granularities map[string]Record `yaml:"granularities"`
	Legacy        LegacyRecords     `yaml:"legacy"`
}

// Validate rejects unknown granularity keys in the calendar-set shape.
func (p *PeriodicSettings) Validate() error {
	for key := range p.Granularities {
		if !granularity.Granularity(key).Valid() {
			return fmt.Errorf("periodic: unknown granularity %q", key)
		}
	}
	return nil
}

// Source returns the adapter for whichever shape is configured. A
// populated granularities map selects the calendar-set adapter; the
// legacy records are used otherwise.
func (p *PeriodicSettings) Source() PeriodicSource {
	if p == nil {
		return nil
	}
	if len(p.Granularities) > 0 {
		return &calendarSetSource{sets: p.Granularities}
	}
	return &legacySource{records: p.Legacy}
}

type legacySource struct {
	records LegacyRecords
}

func (s *legacySource) LegacyConfig(g granularity.Granularity) (Config, bool) {
	return s.records.record(g).config(g, false)
}

type calendarSetSource struct {
	sets map[string]Record
}

func (s *calendarSetSource) LegacyConfig(granularity.Granularity) (Config, bool) {
	return Config{}, false
}

func (s *calendarSetSource) ActiveConfig(g granularity.Granularity) (Config, bool) {
	rec, ok := s.sets[string(g)]
	if !ok {
		return Config{}, false
	}
	return rec.config(g, false)
}
