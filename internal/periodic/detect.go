package periodic

import (
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/starford/jera/internal/granularity"
	"github.com/starford/jera/internal/pattern"
)

// fallback patterns tried when no configured candidate matches, in
// fixed order.
var fallbacks = []struct {
	re *regexp.Regexp
	g  granularity.Granularity
}{
	{regexp.MustCompile(`^\d{4}$`), granularity.Year},
	{regexp.MustCompile(`^\d{4}-\d{2}$`), granularity.Month},
	{regexp.MustCompile(`^\d{4}-W\d{1,2}$`), granularity.Week},
	{regexp.MustCompile(`^\d{4}-Q[1-4]$`), granularity.Quarter},
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), granularity.Day},
}

// Detector decides which granularity a note represents.
type Detector struct {
	agg           *Aggregator
	strictFolders bool
}

// NewDetector creates a detector over the aggregated configs. With
// strictFolders set, a configured candidate only matches when the
// note's containing folder starts with the config's declared folder.
func NewDetector(agg *Aggregator, strictFolders bool) *Detector {
	return &Detector{agg: agg, strictFolders: strictFolders}
}

// Detect returns the granularity the note named name at path
// represents, if any. name is the basename without extension; notePath
// is the vault-relative path. Configured candidates are tried first
// (day before the rest), then the fallback table.
func (d *Detector) Detect(name, notePath string) (granularity.Granularity, bool) {
	for _, cfg := range d.candidates() {
		if d.matches(cfg, name, notePath) {
			return cfg.Granularity, true
		}
	}
	for _, fb := range fallbacks {
		if fb.re.MatchString(name) {
			return fb.g, true
		}
	}
	return "", false
}

// DecodeDate decodes the note's canonical date for granularity g, for
// use as a resolution anchor.
func (d *Detector) DecodeDate(name, notePath string, g granularity.Granularity) (time.Time, bool) {
	cfg, ok := d.agg.Config(g)
	if !ok {
		cfg = Config{Granularity: g, Format: DefaultFormats[g]}
	}
	c, err := pattern.Compile(cfg.Format)
	if err != nil {
		return time.Time{}, false
	}
	return c.Parse(d.candidateString(cfg, c, name, notePath))
}

// candidates returns configured granularities with day first, the rest
// in ladder order.
func (d *Detector) candidates() []Config {
	var out []Config
	if cfg, ok := d.agg.Config(granularity.Day); ok {
		out = append(out, cfg)
	}
	for _, g := range granularity.Ladder {
		if g == granularity.Day {
			continue
		}
		if cfg, ok := d.agg.Config(g); ok {
			out = append(out, cfg)
		}
	}
	return out
}

func (d *Detector) matches(cfg Config, name, notePath string) bool {
	c, err := pattern.Compile(cfg.Format)
	if err != nil {
		// Broken format disqualifies this candidate only.
		return false
	}
	if !c.Match(d.candidateString(cfg, c, name, notePath)) {
		return false
	}
	if d.strictFolders && cfg.Folder != "" {
		dir := path.Dir(notePath)
		if dir == "." {
			dir = ""
		}
		if !strings.HasPrefix(dir, cfg.Folder) {
			return false
		}
	}
	return true
}

// candidateString picks what the compiled pattern is matched against:
// the bare name, or — for multi-segment formats from the periodic
// source — the last N path segments, so folder-encoded date structures
// like 2025/06/2025-06-10.md are recognized. The daily source's
// separators are literal filename characters and never get this
// treatment.
func (d *Detector) candidateString(cfg Config, c *pattern.Compiled, name, notePath string) string {
	n := c.Segments()
	if cfg.FromDaily || n <= 1 || notePath == "" {
		return name
	}
	trimmed := strings.TrimSuffix(notePath, path.Ext(notePath))
	segs := strings.Split(trimmed, "/")
	if len(segs) < n {
		return name
	}
	return strings.Join(segs[len(segs)-n:], "/")
}
