// Package linker turns typed time expressions into navigable links to
// periodic notes, materializing the target note when asked.
package linker

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/checksum"
	"github.com/starford/jera/internal/granularity"
	"github.com/starford/jera/internal/index"
	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/pattern"
	"github.com/starford/jera/internal/periodic"
	"github.com/starford/jera/internal/phrase"
	"github.com/starford/jera/internal/storage"
	pathpkg "path"
)

// Suggestion is a recognized expression resolved to a link target.
type Suggestion struct {
	Phrase      string                  `json:"phrase"`
	Delimiter   string                  `json:"delimiter"`
	Start       int                     `json:"start"`
	End         int                     `json:"end"`
	Granularity granularity.Granularity `json:"granularity"`
	Date        string                  `json:"date"`
	Path        string                  `json:"path"`
	Link        string                  `json:"link"`
	Exists      bool                    `json:"exists"`
}

// Service coordinates the recognition engine, vault storage, and the
// periodic-note index.
type Service struct {
	store    storage.Provider
	db       index.PeriodicIndex
	agg      *periodic.Aggregator
	det      *periodic.Detector
	resolver *phrase.Resolver
	flags    phrase.Flags
	scope    phrase.Scope

	// Detection results are cached per (path, config version); a
	// Reload of the aggregator invalidates the whole cache.
	mu           sync.Mutex
	cacheVersion uint64
	detections   map[string]detection
}

type detection struct {
	gran granularity.Granularity
	ok   bool
}

// New creates a linker service.
func New(store storage.Provider, db index.PeriodicIndex, agg *periodic.Aggregator, det *periodic.Detector, flags phrase.Flags, scope phrase.Scope) *Service {
	return &Service{
		store:      store,
		db:         db,
		agg:        agg,
		det:        det,
		resolver:   phrase.NewResolver(),
		flags:      flags,
		scope:      scope,
		detections: map[string]detection{},
	}
}

// Detect classifies a document, caching per configuration version.
func (s *Service) Detect(name, path string) (granularity.Granularity, bool) {
	v := s.agg.Version()
	s.mu.Lock()
	if s.cacheVersion != v {
		s.cacheVersion = v
		s.detections = map[string]detection{}
	}
	if d, hit := s.detections[path]; hit {
		s.mu.Unlock()
		return d.gran, d.ok
	}
	s.mu.Unlock()

	g, ok := s.det.Detect(name, path)

	s.mu.Lock()
	if s.cacheVersion == v {
		s.detections[path] = detection{gran: g, ok: ok}
	}
	s.mu.Unlock()
	return g, ok
}

// EnabledTypes returns the configured granularities.
func (s *Service) EnabledTypes() []granularity.Granularity {
	return s.agg.EnabledTypes()
}

// Configs returns the merged configurations in ladder order.
func (s *Service) Configs() []periodic.Config {
	var out []periodic.Config
	for _, g := range s.agg.EnabledTypes() {
		if cfg, ok := s.agg.Config(g); ok {
			out = append(out, cfg)
		}
	}
	return out
}

// Scope returns the configured resolution scope.
func (s *Service) Scope() phrase.Scope {
	return s.scope
}

// Flags returns the configured recognition flags.
func (s *Service) Flags() phrase.Flags {
	return s.flags
}

// DecodeDate decodes a document's canonical date for granularity g.
func (s *Service) DecodeDate(name, path string, g granularity.Granularity) (time.Time, bool) {
	return s.det.DecodeDate(name, path, g)
}

// Reload rebuilds the aggregated configuration, invalidating cached
// detections.
func (s *Service) Reload() {
	s.agg.Reload()
}

// Suggest finds the time expression ending at cursor and resolves it
// against the current document. Returns apperr.ErrNotFound when the
// line holds no resolvable expression; resolution itself never fails
// with any other error.
func (s *Service) Suggest(_ context.Context, line string, cursor int, docName, docPath string) (*Suggestion, error) {
	m, ok := phrase.FindPhrase(line, cursor, phrase.Options{WrittenNumbers: s.flags.WrittenNumbers})
	if !ok {
		return nil, apperr.ErrNotFound
	}

	ctx, hasCtx := s.Detect(docName, docPath)
	if !hasCtx {
		ctx = ""
	}

	anchor := s.resolver.Now()
	if hasCtx {
		if d, decoded := s.det.DecodeDate(docName, docPath, ctx); decoded {
			anchor = d
		}
	}

	target, ok := s.resolver.Resolve(m.Text, ctx, anchor, s.flags, s.scope)
	if !ok {
		return nil, apperr.ErrNotFound
	}

	targetPath, err := s.TargetPath(target)
	if err != nil {
		return nil, err
	}
	_, readErr := s.store.Read(targetPath)

	return &Suggestion{
		Phrase:      m.Text,
		Delimiter:   m.Delimiter,
		Start:       m.Start,
		End:         m.End,
		Granularity: target.Granularity,
		Date:        target.Date.Format(index.DateLayout),
		Path:        targetPath,
		Link:        wikilink(targetPath, m.Text),
		Exists:      readErr == nil,
	}, nil
}

// ResolvePhrase resolves an already-extracted expression against an
// explicit context and anchor, using the service's configured flags
// and scope. A zero anchor means "now".
func (s *Service) ResolvePhrase(text string, ctx granularity.Granularity, anchor time.Time) (phrase.Target, bool) {
	if anchor.IsZero() {
		anchor = s.resolver.Now()
	}
	return s.resolver.Resolve(text, ctx, anchor, s.flags, s.scope)
}

// TargetPath computes the vault path a target note lives at: the
// configured folder joined with the formatted name.
func (s *Service) TargetPath(t phrase.Target) (string, error) {
	c, err := pattern.Compile(s.agg.FormatFor(t.Granularity))
	if err != nil {
		// Broken configured format: fall back to the canonical one.
		c, err = pattern.Compile(periodic.DefaultFormats[t.Granularity])
		if err != nil {
			return "", err
		}
	}
	folder := ""
	if cfg, ok := s.agg.Config(t.Granularity); ok {
		folder = cfg.Folder
	}
	return pathpkg.Join(folder, c.Format(t.Date)+".md"), nil
}

// Materialize ensures the target note exists, rendering its
// granularity's template on first creation. Returns the vault path and
// whether a file was created.
func (s *Service) Materialize(_ context.Context, t phrase.Target) (string, bool, error) {
	if !t.Granularity.Valid() {
		return "", false, apperr.ErrNotFound
	}
	targetPath, err := s.TargetPath(t)
	if err != nil {
		return "", false, err
	}

	if _, readErr := s.store.Read(targetPath); readErr == nil {
		return targetPath, false, nil
	}

	content := s.renderTemplate(t, targetPath)
	if err := s.store.Write(targetPath, content); err != nil {
		return "", false, err
	}

	// Index immediately rather than waiting for the watcher.
	_ = s.db.Upsert(models.PeriodicNote{
		Path:        targetPath,
		Granularity: t.Granularity,
		Date:        t.Date,
		Checksum:    checksum.Sum(content),
		UpdatedAt:   time.Now(),
	})
	return targetPath, true, nil
}

func wikilink(targetPath, display string) string {
	stem := strings.TrimSuffix(targetPath, pathpkg.Ext(targetPath))
	return "[[" + stem + "|" + display + "]]"
}
