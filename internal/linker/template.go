package linker

import (
	"regexp"
	"strings"

	pathpkg "path"

	"github.com/starford/jera/internal/pattern"
	"github.com/starford/jera/internal/periodic"
	"github.com/starford/jera/internal/phrase"
)

var templateToken = regexp.MustCompile(`\{\{\s*(date|title)(?::([^}]+))?\s*\}\}`)

// renderTemplate loads the granularity's configured template from the
// vault and substitutes its tokens. A missing or unconfigured template
// yields a bare heading.
func (s *Service) renderTemplate(t phrase.Target, targetPath string) []byte {
	title := strings.TrimSuffix(pathpkg.Base(targetPath), ".md")

	cfg, ok := s.agg.Config(t.Granularity)
	if !ok || cfg.Template == "" {
		return []byte("# " + title + "\n")
	}
	raw, err := s.store.Read(templatePath(cfg.Template))
	if err != nil {
		return []byte("# " + title + "\n")
	}

	rendered := templateToken.ReplaceAllStringFunc(string(raw), func(tok string) string {
		parts := templateToken.FindStringSubmatch(tok)
		switch parts[1] {
		case "title":
			return title
		case "date":
			format := parts[2]
			if format == "" {
				format = periodic.DefaultFormats[t.Granularity]
			}
			c, err := pattern.Compile(format)
			if err != nil {
				return t.Date.Format("2006-01-02")
			}
			return c.Format(t.Date)
		}
		return tok
	})
	return []byte(rendered)
}

func templatePath(p string) string {
	if pathpkg.Ext(p) == "" {
		return p + ".md"
	}
	return p
}
