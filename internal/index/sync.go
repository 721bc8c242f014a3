package index

import (
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/periodic"
	"github.com/starford/jera/internal/storage"
)

// Sync walks the vault and brings the index up to date:
//   - new/changed files are run through the detector and upserted (or
//     removed when they no longer detect as periodic)
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, det *periodic.Detector, logger *slog.Logger) error {
	infos, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(infos))
	for _, fi := range infos {
		disk[fi.Path] = struct{}{}

		if checksums[fi.Path] == fi.Checksum {
			continue
		}
		if err := indexFile(db, det, fi.Path, fi.Checksum); err != nil {
			logger.Warn("sync: index failed", slog.String("path", fi.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", fi.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.Delete(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile runs detection on a vault path and updates the index row.
// A file that no longer detects as periodic has its row removed.
func indexFile(db *DB, det *periodic.Detector, notePath, cs string) error {
	name := noteName(notePath)
	g, ok := det.Detect(name, notePath)
	if !ok {
		return db.Delete(notePath)
	}
	date, ok := det.DecodeDate(name, notePath, g)
	if !ok {
		return db.Delete(notePath)
	}
	return db.Upsert(models.PeriodicNote{
		Path:        notePath,
		Granularity: g,
		Date:        date,
		Checksum:    cs,
		UpdatedAt:   time.Now(),
	})
}

// noteName is the basename without the .md extension.
func noteName(notePath string) string {
	return strings.TrimSuffix(path.Base(notePath), ".md")
}
