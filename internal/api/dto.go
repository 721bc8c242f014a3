package api

import (
	"github.com/starford/jera/internal/granularity"
	"github.com/starford/jera/internal/linker"
)

// SuggestRequest asks for the time expression ending at cursor on line.
type SuggestRequest struct {
	Line    string `json:"line" example:"see 3 days ago " validate:"required"`
	Cursor  int    `json:"cursor" example:"15" validate:"required"`
	DocName string `json:"doc_name" example:"2025-06-10"`
	DocPath string `json:"doc_path" example:"daily/2025-06-10.md"`
}

// Suggestion is the resolved link suggestion (aliased from the domain layer).
type Suggestion = linker.Suggestion

// CreateLinkRequest materializes the periodic note for a target.
type CreateLinkRequest struct {
	Granularity string `json:"granularity" example:"week" validate:"required"`
	Date        string `json:"date" example:"2025-06-09" validate:"required"`
}

// CreateLinkResponse reports where the note lives and whether this
// request created it.
type CreateLinkResponse struct {
	Path    string `json:"path" example:"weekly/2025-W24.md" validate:"required"`
	Created bool   `json:"created" example:"true" validate:"required"`
}

// DetectResponse classifies a document name.
type DetectResponse struct {
	Periodic    bool                    `json:"periodic" example:"true" validate:"required"`
	Granularity granularity.Granularity `json:"granularity,omitempty" example:"day"`
	Date        string                  `json:"date,omitempty" example:"2025-06-10"`
}

// PeriodicNoteItem is one indexed periodic note.
type PeriodicNoteItem struct {
	Path        string                  `json:"path" example:"daily/2025-06-10.md" validate:"required"`
	Granularity granularity.Granularity `json:"granularity" example:"day" validate:"required"`
	Date        string                  `json:"date" example:"2025-06-10" validate:"required"`
}

// PeriodicListResponse wraps paginated index listings.
type PeriodicListResponse struct {
	Notes []PeriodicNoteItem `json:"notes" validate:"required"`
	Total int                `json:"total" example:"42" validate:"required"`
}

// PeriodicNoteDetail is an indexed note plus its content.
type PeriodicNoteDetail struct {
	PeriodicNoteItem
	Content string `json:"content"`
}

// GranularityConfig describes one configured granularity.
type GranularityConfig struct {
	Granularity granularity.Granularity `json:"granularity" example:"week" validate:"required"`
	Format      string                  `json:"format" example:"gggg-[W]ww" validate:"required"`
	Folder      string                  `json:"folder,omitempty" example:"weekly"`
}

// ConfigResponse reports the merged engine configuration.
type ConfigResponse struct {
	Granularities  []GranularityConfig `json:"granularities" validate:"required"`
	Scope          string              `json:"scope" example:"all-periodic" validate:"required"`
	WrittenNumbers bool                `json:"written_numbers" example:"false"`
}
