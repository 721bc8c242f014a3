// Package models defines the domain types for Jera.
package models

import (
	"time"

	"github.com/starford/jera/internal/granularity"
)

// PeriodicNote is a vault file recognized as representing a calendar
// period.
type PeriodicNote struct {
	Path        string                  `json:"path"`
	Granularity granularity.Granularity `json:"granularity"`
	// Date is the canonical date of the period: the day itself for
	// daily notes, the first day of the period otherwise.
	Date      time.Time `json:"date"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileInfo is lightweight vault file metadata returned by list
// operations.
type FileInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
