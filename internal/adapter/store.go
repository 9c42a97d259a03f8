package adapter

import (
	"context"
	"fmt"
	"time"
)

// LetterMetadata represents metadata about a letter stored in Drive.
type LetterMetadata struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ModifiedTime time.Time `json:"modifiedTime"`
	Parents      []string  `json:"parents,omitempty"`
}

// LetterStore defines the interface for the per-user letter storage backend.
// This abstraction allows switching between Google Drive and the in-memory
// implementation without changing the handlers.
type LetterStore interface {
	// EnsureLettersFolder finds or creates the top-level "Letters" folder
	// (parented at root, not trashed) and returns its ID. If duplicates
	// already exist, the one with the earliest creation time wins.
	EnsureLettersFolder(ctx context.Context) (string, error)

	// EnsureMonthlyFolder finds or creates the folder named key ("YYYY-MM")
	// under parentID and returns its ID.
	EnsureMonthlyFolder(ctx context.Context, parentID, key string) (string, error)

	// CreateLetter creates a new letter document in the specified folder.
	// Content is uploaded as-is; no validation is performed.
	CreateLetter(ctx context.Context, name string, content []byte, folderID string) (*LetterMetadata, error)

	// ListLetters lists document-typed direct children of folderID.
	ListLetters(ctx context.Context, folderID string) ([]LetterMetadata, error)

	// DeleteLetter deletes a letter by its ID.
	DeleteLetter(ctx context.Context, fileID string) error
}

// MonthKey formats the calendar month of t as the folder key, e.g. "2026-08".
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}
