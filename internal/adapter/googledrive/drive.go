package googledrive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/aki/letterdrive/backend/internal/adapter"
)

const (
	folderMimeType = "application/vnd.google-apps.folder"
	docMimeType    = "application/vnd.google-apps.document"

	// LettersFolderName is the top-level container for all saved letters.
	LettersFolderName = "Letters"
)

// DriveStore implements adapter.LetterStore for Google Drive.
type DriveStore struct {
	service *drive.Service
}

// NewDriveStore creates a new DriveStore.
// client should be an authenticated http.Client carrying the principal's
// access token.
func NewDriveStore(ctx context.Context, client *http.Client) (*DriveStore, error) {
	srv, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Drive client: %v", err)
	}
	return &DriveStore{service: srv}, nil
}

// folderQuery builds the lookup query for a folder by exact name under a parent.
func folderQuery(name, parentID string) string {
	return fmt.Sprintf("name = '%s' and mimeType = '%s' and '%s' in parents and trashed = false",
		name, folderMimeType, parentID)
}

// oldestFolder returns the folder with the earliest creation time.
// Deterministic when duplicate folders already exist: oldest wins.
func oldestFolder(files []*drive.File) *drive.File {
	oldest := files[0]
	oldestTime, _ := time.Parse(time.RFC3339, oldest.CreatedTime)
	for _, f := range files[1:] {
		created, err := time.Parse(time.RFC3339, f.CreatedTime)
		if err != nil {
			continue
		}
		if created.Before(oldestTime) {
			oldest = f
			oldestTime = created
		}
	}
	return oldest
}

// EnsureLettersFolder finds or creates the top-level "Letters" folder.
func (d *DriveStore) EnsureLettersFolder(ctx context.Context) (string, error) {
	r, err := d.service.Files.List().
		Q(folderQuery(LettersFolderName, "root")).
		Fields("files(id, name, createdTime)").
		Spaces("drive").
		Do()
	if err != nil {
		return "", fmt.Errorf("unable to search for Letters folder: %v", err)
	}

	if len(r.Files) > 0 {
		return oldestFolder(r.Files).Id, nil
	}

	f := &drive.File{
		Name:       LettersFolderName,
		MimeType:   folderMimeType,
		Parents:    []string{"root"},
		Properties: map[string]string{"appCreated": "true"},
	}
	res, err := d.service.Files.Create(f).Fields("id").Do()
	if err != nil {
		return "", fmt.Errorf("unable to create Letters folder: %v", err)
	}
	return res.Id, nil
}

// EnsureMonthlyFolder finds or creates the "YYYY-MM" folder under parentID.
func (d *DriveStore) EnsureMonthlyFolder(ctx context.Context, parentID, key string) (string, error) {
	r, err := d.service.Files.List().
		Q(folderQuery(key, parentID)).
		Fields("files(id, name)").
		Spaces("drive").
		Do()
	if err != nil {
		return "", fmt.Errorf("unable to search for monthly folder: %v", err)
	}

	if len(r.Files) > 0 {
		return r.Files[0].Id, nil
	}

	f := &drive.File{
		Name:     key,
		MimeType: folderMimeType,
		Parents:  []string{parentID},
	}
	res, err := d.service.Files.Create(f).Fields("id").Do()
	if err != nil {
		return "", fmt.Errorf("unable to create monthly folder: %v", err)
	}
	return res.Id, nil
}

// CreateLetter creates a new letter document in the specified folder.
// The content is uploaded as plain text and converted to a Google Doc.
func (d *DriveStore) CreateLetter(ctx context.Context, name string, content []byte, folderID string) (*adapter.LetterMetadata, error) {
	f := &drive.File{
		Name:     name,
		MimeType: docMimeType,
		Parents:  []string{folderID},
	}
	res, err := d.service.Files.Create(f).
		Media(bytes.NewReader(content), googleapi.ContentType("text/plain")).
		Fields("id, name, modifiedTime, parents").
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to create letter: %v", err)
	}

	modTime, _ := time.Parse(time.RFC3339, res.ModifiedTime)
	return &adapter.LetterMetadata{
		ID:           res.Id,
		Name:         res.Name,
		ModifiedTime: modTime,
		Parents:      res.Parents,
	}, nil
}

// ListLetters lists document-typed direct children of folderID.
func (d *DriveStore) ListLetters(ctx context.Context, folderID string) ([]adapter.LetterMetadata, error) {
	q := fmt.Sprintf("'%s' in parents and mimeType = '%s'", folderID, docMimeType)
	r, err := d.service.Files.List().
		Q(q).
		Fields("files(id, name, modifiedTime)").
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list letters: %v", err)
	}

	letters := []adapter.LetterMetadata{}
	for _, f := range r.Files {
		modTime, _ := time.Parse(time.RFC3339, f.ModifiedTime)
		letters = append(letters, adapter.LetterMetadata{
			ID:           f.Id,
			Name:         f.Name,
			ModifiedTime: modTime,
		})
	}
	return letters, nil
}

// DeleteLetter deletes a letter by its ID. Ownership is enforced by the
// upstream API against the caller's token.
func (d *DriveStore) DeleteLetter(ctx context.Context, fileID string) error {
	if err := d.service.Files.Delete(fileID).Do(); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: letter %s", adapter.ErrNotFound, fileID)
		}
		return fmt.Errorf("unable to delete letter: %v", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code == 404
	}
	return false
}
