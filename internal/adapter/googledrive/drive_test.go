package googledrive

import (
	"testing"

	"google.golang.org/api/drive/v3"
)

func TestFolderQuery(t *testing.T) {
	tests := []struct {
		name     string
		folder   string
		parentID string
		want     string
	}{
		{
			"top-level Letters folder",
			"Letters", "root",
			"name = 'Letters' and mimeType = 'application/vnd.google-apps.folder' and 'root' in parents and trashed = false",
		},
		{
			"monthly folder under parent",
			"2026-08", "folder-abc",
			"name = '2026-08' and mimeType = 'application/vnd.google-apps.folder' and 'folder-abc' in parents and trashed = false",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := folderQuery(tt.folder, tt.parentID); got != tt.want {
				t.Errorf("folderQuery(%q, %q) = %q, want %q", tt.folder, tt.parentID, got, tt.want)
			}
		})
	}
}

func TestOldestFolder(t *testing.T) {
	files := []*drive.File{
		{Id: "b", CreatedTime: "2025-03-01T00:00:00Z"},
		{Id: "a", CreatedTime: "2024-12-31T23:59:59Z"},
		{Id: "c", CreatedTime: "2025-03-01T00:00:01Z"},
	}
	if got := oldestFolder(files); got.Id != "a" {
		t.Errorf("oldestFolder picked %q, want %q", got.Id, "a")
	}
}

func TestOldestFolder_SingleEntry(t *testing.T) {
	files := []*drive.File{{Id: "only", CreatedTime: "2025-01-01T00:00:00Z"}}
	if got := oldestFolder(files); got.Id != "only" {
		t.Errorf("oldestFolder picked %q, want %q", got.Id, "only")
	}
}

func TestOldestFolder_UnparseableTimeSkipped(t *testing.T) {
	files := []*drive.File{
		{Id: "valid", CreatedTime: "2025-06-01T00:00:00Z"},
		{Id: "broken", CreatedTime: "not-a-timestamp"},
	}
	if got := oldestFolder(files); got.Id != "valid" {
		t.Errorf("oldestFolder picked %q, want %q", got.Id, "valid")
	}
}
