package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/aki/letterdrive/backend/internal/adapter"
	"github.com/aki/letterdrive/backend/internal/model"
)

func TestEnsureLettersFolder_Idempotent(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	first, err := s.EnsureLettersFolder(ctx)
	if err != nil {
		t.Fatalf("EnsureLettersFolder failed: %v", err)
	}
	second, err := s.EnsureLettersFolder(ctx)
	if err != nil {
		t.Fatalf("Second EnsureLettersFolder failed: %v", err)
	}

	if first != second {
		t.Errorf("Expected same folder ID, got %q and %q", first, second)
	}
	if n := s.FolderCount("Letters"); n != 1 {
		t.Errorf("Expected exactly 1 Letters folder, got %d", n)
	}
}

func TestEnsureMonthlyFolder_Idempotent(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	parent, _ := s.EnsureLettersFolder(ctx)

	first, err := s.EnsureMonthlyFolder(ctx, parent, "2026-08")
	if err != nil {
		t.Fatalf("EnsureMonthlyFolder failed: %v", err)
	}
	second, err := s.EnsureMonthlyFolder(ctx, parent, "2026-08")
	if err != nil {
		t.Fatalf("Second EnsureMonthlyFolder failed: %v", err)
	}

	if first != second {
		t.Errorf("Expected same folder ID, got %q and %q", first, second)
	}

	// A different month gets its own folder
	other, _ := s.EnsureMonthlyFolder(ctx, parent, "2026-09")
	if other == first {
		t.Error("Expected a distinct folder for a different month")
	}
}

func TestCreateAndListLetters_DirectChildrenOnly(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	top, _ := s.EnsureLettersFolder(ctx)
	month, _ := s.EnsureMonthlyFolder(ctx, top, "2026-08")

	meta, err := s.CreateLetter(ctx, "MyLetter_1.docx", []byte("dear reader"), month)
	if err != nil {
		t.Fatalf("CreateLetter failed: %v", err)
	}

	// Listing the monthly folder sees the letter
	inMonth, err := s.ListLetters(ctx, month)
	if err != nil {
		t.Fatalf("ListLetters failed: %v", err)
	}
	if len(inMonth) != 1 || inMonth[0].ID != meta.ID {
		t.Errorf("Expected the letter in the monthly folder, got %+v", inMonth)
	}

	// Listing the top-level folder does not recurse into subfolders
	inTop, err := s.ListLetters(ctx, top)
	if err != nil {
		t.Fatalf("ListLetters on top folder failed: %v", err)
	}
	if len(inTop) != 0 {
		t.Errorf("Expected no direct children of the top folder, got %d", len(inTop))
	}
}

func TestCreateLetter_UnknownFolder(t *testing.T) {
	s := NewStore()

	_, err := s.CreateLetter(context.Background(), "x.docx", nil, "no-such-folder")
	if !errors.Is(err, adapter.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeleteLetter(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	top, _ := s.EnsureLettersFolder(ctx)
	meta, _ := s.CreateLetter(ctx, "x.docx", []byte("bye"), top)

	if err := s.DeleteLetter(ctx, meta.ID); err != nil {
		t.Fatalf("DeleteLetter failed: %v", err)
	}

	err := s.DeleteLetter(ctx, meta.ID)
	if !errors.Is(err, adapter.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on double delete, got %v", err)
	}
}

func TestProvider_IsolatesPrincipals(t *testing.T) {
	p := NewProvider()
	ctx := context.Background()

	a, _ := p.GetStore(ctx, &model.Principal{Email: "a@co.com"})
	b, _ := p.GetStore(ctx, &model.Principal{Email: "b@co.com"})

	folderA, _ := a.EnsureLettersFolder(ctx)
	if _, err := a.CreateLetter(ctx, "a.docx", []byte("hi"), folderA); err != nil {
		t.Fatalf("CreateLetter failed: %v", err)
	}

	folderB, _ := b.EnsureLettersFolder(ctx)
	letters, _ := b.ListLetters(ctx, folderB)
	if len(letters) != 0 {
		t.Errorf("Expected b's store to be empty, got %d letters", len(letters))
	}

	// Same email gets the same store back
	again, _ := p.GetStore(ctx, &model.Principal{Email: "a@co.com"})
	lettersA, _ := again.ListLetters(ctx, folderA)
	if len(lettersA) != 1 {
		t.Errorf("Expected a's letter to persist across GetStore calls, got %d", len(lettersA))
	}
}
