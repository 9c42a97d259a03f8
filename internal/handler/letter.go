package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/aki/letterdrive/backend/internal/adapter"
	"github.com/aki/letterdrive/backend/internal/model"
	"github.com/aki/letterdrive/backend/internal/session"
)

// LetterHandler handles saving, listing and deleting letters.
type LetterHandler struct {
	provider  adapter.Provider
	sessions  *session.Store
	locks     *session.LockManager
	jwtSecret string
}

// NewLetterHandler creates a new LetterHandler.
func NewLetterHandler(provider adapter.Provider, sessions *session.Store, locks *session.LockManager, jwtSecret string) *LetterHandler {
	return &LetterHandler{
		provider:  provider,
		sessions:  sessions,
		locks:     locks,
		jwtSecret: jwtSecret,
	}
}

// letterName derives the timestamped document name for a new letter.
func letterName(t time.Time) string {
	return fmt.Sprintf("MyLetter_%d.docx", t.UnixMilli())
}

// SaveLetter provisions the Letters/YYYY-MM hierarchy and creates the
// document inside it. Any upstream failure aborts the whole save; an empty
// folder created before the failure is left behind.
func (h *LetterHandler) SaveLetter(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	principal, err := principalFromRequest(ctx, req, h.jwtSecret, h.sessions)
	if err != nil {
		return messageResponse(http.StatusUnauthorized, "Not authenticated"), nil
	}

	var input struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(req.Body), &input); err != nil {
		return messageResponse(http.StatusBadRequest, "Invalid request body"), nil
	}
	// Empty content is accepted; the upstream API's own limits are the only
	// validation.

	store, err := h.provider.GetStore(ctx, principal)
	if err != nil {
		fmt.Printf("GetStore error: %v\n", err)
		return upstreamErrorResponse(err), nil
	}

	// Serialize the check-then-create sequence per user. The lock is
	// advisory: if another request holds it we proceed anyway and rely on
	// the oldest-folder tie-break to keep lookups deterministic.
	if err := h.locks.Acquire(ctx, principal.Email); err != nil {
		fmt.Printf("Provisioning lock not acquired for %s: %v\n", principal.Email, err)
	} else {
		defer func() {
			if err := h.locks.Release(ctx, principal.Email); err != nil {
				fmt.Printf("Provisioning lock release error: %v\n", err)
			}
		}()
	}

	lettersFolderID, err := store.EnsureLettersFolder(ctx)
	if err != nil {
		fmt.Printf("EnsureLettersFolder error: %v\n", err)
		return upstreamErrorResponse(err), nil
	}

	now := time.Now()
	monthlyFolderID, err := store.EnsureMonthlyFolder(ctx, lettersFolderID, adapter.MonthKey(now))
	if err != nil {
		fmt.Printf("EnsureMonthlyFolder error: %v\n", err)
		return upstreamErrorResponse(err), nil
	}

	file, err := store.CreateLetter(ctx, letterName(now), []byte(input.Content), monthlyFolderID)
	if err != nil {
		fmt.Printf("CreateLetter error: %v\n", err)
		return upstreamErrorResponse(err), nil
	}

	return jsonResponse(http.StatusOK, map[string]string{
		"fileId":   file.ID,
		"folderId": monthlyFolderID,
	}), nil
}

// letterEntry is the list-response shape.
type letterEntry struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ModifiedTime string `json:"modifiedTime"`
}

// ListLetters lists document children of the top-level Letters folder.
// Admin only. Direct children only; letters live in monthly subfolders, so
// this mirrors the observed behavior rather than a recursive listing.
func (h *LetterHandler) ListLetters(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	principal, resp, ok := h.requireAdmin(ctx, req)
	if !ok {
		return resp, nil
	}

	store, err := h.provider.GetStore(ctx, principal)
	if err != nil {
		fmt.Printf("GetStore error: %v\n", err)
		return upstreamErrorResponse(err), nil
	}

	lettersFolderID, err := store.EnsureLettersFolder(ctx)
	if err != nil {
		fmt.Printf("EnsureLettersFolder error: %v\n", err)
		return upstreamErrorResponse(err), nil
	}

	letters, err := store.ListLetters(ctx, lettersFolderID)
	if err != nil {
		fmt.Printf("ListLetters error: %v\n", err)
		return upstreamErrorResponse(err), nil
	}

	entries := []letterEntry{}
	for _, l := range letters {
		entries = append(entries, letterEntry{
			ID:           l.ID,
			Name:         l.Name,
			ModifiedTime: l.ModifiedTime.Format(time.RFC3339),
		})
	}

	return jsonResponse(http.StatusOK, map[string][]letterEntry{"letters": entries}), nil
}

// DeleteLetter deletes a letter by ID. Admin only. The upstream API
// enforces that the token's account can actually touch the file.
func (h *LetterHandler) DeleteLetter(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	principal, resp, ok := h.requireAdmin(ctx, req)
	if !ok {
		return resp, nil
	}

	fileID := req.PathParameters["fileId"]
	if fileID == "" {
		return messageResponse(http.StatusBadRequest, "Missing file ID"), nil
	}

	store, err := h.provider.GetStore(ctx, principal)
	if err != nil {
		fmt.Printf("GetStore error: %v\n", err)
		return upstreamErrorResponse(err), nil
	}

	if err := store.DeleteLetter(ctx, fileID); err != nil {
		fmt.Printf("DeleteLetter error: %v\n", err)
		return upstreamErrorResponse(err), nil
	}

	return messageResponse(http.StatusOK, "Letter deleted successfully"), nil
}

// requireAdmin gates a request on an authenticated admin principal.
func (h *LetterHandler) requireAdmin(ctx context.Context, req events.APIGatewayProxyRequest) (*model.Principal, events.APIGatewayProxyResponse, bool) {
	principal, err := principalFromRequest(ctx, req, h.jwtSecret, h.sessions)
	if err != nil {
		return nil, messageResponse(http.StatusUnauthorized, "Not authenticated"), false
	}
	if principal.Role != model.RoleAdmin {
		return nil, messageResponse(http.StatusForbidden, "Access denied. Insufficient permissions."), false
	}
	return principal, events.APIGatewayProxyResponse{}, true
}
