package googledrive

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/aki/letterdrive/backend/internal/adapter"
	"github.com/aki/letterdrive/backend/internal/model"
)

// Provider implements adapter.Provider for Google Drive.
type Provider struct{}

// NewProvider creates a new Google Drive provider.
func NewProvider() *Provider {
	return &Provider{}
}

// GetStore returns a DriveStore authenticated as the principal.
// The session holds only the access token; when it expires Drive calls fail
// and the user must log in again. No refresh is attempted.
func (p *Provider) GetStore(ctx context.Context, principal *model.Principal) (adapter.LetterStore, error) {
	token := &oauth2.Token{AccessToken: principal.AccessToken}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	store, err := NewDriveStore(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive store: %w", err)
	}
	return store, nil
}
