package adapter

import (
	"context"

	"github.com/aki/letterdrive/backend/internal/model"
)

// Provider defines how to get a LetterStore acting as a specific principal.
// Every durable write goes to the principal's own storage account, so the
// store is constructed per request from the session's access token.
type Provider interface {
	GetStore(ctx context.Context, principal *model.Principal) (LetterStore, error)
}
