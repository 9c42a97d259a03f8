package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// UserInfo is the Google profile subset the application cares about.
type UserInfo struct {
	ID    string
	Email string
	Name  string
}

// OAuthService wraps the Google OAuth2 code flow.
type OAuthService struct {
	oauthConfig *oauth2.Config
}

// NewOAuthService creates a new OAuthService.
// The oauthConfig is constructed once by the caller at process start and
// injected here; there is no package-level registration.
func NewOAuthService(oauthConfig *oauth2.Config) *OAuthService {
	return &OAuthService{oauthConfig: oauthConfig}
}

// Config returns the OAuth2 config.
func (s *OAuthService) Config() *oauth2.Config {
	return s.oauthConfig
}

// AuthURL returns the URL to redirect the user to for Google consent.
func (s *OAuthService) AuthURL(state string) string {
	return s.oauthConfig.AuthCodeURL(state)
}

// Exchange exchanges the authorization code for an access token.
func (s *OAuthService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return s.oauthConfig.Exchange(ctx, code)
}

// FetchUserInfo retrieves the verified profile for the token's account.
func (s *OAuthService) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(s.oauthConfig.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth2 service: %w", err)
	}

	info, err := svc.Userinfo.Get().Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}

	return &UserInfo{
		ID:    info.Id,
		Email: info.Email,
		Name:  info.Name,
	}, nil
}
