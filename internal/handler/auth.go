package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/aki/letterdrive/backend/internal/auth"
	"github.com/aki/letterdrive/backend/internal/model"
	"github.com/aki/letterdrive/backend/internal/session"
)

const stateCookieName = "oauth_state"

// AuthHandler handles the OAuth login flow and session endpoints.
type AuthHandler struct {
	oauthService *auth.OAuthService
	sessions     *session.Store
	jwtSecret    string
	frontendURL  string
	adminSuffix  string
	devMode      bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(oauthService *auth.OAuthService, sessions *session.Store, jwtSecret, frontendURL, adminSuffix string, devMode bool) *AuthHandler {
	return &AuthHandler{
		oauthService: oauthService,
		sessions:     sessions,
		jwtSecret:    jwtSecret,
		frontendURL:  frontendURL,
		adminSuffix:  adminSuffix,
		devMode:      devMode,
	}
}

func (h *AuthHandler) sameSite() string {
	// Frontend and API are served from different origins in production, so
	// the session cookie needs SameSite=None to survive the OAuth redirects.
	if h.devMode {
		return "Lax"
	}
	return "None"
}

// loginRedirect sends the browser back to the login view.
func (h *AuthHandler) loginRedirect() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusFound,
		Headers: map[string]string{
			"Location": h.frontendURL + "/",
		},
	}
}

// Login initiates the Google OAuth2 flow.
func (h *AuthHandler) Login(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	state := uuid.New().String()
	url := h.oauthService.AuthURL(state)

	stateCookie := fmt.Sprintf("%s=%s; HttpOnly; Path=/; Max-Age=600; SameSite=%s; Secure", stateCookieName, state, h.sameSite())

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusFound,
		Headers: map[string]string{
			"Location": url,
		},
		MultiValueHeaders: map[string][]string{
			"Set-Cookie": {stateCookie},
		},
	}, nil
}

// Callback handles the OAuth2 redirect from Google. Any provider-side
// failure sends the browser back to the login view.
func (h *AuthHandler) Callback(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if errMsg := req.QueryStringParameters["error"]; errMsg != "" {
		fmt.Printf("OAuth callback error from provider: %s\n", errMsg)
		return h.loginRedirect(), nil
	}

	code := req.QueryStringParameters["code"]
	if code == "" {
		return h.loginRedirect(), nil
	}

	if !h.stateMatches(req) {
		fmt.Println("OAuth callback state mismatch")
		return h.loginRedirect(), nil
	}

	token, err := h.oauthService.Exchange(ctx, code)
	if err != nil {
		fmt.Printf("Exchange error: %v\n", err)
		return h.loginRedirect(), nil
	}

	userinfo, err := h.oauthService.FetchUserInfo(ctx, token)
	if err != nil {
		fmt.Printf("FetchUserInfo error: %v\n", err)
		return h.loginRedirect(), nil
	}

	// Role is derived here, stored in the session, and never recomputed.
	principal := model.Principal{
		DisplayName: userinfo.Name,
		Email:       userinfo.Email,
		Role:        auth.ResolveRole(userinfo.Email, h.adminSuffix),
		AccessToken: token.AccessToken,
	}

	sessionID, err := h.sessions.Create(ctx, principal)
	if err != nil {
		fmt.Printf("Session create error: %v\n", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError, Body: "Failed to create session"}, nil
	}

	signed, err := SignSessionToken(sessionID, h.jwtSecret, session.DefaultSessionTTL)
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError, Body: "Failed to sign token"}, nil
	}

	sessionCookie := fmt.Sprintf("%s=%s; HttpOnly; Path=/; Max-Age=86400; SameSite=%s; Secure", sessionCookieName, signed, h.sameSite())
	clearState := fmt.Sprintf("%s=; HttpOnly; Path=/; Max-Age=0; SameSite=%s; Secure", stateCookieName, h.sameSite())

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusFound,
		Headers: map[string]string{
			"Location": h.frontendURL + "/dashboard",
		},
		MultiValueHeaders: map[string][]string{
			"Set-Cookie": {sessionCookie, clearState},
		},
	}, nil
}

// stateMatches verifies the callback state against the cookie set at login.
func (h *AuthHandler) stateMatches(req events.APIGatewayProxyRequest) bool {
	state := req.QueryStringParameters["state"]
	return state != "" && state == cookieValue(req, stateCookieName)
}

// GetUser returns the current principal's profile.
func (h *AuthHandler) GetUser(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	principal, err := principalFromRequest(ctx, req, h.jwtSecret, h.sessions)
	if err != nil {
		return messageResponse(http.StatusUnauthorized, "Not authenticated"), nil
	}

	return jsonResponse(http.StatusOK, map[string]string{
		"displayName": principal.DisplayName,
		"email":       principal.Email,
		"role":        string(principal.Role),
	}), nil
}

// Logout destroys the server-side session and clears the cookie.
func (h *AuthHandler) Logout(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if sid, err := SessionIDFromRequest(req, h.jwtSecret); err == nil {
		if err := h.sessions.Delete(ctx, sid); err != nil {
			fmt.Printf("Session destroy error: %v\n", err)
			return messageResponse(http.StatusInternalServerError, "Failed to destroy session"), nil
		}
	}

	clearCookie := fmt.Sprintf("%s=; HttpOnly; Path=/; Max-Age=0; SameSite=%s; Secure", sessionCookieName, h.sameSite())

	resp := messageResponse(http.StatusOK, "Logged out successfully")
	resp.MultiValueHeaders = map[string][]string{
		"Set-Cookie": {clearCookie},
	}
	return resp, nil
}
