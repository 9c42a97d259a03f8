package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/golang-jwt/jwt/v5"

	"github.com/aki/letterdrive/backend/internal/model"
	"github.com/aki/letterdrive/backend/internal/session"
)

const sessionCookieName = "session_token"

// headerValue looks up a header case-insensitively; API Gateway does not
// normalize header casing.
func headerValue(req events.APIGatewayProxyRequest, name string) string {
	for k, v := range req.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// cookieValue extracts a named cookie from the Cookie header.
func cookieValue(req events.APIGatewayProxyRequest, name string) string {
	cookies := headerValue(req, "Cookie")
	for _, part := range strings.Split(cookies, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, name+"=") {
			return strings.TrimPrefix(part, name+"=")
		}
	}
	return ""
}

// SessionIDFromRequest extracts the session ID from the Authorization header
// or the session cookie. The cookie value is a signed JWT whose "sid" claim
// names the server-side session.
func SessionIDFromRequest(req events.APIGatewayProxyRequest, jwtSecret string) (string, error) {
	// 1. Check Authorization Header (Bearer <token>)
	tokenString := ""
	authHeader := headerValue(req, "Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		tokenString = strings.TrimPrefix(authHeader, "Bearer ")
	}

	// 2. Check Cookie
	if tokenString == "" {
		tokenString = cookieValue(req, sessionCookieName)
	}

	if tokenString == "" {
		return "", fmt.Errorf("no session token found")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %v", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		if sid, ok := claims["sid"].(string); ok {
			return sid, nil
		}
	}

	return "", fmt.Errorf("invalid token claims")
}

// SignSessionToken produces the signed cookie value for a session ID.
func SignSessionToken(sessionID, jwtSecret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sid": sessionID,
		"exp": time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// principalFromRequest resolves the request to its session's principal.
func principalFromRequest(ctx context.Context, req events.APIGatewayProxyRequest, jwtSecret string, sessions *session.Store) (*model.Principal, error) {
	sid, err := SessionIDFromRequest(req, jwtSecret)
	if err != nil {
		return nil, err
	}
	return sessions.Get(ctx, sid)
}

// jsonResponse marshals v into a JSON API Gateway response.
func jsonResponse(status int, v interface{}) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(v)
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// messageResponse is the {"message": ...} body used for auth and status replies.
func messageResponse(status int, msg string) events.APIGatewayProxyResponse {
	return jsonResponse(status, map[string]string{"message": msg})
}

// upstreamErrorResponse surfaces an upstream failure as 500 with the raw
// message. Transient and permanent failures are not distinguished.
func upstreamErrorResponse(err error) events.APIGatewayProxyResponse {
	return jsonResponse(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
