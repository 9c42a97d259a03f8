package handler_test

import (
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/golang-jwt/jwt/v5"

	"github.com/aki/letterdrive/backend/internal/handler"
)

const (
	testJWTSecret = "test-secret"
	testSessionID = "session-abc-123"
)

func makeToken(t *testing.T, sessionID string) string {
	t.Helper()
	token, err := handler.SignSessionToken(sessionID, testJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("SignSessionToken failed: %v", err)
	}
	return token
}

func TestSessionIDFromRequest_BearerToken(t *testing.T) {
	token := makeToken(t, testSessionID)
	req := events.APIGatewayProxyRequest{
		Headers: map[string]string{
			"Authorization": "Bearer " + token,
		},
	}

	sid, err := handler.SessionIDFromRequest(req, testJWTSecret)
	if err != nil {
		t.Fatalf("SessionIDFromRequest failed: %v", err)
	}
	if sid != testSessionID {
		t.Errorf("Expected session ID '%s', got '%s'", testSessionID, sid)
	}
}

func TestSessionIDFromRequest_Cookie(t *testing.T) {
	token := makeToken(t, testSessionID)
	req := events.APIGatewayProxyRequest{
		Headers: map[string]string{
			"Cookie": "session_token=" + token + "; Path=/",
		},
	}

	sid, err := handler.SessionIDFromRequest(req, testJWTSecret)
	if err != nil {
		t.Fatalf("SessionIDFromRequest from cookie failed: %v", err)
	}
	if sid != testSessionID {
		t.Errorf("Expected session ID '%s', got '%s'", testSessionID, sid)
	}
}

func TestSessionIDFromRequest_NoToken(t *testing.T) {
	req := events.APIGatewayProxyRequest{
		Headers: map[string]string{},
	}

	_, err := handler.SessionIDFromRequest(req, testJWTSecret)
	if err == nil {
		t.Error("Expected error for missing token, got nil")
	}
}

func TestSessionIDFromRequest_InvalidToken(t *testing.T) {
	req := events.APIGatewayProxyRequest{
		Headers: map[string]string{
			"Authorization": "Bearer invalid-jwt-token",
		},
	}

	_, err := handler.SessionIDFromRequest(req, testJWTSecret)
	if err == nil {
		t.Error("Expected error for invalid token, got nil")
	}
}

func TestSessionIDFromRequest_WrongSecret(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": testSessionID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, _ := token.SignedString([]byte("some-other-secret"))

	req := events.APIGatewayProxyRequest{
		Headers: map[string]string{
			"Authorization": "Bearer " + signed,
		},
	}

	_, err := handler.SessionIDFromRequest(req, testJWTSecret)
	if err == nil {
		t.Error("Expected error for token signed with wrong secret, got nil")
	}
}

func TestSessionIDFromRequest_ExpiredToken(t *testing.T) {
	// Create an expired token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": testSessionID,
		"exp": time.Now().Add(-1 * time.Hour).Unix(),
	})
	signed, _ := token.SignedString([]byte(testJWTSecret))

	req := events.APIGatewayProxyRequest{
		Headers: map[string]string{
			"Authorization": "Bearer " + signed,
		},
	}

	_, err := handler.SessionIDFromRequest(req, testJWTSecret)
	if err == nil {
		t.Error("Expected error for expired token, got nil")
	}
}

func TestSessionIDFromRequest_CaseInsensitiveHeaders(t *testing.T) {
	token := makeToken(t, testSessionID)
	req := events.APIGatewayProxyRequest{
		Headers: map[string]string{
			"authorization": "Bearer " + token, // lowercase
		},
	}

	sid, err := handler.SessionIDFromRequest(req, testJWTSecret)
	if err != nil {
		t.Fatalf("SessionIDFromRequest with lowercase header failed: %v", err)
	}
	if sid != testSessionID {
		t.Errorf("Expected session ID '%s', got '%s'", testSessionID, sid)
	}
}
