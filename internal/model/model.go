package model

import "time"

// Role is the authorization level derived from the user's email at login.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Principal is the authenticated identity for the current session: Google
// profile, derived role, and the Drive access token. The role is computed
// once at callback time and never recomputed afterwards.
type Principal struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	AccessToken string `json:"-"`
}

// SessionRecord is the server-side session as stored in DynamoDB.
// The access token is encrypted before the record is written.
type SessionRecord struct {
	SessionID            string    `json:"session_id" dynamodbav:"session_id"`
	DisplayName          string    `json:"display_name" dynamodbav:"display_name"`
	Email                string    `json:"email" dynamodbav:"email"`
	Role                 Role      `json:"role" dynamodbav:"role"`
	EncryptedAccessToken string    `json:"encrypted_access_token" dynamodbav:"encrypted_access_token"`
	ExpiresAt            int64     `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix timestamp)
	CreatedAt            time.Time `json:"created_at" dynamodbav:"created_at"`
}

// ProvisionLock is the advisory lock serializing folder provisioning for a user.
type ProvisionLock struct {
	UserID    string `json:"user_id" dynamodbav:"user_id"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix timestamp)
}
