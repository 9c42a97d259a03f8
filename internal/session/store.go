// Package session holds the server-side session store and the advisory
// lock used while provisioning Drive folders.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/aki/letterdrive/backend/internal/crypto"
	"github.com/aki/letterdrive/backend/internal/model"
)

// DefaultSessionTTL bounds how long a session stays valid.
const DefaultSessionTTL = 24 * time.Hour

// Store persists Principals between requests, keyed by session ID.
// Backed by DynamoDB; falls back to an in-memory map when no client is
// configured (DEV_MODE, tests). Access tokens are encrypted at rest.
type Store struct {
	dynamoClient *dynamodb.Client
	tableName    string
	encryptor    crypto.Encryptor
	ttl          time.Duration

	// In-memory fallback
	sessions map[string]model.SessionRecord
	mu       sync.RWMutex
}

// NewStore creates a Store with the default session TTL.
func NewStore(dynamoClient *dynamodb.Client, tableName string, encryptor crypto.Encryptor) *Store {
	return NewStoreWithTTL(dynamoClient, tableName, encryptor, DefaultSessionTTL)
}

// NewStoreWithTTL creates a Store with a custom session TTL.
func NewStoreWithTTL(dynamoClient *dynamodb.Client, tableName string, encryptor crypto.Encryptor, ttl time.Duration) *Store {
	return &Store{
		dynamoClient: dynamoClient,
		tableName:    tableName,
		encryptor:    encryptor,
		ttl:          ttl,
		sessions:     make(map[string]model.SessionRecord),
	}
}

// Create stores the principal under a fresh session ID and returns the ID.
func (s *Store) Create(ctx context.Context, principal model.Principal) (string, error) {
	encrypted, err := s.encryptor.Encrypt(ctx, principal.AccessToken)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt access token: %w", err)
	}

	now := time.Now()
	record := model.SessionRecord{
		SessionID:            uuid.New().String(),
		DisplayName:          principal.DisplayName,
		Email:                principal.Email,
		Role:                 principal.Role,
		EncryptedAccessToken: encrypted,
		ExpiresAt:            now.Add(s.ttl).Unix(),
		CreatedAt:            now,
	}

	if s.dynamoClient == nil {
		s.mu.Lock()
		s.sessions[record.SessionID] = record
		s.mu.Unlock()
		return record.SessionID, nil
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session record: %w", err)
	}

	_, err = s.dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return "", fmt.Errorf("failed to save session to DynamoDB: %w", err)
	}

	return record.SessionID, nil
}

// Get returns the principal for the session ID, decrypting the access token.
// Expired sessions are treated as not found; DynamoDB TTL reaps the rows
// lazily, so the expiry is checked on read as well.
func (s *Store) Get(ctx context.Context, sessionID string) (*model.Principal, error) {
	var record model.SessionRecord

	if s.dynamoClient == nil {
		s.mu.RLock()
		r, ok := s.sessions[sessionID]
		s.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("session not found")
		}
		record = r
	} else {
		out, err := s.dynamoClient.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(s.tableName),
			Key: map[string]types.AttributeValue{
				"session_id": &types.AttributeValueMemberS{Value: sessionID},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get session from DynamoDB: %w", err)
		}
		if out.Item == nil {
			return nil, fmt.Errorf("session not found")
		}

		if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session record: %w", err)
		}
	}

	if record.ExpiresAt < time.Now().Unix() {
		return nil, fmt.Errorf("session expired")
	}

	accessToken, err := s.encryptor.Decrypt(ctx, record.EncryptedAccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}

	return &model.Principal{
		DisplayName: record.DisplayName,
		Email:       record.Email,
		Role:        record.Role,
		AccessToken: accessToken,
	}, nil
}

// Delete removes the session. Deleting an unknown session is not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if s.dynamoClient == nil {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		return nil
	}

	_, err := s.dynamoClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"session_id": &types.AttributeValueMemberS{Value: sessionID},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete session from DynamoDB: %w", err)
	}
	return nil
}
