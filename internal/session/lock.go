package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/aki/letterdrive/backend/internal/model"
)

// DefaultLockTTL bounds how long a provisioning lock can be held, so a
// crashed request cannot block a user's saves for long.
const DefaultLockTTL = 30 * time.Second

// ErrLockHeld is returned when another request holds the user's lock.
var ErrLockHeld = errors.New("provisioning lock held by another request")

// LockManager serializes the check-then-create folder sequence per user,
// using a DynamoDB conditional put with TTL. Drive offers no atomic
// find-or-create, so without this two concurrent first saves can both pass
// the lookup and create duplicate folders. The lock is advisory: callers
// may proceed without it and rely on the oldest-folder tie-break.
// Falls back to an in-memory map when no client is configured.
type LockManager struct {
	dynamoClient *dynamodb.Client
	tableName    string
	ttl          time.Duration

	// In-memory fallback
	locks map[string]int64
	mu    sync.Mutex
}

// NewLockManager creates a new LockManager.
func NewLockManager(dynamoClient *dynamodb.Client, tableName string) *LockManager {
	return &LockManager{
		dynamoClient: dynamoClient,
		tableName:    tableName,
		ttl:          DefaultLockTTL,
		locks:        make(map[string]int64),
	}
}

// Acquire takes the provisioning lock for the user. It succeeds if no lock
// exists or the existing lock has expired; otherwise it returns ErrLockHeld.
func (m *LockManager) Acquire(ctx context.Context, userID string) error {
	now := time.Now().Unix()
	expiresAt := now + int64(m.ttl.Seconds())

	if m.dynamoClient == nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		if existing, ok := m.locks[userID]; ok && existing > now {
			return ErrLockHeld
		}
		m.locks[userID] = expiresAt
		return nil
	}

	lock := model.ProvisionLock{
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	item, err := attributevalue.MarshalMap(lock)
	if err != nil {
		return fmt.Errorf("failed to marshal lock: %w", err)
	}

	_, err = m.dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(m.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(user_id) OR expires_at < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now)},
		},
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return ErrLockHeld
		}
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	return nil
}

// Release drops the user's provisioning lock. Releasing an absent lock is
// not an error.
func (m *LockManager) Release(ctx context.Context, userID string) error {
	if m.dynamoClient == nil {
		m.mu.Lock()
		delete(m.locks, userID)
		m.mu.Unlock()
		return nil
	}

	_, err := m.dynamoClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(m.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}
