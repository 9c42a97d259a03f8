package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLockManager_AcquireAndRelease(t *testing.T) {
	m := NewLockManager(nil, "test-locks")
	ctx := context.Background()

	if err := m.Acquire(ctx, "user1"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if err := m.Release(ctx, "user1"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	// Lock is free again after release
	if err := m.Acquire(ctx, "user1"); err != nil {
		t.Errorf("Acquire after release failed: %v", err)
	}
}

func TestLockManager_DoubleAcquire(t *testing.T) {
	m := NewLockManager(nil, "test-locks")
	ctx := context.Background()

	if err := m.Acquire(ctx, "user1"); err != nil {
		t.Fatalf("First acquire failed: %v", err)
	}

	err := m.Acquire(ctx, "user1")
	if !errors.Is(err, ErrLockHeld) {
		t.Errorf("Expected ErrLockHeld on second acquire, got %v", err)
	}
}

func TestLockManager_IndependentUsers(t *testing.T) {
	m := NewLockManager(nil, "test-locks")
	ctx := context.Background()

	if err := m.Acquire(ctx, "user1"); err != nil {
		t.Fatalf("Acquire for user1 failed: %v", err)
	}
	if err := m.Acquire(ctx, "user2"); err != nil {
		t.Errorf("Acquire for user2 should be independent: %v", err)
	}
}

func TestLockManager_ExpiredLockIsReacquirable(t *testing.T) {
	m := NewLockManager(nil, "test-locks")
	m.ttl = -1 * time.Second // every lock is born expired
	ctx := context.Background()

	if err := m.Acquire(ctx, "user1"); err != nil {
		t.Fatalf("First acquire failed: %v", err)
	}

	if err := m.Acquire(ctx, "user1"); err != nil {
		t.Errorf("Expected expired lock to be reacquirable, got %v", err)
	}
}

func TestLockManager_ReleaseAbsentLock(t *testing.T) {
	m := NewLockManager(nil, "test-locks")

	if err := m.Release(context.Background(), "never-locked"); err != nil {
		t.Errorf("Releasing an absent lock should not fail: %v", err)
	}
}
