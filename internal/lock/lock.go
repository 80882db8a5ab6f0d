// Package lock implements the PIN screen lock. The PIN is a lightweight
// deterrent for a shared device, not an access control boundary: the hash
// lives next to the data it guards and there is no rate limiting.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	metaKeyPINHash = "pin_hash"

	// DefaultIdleTimeout re-locks the screen after this much inactivity.
	DefaultIdleTimeout = 2 * time.Minute
)

var (
	ErrBadPIN    = errors.New("PIN must be 4 to 8 digits")
	ErrWrongPIN  = errors.New("wrong PIN")
	ErrPINNotSet = errors.New("no PIN configured")
	ErrPINSet    = errors.New("PIN already configured")
)

var pinPattern = regexp.MustCompile(`^[0-9]{4,8}$`)

// MetaStore is the key/value persistence the lock depends on.
type MetaStore interface {
	GetMeta(ctx context.Context, key string) (string, bool, error)
	SetMeta(ctx context.Context, key, value string) error
	DeleteMeta(ctx context.Context, key string) error
}

// Manager tracks the lock state. It starts locked; callers either unlock
// with the stored PIN or, on a fresh install, set one.
type Manager struct {
	meta    MetaStore
	timeout time.Duration
	now     func() time.Time

	mu       sync.Mutex
	unlocked bool
	lastSeen time.Time
}

func NewManager(meta MetaStore, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = DefaultIdleTimeout
	}
	return &Manager{meta: meta, timeout: timeout, now: time.Now}
}

// Configured reports whether a PIN has been set.
func (m *Manager) Configured(ctx context.Context) (bool, error) {
	_, ok, err := m.meta.GetMeta(ctx, metaKeyPINHash)
	if err != nil {
		return false, fmt.Errorf("read pin hash: %w", err)
	}
	return ok, nil
}

// SetPIN stores the hash of a new PIN and unlocks. Only valid on a fresh
// install or after Reset; changing an existing PIN requires knowing it is
// gone first.
func (m *Manager) SetPIN(ctx context.Context, pin string) error {
	if !pinPattern.MatchString(pin) {
		return ErrBadPIN
	}
	if ok, err := m.Configured(ctx); err != nil {
		return err
	} else if ok {
		return ErrPINSet
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash pin: %w", err)
	}
	if err := m.meta.SetMeta(ctx, metaKeyPINHash, string(hash)); err != nil {
		return fmt.Errorf("store pin hash: %w", err)
	}

	m.markUnlocked()
	slog.InfoContext(ctx, "PIN configured")
	return nil
}

// Unlock verifies the PIN against the stored hash.
func (m *Manager) Unlock(ctx context.Context, pin string) error {
	hash, ok, err := m.meta.GetMeta(ctx, metaKeyPINHash)
	if err != nil {
		return fmt.Errorf("read pin hash: %w", err)
	}
	if !ok {
		return ErrPINNotSet
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		return ErrWrongPIN
	}
	m.markUnlocked()
	return nil
}

// Lock re-locks immediately.
func (m *Manager) Lock() {
	m.mu.Lock()
	m.unlocked = false
	m.mu.Unlock()
}

// Reset discards the stored PIN and locks. The ledger data is untouched;
// the next visit goes through PIN setup again.
func (m *Manager) Reset(ctx context.Context) error {
	if err := m.meta.DeleteMeta(ctx, metaKeyPINHash); err != nil {
		return fmt.Errorf("delete pin hash: %w", err)
	}
	m.Lock()
	slog.InfoContext(ctx, "PIN reset")
	return nil
}

// Touch records activity, deferring the idle re-lock.
func (m *Manager) Touch() {
	m.mu.Lock()
	if m.unlocked {
		m.lastSeen = m.now()
	}
	m.mu.Unlock()
}

// Locked reports the current state, applying the idle timeout lazily.
func (m *Manager) Locked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unlocked && m.now().Sub(m.lastSeen) > m.timeout {
		m.unlocked = false
	}
	return !m.unlocked
}

func (m *Manager) markUnlocked() {
	m.mu.Lock()
	m.unlocked = true
	m.lastSeen = m.now()
	m.mu.Unlock()
}
