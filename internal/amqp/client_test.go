package amqp

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
		{40, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"connection closed", errors.New("connection closed"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"other error", errors.New("some other error"), false},
		{"validation error", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestNewBatchSavedMessage(t *testing.T) {
	msg := NewBatchSavedMessage([]int64{3, 4, 5}, "2024-01-08", "tithe")

	if msg.Count != 3 {
		t.Errorf("Count = %d, want 3", msg.Count)
	}
	if msg.Date != "2024-01-08" || msg.Type != "tithe" {
		t.Errorf("message = %+v", msg)
	}
	if msg.Timestamp.IsZero() || time.Since(msg.Timestamp) > time.Second {
		t.Errorf("Timestamp should be recent, got %v", msg.Timestamp)
	}
}

func TestBatchSavedMessage_JSON(t *testing.T) {
	msg := &BatchSavedMessage{
		IDs:       []int64{1, 2},
		Date:      "2024-01-08",
		Type:      "tithe",
		Count:     2,
		Timestamp: time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC),
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := BatchSavedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("BatchSavedMessageFromJSON() error = %v", err)
	}
	if len(parsed.IDs) != 2 || parsed.IDs[0] != 1 || parsed.IDs[1] != 2 {
		t.Errorf("Parsed IDs = %v", parsed.IDs)
	}
	if parsed.Date != msg.Date || parsed.Type != msg.Type || parsed.Count != msg.Count {
		t.Errorf("Parsed = %+v, want %+v", parsed, msg)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestBatchSavedMessage_InvalidJSON(t *testing.T) {
	if _, err := BatchSavedMessageFromJSON([]byte(`{"ids": "nope"}`)); err == nil {
		t.Error("BatchSavedMessageFromJSON() should fail with invalid JSON")
	}
}
