package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
)

// TestAnalyzeEntryPayload tests the AnalyzeEntryPayload structure
func TestAnalyzeEntryPayload(t *testing.T) {
	payload := AnalyzeEntryPayload{
		EntryID:    "entry-123",
		UserID:     "user-456",
		EnqueuedAt: time.Now().UnixNano(),
	}

	data, err := json.Marshal(payload)
	assert.NoError(t, err)
	assert.NotEmpty(t, data)

	var decoded AnalyzeEntryPayload
	err = json.Unmarshal(data, &decoded)
	assert.NoError(t, err)
	assert.Equal(t, payload.EntryID, decoded.EntryID)
	assert.Equal(t, payload.UserID, decoded.UserID)
	assert.Equal(t, payload.EnqueuedAt, decoded.EnqueuedAt)
}

// TestAnalyzeEntryPayloadOmitsEmptyTrace verifies trace fields stay out of
// the payload when no trace was active at enqueue time
func TestAnalyzeEntryPayloadOmitsEmptyTrace(t *testing.T) {
	data, err := json.Marshal(AnalyzeEntryPayload{EntryID: "e1", UserID: "u1"})
	assert.NoError(t, err)
	assert.NotContains(t, string(data), "trace_id")
	assert.NotContains(t, string(data), "span_id")
}

// TestRetryDelay tests the backoff schedule
func TestRetryDelay(t *testing.T) {
	task := asynq.NewTask(TypeAnalyzeEntry, nil)

	tests := []struct {
		name     string
		retry    int
		expected time.Duration
	}{
		{"First retry", 0, 30 * time.Second},
		{"Second retry", 1, 2 * time.Minute},
		{"Third retry", 2, 10 * time.Minute},
		{"Beyond schedule", 5, 10 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, retryDelay(tt.retry, nil, task))
		})
	}
}
