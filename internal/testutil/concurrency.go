package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/vk/declrt/internal/registry"
	"github.com/vk/declrt/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// RecorderModule is a shared, self-contained module for concurrency tests.
// Its "Record" handler records every call, keyed by the string form of the
// first argument, and sleeps for the configured duration.
type RecorderModule struct {
	mu             sync.Mutex
	calls          map[string][]*CallRecord
	sleepDuration  time.Duration
	completionChan chan<- string
}

// NewRecorderModule creates a new recorder module for testing. A nil
// completionChan is allowed.
func NewRecorderModule(completionChan chan<- string, sleep time.Duration) *RecorderModule {
	return &RecorderModule{
		calls:          make(map[string][]*CallRecord),
		sleepDuration:  sleep,
		completionChan: completionChan,
	}
}

// Register registers the "Record" handler.
func (m *RecorderModule) Register(r *registry.Registry) {
	r.RegisterHandler("Record", m.record)
}

func (m *RecorderModule) record(ctx context.Context, args ...cty.Value) (cty.Value, error) {
	key := ""
	if len(args) > 0 {
		key = value.String(args[0])
	}

	rec := &CallRecord{Args: args, Start: time.Now()}
	if m.sleepDuration > 0 {
		select {
		case <-time.After(m.sleepDuration):
		case <-ctx.Done():
			return value.Unset, ctx.Err()
		}
	}
	rec.End = time.Now()

	m.mu.Lock()
	m.calls[key] = append(m.calls[key], rec)
	m.mu.Unlock()

	if m.completionChan != nil {
		m.completionChan <- key
	}
	return cty.True, nil
}

// Calls returns the records for key in completion order.
func (m *RecorderModule) Calls(key string) []*CallRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*CallRecord(nil), m.calls[key]...)
}

// Count returns the number of calls recorded for key.
func (m *RecorderModule) Count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls[key])
}
