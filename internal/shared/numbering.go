package shared

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Sequence kinds used for project-scoped entity numbers.
const (
	SequenceSubmittal = "SUB"
	SequenceRFI       = "RFI"
	SequencePunchList = "PL"
)

// Sequencer hands out monotonically increasing numbers per project and kind.
// Implementations must be atomic across concurrent callers.
type Sequencer interface {
	Next(ctx context.Context, projectID uuid.UUID, kind string) (int64, error)
}

// FormatEntityNumber renders numbers like SUB-001. Values above 999 print in full.
func FormatEntityNumber(kind string, n int64) string {
	return fmt.Sprintf("%s-%03d", kind, n)
}

// NextEntityNumber draws the next value from seq and formats it.
func NextEntityNumber(ctx context.Context, seq Sequencer, projectID uuid.UUID, kind string) (string, error) {
	n, err := seq.Next(ctx, projectID, kind)
	if err != nil {
		return "", fmt.Errorf("next %s number: %w", kind, err)
	}
	return FormatEntityNumber(kind, n), nil
}

// MemorySequencer is an in-process Sequencer.
type MemorySequencer struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewMemorySequencer constructs a MemorySequencer.
func NewMemorySequencer() *MemorySequencer {
	return &MemorySequencer{values: make(map[string]int64)}
}

// Next implements Sequencer.
func (s *MemorySequencer) Next(_ context.Context, projectID uuid.UUID, kind string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := projectID.String() + ":" + kind
	s.values[key]++
	return s.values[key], nil
}
