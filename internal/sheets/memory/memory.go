// Package memory is an in-process SummaryWriter used in tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"finledger/internal/core"
)

type Store struct {
	mu    sync.Mutex
	items []core.Summary
}

func New() *Store {
	return &Store{}
}

// AppendSummary stores the summary and returns a synthetic row reference.
func (s *Store) AppendSummary(_ context.Context, sum core.Summary) (string, error) {
	if _, err := core.ParseMonth(string(sum.Month)); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, sum)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Summaries returns a copy of everything appended so far.
func (s *Store) Summaries() []core.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Summary(nil), s.items...)
}
