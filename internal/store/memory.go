package store

import (
	"context"
	"sort"
	"sync"

	"github.com/xjzfwqgf/chat-web/internal/model"
)

// Memory is an in-process message log used when no database is configured
type Memory struct {
	mu       sync.RWMutex
	lastSeq  int64
	messages []model.Message // ascending by SequenceNumber
}

// NewMemory creates an empty in-memory log
func NewMemory() *Memory {
	return &Memory{}
}

// Append stores msg under the next sequence number and writes it back to msg
func (s *Memory) Append(ctx context.Context, msg *model.Message) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, persistenceError("append", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSeq++
	msg.SequenceNumber = s.lastSeq

	stored := *msg
	if msg.Attachment != nil {
		att := *msg.Attachment
		stored.Attachment = &att
	}
	s.messages = append(s.messages, stored)

	return stored.SequenceNumber, nil
}

// ListOrdered returns a snapshot of the scope in ascending sequence order
func (s *Memory) ListOrdered(ctx context.Context, scope model.Scope) ([]model.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, persistenceError("list", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Message, 0, len(s.messages))
	for _, m := range s.messages {
		if m.Scope != scope {
			continue
		}
		if m.Attachment != nil {
			att := *m.Attachment
			m.Attachment = &att
		}
		out = append(out, m)
	}
	return out, nil
}

// DeleteBySequenceNumber removes the message with seq. Missing rows return false.
func (s *Memory) DeleteBySequenceNumber(ctx context.Context, seq int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, persistenceError("delete", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := sort.Search(len(s.messages), func(i int) bool {
		return s.messages[i].SequenceNumber >= seq
	})
	if i == len(s.messages) || s.messages[i].SequenceNumber != seq {
		return false, nil
	}

	s.messages = append(s.messages[:i], s.messages[i+1:]...)
	return true, nil
}
