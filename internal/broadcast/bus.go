// Package broadcast fans realtime events out to every connected session.
//
// The Bus owns the registry of sessions. Each session has a buffered send
// channel drained by its transport; Publish never blocks on a session, and a
// session whose buffer is full is evicted instead of delaying the others.
package broadcast

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xjzfwqgf/chat-web/internal/metrics"
	"github.com/xjzfwqgf/chat-web/internal/model"
)

// ErrUnknownSession is returned by SendTo for a session that is not registered
var ErrUnknownSession = errors.New("unknown session")

// Session is one connected client
type Session struct {
	ID   string
	send chan []byte

	mu     sync.Mutex
	handle string
}

// Send returns the outgoing payload channel. It is closed when the session is
// unregistered or evicted.
func (s *Session) Send() <-chan []byte {
	return s.send
}

// Handle returns the logged in user handle, or "" before login
func (s *Session) Handle() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

// Login binds handle to the session for its lifetime. A second login is a
// no-op and returns false.
func (s *Session) Login(handle string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle != "" {
		return false
	}
	s.handle = handle
	return true
}

// Bus is the registry of active sessions
type Bus struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	buffer   int
	log      *zap.SugaredLogger
}

// NewBus creates a Bus whose sessions buffer up to buffer payloads
func NewBus(buffer int, log *zap.SugaredLogger) *Bus {
	return &Bus{
		sessions: make(map[string]*Session),
		buffer:   buffer,
		log:      log,
	}
}

// Register adds a new session
func (b *Bus) Register() *Session {
	s := &Session{
		ID:   uuid.NewString(),
		send: make(chan []byte, b.buffer),
	}

	b.mu.Lock()
	b.sessions[s.ID] = s
	total := len(b.sessions)
	b.mu.Unlock()

	metrics.ConnectedSessions.Set(float64(total))
	b.log.Infof("[Bus] Session %s registered. Total sessions: %d", s.ID, total)
	return s
}

// Unregister removes the session and closes its send channel. It reports
// whether the session was still registered.
func (b *Bus) Unregister(id string) bool {
	b.mu.Lock()
	s, ok := b.sessions[id]
	if ok {
		delete(b.sessions, id)
		close(s.send)
	}
	total := len(b.sessions)
	b.mu.Unlock()

	if ok {
		metrics.ConnectedSessions.Set(float64(total))
		b.log.Infof("[Bus] Session %s unregistered. Total sessions: %d", id, total)
	}
	return ok
}

// Publish delivers ev to every registered session. Events from one caller
// reach each session in publish order.
func (b *Bus) Publish(ev model.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", ev.Name, err)
	}

	var full []string

	// 送信とクローズはロックで排他されるので、ここでは閉じたチャネルに書かない
	b.mu.RLock()
	for id, s := range b.sessions {
		select {
		case s.send <- payload:
		default:
			full = append(full, id)
		}
	}
	delivered := len(b.sessions) - len(full)
	b.mu.RUnlock()

	for _, id := range full {
		if b.Unregister(id) {
			metrics.EvictedSessions.Inc()
			b.log.Warnf("[Bus] Session %s evicted: send buffer full", id)
		}
	}

	b.log.Debugf("[Bus] 📢 Published %s to %d sessions", ev.Name, delivered)
	return nil
}

// SendTo delivers ev to a single session
func (b *Bus) SendTo(id string, ev model.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", ev.Name, err)
	}

	b.mu.RLock()
	s, ok := b.sessions[id]
	delivered := false
	if ok {
		select {
		case s.send <- payload:
			delivered = true
		default:
		}
	}
	b.mu.RUnlock()

	if !ok {
		return ErrUnknownSession
	}
	if !delivered && b.Unregister(id) {
		metrics.EvictedSessions.Inc()
		b.log.Warnf("[Bus] Session %s evicted: send buffer full", id)
	}
	return nil
}

// Handles returns the sorted, distinct handles of logged in sessions
func (b *Bus) Handles() []string {
	b.mu.RLock()
	seen := make(map[string]struct{}, len(b.sessions))
	for _, s := range b.sessions {
		if h := s.Handle(); h != "" {
			seen[h] = struct{}{}
		}
	}
	b.mu.RUnlock()

	out := make([]string, 0, len(seen))
	for h := range seen {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of registered sessions
func (b *Bus) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sessions)
}

// Close unregisters every session
func (b *Bus) Close() {
	b.mu.Lock()
	n := len(b.sessions)
	for id, s := range b.sessions {
		delete(b.sessions, id)
		close(s.send)
	}
	b.mu.Unlock()

	metrics.ConnectedSessions.Set(0)
	b.log.Infof("[Bus] Closed %d sessions", n)
}
