package user

import (
	"context"
	"sort"
	"sync"

	"github.com/xjzfwqgf/chat-web/internal/model"
)

// Memory is an in-process user directory
type Memory struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewMemory() *Memory {
	return &Memory{users: make(map[string]model.User)}
}

func (m *Memory) Create(_ context.Context, u model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[u.Username]; ok {
		return ErrUserExists
	}
	m.users[u.Username] = u
	return nil
}

func (m *Memory) Get(_ context.Context, username string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[username]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) List(_ context.Context) ([]model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// Lookup returns identities for the known usernames. Unknown ones are left out.
func (m *Memory) Lookup(_ context.Context, usernames []string) (map[string]model.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]model.Identity, len(usernames))
	for _, name := range usernames {
		if u, ok := m.users[name]; ok {
			out[name] = u.Identity()
		}
	}
	return out, nil
}
