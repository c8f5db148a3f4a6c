package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Flags store. Single-binary deployments and tests
// use it in place of Redis.
type Memory struct {
	mu     sync.Mutex
	flags  map[string]struct{}
	visits map[uuid.UUID]time.Time
}

func NewMemory() *Memory {
	return &Memory{
		flags:  map[string]struct{}{},
		visits: map[uuid.UUID]time.Time{},
	}
}

func (m *Memory) Get(_ context.Context, userID uuid.UUID, flag string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.flags[memoryKey(userID, flag)]
	return ok, nil
}

func (m *Memory) Set(_ context.Context, userID uuid.UUID, flag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[memoryKey(userID, flag)] = struct{}{}
	return nil
}

func (m *Memory) Clear(_ context.Context, userID uuid.UUID, flag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.flags, memoryKey(userID, flag))
	return nil
}

func (m *Memory) LastVisit(_ context.Context, userID uuid.UUID) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	at, ok := m.visits[userID]
	return at, ok, nil
}

func (m *Memory) SetLastVisit(_ context.Context, userID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visits[userID] = at.UTC()
	return nil
}

func memoryKey(userID uuid.UUID, flag string) string {
	return userID.String() + ":" + flag
}
