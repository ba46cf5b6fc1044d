package agentstore

import (
	"context"
	"sort"
	"sync"

	"github.com/openvoice/agent-gateway/internal/observability"
)

// MemoryStore keeps agents in process memory. Records do not survive a
// restart; it is the default when no Redis address is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	agents map[string]Agent
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory agent store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{agents: make(map[string]Agent)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agent, ok := s.agents[id]
	if !ok {
		observability.RecordAgentStoreOp("get", ErrNotFound)
		return nil, ErrNotFound
	}

	observability.RecordAgentStoreOp("get", nil)
	copied := agent
	return &copied, nil
}

func (s *MemoryStore) Put(ctx context.Context, agent *Agent) error {
	s.mu.Lock()
	s.agents[agent.ID] = *agent
	s.mu.Unlock()

	observability.RecordAgentStoreOp("put", nil)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*Agent, error) {
	s.mu.RLock()
	agents := make([]*Agent, 0, len(s.agents))
	for _, agent := range s.agents {
		copied := agent
		agents = append(agents, &copied)
	}
	s.mu.RUnlock()

	sort.Slice(agents, func(i, j int) bool {
		if agents[i].CreatedAt.Equal(agents[j].CreatedAt) {
			return agents[i].ID < agents[j].ID
		}
		return agents[i].CreatedAt.Before(agents[j].CreatedAt)
	})

	observability.RecordAgentStoreOp("list", nil)
	return agents, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.agents, id)
	s.mu.Unlock()

	observability.RecordAgentStoreOp("delete", nil)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
