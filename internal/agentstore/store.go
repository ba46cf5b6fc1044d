// Package agentstore persists voice-agent records for the gateway's callers.
// The gateway itself stays stateless; a Store is injected into the HTTP layer
// and nowhere else.
package agentstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates no agent exists with the requested ID.
var ErrNotFound = errors.New("agent not found")

// Agent is a voice-agent record: a persona plus a default voice to speak with.
type Agent struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Persona        string    `json:"persona"`
	DefaultVoiceID string    `json:"default_voice_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store is a key-value collaborator for agent records.
type Store interface {
	// Get returns the agent with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Agent, error)

	// Put creates or replaces an agent record.
	Put(ctx context.Context, agent *Agent) error

	// List returns all agents ordered by creation time, oldest first.
	List(ctx context.Context) ([]*Agent, error)

	// Delete removes an agent record. Deleting a missing agent is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}
