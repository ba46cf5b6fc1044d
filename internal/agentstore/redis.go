package agentstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/openvoice/agent-gateway/internal/config"
	"github.com/openvoice/agent-gateway/internal/observability"
)

const agentKeyPrefix = "agent:"

// RedisStore persists agents as JSON values in Redis, one key per agent.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Agent, error) {
	data, err := s.client.Get(ctx, agentKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.RecordAgentStoreOp("get", ErrNotFound)
		return nil, ErrNotFound
	}
	if err != nil {
		observability.RecordAgentStoreOp("get", err)
		return nil, fmt.Errorf("failed to read agent: %w", err)
	}

	var agent Agent
	if err := json.Unmarshal(data, &agent); err != nil {
		observability.RecordAgentStoreOp("get", err)
		return nil, fmt.Errorf("failed to decode agent %s: %w", id, err)
	}

	observability.RecordAgentStoreOp("get", nil)
	return &agent, nil
}

func (s *RedisStore) Put(ctx context.Context, agent *Agent) error {
	data, err := json.Marshal(agent)
	if err != nil {
		observability.RecordAgentStoreOp("put", err)
		return fmt.Errorf("failed to encode agent: %w", err)
	}

	if err := s.client.Set(ctx, agentKeyPrefix+agent.ID, data, 0).Err(); err != nil {
		observability.RecordAgentStoreOp("put", err)
		return fmt.Errorf("failed to write agent: %w", err)
	}

	observability.RecordAgentStoreOp("put", nil)
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]*Agent, error) {
	var agents []*Agent

	iter := s.client.Scan(ctx, 0, agentKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue // deleted between scan and read
		}
		if err != nil {
			observability.RecordAgentStoreOp("list", err)
			return nil, fmt.Errorf("failed to read agent: %w", err)
		}

		var agent Agent
		if err := json.Unmarshal(data, &agent); err != nil {
			observability.RecordAgentStoreOp("list", err)
			return nil, fmt.Errorf("failed to decode agent %s: %w", iter.Val(), err)
		}
		agents = append(agents, &agent)
	}
	if err := iter.Err(); err != nil {
		observability.RecordAgentStoreOp("list", err)
		return nil, fmt.Errorf("failed to scan agents: %w", err)
	}

	sort.Slice(agents, func(i, j int) bool {
		if agents[i].CreatedAt.Equal(agents[j].CreatedAt) {
			return agents[i].ID < agents[j].ID
		}
		return agents[i].CreatedAt.Before(agents[j].CreatedAt)
	})

	observability.RecordAgentStoreOp("list", nil)
	return agents, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, agentKeyPrefix+id).Err(); err != nil {
		observability.RecordAgentStoreOp("delete", err)
		return fmt.Errorf("failed to delete agent: %w", err)
	}

	observability.RecordAgentStoreOp("delete", nil)
	return nil
}

// Ping verifies the Redis connection, for readiness checks.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
