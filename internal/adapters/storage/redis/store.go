package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ffaguiar/verbo/internal/domain"
)

// Store persists each session as a Redis list of JSON-encoded turns.
// AppendTurn is a single RPUSH pipelined with EXPIRE, so concurrent
// appends to one session never lose a turn; ordering is whatever order
// Redis serialized the pushes in.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore connects to Redis at the given URL and verifies the
// connection with a ping.
func NewStore(ctx context.Context, redisURL string, ttl time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &Store{client: client, ttl: ttl}, nil
}

// NewStoreWithClient wraps an existing client (used by tests).
func NewStoreWithClient(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func sessionKey(id domain.SessionID) string {
	return "session:" + string(id)
}

// turnRecord is the wire shape of one turn inside the Redis list.
type turnRecord struct {
	Role      string    `json:"role"`
	Text      string    `json:"text,omitempty"`
	ImageB64  string    `json:"image_b64,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Store) GetTurns(ctx context.Context, id domain.SessionID) ([]domain.Turn, error) {
	raw, err := s.client.LRange(ctx, sessionKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: lrange: %v", domain.ErrStoreUnavailable, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	turns := make([]domain.Turn, 0, len(raw))
	for _, item := range raw {
		var rec turnRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("decoding stored turn: %w", err)
		}
		turns = append(turns, domain.Turn{
			Role:      domain.Role(rec.Role),
			Text:      rec.Text,
			ImageB64:  rec.ImageB64,
			CreatedAt: rec.CreatedAt,
		})
	}
	return turns, nil
}

func (s *Store) AppendTurn(ctx context.Context, id domain.SessionID, turn domain.Turn) error {
	payload, err := json.Marshal(turnRecord{
		Role:      string(turn.Role),
		Text:      turn.Text,
		ImageB64:  turn.ImageB64,
		CreatedAt: turn.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encoding turn: %w", err)
	}

	key := sessionKey(id)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: rpush: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) Touch(ctx context.Context, id domain.SessionID) error {
	if err := s.client.Expire(ctx, sessionKey(id), s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: expire: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}
