package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "stock-ledger:idem:"

// Estado de una clave de idempotencia.
const (
	StateNew      = "new"
	StatePending  = "pending"
	StateComplete = "complete"
)

// StoredResponse respuesta guardada para repetirla ante un reintento con la misma clave.
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type entry struct {
	State    string          `json:"state"`
	Response *StoredResponse `json:"response,omitempty"`
}

// Idempotency guarda en Redis la primera respuesta de cada clave durante ttl.
type Idempotency struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotency(client *redis.Client, ttl time.Duration) *Idempotency {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Idempotency{client: client, ttl: ttl}
}

// Begin reserva la clave. Devuelve StateNew si quien llama es el primero (debe ejecutar la
// petición y luego Complete o Release), StatePending si otra petición con la misma clave está
// en curso, o StateComplete con la respuesta guardada.
func (s *Idempotency) Begin(ctx context.Context, key string) (string, *StoredResponse, error) {
	raw, _ := json.Marshal(entry{State: StatePending})
	ok, err := s.client.SetNX(ctx, keyPrefix+key, raw, s.ttl).Result()
	if err != nil {
		return "", nil, fmt.Errorf("cache: reserve idempotency key: %w", err)
	}
	if ok {
		return StateNew, nil, nil
	}

	val, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		// expiró entre SETNX y GET
		return s.Begin(ctx, key)
	}
	if err != nil {
		return "", nil, fmt.Errorf("cache: read idempotency key: %w", err)
	}
	var e entry
	if err := json.Unmarshal(val, &e); err != nil {
		return "", nil, fmt.Errorf("cache: decode idempotency key: %w", err)
	}
	if e.State == StateComplete && e.Response != nil {
		return StateComplete, e.Response, nil
	}
	return StatePending, nil, nil
}

// Complete guarda la respuesta final de la clave.
func (s *Idempotency) Complete(ctx context.Context, key string, resp StoredResponse) error {
	raw, err := json.Marshal(entry{State: StateComplete, Response: &resp})
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, keyPrefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache: store idempotent response: %w", err)
	}
	return nil
}

// Release libera la clave para que un reintento vuelva a ejecutar la petición.
func (s *Idempotency) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}
