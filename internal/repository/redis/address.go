package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/w24010/delightful/internal/domain"
)

const addressKeyPrefix = "delightful-address:"

// AddressRepository keeps one JSON address blob per session.
type AddressRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAddressRepository creates a Redis-backed address store. A zero ttl keeps
// addresses until they are cleared.
func NewAddressRepository(client *redis.Client, ttl time.Duration) *AddressRepository {
	return &AddressRepository{client: client, ttl: ttl}
}

// Get returns the stored address or nil when the session has none.
// A blob that does not decode is reported as an error. A blob that decodes
// to an incomplete address, such as null or {}, counts as no address.
func (r *AddressRepository) Get(ctx context.Context, sessionID string) (*domain.Address, error) {
	data, err := r.client.Get(ctx, addressKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get address: %w", err)
	}

	var addr domain.Address
	if err := json.Unmarshal(data, &addr); err != nil {
		return nil, fmt.Errorf("unmarshal address: %w", err)
	}
	if !addr.IsComplete() {
		return nil, nil
	}
	return &addr, nil
}

// Save replaces the stored address.
func (r *AddressRepository) Save(ctx context.Context, sessionID string, address *domain.Address) error {
	data, err := json.Marshal(address)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}
	if err := r.client.Set(ctx, addressKeyPrefix+sessionID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set address: %w", err)
	}
	return nil
}

// Delete removes the stored address. Deleting a missing key is not an error.
func (r *AddressRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, addressKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("redis del address: %w", err)
	}
	return nil
}
