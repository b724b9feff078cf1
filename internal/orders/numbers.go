package orders

import (
	"context"
	"fmt"

	pkgredis "github.com/pramodsinghlodhi/masterprint-backend/pkg/redis"
)

type redisNumberSource struct {
	client *pkgredis.Client
}

// NewRedisNumberSource allocates order numbers from a shared redis counter so
// concurrent API instances never hand out the same number.
func NewRedisNumberSource(client *pkgredis.Client) (NumberSource, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &redisNumberSource{client: client}, nil
}

func (s *redisNumberSource) Next(ctx context.Context) (int64, error) {
	return s.client.Incr(ctx, s.client.CounterKey("order_number"))
}
