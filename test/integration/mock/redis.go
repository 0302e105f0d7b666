//go:build integration

package mock

import (
	"context"
	"sync"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// One in-process Redis serves the whole suite; scenarios flush it between runs.
var shared struct {
	once   sync.Once
	server *miniredis.Miniredis
	client *redis.Client
}

func startRedis() {
	shared.once.Do(func() {
		shared.server = miniredis.NewMiniRedis()
		if err := shared.server.Start(); err != nil {
			panic("mock: start miniredis: " + err.Error())
		}
		shared.client = redis.NewClient(&redis.Options{Addr: shared.server.Addr()})
	})
}

// NewRedis returns a client for the shared server.
func NewRedis() *redis.Client {
	startRedis()
	return shared.client
}

// ClearRedis removes every key.
func ClearRedis(client *redis.Client) error {
	return client.FlushAll(context.Background()).Err()
}
