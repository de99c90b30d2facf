// Package session mantiene la lista de tokens JWT revocados por logout.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/StantonMatt/coab-platform/internal/application/ports"
	"github.com/StantonMatt/coab-platform/pkg/config"
)

var (
	_ ports.TokenBlacklist = (*RedisBlacklist)(nil)
	_ ports.TokenBlacklist = (*MemoryBlacklist)(nil)
)

const keyPrefix = "coab:jwt:revocado:"

// RedisBlacklist lista compartida entre instancias; cada entrada expira junto con el token.
type RedisBlacklist struct {
	client *redis.Client
}

// NewRedisClient abre la conexión y verifica con PING.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

// NewRedisBlacklist usa un cliente ya conectado.
func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client}
}

// Revoke registra el JTI hasta que el token expire.
func (b *RedisBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, keyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis: revocar token: %w", err)
	}
	return nil
}

// IsRevoked indica si el JTI fue revocado.
func (b *RedisBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("redis: consultar token: %w", err)
	}
	return n > 0, nil
}

// MemoryBlacklist alternativa en proceso cuando no hay Redis (una sola instancia, tests).
type MemoryBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time // jti → expiración
	now     func() time.Time
}

// NewMemoryBlacklist construye la lista vacía.
func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{entries: make(map[string]time.Time), now: time.Now}
}

// Revoke registra el JTI y aprovecha de purgar las entradas vencidas.
func (b *MemoryBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	for k, exp := range b.entries {
		if now.After(exp) {
			delete(b.entries, k)
		}
	}
	b.entries[jti] = now.Add(ttl)
	return nil
}

// IsRevoked indica si el JTI sigue revocado.
func (b *MemoryBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.entries[jti]
	if !ok {
		return false, nil
	}
	if b.now().After(exp) {
		delete(b.entries, jti)
		return false, nil
	}
	return true, nil
}
