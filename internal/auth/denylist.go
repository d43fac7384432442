package auth

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Denylist menyimpan jti token yang sudah di-logout sampai token itu
// kedaluwarsa dengan sendirinya.
type Denylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type RedisDenylist struct {
	client *redis.Client
	prefix string
}

func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client, prefix: "revoked:"}
}

// WithPrefix mengganti prefix key, dipakai test.
func (d *RedisDenylist) WithPrefix(prefix string) *RedisDenylist {
	d.prefix = prefix
	return d
}

func (d *RedisDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, d.prefix+jti, "1", ttl).Err()
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.client.Exists(ctx, d.prefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
