package redisx

import (
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
)

// pendingReply menandai checkout yang masih berjalan untuk (cart, key).
const pendingReply = "pending"

// ReplyCache menyimpan reply checkout per cart + Idempotency-Key.
type ReplyCache struct {
	Redis *redis.Client
}

// Reserve klaim key secara atomik (SETNX).
//   - reserved=true: caller yang menjalankan checkout.
//   - reserved=false, reply != "": checkout sudah sukses, kirim ulang reply.
//   - reserved=false, reply == "": checkout lain dengan key sama masih jalan.
func (c *ReplyCache) Reserve(ctx context.Context, cartID, key string) (reply string, reserved bool, err error) {
	k := fmt.Sprintf(KeyIdemCheckout, cartID, key)
	ok, err := c.Redis.SetNX(ctx, k, pendingReply, TTLIdemPending).Result()
	if err != nil {
		return "", false, err
	}
	if ok {
		return "", true, nil
	}
	s, err := c.Redis.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) || s == pendingReply {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return s, false, nil
}

// Remember menimpa marker pending dengan reply sukses.
func (c *ReplyCache) Remember(ctx context.Context, cartID, key, reply string) error {
	return c.Redis.Set(ctx, fmt.Sprintf(KeyIdemCheckout, cartID, key), reply, TTLIdempotency).Err()
}

// Release melepas marker supaya checkout yang gagal bisa dicoba lagi.
func (c *ReplyCache) Release(ctx context.Context, cartID, key string) error {
	return c.Redis.Del(ctx, fmt.Sprintf(KeyIdemCheckout, cartID, key)).Err()
}

// Seen reports whether service already finished processing event id.
func Seen(ctx context.Context, rdb *redis.Client, service, id string) (bool, error) {
	n, err := rdb.Exists(ctx, fmt.Sprintf(KeyDedup, service, id)).Result()
	return n > 0, err
}

// MarkSeen dipanggil setelah proses sukses, jangan sebelum.
func MarkSeen(ctx context.Context, rdb *redis.Client, service, id string) error {
	return rdb.Set(ctx, fmt.Sprintf(KeyDedup, service, id), "1", TTLDedup).Err()
}
