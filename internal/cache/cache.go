// Package cache keeps live products in Redis for the product detail read path.
// A nil *Products is a valid, always-missing cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

const keyProduct = "product:%s"

func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

type Products struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProducts(rdb *redis.Client, ttl time.Duration) *Products {
	if rdb == nil {
		return nil
	}
	return &Products{rdb: rdb, ttl: ttl}
}

func productKey(id primitive.ObjectID) string {
	return fmt.Sprintf(keyProduct, id.Hex())
}

// Get reports a hit only when a decodable entry exists. Redis errors count as
// a miss.
func (c *Products) Get(ctx context.Context, id primitive.ObjectID) (models.Product, bool) {
	if c == nil {
		return models.Product{}, false
	}
	raw, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[CACHE] [WARN] get %s: %v", id.Hex(), err)
		}
		return models.Product{}, false
	}
	var p models.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Printf("[CACHE] [WARN] decode %s: %v", id.Hex(), err)
		return models.Product{}, false
	}
	return p, true
}

func (c *Products) Set(ctx context.Context, p models.Product) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		log.Printf("[CACHE] [WARN] encode %s: %v", p.ID.Hex(), err)
		return
	}
	if err := c.rdb.Set(ctx, productKey(p.ID), raw, c.ttl).Err(); err != nil {
		log.Printf("[CACHE] [WARN] set %s: %v", p.ID.Hex(), err)
	}
}

func (c *Products) Invalidate(ctx context.Context, ids ...primitive.ObjectID) {
	if c == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("[CACHE] [WARN] invalidate %d product(s): %v", len(ids), err)
	}
}
