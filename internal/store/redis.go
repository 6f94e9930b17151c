package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"humbas_back_end/internal/models"
)

const featuredProductsKey = "featured_products"
const featuredProductsTTL = time.Hour

// RedisTokenStore conserve au plus un refresh token valide par
// utilisateur. Chaque login/signup écrase la valeur précédente, ce qui
// invalide silencieusement les sessions antérieures.
type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func refreshKey(userID string) string {
	return "refresh:" + userID
}

func (s *RedisTokenStore) StoreRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error {
	return s.client.Set(ctx, refreshKey(userID), token, ttl).Err()
}

func (s *RedisTokenStore) GetRefreshToken(ctx context.Context, userID string) (string, error) {
	token, err := s.client.Get(ctx, refreshKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisTokenStore) DeleteRefreshToken(ctx context.Context, userID string) error {
	return s.client.Del(ctx, refreshKey(userID)).Err()
}

// RedisProductCache met en cache la liste des produits mis en avant.
// Toute erreur Redis est traitée comme un cache miss : la base reste
// le fallback.
type RedisProductCache struct {
	client *redis.Client
}

func NewRedisProductCache(client *redis.Client) *RedisProductCache {
	return &RedisProductCache{client: client}
}

func (c *RedisProductCache) GetFeatured(ctx context.Context) ([]models.Product, bool) {
	data, err := c.client.Get(ctx, featuredProductsKey).Result()
	if err != nil {
		return nil, false
	}
	var products []models.Product
	if err := json.Unmarshal([]byte(data), &products); err != nil {
		return nil, false
	}
	return products, true
}

func (c *RedisProductCache) SetFeatured(ctx context.Context, products []models.Product) {
	data, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, featuredProductsKey, data, featuredProductsTTL).Err(); err != nil {
		log.Printf("⚠️ Erreur mise en cache des produits mis en avant: %v", err)
	}
}

func (c *RedisProductCache) InvalidateFeatured(ctx context.Context) {
	if err := c.client.Del(ctx, featuredProductsKey).Err(); err != nil {
		log.Printf("⚠️ Erreur invalidation du cache produits: %v", err)
	}
}
