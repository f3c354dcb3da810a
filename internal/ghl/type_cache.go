package ghl

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"qr-admin-service/internal/logger"
	"qr-admin-service/internal/models"
)

const (
	// TicketTypeKey is the Redis key holding the cached ticket-type list.
	TicketTypeKey = "qr:ghl:ticket_types"
	// TicketTypeTTL bounds staleness of the cached price names.
	TicketTypeTTL = 15 * time.Minute
)

// TypeCache caches the ticket types (price tiers) of event products in
// Redis, refreshed from GHL on miss.
type TypeCache struct {
	Client *redis.Client
	GHL    *Client
	Logger *logger.Logger
}

func NewTypeCache(client *redis.Client, ghlClient *Client, log *logger.Logger) *TypeCache {
	return &TypeCache{Client: client, GHL: ghlClient, Logger: log}
}

// GetTicketTypes returns the cached type list for a product, hitting GHL on
// a cache miss.
func (c *TypeCache) GetTicketTypes(ctx context.Context, productID string) ([]models.TicketType, error) {
	key := TicketTypeKey + ":" + productID

	cached, err := c.Client.Get(ctx, key).Result()
	if err == nil {
		var types []models.TicketType
		if err := json.Unmarshal([]byte(cached), &types); err == nil {
			return types, nil
		}
		// A corrupt entry falls through to a refresh.
		c.Logger.Warn("GHL", fmt.Sprintf("Discarding unreadable ticket type cache entry for product %s", productID))
	} else if err != redis.Nil {
		return nil, fmt.Errorf("failed to read ticket type cache: %w", err)
	}

	return c.Refresh(ctx, productID)
}

// Refresh re-fetches a product's price tiers from GHL and rewrites the cache.
func (c *TypeCache) Refresh(ctx context.Context, productID string) ([]models.TicketType, error) {
	prices, err := c.GHL.ListPrices(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices for product %s: %w", productID, err)
	}

	types := make([]models.TicketType, 0, len(prices))
	for _, price := range prices {
		types = append(types, models.TicketType{
			Name:      price.Name,
			PriceID:   price.ID,
			ProductID: productID,
			Amount:    price.Amount,
		})
	}

	raw, err := json.Marshal(types)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ticket types: %w", err)
	}
	if err := c.Client.Set(ctx, TicketTypeKey+":"+productID, raw, TicketTypeTTL).Err(); err != nil {
		// Cache write failure is not fatal; callers still get the fresh list.
		c.Logger.Warn("GHL", fmt.Sprintf("Failed to cache ticket types for product %s: %v", productID, err))
	}

	return types, nil
}
