package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chatterbox/internal/models"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when no cached page exists for a chat.
var ErrMiss = errors.New("cache miss")

const (
	recentKeyPrefix = "chat:recent:"
	recentTTL       = 5 * time.Minute
)

// MessageCache is a cache-aside layer over the message history's
// latest page. Mongo stays the source of truth; any write to a chat
// invalidates its cached page.
type MessageCache struct {
	client *redis.Client
}

func NewMessageCache(client *redis.Client) *MessageCache {
	return &MessageCache{client: client}
}

func recentKey(chatID string) string {
	return recentKeyPrefix + chatID
}

// GetRecent returns the cached latest page for the chat, or ErrMiss.
func (c *MessageCache) GetRecent(ctx context.Context, chatID string) ([]models.Message, error) {
	data, err := c.client.Get(ctx, recentKey(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read message cache: %w", err)
	}

	var messages []models.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode cached messages: %w", err)
	}
	return messages, nil
}

// SetRecent stores the latest page for the chat.
func (c *MessageCache) SetRecent(ctx context.Context, chatID string, messages []models.Message) error {
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to encode messages for cache: %w", err)
	}
	return c.client.Set(ctx, recentKey(chatID), data, recentTTL).Err()
}

// Invalidate drops the cached page after any write to the chat.
func (c *MessageCache) Invalidate(ctx context.Context, chatID string) error {
	return c.client.Del(ctx, recentKey(chatID)).Err()
}
