package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Kalyaneluri-21/Payout-Automation/internal/models"
)

const adminSummaryKey = "payout:summary:admin"

type redisCmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// SummaryCache holds dashboard rollups in redis until the next receipt for
// the affected mentor is committed.
type SummaryCache struct {
	client redisCmdable
	ttl    time.Duration
}

func NewSummaryCache(client redisCmdable, ttl time.Duration) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl}
}

func mentorSummaryKey(mentorID int64) string {
	return fmt.Sprintf("payout:summary:mentor:%d", mentorID)
}

func (c *SummaryCache) GetAdminSummary(ctx context.Context) (*models.AdminSummary, bool, error) {
	var summary models.AdminSummary
	ok, err := c.get(ctx, adminSummaryKey, &summary)
	if !ok || err != nil {
		return nil, false, err
	}
	return &summary, true, nil
}

func (c *SummaryCache) SetAdminSummary(ctx context.Context, summary models.AdminSummary) error {
	return c.set(ctx, adminSummaryKey, summary)
}

func (c *SummaryCache) GetMentorSummary(ctx context.Context, mentorID int64) (*models.MentorSummary, bool, error) {
	var summary models.MentorSummary
	ok, err := c.get(ctx, mentorSummaryKey(mentorID), &summary)
	if !ok || err != nil {
		return nil, false, err
	}
	return &summary, true, nil
}

func (c *SummaryCache) SetMentorSummary(ctx context.Context, summary models.MentorSummary) error {
	return c.set(ctx, mentorSummaryKey(summary.MentorID), summary)
}

// OnReceiptGenerated drops the rollups a new receipt makes stale.
func (c *SummaryCache) OnReceiptGenerated(ctx context.Context, receipt *models.Receipt) error {
	return c.client.Del(ctx, adminSummaryKey, mentorSummaryKey(receipt.MentorID)).Err()
}

func (c *SummaryCache) get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *SummaryCache) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
