package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sekolahdigital/notify-service/internal/entity"
)

const (
	keySettings     = "notify:settings"
	keyHistory      = "notify:history"
	keyAnalytics    = "notify:analytics"
	keyTemplates    = "notify:templates"
	keyBatchPrefix  = "notify:batches:"
	keyVoiceQueue   = "notify:voice:queue"
	keyVoiceHistory = "notify:voice:history"
	keySubscription = "notify:push:subscription"
)

type redisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) Repository {
	return &redisRepository{client: client}
}

func (r *redisRepository) setJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return r.client.Set(ctx, key, data, 0).Err()
}

// getJSON unmarshals the record at key into out. Returns (false, nil) when
// the key does not exist.
func (r *redisRepository) getJSON(ctx context.Context, key string, out any) (bool, error) {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (r *redisRepository) LoadSettings(ctx context.Context) (*entity.Settings, error) {
	var s entity.Settings
	ok, err := r.getJSON(ctx, keySettings, &s)
	if err != nil || !ok {
		return nil, err
	}
	return &s, nil
}

func (r *redisRepository) SaveSettings(ctx context.Context, s *entity.Settings) error {
	return r.setJSON(ctx, keySettings, s)
}

func (r *redisRepository) DeleteSettings(ctx context.Context) error {
	return r.client.Del(ctx, keySettings).Err()
}

func (r *redisRepository) LoadHistory(ctx context.Context) ([]entity.HistoryEntry, error) {
	var entries []entity.HistoryEntry
	if _, err := r.getJSON(ctx, keyHistory, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *redisRepository) SaveHistory(ctx context.Context, entries []entity.HistoryEntry) error {
	return r.setJSON(ctx, keyHistory, entries)
}

func (r *redisRepository) LoadAnalytics(ctx context.Context) ([]entity.AnalyticsRecord, error) {
	var records []entity.AnalyticsRecord
	if _, err := r.getJSON(ctx, keyAnalytics, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *redisRepository) SaveAnalytics(ctx context.Context, records []entity.AnalyticsRecord) error {
	return r.setJSON(ctx, keyAnalytics, records)
}

func (r *redisRepository) LoadTemplates(ctx context.Context) ([]entity.Template, error) {
	var templates []entity.Template
	if _, err := r.getJSON(ctx, keyTemplates, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *redisRepository) SaveTemplates(ctx context.Context, templates []entity.Template) error {
	return r.setJSON(ctx, keyTemplates, templates)
}

func (r *redisRepository) SaveBatch(ctx context.Context, batch *entity.Batch) error {
	return r.setJSON(ctx, keyBatchPrefix+batch.ID, batch)
}

func (r *redisRepository) GetBatch(ctx context.Context, id string) (*entity.Batch, error) {
	var b entity.Batch
	ok, err := r.getJSON(ctx, keyBatchPrefix+id, &b)
	if err != nil || !ok {
		return nil, err
	}
	return &b, nil
}

func (r *redisRepository) ListBatches(ctx context.Context) ([]*entity.Batch, error) {
	keys, err := r.client.Keys(ctx, keyBatchPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list batch keys: %w", err)
	}

	batches := make([]*entity.Batch, 0, len(keys))
	for _, key := range keys {
		var b entity.Batch
		ok, err := r.getJSON(ctx, key, &b)
		if err != nil || !ok {
			continue
		}
		batches = append(batches, &b)
	}
	return batches, nil
}

func (r *redisRepository) LoadVoiceQueue(ctx context.Context) ([]entity.VoiceNotification, error) {
	var queue []entity.VoiceNotification
	if _, err := r.getJSON(ctx, keyVoiceQueue, &queue); err != nil {
		return nil, err
	}
	return queue, nil
}

func (r *redisRepository) SaveVoiceQueue(ctx context.Context, queue []entity.VoiceNotification) error {
	return r.setJSON(ctx, keyVoiceQueue, queue)
}

func (r *redisRepository) LoadVoiceHistory(ctx context.Context) ([]entity.VoiceNotification, error) {
	var history []entity.VoiceNotification
	if _, err := r.getJSON(ctx, keyVoiceHistory, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (r *redisRepository) SaveVoiceHistory(ctx context.Context, history []entity.VoiceNotification) error {
	return r.setJSON(ctx, keyVoiceHistory, history)
}

func (r *redisRepository) LoadPushSubscription(ctx context.Context) (string, error) {
	endpoint, err := r.client.Get(ctx, keySubscription).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	return endpoint, nil
}

func (r *redisRepository) SavePushSubscription(ctx context.Context, endpoint string) error {
	return r.client.Set(ctx, keySubscription, endpoint, 0).Err()
}

func (r *redisRepository) DeletePushSubscription(ctx context.Context) error {
	return r.client.Del(ctx, keySubscription).Err()
}
