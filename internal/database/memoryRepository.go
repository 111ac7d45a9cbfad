package database

import (
	"context"
	"sync"

	"github.com/sekolahdigital/notify-service/internal/entity"
)

// memoryRepository keeps all namespaces in process memory. Used by tests and
// storeless development runs; satisfies the same contracts as the Redis
// implementation.
type memoryRepository struct {
	mu           sync.RWMutex
	settings     *entity.Settings
	history      []entity.HistoryEntry
	analytics    []entity.AnalyticsRecord
	templates    []entity.Template
	batches      map[string]*entity.Batch
	voiceQueue   []entity.VoiceNotification
	voiceHistory []entity.VoiceNotification
	subscription string
}

func NewMemoryRepository() Repository {
	return &memoryRepository{batches: make(map[string]*entity.Batch)}
}

func (r *memoryRepository) LoadSettings(_ context.Context) (*entity.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.settings == nil {
		return nil, nil
	}
	s := *r.settings
	return &s, nil
}

func (r *memoryRepository) SaveSettings(_ context.Context, s *entity.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *s
	r.settings = &copied
	return nil
}

func (r *memoryRepository) DeleteSettings(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = nil
	return nil
}

func (r *memoryRepository) LoadHistory(_ context.Context) ([]entity.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entity.HistoryEntry(nil), r.history...), nil
}

func (r *memoryRepository) SaveHistory(_ context.Context, entries []entity.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append([]entity.HistoryEntry(nil), entries...)
	return nil
}

func (r *memoryRepository) LoadAnalytics(_ context.Context) ([]entity.AnalyticsRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entity.AnalyticsRecord(nil), r.analytics...), nil
}

func (r *memoryRepository) SaveAnalytics(_ context.Context, records []entity.AnalyticsRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analytics = append([]entity.AnalyticsRecord(nil), records...)
	return nil
}

func (r *memoryRepository) LoadTemplates(_ context.Context) ([]entity.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entity.Template(nil), r.templates...), nil
}

func (r *memoryRepository) SaveTemplates(_ context.Context, templates []entity.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates = append([]entity.Template(nil), templates...)
	return nil
}

func (r *memoryRepository) SaveBatch(_ context.Context, batch *entity.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *batch
	r.batches[batch.ID] = &copied
	return nil
}

func (r *memoryRepository) GetBatch(_ context.Context, id string) (*entity.Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.batches[id]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (r *memoryRepository) ListBatches(_ context.Context) ([]*entity.Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	batches := make([]*entity.Batch, 0, len(r.batches))
	for _, b := range r.batches {
		copied := *b
		batches = append(batches, &copied)
	}
	return batches, nil
}

func (r *memoryRepository) LoadVoiceQueue(_ context.Context) ([]entity.VoiceNotification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entity.VoiceNotification(nil), r.voiceQueue...), nil
}

func (r *memoryRepository) SaveVoiceQueue(_ context.Context, queue []entity.VoiceNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.voiceQueue = append([]entity.VoiceNotification(nil), queue...)
	return nil
}

func (r *memoryRepository) LoadVoiceHistory(_ context.Context) ([]entity.VoiceNotification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entity.VoiceNotification(nil), r.voiceHistory...), nil
}

func (r *memoryRepository) SaveVoiceHistory(_ context.Context, history []entity.VoiceNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.voiceHistory = append([]entity.VoiceNotification(nil), history...)
	return nil
}

func (r *memoryRepository) LoadPushSubscription(_ context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.subscription, nil
}

func (r *memoryRepository) SavePushSubscription(_ context.Context, endpoint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscription = endpoint
	return nil
}

func (r *memoryRepository) DeletePushSubscription(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscription = ""
	return nil
}
