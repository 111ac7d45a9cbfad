package database

import (
	"context"

	"github.com/sekolahdigital/notify-service/internal/entity"
)

// The notification manager is the single logical owner of all persisted
// state; repositories load and store whole namespaced records (read-modify-
// write happens in the service layer). Any durable key-value store satisfies
// these contracts.

type SettingsRepository interface {
	// LoadSettings returns (nil, nil) when nothing has been persisted yet.
	LoadSettings(ctx context.Context) (*entity.Settings, error)
	SaveSettings(ctx context.Context, s *entity.Settings) error
	DeleteSettings(ctx context.Context) error
}

type HistoryRepository interface {
	LoadHistory(ctx context.Context) ([]entity.HistoryEntry, error)
	SaveHistory(ctx context.Context, entries []entity.HistoryEntry) error
}

type AnalyticsRepository interface {
	LoadAnalytics(ctx context.Context) ([]entity.AnalyticsRecord, error)
	SaveAnalytics(ctx context.Context, records []entity.AnalyticsRecord) error
}

type TemplateRepository interface {
	LoadTemplates(ctx context.Context) ([]entity.Template, error)
	SaveTemplates(ctx context.Context, templates []entity.Template) error
}

type BatchRepository interface {
	SaveBatch(ctx context.Context, batch *entity.Batch) error
	GetBatch(ctx context.Context, id string) (*entity.Batch, error)
	ListBatches(ctx context.Context) ([]*entity.Batch, error)
}

type VoiceRepository interface {
	LoadVoiceQueue(ctx context.Context) ([]entity.VoiceNotification, error)
	SaveVoiceQueue(ctx context.Context, queue []entity.VoiceNotification) error
	LoadVoiceHistory(ctx context.Context) ([]entity.VoiceNotification, error)
	SaveVoiceHistory(ctx context.Context, history []entity.VoiceNotification) error
}

type SubscriptionRepository interface {
	// LoadPushSubscription returns "" when no endpoint is stored.
	LoadPushSubscription(ctx context.Context) (string, error)
	SavePushSubscription(ctx context.Context, endpoint string) error
	DeletePushSubscription(ctx context.Context) error
}

// Repository aggregates every persisted namespace of the notification
// manager.
type Repository interface {
	SettingsRepository
	HistoryRepository
	AnalyticsRepository
	TemplateRepository
	BatchRepository
	VoiceRepository
	SubscriptionRepository
}
