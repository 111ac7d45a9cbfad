package service

import (
	"context"

	"github.com/sekolahdigital/notify-service/internal/entity"
	"github.com/sekolahdigital/notify-service/internal/events"
)

// CurrentUserFunc resolves the acting user from the request context, or nil
// when the request is unauthenticated.
type CurrentUserFunc func(ctx context.Context) *entity.User

// VoiceQueue is the voice-announcement collaborator of the manager.
// Implemented by voice.Announcer.
type VoiceQueue interface {
	Enqueue(n *entity.Notification) bool
	Stop()
	Skip()
	Clear()
	Queue() []entity.VoiceNotification
	History() []entity.VoiceNotification
}

// NotificationService is the notification manager: it owns settings,
// templates, the history/analytics ledger, batches and the voice queue, and
// coordinates delivery through the display backend. Public methods never
// panic and never propagate internal errors beyond their return values.
type NotificationService interface {
	CreateNotification(req *entity.CreateNotificationRequest) *entity.Notification
	ShowNotification(ctx context.Context, n *entity.Notification) error

	CreateTemplate(ctx context.Context, req *entity.CreateTemplateRequest, createdBy string) (*entity.Template, error)
	ListTemplates(ctx context.Context) []entity.Template
	CreateNotificationFromTemplate(ctx context.Context, templateID string, variables map[string]string) *entity.Notification

	CreateBatch(ctx context.Context, name string, notifications []entity.Notification) (*entity.Batch, error)
	SendBatch(ctx context.Context, id string) (bool, error)
	ListBatches(ctx context.Context) ([]*entity.Batch, error)

	GetHistory(ctx context.Context, limit int) []entity.HistoryEntry
	ClearHistory(ctx context.Context)
	MarkAsRead(ctx context.Context, id string) bool
	MarkClicked(ctx context.Context, id string) bool
	DeleteFromHistory(ctx context.Context, id string) bool
	UnreadCount(ctx context.Context) int
	MarkAllAsRead(ctx context.Context)

	GetSettings(ctx context.Context) *entity.Settings
	SaveSettings(ctx context.Context, s *entity.Settings)
	ResetSettings(ctx context.Context) *entity.Settings

	GetAnalytics(ctx context.Context) []entity.AnalyticsRecord
	ClearAnalytics(ctx context.Context)

	AnnounceNotification(ctx context.Context, n *entity.Notification) bool
	StopCurrentVoiceNotification()
	SkipCurrentVoiceNotification()
	ClearVoiceQueue()
	GetVoiceQueue() []entity.VoiceNotification
	GetVoiceHistory() []entity.VoiceNotification

	SavePushSubscription(ctx context.Context, endpoint string) error
	DeletePushSubscription(ctx context.Context) error

	AttachVoice(vq VoiceQueue)
	Bus() *events.Bus
}
