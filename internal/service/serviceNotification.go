package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sekolahdigital/notify-service/internal/database"
	"github.com/sekolahdigital/notify-service/internal/delivery"
	"github.com/sekolahdigital/notify-service/internal/entity"
	"github.com/sekolahdigital/notify-service/internal/events"
)

const defaultHistoryCap = 100

type notificationService struct {
	repo        database.Repository
	display     delivery.DisplayBackend
	bus         *events.Bus
	currentUser CurrentUserFunc
	now         func() time.Time
	historyCap  int

	// The manager is the single logical owner of all persisted state;
	// the mutex serializes read-modify-write cycles on the caches below.
	mu        sync.Mutex
	settings  *entity.Settings
	history   []entity.HistoryEntry
	analytics []entity.AnalyticsRecord
	templates []entity.Template
	voice     VoiceQueue
}

// NewNotificationService builds the manager with its injected
// collaborators, loads persisted state and seeds the default templates.
// Wire the voice queue afterwards with AttachVoice; clicks reported by the
// display backend are recorded as analytics automatically.
func NewNotificationService(repo database.Repository, display delivery.DisplayBackend, bus *events.Bus, currentUser CurrentUserFunc, now func() time.Time, historyCap int) NotificationService {
	if now == nil {
		now = time.Now
	}
	if historyCap <= 0 {
		historyCap = defaultHistoryCap
	}

	s := &notificationService{
		repo:        repo,
		display:     display,
		bus:         bus,
		currentUser: currentUser,
		now:         now,
		historyCap:  historyCap,
	}
	s.loadState()
	s.seedDefaultTemplates()

	display.OnClick(func(notificationID string) {
		s.MarkClicked(context.Background(), notificationID)
	})

	return s
}

func (s *notificationService) loadState() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	history, err := s.repo.LoadHistory(ctx)
	if err != nil {
		logrus.Errorf("failed to load notification history: %s", err.Error())
	}
	s.history = history

	analytics, err := s.repo.LoadAnalytics(ctx)
	if err != nil {
		logrus.Errorf("failed to load notification analytics: %s", err.Error())
	}
	s.analytics = analytics

	templates, err := s.repo.LoadTemplates(ctx)
	if err != nil {
		logrus.Errorf("failed to load notification templates: %s", err.Error())
	}
	s.templates = templates
}

// AttachVoice wires the voice queue collaborator. Separate from the
// constructor because the announcer needs a settings accessor from this
// service first.
func (s *notificationService) AttachVoice(vq VoiceQueue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voice = vq
}

func (s *notificationService) Bus() *events.Bus {
	return s.bus
}

// CreateNotification mints a notification from a request: fresh id, current
// timestamp, unread, normal priority unless stated.
func (s *notificationService) CreateNotification(req *entity.CreateNotificationRequest) *entity.Notification {
	priority := req.Priority
	if priority == "" {
		priority = entity.PriorityNormal
	}

	return &entity.Notification{
		ID:               uuid.New().String(),
		Type:             req.Type,
		Title:            req.Title,
		Body:             req.Body,
		Priority:         priority,
		Timestamp:        s.now(),
		Read:             false,
		Data:             req.Data,
		TargetRoles:      req.TargetRoles,
		TargetExtraRoles: req.TargetExtraRoles,
		TargetUsers:      req.TargetUsers,
	}
}

// ShowNotification runs the delivery pipeline: permission, visual filter,
// display, ledger, events, voice. Filtered or permission-denied
// notifications are a silent no-op with no state mutation; only a display
// backend failure is returned to the caller (batch delivery counts those).
func (s *notificationService) ShowNotification(ctx context.Context, n *entity.Notification) error {
	granted, err := s.display.RequestPermission()
	if err != nil {
		logrus.Errorf("display permission request failed: %s", err.Error())
		return nil
	}
	if !granted {
		logrus.Debugf("notification %s suppressed: display permission denied", n.ID)
		return nil
	}

	settings := s.GetSettings(ctx)
	user := s.currentUser(ctx)
	if !ShouldShow(n, settings, user) {
		logrus.Debugf("notification %s suppressed by delivery filter", n.ID)
		return nil
	}

	if err := s.display.Show(displayPayload(n)); err != nil {
		logrus.Errorf("failed to display notification %s: %s", n.ID, err.Error())
		return fmt.Errorf("failed to display notification: %w", err)
	}

	s.recordDelivery(ctx, n, user)
	s.publishShown(n)

	if vq := s.voiceQueue(); vq != nil {
		vq.Enqueue(n)
	}
	return nil
}

func displayPayload(n *entity.Notification) delivery.Payload {
	vibration := []int{100}
	if n.Priority == entity.PriorityHigh {
		vibration = []int{200, 100, 200}
	}

	return delivery.Payload{
		NotificationID:     n.ID,
		Title:              n.Title,
		Body:               n.Body,
		Icon:               "/icons/notify.png",
		Tag:                n.ID,
		RequireInteraction: n.Priority == entity.PriorityHigh,
		Vibration:          vibration,
		Data:               n.Data,
		TargetUsers:        n.TargetUsers,
		TargetRoles:        n.TargetRoles,
		TargetExtraRoles:   n.TargetExtraRoles,
	}
}

// publishShown emits the generic shown event plus the domain event mapped
// to the notification type, so other school services can react.
func (s *notificationService) publishShown(n *entity.Notification) {
	s.bus.Publish(events.Event{Type: events.TypeNotificationShown, Notification: n})
	if domainType, ok := events.ForNotificationType(n.Type); ok {
		s.bus.Publish(events.Event{Type: domainType, Notification: n})
	}
}

// recordDelivery appends the ledger entry, evicts beyond the cap (oldest
// first) and bumps the delivered analytics counter.
func (s *notificationService) recordDelivery(ctx context.Context, n *entity.Notification, user *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, entity.HistoryEntry{
		Notification: *n,
		DeliveredAt:  s.now(),
	})
	if len(s.history) > s.historyCap {
		s.history = s.history[len(s.history)-s.historyCap:]
	}
	s.recordAnalyticsLocked(n.ID, n.Type, entity.ActionDelivered, user)
	s.persistHistoryLocked(ctx)
	s.persistAnalyticsLocked(ctx)
}

func (s *notificationService) GetHistory(ctx context.Context, limit int) []entity.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := append([]entity.HistoryEntry(nil), s.history...)
	// Newest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func (s *notificationService) ClearHistory(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.persistHistoryLocked(ctx)
}

func (s *notificationService) MarkAsRead(ctx context.Context, id string) bool {
	user := s.currentUser(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.history {
		if s.history[i].Notification.ID == id {
			s.history[i].Notification.Read = true
			s.recordAnalyticsLocked(id, s.history[i].Notification.Type, entity.ActionRead, user)
			s.persistHistoryLocked(ctx)
			s.persistAnalyticsLocked(ctx)
			return true
		}
	}
	return false
}

func (s *notificationService) MarkClicked(ctx context.Context, id string) bool {
	user := s.currentUser(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.history {
		if s.history[i].Notification.ID == id {
			s.history[i].Clicked = true
			s.recordAnalyticsLocked(id, s.history[i].Notification.Type, entity.ActionClicked, user)
			s.persistHistoryLocked(ctx)
			s.persistAnalyticsLocked(ctx)
			return true
		}
	}
	return false
}

// DeleteFromHistory removes the entry and counts it as dismissed. The
// analytics record outlives the history entry.
func (s *notificationService) DeleteFromHistory(ctx context.Context, id string) bool {
	user := s.currentUser(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.history {
		if s.history[i].Notification.ID == id {
			notifType := s.history[i].Notification.Type
			s.history = append(s.history[:i], s.history[i+1:]...)
			s.recordAnalyticsLocked(id, notifType, entity.ActionDismissed, user)
			s.persistHistoryLocked(ctx)
			s.persistAnalyticsLocked(ctx)
			return true
		}
	}
	return false
}

func (s *notificationService) UnreadCount(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for i := range s.history {
		if !s.history[i].Notification.Read {
			count++
		}
	}
	return count
}

func (s *notificationService) MarkAllAsRead(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.history {
		s.history[i].Notification.Read = true
	}
	s.persistHistoryLocked(ctx)
}

// recordAnalyticsLocked increments the action counter for the notification
// id, creating the record on first touch. Counters only ever go up.
func (s *notificationService) recordAnalyticsLocked(id string, notifType entity.NotificationType, action entity.AnalyticsAction, user *entity.User) {
	for i := range s.analytics {
		if s.analytics[i].NotificationID == id {
			s.analytics[i].Increment(action)
			if user != nil {
				if s.analytics[i].RoleBreakdown == nil {
					s.analytics[i].RoleBreakdown = make(map[string]int)
				}
				s.analytics[i].RoleBreakdown[user.Role]++
			}
			return
		}
	}

	record := entity.AnalyticsRecord{
		NotificationID: id,
		Type:           notifType,
		RoleBreakdown:  make(map[string]int),
	}
	record.Increment(action)
	if user != nil {
		record.RoleBreakdown[user.Role]++
	}
	s.analytics = append(s.analytics, record)
}

func (s *notificationService) GetAnalytics(ctx context.Context) []entity.AnalyticsRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.AnalyticsRecord(nil), s.analytics...)
}

func (s *notificationService) ClearAnalytics(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analytics = nil
	s.persistAnalyticsLocked(ctx)
}

// GetSettings returns a copy of the current settings, loading them on first
// access. A failed read falls back to defaults without persisting them.
func (s *notificationService) GetSettings(ctx context.Context) *entity.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings == nil {
		stored, err := s.repo.LoadSettings(ctx)
		if err != nil {
			logrus.Errorf("failed to load settings, using defaults: %s", err.Error())
			s.reportPersistError("settings", err)
		}
		if stored != nil {
			s.settings = stored
		} else {
			s.settings = entity.DefaultSettings()
		}
	}

	copied := *s.settings
	return &copied
}

func (s *notificationService) SaveSettings(ctx context.Context, settings *entity.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *settings
	s.settings = &copied
	if err := s.repo.SaveSettings(ctx, s.settings); err != nil {
		logrus.Errorf("failed to persist settings: %s", err.Error())
		s.reportPersistError("settings", err)
	}
}

func (s *notificationService) ResetSettings(ctx context.Context) *entity.Settings {
	defaults := entity.DefaultSettings()
	s.SaveSettings(ctx, defaults)
	return defaults
}

func (s *notificationService) AnnounceNotification(ctx context.Context, n *entity.Notification) bool {
	vq := s.voiceQueue()
	if vq == nil {
		return false
	}
	return vq.Enqueue(n)
}

func (s *notificationService) StopCurrentVoiceNotification() {
	if vq := s.voiceQueue(); vq != nil {
		vq.Stop()
	}
}

func (s *notificationService) SkipCurrentVoiceNotification() {
	if vq := s.voiceQueue(); vq != nil {
		vq.Skip()
	}
}

func (s *notificationService) ClearVoiceQueue() {
	if vq := s.voiceQueue(); vq != nil {
		vq.Clear()
	}
}

func (s *notificationService) GetVoiceQueue() []entity.VoiceNotification {
	if vq := s.voiceQueue(); vq != nil {
		return vq.Queue()
	}
	return nil
}

func (s *notificationService) GetVoiceHistory() []entity.VoiceNotification {
	if vq := s.voiceQueue(); vq != nil {
		return vq.History()
	}
	return nil
}

func (s *notificationService) voiceQueue() VoiceQueue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voice
}

func (s *notificationService) SavePushSubscription(ctx context.Context, endpoint string) error {
	if err := s.repo.SavePushSubscription(ctx, endpoint); err != nil {
		logrus.Errorf("failed to save push subscription: %s", err.Error())
		s.reportPersistError("push_subscription", err)
		return err
	}
	return nil
}

func (s *notificationService) DeletePushSubscription(ctx context.Context) error {
	if err := s.repo.DeletePushSubscription(ctx); err != nil {
		logrus.Errorf("failed to delete push subscription: %s", err.Error())
		s.reportPersistError("push_subscription", err)
		return err
	}
	return nil
}

func (s *notificationService) persistHistoryLocked(ctx context.Context) {
	if err := s.repo.SaveHistory(ctx, s.history); err != nil {
		logrus.Errorf("failed to persist history: %s", err.Error())
		s.reportPersistError("history", err)
	}
}

func (s *notificationService) persistAnalyticsLocked(ctx context.Context) {
	if err := s.repo.SaveAnalytics(ctx, s.analytics); err != nil {
		logrus.Errorf("failed to persist analytics: %s", err.Error())
		s.reportPersistError("analytics", err)
	}
}

func (s *notificationService) persistTemplatesLocked(ctx context.Context) {
	if err := s.repo.SaveTemplates(ctx, s.templates); err != nil {
		logrus.Errorf("failed to persist templates: %s", err.Error())
		s.reportPersistError("templates", err)
	}
}

// reportPersistError makes storage degradation observable to subscribers
// instead of being console-only.
func (s *notificationService) reportPersistError(record string, err error) {
	s.bus.Publish(events.Event{
		Type: events.TypePersistenceError,
		Payload: map[string]any{
			"record": record,
			"error":  err.Error(),
		},
	})
}
