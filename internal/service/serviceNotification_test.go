package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sekolahdigital/notify-service/internal/database"
	"github.com/sekolahdigital/notify-service/internal/delivery"
	"github.com/sekolahdigital/notify-service/internal/entity"
	"github.com/sekolahdigital/notify-service/internal/events"
)

type fakeDisplay struct {
	mu      sync.Mutex
	granted bool
	failOn  func(p delivery.Payload) error
	shown   []delivery.Payload
	clickFn func(notificationID string)
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{granted: true}
}

func (f *fakeDisplay) RequestPermission() (bool, error) {
	return f.granted, nil
}

func (f *fakeDisplay) Show(p delivery.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != nil {
		if err := f.failOn(p); err != nil {
			return err
		}
	}
	f.shown = append(f.shown, p)
	return nil
}

func (f *fakeDisplay) OnClick(fn func(notificationID string)) {
	f.clickFn = fn
}

func (f *fakeDisplay) shownCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.shown)
}

func staticUser(u *entity.User) CurrentUserFunc {
	return func(context.Context) *entity.User { return u }
}

func newTestService(display *fakeDisplay, historyCap int) NotificationService {
	repo := database.NewMemoryRepository()
	bus := events.NewBus()
	user := &entity.User{ID: "u-1", Role: "guru"}
	return NewNotificationService(repo, display, bus, staticUser(user), nil, historyCap)
}

func gradeNotification(svc NotificationService, title string) *entity.Notification {
	return svc.CreateNotification(&entity.CreateNotificationRequest{
		Type:  entity.TypeGrade,
		Title: title,
		Body:  "Nilai ulangan harian sudah tersedia",
	})
}

func TestShowNotificationRecordsLedgerAndPublishesEvents(t *testing.T) {
	display := newFakeDisplay()
	svc := newTestService(display, 0)
	ctx := context.Background()

	var shownEvents, gradeEvents []events.Event
	svc.Bus().Subscribe(events.TypeNotificationShown, func(e events.Event) {
		shownEvents = append(shownEvents, e)
	})
	svc.Bus().Subscribe(events.TypeGradeUpdated, func(e events.Event) {
		gradeEvents = append(gradeEvents, e)
	})

	n := gradeNotification(svc, "Nilai Matematika")
	require.NoError(t, svc.ShowNotification(ctx, n))

	require.Equal(t, 1, display.shownCount())
	assert.Equal(t, n.ID, display.shown[0].NotificationID)

	history := svc.GetHistory(ctx, 0)
	require.Len(t, history, 1)
	assert.Equal(t, n.ID, history[0].Notification.ID)
	assert.False(t, history[0].Notification.Read)

	analytics := svc.GetAnalytics(ctx)
	require.Len(t, analytics, 1)
	assert.Equal(t, 1, analytics[0].Delivered)
	assert.Equal(t, 1, analytics[0].RoleBreakdown["guru"])

	require.Len(t, shownEvents, 1)
	require.Len(t, gradeEvents, 1)
	assert.Equal(t, n.ID, gradeEvents[0].Notification.ID)
}

func TestShowNotificationHighPriorityRequiresInteraction(t *testing.T) {
	display := newFakeDisplay()
	svc := newTestService(display, 0)

	n := svc.CreateNotification(&entity.CreateNotificationRequest{
		Type:     entity.TypePPDB,
		Title:    "Status PPDB",
		Body:     "Pendaftaran diterima",
		Priority: entity.PriorityHigh,
	})
	require.NoError(t, svc.ShowNotification(context.Background(), n))

	require.Equal(t, 1, display.shownCount())
	assert.True(t, display.shown[0].RequireInteraction)
}

func TestShowNotificationPermissionDeniedIsSilent(t *testing.T) {
	display := newFakeDisplay()
	display.granted = false
	svc := newTestService(display, 0)
	ctx := context.Background()

	n := gradeNotification(svc, "Nilai IPA")
	require.NoError(t, svc.ShowNotification(ctx, n))

	assert.Equal(t, 0, display.shownCount())
	assert.Empty(t, svc.GetHistory(ctx, 0))
	assert.Empty(t, svc.GetAnalytics(ctx))
}

func TestShowNotificationFilteredIsSilent(t *testing.T) {
	display := newFakeDisplay()
	svc := newTestService(display, 0)
	ctx := context.Background()

	settings := svc.GetSettings(ctx)
	settings.Grades = false
	svc.SaveSettings(ctx, settings)

	n := gradeNotification(svc, "Nilai Bahasa")
	require.NoError(t, svc.ShowNotification(ctx, n))

	assert.Equal(t, 0, display.shownCount())
	assert.Empty(t, svc.GetHistory(ctx, 0))
}

func TestShowNotificationDisplayFailureReturnsError(t *testing.T) {
	display := newFakeDisplay()
	display.failOn = func(delivery.Payload) error { return errors.New("socket gone") }
	svc := newTestService(display, 0)
	ctx := context.Background()

	n := gradeNotification(svc, "Nilai PKN")
	err := svc.ShowNotification(ctx, n)

	require.Error(t, err)
	assert.Empty(t, svc.GetHistory(ctx, 0))
}

func TestHistoryCapEvictsOldest(t *testing.T) {
	display := newFakeDisplay()
	svc := newTestService(display, 5)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 8; i++ {
		n := gradeNotification(svc, fmt.Sprintf("Nilai %d", i))
		ids = append(ids, n.ID)
		require.NoError(t, svc.ShowNotification(ctx, n))
	}

	history := svc.GetHistory(ctx, 0)
	require.Len(t, history, 5)
	// Newest first; the three oldest deliveries were evicted.
	assert.Equal(t, ids[7], history[0].Notification.ID)
	assert.Equal(t, ids[3], history[4].Notification.ID)
}

func TestMarkAsReadAndUnreadCount(t *testing.T) {
	display := newFakeDisplay()
	svc := newTestService(display, 0)
	ctx := context.Background()

	n1 := gradeNotification(svc, "Nilai A")
	n2 := gradeNotification(svc, "Nilai B")
	require.NoError(t, svc.ShowNotification(ctx, n1))
	require.NoError(t, svc.ShowNotification(ctx, n2))

	assert.Equal(t, 2, svc.UnreadCount(ctx))
	assert.True(t, svc.MarkAsRead(ctx, n1.ID))
	assert.Equal(t, 1, svc.UnreadCount(ctx))
	assert.False(t, svc.MarkAsRead(ctx, "missing"))

	svc.MarkAllAsRead(ctx)
	assert.Equal(t, 0, svc.UnreadCount(ctx))

	analytics := svc.GetAnalytics(ctx)
	for _, record := range analytics {
		if record.NotificationID == n1.ID {
			assert.Equal(t, 1, record.Read)
		}
	}
}

func TestDisplayClickCallbackRecordsAnalytics(t *testing.T) {
	display := newFakeDisplay()
	svc := newTestService(display, 0)
	ctx := context.Background()

	n := gradeNotification(svc, "Nilai C")
	require.NoError(t, svc.ShowNotification(ctx, n))

	require.NotNil(t, display.clickFn)
	display.clickFn(n.ID)

	history := svc.GetHistory(ctx, 0)
	require.Len(t, history, 1)
	assert.True(t, history[0].Clicked)

	analytics := svc.GetAnalytics(ctx)
	require.Len(t, analytics, 1)
	assert.Equal(t, 1, analytics[0].Clicked)
}

func TestDeleteFromHistoryCountsDismissed(t *testing.T) {
	display := newFakeDisplay()
	svc := newTestService(display, 0)
	ctx := context.Background()

	n := gradeNotification(svc, "Nilai D")
	require.NoError(t, svc.ShowNotification(ctx, n))

	assert.True(t, svc.DeleteFromHistory(ctx, n.ID))
	assert.Empty(t, svc.GetHistory(ctx, 0))

	analytics := svc.GetAnalytics(ctx)
	require.Len(t, analytics, 1)
	assert.Equal(t, 1, analytics[0].Dismissed)
}

func TestSettingsRoundTripAndReset(t *testing.T) {
	display := newFakeDisplay()
	svc := newTestService(display, 0)
	ctx := context.Background()

	settings := svc.GetSettings(ctx)
	assert.True(t, settings.Enabled)
	assert.False(t, settings.Voice.Enabled)

	settings.Voice.Enabled = true
	settings.QuietHours.Enabled = true
	svc.SaveSettings(ctx, settings)

	reloaded := svc.GetSettings(ctx)
	assert.True(t, reloaded.Voice.Enabled)
	assert.True(t, reloaded.QuietHours.Enabled)

	defaults := svc.ResetSettings(ctx)
	assert.False(t, defaults.Voice.Enabled)
	assert.False(t, svc.GetSettings(ctx).QuietHours.Enabled)
}

// failingRepo wraps the memory repository with a history store that always
// fails.
type failingRepo struct {
	database.Repository
}

func (f *failingRepo) SaveHistory(context.Context, []entity.HistoryEntry) error {
	return errors.New("store unavailable")
}

func TestPersistFailurePublishesBusEvent(t *testing.T) {
	display := newFakeDisplay()
	repo := &failingRepo{Repository: database.NewMemoryRepository()}
	bus := events.NewBus()
	svc := NewNotificationService(repo, display, bus, staticUser(&entity.User{ID: "u-1", Role: "admin"}), nil, 0)
	ctx := context.Background()

	var persistEvents []events.Event
	bus.Subscribe(events.TypePersistenceError, func(e events.Event) {
		persistEvents = append(persistEvents, e)
	})

	n := gradeNotification(svc, "Nilai E")
	require.NoError(t, svc.ShowNotification(ctx, n))

	// Delivery succeeded even though the store is down.
	require.Len(t, svc.GetHistory(ctx, 0), 1)
	require.NotEmpty(t, persistEvents)
	assert.Equal(t, "history", persistEvents[0].Payload["record"])
}

func TestPushSubscriptionRoundTrip(t *testing.T) {
	display := newFakeDisplay()
	svc := newTestService(display, 0)
	ctx := context.Background()

	require.NoError(t, svc.SavePushSubscription(ctx, "https://push.example/ep-1"))
	require.NoError(t, svc.DeletePushSubscription(ctx))
}
