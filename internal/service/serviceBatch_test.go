package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sekolahdigital/notify-service/internal/delivery"
	"github.com/sekolahdigital/notify-service/internal/entity"
)

func batchNotifications(svc NotificationService, titles ...string) []entity.Notification {
	notifications := make([]entity.Notification, 0, len(titles))
	for _, title := range titles {
		notifications = append(notifications, *svc.CreateNotification(&entity.CreateNotificationRequest{
			Type:  entity.TypeAnnouncement,
			Title: title,
			Body:  "Pengumuman sekolah",
		}))
	}
	return notifications
}

func TestCreateBatchRequiresNotifications(t *testing.T) {
	svc := newTestService(newFakeDisplay(), 0)
	_, err := svc.CreateBatch(context.Background(), "kosong", nil)
	assert.Error(t, err)
}

func TestSendBatchDeliversInOrder(t *testing.T) {
	display := newFakeDisplay()
	svc := newTestService(display, 0)
	ctx := context.Background()

	batch, err := svc.CreateBatch(ctx, "pengumuman pagi", batchNotifications(svc, "Satu", "Dua", "Tiga"))
	require.NoError(t, err)
	assert.Equal(t, entity.BatchStatusPending, batch.Status)

	success, err := svc.SendBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.True(t, success)

	require.Equal(t, 3, display.shownCount())
	// Grouped display is on by default: every title carries the batch size.
	assert.Equal(t, "[3] Satu", display.shown[0].Title)
	assert.Equal(t, "[3] Dua", display.shown[1].Title)
	assert.Equal(t, "[3] Tiga", display.shown[2].Title)
	assert.Equal(t, batch.ID, display.shown[0].Data["batch_id"])
	assert.Equal(t, 3, display.shown[0].Data["batch_size"])

	batches, err := svc.ListBatches(ctx)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, entity.BatchStatusCompleted, batches[0].Status)
	assert.NotNil(t, batches[0].SentAt)
}

func TestSendBatchUngroupedKeepsTitles(t *testing.T) {
	display := newFakeDisplay()
	svc := newTestService(display, 0)
	ctx := context.Background()

	settings := svc.GetSettings(ctx)
	settings.BatchNotifications = false
	svc.SaveSettings(ctx, settings)

	batch, err := svc.CreateBatch(ctx, "tanpa grup", batchNotifications(svc, "Apel Pagi"))
	require.NoError(t, err)

	success, err := svc.SendBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.True(t, success)

	require.Equal(t, 1, display.shownCount())
	assert.Equal(t, "Apel Pagi", display.shown[0].Title)
	assert.Nil(t, display.shown[0].Data)
}

func TestSendBatchPartialFailure(t *testing.T) {
	display := newFakeDisplay()
	display.failOn = func(p delivery.Payload) error {
		if strings.Contains(p.Title, "Dua") {
			return errors.New("client rejected frame")
		}
		return nil
	}
	svc := newTestService(display, 0)
	ctx := context.Background()

	batch, err := svc.CreateBatch(ctx, "sebagian gagal", batchNotifications(svc, "Satu", "Dua", "Tiga"))
	require.NoError(t, err)

	success, err := svc.SendBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.False(t, success)

	// The failing item did not stop the remaining deliveries.
	assert.Equal(t, 2, display.shownCount())

	batches, err := svc.ListBatches(ctx)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, entity.BatchStatusFailed, batches[0].Status)
	assert.Contains(t, batches[0].FailureReason, "1 dari 3")
	assert.NotNil(t, batches[0].SentAt)
}

func TestSendBatchUnknownID(t *testing.T) {
	svc := newTestService(newFakeDisplay(), 0)
	_, err := svc.SendBatch(context.Background(), "missing")
	assert.Error(t, err)
}
