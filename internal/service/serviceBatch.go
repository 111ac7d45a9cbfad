package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sekolahdigital/notify-service/internal/entity"
)

// CreateBatch groups notifications into a pending named batch and persists
// it. Delivery order is the order given here.
func (s *notificationService) CreateBatch(ctx context.Context, name string, notifications []entity.Notification) (*entity.Batch, error) {
	if len(notifications) == 0 {
		return nil, fmt.Errorf("batch %q has no notifications", name)
	}

	batch := &entity.Batch{
		ID:             uuid.New().String(),
		Name:           name,
		Notifications:  notifications,
		Status:         entity.BatchStatusPending,
		DeliveryMethod: "manual",
		ScheduledFor:   s.now(),
	}

	if err := s.repo.SaveBatch(ctx, batch); err != nil {
		logrus.Errorf("failed to persist batch %s: %s", batch.ID, err.Error())
		s.reportPersistError("batch", err)
		return nil, err
	}
	return batch, nil
}

// SendBatch delivers a batch's notifications in order through the normal
// show pipeline. Individual failures do not abort the rest: the batch ends
// completed only when every item was delivered, otherwise failed with the
// failure count recorded. SentAt is set either way.
func (s *notificationService) SendBatch(ctx context.Context, id string) (bool, error) {
	batch, err := s.repo.GetBatch(ctx, id)
	if err != nil {
		return false, err
	}
	if batch == nil {
		return false, fmt.Errorf("batch %s not found", id)
	}
	if batch.Status == entity.BatchStatusProcessing {
		return false, fmt.Errorf("batch %s is already being sent", id)
	}

	batch.Status = entity.BatchStatusProcessing
	if err := s.repo.SaveBatch(ctx, batch); err != nil {
		s.reportPersistError("batch", err)
	}

	batched := s.GetSettings(ctx).BatchNotifications

	failed := 0
	total := len(batch.Notifications)
	for i := range batch.Notifications {
		n := batch.Notifications[i]
		if batched {
			// Grouped display: prefix the batch size and stamp batch
			// metadata so clients can collapse the group.
			n.Title = fmt.Sprintf("[%d] %s", total, n.Title)
			if n.Data == nil {
				n.Data = make(map[string]any)
			}
			n.Data["batch_id"] = batch.ID
			n.Data["batch_size"] = total
			n.Data["is_batched"] = true
		}
		if err := s.ShowNotification(ctx, &n); err != nil {
			failed++
		}
	}

	sentAt := s.now()
	batch.SentAt = &sentAt
	if failed == 0 {
		batch.Status = entity.BatchStatusCompleted
		batch.FailureReason = ""
	} else {
		batch.Status = entity.BatchStatusFailed
		batch.FailureReason = fmt.Sprintf("%d dari %d notifikasi gagal dikirim", failed, total)
		logrus.Warnf("batch %s finished with %d/%d failures", batch.ID, failed, total)
	}

	if err := s.repo.SaveBatch(ctx, batch); err != nil {
		logrus.Errorf("failed to persist batch %s: %s", batch.ID, err.Error())
		s.reportPersistError("batch", err)
	}
	return failed == 0, nil
}

func (s *notificationService) ListBatches(ctx context.Context) ([]*entity.Batch, error) {
	return s.repo.ListBatches(ctx)
}
