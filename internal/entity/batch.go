package entity

import (
	"time"
)

type BatchStatus string

const (
	BatchStatusPending    BatchStatus = "pending"
	BatchStatusProcessing BatchStatus = "processing"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusFailed     BatchStatus = "failed"
)

// Batch is a named, ordered group of notifications delivered together.
// pending -> processing -> completed (zero failures) | failed (>= 1 failure).
type Batch struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Notifications  []Notification `json:"notifications"`
	Status         BatchStatus    `json:"status"`
	DeliveryMethod string         `json:"delivery_method"`
	ScheduledFor   time.Time      `json:"scheduled_for"`
	SentAt         *time.Time     `json:"sent_at,omitempty"`
	FailureReason  string         `json:"failure_reason,omitempty"`
}

// CreateBatchRequest is the transport payload for grouping notifications
// into a named batch.
type CreateBatchRequest struct {
	Name          string                      `json:"name" binding:"required"`
	Notifications []CreateNotificationRequest `json:"notifications" binding:"required"`
}
