package entity

import (
	"time"
)

// HistoryEntry is the journal record of a delivered notification. The ledger
// is capped; oldest entries are evicted first. Dismissal removes the entry
// outright, counted on the analytics record.
type HistoryEntry struct {
	Notification Notification `json:"notification"`
	Clicked      bool         `json:"clicked"`
	DeliveredAt  time.Time    `json:"delivered_at"`
}

// AnalyticsAction names a counter on an AnalyticsRecord.
type AnalyticsAction string

const (
	ActionDelivered AnalyticsAction = "delivered"
	ActionRead      AnalyticsAction = "read"
	ActionClicked   AnalyticsAction = "clicked"
	ActionDismissed AnalyticsAction = "dismissed"
)

// AnalyticsRecord holds per-notification counters. Counters are incremented,
// never decremented, and the record survives deletion of its history entry.
type AnalyticsRecord struct {
	NotificationID string           `json:"notification_id"`
	Type           NotificationType `json:"type"`
	Delivered      int              `json:"delivered"`
	Read           int              `json:"read"`
	Clicked        int              `json:"clicked"`
	Dismissed      int              `json:"dismissed"`
	RoleBreakdown  map[string]int   `json:"role_breakdown"`
}

// Increment bumps the counter matching action. Unknown actions are ignored.
func (r *AnalyticsRecord) Increment(action AnalyticsAction) {
	switch action {
	case ActionDelivered:
		r.Delivered++
	case ActionRead:
		r.Read++
	case ActionClicked:
		r.Clicked++
	case ActionDismissed:
		r.Dismissed++
	}
}
