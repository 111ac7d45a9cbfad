package entity

import (
	"time"
)

// VoiceCategory drives the speech phrasing of an announcement.
type VoiceCategory string

const (
	CategoryGrade      VoiceCategory = "grade"
	CategoryAttendance VoiceCategory = "attendance"
	CategoryMeeting    VoiceCategory = "meeting"
	CategorySystem     VoiceCategory = "system"
)

// VoiceNotification is a queued speech item. At most one item has
// IsSpeaking set at any time; WasSpoken guards against re-speaking the same
// item after an error or a racing completion.
type VoiceNotification struct {
	ID             string        `json:"id"`
	NotificationID string        `json:"notification_id"`
	Text           string        `json:"text"`
	Priority       Priority      `json:"priority"`
	Category       VoiceCategory `json:"category"`
	Timestamp      time.Time     `json:"timestamp"`
	IsSpeaking     bool          `json:"is_speaking"`
	WasSpoken      bool          `json:"was_spoken"`
}
