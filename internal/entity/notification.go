package entity

import (
	"time"
)

// NotificationType enumerates every kind of message the school app emits.
type NotificationType string

const (
	TypeAnnouncement  NotificationType = "announcement"
	TypeGrade         NotificationType = "grade"
	TypePPDB          NotificationType = "ppdb"
	TypeEvent         NotificationType = "event"
	TypeLibrary       NotificationType = "library"
	TypeSystem        NotificationType = "system"
	TypeOCR           NotificationType = "ocr"
	TypeOCRValidation NotificationType = "ocr_validation"
	TypeMissingGrades NotificationType = "missing_grades"
)

// KnownTypes lists every supported notification type, used for template
// seeding and type validation.
var KnownTypes = []NotificationType{
	TypeAnnouncement,
	TypeGrade,
	TypePPDB,
	TypeEvent,
	TypeLibrary,
	TypeSystem,
	TypeOCR,
	TypeOCRValidation,
	TypeMissingGrades,
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	// PriorityHigh forces require-interaction display semantics and a
	// stronger voice lead-in.
	PriorityHigh Priority = "high"
)

// Notification is a single message instance. Once shown it is immutable
// except for the read flag, which the history ledger may flip.
type Notification struct {
	ID               string           `json:"id"`
	Type             NotificationType `json:"type"`
	Title            string           `json:"title"`
	Body             string           `json:"body"`
	Priority         Priority         `json:"priority"`
	Timestamp        time.Time        `json:"timestamp"`
	Read             bool             `json:"read"`
	Data             map[string]any   `json:"data,omitempty"`
	TargetRoles      []string         `json:"target_roles,omitempty"`
	TargetExtraRoles []string         `json:"target_extra_roles,omitempty"`
	TargetUsers      []string         `json:"target_users,omitempty"`
}

// CreateNotificationRequest is the transport payload for creating and
// showing a notification directly (without a template).
type CreateNotificationRequest struct {
	Type             NotificationType `json:"type" binding:"required"`
	Title            string           `json:"title" binding:"required"`
	Body             string           `json:"body" binding:"required"`
	Priority         Priority         `json:"priority"`
	Data             map[string]any   `json:"data"`
	TargetRoles      []string         `json:"target_roles"`
	TargetExtraRoles []string         `json:"target_extra_roles"`
	TargetUsers      []string         `json:"target_users"`
}
