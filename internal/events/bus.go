package events

import (
	"sync"
	"time"

	"github.com/sekolahdigital/notify-service/internal/entity"
	"github.com/sirupsen/logrus"
)

// Type names a domain event published on the bus.
type Type string

const (
	// TypeAny subscribes a handler to every event (used by the AMQP relay).
	TypeAny Type = "*"

	TypeNotificationShown Type = "notification_shown"
	TypePersistenceError  Type = "persistence_error"

	TypeAnnouncementPublished   Type = "announcement_published"
	TypeGradeUpdated            Type = "grade_updated"
	TypePPDBStatusChanged       Type = "ppdb_status_changed"
	TypeEventScheduled          Type = "event_scheduled"
	TypeLibraryUpdated          Type = "library_updated"
	TypeSystemNotice            Type = "system_notice"
	TypeOCRCompleted            Type = "ocr_completed"
	TypeOCRValidationRequested  Type = "ocr_validation_requested"
	TypeMissingGradesDetected   Type = "missing_grades_detected"
)

// domainEvent maps a notification type to the domain event emitted after
// that notification is shown.
var domainEvent = map[entity.NotificationType]Type{
	entity.TypeAnnouncement:  TypeAnnouncementPublished,
	entity.TypeGrade:         TypeGradeUpdated,
	entity.TypePPDB:          TypePPDBStatusChanged,
	entity.TypeEvent:         TypeEventScheduled,
	entity.TypeLibrary:       TypeLibraryUpdated,
	entity.TypeSystem:        TypeSystemNotice,
	entity.TypeOCR:           TypeOCRCompleted,
	entity.TypeOCRValidation: TypeOCRValidationRequested,
	entity.TypeMissingGrades: TypeMissingGradesDetected,
}

// ForNotificationType returns the domain event type for a shown notification
// and whether one is defined.
func ForNotificationType(t entity.NotificationType) (Type, bool) {
	et, ok := domainEvent[t]
	return et, ok
}

// Event is a bus message. Notification is set for delivery events; Payload
// carries event-specific details such as persistence error descriptions.
type Event struct {
	Type         Type                 `json:"type"`
	Notification *entity.Notification `json:"notification,omitempty"`
	Payload      map[string]any       `json:"payload,omitempty"`
	Timestamp    time.Time            `json:"timestamp"`
}

type Handler func(Event)

// Bus is an in-process publish/subscribe hub. Delivery is synchronous in
// publish order; a panicking handler is recovered and logged so one consumer
// cannot take down the notification pipeline.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[Type]map[int]Handler
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Type]map[int]Handler)}
}

// Subscribe registers a handler for the given event type and returns a
// subscription id for Unsubscribe. Use TypeAny to receive all events.
func (b *Bus) Subscribe(t Type, h Handler) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	if b.subs[t] == nil {
		b.subs[t] = make(map[int]Handler)
	}
	b.subs[t][b.nextID] = h
	return b.nextID
}

// Unsubscribe removes a previously registered handler. Unknown ids are a
// no-op.
func (b *Bus) Unsubscribe(t Type, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if handlers, ok := b.subs[t]; ok {
		delete(handlers, id)
		if len(handlers) == 0 {
			delete(b.subs, t)
		}
	}
}

// Publish delivers the event to all handlers subscribed to its type and to
// TypeAny subscribers.
func (b *Bus) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[e.Type])+len(b.subs[TypeAny]))
	for _, h := range b.subs[e.Type] {
		handlers = append(handlers, h)
	}
	for _, h := range b.subs[TypeAny] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(e, h)
	}
}

func (b *Bus) dispatch(e Event, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{
				"event": e.Type,
				"panic": r,
			}).Error("event handler panicked")
		}
	}()
	h(e)
}
