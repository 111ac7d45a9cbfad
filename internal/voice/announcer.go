package voice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sekolahdigital/notify-service/internal/database"
	"github.com/sekolahdigital/notify-service/internal/entity"
	"github.com/sekolahdigital/notify-service/internal/events"
)

const (
	defaultQueueCap   = 20
	defaultHistoryCap = 50
	defaultRetryDelay = time.Second

	persistTimeout = 5 * time.Second
)

// Config bounds the announcement queue and history and sets the delay before
// the queue is re-driven after a synthesis error.
type Config struct {
	QueueCap   int
	HistoryCap int
	RetryDelay time.Duration
}

func (c *Config) applyDefaults() {
	if c.QueueCap <= 0 {
		c.QueueCap = defaultQueueCap
	}
	if c.HistoryCap <= 0 {
		c.HistoryCap = defaultHistoryCap
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
}

// Announcer owns the voice queue. A single goroutine executes all state
// transitions, received as closures over the cmds channel, which makes the
// one-speaker-at-a-time invariant structural: playback can only start from
// that goroutine, and only when nothing is speaking.
//
// Items are spoken in strict FIFO enqueue order. Priority affects phrasing
// only, never sequencing.
type Announcer struct {
	cfg      Config
	synth    Synthesizer
	repo     database.VoiceRepository
	bus      *events.Bus
	settings func() *entity.Settings
	now      func() time.Time

	cmds chan func()
	done chan struct{}

	// Owned by the actor goroutine.
	queue    []entity.VoiceNotification
	history  []entity.VoiceNotification
	speaking bool
}

// NewAnnouncer restores any persisted queue snapshot, registers itself on
// the synthesizer's end/error callbacks and starts the consumer goroutine.
func NewAnnouncer(cfg Config, synth Synthesizer, repo database.VoiceRepository, bus *events.Bus, settings func() *entity.Settings, now func() time.Time) *Announcer {
	cfg.applyDefaults()
	if now == nil {
		now = time.Now
	}

	a := &Announcer{
		cfg:      cfg,
		synth:    synth,
		repo:     repo,
		bus:      bus,
		settings: settings,
		now:      now,
		cmds:     make(chan func(), 64),
		done:     make(chan struct{}),
	}
	a.restore()

	synth.OnEnd(func() { a.post(a.onSpeechEnd) })
	synth.OnError(func(err error) { a.post(func() { a.onSpeechError(err) }) })

	go a.run()
	return a
}

// restore reloads the persisted queue and history. Speaking flags are reset:
// whatever was playing when the process died is gone, and the wasSpoken
// guard keeps an already-attempted head from being replayed.
func (a *Announcer) restore() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	queue, err := a.repo.LoadVoiceQueue(ctx)
	if err != nil {
		logrus.Errorf("failed to restore voice queue: %s", err.Error())
	}
	for i := range queue {
		queue[i].IsSpeaking = false
	}
	a.queue = queue

	history, err := a.repo.LoadVoiceHistory(ctx)
	if err != nil {
		logrus.Errorf("failed to restore voice history: %s", err.Error())
	}
	a.history = history
}

func (a *Announcer) run() {
	for {
		select {
		case fn := <-a.cmds:
			fn()
		case <-a.done:
			return
		}
	}
}

func (a *Announcer) post(fn func()) {
	select {
	case a.cmds <- fn:
	case <-a.done:
	}
}

// Close stops the consumer goroutine. It does not halt active playback; use
// Stop or Clear first when shutting down delivery entirely.
func (a *Announcer) Close() {
	close(a.done)
}

// Enqueue offers a notification to the voice queue. It returns false without
// side effects when the voice policy rejects the notification; otherwise the
// item is appended (evicting the oldest waiting entry if the queue is at
// capacity, so the newest item is never the one dropped) and playback starts
// if idle.
func (a *Announcer) Enqueue(n *entity.Notification) bool {
	if !ShouldAnnounce(n, a.settings(), a.now()) {
		return false
	}

	vn := entity.VoiceNotification{
		ID:             uuid.New().String(),
		NotificationID: n.ID,
		Text:           RenderSpeechText(n),
		Priority:       n.Priority,
		Category:       Categorize(n),
		Timestamp:      a.now(),
	}

	a.post(func() {
		if len(a.queue) >= a.cfg.QueueCap {
			// The item being spoken is owned by the synthesizer; evict
			// the oldest waiting entry instead.
			if a.queue[0].IsSpeaking && len(a.queue) > 1 {
				a.queue = append(a.queue[:1], a.queue[2:]...)
			} else {
				a.queue = a.queue[1:]
			}
		}
		a.queue = append(a.queue, vn)

		a.history = append(a.history, vn)
		if len(a.history) > a.cfg.HistoryCap {
			a.history = a.history[len(a.history)-a.cfg.HistoryCap:]
		}

		a.persist()
		a.processQueue()
	})
	return true
}

// processQueue drives the head of the queue into the synthesizer. Runs on
// the actor goroutine only.
func (a *Announcer) processQueue() {
	if a.speaking || len(a.queue) == 0 {
		return
	}

	head := &a.queue[0]
	if head.WasSpoken {
		// Already attempted (error path); drop and move on.
		a.queue = a.queue[1:]
		a.persist()
		a.processQueue()
		return
	}

	// Both flags are set before the backend is invoked so a racing
	// error/retry cannot speak the same item twice.
	head.IsSpeaking = true
	head.WasSpoken = true
	a.speaking = true
	a.persist()

	s := a.settings()
	a.synth.Speak(SpeechRequest{
		Text:     head.Text,
		Rate:     s.Voice.Rate,
		Pitch:    s.Voice.Pitch,
		Volume:   s.Voice.Volume,
		Language: s.Voice.Language,
	})
}

// onSpeechEnd is the sole normal-path advancement trigger: pop the finished
// head and continue with the next item. The head is popped only when it is
// the item that was actually playing; a waiting head (possible after the
// speaking item was cap-evicted) stays and is spoken next.
func (a *Announcer) onSpeechEnd() {
	if !a.speaking {
		return
	}
	a.speaking = false
	if len(a.queue) > 0 && a.queue[0].IsSpeaking {
		a.queue = a.queue[1:]
	}
	a.persist()
	a.processQueue()
}

// onSpeechError leaves the failed item at the head, still marked wasSpoken,
// and schedules one delayed re-drive of the queue. The skip guard in
// processQueue then advances past it, so an error never loops.
func (a *Announcer) onSpeechError(err error) {
	if !a.speaking {
		return
	}
	logrus.Errorf("speech synthesis failed: %s", err.Error())

	a.speaking = false
	if len(a.queue) > 0 {
		a.queue[0].IsSpeaking = false
	}
	a.persist()

	time.AfterFunc(a.cfg.RetryDelay, func() {
		a.post(a.processQueue)
	})
}

// Stop halts playback and makes the head item eligible to be spoken again
// later. Unlike Skip, the item stays in the queue.
func (a *Announcer) Stop() {
	a.post(func() {
		a.synth.Stop()
		a.speaking = false
		if len(a.queue) > 0 {
			a.queue[0].IsSpeaking = false
			a.queue[0].WasSpoken = false
		}
		a.persist()
	})
}

// Skip halts playback, removes the head item outright and advances.
func (a *Announcer) Skip() {
	a.post(func() {
		a.synth.Stop()
		a.speaking = false
		if len(a.queue) > 0 {
			a.queue = a.queue[1:]
		}
		a.persist()
		a.processQueue()
	})
}

// Clear halts playback and empties the queue.
func (a *Announcer) Clear() {
	a.post(func() {
		a.synth.Stop()
		a.speaking = false
		a.queue = nil
		a.persist()
	})
}

// Queue returns a snapshot of the pending announcements.
func (a *Announcer) Queue() []entity.VoiceNotification {
	reply := make(chan []entity.VoiceNotification, 1)
	a.post(func() {
		reply <- append([]entity.VoiceNotification(nil), a.queue...)
	})
	select {
	case q := <-reply:
		return q
	case <-a.done:
		return nil
	}
}

// History returns a snapshot of the bounded announcement log.
func (a *Announcer) History() []entity.VoiceNotification {
	reply := make(chan []entity.VoiceNotification, 1)
	a.post(func() {
		reply <- append([]entity.VoiceNotification(nil), a.history...)
	})
	select {
	case h := <-reply:
		return h
	case <-a.done:
		return nil
	}
}

// persist snapshots queue and history. Failures are logged and reported on
// the bus; the in-memory state remains authoritative.
func (a *Announcer) persist() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := a.repo.SaveVoiceQueue(ctx, a.queue); err != nil {
		a.reportPersistError("voice_queue", err)
	}
	if err := a.repo.SaveVoiceHistory(ctx, a.history); err != nil {
		a.reportPersistError("voice_history", err)
	}
}

func (a *Announcer) reportPersistError(record string, err error) {
	logrus.Errorf("failed to persist %s: %s", record, err.Error())
	if a.bus != nil {
		a.bus.Publish(events.Event{
			Type: events.TypePersistenceError,
			Payload: map[string]any{
				"record": record,
				"error":  err.Error(),
			},
		})
	}
}
