package voice

import (
	"fmt"
	"strings"
	"time"

	"github.com/sekolahdigital/notify-service/internal/entity"
)

var (
	attendanceKeywords = []string{"absen", "kehadiran", "hadir", "izin", "terlambat"}
	meetingKeywords    = []string{"rapat", "pertemuan", "meeting"}
)

// ShouldAnnounce decides whether a notification may be spoken. Voice has its
// own gate, applied after visual approval: voice must be enabled, the
// current time must be outside quiet hours, and the type toggle must not be
// switched off.
func ShouldAnnounce(n *entity.Notification, s *entity.Settings, now time.Time) bool {
	if s == nil || !s.Voice.Enabled {
		return false
	}
	if s.QuietHours.Enabled && inQuietHours(s.QuietHours, now) {
		return false
	}
	return s.TypeEnabled(n.Type)
}

// inQuietHours reports whether now falls inside the window. A window whose
// start is after its end wraps midnight: [start, 24:00) plus [00:00, end].
func inQuietHours(q entity.QuietHours, now time.Time) bool {
	start, okStart := parseClock(q.Start)
	end, okEnd := parseClock(q.End)
	if !okStart || !okEnd {
		return false
	}

	minute := now.Hour()*60 + now.Minute()
	if start > end {
		return minute >= start || minute <= end
	}
	return minute >= start && minute <= end
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, bool) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// Categorize derives the speech category from the source notification.
// Grade notifications keep their own phrasing; system notifications are
// refined by keyword, everything else falls back to the system category.
func Categorize(n *entity.Notification) entity.VoiceCategory {
	switch n.Type {
	case entity.TypeGrade:
		return entity.CategoryGrade
	case entity.TypeSystem:
		body := strings.ToLower(n.Body)
		for _, kw := range attendanceKeywords {
			if strings.Contains(body, kw) {
				return entity.CategoryAttendance
			}
		}
		for _, kw := range meetingKeywords {
			if strings.Contains(body, kw) {
				return entity.CategoryMeeting
			}
		}
		return entity.CategorySystem
	default:
		return entity.CategorySystem
	}
}

// phrasing holds the category lead-in and lead-out around title and body.
type phrasing struct {
	leadIn  string
	leadOut string
}

var speechPhrasing = map[entity.VoiceCategory]phrasing{
	entity.CategoryGrade:      {"Perhatian.", "Nilai baru telah dipublikasikan."},
	entity.CategoryAttendance: {"Informasi kehadiran.", ""},
	entity.CategoryMeeting:    {"Pengingat rapat.", "Mohon periksa jadwal Anda."},
	entity.CategorySystem:     {"Pemberitahuan sistem.", ""},
}

// RenderSpeechText builds the spoken form of a notification: category
// lead-in, title, body, category lead-out. High priority announcements get
// an urgency prefix.
func RenderSpeechText(n *entity.Notification) string {
	p := speechPhrasing[Categorize(n)]

	var b strings.Builder
	if n.Priority == entity.PriorityHigh {
		b.WriteString("Penting. ")
	}
	b.WriteString(p.leadIn)
	b.WriteString(" ")
	b.WriteString(n.Title)
	b.WriteString(". ")
	b.WriteString(n.Body)
	b.WriteString(".")
	if p.leadOut != "" {
		b.WriteString(" ")
		b.WriteString(p.leadOut)
	}
	return b.String()
}
