package voice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sekolahdigital/notify-service/internal/entity"
)

func voiceEnabledSettings() *entity.Settings {
	s := entity.DefaultSettings()
	s.Voice.Enabled = true
	return s
}

func at(hour, minute int) time.Time {
	return time.Date(2025, time.September, 1, hour, minute, 0, 0, time.Local)
}

func TestShouldAnnounce(t *testing.T) {
	quiet := voiceEnabledSettings()
	quiet.QuietHours = entity.QuietHours{Enabled: true, Start: "22:00", End: "06:00"}

	noGrades := voiceEnabledSettings()
	noGrades.Grades = false

	tests := []struct {
		name     string
		settings *entity.Settings
		now      time.Time
		notif    entity.Notification
		want     bool
	}{
		{
			name:     "voice disabled rejects",
			settings: entity.DefaultSettings(),
			now:      at(12, 0),
			notif:    entity.Notification{Type: entity.TypeGrade},
			want:     false,
		},
		{
			name:     "voice enabled accepts",
			settings: voiceEnabledSettings(),
			now:      at(12, 0),
			notif:    entity.Notification{Type: entity.TypeGrade},
			want:     true,
		},
		{
			name:     "inside wrapped quiet hours before midnight",
			settings: quiet,
			now:      at(23, 30),
			notif:    entity.Notification{Type: entity.TypeGrade},
			want:     false,
		},
		{
			name:     "inside wrapped quiet hours after midnight",
			settings: quiet,
			now:      at(5, 0),
			notif:    entity.Notification{Type: entity.TypeGrade},
			want:     false,
		},
		{
			name:     "outside wrapped quiet hours",
			settings: quiet,
			now:      at(12, 0),
			notif:    entity.Notification{Type: entity.TypeGrade},
			want:     true,
		},
		{
			name:     "type toggle applies to voice",
			settings: noGrades,
			now:      at(12, 0),
			notif:    entity.Notification{Type: entity.TypeGrade},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldAnnounce(&tt.notif, tt.settings, tt.now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInQuietHoursNonWrappingWindow(t *testing.T) {
	window := entity.QuietHours{Enabled: true, Start: "08:00", End: "10:00"}

	assert.True(t, inQuietHours(window, at(9, 0)))
	assert.True(t, inQuietHours(window, at(8, 0)))
	assert.True(t, inQuietHours(window, at(10, 0)))
	assert.False(t, inQuietHours(window, at(7, 59)))
	assert.False(t, inQuietHours(window, at(10, 1)))
}

func TestInQuietHoursMalformedClockIsIgnored(t *testing.T) {
	window := entity.QuietHours{Enabled: true, Start: "late", End: "06:00"}
	assert.False(t, inQuietHours(window, at(23, 0)))
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name  string
		notif entity.Notification
		want  entity.VoiceCategory
	}{
		{
			name:  "grade type",
			notif: entity.Notification{Type: entity.TypeGrade, Body: "Nilai baru"},
			want:  entity.CategoryGrade,
		},
		{
			name:  "system with attendance keyword",
			notif: entity.Notification{Type: entity.TypeSystem, Body: "Siswa terlambat hari ini"},
			want:  entity.CategoryAttendance,
		},
		{
			name:  "system with meeting keyword",
			notif: entity.Notification{Type: entity.TypeSystem, Body: "Rapat guru pukul dua"},
			want:  entity.CategoryMeeting,
		},
		{
			name:  "plain system",
			notif: entity.Notification{Type: entity.TypeSystem, Body: "Pemeliharaan server"},
			want:  entity.CategorySystem,
		},
		{
			name:  "other types fall back to system",
			notif: entity.Notification{Type: entity.TypeAnnouncement, Body: "Libur nasional"},
			want:  entity.CategorySystem,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(&tt.notif))
		})
	}
}

func TestRenderSpeechText(t *testing.T) {
	n := &entity.Notification{
		Type:  entity.TypeGrade,
		Title: "Nilai Matematika",
		Body:  "Nilai ulangan naik ke 90",
	}

	text := RenderSpeechText(n)
	assert.Equal(t, "Perhatian. Nilai Matematika. Nilai ulangan naik ke 90. Nilai baru telah dipublikasikan.", text)
}

func TestRenderSpeechTextHighPriorityPrefix(t *testing.T) {
	n := &entity.Notification{
		Type:     entity.TypeSystem,
		Title:    "Gangguan jaringan",
		Body:     "Akses internet sekolah terputus",
		Priority: entity.PriorityHigh,
	}

	text := RenderSpeechText(n)
	assert.Equal(t, "Penting. Pemberitahuan sistem. Gangguan jaringan. Akses internet sekolah terputus.", text)
}
