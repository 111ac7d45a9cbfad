package entity

// QuietHours is a time-of-day window during which voice announcements are
// suppressed. Start/End use "HH:MM" 24h format; the window may wrap midnight
// (Start > End means [Start, 24:00) plus [00:00, End]).
type QuietHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// VoiceSettings holds the speech-synthesis sub-settings.
type VoiceSettings struct {
	Enabled  bool    `json:"enabled"`
	Rate     float64 `json:"rate"`
	Pitch    float64 `json:"pitch"`
	Volume   float64 `json:"volume"`
	Language string  `json:"language"`
}

// Settings is the process-wide notification configuration, loaded on first
// access and persisted on every write. Two concurrent writers are not
// coordinated; last write wins.
type Settings struct {
	Enabled            bool `json:"enabled"`
	RoleBasedFiltering bool `json:"role_based_filtering"`
	BatchNotifications bool `json:"batch_notifications"`

	Announcements bool `json:"announcements"`
	Grades        bool `json:"grades"`
	PPDB          bool `json:"ppdb"`
	Events        bool `json:"events"`
	Library       bool `json:"library"`
	System        bool `json:"system"`
	OCR           bool `json:"ocr"`
	OCRValidation bool `json:"ocr_validation"`
	MissingGrades bool `json:"missing_grades"`

	QuietHours QuietHours    `json:"quiet_hours"`
	Voice      VoiceSettings `json:"voice"`
}

// typeFlag maps a notification type to its settings toggle. Unknown types
// are allowed by default.
var typeFlag = map[NotificationType]func(*Settings) bool{
	TypeAnnouncement:  func(s *Settings) bool { return s.Announcements },
	TypeGrade:         func(s *Settings) bool { return s.Grades },
	TypePPDB:          func(s *Settings) bool { return s.PPDB },
	TypeEvent:         func(s *Settings) bool { return s.Events },
	TypeLibrary:       func(s *Settings) bool { return s.Library },
	TypeSystem:        func(s *Settings) bool { return s.System },
	TypeOCR:           func(s *Settings) bool { return s.OCR },
	TypeOCRValidation: func(s *Settings) bool { return s.OCRValidation },
	TypeMissingGrades: func(s *Settings) bool { return s.MissingGrades },
}

// TypeEnabled reports whether notifications of the given type are switched
// on in these settings.
func (s *Settings) TypeEnabled(t NotificationType) bool {
	flag, ok := typeFlag[t]
	if !ok {
		return true
	}
	return flag(s)
}

// DefaultSettings returns the configuration used when nothing has been
// persisted yet or a settings read fails.
func DefaultSettings() *Settings {
	return &Settings{
		Enabled:            true,
		RoleBasedFiltering: true,
		BatchNotifications: true,
		Announcements:      true,
		Grades:             true,
		PPDB:               true,
		Events:             true,
		Library:            true,
		System:             true,
		OCR:                true,
		OCRValidation:      true,
		MissingGrades:      true,
		QuietHours: QuietHours{
			Enabled: false,
			Start:   "21:00",
			End:     "06:00",
		},
		Voice: VoiceSettings{
			Enabled:  false,
			Rate:     1.0,
			Pitch:    1.0,
			Volume:   1.0,
			Language: "id-ID",
		},
	}
}
