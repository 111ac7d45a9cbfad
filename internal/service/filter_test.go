package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sekolahdigital/notify-service/internal/entity"
)

func TestShouldShow(t *testing.T) {
	guru := &entity.User{ID: "u-guru", Role: "guru"}
	waliKelas := &entity.User{ID: "u-wali", Role: "guru", ExtraRole: "wali_kelas"}
	siswa := &entity.User{ID: "u-siswa", Role: "siswa"}

	disabled := entity.DefaultSettings()
	disabled.Enabled = false

	noGrades := entity.DefaultSettings()
	noGrades.Grades = false

	noFiltering := entity.DefaultSettings()
	noFiltering.RoleBasedFiltering = false

	tests := []struct {
		name         string
		notification entity.Notification
		settings     *entity.Settings
		user         *entity.User
		want         bool
	}{
		{
			name:         "untargeted notification reaches everyone",
			notification: entity.Notification{Type: entity.TypeAnnouncement},
			settings:     entity.DefaultSettings(),
			user:         siswa,
			want:         true,
		},
		{
			name:         "global disable rejects everything",
			notification: entity.Notification{Type: entity.TypeAnnouncement},
			settings:     disabled,
			user:         guru,
			want:         false,
		},
		{
			name:         "nil settings rejects",
			notification: entity.Notification{Type: entity.TypeAnnouncement},
			settings:     nil,
			user:         guru,
			want:         false,
		},
		{
			name: "user targeting matches",
			notification: entity.Notification{
				Type:        entity.TypeGrade,
				TargetUsers: []string{"u-siswa"},
			},
			settings: entity.DefaultSettings(),
			user:     siswa,
			want:     true,
		},
		{
			name: "user targeting outranks role targeting",
			notification: entity.Notification{
				Type:        entity.TypeGrade,
				TargetUsers: []string{"u-siswa"},
				TargetRoles: []string{"guru"},
			},
			settings: entity.DefaultSettings(),
			user:     guru,
			want:     false,
		},
		{
			name: "role targeting matches",
			notification: entity.Notification{
				Type:        entity.TypeAnnouncement,
				TargetRoles: []string{"guru", "admin"},
			},
			settings: entity.DefaultSettings(),
			user:     guru,
			want:     true,
		},
		{
			name: "extra role targeting matches",
			notification: entity.Notification{
				Type:             entity.TypeSystem,
				TargetExtraRoles: []string{"wali_kelas"},
			},
			settings: entity.DefaultSettings(),
			user:     waliKelas,
			want:     true,
		},
		{
			name: "targeted notification rejects anonymous user",
			notification: entity.Notification{
				Type:        entity.TypeAnnouncement,
				TargetRoles: []string{"guru"},
			},
			settings: entity.DefaultSettings(),
			user:     nil,
			want:     false,
		},
		{
			name: "filtering off ignores targeting",
			notification: entity.Notification{
				Type:        entity.TypeAnnouncement,
				TargetRoles: []string{"admin"},
			},
			settings: noFiltering,
			user:     siswa,
			want:     true,
		},
		{
			name:         "type toggle rejects",
			notification: entity.Notification{Type: entity.TypeGrade},
			settings:     noGrades,
			user:         siswa,
			want:         false,
		},
		{
			name:         "unknown type is allowed",
			notification: entity.Notification{Type: "homework"},
			settings:     entity.DefaultSettings(),
			user:         siswa,
			want:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldShow(&tt.notification, tt.settings, tt.user)
			assert.Equal(t, tt.want, got)
		})
	}
}
