package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sekolahdigital/notify-service/internal/entity"
)

// seedDefaultTemplates registers one built-in template per known
// notification type on first start. Seeded templates carry IsDefault and are
// the fallback when resolution by id fails.
func (s *notificationService) seedDefaultTemplates() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.templates) > 0 {
		return
	}

	now := s.now()
	for _, d := range defaultTemplates {
		s.templates = append(s.templates, entity.Template{
			ID:        "default-" + string(d.notifType),
			Name:      d.name,
			Type:      d.notifType,
			Title:     d.title,
			Body:      d.body,
			Variables: d.variables,
			Priority:  d.priority,
			IsActive:  true,
			IsDefault: true,
			CreatedBy: "system",
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	s.persistTemplatesLocked(context.Background())
}

var defaultTemplates = []struct {
	notifType entity.NotificationType
	name      string
	title     string
	body      string
	variables []string
	priority  entity.Priority
}{
	{
		notifType: entity.TypeAnnouncement,
		name:      "Pengumuman Sekolah",
		title:     "Pengumuman: {{judul}}",
		body:      "{{isi}}",
		variables: []string{"judul", "isi"},
		priority:  entity.PriorityNormal,
	},
	{
		notifType: entity.TypeGrade,
		name:      "Nilai Baru",
		title:     "Nilai {{mata_pelajaran}} telah dipublikasikan",
		body:      "Nilai {{jenis_nilai}} untuk {{mata_pelajaran}} sudah dapat dilihat.",
		variables: []string{"mata_pelajaran", "jenis_nilai"},
		priority:  entity.PriorityNormal,
	},
	{
		notifType: entity.TypePPDB,
		name:      "Status PPDB",
		title:     "Status pendaftaran diperbarui",
		body:      "Status pendaftaran {{nama_siswa}} berubah menjadi {{status}}.",
		variables: []string{"nama_siswa", "status"},
		priority:  entity.PriorityHigh,
	},
	{
		notifType: entity.TypeEvent,
		name:      "Kegiatan Sekolah",
		title:     "Kegiatan: {{nama_kegiatan}}",
		body:      "{{nama_kegiatan}} akan berlangsung pada {{tanggal}} di {{lokasi}}.",
		variables: []string{"nama_kegiatan", "tanggal", "lokasi"},
		priority:  entity.PriorityNormal,
	},
	{
		notifType: entity.TypeLibrary,
		name:      "Perpustakaan",
		title:     "Info perpustakaan",
		body:      "Buku {{judul_buku}} harus dikembalikan sebelum {{tanggal}}.",
		variables: []string{"judul_buku", "tanggal"},
		priority:  entity.PriorityLow,
	},
	{
		notifType: entity.TypeSystem,
		name:      "Pemberitahuan Sistem",
		title:     "{{judul}}",
		body:      "{{pesan}}",
		variables: []string{"judul", "pesan"},
		priority:  entity.PriorityNormal,
	},
	{
		notifType: entity.TypeOCR,
		name:      "OCR Selesai",
		title:     "Pemindaian dokumen selesai",
		body:      "Dokumen {{nama_dokumen}} selesai diproses.",
		variables: []string{"nama_dokumen"},
		priority:  entity.PriorityNormal,
	},
	{
		notifType: entity.TypeOCRValidation,
		name:      "Validasi OCR",
		title:     "Dokumen menunggu validasi",
		body:      "Dokumen {{nama_dokumen}} membutuhkan validasi guru.",
		variables: []string{"nama_dokumen"},
		priority:  entity.PriorityHigh,
	},
	{
		notifType: entity.TypeMissingGrades,
		name:      "Nilai Belum Lengkap",
		title:     "Nilai belum lengkap",
		body:      "Terdapat {{jumlah}} nilai yang belum diinput untuk kelas {{kelas}}.",
		variables: []string{"jumlah", "kelas"},
		priority:  entity.PriorityHigh,
	},
}

// CreateTemplate registers a user-defined template. Names must be unique
// among active templates.
func (s *notificationService) CreateTemplate(ctx context.Context, req *entity.CreateTemplateRequest, createdBy string) (*entity.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.templates {
		if s.templates[i].Name == req.Name && s.templates[i].IsActive {
			return nil, fmt.Errorf("template %q already exists", req.Name)
		}
	}

	priority := req.Priority
	if priority == "" {
		priority = entity.PriorityNormal
	}

	now := s.now()
	tpl := entity.Template{
		ID:               uuid.New().String(),
		Name:             req.Name,
		Type:             req.Type,
		Title:            req.Title,
		Body:             req.Body,
		Variables:        req.Variables,
		Priority:         priority,
		IsActive:         true,
		TargetRoles:      req.TargetRoles,
		TargetExtraRoles: req.TargetExtraRoles,
		CreatedBy:        createdBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.templates = append(s.templates, tpl)
	s.persistTemplatesLocked(ctx)

	return &tpl, nil
}

func (s *notificationService) ListTemplates(ctx context.Context) []entity.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Template(nil), s.templates...)
}

// CreateNotificationFromTemplate resolves a template and substitutes
// {{variable}} placeholders. Lookup is by template id first; when that
// misses, the id is treated as a notification type and the type's default
// template is used. Returns nil when no active template can be resolved.
// Placeholders without a supplied value stay verbatim in the output.
func (s *notificationService) CreateNotificationFromTemplate(ctx context.Context, templateID string, variables map[string]string) *entity.Notification {
	tpl := s.resolveTemplate(templateID)
	if tpl == nil {
		logrus.Warnf("no active template resolves %q", templateID)
		return nil
	}

	title := substituteVariables(tpl.Title, variables)
	body := substituteVariables(tpl.Body, variables)

	return &entity.Notification{
		ID:               uuid.New().String(),
		Type:             tpl.Type,
		Title:            title,
		Body:             body,
		Priority:         tpl.Priority,
		Timestamp:        s.now(),
		Read:             false,
		TargetRoles:      tpl.TargetRoles,
		TargetExtraRoles: tpl.TargetExtraRoles,
		Data: map[string]any{
			"template_id": tpl.ID,
		},
	}
}

func (s *notificationService) resolveTemplate(templateID string) *entity.Template {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.templates {
		if s.templates[i].ID == templateID {
			if !s.templates[i].IsActive {
				return nil
			}
			tpl := s.templates[i]
			return &tpl
		}
	}

	// Fall back to the default template of the type named by the id.
	for i := range s.templates {
		if s.templates[i].IsDefault && s.templates[i].IsActive && string(s.templates[i].Type) == templateID {
			tpl := s.templates[i]
			return &tpl
		}
	}
	return nil
}

func substituteVariables(text string, variables map[string]string) string {
	for key, value := range variables {
		text = strings.ReplaceAll(text, "{{"+key+"}}", value)
	}
	return text
}
