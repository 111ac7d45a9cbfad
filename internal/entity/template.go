package entity

import (
	"time"
)

// Template is a reusable text pattern with {{variable}} placeholders.
// Inactive templates never produce a notification.
type Template struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Type             NotificationType `json:"type"`
	Title            string           `json:"title"`
	Body             string           `json:"body"`
	Variables        []string         `json:"variables"`
	Priority         Priority         `json:"priority"`
	IsActive         bool             `json:"is_active"`
	IsDefault        bool             `json:"is_default"`
	TargetRoles      []string         `json:"target_roles,omitempty"`
	TargetExtraRoles []string         `json:"target_extra_roles,omitempty"`
	CreatedBy        string           `json:"created_by,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// CreateTemplateRequest is the transport payload for registering a
// user-defined template.
type CreateTemplateRequest struct {
	Name             string           `json:"name" binding:"required"`
	Type             NotificationType `json:"type" binding:"required"`
	Title            string           `json:"title" binding:"required"`
	Body             string           `json:"body" binding:"required"`
	Variables        []string         `json:"variables"`
	Priority         Priority         `json:"priority"`
	TargetRoles      []string         `json:"target_roles"`
	TargetExtraRoles []string         `json:"target_extra_roles"`
}

// ResolveTemplateRequest asks for a notification minted from a template.
type ResolveTemplateRequest struct {
	TemplateID string            `json:"template_id" binding:"required"`
	Variables  map[string]string `json:"variables"`
}
