package service

import (
	"github.com/sekolahdigital/notify-service/internal/entity"
)

// ShouldShow decides whether a notification may be delivered visually.
// Rules are evaluated in order and short-circuit on the first rejection:
// global enable flag, role-based targeting, then the per-type toggle.
// Voice delivery has its own independent gate applied afterwards.
func ShouldShow(n *entity.Notification, s *entity.Settings, user *entity.User) bool {
	if s == nil || !s.Enabled {
		return false
	}

	if s.RoleBasedFiltering && !matchesTargeting(n, user) {
		return false
	}

	return s.TypeEnabled(n.Type)
}

// matchesTargeting checks the notification's targeting fields against the
// current user: explicit user ids take precedence over roles, roles over
// extra roles. A notification without targeting is visible to everyone.
func matchesTargeting(n *entity.Notification, user *entity.User) bool {
	if len(n.TargetUsers) > 0 {
		return user != nil && containsString(n.TargetUsers, user.ID)
	}
	if len(n.TargetRoles) > 0 {
		return user != nil && containsString(n.TargetRoles, user.Role)
	}
	if len(n.TargetExtraRoles) > 0 {
		return user != nil && containsString(n.TargetExtraRoles, user.ExtraRole)
	}
	return true
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
