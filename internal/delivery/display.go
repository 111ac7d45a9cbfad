package delivery

// Payload is the visual push frame handed to the display backend. Targeting
// fields restrict fan-out; empty targeting means every connected client.
type Payload struct {
	NotificationID     string         `json:"notification_id"`
	Title              string         `json:"title"`
	Body               string         `json:"body"`
	Icon               string         `json:"icon,omitempty"`
	Tag                string         `json:"tag,omitempty"`
	RequireInteraction bool           `json:"require_interaction"`
	Vibration          []int          `json:"vibration,omitempty"`
	Data               map[string]any `json:"data,omitempty"`

	TargetUsers      []string `json:"-"`
	TargetRoles      []string `json:"-"`
	TargetExtraRoles []string `json:"-"`
}

// DisplayBackend abstracts the permission/display collaborator. A denied
// permission aborts delivery before any state mutation; clicks are reported
// back through the callback registered with OnClick.
type DisplayBackend interface {
	RequestPermission() (bool, error)
	Show(p Payload) error
	OnClick(fn func(notificationID string))
}
