package domain

import "time"

// NotificationKind classifies a transient feedback message.
type NotificationKind string

// Notification kinds surfaced to the UI.
const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
	NotificationWarning NotificationKind = "warning"
)

// Notification is a short-lived, auto-expiring status message.
type Notification struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Detail    string           `json:"detail"`
	Kind      NotificationKind `json:"kind"`
	CreatedAt time.Time        `json:"created_at"`
}
