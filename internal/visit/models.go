package visit

import (
	"context"
	"time"
)

// Fix is a single device location update.
type Fix struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	AccuracyM  float64   `json:"accuracy_m,omitempty"`
	RecordedAt time.Time `json:"recorded_at,omitempty"`

	// NotificationsEnabled mirrors the client's notification permission.
	// When false the notification gating is skipped entirely; visit
	// awards still happen.
	NotificationsEnabled bool `json:"notifications_enabled"`
}

// LocationProvider delivers a stream of location fixes for one session.
// The channel closes when the session ends.
type LocationProvider interface {
	Fixes() <-chan Fix
}

// Notifier delivers a nearby-objects alert to one user.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message string) error
}

// Result reports what a single fix caused, mostly for diagnostics and the
// ingestion response.
type Result struct {
	NearbyCount int  `json:"nearby_count"`
	Notified    bool `json:"notified"`
}
