package visit

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"backend-trailator/internal/trailobject"
)

// session is the per-user notification dedup state. It lives in memory
// only: a process restart starts from a clean slate. mu guards notified
// and lastNotification; HandleFix holds it across the whole gating block
// so two in-flight fixes for one user cannot both pass the gate.
type session struct {
	mu               sync.Mutex
	notified         map[string]struct{}
	lastNotification time.Time
}

func newSession() *session {
	return &session{notified: map[string]struct{}{}}
}

// pending returns the nearby objects that were not yet notified this
// session. The caller must hold mu.
func (s *session) pending(objects []trailobject.TrailObject) []trailobject.TrailObject {
	var fresh []trailobject.TrailObject
	for _, obj := range objects {
		if _, seen := s.notified[obj.ID]; !seen {
			fresh = append(fresh, obj)
		}
	}
	return fresh
}

func (s *session) markNotified(objects []trailobject.TrailObject, at time.Time) {
	for _, obj := range objects {
		s.notified[obj.ID] = struct{}{}
	}
	s.lastNotification = at
}

func (s *session) reset() {
	s.notified = map[string]struct{}{}
}

// formatNotification builds the alert title and message: a single object
// is announced by name, two or three are listed, more than three are
// elided after the first two.
func formatNotification(objects []trailobject.TrailObject) (string, string) {
	titles := make([]string, len(objects))
	for i, obj := range objects {
		titles[i] = obj.Title
	}

	switch {
	case len(objects) == 1:
		return "Trail object nearby", titles[0]
	case len(objects) <= 3:
		title := fmt.Sprintf("Trail objects nearby (%d)", len(objects))
		return title, strings.Join(titles, ", ")
	default:
		title := fmt.Sprintf("Trail objects nearby (%d)", len(objects))
		message := fmt.Sprintf("%s +%d more", strings.Join(titles[:2], ", "), len(objects)-2)
		return title, message
	}
}
