package visit

import (
	"context"
	"log"
	"sync"
	"time"

	"backend-trailator/internal/trailobject"
)

type objectQuerier interface {
	QueryTrailObjects(ctx context.Context, filter trailobject.Filter) ([]trailobject.TrailObject, error)
}

type visitAwarder interface {
	AwardVisitPoints(ctx context.Context, userID, objectID string) error
}

type locationStore interface {
	UpdateLocation(ctx context.Context, id string, lat, lng float64) error
}

// Service turns location fixes into visit awards and throttled nearby
// alerts. Per-user dedup state is process-lifetime only.
type Service struct {
	objects  objectQuerier
	awards   visitAwarder
	users    locationStore
	notifier Notifier

	radiusM  float64
	interval time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func NewService(objects objectQuerier, awards visitAwarder, users locationStore, notifier Notifier, radiusM float64, interval time.Duration) *Service {
	return &Service{
		objects:  objects,
		awards:   awards,
		users:    users,
		notifier: notifier,
		radiusM:  radiusM,
		interval: interval,
		now:      time.Now,
		sessions: map[string]*session{},
	}
}

// HandleFix processes one location update: persist the position, query
// nearby objects, credit visits, and maybe notify. Location persistence
// and visit awards are best effort; their failures are logged and do not
// fail the fix.
func (s *Service) HandleFix(ctx context.Context, userID string, fix Fix) (Result, error) {
	if err := s.users.UpdateLocation(ctx, userID, fix.Lat, fix.Lng); err != nil {
		log.Printf("persist location for user %s failed: %v", userID, err)
	}

	nearby, err := s.objects.QueryTrailObjects(ctx, trailobject.Filter{
		Center:  &trailobject.LatLng{Lat: fix.Lat, Lng: fix.Lng},
		RadiusM: s.radiusM,
	})
	if err != nil {
		return Result{}, err
	}

	for _, obj := range nearby {
		if err := s.awards.AwardVisitPoints(ctx, userID, obj.ID); err != nil {
			log.Printf("visit award for user %s object %s failed: %v", userID, obj.ID, err)
		}
	}

	result := Result{NearbyCount: len(nearby)}

	sess := s.sessionFor(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if len(nearby) == 0 {
		sess.reset()
		return result, nil
	}

	if !fix.NotificationsEnabled {
		return result, nil
	}

	now := s.now()
	if now.Sub(sess.lastNotification) < s.interval {
		return result, nil
	}
	fresh := sess.pending(nearby)
	if len(fresh) == 0 {
		return result, nil
	}

	title, message := formatNotification(fresh)
	if err := s.notifier.Notify(ctx, userID, title, message); err != nil {
		log.Printf("notify user %s failed: %v", userID, err)
		return result, nil
	}
	sess.markNotified(fresh, now)
	result.Notified = true
	return result, nil
}

// Run consumes a location provider until the stream closes or ctx is
// cancelled.
func (s *Service) Run(ctx context.Context, userID string, provider LocationProvider) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fix, ok := <-provider.Fixes():
			if !ok {
				return nil
			}
			if _, err := s.HandleFix(ctx, userID, fix); err != nil {
				log.Printf("handle fix for user %s failed: %v", userID, err)
			}
		}
	}
}

// ResetNotified clears the user's dedup state so re-entering an area
// notifies again.
func (s *Service) ResetNotified(userID string) {
	sess := s.sessionFor(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.reset()
}

func (s *Service) sessionFor(userID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = newSession()
		s.sessions[userID] = sess
	}
	return sess
}
