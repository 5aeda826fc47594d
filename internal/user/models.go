package user

import "time"

// User is an account plus its gamification aggregate. The counters are
// server-computed and monotone; clients never set them directly.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	ImageURL string `json:"image_url,omitempty"`

	Points           int64    `json:"points"`
	ObjectsAdded     int64    `json:"objects_added"`
	CommentsPosted   int64    `json:"comments_posted"`
	LocationsVisited int64    `json:"locations_visited"`
	Rank             string   `json:"rank"`
	AchievedBadges   []string `json:"achieved_badges"`

	Lat float64 `json:"lat,omitempty"`
	Lng float64 `json:"lng,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
