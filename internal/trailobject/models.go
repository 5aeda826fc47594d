package trailobject

import "time"

type Type string

const (
	TypeTrail       Type = "TRAIL"
	TypeViewpoint   Type = "VIEWPOINT"
	TypeWaterSource Type = "WATER_SOURCE"
	TypeShelter     Type = "SHELTER"
	TypeLandmark    Type = "LANDMARK"
	TypeCampingSpot Type = "CAMPING_SPOT"
	TypeDangerZone  Type = "DANGER_ZONE"
)

var knownTypes = map[Type]struct{}{
	TypeTrail:       {},
	TypeViewpoint:   {},
	TypeWaterSource: {},
	TypeShelter:     {},
	TypeLandmark:    {},
	TypeCampingSpot: {},
	TypeDangerZone:  {},
}

type Difficulty string

const (
	DifficultyEasy     Difficulty = "EASY"
	DifficultyModerate Difficulty = "MODERATE"
	DifficultyHard     Difficulty = "HARD"
	DifficultyExtreme  Difficulty = "EXTREME"
)

type WaterQuality string

const (
	WaterPotable     WaterQuality = "POTABLE"
	WaterNonPotable  WaterQuality = "NON_POTABLE"
	WaterNeedsFilter WaterQuality = "NEEDS_FILTER"
)

// TrailObject is a user-submitted point of interest. AuthorName is
// denormalized at creation time and not kept in sync with later profile
// edits.
type TrailObject struct {
	ID          string  `json:"id"`
	AuthorID    string  `json:"author_id"`
	AuthorName  string  `json:"author_name"`
	Type        Type    `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`

	PhotoURLs []string       `json:"photo_urls"`
	Ratings   map[string]int `json:"ratings"`
	Comments  []Comment      `json:"comments,omitempty"`

	Difficulty   Difficulty   `json:"difficulty,omitempty"`
	WaterQuality WaterQuality `json:"water_quality,omitempty"`
	Capacity     int          `json:"capacity,omitempty"`
	ElevationM   float64      `json:"elevation_m,omitempty"`
	Tags         []string     `json:"tags,omitempty"`

	CreatedAt         time.Time `json:"created_at"`
	LastInteractionAt time.Time `json:"last_interaction_at"`
}

// AverageRating returns the mean of all ratings, 0.0 when nobody rated.
func (o TrailObject) AverageRating() float64 {
	if len(o.Ratings) == 0 {
		return 0.0
	}
	sum := 0
	for _, r := range o.Ratings {
		sum += r
	}
	return float64(sum) / float64(len(o.Ratings))
}

type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Filter describes the AND-combined predicates of a trail object query.
// All fields are optional; the zero value matches everything. AuthorID and
// the createdAt range are pushed into the store query, the rest is applied
// in-process. RadiusM <= 0 or a missing Center means radius filtering is
// off, not a zero-radius match.
type Filter struct {
	AuthorID    string     `json:"author_id,omitempty"`
	Types       []Type     `json:"types,omitempty"`
	MinRating   float64    `json:"min_rating,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	DateFrom    time.Time  `json:"date_from,omitempty"`
	DateTo      time.Time  `json:"date_to,omitempty"`
	Difficulty  Difficulty `json:"difficulty,omitempty"`
	SearchQuery string     `json:"search_query,omitempty"`
	Center      *LatLng    `json:"center,omitempty"`
	RadiusM     float64    `json:"radius_m,omitempty"`
}
