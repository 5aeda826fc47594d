package trailobject

import (
	"strings"

	"backend-trailator/internal/shared/geo"
)

// applyFilters applies the in-process predicates of a filter: type set,
// minimum average rating, tag overlap, difficulty, text search, and radius.
// Radius runs last since it is the most expensive predicate. A radius <= 0
// or a missing center turns radius filtering off entirely.
func applyFilters(objects []TrailObject, f Filter) []TrailObject {
	out := objects

	if len(f.Types) > 0 {
		types := make(map[Type]struct{}, len(f.Types))
		for _, t := range f.Types {
			types[t] = struct{}{}
		}
		out = keep(out, func(o TrailObject) bool {
			_, ok := types[o.Type]
			return ok
		})
	}

	if f.MinRating > 0 {
		out = keep(out, func(o TrailObject) bool {
			return o.AverageRating() >= f.MinRating
		})
	}

	if len(f.Tags) > 0 {
		out = keep(out, func(o TrailObject) bool {
			for _, want := range f.Tags {
				for _, have := range o.Tags {
					if want == have {
						return true
					}
				}
			}
			return false
		})
	}

	if f.Difficulty != "" {
		out = keep(out, func(o TrailObject) bool {
			return o.Difficulty == f.Difficulty
		})
	}

	if f.SearchQuery != "" {
		q := strings.ToLower(f.SearchQuery)
		out = keep(out, func(o TrailObject) bool {
			return strings.Contains(strings.ToLower(o.Title), q) ||
				strings.Contains(strings.ToLower(o.Description), q)
		})
	}

	if f.Center != nil && f.RadiusM > 0 {
		out = keep(out, func(o TrailObject) bool {
			return geo.DistanceMeters(f.Center.Lat, f.Center.Lng, o.Lat, o.Lng) <= f.RadiusM
		})
	}

	return out
}

func keep(objects []TrailObject, pred func(TrailObject) bool) []TrailObject {
	filtered := objects[:0:0]
	for _, o := range objects {
		if pred(o) {
			filtered = append(filtered, o)
		}
	}
	return filtered
}
