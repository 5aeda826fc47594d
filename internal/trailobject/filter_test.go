package trailobject

import (
	"testing"
)

func sampleObjects() []TrailObject {
	return []TrailObject{
		{
			ID: "obj-1", Type: TypeTrail, Title: "Suva Planina ridge",
			Description: "Long exposed ridge walk",
			Lat:         43.3214, Lng: 21.8961,
			Difficulty: DifficultyHard,
			Tags:       []string{"ridge", "views"},
			Ratings:    map[string]int{"u1": 5, "u2": 4},
		},
		{
			ID: "obj-2", Type: TypeWaterSource, Title: "Bojanine Vode spring",
			Description: "Reliable spring near the trailhead",
			// ~2 km north of obj-1
			Lat: 43.3394, Lng: 21.8961,
			Tags: []string{"water"},
			Ratings: map[string]int{"u1": 3},
		},
		{
			ID: "obj-3", Type: TypeShelter, Title: "Mosor hut",
			Description: "Small unlocked shelter",
			Lat:         43.5, Lng: 22.0,
			Ratings:     map[string]int{},
		},
	}
}

func TestApplyFiltersEmptyFilterReturnsAll(t *testing.T) {
	objects := sampleObjects()
	got := applyFilters(objects, Filter{})
	if len(got) != len(objects) {
		t.Fatalf("expected all objects, got %d", len(got))
	}
}

func TestApplyFiltersTypes(t *testing.T) {
	got := applyFilters(sampleObjects(), Filter{Types: []Type{TypeTrail, TypeShelter}})
	if len(got) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(got))
	}
	for _, o := range got {
		if o.Type == TypeWaterSource {
			t.Fatalf("water source should be filtered out")
		}
	}
}

func TestApplyFiltersMinRating(t *testing.T) {
	got := applyFilters(sampleObjects(), Filter{MinRating: 4.0})
	if len(got) != 1 || got[0].ID != "obj-1" {
		t.Fatalf("expected only obj-1, got %v", got)
	}
}

func TestApplyFiltersTagsOverlap(t *testing.T) {
	got := applyFilters(sampleObjects(), Filter{Tags: []string{"water", "caves"}})
	if len(got) != 1 || got[0].ID != "obj-2" {
		t.Fatalf("expected only obj-2, got %v", got)
	}
}

func TestApplyFiltersDifficulty(t *testing.T) {
	got := applyFilters(sampleObjects(), Filter{Difficulty: DifficultyHard})
	if len(got) != 1 || got[0].ID != "obj-1" {
		t.Fatalf("expected only obj-1, got %v", got)
	}
}

func TestApplyFiltersSearchCaseInsensitive(t *testing.T) {
	got := applyFilters(sampleObjects(), Filter{SearchQuery: "SPRING"})
	if len(got) != 1 || got[0].ID != "obj-2" {
		t.Fatalf("expected only obj-2, got %v", got)
	}

	got = applyFilters(sampleObjects(), Filter{SearchQuery: "shelter"})
	if len(got) != 1 || got[0].ID != "obj-3" {
		t.Fatalf("expected description match, got %v", got)
	}
}

func TestApplyFiltersRadius(t *testing.T) {
	center := &LatLng{Lat: 43.3214, Lng: 21.8961}

	// 1000 m keeps the object at the center, drops the one ~2 km away.
	got := applyFilters(sampleObjects(), Filter{Center: center, RadiusM: 1000})
	if len(got) != 1 || got[0].ID != "obj-1" {
		t.Fatalf("expected only obj-1 within 1000m, got %v", got)
	}
}

func TestApplyFiltersRadiusZeroMeansOff(t *testing.T) {
	center := &LatLng{Lat: 43.3214, Lng: 21.8961}
	got := applyFilters(sampleObjects(), Filter{Center: center, RadiusM: 0})
	if len(got) != 3 {
		t.Fatalf("radius 0 must disable the radius filter, got %d objects", len(got))
	}

	got = applyFilters(sampleObjects(), Filter{Center: center, RadiusM: -5})
	if len(got) != 3 {
		t.Fatalf("negative radius must disable the radius filter, got %d objects", len(got))
	}
}

func TestApplyFiltersRadiusIncludesCenterObject(t *testing.T) {
	objects := sampleObjects()
	for _, radius := range []float64{0.5, 10, 100000} {
		got := applyFilters(objects, Filter{
			Center:  &LatLng{Lat: objects[0].Lat, Lng: objects[0].Lng},
			RadiusM: radius,
		})
		found := false
		for _, o := range got {
			if o.ID == objects[0].ID {
				found = true
			}
		}
		if !found {
			t.Fatalf("object at the center must pass its own radius filter (r=%v)", radius)
		}
	}
}

func TestApplyFiltersConjunction(t *testing.T) {
	got := applyFilters(sampleObjects(), Filter{
		Types:     []Type{TypeTrail, TypeWaterSource},
		MinRating: 3.0,
		Tags:      []string{"water"},
	})
	if len(got) != 1 || got[0].ID != "obj-2" {
		t.Fatalf("expected AND semantics, got %v", got)
	}
}

func TestAverageRating(t *testing.T) {
	obj := TrailObject{Ratings: map[string]int{"a": 5, "b": 4, "c": 3}}
	if avg := obj.AverageRating(); avg != 4.0 {
		t.Fatalf("expected 4.0, got %v", avg)
	}

	empty := TrailObject{}
	if avg := empty.AverageRating(); avg != 0.0 {
		t.Fatalf("expected 0.0 for no ratings, got %v", avg)
	}
}
