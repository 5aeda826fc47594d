package geo

import "math"

// earthRadiusM is the mean Earth radius in meters.
const earthRadiusM = 6371000.0

// DistanceMeters returns the haversine great-circle distance between two
// coordinates in meters.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	latRad1 := toRadians(lat1)
	latRad2 := toRadians(lat2)
	deltaLat := toRadians(lat2 - lat1)
	deltaLng := toRadians(lng2 - lng1)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(latRad1)*math.Cos(latRad2)*math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
