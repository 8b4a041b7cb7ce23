package distance

import "math"

const earthRadiusKm = 6371.0088

// haversineKm is the great-circle distance between two points.
func haversineKm(a, b point) float64 {
	lat1, lat2 := radians(a.lat), radians(b.lat)
	dLat := lat2 - lat1
	dLon := radians(b.lon - a.lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
