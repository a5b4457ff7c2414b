package entities

import "github.com/golang/geo/s2"

const earthRadiusKm = 6371.0

// BiasPoint is the reference location used to disambiguate same-named
// places: among several candidates the one closest to it wins. It points
// at Bor u Tachova, the operator's home region.
var BiasPoint = Coordinate{Lat: 49.7129, Lon: 12.7756}

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DistanceKm returns the great-circle distance to other in kilometers.
func (c Coordinate) DistanceKm(other Coordinate) float64 {
	a := s2.LatLngFromDegrees(c.Lat, c.Lon)
	b := s2.LatLngFromDegrees(other.Lat, other.Lon)
	return float64(a.Distance(b)) * earthRadiusKm
}
