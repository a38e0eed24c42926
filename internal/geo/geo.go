// Package geo computes distances between workout locations.
package geo

import (
	"math"

	"github.com/zahid-01/Running-Tracker/internal/domain"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points in kilometres.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// RouteSummary is the polyline joining workouts in creation order.
type RouteSummary struct {
	Points     []domain.Coordinates `json:"points"`
	DistanceKm float64              `json:"distance_km"`
}

// Route joins the workout locations in sequence order.
func Route(workouts []domain.Workout) RouteSummary {
	summary := RouteSummary{Points: make([]domain.Coordinates, 0, len(workouts))}
	for i, w := range workouts {
		summary.Points = append(summary.Points, w.Coords)
		if i > 0 {
			prev := workouts[i-1].Coords
			summary.DistanceKm += HaversineKm(prev.Lat, prev.Lng, w.Coords.Lat, w.Coords.Lng)
		}
	}
	return summary
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
