// Package geo ranks and filters restaurants by proximity to a user
// coordinate. A restaurant without coordinates gets no distance and sorts
// after every ranked entry.
package geo

import (
	"math"
	"sort"

	"restran/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultRadiusKm is the nearby-search radius used when the caller does not
// supply one.
const DefaultRadiusKm = 50.0

const earthRadiusKm = 6371.0

// HaversineKm computes the great-circle distance in kilometers between two
// WGS84 coordinates given in degrees.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func toRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// AnnotateDistances attaches a computed distance to every restaurant that has
// coordinates. Restaurants without coordinates keep a nil distance and never
// enter the ranking.
func AnnotateDistances(restaurants []models.Restaurant, loc models.UserLocation) []models.Restaurant {
	for i := range restaurants {
		if restaurants[i].HasCoordinates() {
			d := HaversineKm(loc.Latitude, loc.Longitude, *restaurants[i].Latitude, *restaurants[i].Longitude)
			restaurants[i].Distance = &d
		} else {
			restaurants[i].Distance = nil
		}
	}
	return restaurants
}

// SortByDistance orders restaurants ascending by distance, stable, with
// unranked entries (no distance) last.
func SortByDistance(restaurants []models.Restaurant) {
	sort.SliceStable(restaurants, func(i, j int) bool {
		di, dj := math.Inf(1), math.Inf(1)
		if restaurants[i].Distance != nil {
			di = *restaurants[i].Distance
		}
		if restaurants[j].Distance != nil {
			dj = *restaurants[j].Distance
		}
		return di < dj
	})
}

var nameCollator = collate.New(language.English, collate.IgnoreCase)

// SortByName orders restaurants ascending by name using locale-aware
// collation.
func SortByName(restaurants []models.Restaurant) {
	sort.SliceStable(restaurants, func(i, j int) bool {
		return nameCollator.CompareString(restaurants[i].Name, restaurants[j].Name) < 0
	})
}

// FilterWithinRadius keeps only restaurants with coordinates whose distance
// from the user is at most radiusKm, sorted nearest first. Restaurants
// without coordinates are excluded outright.
func FilterWithinRadius(restaurants []models.Restaurant, loc models.UserLocation, radiusKm float64) []models.Restaurant {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}

	annotated := AnnotateDistances(restaurants, loc)
	var out []models.Restaurant
	for _, r := range annotated {
		if r.Distance != nil && *r.Distance <= radiusKm {
			out = append(out, r)
		}
	}
	SortByDistance(out)
	return out
}
