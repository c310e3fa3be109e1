package geo

import (
	"math"
	"testing"

	"restran/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func named(name string, lat, lon *float64) models.Restaurant {
	return models.Restaurant{Name: name, Latitude: lat, Longitude: lon}
}

func TestHaversineKm(t *testing.T) {
	// identical points
	assert.Zero(t, HaversineKm(48.8566, 2.3522, 48.8566, 2.3522))

	// Paris -> London, reference ~343.5 km
	d := HaversineKm(48.8566, 2.3522, 51.5074, -0.1278)
	assert.InEpsilon(t, 343.5, d, 0.001)

	// symmetry
	assert.InDelta(t, d, HaversineKm(51.5074, -0.1278, 48.8566, 2.3522), 1e-9)

	// New York -> Los Angeles, reference ~3936 km
	assert.InEpsilon(t, 3936.0, HaversineKm(40.7128, -74.0060, 34.0522, -118.2437), 0.001)
}

func TestAnnotateDistances(t *testing.T) {
	loc := models.UserLocation{Latitude: 0, Longitude: 0}
	rs := AnnotateDistances([]models.Restaurant{
		named("origin", fp(0), fp(0)),
		named("no-coords", nil, nil),
		named("half-lat", fp(0), nil),
	}, loc)

	require.NotNil(t, rs[0].Distance)
	assert.Zero(t, *rs[0].Distance)
	assert.Nil(t, rs[1].Distance)
	assert.Nil(t, rs[2].Distance)
}

func TestSortByDistance(t *testing.T) {
	loc := models.UserLocation{Latitude: 0, Longitude: 0}
	rs := AnnotateDistances([]models.Restaurant{
		named("far", fp(10), fp(0)),
		named("unranked-1", nil, nil),
		named("near", fp(1), fp(0)),
		named("unranked-2", nil, nil),
	}, loc)

	SortByDistance(rs)

	require.Len(t, rs, 4)
	assert.Equal(t, "near", rs[0].Name)
	assert.Equal(t, "far", rs[1].Name)
	// entries without coordinates go last, original order preserved
	assert.Equal(t, "unranked-1", rs[2].Name)
	assert.Equal(t, "unranked-2", rs[3].Name)
}

func TestSortByDistanceSpecExample(t *testing.T) {
	loc := models.UserLocation{Latitude: 0, Longitude: 0}
	rs := AnnotateDistances([]models.Restaurant{
		named("A", fp(0), fp(0)),
		named("B", nil, nil),
	}, loc)
	SortByDistance(rs)

	assert.Equal(t, "A", rs[0].Name)
	assert.Equal(t, "B", rs[1].Name)
	assert.Nil(t, rs[1].Distance)
}

func TestSortByName(t *testing.T) {
	rs := []models.Restaurant{
		{Name: "cafe omega"},
		{Name: "Bistro Alpha"},
		{Name: "anchor grill"},
	}
	SortByName(rs)

	assert.Equal(t, "anchor grill", rs[0].Name)
	assert.Equal(t, "Bistro Alpha", rs[1].Name)
	assert.Equal(t, "cafe omega", rs[2].Name)
}

func TestFilterWithinRadius(t *testing.T) {
	loc := models.UserLocation{Latitude: 0, Longitude: 0}
	// ~1 degree latitude is ~111 km
	rs := []models.Restaurant{
		named("inside", fp(0.1), fp(0)),
		named("edge-out", fp(1), fp(0)),
		named("no-coords", nil, nil),
	}

	got := FilterWithinRadius(rs, loc, 50)
	require.Len(t, got, 1)
	assert.Equal(t, "inside", got[0].Name)

	// wide radius keeps both ranked entries, still excludes coordinate-less
	got = FilterWithinRadius(rs, loc, 200)
	require.Len(t, got, 2)
	assert.Equal(t, "inside", got[0].Name)
	assert.Equal(t, "edge-out", got[1].Name)
}

func TestFilterWithinRadiusMatchesSortPrefix(t *testing.T) {
	loc := models.UserLocation{Latitude: 0, Longitude: 0}
	rs := []models.Restaurant{
		named("c", fp(0.3), fp(0)),
		named("a", fp(0.1), fp(0)),
		named("b", fp(0.2), fp(0)),
	}

	filtered := FilterWithinRadius(rs, loc, 30)

	sorted := AnnotateDistances(append([]models.Restaurant(nil), rs...), loc)
	SortByDistance(sorted)

	require.NotEmpty(t, filtered)
	for i, r := range filtered {
		assert.Equal(t, sorted[i].Name, r.Name)
		require.NotNil(t, r.Distance)
		assert.LessOrEqual(t, *r.Distance, 30.0)
	}
}

func TestHaversineNoNaN(t *testing.T) {
	// antipodal points stress the sqrt/atan2 branch
	d := HaversineKm(90, 0, -90, 0)
	assert.False(t, math.IsNaN(d))
	assert.InEpsilon(t, math.Pi*earthRadiusKm, d, 0.001)
}
