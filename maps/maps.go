package maps

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"restran/db"
	"restran/geo"
	"restran/models"
	"restran/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// Marker is one restaurant pin on the browse map.
type Marker struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Cuisine  string   `json:"cuisine,omitempty"`
	Banner   string   `json:"banner,omitempty"`
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Distance *float64 `json:"distance,omitempty"`
}

// MapConfig tells the frontend which tile server to render and where to start.
type MapConfig struct {
	TileURL     string  `json:"tileUrl"`
	Attribution string  `json:"attribution"`
	CenterLat   float64 `json:"centerLat"`
	CenterLng   float64 `json:"centerLng"`
	Zoom        int     `json:"zoom"`
	MaxZoom     int     `json:"maxZoom"`
}

var defaultConfig = MapConfig{
	TileURL:     "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
	Attribution: "© OpenStreetMap contributors",
	CenterLat:   48.8566,
	CenterLng:   2.3522,
	Zoom:        13,
	MaxZoom:     19,
}

func init() {
	if v := os.Getenv("MAP_TILE_URL"); v != "" {
		defaultConfig.TileURL = v
	}
}

// GetMapConfig returns the tile configuration, recentered on the caller's
// location when lat/lng query params are present.
func GetMapConfig(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cfg := defaultConfig

	q := r.URL.Query()
	if lat, err := strconv.ParseFloat(q.Get("lat"), 64); err == nil {
		if lng, err := strconv.ParseFloat(q.Get("lng"), 64); err == nil {
			cfg.CenterLat = lat
			cfg.CenterLng = lng
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, cfg)
}

// GetMarkers returns pins for every restaurant with known coordinates. With
// lat/lng present, markers carry distances and are limited to the radius.
func GetMarkers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// only geocoded restaurants can be pinned
	filter := bson.M{
		"latitude":  bson.M{"$exists": true},
		"longitude": bson.M{"$exists": true},
	}
	restaurants, err := utils.FindAndDecode[models.Restaurant](ctx, db.RestaurantsCollection, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch restaurants")
		return
	}

	q := r.URL.Query()
	if latStr, lngStr := q.Get("lat"), q.Get("lng"); latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid lat/lng")
			return
		}

		radius := geo.DefaultRadiusKm
		if radStr := q.Get("radius"); radStr != "" {
			if radius, err = strconv.ParseFloat(radStr, 64); err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "Invalid radius")
				return
			}
		}
		restaurants = geo.FilterWithinRadius(restaurants, models.UserLocation{Latitude: lat, Longitude: lng}, radius)
	}

	markers := make([]Marker, 0, len(restaurants))
	for _, restaurant := range restaurants {
		if !restaurant.HasCoordinates() {
			continue
		}
		markers = append(markers, Marker{
			ID:       restaurant.RestaurantID,
			Name:     restaurant.Name,
			Cuisine:  restaurant.Cuisine,
			Banner:   restaurant.Banner,
			Lat:      *restaurant.Latitude,
			Lng:      *restaurant.Longitude,
			Distance: restaurant.Distance,
		})
	}

	utils.RespondWithJSON(w, http.StatusOK, markers)
}
