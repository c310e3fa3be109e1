package restaurants

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"restran/db"
	"restran/geo"
	"restran/globals"
	"restran/models"
	"restran/rdx"
	"restran/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// GetRestaurants lists restaurants with optional cuisine and proximity
// filters. Query parameters:
//
//	cuisine       exact cuisine match
//	lat, lng      caller location; enables distance annotation
//	radius        km, defaults to 50 when lat/lng are present
//	sort          "distance" (needs lat/lng) or "name"
//
// The unfiltered listing is served from Redis when possible.
func GetRestaurants(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	cuisine := q.Get("cuisine")
	latStr, lngStr := q.Get("lat"), q.Get("lng")
	sortBy := q.Get("sort")

	unfiltered := cuisine == "" && latStr == "" && lngStr == "" && sortBy == ""
	if unfiltered {
		if cached, _ := rdx.RdxGet(listCacheKey); cached != "" {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(cached))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if cuisine != "" {
		filter["cuisine"] = cuisine
	}

	restaurants, err := utils.FindAndDecode[models.Restaurant](ctx, db.RestaurantsCollection, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch restaurants")
		return
	}

	if latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid lat/lng")
			return
		}
		loc := models.UserLocation{Latitude: lat, Longitude: lng}

		radius := geo.DefaultRadiusKm
		if radStr := q.Get("radius"); radStr != "" {
			radius, err = strconv.ParseFloat(radStr, 64)
			if err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "Invalid radius")
				return
			}
		}

		restaurants = geo.FilterWithinRadius(restaurants, loc, radius)
		if sortBy == "name" {
			geo.SortByName(restaurants)
		}
	} else {
		if sortBy == "distance" {
			utils.RespondWithError(w, http.StatusBadRequest, "Distance sort requires lat and lng")
			return
		}
		geo.SortByName(restaurants)
	}

	if restaurants == nil {
		restaurants = []models.Restaurant{}
	}

	if unfiltered {
		if data, err := json.Marshal(restaurants); err == nil {
			rdx.RdxSet(listCacheKey, string(data))
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, restaurants)
}

// RestaurantStats summarizes booking traffic for one owned restaurant.
type RestaurantStats struct {
	models.Restaurant
	TotalBookings     int64 `json:"totalBookings"`
	PendingBookings   int64 `json:"pendingBookings"`
	ConfirmedBookings int64 `json:"confirmedBookings"`
	CancelledBookings int64 `json:"cancelledBookings"`
}

// GetMyRestaurants lists the caller's restaurants with per-restaurant
// booking counts for the owner dashboard.
func GetMyRestaurants(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ownerID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	restaurants, err := utils.FindAndDecode[models.Restaurant](ctx, db.RestaurantsCollection, bson.M{"ownerId": ownerID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch restaurants")
		return
	}
	geo.SortByName(restaurants)

	result := make([]RestaurantStats, 0, len(restaurants))
	for _, restaurant := range restaurants {
		stats := RestaurantStats{Restaurant: restaurant}
		base := bson.M{"restaurantId": restaurant.RestaurantID}

		stats.TotalBookings, _ = db.BookingsCollection.CountDocuments(ctx, base)
		stats.PendingBookings, _ = db.BookingsCollection.CountDocuments(ctx,
			bson.M{"restaurantId": restaurant.RestaurantID, "status": models.StatusPending})
		stats.ConfirmedBookings, _ = db.BookingsCollection.CountDocuments(ctx,
			bson.M{"restaurantId": restaurant.RestaurantID, "status": models.StatusConfirmed})
		stats.CancelledBookings, _ = db.BookingsCollection.CountDocuments(ctx,
			bson.M{"restaurantId": restaurant.RestaurantID, "status": models.StatusCancelled})

		result = append(result, stats)
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}
