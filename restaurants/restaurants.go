package restaurants

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"restran/db"
	"restran/geocode"
	"restran/globals"
	"restran/lifecycle"
	"restran/models"
	"restran/rdx"
	"restran/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultSlots is assigned to restaurants created without explicit service
// windows.
var DefaultSlots = []string{"18:00-19:30", "19:30-21:00", "21:00-22:30"}

const listCacheKey = "restaurants"

func invalidateListCache() {
	if _, err := rdx.RdxDel(listCacheKey); err != nil {
		log.Printf("Cache deletion failed for restaurant list: %v", err)
	}
}

// slotsFromInput resolves the slot input: an explicit list wins, otherwise
// the newline-separated text form owners paste from the dashboard.
func slotsFromInput(slots []string, text string) []string {
	if len(slots) == 0 && text != "" {
		return utils.ParseSlotLines(text)
	}
	return slots
}

// geocodeAddress resolves an address best-effort. Geocoding failure never
// blocks a write; the restaurant simply stays without coordinates.
func geocodeAddress(ctx context.Context, address string) (lat, lon *float64) {
	if address == "" {
		return nil, nil
	}
	res, err := geocode.Forward(ctx, address)
	if err != nil {
		log.Printf("Geocoding failed for %q: %v", address, err)
		return nil, nil
	}
	if res == nil {
		return nil, nil
	}
	return &res.Latitude, &res.Longitude
}

func CreateRestaurant(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ownerID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}
	ownerEmail, _ := r.Context().Value(globals.EmailKey).(string)

	var restaurant models.Restaurant
	if err := json.NewDecoder(r.Body).Decode(&restaurant); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	restaurant.Name = strings.TrimSpace(restaurant.Name)
	if restaurant.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Restaurant name is required")
		return
	}
	if restaurant.Capacity < 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Capacity cannot be negative")
		return
	}
	restaurant.Slots = slotsFromInput(restaurant.Slots, restaurant.SlotsText)
	restaurant.SlotsText = ""
	for _, slot := range restaurant.Slots {
		if _, ok := lifecycle.SlotEnd("2000-01-01", slot); !ok {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid slot format: "+slot)
			return
		}
	}
	if len(restaurant.Slots) == 0 {
		restaurant.Slots = DefaultSlots
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	restaurant.RestaurantID = "rst" + utils.GenerateRandomDigitString(10)
	restaurant.OwnerID = ownerID
	restaurant.OwnerEmail = ownerEmail
	restaurant.Banner = ""
	restaurant.Distance = nil
	restaurant.CreatedAt = time.Now()
	restaurant.UpdatedAt = restaurant.CreatedAt
	restaurant.Latitude, restaurant.Longitude = geocodeAddress(ctx, restaurant.Address)

	if _, err := db.RestaurantsCollection.InsertOne(ctx, restaurant); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create restaurant")
		return
	}

	invalidateListCache()
	utils.RespondWithJSON(w, http.StatusCreated, restaurant)
}

func GetRestaurant(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("restaurantid")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var restaurant models.Restaurant
	err := db.RestaurantsCollection.FindOne(ctx, bson.M{"restaurantid": id}).Decode(&restaurant)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Restaurant not found")
		} else {
			utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, restaurant)
}

func UpdateRestaurant(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("restaurantid")

	ownerID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var existing models.Restaurant
	err := db.RestaurantsCollection.FindOne(ctx, bson.M{"restaurantid": id}).Decode(&existing)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Restaurant not found")
		} else {
			utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if existing.OwnerID != ownerID {
		utils.RespondWithError(w, http.StatusForbidden, "You do not own this restaurant")
		return
	}

	var input models.Restaurant
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updateFields := bson.M{"updatedAt": time.Now()}
	if name := strings.TrimSpace(input.Name); name != "" {
		updateFields["name"] = name
	}
	if input.Description != "" {
		updateFields["description"] = input.Description
	}
	if input.Phone != "" {
		updateFields["phone"] = input.Phone
	}
	if input.Email != "" {
		updateFields["email"] = input.Email
	}
	if input.Cuisine != "" {
		updateFields["cuisine"] = input.Cuisine
	}
	if input.PriceRange != "" {
		updateFields["priceRange"] = input.PriceRange
	}
	if input.Capacity > 0 {
		updateFields["capacity"] = input.Capacity
	}
	input.Slots = slotsFromInput(input.Slots, input.SlotsText)
	if len(input.Slots) > 0 {
		for _, slot := range input.Slots {
			if _, ok := lifecycle.SlotEnd("2000-01-01", slot); !ok {
				utils.RespondWithError(w, http.StatusBadRequest, "Invalid slot format: "+slot)
				return
			}
		}
		updateFields["slots"] = input.Slots
	}

	// Address changes re-run geocoding so distance ranking stays honest.
	if input.Address != "" && input.Address != existing.Address {
		updateFields["address"] = input.Address
		lat, lon := geocodeAddress(ctx, input.Address)
		if lat != nil && lon != nil {
			updateFields["latitude"] = *lat
			updateFields["longitude"] = *lon
		}
	}

	var updated models.Restaurant
	err = db.RestaurantsCollection.FindOneAndUpdate(ctx,
		bson.M{"restaurantid": id},
		bson.M{"$set": updateFields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update restaurant")
		return
	}

	invalidateListCache()
	utils.RespondWithJSON(w, http.StatusOK, updated)
}

// DeleteRestaurant removes a restaurant and cancels every live booking
// attached to it, so clients are never left holding a booking against a
// restaurant that no longer exists.
func DeleteRestaurant(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("restaurantid")

	ownerID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var restaurant models.Restaurant
	err := db.RestaurantsCollection.FindOne(ctx, bson.M{"restaurantid": id}).Decode(&restaurant)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Restaurant not found")
		} else {
			utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if restaurant.OwnerID != ownerID {
		utils.RespondWithError(w, http.StatusForbidden, "You do not own this restaurant")
		return
	}

	now := time.Now()
	cancelRes, err := db.BookingsCollection.UpdateMany(ctx,
		bson.M{
			"restaurantId": id,
			"status":       bson.M{"$in": []string{models.StatusPending, models.StatusConfirmed}},
		},
		bson.M{"$set": bson.M{
			"status":       models.StatusCancelled,
			"cancelReason": lifecycle.OwnerDeleteReason,
			"cancelledAt":  now,
			"updatedAt":    now,
		}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to cancel bookings")
		return
	}

	if _, err := db.RestaurantsCollection.DeleteOne(ctx, bson.M{"restaurantid": id}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete restaurant")
		return
	}

	invalidateListCache()
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":           "Restaurant deleted",
		"cancelledBookings": cancelRes.ModifiedCount,
	})
}
