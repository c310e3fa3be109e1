package bookings

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"restran/db"
	"restran/globals"
	"restran/lifecycle"
	"restran/models"
	"restran/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCancelReason is recorded when a client cancels without giving one.
const DefaultCancelReason = "No reason provided"

// Sweeper expires unconfirmed bookings in the background. main wires its Run
// loop; list handlers also trigger it so a stale PENDING row never reaches a
// response even right after startup.
var Sweeper = func() *lifecycle.Sweeper {
	s := lifecycle.NewSweeper(db.BookingsCollection, time.Minute)
	s.Notify = BroadcastBooking
	return s
}()

func sweepNow(ctx context.Context) {
	if _, err := Sweeper.SweepOnce(ctx, time.Now()); err != nil {
		log.Printf("Booking sweep failed: %v", err)
	}
}

func CreateBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}
	userEmail, _ := r.Context().Value(globals.EmailKey).(string)

	var input models.Booking
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if input.RestaurantID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "restaurantId is required")
		return
	}
	if _, ok := lifecycle.ParseDate(input.Date); !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	if input.Guests < 1 {
		utils.RespondWithError(w, http.StatusBadRequest, "At least one guest is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var restaurant models.Restaurant
	err := db.RestaurantsCollection.FindOne(ctx, bson.M{"restaurantid": input.RestaurantID}).Decode(&restaurant)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Restaurant not found")
		} else {
			utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !utils.Contains(restaurant.Slots, input.Time) {
		utils.RespondWithError(w, http.StatusBadRequest, "Requested time is not an offered slot")
		return
	}
	if restaurant.Capacity > 0 && input.Guests > restaurant.Capacity {
		utils.RespondWithError(w, http.StatusBadRequest, "Party size exceeds restaurant capacity")
		return
	}

	now := time.Now()
	booking := models.Booking{
		ID:              "bkg-" + utils.GetUUID(),
		RestaurantID:    restaurant.RestaurantID,
		RestaurantName:  restaurant.Name,
		OwnerID:         restaurant.OwnerID,
		UserID:          userID,
		UserEmail:       userEmail,
		Date:            input.Date,
		Time:            input.Time,
		Guests:          input.Guests,
		SpecialRequests: strings.TrimSpace(input.SpecialRequests),
		Status:          models.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := db.BookingsCollection.InsertOne(ctx, booking); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create booking")
		return
	}

	BroadcastBooking(booking)
	utils.RespondWithJSON(w, http.StatusCreated, booking)
}

// listBookings applies the shared read pipeline: expire stale PENDING rows,
// hide aged-out cancellations, filter by category and overlay the derived
// display status, newest first.
func listBookings(ctx context.Context, filter bson.M, category string) ([]models.Booking, error) {
	sweepNow(ctx)

	bookings, err := utils.FindAndDecode[models.Booking](ctx, db.BookingsCollection, filter)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	bookings = lifecycle.FilterVisible(bookings, now)
	bookings = lifecycle.FilterByCategory(bookings, category, now)
	for i := range bookings {
		bookings[i].DisplayStatus = lifecycle.DeriveDisplayStatus(bookings[i], now)
	}
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
	return bookings, nil
}

func GetMyBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	bookings, err := listBookings(ctx, bson.M{"userId": userID}, r.URL.Query().Get("category"))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch bookings")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, bookings)
}

func GetOwnerBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ownerID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	filter := bson.M{"ownerId": ownerID}
	if restaurantID := r.URL.Query().Get("restaurantId"); restaurantID != "" {
		filter["restaurantId"] = restaurantID
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	bookings, err := listBookings(ctx, filter, r.URL.Query().Get("category"))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch bookings")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, bookings)
}

func GetBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("bookingid")

	userID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := db.BookingsCollection.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Booking not found")
		} else {
			utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if booking.UserID != userID && booking.OwnerID != userID {
		utils.RespondWithError(w, http.StatusForbidden, "Not your booking")
		return
	}

	booking.DisplayStatus = lifecycle.DeriveDisplayStatus(booking, time.Now())
	utils.RespondWithJSON(w, http.StatusOK, booking)
}

// UpdateBookingStatus lets the owning restaurant confirm or cancel a booking.
// The persisted status only ever moves along the allowed transitions; anything
// else is rejected with 409.
func UpdateBookingStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("bookingid")

	ownerID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	var input struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if input.Status != models.StatusConfirmed && input.Status != models.StatusCancelled {
		utils.RespondWithError(w, http.StatusBadRequest, "status must be CONFIRMED or CANCELLED")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var booking models.Booking
	err := db.BookingsCollection.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Booking not found")
		} else {
			utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if booking.OwnerID != ownerID {
		utils.RespondWithError(w, http.StatusForbidden, "Not your booking")
		return
	}
	if !lifecycle.CanTransition(booking.Status, input.Status) {
		utils.RespondWithError(w, http.StatusConflict, "Cannot move booking from "+booking.Status+" to "+input.Status)
		return
	}

	now := time.Now()
	set := bson.M{"status": input.Status, "updatedAt": now}
	if input.Status == models.StatusCancelled {
		reason := strings.TrimSpace(input.Reason)
		if reason == "" {
			reason = "Cancelled by restaurant"
		}
		set["cancelReason"] = reason
		set["cancelledAt"] = now
	}

	// Filter on the observed status so a concurrent sweep or cancel cannot
	// be overwritten.
	var updated models.Booking
	err = db.BookingsCollection.FindOneAndUpdate(ctx,
		bson.M{"id": id, "status": booking.Status},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusConflict, "Booking changed concurrently, retry")
		} else {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update booking")
		}
		return
	}

	BroadcastBooking(updated)
	utils.RespondWithJSON(w, http.StatusOK, updated)
}

// CancelBooking lets the booking's client cancel it while it is still live.
func CancelBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("bookingid")

	userID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	var input struct {
		Reason string `json:"reason"`
	}
	// An empty body is fine; cancellation needs no payload.
	_ = json.NewDecoder(r.Body).Decode(&input)
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		reason = DefaultCancelReason
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	now := time.Now()
	var updated models.Booking
	err := db.BookingsCollection.FindOneAndUpdate(ctx,
		bson.M{
			"id":     id,
			"userId": userID,
			"status": bson.M{"$in": []string{models.StatusPending, models.StatusConfirmed}},
		},
		bson.M{"$set": bson.M{
			"status":       models.StatusCancelled,
			"cancelReason": reason,
			"cancelledAt":  now,
			"updatedAt":    now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusConflict, "Booking not found, not yours, or already settled")
		} else {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to cancel booking")
		}
		return
	}

	BroadcastBooking(updated)
	utils.RespondWithJSON(w, http.StatusOK, updated)
}
