package restaurants

import (
	"context"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"restran/db"
	"restran/globals"
	"restran/models"
	"restran/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var bannerDir = "./static/restaurantpic"

const thumbWidth = 300

// UploadBanner accepts a multipart "banner" image, stores a normalized JPEG
// plus a thumbnail, and records the banner path on the restaurant.
func UploadBanner(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	restaurantID := ps.ByName("restaurantid")

	ownerID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var restaurant models.Restaurant
	err := db.RestaurantsCollection.FindOne(ctx, bson.M{"restaurantid": restaurantID}).Decode(&restaurant)
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

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Unable to parse form")
		return
	}

	file, header, err := r.FormFile("banner")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "No banner file uploaded")
		return
	}
	defer file.Close()

	if !utils.ValidateImageFileType(w, header) {
		return
	}

	img, err := imaging.Decode(file, imaging.AutoOrientation(true))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Unreadable image file")
		return
	}

	if err := utils.EnsureDir(bannerDir); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Storage unavailable")
		return
	}

	bannerPath := filepath.Join(bannerDir, restaurantID+".jpg")
	if err := imaging.Save(img, bannerPath, imaging.JPEGQuality(85)); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save banner")
		return
	}

	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	thumbPath := filepath.Join(bannerDir, restaurantID+"_thumb.jpg")
	if err := imaging.Save(thumb, thumbPath, imaging.JPEGQuality(80)); err != nil {
		log.Printf("Thumbnail save failed for %s: %v", restaurantID, err)
	}

	updateFields := bson.M{
		"banner":    "/" + filepath.ToSlash(filepath.Join("static", "restaurantpic", restaurantID+".jpg")),
		"updatedAt": time.Now(),
	}
	if _, err := db.RestaurantsCollection.UpdateOne(ctx, bson.M{"restaurantid": restaurantID}, bson.M{"$set": updateFields}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update restaurant")
		return
	}

	invalidateListCache()
	utils.RespondWithJSON(w, http.StatusOK, updateFields)
}
