package geocode

import (
	"net/http"
	"strconv"

	"restran/utils"

	"github.com/julienschmidt/httprouter"
)

// ReverseHandler resolves ?lat=&lng= to a display address. Owners use it to
// prefill the address field from the device location.
func ReverseHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid lat/lng")
		return
	}

	name, err := Reverse(r.Context(), lat, lng)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadGateway, "Reverse geocoding failed")
		return
	}
	if name == "" {
		utils.RespondWithError(w, http.StatusNotFound, "No address found for location")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"displayName": name,
		"latitude":    lat,
		"longitude":   lng,
	})
}
