package bookings

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"restran/db"
	"restran/globals"
	"restran/lifecycle"
	"restran/models"
	"restran/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ReceiptQRPayload returns bookingID|restaurantID|timestamp|signature so the
// restaurant can verify a printed receipt at the door without a lookup.
func ReceiptQRPayload(bookingID, restaurantID string, issuedAt time.Time) string {
	data := fmt.Sprintf("%s|%s|%d", bookingID, restaurantID, issuedAt.Unix())

	h := hmac.New(sha256.New, globals.JwtSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))

	return fmt.Sprintf("%s|%s", data, sig)
}

// VerifyReceiptQRPayload checks the signature on a scanned payload.
func VerifyReceiptQRPayload(payload string) bool {
	idx := bytes.LastIndexByte([]byte(payload), '|')
	if idx < 0 {
		return false
	}
	data, sig := payload[:idx], payload[idx+1:]

	h := hmac.New(sha256.New, globals.JwtSecret)
	h.Write([]byte(data))
	expected := base64.StdEncoding.EncodeToString(h.Sum(nil))

	return hmac.Equal([]byte(sig), []byte(expected))
}

// DownloadReceipt renders a confirmed booking as a PDF with a signed QR code.
func DownloadReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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
	if booking.Status != models.StatusConfirmed {
		utils.RespondWithError(w, http.StatusConflict, "Receipts are only available for confirmed bookings")
		return
	}

	qrPNG, err := qrcode.Encode(ReceiptQRPayload(booking.ID, booking.RestaurantID, time.Now()), qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	displayStatus := lifecycle.DeriveDisplayStatus(booking, time.Now())

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Booking Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Restaurant: %s", booking.RestaurantName))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Booking ID: %s", booking.ID))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Date: %s", booking.Date))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Time: %s", booking.Time))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Guests: %d", booking.Guests))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Status: %s", displayStatus))
	pdf.Ln(8)
	if booking.SpecialRequests != "" {
		pdf.Cell(0, 10, fmt.Sprintf("Requests: %s", booking.SpecialRequests))
		pdf.Ln(8)
	}
	pdf.Ln(4)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+booking.ID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
