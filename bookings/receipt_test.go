package bookings

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReceiptQRPayloadRoundTrip(t *testing.T) {
	issued := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	payload := ReceiptQRPayload("bkg0000000001", "rst0000000001", issued)

	parts := strings.Split(payload, "|")
	assert.Len(t, parts, 4)
	assert.Equal(t, "bkg0000000001", parts[0])
	assert.Equal(t, "rst0000000001", parts[1])

	assert.True(t, VerifyReceiptQRPayload(payload))
}

func TestVerifyReceiptQRPayloadRejectsTampering(t *testing.T) {
	payload := ReceiptQRPayload("bkg0000000001", "rst0000000001", time.Now())

	tampered := strings.Replace(payload, "bkg0000000001", "bkg0000000002", 1)
	assert.False(t, VerifyReceiptQRPayload(tampered))

	assert.False(t, VerifyReceiptQRPayload("no-signature-here"))
	assert.False(t, VerifyReceiptQRPayload(""))
}
