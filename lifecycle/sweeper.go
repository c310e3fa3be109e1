package lifecycle

import (
	"context"
	"log"
	"time"

	"restran/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sweeper auto-cancels pending bookings whose reservation window has elapsed.
// Each expired booking gets one independent partial update; a failed write is
// logged and skipped, never retried or rolled back. Re-running over the same
// snapshot is harmless because cancelled bookings are filtered out up front.
type Sweeper struct {
	col      *mongo.Collection
	interval time.Duration

	// Notify, when set, is called after each successful cancellation so open
	// client and owner views can resync.
	Notify func(b models.Booking)
}

func NewSweeper(col *mongo.Collection, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{col: col, interval: interval}
}

// Run sweeps on a ticker until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx, time.Now()); err != nil {
				log.Printf("Expiry sweep failed: %v", err)
			}
		}
	}
}

// SweepOnce scans the pending bookings and applies the expiry actions for the
// given instant. It returns how many bookings were cancelled.
func (s *Sweeper) SweepOnce(ctx context.Context, now time.Time) (int, error) {
	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cur, err := s.col.Find(opCtx, bson.M{"status": models.StatusPending})
	if err != nil {
		return 0, err
	}
	var pending []models.Booking
	if err := cur.All(opCtx, &pending); err != nil {
		return 0, err
	}

	cancelled := 0
	for _, action := range ExpiredPending(pending, now) {
		// Match on PENDING again so a concurrent confirm wins the race.
		res := s.col.FindOneAndUpdate(opCtx,
			bson.M{"id": action.BookingID, "status": models.StatusPending},
			bson.M{"$set": bson.M{
				"status":       models.StatusCancelled,
				"cancelReason": action.Reason,
				"cancelledAt":  now,
				"updatedAt":    now,
			}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		)
		var updated models.Booking
		if err := res.Decode(&updated); err != nil {
			if err != mongo.ErrNoDocuments {
				log.Printf("Auto-cancel write failed for booking %s: %v", action.BookingID, err)
			}
			continue
		}
		cancelled++
		if s.Notify != nil {
			s.Notify(updated)
		}
	}

	if cancelled > 0 {
		log.Printf("Expiry sweep cancelled %d booking(s)", cancelled)
	}
	return cancelled, nil
}
