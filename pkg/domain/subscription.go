package domain

import (
	"time"

	"github.com/google/uuid"
)

// WeekReservation is a reservation made this week against a subscription.
type WeekReservation struct {
	ID          uuid.UUID         `json:"id"`
	Status      ReservationStatus `json:"status"`
	SessionType *SessionType      `json:"sessionType"`
}

// SubscriptionProduct is the product shape embedded in a subscription,
// including this week's usage.
type SubscriptionProduct struct {
	ID                      uuid.UUID         `json:"id"`
	Name                    string            `json:"name"`
	Recurring               *Recurring        `json:"recurring"`
	CurrentWeekReservations []WeekReservation `json:"currentWeekReservations"`
}

// Subscription is an active instantiation of a subscription product for
// a user. Validity and remaining days are computed server-side; the
// client only mirrors them.
type Subscription struct {
	ID              uuid.UUID           `json:"id"`
	Product         SubscriptionProduct `json:"product"`
	FromDate        string              `json:"fromDate"`
	ToDate          string              `json:"toDate"`
	CancelledAt     *time.Time          `json:"cancelledAt"`
	CancelledReason string              `json:"cancelledReason,omitempty"`
	IsValid         bool                `json:"isValid"`
	RemainingDays   int                 `json:"remainingDays"`
}

// WeekCount returns how many reservations of the given class type were
// made this week under the subscription.
func (s *Subscription) WeekCount(t SessionType) int {
	if s == nil {
		return 0
	}
	n := 0
	for _, r := range s.Product.CurrentWeekReservations {
		if r.SessionType != nil && *r.SessionType == t {
			n++
		}
	}
	return n
}
