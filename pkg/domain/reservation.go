package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationWaitingList ReservationStatus = "waiting_list"
	ReservationConfirmed   ReservationStatus = "confirmed"
	ReservationCancelled   ReservationStatus = "cancelled"
	ReservationAttended    ReservationStatus = "attended"
	ReservationNoShow      ReservationStatus = "no_show"
)

// Label returns the display name for a reservation status.
func (s ReservationStatus) Label() string {
	switch s {
	case ReservationWaitingList:
		return "Llista d'espera"
	case ReservationConfirmed:
		return "Confirmada"
	case ReservationCancelled:
		return "Cancel·lada"
	case ReservationAttended:
		return "Assistida"
	case ReservationNoShow:
		return "No presentat"
	default:
		return string(s)
	}
}

// ReservationRef is the minimal reservation shape embedded in session
// and pack payloads.
type ReservationRef struct {
	ID     uuid.UUID         `json:"id"`
	Status ReservationStatus `json:"status"`
	User   *ReservationUser  `json:"user,omitempty"`
}

// ReservationUser identifies the holder of a reservation in rosters.
type ReservationUser struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Surname string    `json:"surname"`
}

// Schedule is the day and time range of a reserved session.
type Schedule struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Reservation is a user's claim on a session, linked to at most one of
// a pack or a subscription.
type Reservation struct {
	ID        uuid.UUID         `json:"id"`
	Session   ReservedSession   `json:"session"`
	User      ReservationUser   `json:"user"`
	Status    ReservationStatus `json:"status"`
	Product   *ProductRef       `json:"product"`
	PackID    *uuid.UUID        `json:"packId"`
	SubID     *uuid.UUID        `json:"subscriptionId"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt *time.Time        `json:"updatedAt"`
}

// ReservedSession is the session shape embedded in a reservation.
type ReservedSession struct {
	ID       uuid.UUID    `json:"id"`
	Type     *SessionType `json:"type"`
	Schedule *Schedule    `json:"schedule"`
}

// ReservationSummary is a reservation as listed in the aggregate
// user-information view.
type ReservationSummary struct {
	ID              uuid.UUID         `json:"id"`
	Status          ReservationStatus `json:"status"`
	SessionType     *SessionType      `json:"sessionType"`
	SessionSchedule *Schedule         `json:"sessionSchedule"`
}

// CanMakeReservation is the authoritative eligibility verdict from the
// backend. The client-side check (Eligibility) only picks which
// entitlement to spend; this decides whether booking is allowed at all.
type CanMakeReservation struct {
	CanMakeReservation   bool        `json:"canMakeReservation"`
	IsRoomAtFullCapacity bool        `json:"isRoomAtFullCapacity"`
	Reason               string      `json:"reasonCannotMakeReservation,omitempty"`
	Product              *ProductRef `json:"product"`
	WaitingListAmount    int         `json:"waitingListAmount,omitempty"`
}

// AttendanceResult is the backend acknowledgement of a bulk attendance
// submission.
type AttendanceResult struct {
	SessionID            uuid.UUID `json:"sessionId"`
	AttendedReservations int       `json:"attendedReservations"`
	NoShowReservations   int       `json:"noShowReservations"`
}
