package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionType identifies the kind of class a session is.
type SessionType string

const (
	SessionReformer        SessionType = "reformer"
	SessionPilatesMat      SessionType = "pilates_mat"
	SessionBarre           SessionType = "barre"
	SessionFitMix          SessionType = "fit_mix"
	SessionPilatesMatElder SessionType = "pilates_mat_plus_65"
	SessionFitMixElder     SessionType = "fit_mix_plus_65"
)

// SessionTypes lists every class type in timetable order.
var SessionTypes = []SessionType{
	SessionReformer,
	SessionPilatesMat,
	SessionBarre,
	SessionFitMix,
	SessionPilatesMatElder,
	SessionFitMixElder,
}

// IsReformer reports whether the class type belongs to the reformer
// category; every other type counts as "other" for entitlement purposes.
func (t SessionType) IsReformer() bool {
	return t == SessionReformer
}

// Label returns the display name for a class type.
func (t SessionType) Label() string {
	switch t {
	case SessionReformer:
		return "Reformer"
	case SessionPilatesMat:
		return "Pilates Mat"
	case SessionBarre:
		return "Barre"
	case SessionFitMix:
		return "Fit"
	case SessionPilatesMatElder:
		return "Pilates Mat +65"
	case SessionFitMixElder:
		return "Fit +65"
	default:
		return string(t)
	}
}

// SessionStatus is the publication state of a session.
type SessionStatus string

const (
	SessionDraft     SessionStatus = "draft"
	SessionPublished SessionStatus = "published"
	SessionCancelled SessionStatus = "cancelled"
	SessionCompleted SessionStatus = "completed"
)

// Session is a scheduled class occurrence as managed by staff.
type Session struct {
	ID           uuid.UUID     `json:"id"`
	Type         SessionType   `json:"type"`
	Status       SessionStatus `json:"status"`
	Day          string        `json:"day"` // YYYY-MM-DD
	StartHour    string        `json:"startHour"`
	EndHour      string        `json:"endHour"`
	RoomID       *uuid.UUID    `json:"roomId"`
	TeacherID    *uuid.UUID    `json:"teacherId"`
	Observations string        `json:"observations,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    *time.Time    `json:"updatedAt"`
}

// Room is the physical space a session takes place in.
type Room struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Capacity int       `json:"capacity"`
}

// Teacher is the staff member running a session.
type Teacher struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Surname string    `json:"surname"`
}

// DailySession is a session as returned by the daily timetable endpoint,
// expanded with room, teacher and reservation state.
type DailySession struct {
	ID            uuid.UUID        `json:"id"`
	Type          SessionType      `json:"type"`
	Status        SessionStatus    `json:"status"`
	Day           string           `json:"day"`
	StartHour     string           `json:"startHour"`
	EndHour       string           `json:"endHour"`
	Room          *Room            `json:"room"`
	Teacher       *Teacher         `json:"teacher"`
	Observations  string           `json:"observations,omitempty"`
	PublicationAt time.Time        `json:"publicationAt"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     *time.Time       `json:"updatedAt"`
	Reservations  []ReservationRef `json:"reservations"`
}

// ActiveReservations counts reservations that hold a seat
// (confirmed or attended).
func (s DailySession) ActiveReservations() int {
	n := 0
	for _, r := range s.Reservations {
		if r.Status == ReservationConfirmed || r.Status == ReservationAttended {
			n++
		}
	}
	return n
}

// IsFull reports whether the session's room is at capacity. Sessions
// without a room are never full.
func (s DailySession) IsFull() bool {
	if s.Room == nil || s.Room.Capacity <= 0 {
		return false
	}
	return s.ActiveReservations() >= s.Room.Capacity
}
