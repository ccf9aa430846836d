package tui

import (
	"testing"

	"github.com/projectsoma/soma/pkg/domain"
)

func TestSessionTypeStyleKnownTypes(t *testing.T) {
	for _, st := range domain.SessionTypes {
		style := SessionTypeStyle(st)
		if style.GetForeground() != sessionColors[st] {
			t.Errorf("foreground for %q does not match its palette color", st)
		}
		if !style.GetBold() {
			t.Errorf("expected bold style for %q", st)
		}
	}
}

func TestSessionTypeStyleUnknownTypeFallsBack(t *testing.T) {
	style := SessionTypeStyle(domain.SessionType("aqua"))
	if !style.GetBold() {
		t.Error("expected bold fallback style for unknown type")
	}
}

func TestReservationStatusStyleCoversStatuses(t *testing.T) {
	statuses := []domain.ReservationStatus{
		domain.ReservationWaitingList,
		domain.ReservationConfirmed,
		domain.ReservationCancelled,
		domain.ReservationAttended,
		domain.ReservationNoShow,
	}
	for _, s := range statuses {
		if _, ok := reservationColors[s]; !ok {
			t.Errorf("no color defined for status %q", s)
		}
	}
}

func TestHelpEntryContainsKeyAndLabel(t *testing.T) {
	out := helpEntry("j/k", "navegar")
	if out == "" {
		t.Fatal("empty help entry")
	}
}
