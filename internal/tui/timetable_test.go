package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/projectsoma/soma/pkg/domain"
)

func testClientUser() *domain.User {
	now := time.Now()
	return &domain.User{
		ID:                    uuid.New(),
		Type:                  domain.UserClient,
		Name:                  "Marta",
		Surname:               "Puig",
		Email:                 "marta@example.com",
		OnboardingCompletedAt: &now,
	}
}

func testStaffUser() *domain.User {
	u := testClientUser()
	u.Type = domain.UserAdmin
	return u
}

func newTestTimetable(user *domain.User) timetableModel {
	m := newTimetableModel(nil, user)
	m.width = 80
	m.height = 24
	m.loading = false
	return m
}

func makeDailySession(t domain.SessionType, start, end string) domain.DailySession {
	return domain.DailySession{
		ID:        uuid.New(),
		Type:      t,
		Status:    domain.SessionPublished,
		Day:       time.Now().Format(dayFormat),
		StartHour: start,
		EndHour:   end,
		Room:      &domain.Room{ID: uuid.New(), Name: "Sala 1", Capacity: 8},
		Teacher:   &domain.Teacher{ID: uuid.New(), Name: "Anna", Surname: "Roca"},
	}
}

func (m timetableModel) withSessions(sessions ...domain.DailySession) timetableModel {
	out, _ := m.Update(timetableLoadedMsg{day: m.date.Format(dayFormat), sessions: sessions})
	return out
}

func TestTimetableRendersSessionRows(t *testing.T) {
	m := newTestTimetable(testClientUser()).withSessions(
		makeDailySession(domain.SessionReformer, "09:00", "10:00"),
		makeDailySession(domain.SessionBarre, "10:00", "11:00"),
	)

	view := m.View()
	if !strings.Contains(view, "Reformer") {
		t.Errorf("expected 'Reformer' in view, got:\n%s", view)
	}
	if !strings.Contains(view, "Barre") {
		t.Errorf("expected 'Barre' in view, got:\n%s", view)
	}
	if !strings.Contains(view, "09:00") {
		t.Errorf("expected start hour in view, got:\n%s", view)
	}
	if !strings.Contains(view, "Sala 1") {
		t.Errorf("expected room name in view, got:\n%s", view)
	}
}

func TestTimetableEmptyDay(t *testing.T) {
	m := newTestTimetable(testClientUser()).withSessions()
	if !strings.Contains(m.View(), "cap sessió") {
		t.Errorf("expected empty-day message, got:\n%s", m.View())
	}
}

func TestTimetableCursorStaysInBounds(t *testing.T) {
	m := newTestTimetable(testClientUser()).withSessions(
		makeDailySession(domain.SessionReformer, "09:00", "10:00"),
		makeDailySession(domain.SessionBarre, "10:00", "11:00"),
	)

	for i := 0; i < 5; i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	}
	if m.cursor != 1 {
		t.Errorf("cursor = %d after overshooting down, want 1", m.cursor)
	}
	for i := 0; i < 5; i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d after overshooting up, want 0", m.cursor)
	}
}

func TestTimetableDayNavigationReloads(t *testing.T) {
	m := newTestTimetable(testClientUser()).withSessions()
	before := m.date

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	if !m.date.After(before) {
		t.Errorf("expected date to advance, got %v -> %v", before, m.date)
	}
	if !m.loading {
		t.Error("expected loading=true after day change")
	}
	if cmd == nil {
		t.Error("expected reload command after day change")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")})
	if !m.date.Before(before) {
		t.Errorf("expected date before %v, got %v", before, m.date)
	}
}

func TestTimetableIgnoresStaleDayResponse(t *testing.T) {
	m := newTestTimetable(testClientUser())
	stale := m.date.AddDate(0, 0, -1).Format(dayFormat)

	m, _ = m.Update(timetableLoadedMsg{
		day:      stale,
		sessions: []domain.DailySession{makeDailySession(domain.SessionBarre, "10:00", "11:00")},
	})
	if len(m.sessions) != 0 {
		t.Errorf("expected stale response to be dropped, got %d sessions", len(m.sessions))
	}
}

func TestTimetableTypeFilterCycles(t *testing.T) {
	m := newTestTimetable(testClientUser())
	if m.typeFilter != "" {
		t.Fatalf("expected no initial filter, got %q", m.typeFilter)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	if m.typeFilter != domain.SessionTypes[0] {
		t.Errorf("filter = %q after first cycle, want %q", m.typeFilter, domain.SessionTypes[0])
	}

	// Cycling through every type wraps back to "all".
	for i := 1; i < len(domain.SessionTypes); i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	if m.typeFilter != "" {
		t.Errorf("filter = %q after full cycle, want empty", m.typeFilter)
	}
}

func TestTimetableEnterOpensDetail(t *testing.T) {
	m := newTestTimetable(testClientUser()).withSessions(
		makeDailySession(domain.SessionReformer, "09:00", "10:00"),
	)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.detail {
		t.Fatal("expected detail=true after enter")
	}
	if !m.checking {
		t.Error("expected checking=true while the verdict loads")
	}
	if cmd == nil {
		t.Error("expected detail load command")
	}
}

func TestTimetableDetailShowsReserveWhenAllowed(t *testing.T) {
	session := makeDailySession(domain.SessionBarre, "09:00", "10:00")
	m := newTestTimetable(testClientUser()).withSessions(session)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	sub := &domain.Subscription{
		ID:      uuid.New(),
		IsValid: true,
		Product: domain.SubscriptionProduct{
			Name:      "Mensual 2",
			Recurring: &domain.Recurring{Type: domain.ProductSubscription, AmountPerWeek: 2},
		},
	}
	m, _ = m.Update(sessionDetailMsg{
		session: &session,
		verdict: &domain.CanMakeReservation{CanMakeReservation: true},
		elig:    domain.Eligibility{Kind: domain.EligibilitySubscription, Subscription: sub},
	})

	view := m.View()
	if !strings.Contains(view, "Reservar") {
		t.Errorf("expected reserve hint in detail view, got:\n%s", view)
	}
	if !strings.Contains(view, "Mensual 2") {
		t.Errorf("expected subscription name in entitlement line, got:\n%s", view)
	}
}

func TestTimetableDetailShowsReasonWhenBlocked(t *testing.T) {
	session := makeDailySession(domain.SessionReformer, "09:00", "10:00")
	m := newTestTimetable(testClientUser()).withSessions(session)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = m.Update(sessionDetailMsg{
		session: &session,
		verdict: &domain.CanMakeReservation{
			CanMakeReservation: false,
			Reason:             "Ja tens una reserva per aquesta sessió",
		},
	})

	view := m.View()
	if !strings.Contains(view, "Ja tens una reserva") {
		t.Errorf("expected backend reason in detail view, got:\n%s", view)
	}

	// The reserve key must be inert when the backend says no.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.confirmOpen {
		t.Error("expected confirm dialog to stay closed when booking is blocked")
	}
}

func TestTimetableDetailWaitingListWhenFull(t *testing.T) {
	session := makeDailySession(domain.SessionBarre, "09:00", "10:00")
	m := newTestTimetable(testClientUser()).withSessions(session)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = m.Update(sessionDetailMsg{
		session: &session,
		verdict: &domain.CanMakeReservation{CanMakeReservation: true, IsRoomAtFullCapacity: true},
		elig: domain.Eligibility{
			Kind: domain.EligibilityPack,
			Pack: &domain.Pack{RemainingSessions: 3, Product: domain.PackProduct{Name: "Pack 10"}},
		},
	})

	view := m.View()
	if !strings.Contains(view, "llista d'espera") {
		t.Errorf("expected waiting-list hint for a full room, got:\n%s", view)
	}
}

func TestTimetableReserveConfirmDialog(t *testing.T) {
	session := makeDailySession(domain.SessionReformer, "09:00", "10:00")
	m := newTestTimetable(testClientUser()).withSessions(session)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(sessionDetailMsg{
		session: &session,
		verdict: &domain.CanMakeReservation{CanMakeReservation: true},
		elig: domain.Eligibility{
			Kind: domain.EligibilityPack,
			Pack: &domain.Pack{ID: uuid.New(), RemainingSessions: 3},
		},
	})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if !m.confirmOpen {
		t.Fatal("expected confirm dialog after 'r'")
	}

	view := m.View()
	if !strings.Contains(view, "Vols fer una reserva per la classe de Reformer?") {
		t.Errorf("expected confirmation question, got:\n%s", view)
	}
	if !strings.Contains(view, "3 hores abans") {
		t.Errorf("expected cancellation notice, got:\n%s", view)
	}

	// Declining closes the dialog but keeps the detail open.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if m.confirmOpen {
		t.Error("expected confirm dialog closed after 'n'")
	}
	if !m.detail {
		t.Error("expected detail still open after declining")
	}
}

func TestTimetableReservationSuccessClosesDetailAndReloads(t *testing.T) {
	session := makeDailySession(domain.SessionReformer, "09:00", "10:00")
	m := newTestTimetable(testClientUser()).withSessions(session)
	m.detail = true
	m.confirmOpen = true
	m.reserving = true

	m, cmd := m.Update(reservationMadeMsg{
		reservation: &domain.Reservation{Status: domain.ReservationConfirmed},
	})
	if m.detail {
		t.Error("expected detail closed after a successful reservation")
	}
	if cmd == nil {
		t.Error("expected timetable reload after a successful reservation")
	}
	if !strings.Contains(m.View(), "Reserva creada") {
		t.Errorf("expected success status, got:\n%s", m.View())
	}
}

func TestTimetableWaitingListReservationStatus(t *testing.T) {
	m := newTestTimetable(testClientUser()).withSessions()
	m, _ = m.Update(reservationMadeMsg{
		reservation: &domain.Reservation{Status: domain.ReservationWaitingList},
	})
	if !strings.Contains(m.View(), "llista d'espera") {
		t.Errorf("expected waiting-list status message, got:\n%s", m.View())
	}
}

func TestTimetableStaffKeysGated(t *testing.T) {
	session := makeDailySession(domain.SessionBarre, "09:00", "10:00")

	// Clients cannot open the session form or delete.
	m := newTestTimetable(testClientUser()).withSessions(session)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if m.form != nil {
		t.Error("expected no form for a client user")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if m.confirmDelete {
		t.Error("expected no delete confirm for a client user")
	}

	// Staff can.
	s := newTestTimetable(testStaffUser()).withSessions(session)
	s, _ = s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if s.form == nil {
		t.Fatal("expected session form for staff after 'n'")
	}
	if !strings.Contains(s.View(), "Nova sessió") {
		t.Errorf("expected create form title, got:\n%s", s.View())
	}
}

func TestTimetableStaffEditPrefillsForm(t *testing.T) {
	session := makeDailySession(domain.SessionFitMix, "18:00", "19:00")
	m := newTestTimetable(testStaffUser()).withSessions(session)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	if m.form == nil {
		t.Fatal("expected form after 'e'")
	}
	if m.form.editID != session.ID {
		t.Error("expected form to target the selected session")
	}
	if m.form.start != "18:00" || m.form.end != "19:00" {
		t.Errorf("expected prefilled hours, got %q-%q", m.form.start, m.form.end)
	}
	if !strings.Contains(m.View(), "Editar sessió") {
		t.Errorf("expected edit form title, got:\n%s", m.View())
	}
}

func TestTimetableDeleteConfirmFlow(t *testing.T) {
	session := makeDailySession(domain.SessionBarre, "09:00", "10:00")
	m := newTestTimetable(testStaffUser()).withSessions(session)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if !m.confirmDelete {
		t.Fatal("expected delete confirm after 'd'")
	}
	if !strings.Contains(m.View(), "Eliminar aquesta sessió?") {
		t.Errorf("expected delete question, got:\n%s", m.View())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.confirmDelete {
		t.Error("expected delete confirm dismissed on esc")
	}
}

func TestTimetableCancelSessionFlow(t *testing.T) {
	session := makeDailySession(domain.SessionBarre, "09:00", "10:00")
	m := newTestTimetable(testStaffUser()).withSessions(session)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if !m.confirmCancel {
		t.Fatal("expected cancel confirm after 'c'")
	}
	if !strings.Contains(m.View(), "Cancel·lar aquesta sessió?") {
		t.Errorf("expected cancel question, got:\n%s", m.View())
	}

	m.confirmCancel = false
	m, cmd := m.Update(sessionCancelledMsg{})
	if cmd == nil {
		t.Error("expected timetable reload after session cancel")
	}
	if !strings.Contains(m.View(), "Sessió cancel·lada") {
		t.Errorf("expected cancel status, got:\n%s", m.View())
	}

	// Clients never get the key.
	c := newTestTimetable(testClientUser()).withSessions(session)
	c, _ = c.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if c.confirmCancel {
		t.Error("expected cancel key inert for clients")
	}
}

func TestSessionFormTypingAndValidation(t *testing.T) {
	f := newSessionForm(nil, "2026-03-02", nil)

	// Clear the day and try to save.
	f.day = ""
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if f.saving {
		t.Error("expected save blocked with empty day")
	}
	if !strings.Contains(f.View(), "obligatoris") {
		t.Errorf("expected validation message, got:\n%s", f.View())
	}

	// Tab to the day field and type.
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyTab})
	for _, r := range "2026-03-02" {
		f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if f.day != "2026-03-02" {
		t.Errorf("day = %q after typing, want 2026-03-02", f.day)
	}
}

func TestSessionFormTypeCycling(t *testing.T) {
	f := newSessionForm(nil, "2026-03-02", nil)
	if f.sessionType != domain.SessionTypes[0] {
		t.Fatalf("unexpected initial type %q", f.sessionType)
	}
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRight})
	if f.sessionType != domain.SessionTypes[1] {
		t.Errorf("type = %q after right, want %q", f.sessionType, domain.SessionTypes[1])
	}
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyLeft})
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if f.sessionType != domain.SessionTypes[len(domain.SessionTypes)-1] {
		t.Errorf("type = %q after wrapping left, want %q", f.sessionType, domain.SessionTypes[len(domain.SessionTypes)-1])
	}
}
