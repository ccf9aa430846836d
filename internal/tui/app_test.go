package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/projectsoma/soma/pkg/domain"
)

func newTestApp(user *domain.User) App {
	a := NewApp(nil, user, "ca")
	a.width = 80
	a.height = 30
	a.timetable.loading = false
	a.products.loading = false
	a.me.loading = false
	return a
}

func TestAppTabSwitching(t *testing.T) {
	tests := []struct {
		key      string
		wantView view
	}{
		{"2", viewProducts},
		{"3", viewMe},
		{"1", viewTimetable},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			app := newTestApp(testClientUser())
			model, _ := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(tc.key)})
			a := model.(App)
			if a.view != tc.wantView {
				t.Errorf("after key %q: expected view=%d, got %d", tc.key, tc.wantView, a.view)
			}
		})
	}
}

func TestAppAttendanceTabStaffOnly(t *testing.T) {
	client := newTestApp(testClientUser())
	model, _ := client.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("4")})
	if a := model.(App); a.view == viewAttendance {
		t.Error("expected attendance tab blocked for clients")
	}
	if strings.Contains(client.View(), "Assistència") {
		t.Error("expected attendance tab hidden from the tab bar for clients")
	}

	staff := newTestApp(testStaffUser())
	model, _ = staff.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("4")})
	if a := model.(App); a.view != viewAttendance {
		t.Error("expected attendance tab for staff")
	}
	if !strings.Contains(staff.View(), "Assistència") {
		t.Error("expected attendance tab in the tab bar for staff")
	}
}

func TestAppGlobalQuit(t *testing.T) {
	a := newTestApp(testClientUser())
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command on 'q', got nil")
	}
}

func TestAppQuitSuppressedInOverlay(t *testing.T) {
	a := newTestApp(testClientUser())
	a.timetable = a.timetable.withSessions(makeDailySession(domain.SessionBarre, "09:00", "10:00"))
	a.timetable.detail = true

	model, _ := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	got := model.(App)
	if got.timetable.detail {
		t.Error("expected 'q' to close the detail overlay instead of quitting")
	}
}

func TestAppOnboardingGate(t *testing.T) {
	u := &domain.User{ID: uuid.New(), Type: domain.UserClient, Email: "nou@example.com"}
	a := NewApp(nil, u, "ca")
	a.width = 80
	a.height = 30

	if a.view != viewOnboarding {
		t.Fatal("expected onboarding view for a user without completed onboarding")
	}
	if !strings.Contains(a.View(), "Benvingut") {
		t.Errorf("expected wizard greeting, got:\n%s", a.View())
	}

	// Tab keys must not escape the wizard.
	model, _ := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	if got := model.(App); got.view != viewOnboarding {
		t.Error("expected tab switching disabled during onboarding")
	}
}

func TestAppOnboardingCompletionSwitchesToTimetable(t *testing.T) {
	u := &domain.User{ID: uuid.New(), Type: domain.UserClient}
	a := NewApp(nil, u, "ca")
	a.width = 80
	a.height = 30

	done := testClientUser()
	model, cmd := a.Update(onboardingDoneMsg{user: done})
	got := model.(App)
	if got.view != viewTimetable {
		t.Errorf("expected timetable after onboarding, got view=%d", got.view)
	}
	if got.user != done {
		t.Error("expected the refreshed user record on the root model")
	}
	if cmd == nil {
		t.Error("expected timetable load command after onboarding")
	}
}

func TestAppOnboardingFailureStaysOnWizard(t *testing.T) {
	u := &domain.User{ID: uuid.New(), Type: domain.UserClient}
	a := NewApp(nil, u, "ca")

	model, _ := a.Update(onboardingDoneMsg{err: errTest})
	got := model.(App)
	if got.view != viewOnboarding {
		t.Error("expected wizard to stay open after a failed submit")
	}
	if !strings.Contains(got.View(), "boom") {
		t.Errorf("expected submit error surfaced in the wizard, got:\n%s", got.View())
	}
}

func TestAppTabSwitchingDisabledWhileEditing(t *testing.T) {
	a := newTestApp(testStaffUser())
	f := newSessionForm(nil, "2026-03-02", nil)
	a.timetable.form = &f

	model, _ := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	got := model.(App)
	if got.view != viewTimetable {
		t.Error("expected tab switch suppressed while the session form is open")
	}
	// The digit lands in the focused field instead.
	if got.timetable.form == nil {
		t.Fatal("expected form still open")
	}
}

func TestAppViewRendersTabBarAndHelp(t *testing.T) {
	a := newTestApp(testClientUser())
	model, _ := a.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	a = model.(App)

	view := a.View()
	for _, want := range []string{"soma", "Horari", "Productes", "Perfil", "sortir"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in app chrome, got:\n%s", want, view)
		}
	}
}
