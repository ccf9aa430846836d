package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/projectsoma/soma/pkg/domain"
)

func newTestMe() meModel {
	m := newMeModel(nil, testClientUser())
	m.width = 80
	m.height = 30
	m.loading = false
	return m
}

func makeUserInfo() *domain.UserInformation {
	barre := domain.SessionBarre
	reformer := domain.SessionReformer
	return &domain.UserInformation{
		ID:      uuid.New(),
		Name:    "Marta",
		Surname: "Puig",
		Email:   "marta@example.com",
		Subscription: &domain.Subscription{
			ID:            uuid.New(),
			IsValid:       true,
			FromDate:      "2026-03-01",
			ToDate:        "2026-04-01",
			RemainingDays: 12,
			Product: domain.SubscriptionProduct{
				Name: "Mensual 2 classes",
				Recurring: &domain.Recurring{
					Type: domain.ProductSubscription, AmountPerWeek: 2,
				},
				CurrentWeekReservations: []domain.WeekReservation{
					{ID: uuid.New(), Status: domain.ReservationConfirmed, SessionType: &barre},
				},
			},
		},
		Packs: []domain.Pack{
			{ID: uuid.New(), RemainingSessions: 4, Product: domain.PackProduct{Name: "Pack 10 Reformer"}},
			{ID: uuid.New(), RemainingSessions: 0, Product: domain.PackProduct{Name: "Pack 5"}},
		},
		NextReservations: []domain.ReservationSummary{
			{
				ID:              uuid.New(),
				Status:          domain.ReservationConfirmed,
				SessionType:     &reformer,
				SessionSchedule: &domain.Schedule{Day: "2026-03-02", Start: "09:00", End: "10:00"},
			},
		},
		CompletedReservations: []domain.ReservationSummary{
			{ID: uuid.New(), Status: domain.ReservationAttended, SessionType: &barre},
		},
	}
}

func TestMeRendersProfileAndEntitlements(t *testing.T) {
	m := newTestMe()
	m, _ = m.Update(meLoadedMsg{info: makeUserInfo()})

	view := m.View()
	for _, want := range []string{
		"Marta Puig",
		"Mensual 2 classes",
		"12 dies restants",
		"aquesta setmana: 1/2",
		"Pack 10 Reformer",
		"4 restants",
		"exhaurit",
		"Confirmada",
		"Assistida",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in profile view, got:\n%s", want, view)
		}
	}
}

func TestMeNoEntitlements(t *testing.T) {
	m := newTestMe()
	info := makeUserInfo()
	info.Subscription = nil
	info.Packs = nil
	info.NextReservations = nil
	m, _ = m.Update(meLoadedMsg{info: info})

	view := m.View()
	if !strings.Contains(view, "cap subscripció activa") {
		t.Errorf("expected empty subscription card, got:\n%s", view)
	}
	if !strings.Contains(view, "cap pack") {
		t.Errorf("expected empty packs card, got:\n%s", view)
	}
	if !strings.Contains(view, "cap reserva") {
		t.Errorf("expected empty reservations list, got:\n%s", view)
	}
}

func TestMeCancelledSubscriptionState(t *testing.T) {
	m := newTestMe()
	info := makeUserInfo()
	now := time.Now()
	info.Subscription.CancelledAt = &now
	m, _ = m.Update(meLoadedMsg{info: info})

	if !strings.Contains(m.View(), "cancel·lada") {
		t.Errorf("expected cancelled state on the card, got:\n%s", m.View())
	}

	// With a cancelled subscription, 'c' must be inert and 'D' active.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if m.confirm != confirmNone {
		t.Error("expected cancel key inert on a cancelled subscription")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("D")})
	if m.confirm != confirmDeleteSubscription {
		t.Error("expected delete confirm for a cancelled subscription")
	}
}

func TestMeCancelReservationConfirm(t *testing.T) {
	m := newTestMe()
	m, _ = m.Update(meLoadedMsg{info: makeUserInfo()})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if m.confirm != confirmCancelReservation {
		t.Fatal("expected reservation cancel confirm after 'd'")
	}
	if !strings.Contains(m.View(), "Vols cancel·lar aquesta reserva?") {
		t.Errorf("expected confirm question, got:\n%s", m.View())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if m.confirm != confirmNone {
		t.Error("expected confirm dismissed after 'n'")
	}
}

func TestMeReservationCancelledReloads(t *testing.T) {
	m := newTestMe()
	m, _ = m.Update(meLoadedMsg{info: makeUserInfo()})
	m.confirm = confirmCancelReservation
	m.busy = true

	m, cmd := m.Update(reservationCancelledMsg{})
	if m.confirm != confirmNone {
		t.Error("expected confirm cleared")
	}
	if cmd == nil {
		t.Error("expected profile reload after cancellation")
	}
	if !strings.Contains(m.View(), "Reserva cancel·lada") {
		t.Errorf("expected cancellation status, got:\n%s", m.View())
	}
}

func TestMeSubscriptionActionStatuses(t *testing.T) {
	tests := []struct {
		action string
		want   string
	}{
		{"cancel", "Subscripció cancel·lada"},
		{"delete", "Subscripció eliminada"},
		{"pay", "Pagament iniciat"},
		{"change", "Producte de la subscripció canviat"},
	}
	for _, tc := range tests {
		t.Run(tc.action, func(t *testing.T) {
			m := newTestMe()
			m, _ = m.Update(meLoadedMsg{info: makeUserInfo()})
			m, _ = m.Update(subscriptionActionMsg{action: tc.action})
			if !strings.Contains(m.View(), tc.want) {
				t.Errorf("expected %q status, got:\n%s", tc.want, m.View())
			}
		})
	}
}

func TestMeChangeProductPicker(t *testing.T) {
	m := newTestMe()
	m, _ = m.Update(meLoadedMsg{info: makeUserInfo()})

	m, _ = m.Update(subscriptionProductsMsg{products: []domain.Product{
		makeProduct("Mensual 3 classes", "65,00 €", &domain.Recurring{
			Type: domain.ProductSubscription, AmountPerWeek: 3,
		}),
		makeProduct("Combo 1+1", "70,00 €", &domain.Recurring{
			Type: domain.ProductSubscriptionCombo, AmountReformerPerWeek: 1, AmountOtherPerWeek: 1,
		}),
	}})
	if !m.pickerOpen {
		t.Fatal("expected picker open after products load")
	}

	view := m.View()
	if !strings.Contains(view, "Canviar producte") {
		t.Errorf("expected picker title, got:\n%s", view)
	}
	if !strings.Contains(view, "Mensual 3 classes") {
		t.Errorf("expected product option in picker, got:\n%s", view)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	if m.pickerCursor != 1 {
		t.Errorf("pickerCursor = %d after j, want 1", m.pickerCursor)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.pickerOpen {
		t.Error("expected picker closed on esc")
	}
}

func TestMeComboWeeklyUsageLine(t *testing.T) {
	m := newTestMe()
	info := makeUserInfo()
	reformer := domain.SessionReformer
	info.Subscription.Product.Recurring = &domain.Recurring{
		Type: domain.ProductSubscriptionCombo, AmountReformerPerWeek: 1, AmountOtherPerWeek: 2,
	}
	info.Subscription.Product.CurrentWeekReservations = append(
		info.Subscription.Product.CurrentWeekReservations,
		domain.WeekReservation{ID: uuid.New(), Status: domain.ReservationConfirmed, SessionType: &reformer},
	)
	m, _ = m.Update(meLoadedMsg{info: info})

	if !strings.Contains(m.View(), "1/1 reformer · 1/2 altres") {
		t.Errorf("expected combo usage split, got:\n%s", m.View())
	}
}
