package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/projectsoma/soma/internal/store"
	"github.com/projectsoma/soma/pkg/domain"
)

type meLoadedMsg struct {
	info *domain.UserInformation
	err  error
}

type reservationCancelledMsg struct{ err error }

type subscriptionActionMsg struct {
	action string
	err    error
}

type subscriptionProductsMsg struct {
	products []domain.Product
	err      error
}

// meConfirm enumerates the pending confirmation, if any.
type meConfirm int

const (
	confirmNone meConfirm = iota
	confirmCancelReservation
	confirmCancelSubscription
	confirmDeleteSubscription
	confirmPayOnDemand
)

type meModel struct {
	store *store.Store
	user  *domain.User

	info    *domain.UserInformation
	loading bool
	err     string

	cursor    int // over upcoming reservations
	confirm   meConfirm
	busy      bool
	statusMsg string

	// Change-product picker
	pickerOpen   bool
	picker       []domain.Product
	pickerCursor int

	width  int
	height int
}

func newMeModel(s *store.Store, user *domain.User) meModel {
	return meModel{store: s, user: user, loading: true}
}

func (m meModel) Init() tea.Cmd {
	return m.load()
}

func (m meModel) load() tea.Cmd {
	s := m.store
	userID := m.user.ID
	return func() tea.Msg {
		info, err := s.UserInformation(context.Background(), userID)
		return meLoadedMsg{info: info, err: err}
	}
}

func (m meModel) cancelReservation(id uuid.UUID) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		return reservationCancelledMsg{err: s.CancelReservation(context.Background(), id)}
	}
}

func (m meModel) subscriptionAction(action string, subID uuid.UUID) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		switch action {
		case "cancel":
			err = s.CancelSubscription(ctx, subID)
		case "delete":
			err = s.DeleteCancelledSubscription(ctx, subID)
		case "pay":
			err = s.PayOnDemandSubscription(ctx, subID)
		}
		return subscriptionActionMsg{action: action, err: err}
	}
}

func (m meModel) loadSubscriptionProducts() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		list, err := s.Products(context.Background())
		if err != nil {
			return subscriptionProductsMsg{err: err}
		}
		var products []domain.Product
		products = append(products, list.Items[domain.ProductSubscription]...)
		products = append(products, list.Items[domain.ProductSubscriptionCombo]...)
		return subscriptionProductsMsg{products: products}
	}
}

func (m meModel) changeProduct(productID uuid.UUID) tea.Cmd {
	s := m.store
	subID := m.info.Subscription.ID
	return func() tea.Msg {
		err := s.ChangeSubscriptionProduct(context.Background(), subID, productID)
		return subscriptionActionMsg{action: "change", err: err}
	}
}

func (m meModel) Update(msg tea.Msg) (meModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case meLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.err = ""
		m.info = msg.info
		if m.cursor >= len(m.info.NextReservations) {
			m.cursor = 0
		}
		return m, nil

	case reservationCancelledMsg:
		m.busy = false
		m.confirm = confirmNone
		if msg.err != nil {
			m.statusMsg = errStyle.Render("Error al cancel·lar la reserva: " + msg.err.Error())
			return m, nil
		}
		m.statusMsg = okStyle.Render("Reserva cancel·lada")
		m.loading = true
		return m, m.load()

	case subscriptionActionMsg:
		m.busy = false
		m.confirm = confirmNone
		m.pickerOpen = false
		if msg.err != nil {
			m.statusMsg = errStyle.Render("Error: " + msg.err.Error())
			return m, nil
		}
		switch msg.action {
		case "cancel":
			m.statusMsg = okStyle.Render("Subscripció cancel·lada; seguirà activa fins al final del període")
		case "delete":
			m.statusMsg = okStyle.Render("Subscripció eliminada")
		case "pay":
			m.statusMsg = okStyle.Render("Pagament iniciat")
		case "change":
			m.statusMsg = okStyle.Render("Producte de la subscripció canviat")
		}
		m.loading = true
		return m, m.load()

	case subscriptionProductsMsg:
		if msg.err != nil {
			m.statusMsg = errStyle.Render("Error: " + msg.err.Error())
			return m, nil
		}
		m.picker = msg.products
		m.pickerCursor = 0
		m.pickerOpen = true
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m meModel) updateKeys(msg tea.KeyMsg) (meModel, tea.Cmd) {
	if m.pickerOpen {
		switch msg.String() {
		case "j", "down":
			if m.pickerCursor < len(m.picker)-1 {
				m.pickerCursor++
			}
		case "k", "up":
			if m.pickerCursor > 0 {
				m.pickerCursor--
			}
		case "enter":
			if !m.busy && m.pickerCursor < len(m.picker) {
				m.busy = true
				return m, m.changeProduct(m.picker[m.pickerCursor].ID)
			}
		case "esc":
			m.pickerOpen = false
		}
		return m, nil
	}

	if m.confirm != confirmNone {
		switch msg.String() {
		case "y", "s", "enter":
			if m.busy {
				return m, nil
			}
			m.busy = true
			switch m.confirm {
			case confirmCancelReservation:
				if m.cursor < len(m.info.NextReservations) {
					return m, m.cancelReservation(m.info.NextReservations[m.cursor].ID)
				}
			case confirmCancelSubscription:
				return m, m.subscriptionAction("cancel", m.info.Subscription.ID)
			case confirmDeleteSubscription:
				return m, m.subscriptionAction("delete", m.info.Subscription.ID)
			case confirmPayOnDemand:
				return m, m.subscriptionAction("pay", m.info.Subscription.ID)
			}
			m.busy = false
			m.confirm = confirmNone
		case "n", "esc":
			m.confirm = confirmNone
		}
		return m, nil
	}

	m.statusMsg = ""
	switch msg.String() {
	case "j", "down":
		if m.info != nil && m.cursor < len(m.info.NextReservations)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "r":
		m.loading = true
		return m, m.load()
	case "d":
		if m.info != nil && m.cursor < len(m.info.NextReservations) {
			m.confirm = confirmCancelReservation
		}
	case "c":
		if m.hasActiveSubscription() {
			m.confirm = confirmCancelSubscription
		}
	case "D":
		if m.hasCancelledSubscription() {
			m.confirm = confirmDeleteSubscription
		}
	case "p":
		if m.hasActiveSubscription() {
			m.confirm = confirmPayOnDemand
		}
	case "x":
		if m.hasActiveSubscription() {
			return m, m.loadSubscriptionProducts()
		}
	}
	return m, nil
}

func (m meModel) hasActiveSubscription() bool {
	return m.info != nil && m.info.Subscription != nil && m.info.Subscription.CancelledAt == nil
}

func (m meModel) hasCancelledSubscription() bool {
	return m.info != nil && m.info.Subscription != nil && m.info.Subscription.CancelledAt != nil
}

func (m meModel) View() string {
	if m.pickerOpen {
		return m.viewPicker()
	}

	var sb strings.Builder
	sb.WriteString(" " + titleStyle.Render("Perfil") + "\n\n")

	switch {
	case m.loading && m.info == nil:
		sb.WriteString(" " + dimStyle.Render("carregant perfil..."))
		return sb.String()
	case m.err != "":
		sb.WriteString(" " + errStyle.Render("error: "+m.err))
		return sb.String()
	case m.info == nil:
		return sb.String()
	}

	info := m.info
	sb.WriteString(" " + selectedStyle.Render(info.Name+" "+info.Surname) +
		"  " + dimStyle.Render(info.Email) + "\n")
	if info.MissedSessionsCount > 0 {
		sb.WriteString(" " + warnStyle.Render(fmt.Sprintf("%d sessions no assistides", info.MissedSessionsCount)) + "\n")
	}
	sb.WriteString("\n")

	sb.WriteString(m.viewSubscription(info.Subscription))
	sb.WriteString(m.viewPacks(info.Packs))
	sb.WriteString(m.viewReservations(info))

	sb.WriteString(m.viewConfirm())
	if m.statusMsg != "" {
		sb.WriteString("\n " + m.statusMsg)
	}
	return sb.String()
}

func (m meModel) viewSubscription(sub *domain.Subscription) string {
	var sb strings.Builder
	sb.WriteString(" " + metaStyle.Render("Subscripció") + "\n")
	if sub == nil {
		sb.WriteString("   " + dimStyle.Render("cap subscripció activa") + "\n\n")
		return sb.String()
	}

	state := okStyle.Render("activa")
	switch {
	case sub.CancelledAt != nil:
		state = errStyle.Render("cancel·lada")
	case !sub.IsValid:
		state = warnStyle.Render("no vigent")
	}
	sb.WriteString("   " + normalStyle.Render(sub.Product.Name) + "  " + state + "\n")
	sb.WriteString("   " + dimStyle.Render(fmt.Sprintf("%s → %s · %d dies restants",
		sub.FromDate, sub.ToDate, sub.RemainingDays)) + "\n")

	if rec := sub.Product.Recurring; rec != nil {
		switch rec.Type {
		case domain.ProductSubscription:
			used := len(sub.Product.CurrentWeekReservations)
			sb.WriteString("   " + dimStyle.Render(fmt.Sprintf("aquesta setmana: %d/%d", used, rec.AmountPerWeek)) + "\n")
		case domain.ProductSubscriptionCombo:
			reformer := sub.WeekCount(domain.SessionReformer)
			other := len(sub.Product.CurrentWeekReservations) - reformer
			sb.WriteString("   " + dimStyle.Render(fmt.Sprintf("aquesta setmana: %d/%d reformer · %d/%d altres",
				reformer, rec.AmountReformerPerWeek, other, rec.AmountOtherPerWeek)) + "\n")
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

func (m meModel) viewPacks(packs []domain.Pack) string {
	var sb strings.Builder
	sb.WriteString(" " + metaStyle.Render("Packs") + "\n")
	if len(packs) == 0 {
		sb.WriteString("   " + dimStyle.Render("cap pack") + "\n\n")
		return sb.String()
	}
	for _, p := range packs {
		remaining := okStyle.Render(fmt.Sprintf("%d restants", p.RemainingSessions))
		if p.RemainingSessions == 0 {
			remaining = dimStyle.Render("exhaurit")
		}
		sb.WriteString("   " + normalStyle.Render(p.Product.Name) + "  " + remaining + "\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

func (m meModel) viewReservations(info *domain.UserInformation) string {
	var sb strings.Builder

	sb.WriteString(" " + metaStyle.Render("Properes reserves") + "\n")
	if len(info.NextReservations) == 0 {
		sb.WriteString("   " + dimStyle.Render("cap reserva") + "\n")
	}
	for i, r := range info.NextReservations {
		line := reservationLine(r)
		if i == m.cursor {
			line = selectedRowBg.Render("> " + line)
		} else {
			line = "  " + line
		}
		sb.WriteString(" " + line + "\n")
	}
	sb.WriteString("\n")

	if len(info.CompletedReservations) > 0 {
		sb.WriteString(" " + metaStyle.Render("Historial") + "\n")
		for _, r := range info.CompletedReservations {
			sb.WriteString("   " + reservationLine(r) + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func reservationLine(r domain.ReservationSummary) string {
	label := "—"
	if r.SessionType != nil {
		label = r.SessionType.Label()
	}
	when := ""
	if s := r.SessionSchedule; s != nil {
		when = formatDay(s.Day) + " " + timeRange(s.Start, s.End)
	}
	typeCol := fmt.Sprintf("%-16s", truncStr(label, 16))
	if r.SessionType != nil {
		typeCol = SessionTypeStyle(*r.SessionType).Render(typeCol)
	}
	return typeCol + "  " + normalStyle.Render(when) +
		"  " + ReservationStatusStyle(r.Status).Render(r.Status.Label())
}

func (m meModel) viewConfirm() string {
	var question string
	switch m.confirm {
	case confirmCancelReservation:
		question = "Vols cancel·lar aquesta reserva?"
	case confirmCancelSubscription:
		question = "Vols cancel·lar la subscripció? Seguirà activa fins al final del període."
	case confirmDeleteSubscription:
		question = "Vols eliminar la subscripció cancel·lada?"
	case confirmPayOnDemand:
		question = "Vols pagar ara el proper període?"
	default:
		return ""
	}
	out := "\n " + selectedStyle.Render(question) + "\n"
	if m.busy {
		return out + " " + dimStyle.Render("...") + "\n"
	}
	return out + " " + helpEntry("s", "confirmar") + "  " + helpEntry("n", "rebutjar") + "\n"
}

func (m meModel) viewPicker() string {
	var sb strings.Builder
	sb.WriteString(" " + titleStyle.Render("Canviar producte de la subscripció") + "\n\n")
	if len(m.picker) == 0 {
		sb.WriteString(" " + dimStyle.Render("cap producte disponible") + "\n")
		return sb.String()
	}
	for i, p := range m.picker {
		line := normalStyle.Render(fmt.Sprintf("%-32s", truncStr(p.Name, 32))) +
			"  " + accentStyle.Render(p.StringifiedPrice) +
			"  " + dimStyle.Render(recurringSummary(p.Recurring))
		if i == m.pickerCursor {
			line = selectedRowBg.Render("> " + line)
		} else {
			line = "  " + line
		}
		sb.WriteString(" " + line + "\n")
	}
	if m.busy {
		sb.WriteString("\n " + dimStyle.Render("Canviant...") + "\n")
	} else {
		sb.WriteString("\n " + helpEntry("enter", "triar") + "  " + helpEntry("esc", "tancar") + "\n")
	}
	return sb.String()
}

func (m meModel) helpKeys() string {
	if m.pickerOpen {
		return helpEntry("j/k", "navegar") + "  " + helpEntry("enter", "triar") + "  " + helpEntry("esc", "tancar")
	}
	base := helpEntry("j/k", "reserves") + "  " + helpEntry("d", "cancel·lar reserva") + "  " + helpEntry("r", "refrescar")
	if m.hasActiveSubscription() {
		base += "  " + helpEntry("c", "cancel·lar sub") + "  " + helpEntry("p", "pagar") + "  " + helpEntry("x", "canviar")
	}
	if m.hasCancelledSubscription() {
		base += "  " + helpEntry("D", "eliminar sub")
	}
	return base
}
