package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/projectsoma/soma/internal/store"
	"github.com/projectsoma/soma/pkg/client"
	"github.com/projectsoma/soma/pkg/domain"
)

type timetableLoadedMsg struct {
	day      string
	sessions []domain.DailySession
	err      error
}

// sessionDetailMsg carries the roster plus the backend's eligibility
// verdict and the locally computed entitlement choice.
type sessionDetailMsg struct {
	session *domain.DailySession
	verdict *domain.CanMakeReservation
	elig    domain.Eligibility
	err     error
}

type reservationMadeMsg struct {
	reservation *domain.Reservation
	err         error
}

type sessionDeletedMsg struct{ err error }

type sessionCancelledMsg struct{ err error }

type timetableModel struct {
	store *store.Store
	user  *domain.User

	date       time.Time
	sessions   []domain.DailySession
	cursor     int
	typeFilter domain.SessionType // empty means all types
	loading    bool
	err        string
	statusMsg  string
	width      int
	height     int

	// Detail overlay state
	detail        bool
	detailSession *domain.DailySession
	verdict       *domain.CanMakeReservation
	elig          domain.Eligibility
	checking      bool
	confirmOpen   bool
	reserving     bool

	// Staff state
	form          *sessionFormModel
	confirmDelete bool
	confirmCancel bool
}

func newTimetableModel(s *store.Store, user *domain.User) timetableModel {
	return timetableModel{
		store:   s,
		user:    user,
		date:    time.Now(),
		loading: true,
	}
}

func (m timetableModel) Init() tea.Cmd {
	return m.load()
}

func (m timetableModel) load() tea.Cmd {
	s := m.store
	day := m.date.Format(dayFormat)
	var filters client.DailySessionFilters
	if m.typeFilter != "" {
		filters.Types = []domain.SessionType{m.typeFilter}
	}
	return func() tea.Msg {
		sessions, err := s.DailySessions(context.Background(), day, filters)
		return timetableLoadedMsg{day: day, sessions: sessions, err: err}
	}
}

func (m timetableModel) loadDetail(session domain.DailySession) tea.Cmd {
	s := m.store
	user := m.user
	return func() tea.Msg {
		full, err := s.Session(context.Background(), session.ID)
		if err != nil {
			return sessionDetailMsg{err: err}
		}
		verdict, err := s.CanMakeReservation(context.Background(), user.ID, session.ID)
		if err != nil {
			return sessionDetailMsg{session: full, err: err}
		}
		info, err := s.UserInformation(context.Background(), user.ID)
		if err != nil {
			return sessionDetailMsg{session: full, verdict: verdict, err: err}
		}
		elig := domain.DecideEligibility(full.Type, info.Subscription, info.Packs)
		return sessionDetailMsg{session: full, verdict: verdict, elig: elig}
	}
}

func (m timetableModel) reserve() tea.Cmd {
	s := m.store
	user := m.user
	session := m.detailSession
	elig := m.elig
	return func() tea.Msg {
		ctx := context.Background()
		var r *domain.Reservation
		var err error
		switch elig.Kind {
		case domain.EligibilitySubscription:
			r, err = s.ReserveFromSubscription(ctx, session.ID, user.ID, elig.Subscription.ID)
		case domain.EligibilityComboSubscription:
			r, err = s.ReserveFromComboSubscription(ctx, session.ID, user.ID, elig.Subscription.ID)
		case domain.EligibilityPack:
			r, err = s.ReserveFromPack(ctx, session.ID, user.ID, elig.Pack.ID)
		default:
			err = fmt.Errorf("cap subscripció ni pack disponible")
		}
		return reservationMadeMsg{reservation: r, err: err}
	}
}

func (m timetableModel) deleteSession(id domain.DailySession) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		return sessionDeletedMsg{err: s.DeleteSession(context.Background(), id.ID)}
	}
}

// cancelSession marks a session cancelled without removing it, so it
// stays visible on the timetable.
func (m timetableModel) cancelSession(session domain.DailySession) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		cancelled := domain.SessionCancelled
		_, err := s.UpdateSession(context.Background(), session.ID, client.UpdateSessionRequest{Status: &cancelled})
		return sessionCancelledMsg{err: err}
	}
}

func (m timetableModel) Update(msg tea.Msg) (timetableModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.form != nil {
			m.form.width = msg.Width
		}
		return m, nil

	case timetableLoadedMsg:
		// A stale response for another day can arrive after navigation.
		if msg.day != m.date.Format(dayFormat) {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err.Error()
		} else {
			m.sessions = msg.sessions
			m.err = ""
		}
		if m.cursor >= len(m.sessions) {
			m.cursor = 0
		}
		return m, nil

	case sessionDetailMsg:
		m.checking = false
		if msg.session != nil {
			m.detailSession = msg.session
		}
		m.verdict = msg.verdict
		m.elig = msg.elig
		if msg.err != nil {
			m.err = msg.err.Error()
		}
		return m, nil

	case reservationMadeMsg:
		m.reserving = false
		m.confirmOpen = false
		m.detail = false
		if msg.err != nil {
			m.statusMsg = errStyle.Render("Error al crear la reserva: " + msg.err.Error())
			return m, nil
		}
		label := "Reserva creada correctament"
		if msg.reservation != nil && msg.reservation.Status == domain.ReservationWaitingList {
			label = "Afegit a la llista d'espera"
		}
		m.statusMsg = okStyle.Render(label)
		m.loading = true
		return m, m.load()

	case sessionDeletedMsg:
		m.confirmDelete = false
		if msg.err != nil {
			m.statusMsg = errStyle.Render("Error al eliminar la sessió: " + msg.err.Error())
			return m, nil
		}
		m.statusMsg = okStyle.Render("Sessió eliminada correctament")
		m.loading = true
		return m, m.load()

	case sessionCancelledMsg:
		m.confirmCancel = false
		if msg.err != nil {
			m.statusMsg = errStyle.Render("Error al cancel·lar la sessió: " + msg.err.Error())
			return m, nil
		}
		m.statusMsg = okStyle.Render("Sessió cancel·lada")
		m.loading = true
		return m, m.load()

	case sessionSavedMsg:
		if m.form == nil {
			return m, nil
		}
		f, cmd := m.form.Update(msg)
		m.form = &f
		if msg.err == nil {
			m.form = nil
			m.statusMsg = okStyle.Render("Sessió desada correctament")
			m.loading = true
			return m, m.load()
		}
		return m, cmd

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	if m.form != nil {
		f, cmd := m.form.Update(msg)
		m.form = &f
		return m, cmd
	}
	return m, nil
}

func (m timetableModel) updateKeys(msg tea.KeyMsg) (timetableModel, tea.Cmd) {
	if m.form != nil {
		if msg.String() == "esc" {
			m.form = nil
			return m, nil
		}
		f, cmd := m.form.Update(msg)
		m.form = &f
		return m, cmd
	}

	if m.confirmDelete {
		switch msg.String() {
		case "y", "s": // "s" for sí
			m.confirmDelete = false
			if m.cursor < len(m.sessions) {
				return m, m.deleteSession(m.sessions[m.cursor])
			}
		case "n", "esc":
			m.confirmDelete = false
		}
		return m, nil
	}

	if m.confirmCancel {
		switch msg.String() {
		case "y", "s":
			m.confirmCancel = false
			if m.cursor < len(m.sessions) {
				return m, m.cancelSession(m.sessions[m.cursor])
			}
		case "n", "esc":
			m.confirmCancel = false
		}
		return m, nil
	}

	if m.detail {
		return m.updateDetailKeys(msg)
	}

	m.statusMsg = ""
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.sessions)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "l", "right":
		m.date = m.date.AddDate(0, 0, 1)
		m.cursor = 0
		m.loading = true
		return m, m.load()
	case "h", "left":
		m.date = m.date.AddDate(0, 0, -1)
		m.cursor = 0
		m.loading = true
		return m, m.load()
	case "t":
		m.date = time.Now()
		m.cursor = 0
		m.loading = true
		return m, m.load()
	case "f":
		m.typeFilter = nextTypeFilter(m.typeFilter)
		m.cursor = 0
		m.loading = true
		return m, m.load()
	case "r":
		m.loading = true
		return m, m.load()
	case "enter":
		if m.cursor < len(m.sessions) {
			m.detail = true
			m.checking = true
			m.verdict = nil
			m.elig = domain.Eligibility{}
			session := m.sessions[m.cursor]
			m.detailSession = &session
			return m, m.loadDetail(session)
		}
	case "n":
		if m.user.IsStaff() {
			f := newSessionForm(m.store, m.date.Format(dayFormat), nil)
			f.width = m.width
			m.form = &f
		}
	case "e":
		if m.user.IsStaff() && m.cursor < len(m.sessions) {
			f := newSessionForm(m.store, m.date.Format(dayFormat), &m.sessions[m.cursor])
			f.width = m.width
			m.form = &f
		}
	case "d":
		if m.user.IsStaff() && m.cursor < len(m.sessions) {
			m.confirmDelete = true
		}
	case "c":
		if m.user.IsStaff() && m.cursor < len(m.sessions) {
			m.confirmCancel = true
		}
	}
	return m, nil
}

func (m timetableModel) updateDetailKeys(msg tea.KeyMsg) (timetableModel, tea.Cmd) {
	if m.confirmOpen {
		switch msg.String() {
		case "y", "s", "enter":
			if !m.reserving {
				m.reserving = true
				return m, m.reserve()
			}
		case "n", "esc":
			m.confirmOpen = false
		}
		return m, nil
	}

	switch msg.String() {
	case "esc", "q":
		m.detail = false
		m.verdict = nil
	case "r", "enter":
		if m.verdict != nil && m.verdict.CanMakeReservation && m.elig.Allowed() {
			m.confirmOpen = true
		}
	}
	return m, nil
}

func nextTypeFilter(current domain.SessionType) domain.SessionType {
	if current == "" {
		return domain.SessionTypes[0]
	}
	for i, t := range domain.SessionTypes {
		if t == current {
			if i == len(domain.SessionTypes)-1 {
				return ""
			}
			return domain.SessionTypes[i+1]
		}
	}
	return ""
}

func (m timetableModel) View() string {
	if m.form != nil {
		return m.form.View()
	}
	if m.detail {
		return m.viewDetail()
	}

	var sb strings.Builder

	heading := titleStyle.Render(formatDay(m.date.Format(dayFormat)))
	if m.typeFilter != "" {
		heading += "  " + SessionTypeStyle(m.typeFilter).Render("["+m.typeFilter.Label()+"]")
	}
	sb.WriteString(" " + heading + "\n\n")

	switch {
	case m.loading && len(m.sessions) == 0:
		sb.WriteString(" " + dimStyle.Render("carregant horari..."))
	case m.err != "":
		sb.WriteString(" " + errStyle.Render("error: "+m.err))
	case len(m.sessions) == 0:
		sb.WriteString(" " + dimStyle.Render("cap sessió aquest dia"))
	default:
		for i, s := range m.sessions {
			line := m.sessionRow(s)
			if i == m.cursor {
				line = selectedRowBg.Render("> " + line)
			} else {
				line = "  " + line
			}
			sb.WriteString(" " + line + "\n")
		}
	}

	if m.confirmDelete {
		sb.WriteString("\n " + warnStyle.Render("Eliminar aquesta sessió? (s/n)"))
	}
	if m.confirmCancel {
		sb.WriteString("\n " + warnStyle.Render("Cancel·lar aquesta sessió? (s/n)"))
	}
	if m.statusMsg != "" {
		sb.WriteString("\n " + m.statusMsg)
	}
	return sb.String()
}

func (m timetableModel) sessionRow(s domain.DailySession) string {
	typeCol := SessionTypeStyle(s.Type).Render(fmt.Sprintf("%-16s", truncStr(s.Type.Label(), 16)))
	hours := normalStyle.Render(timeRange(s.StartHour, s.EndHour))

	var extras []string
	if s.Room != nil {
		seat := fmt.Sprintf("%d/%d", s.ActiveReservations(), s.Room.Capacity)
		if s.IsFull() {
			extras = append(extras, warnStyle.Render(s.Room.Name+" "+seat))
		} else {
			extras = append(extras, dimStyle.Render(s.Room.Name+" "+seat))
		}
	}
	if s.Teacher != nil {
		extras = append(extras, dimStyle.Render(s.Teacher.Name))
	}
	if s.Status == domain.SessionCancelled {
		extras = append(extras, errStyle.Render("cancel·lada"))
	}

	row := typeCol + "  " + hours
	if len(extras) > 0 {
		row += "  " + strings.Join(extras, "  ")
	}
	return row
}

func (m timetableModel) viewDetail() string {
	s := m.detailSession
	if s == nil {
		return " " + dimStyle.Render("carregant sessió...")
	}

	var sb strings.Builder
	sb.WriteString(" " + SessionTypeStyle(s.Type).Render(s.Type.Label()) +
		"  " + normalStyle.Render(timeRange(s.StartHour, s.EndHour)) +
		"  " + dimStyle.Render(formatDay(s.Day)) + "\n")

	if s.Room != nil {
		sb.WriteString(" " + dimStyle.Render(fmt.Sprintf("Sala %s · %d places", s.Room.Name, s.Room.Capacity)) + "\n")
	}
	if s.Teacher != nil {
		sb.WriteString(" " + dimStyle.Render("Professor/a: "+s.Teacher.Name+" "+s.Teacher.Surname) + "\n")
	}
	if s.Observations != "" {
		sb.WriteString(" " + normalStyle.Render(truncStr(s.Observations, 80)) + "\n")
	}
	sb.WriteString("\n")

	// Roster (visible to staff; clients just see the seat count)
	if m.user.IsStaff() && len(s.Reservations) > 0 {
		sb.WriteString(" " + metaStyle.Render("Reserves") + "\n")
		for _, r := range s.Reservations {
			name := "—"
			if r.User != nil {
				name = r.User.Name + " " + r.User.Surname
			}
			sb.WriteString("   " + normalStyle.Render(truncStr(name, 32)) +
				"  " + ReservationStatusStyle(r.Status).Render(r.Status.Label()) + "\n")
		}
		sb.WriteString("\n")
	}

	// Reserve control
	switch {
	case m.checking:
		sb.WriteString(" " + dimStyle.Render("Comprovant...") + "\n")
	case m.verdict == nil:
		// detail load failed; error already surfaced on the list view
	case !m.verdict.CanMakeReservation:
		reason := m.verdict.Reason
		if reason == "" {
			reason = "No pots reservar aquesta sessió"
		}
		sb.WriteString(" " + errStyle.Render(reason) + "\n")
	case s.IsFull() || m.verdict.IsRoomAtFullCapacity:
		sb.WriteString(" " + warnStyle.Render("Sala plena — r per apuntar-te a la llista d'espera") + "\n")
		sb.WriteString(" " + m.entitlementLine() + "\n")
	default:
		sb.WriteString(" " + accentStyle.Render("r — Reservar") + "\n")
		sb.WriteString(" " + m.entitlementLine() + "\n")
	}

	if m.confirmOpen {
		sb.WriteString("\n " + selectedStyle.Render("Vols fer una reserva per la classe de "+s.Type.Label()+"?") + "\n")
		sb.WriteString(" " + dimStyle.Render("Per cancel·lar caldrà fer-ho com a mínim 3 hores abans de l'inici.") + "\n")
		if m.reserving {
			sb.WriteString(" " + dimStyle.Render("Reservant...") + "\n")
		} else {
			sb.WriteString(" " + helpEntry("s", "reservar") + "  " + helpEntry("n", "rebutjar") + "\n")
		}
	}

	return lipgloss.NewStyle().MaxWidth(max(m.width, 40)).Render(sb.String())
}

// entitlementLine says which entitlement the booking would spend.
func (m timetableModel) entitlementLine() string {
	switch m.elig.Kind {
	case domain.EligibilitySubscription, domain.EligibilityComboSubscription:
		return dimStyle.Render("amb la subscripció " + m.elig.Subscription.Product.Name)
	case domain.EligibilityPack:
		return dimStyle.Render(fmt.Sprintf("amb el pack %s (%d restants)",
			m.elig.Pack.Product.Name, m.elig.Pack.RemainingSessions))
	default:
		return dimStyle.Render("cap subscripció ni pack disponible")
	}
}

func (m timetableModel) helpKeys() string {
	if m.form != nil {
		return helpEntry("tab", "camp") + "  " + helpEntry("ctrl+s", "desar") + "  " + helpEntry("esc", "tancar")
	}
	if m.detail {
		return helpEntry("r", "reservar") + "  " + helpEntry("esc", "enrere")
	}
	base := helpEntry("h/l", "dia") + "  " + helpEntry("j/k", "navegar") + "  " +
		helpEntry("f", "filtre") + "  " + helpEntry("enter", "detall") + "  " + helpEntry("t", "avui")
	if m.user.IsStaff() {
		base += "  " + helpEntry("n", "nova") + "  " + helpEntry("e", "editar") + "  " +
			helpEntry("c", "cancel·lar") + "  " + helpEntry("d", "eliminar")
	}
	return base
}
