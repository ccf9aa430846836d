package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/projectsoma/soma/internal/store"
	"github.com/projectsoma/soma/pkg/client"
	"github.com/projectsoma/soma/pkg/domain"
)

type attendanceSessionsMsg struct {
	sessions []domain.DailySession
	err      error
}

type rosterMsg struct {
	session *domain.DailySession
	err     error
}

type attendanceSubmittedMsg struct {
	result *domain.AttendanceResult
	err    error
}

// mark is the staff's pending attendance decision for one reservation.
type mark int

const (
	markUnset mark = iota
	markAttended
	markNoShow
)

type attendanceModel struct {
	store *store.Store

	date     time.Time
	sessions []domain.DailySession
	cursor   int
	loading  bool
	err      string

	// Roster state, entered by picking a session
	session *domain.DailySession
	roster  []domain.ReservationRef
	marks   map[uuid.UUID]mark // keyed by reservation user ID
	rosterC int

	submitting bool
	statusMsg  string
	width      int
	height     int
}

func newAttendanceModel(s *store.Store) attendanceModel {
	return attendanceModel{store: s, date: time.Now(), loading: true}
}

func (m attendanceModel) Init() tea.Cmd {
	return m.load()
}

func (m attendanceModel) load() tea.Cmd {
	s := m.store
	day := m.date.Format(dayFormat)
	return func() tea.Msg {
		sessions, err := s.DailySessions(context.Background(), day, client.DailySessionFilters{})
		return attendanceSessionsMsg{sessions: sessions, err: err}
	}
}

func (m attendanceModel) loadRoster(id uuid.UUID) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		session, err := s.Session(context.Background(), id)
		return rosterMsg{session: session, err: err}
	}
}

func (m attendanceModel) submit() tea.Cmd {
	s := m.store
	req := client.TakeAttendanceRequest{SessionID: m.session.ID}
	for _, r := range m.roster {
		if r.User == nil {
			continue
		}
		switch m.marks[r.User.ID] {
		case markAttended:
			req.AttendeeUserIDs = append(req.AttendeeUserIDs, r.User.ID)
		case markNoShow:
			req.NotAttendedUserIDs = append(req.NotAttendedUserIDs, r.User.ID)
		}
	}
	return func() tea.Msg {
		result, err := s.TakeAttendance(context.Background(), req)
		return attendanceSubmittedMsg{result: result, err: err}
	}
}

func (m attendanceModel) Update(msg tea.Msg) (attendanceModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case attendanceSessionsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.err = ""
		m.sessions = msg.sessions
		if m.cursor >= len(m.sessions) {
			m.cursor = 0
		}
		return m, nil

	case rosterMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.session = msg.session
		m.roster = m.roster[:0]
		m.marks = make(map[uuid.UUID]mark)
		for _, r := range msg.session.Reservations {
			// Waiting list and cancelled holders are not marked.
			if r.Status != domain.ReservationConfirmed &&
				r.Status != domain.ReservationAttended &&
				r.Status != domain.ReservationNoShow {
				continue
			}
			m.roster = append(m.roster, r)
			if r.User == nil {
				continue
			}
			switch r.Status {
			case domain.ReservationAttended:
				m.marks[r.User.ID] = markAttended
			case domain.ReservationNoShow:
				m.marks[r.User.ID] = markNoShow
			}
		}
		m.rosterC = 0
		return m, nil

	case attendanceSubmittedMsg:
		m.submitting = false
		if msg.err != nil {
			m.statusMsg = errStyle.Render("Error al desar l'assistència: " + msg.err.Error())
			return m, nil
		}
		m.statusMsg = okStyle.Render(fmt.Sprintf("Assistència desada: %d assistides, %d no presentades",
			msg.result.AttendedReservations, msg.result.NoShowReservations))
		m.session = nil
		m.loading = true
		return m, m.load()

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m attendanceModel) updateKeys(msg tea.KeyMsg) (attendanceModel, tea.Cmd) {
	if m.session != nil {
		return m.updateRosterKeys(msg)
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
	case "h", "left":
		m.date = m.date.AddDate(0, 0, -1)
		m.cursor = 0
		m.loading = true
		return m, m.load()
	case "l", "right":
		m.date = m.date.AddDate(0, 0, 1)
		m.cursor = 0
		m.loading = true
		return m, m.load()
	case "r":
		m.loading = true
		return m, m.load()
	case "enter":
		if m.cursor < len(m.sessions) {
			m.loading = true
			return m, m.loadRoster(m.sessions[m.cursor].ID)
		}
	}
	return m, nil
}

func (m attendanceModel) updateRosterKeys(msg tea.KeyMsg) (attendanceModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	switch msg.String() {
	case "j", "down":
		if m.rosterC < len(m.roster)-1 {
			m.rosterC++
		}
	case "k", "up":
		if m.rosterC > 0 {
			m.rosterC--
		}
	case "a":
		m.toggle(markAttended)
	case "n":
		m.toggle(markNoShow)
	case "ctrl+s":
		m.submitting = true
		return m, m.submit()
	case "esc", "q":
		m.session = nil
	}
	return m, nil
}

// toggle flips the mark under the cursor; marking twice clears it.
func (m *attendanceModel) toggle(want mark) {
	if m.rosterC >= len(m.roster) {
		return
	}
	r := m.roster[m.rosterC]
	if r.User == nil {
		return
	}
	if m.marks[r.User.ID] == want {
		delete(m.marks, r.User.ID)
	} else {
		m.marks[r.User.ID] = want
	}
}

func (m attendanceModel) View() string {
	if m.session != nil {
		return m.viewRoster()
	}

	var sb strings.Builder
	sb.WriteString(" " + titleStyle.Render("Assistència — "+formatDay(m.date.Format(dayFormat))) + "\n\n")

	switch {
	case m.loading && len(m.sessions) == 0:
		sb.WriteString(" " + dimStyle.Render("carregant sessions..."))
	case m.err != "":
		sb.WriteString(" " + errStyle.Render("error: "+m.err))
	case len(m.sessions) == 0:
		sb.WriteString(" " + dimStyle.Render("cap sessió aquest dia"))
	default:
		for i, s := range m.sessions {
			line := SessionTypeStyle(s.Type).Render(fmt.Sprintf("%-16s", truncStr(s.Type.Label(), 16))) +
				"  " + normalStyle.Render(timeRange(s.StartHour, s.EndHour)) +
				"  " + dimStyle.Render(fmt.Sprintf("%d reserves", s.ActiveReservations()))
			if i == m.cursor {
				line = selectedRowBg.Render("> " + line)
			} else {
				line = "  " + line
			}
			sb.WriteString(" " + line + "\n")
		}
	}
	if m.statusMsg != "" {
		sb.WriteString("\n " + m.statusMsg)
	}
	return sb.String()
}

func (m attendanceModel) viewRoster() string {
	s := m.session
	var sb strings.Builder
	sb.WriteString(" " + SessionTypeStyle(s.Type).Render(s.Type.Label()) +
		"  " + normalStyle.Render(timeRange(s.StartHour, s.EndHour)) + "\n\n")

	if len(m.roster) == 0 {
		sb.WriteString(" " + dimStyle.Render("cap reserva confirmada") + "\n")
		return sb.String()
	}

	for i, r := range m.roster {
		name := "—"
		if r.User != nil {
			name = r.User.Name + " " + r.User.Surname
		}
		markCol := dimStyle.Render("[ ]")
		if r.User != nil {
			switch m.marks[r.User.ID] {
			case markAttended:
				markCol = okStyle.Render("[✓]")
			case markNoShow:
				markCol = errStyle.Render("[✗]")
			}
		}
		line := markCol + " " + normalStyle.Render(fmt.Sprintf("%-32s", truncStr(name, 32)))
		if i == m.rosterC {
			line = selectedRowBg.Render("> " + line)
		} else {
			line = "  " + line
		}
		sb.WriteString(" " + line + "\n")
	}

	if m.submitting {
		sb.WriteString("\n " + dimStyle.Render("Desant...") + "\n")
	}
	return sb.String()
}

func (m attendanceModel) helpKeys() string {
	if m.session != nil {
		return helpEntry("a", "assistida") + "  " + helpEntry("n", "no presentat") + "  " +
			helpEntry("ctrl+s", "desar") + "  " + helpEntry("esc", "enrere")
	}
	return helpEntry("h/l", "dia") + "  " + helpEntry("j/k", "navegar") + "  " + helpEntry("enter", "passar llista")
}
