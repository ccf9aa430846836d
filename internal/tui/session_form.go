package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/projectsoma/soma/internal/store"
	"github.com/projectsoma/soma/pkg/client"
	"github.com/projectsoma/soma/pkg/domain"
)

type sessionSavedMsg struct {
	session *domain.Session
	err     error
}

// Form field indexes, in tab order.
const (
	fieldType = iota
	fieldDay
	fieldStart
	fieldEnd
	fieldObservations
	fieldCount
)

// sessionFormModel is the staff create/edit form for a session. Editing
// an existing session sends a partial update; a zero editID creates.
type sessionFormModel struct {
	store  *store.Store
	editID uuid.UUID

	sessionType  domain.SessionType
	day          string
	start        string
	end          string
	observations string

	focus  int
	saving bool
	errMsg string
	width  int
}

func newSessionForm(s *store.Store, day string, edit *domain.DailySession) sessionFormModel {
	m := sessionFormModel{
		store:       s,
		sessionType: domain.SessionTypes[0],
		day:         day,
		start:       "09:00",
		end:         "10:00",
	}
	if edit != nil {
		m.editID = edit.ID
		m.sessionType = edit.Type
		m.day = edit.Day
		m.start = edit.StartHour
		m.end = edit.EndHour
		m.observations = edit.Observations
	}
	return m
}

func (m sessionFormModel) save() tea.Cmd {
	s := m.store
	form := m
	return func() tea.Msg {
		ctx := context.Background()
		if form.editID != uuid.Nil {
			req := client.UpdateSessionRequest{
				Type:         &form.sessionType,
				Day:          &form.day,
				StartHour:    &form.start,
				EndHour:      &form.end,
				Observations: &form.observations,
			}
			updated, err := s.UpdateSession(ctx, form.editID, req)
			return sessionSavedMsg{session: updated, err: err}
		}
		req := client.CreateSessionRequest{
			Type:         form.sessionType,
			Day:          form.day,
			StartHour:    form.start,
			EndHour:      form.end,
			Observations: form.observations,
		}
		created, err := s.CreateSession(ctx, req)
		return sessionSavedMsg{session: created, err: err}
	}
}

func (m sessionFormModel) Update(msg tea.Msg) (sessionFormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionSavedMsg:
		m.saving = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		if m.saving {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			m.focus = (m.focus + 1) % fieldCount
			return m, nil
		case "shift+tab", "up":
			m.focus = (m.focus + fieldCount - 1) % fieldCount
			return m, nil
		case "ctrl+s":
			if m.day == "" || m.start == "" || m.end == "" {
				m.errMsg = "dia i hores són obligatoris"
				return m, nil
			}
			m.saving = true
			m.errMsg = ""
			return m, m.save()
		case "left":
			if m.focus == fieldType {
				m.sessionType = prevSessionType(m.sessionType)
				return m, nil
			}
		case "right":
			if m.focus == fieldType {
				m.sessionType = nextSessionType(m.sessionType)
				return m, nil
			}
		case "backspace":
			field := m.focusedField()
			if len(*field) > 0 {
				runes := []rune(*field)
				*field = string(runes[:len(runes)-1])
			}
			return m, nil
		default:
			if m.focus != fieldType && len(msg.String()) == 1 {
				*m.focusedField() += msg.String()
			}
			return m, nil
		}
	}
	return m, nil
}

func (m *sessionFormModel) focusedField() *string {
	switch m.focus {
	case fieldDay:
		return &m.day
	case fieldStart:
		return &m.start
	case fieldEnd:
		return &m.end
	default:
		return &m.observations
	}
}

func nextSessionType(t domain.SessionType) domain.SessionType {
	for i, c := range domain.SessionTypes {
		if c == t {
			return domain.SessionTypes[(i+1)%len(domain.SessionTypes)]
		}
	}
	return domain.SessionTypes[0]
}

func prevSessionType(t domain.SessionType) domain.SessionType {
	for i, c := range domain.SessionTypes {
		if c == t {
			return domain.SessionTypes[(i+len(domain.SessionTypes)-1)%len(domain.SessionTypes)]
		}
	}
	return domain.SessionTypes[0]
}

func (m sessionFormModel) View() string {
	var sb strings.Builder

	title := "Nova sessió"
	if m.editID != uuid.Nil {
		title = "Editar sessió"
	}
	sb.WriteString(" " + titleStyle.Render(title) + "\n\n")

	sb.WriteString(m.fieldRow(fieldType, "Tipus", SessionTypeStyle(m.sessionType).Render("← "+m.sessionType.Label()+" →")))
	sb.WriteString(m.fieldRow(fieldDay, "Dia", m.day))
	sb.WriteString(m.fieldRow(fieldStart, "Inici", m.start))
	sb.WriteString(m.fieldRow(fieldEnd, "Fi", m.end))
	sb.WriteString(m.fieldRow(fieldObservations, "Observacions", truncStr(m.observations, 60)))

	if m.saving {
		sb.WriteString("\n " + dimStyle.Render("Desant...") + "\n")
	}
	if m.errMsg != "" {
		sb.WriteString("\n " + errStyle.Render(m.errMsg) + "\n")
	}
	return sb.String()
}

func (m sessionFormModel) fieldRow(idx int, label, value string) string {
	name := metaStyle.Render(label)
	cursor := " "
	if m.focus == idx {
		name = selectedStyle.Render(label)
		cursor = accentStyle.Render(">")
	}
	if value == "" {
		value = dimStyle.Render("—")
	}
	return " " + cursor + " " + name + "  " + value + "\n"
}
