package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-playground/validator/v10"

	"github.com/projectsoma/soma/internal/store"
	"github.com/projectsoma/soma/pkg/client"
	"github.com/projectsoma/soma/pkg/domain"
)

type onboardingDoneMsg struct {
	user *domain.User
	err  error
}

// Wizard steps, in order. Navigation is bounded: previous stops at the
// first step, next requires the current step to validate.
const (
	stepName = iota
	stepBirthDate
	stepPostalCode
	stepHowFound
	stepTerms
	stepCount
)

// onboardingForm holds the wizard answers. Validation runs per step
// against the tags of the fields that step owns.
type onboardingForm struct {
	Name            string                 `validate:"required,min=2"`
	Surname         string                 `validate:"required,min=2"`
	BirthDate       string                 `validate:"required,datetime=2006-01-02"`
	PostalCode      string                 `validate:"required,len=5,numeric"`
	HowDidYouFindUs domain.HowDidYouFindUs `validate:"required,oneof=friends socialMedia advertisement other"`
	AcceptTerms     bool                   `validate:"eq=true"`
	AcceptPrivacy   bool                   `validate:"eq=true"`
}

type onboardingModel struct {
	store    *store.Store
	user     *domain.User
	language string
	validate *validator.Validate

	step  int
	form  onboardingForm
	focus int // sub-field within the step

	submitting bool
	errMsg     string
	width      int
	height     int
}

func newOnboardingModel(s *store.Store, user *domain.User, language string) onboardingModel {
	m := onboardingModel{
		store:    s,
		user:     user,
		language: language,
		validate: validator.New(),
	}
	m.form.Name = user.Name
	m.form.Surname = user.Surname
	m.form.BirthDate = user.BirthDate
	m.form.PostalCode = user.PostalCode
	m.form.HowDidYouFindUs = domain.FoundViaFriends
	if user.HowDidYouFindUs != nil {
		m.form.HowDidYouFindUs = *user.HowDidYouFindUs
	}
	return m
}

func (m onboardingModel) Init() tea.Cmd { return nil }

// stepFields maps each step to the form fields it validates.
var stepFields = map[int][]string{
	stepName:       {"Name", "Surname"},
	stepBirthDate:  {"BirthDate"},
	stepPostalCode: {"PostalCode"},
	stepHowFound:   {"HowDidYouFindUs"},
	stepTerms:      {"AcceptTerms", "AcceptPrivacy"},
}

func (m onboardingModel) validateStep() string {
	err := m.validate.StructPartial(m.form, stepFields[m.step]...)
	if err == nil {
		return ""
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return err.Error()
	}
	return stepErrorMessage(errs[0])
}

func stepErrorMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "Name":
		return "El nom ha de tenir almenys 2 caràcters"
	case "Surname":
		return "Els cognoms han de tenir almenys 2 caràcters"
	case "BirthDate":
		return "La data de naixement ha de tenir el format AAAA-MM-DD"
	case "PostalCode":
		return "El codi postal ha de tenir 5 dígits"
	case "HowDidYouFindUs":
		return "Tria una opció"
	case "AcceptTerms":
		return "Cal acceptar els termes i condicions"
	case "AcceptPrivacy":
		return "Cal acceptar la política de privacitat"
	default:
		return fe.Error()
	}
}

// submit sends every wizard answer plus the completion timestamp in a
// single partial update.
func (m onboardingModel) submit() tea.Cmd {
	s := m.store
	userID := m.user.ID
	form := m.form
	language := m.language
	return func() tea.Msg {
		now := time.Now().UTC()
		how := form.HowDidYouFindUs
		req := client.UpdateUserRequest{
			Name:                  &form.Name,
			Surname:               &form.Surname,
			BirthDate:             &form.BirthDate,
			PostalCode:            &form.PostalCode,
			HowDidYouFindUs:       &how,
			OnboardingCompletedAt: &now,
		}
		if language != "" {
			req.LanguageCode = &language
		}
		u, err := s.UpdateUser(context.Background(), userID, req)
		return onboardingDoneMsg{user: u, err: err}
	}
}

func (m onboardingModel) Update(msg tea.Msg) (onboardingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case onboardingDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		}
		// Success is handled by the root model, which swaps views.
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m onboardingModel) updateKeys(msg tea.KeyMsg) (onboardingModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	switch msg.String() {
	case "enter":
		if errMsg := m.validateStep(); errMsg != "" {
			m.errMsg = errMsg
			return m, nil
		}
		m.errMsg = ""
		if m.step == stepCount-1 {
			m.submitting = true
			return m, m.submit()
		}
		m.step++
		m.focus = 0
		return m, nil

	case "ctrl+p", "esc":
		if m.step > 0 {
			m.step--
			m.focus = 0
			m.errMsg = ""
		}
		return m, nil

	case "tab":
		if n := m.stepFocusCount(); n > 1 {
			m.focus = (m.focus + 1) % n
		}
		return m, nil
	}

	switch m.step {
	case stepName, stepBirthDate, stepPostalCode:
		m.editText(msg)
	case stepHowFound:
		switch msg.String() {
		case "h", "left":
			m.form.HowDidYouFindUs = cycleHowFound(m.form.HowDidYouFindUs, -1)
		case "l", "right":
			m.form.HowDidYouFindUs = cycleHowFound(m.form.HowDidYouFindUs, 1)
		}
	case stepTerms:
		if msg.String() == " " || msg.String() == "x" {
			if m.focus == 0 {
				m.form.AcceptTerms = !m.form.AcceptTerms
			} else {
				m.form.AcceptPrivacy = !m.form.AcceptPrivacy
			}
		}
	}
	return m, nil
}

func (m onboardingModel) stepFocusCount() int {
	switch m.step {
	case stepName, stepTerms:
		return 2
	default:
		return 1
	}
}

func (m *onboardingModel) editText(msg tea.KeyMsg) {
	field := m.focusedTextField()
	switch msg.String() {
	case "backspace":
		if len(*field) > 0 {
			runes := []rune(*field)
			*field = string(runes[:len(runes)-1])
		}
	default:
		if len(msg.String()) == 1 {
			*field += msg.String()
		}
	}
}

func (m *onboardingModel) focusedTextField() *string {
	switch m.step {
	case stepName:
		if m.focus == 0 {
			return &m.form.Name
		}
		return &m.form.Surname
	case stepBirthDate:
		return &m.form.BirthDate
	default:
		return &m.form.PostalCode
	}
}

func cycleHowFound(current domain.HowDidYouFindUs, dir int) domain.HowDidYouFindUs {
	opts := domain.HowDidYouFindUsOptions
	for i, o := range opts {
		if o == current {
			return opts[(i+dir+len(opts))%len(opts)]
		}
	}
	return opts[0]
}

func (m onboardingModel) View() string {
	var sb strings.Builder
	sb.WriteString(" " + titleStyle.Render("Benvingut/da a Soma") + "\n")
	sb.WriteString(" " + dimStyle.Render(stepProgress(m.step)) + "\n\n")

	switch m.step {
	case stepName:
		sb.WriteString(m.textRow(0, "Nom", m.form.Name))
		sb.WriteString(m.textRow(1, "Cognoms", m.form.Surname))
	case stepBirthDate:
		sb.WriteString(" " + metaStyle.Render("Data de naixement (AAAA-MM-DD)") + "\n")
		sb.WriteString(m.textRow(0, "Data", m.form.BirthDate))
	case stepPostalCode:
		sb.WriteString(m.textRow(0, "Codi postal", m.form.PostalCode))
	case stepHowFound:
		sb.WriteString(" " + metaStyle.Render("Com ens has conegut?") + "\n")
		sb.WriteString("   " + accentStyle.Render("← "+m.form.HowDidYouFindUs.Label()+" →") + "\n")
	case stepTerms:
		sb.WriteString(m.checkRow(0, "Accepto els termes i condicions", m.form.AcceptTerms))
		sb.WriteString(m.checkRow(1, "Accepto la política de privacitat", m.form.AcceptPrivacy))
	}

	if m.errMsg != "" {
		sb.WriteString("\n " + errStyle.Render(m.errMsg) + "\n")
	}
	if m.submitting {
		sb.WriteString("\n " + dimStyle.Render("Desant...") + "\n")
	}

	sb.WriteString("\n " + m.helpKeys() + "\n")
	return sb.String()
}

func stepProgress(step int) string {
	var b strings.Builder
	for i := 0; i < stepCount; i++ {
		if i == step {
			b.WriteString("●")
		} else {
			b.WriteString("○")
		}
		if i < stepCount-1 {
			b.WriteString(" ")
		}
	}
	return b.String()
}

func (m onboardingModel) textRow(idx int, label, value string) string {
	name := metaStyle.Render(label)
	cursor := " "
	if m.focus == idx {
		name = selectedStyle.Render(label)
		cursor = accentStyle.Render(">")
	}
	if value == "" {
		value = dimStyle.Render("—")
	} else {
		value = normalStyle.Render(value)
	}
	return " " + cursor + " " + name + "  " + value + "\n"
}

func (m onboardingModel) checkRow(idx int, label string, checked bool) string {
	box := dimStyle.Render("[ ]")
	if checked {
		box = okStyle.Render("[✓]")
	}
	name := normalStyle.Render(label)
	cursor := " "
	if m.focus == idx {
		name = selectedStyle.Render(label)
		cursor = accentStyle.Render(">")
	}
	return " " + cursor + " " + box + " " + name + "\n"
}

func (m onboardingModel) helpKeys() string {
	entries := []string{helpEntry("enter", "continuar")}
	if m.step > 0 {
		entries = append(entries, helpEntry("esc", "enrere"))
	}
	switch m.step {
	case stepName, stepTerms:
		entries = append(entries, helpEntry("tab", "camp"))
	case stepHowFound:
		entries = append(entries, helpEntry("h/l", "opció"))
	}
	if m.step == stepTerms {
		entries = append(entries, helpEntry("espai", "marcar"))
	}
	return strings.Join(entries, "  ")
}
