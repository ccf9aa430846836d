// Package tui implements the terminal client for the Soma studio:
// timetable browsing and booking, the product catalog, the member
// profile and, for staff, session management and attendance.
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/projectsoma/soma/internal/store"
	"github.com/projectsoma/soma/pkg/domain"
)

type view int

const (
	viewTimetable view = iota
	viewProducts
	viewMe
	viewAttendance
	viewOnboarding
)

// App is the root model. It owns the tab chrome and routes messages to
// the active sub-model. A user who has not completed onboarding is held
// on the wizard until it succeeds.
type App struct {
	store *store.Store
	user  *domain.User

	view       view
	timetable  timetableModel
	products   productsModel
	me         meModel
	attendance attendanceModel
	onboarding onboardingModel

	width  int
	height int
}

// NewApp builds the root model for the given authenticated user. The
// language code is stamped on the profile when onboarding completes.
func NewApp(s *store.Store, user *domain.User, language string) App {
	app := App{
		store:      s,
		user:       user,
		timetable:  newTimetableModel(s, user),
		products:   newProductsModel(s, user),
		me:         newMeModel(s, user),
		attendance: newAttendanceModel(s),
		onboarding: newOnboardingModel(s, user, language),
	}
	if user.NeedsOnboarding() {
		app.view = viewOnboarding
	}
	return app
}

func (a App) Init() tea.Cmd {
	if a.view == viewOnboarding {
		return a.onboarding.Init()
	}
	return a.timetable.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		var cmds []tea.Cmd
		var cmd tea.Cmd
		a.timetable, cmd = a.timetable.Update(msg)
		cmds = append(cmds, cmd)
		a.products, cmd = a.products.Update(msg)
		cmds = append(cmds, cmd)
		a.me, cmd = a.me.Update(msg)
		cmds = append(cmds, cmd)
		a.attendance, cmd = a.attendance.Update(msg)
		cmds = append(cmds, cmd)
		a.onboarding, cmd = a.onboarding.Update(msg)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)

	case onboardingDoneMsg:
		var cmd tea.Cmd
		a.onboarding, cmd = a.onboarding.Update(msg)
		if msg.err == nil && msg.user != nil {
			a.user = msg.user
			a.view = viewTimetable
			return a, a.timetable.Init()
		}
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.view != viewOnboarding && !a.capturingText() {
			switch msg.String() {
			case "q":
				if !a.inOverlay() {
					return a, tea.Quit
				}
			case "1":
				if a.view != viewTimetable {
					a.view = viewTimetable
					return a, a.timetable.Init()
				}
				return a, nil
			case "2":
				if a.view != viewProducts {
					a.view = viewProducts
					return a, a.products.Init()
				}
				return a, nil
			case "3":
				if a.view != viewMe {
					a.view = viewMe
					return a, a.me.Init()
				}
				return a, nil
			case "4":
				if a.user.IsStaff() && a.view != viewAttendance {
					a.view = viewAttendance
					return a, a.attendance.Init()
				}
				return a, nil
			}
		}
	}

	return a.updateActive(msg)
}

// capturingText reports whether the active view is consuming raw key
// input, which disables single-key tab switching.
func (a App) capturingText() bool {
	switch a.view {
	case viewTimetable:
		return a.timetable.form != nil
	case viewOnboarding:
		return true
	default:
		return false
	}
}

// inOverlay reports whether the active view has a detail or dialog open
// that claims "q" for itself.
func (a App) inOverlay() bool {
	switch a.view {
	case viewTimetable:
		return a.timetable.detail || a.timetable.confirmDelete || a.timetable.confirmCancel
	case viewMe:
		return a.me.pickerOpen || a.me.confirm != confirmNone
	case viewAttendance:
		return a.attendance.session != nil
	default:
		return false
	}
}

func (a App) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.view {
	case viewTimetable:
		a.timetable, cmd = a.timetable.Update(msg)
	case viewProducts:
		a.products, cmd = a.products.Update(msg)
	case viewMe:
		a.me, cmd = a.me.Update(msg)
	case viewAttendance:
		a.attendance, cmd = a.attendance.Update(msg)
	case viewOnboarding:
		a.onboarding, cmd = a.onboarding.Update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	if a.view == viewOnboarding {
		return "\n" + a.onboarding.View()
	}

	var content, help string
	switch a.view {
	case viewTimetable:
		content = a.timetable.View()
		help = a.timetable.helpKeys()
	case viewProducts:
		content = a.products.View()
		help = a.products.helpKeys()
	case viewMe:
		content = a.me.View()
		help = a.me.helpKeys()
	case viewAttendance:
		content = a.attendance.View()
		help = a.attendance.helpKeys()
	}

	header := a.viewTabs()
	footer := " " + help + "  " + helpEntry("q", "sortir")

	if a.height > 0 {
		// Reserve two lines for header and two for footer.
		content = truncateToHeight(content, a.height-4)
	}
	return header + "\n" + content + "\n\n" + footer
}

func (a App) viewTabs() string {
	type tab struct {
		key   string
		label string
		v     view
	}
	tabs := []tab{
		{"1", "Horari", viewTimetable},
		{"2", "Productes", viewProducts},
		{"3", "Perfil", viewMe},
	}
	if a.user.IsStaff() {
		tabs = append(tabs, tab{"4", "Assistència", viewAttendance})
	}

	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		label := t.key + " " + t.label
		if t.v == a.view {
			parts = append(parts, accentStyle.Render(label))
		} else {
			parts = append(parts, dimStyle.Render(label))
		}
	}
	name := titleStyle.Render("soma")
	return " " + name + "  " + strings.Join(parts, "  ")
}
