package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/projectsoma/soma/pkg/domain"
)

var (
	// Base styles — soma neutral palette
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Accent / action styles — studio coral
	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f07860")).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f0a890")).
			Bold(true)

	// Status line
	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4ade80"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fbbc04"))

	// Selected row background
	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e1e2a"))

	// Session type colors — matches the web timetable palette
	sessionColors = map[domain.SessionType]lipgloss.Color{
		domain.SessionReformer:        lipgloss.Color("#4285f4"),
		domain.SessionPilatesMat:      lipgloss.Color("#34a853"),
		domain.SessionBarre:           lipgloss.Color("#fbbc04"),
		domain.SessionFitMix:          lipgloss.Color("#ea4335"),
		domain.SessionPilatesMatElder: lipgloss.Color("#6cc08a"),
		domain.SessionFitMixElder:     lipgloss.Color("#f08080"),
	}

	// Reservation status colors
	reservationColors = map[domain.ReservationStatus]lipgloss.Color{
		domain.ReservationConfirmed:   lipgloss.Color("#4ade80"),
		domain.ReservationWaitingList: lipgloss.Color("#fbbc04"),
		domain.ReservationCancelled:   lipgloss.Color("#606878"),
		domain.ReservationAttended:    lipgloss.Color("#60a0e0"),
		domain.ReservationNoShow:      lipgloss.Color("#e06060"),
	}
)

// SessionTypeStyle returns a bold style colored for the class type.
func SessionTypeStyle(t domain.SessionType) lipgloss.Style {
	if c, ok := sessionColors[t]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0")).Bold(true)
}

// ReservationStatusStyle returns a style colored for a reservation
// status.
func ReservationStatusStyle(s domain.ReservationStatus) lipgloss.Style {
	if c, ok := reservationColors[s]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return dimStyle
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}
