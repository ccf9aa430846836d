package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/projectsoma/soma/internal/browser"
	"github.com/projectsoma/soma/internal/store"
	"github.com/projectsoma/soma/pkg/domain"
)

type productsLoadedMsg struct {
	list *domain.ProductList
	err  error
}

type checkoutMsg struct {
	url string
	err error
}

type productsModel struct {
	store *store.Store
	user  *domain.User

	products []domain.Product // flattened, grouped by type
	groups   []int            // index into products where each group starts
	cursor   int
	loading  bool
	err      string

	confirmOpen bool
	checkingOut bool
	statusMsg   string
	width       int
	height      int
}

func newProductsModel(s *store.Store, user *domain.User) productsModel {
	return productsModel{store: s, user: user, loading: true}
}

func (m productsModel) Init() tea.Cmd {
	return m.load()
}

func (m productsModel) load() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		list, err := s.Products(context.Background())
		return productsLoadedMsg{list: list, err: err}
	}
}

func (m productsModel) checkout(p domain.Product) tea.Cmd {
	s := m.store
	userID := m.user.ID
	return func() tea.Msg {
		url, err := s.CheckoutURL(context.Background(), p.ID, userID)
		if err != nil {
			return checkoutMsg{err: err}
		}
		// Open the hosted checkout and keep the URL on the clipboard in
		// case the browser never shows up.
		_ = browser.Open(url)
		_ = clipboard.WriteAll(url)
		return checkoutMsg{url: url}
	}
}

func (m productsModel) Update(msg tea.Msg) (productsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case productsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.err = ""
		m.products = m.products[:0]
		m.groups = m.groups[:0]
		for _, t := range domain.ProductTypes {
			items := msg.list.Items[t]
			if len(items) == 0 {
				continue
			}
			m.groups = append(m.groups, len(m.products))
			m.products = append(m.products, items...)
		}
		if m.cursor >= len(m.products) {
			m.cursor = 0
		}
		return m, nil

	case checkoutMsg:
		m.checkingOut = false
		m.confirmOpen = false
		if msg.err != nil {
			m.statusMsg = errStyle.Render("Error al iniciar la compra: " + msg.err.Error())
			return m, nil
		}
		m.statusMsg = okStyle.Render("Pàgina de pagament oberta al navegador (URL copiada)")
		return m, nil

	case tea.KeyMsg:
		if m.confirmOpen {
			switch msg.String() {
			case "y", "s", "enter":
				if !m.checkingOut && m.cursor < len(m.products) {
					m.checkingOut = true
					return m, m.checkout(m.products[m.cursor])
				}
			case "n", "esc":
				m.confirmOpen = false
			}
			return m, nil
		}

		m.statusMsg = ""
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.products)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "r":
			m.loading = true
			return m, m.load()
		case "enter", "b":
			if m.cursor < len(m.products) {
				m.confirmOpen = true
			}
		}
	}
	return m, nil
}

func (m productsModel) View() string {
	var sb strings.Builder
	sb.WriteString(" " + titleStyle.Render("Productes") + "\n\n")

	switch {
	case m.loading && len(m.products) == 0:
		sb.WriteString(" " + dimStyle.Render("carregant productes..."))
	case m.err != "":
		sb.WriteString(" " + errStyle.Render("error: "+m.err))
	case len(m.products) == 0:
		sb.WriteString(" " + dimStyle.Render("cap producte disponible"))
	default:
		groupSet := make(map[int]bool, len(m.groups))
		for _, g := range m.groups {
			groupSet[g] = true
		}
		for i, p := range m.products {
			if groupSet[i] {
				if i > 0 {
					sb.WriteString("\n")
				}
				sb.WriteString(" " + metaStyle.Render(productGroup(p).Label()) + "\n")
			}
			line := m.productRow(p)
			if i == m.cursor {
				line = selectedRowBg.Render("> " + line)
			} else {
				line = "  " + line
			}
			sb.WriteString(" " + line + "\n")
		}
	}

	if m.confirmOpen && m.cursor < len(m.products) {
		p := m.products[m.cursor]
		sb.WriteString("\n " + selectedStyle.Render(fmt.Sprintf("Comprar %s per %s?", p.Name, p.StringifiedPrice)) + "\n")
		if m.checkingOut {
			sb.WriteString(" " + dimStyle.Render("Obrint la pàgina de pagament...") + "\n")
		} else {
			sb.WriteString(" " + helpEntry("s", "comprar") + "  " + helpEntry("n", "rebutjar") + "\n")
		}
	}
	if m.statusMsg != "" {
		sb.WriteString("\n " + m.statusMsg)
	}
	return sb.String()
}

func (m productsModel) productRow(p domain.Product) string {
	name := normalStyle.Render(fmt.Sprintf("%-32s", truncStr(p.Name, 32)))
	price := accentStyle.Render(p.StringifiedPrice)
	detail := dimStyle.Render(recurringSummary(p.Recurring))
	return name + "  " + price + "  " + detail
}

func productGroup(p domain.Product) domain.ProductType {
	if p.Recurring != nil {
		return p.Recurring.Type
	}
	return domain.ProductPack
}

// recurringSummary renders a short entitlement line for a catalog row.
func recurringSummary(r *domain.Recurring) string {
	if r == nil {
		return ""
	}
	switch r.Type {
	case domain.ProductPack:
		kind := "classes"
		if r.IncludesReformer {
			kind = "classes reformer"
		}
		return fmt.Sprintf("%d %s", r.Count, kind)
	case domain.ProductSubscription:
		kind := "classes"
		if r.IncludesReformer {
			kind = "reformer"
		}
		return fmt.Sprintf("%d %s/setmana", r.AmountPerWeek, kind)
	case domain.ProductSubscriptionCombo:
		return fmt.Sprintf("%d reformer + %d altres/setmana", r.AmountReformerPerWeek, r.AmountOtherPerWeek)
	default:
		return ""
	}
}

func (m productsModel) helpKeys() string {
	return helpEntry("j/k", "navegar") + "  " + helpEntry("enter", "comprar") + "  " + helpEntry("r", "refrescar")
}
