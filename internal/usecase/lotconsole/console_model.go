// Package lotconsole renders a live terminal view of the lot ledger: the lot
// list on the left, the selected lot's report and event trail on the right.
package lotconsole

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/thiagodalladea/bebida-segura/internal/ports"
	"github.com/thiagodalladea/bebida-segura/internal/usecase/tracking"
)

const maxShownEvents = 6

type Options struct {
	StateFilter     string
	RefreshInterval time.Duration
}

type consoleModel struct {
	ctx             context.Context
	service         *tracking.Service
	stateFilter     string
	refreshInterval time.Duration

	lots          []ports.Lot
	selectedIndex int
	detail        tracking.LotDetail
	events        []ports.LotEvent
	hasDetail     bool
	status        string
}

type lotsLoadedMsg struct {
	items []ports.Lot
	err   error
}

type detailLoadedMsg struct {
	lotID  uint64
	detail tracking.LotDetail
	events []ports.LotEvent
	err    error
}

type tickMsg struct{}

func NewConsoleModel(ctx context.Context, service *tracking.Service, options Options) tea.Model {
	interval := options.RefreshInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	return &consoleModel{
		ctx:             ctx,
		service:         service,
		stateFilter:     strings.TrimSpace(options.StateFilter),
		refreshInterval: interval,
		status:          "loading",
	}
}

func (m *consoleModel) Init() tea.Cmd {
	return tea.Batch(m.loadLotsCmd(), m.tickCmd())
}

func (m *consoleModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case tickMsg:
		return m, tea.Batch(m.loadLotsCmd(), m.tickCmd())
	case lotsLoadedMsg:
		if msg.err != nil {
			m.status = "load failed: " + msg.err.Error()
			return m, nil
		}
		m.lots = msg.items
		if m.selectedIndex >= len(m.lots) {
			m.selectedIndex = 0
		}
		m.status = fmt.Sprintf("%d lots", len(m.lots))
		return m, m.loadDetailCmd()
	case detailLoadedMsg:
		if msg.err != nil {
			m.status = "detail failed: " + msg.err.Error()
			return m, nil
		}
		if selected, ok := m.selectedLot(); ok && selected.LotID == msg.lotID {
			m.detail = msg.detail
			m.events = msg.events
			m.hasDetail = true
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.loadLotsCmd()
		case "j", "down":
			if m.selectedIndex < len(m.lots)-1 {
				m.selectedIndex++
				m.hasDetail = false
				return m, m.loadDetailCmd()
			}
		case "k", "up":
			if m.selectedIndex > 0 {
				m.selectedIndex--
				m.hasDetail = false
				return m, m.loadDetailCmd()
			}
		}
	}
	return m, nil
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	blockedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

func (m *consoleModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("bebida-segura — lot ledger"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(m.status))
	b.WriteString("\n\n")

	for i, item := range m.lots {
		line := fmt.Sprintf("#%d %s [%s]", item.LotID, item.ExternalCode, item.State)
		if item.State == "BLOCKED" {
			line = blockedStyle.Render(line)
		}
		if i == m.selectedIndex {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.hasDetail {
		b.WriteString("\n")
		b.WriteString(m.renderDetail())
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("j/k select · r refresh · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m *consoleModel) renderDetail() string {
	var b strings.Builder
	lot := m.detail.Lot

	b.WriteString(labelStyle.Render("product: "))
	b.WriteString(lot.Description)
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("manufacturer: "))
	b.WriteString(lot.Manufacturer)
	b.WriteString("\n")
	if lot.BlockReason != nil {
		b.WriteString(blockedStyle.Render("blocked: " + *lot.BlockReason))
		b.WriteString("\n")
	}
	if lot.Destination != nil {
		b.WriteString(labelStyle.Render("destination: "))
		b.WriteString(*lot.Destination)
		b.WriteString("\n")
	}

	report := m.detail.Report
	if report.Performed {
		verdict := "REJECTED"
		if report.Approved {
			verdict = "APPROVED"
		}
		b.WriteString(fmt.Sprintf("lab report: %s, methanol %d ppm (limit %d)\n",
			verdict, report.MethanolPPM, m.service.MethanolLimitPPM()))
	} else {
		b.WriteString(labelStyle.Render("lab report: not registered"))
		b.WriteString("\n")
	}

	shown := m.events
	if len(shown) > maxShownEvents {
		shown = shown[len(shown)-maxShownEvents:]
	}
	for _, event := range shown {
		b.WriteString(fmt.Sprintf("  %s %s\n", labelStyle.Render(event.RecordedAt), event.Type))
	}
	return b.String()
}

func (m *consoleModel) selectedLot() (ports.Lot, bool) {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.lots) {
		return ports.Lot{}, false
	}
	return m.lots[m.selectedIndex], true
}

func (m *consoleModel) loadLotsCmd() tea.Cmd {
	return func() tea.Msg {
		filter := ports.LotFilter{}
		if m.stateFilter != "" {
			filter.States = []string{strings.ToUpper(m.stateFilter)}
		}
		items, err := m.service.ListLots(m.ctx, filter)
		return lotsLoadedMsg{items: items, err: err}
	}
}

func (m *consoleModel) loadDetailCmd() tea.Cmd {
	selected, ok := m.selectedLot()
	if !ok {
		return nil
	}
	lotID := selected.LotID
	return func() tea.Msg {
		detail, err := m.service.GetLotDetail(m.ctx, lotID)
		if err != nil {
			return detailLoadedMsg{lotID: lotID, err: err}
		}
		events, err := m.service.ListLotEvents(m.ctx, lotID)
		return detailLoadedMsg{lotID: lotID, detail: detail, events: events, err: err}
	}
}

func (m *consoleModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}
