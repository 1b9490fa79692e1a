package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stablecam/stablecam/internal/device"
	"github.com/stablecam/stablecam/internal/events"
	"github.com/stablecam/stablecam/internal/monitor"
)

// eventBufferSize bounds the bus-to-UI channel. Events beyond this while the
// UI is busy are dropped; the next refresh re-reads the registry anyway.
const eventBufferSize = 32

// Styles for the dashboard chrome.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	connectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	disconnectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("203"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)
)

// devicesMsg carries a fresh registry snapshot into the model.
type devicesMsg []device.RegisteredDevice

// busEventMsg carries one bus event into the model.
type busEventMsg struct {
	eventType events.Type
	stableID  string
	label     string
}

// registeredMsg reports the outcome of a register action.
type registeredMsg struct {
	count int
	err   error
}

// errMsg carries a failure into the model.
type errMsg struct{ err error }

// Model is the bubbletea model for the monitor dashboard.
type Model struct {
	mgr     *monitor.Manager
	bus     *events.Bus
	events  chan busEventMsg
	subs    map[events.Type]int
	table   table.Model
	spinner spinner.Model

	lastEvent string
	status    string
	err       error
	quitting  bool
}

// New creates the dashboard model and subscribes it to the event bus.
func New(mgr *monitor.Manager, bus *events.Bus) (*Model, error) {
	columns := []table.Column{
		{Title: "Stable ID", Width: 16},
		{Title: "Label", Width: 28},
		{Title: "Status", Width: 12},
		{Title: "VID:PID", Width: 10},
		{Title: "Last Seen", Width: 20},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("62"))
	t.SetStyles(styles)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		mgr:     mgr,
		bus:     bus,
		events:  make(chan busEventMsg, eventBufferSize),
		subs:    make(map[events.Type]int),
		table:   t,
		spinner: sp,
		status:  "watching",
	}

	for _, et := range events.AllTypes() {
		et := et
		id, err := bus.Subscribe(et, func(dev *device.RegisteredDevice) {
			select {
			case m.events <- busEventMsg{eventType: et, stableID: dev.StableID, label: dev.DeviceInfo.Label}:
			default:
			}
		})
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("subscribing dashboard: %w", err)
		}
		m.subs[et] = id
	}

	return m, nil
}

// Close removes the model's bus subscriptions.
func (m *Model) Close() {
	for et, id := range m.subs {
		m.bus.Unsubscribe(et, id) //nolint:errcheck // Best effort on teardown
		delete(m.subs, et)
	}
}

// Init starts the spinner and loads the first registry snapshot.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refreshCmd(), m.waitForEvent())
}

// refreshCmd reads the registry snapshot off the UI goroutine.
func (m *Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		devices, err := m.mgr.List()
		if err != nil {
			return errMsg{err}
		}
		return devicesMsg(devices)
	}
}

// waitForEvent blocks on the bus channel until the next event arrives.
func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// registerCmd registers every detected camera not yet in the registry.
func (m *Model) registerCmd() tea.Cmd {
	return func() tea.Msg {
		cameras, err := m.mgr.Detect()
		if err != nil {
			return registeredMsg{err: err}
		}

		created := 0
		for _, cam := range cameras {
			_, isNew, err := m.mgr.Register(cam)
			if err != nil {
				return registeredMsg{err: err}
			}
			if isNew {
				created++
			}
		}
		return registeredMsg{count: created}
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.Close()
			return m, tea.Quit
		case "r":
			m.status = "registering"
			return m, m.registerCmd()
		}

	case devicesMsg:
		m.table.SetRows(rowsFromDevices(msg))
		return m, nil

	case busEventMsg:
		m.lastEvent = fmt.Sprintf("%s %s (%s)", msg.eventType, msg.stableID, msg.label)
		return m, tea.Batch(m.refreshCmd(), m.waitForEvent())

	case registeredMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = "watching"
			return m, nil
		}
		m.status = "watching"
		m.lastEvent = fmt.Sprintf("registered %d new camera(s)", msg.count)
		return m, m.refreshCmd()

	case errMsg:
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the dashboard.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	view := titleStyle.Render("StableCam Monitor") + "\n\n"
	view += m.table.View() + "\n"

	line := m.spinner.View() + " " + m.status
	if m.lastEvent != "" {
		line += "  |  last: " + m.lastEvent
	}
	view += statusStyle.Render(line) + "\n"

	if m.err != nil {
		view += disconnectedStyle.Render("error: "+m.err.Error()) + "\n"
	}

	view += helpStyle.Render("r register new cameras · q quit")
	return view
}

// rowsFromDevices converts a registry snapshot to table rows.
func rowsFromDevices(devices []device.RegisteredDevice) []table.Row {
	rows := make([]table.Row, 0, len(devices))
	for _, d := range devices {
		lastSeen := "never"
		if d.LastSeen != nil {
			lastSeen = d.LastSeen.Local().Format("2006-01-02 15:04:05")
		}

		status := string(d.Status)
		switch d.Status {
		case device.StatusConnected:
			status = connectedStyle.Render(status)
		case device.StatusDisconnected, device.StatusError:
			status = disconnectedStyle.Render(status)
		}

		rows = append(rows, table.Row{
			d.StableID,
			d.DeviceInfo.Label,
			status,
			d.DeviceInfo.VendorID + ":" + d.DeviceInfo.ProductID,
			lastSeen,
		})
	}
	return rows
}

// Run starts the dashboard and blocks until the user quits.
func Run(mgr *monitor.Manager, bus *events.Bus) error {
	m, err := New(mgr, bus)
	if err != nil {
		return err
	}
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}

	// Drain any event queued between quit and teardown.
	for {
		select {
		case <-m.events:
		default:
			return nil
		}
	}
}
