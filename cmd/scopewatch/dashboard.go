package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/keenanlab/scopecache"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	gaugeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	leakStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// DemoCmd runs the simulated workload under a live dashboard.
type DemoCmd struct {
	Config    string `help:"Path to config file." type:"path"`
	Verbose   bool   `help:"Verbose logging." short:"v"`
	LeakEvery int    `help:"Forget every Nth detach to exercise leak detection." default:"-1"`
}

// Run executes the demo command.
func (c *DemoCmd) Run() error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("demo needs a TTY; use 'scopewatch serve' for headless operation")
	}

	cfg, logger, err := loadConfig(c.Config, c.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()
	if c.LeakEvery >= 0 {
		cfg.Demo.LeakEvery = c.LeakEvery
	}

	p := tea.NewProgram(newDashboard(), tea.WithAltScreen())
	w := newWorkload(cfg.Demo, scopecache.ObserverFunc(func(e scopecache.Event) {
		p.Send(eventMsg(e))
	}))
	w.start()
	defer w.stop()

	_, err = p.Run()
	return err
}

// eventMsg delivers a cache lifecycle event to the dashboard.
type eventMsg scopecache.Event

type tickMsg time.Time

type keyStats struct {
	loads    int
	failures int
	removed  int
}

// dashboardModel renders live store and scope activity.
type dashboardModel struct {
	table    table.Model
	stats    map[string]*keyStats
	recent   []string
	attached int
	leaks    int
	started  time.Time
}

func newDashboard() dashboardModel {
	columns := []table.Column{
		{Title: "Key", Width: 16},
		{Title: "Loads", Width: 8},
		{Title: "Errors", Width: 8},
		{Title: "Removed", Width: 8},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(10),
		table.WithFocused(true),
	)
	return dashboardModel{
		table:   t,
		stats:   make(map[string]*keyStats),
		started: time.Now(),
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m dashboardModel) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case tickMsg:
		return m, tickCmd()
	case eventMsg:
		m.apply(scopecache.Event(msg))
		m.table.SetRows(m.rows())
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *dashboardModel) apply(e scopecache.Event) {
	switch e.Type {
	case scopecache.EventLoaded:
		m.keyStats(e.Key).loads++
	case scopecache.EventLoadFailed:
		m.keyStats(e.Key).failures++
	case scopecache.EventEvicted, scopecache.EventPurged:
		m.keyStats(e.Key).removed++
	case scopecache.EventAttached:
		m.attached++
	case scopecache.EventDetached:
		m.attached--
	case scopecache.EventLeaked:
		m.attached--
		m.leaks++
	}

	line := e.Type.String()
	if e.Key != "" {
		line += " " + e.Key
	}
	if e.Scope != "" {
		line += " " + e.Scope
	}
	m.recent = append(m.recent, line)
	if len(m.recent) > 6 {
		m.recent = m.recent[len(m.recent)-6:]
	}
}

func (m *dashboardModel) keyStats(key string) *keyStats {
	s, ok := m.stats[key]
	if !ok {
		s = &keyStats{}
		m.stats[key] = s
	}
	return s
}

func (m dashboardModel) rows() []table.Row {
	keys := make([]string, 0, len(m.stats))
	for k := range m.stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]table.Row, 0, len(keys))
	for _, k := range keys {
		s := m.stats[k]
		rows = append(rows, table.Row{
			k,
			strconv.Itoa(s.loads),
			strconv.Itoa(s.failures),
			strconv.Itoa(s.removed),
		})
	}
	return rows
}

// View implements tea.Model.
func (m dashboardModel) View() string {
	out := titleStyle.Render("scopewatch") + "\n\n"
	out += m.table.View() + "\n\n"

	out += gaugeStyle.Render(fmt.Sprintf("attached scopes: %d", m.attached))
	if m.leaks > 0 {
		out += "   " + leakStyle.Render(fmt.Sprintf("leaked scopes: %d", m.leaks))
	}
	out += "\n"

	for _, line := range m.recent {
		out += helpStyle.Render(line) + "\n"
	}

	out += helpStyle.Render(fmt.Sprintf("up %s · q to quit", time.Since(m.started).Round(time.Second)))
	return out
}
