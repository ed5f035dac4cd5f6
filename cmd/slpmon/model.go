package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"slpv2/slp"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	tableStyle  = table.DefaultStyles()
)

func init() {
	tableStyle.Header = tableStyle.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	tableStyle.Selected = tableStyle.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
}

type tickMsg time.Time

// model is the slpmon dashboard: a polling view over a live Daemon's
// registry and traffic.
type model struct {
	daemon     *slp.Daemon
	refresh    time.Duration
	interfaces []string
	table      table.Model
	lastDraw   time.Time
}

func newModel(daemon *slp.Daemon, refresh time.Duration) model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Interface", Width: 15},
			{Title: "Service Type", Width: 24},
			{Title: "URL", Width: 40},
			{Title: "Lifetime", Width: 10},
			{Title: "Remaining", Width: 10},
		}),
		table.WithFocused(false),
		table.WithHeight(20),
	)
	t.SetStyles(tableStyle)

	return model{
		daemon:     daemon,
		refresh:    refresh,
		interfaces: daemon.Interfaces(),
		table:      t,
	}
}

func (m model) Init() tea.Cmd {
	return tickCmd(m.refresh)
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		m.table.SetRows(m.buildRows())
		m.lastDraw = time.Time(msg)
		return m, tickCmd(m.refresh)
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

type regRow struct {
	iface       string
	serviceType string
	url         string
	lifetime    uint16
	remaining   time.Duration
}

func (m model) buildRows() []table.Row {
	now := time.Now()
	var regs []regRow
	for _, iface := range m.interfaces {
		snap := m.daemon.Snapshot(iface)
		for url, rec := range snap {
			remaining := time.Duration(0)
			if rec.Lifetime != slp.NoExpiry {
				deadline := rec.RegisteredAt.Add(time.Duration(rec.Lifetime) * time.Second)
				remaining = deadline.Sub(now)
				if remaining < 0 {
					remaining = 0
				}
			}
			regs = append(regs, regRow{
				iface:       iface,
				serviceType: rec.ServiceType,
				url:         url,
				lifetime:    rec.Lifetime,
				remaining:   remaining,
			})
		}
	}

	sort.Slice(regs, func(i, j int) bool {
		if regs[i].iface != regs[j].iface {
			return regs[i].iface < regs[j].iface
		}
		if regs[i].serviceType != regs[j].serviceType {
			return regs[i].serviceType < regs[j].serviceType
		}
		return regs[i].url < regs[j].url
	})

	rows := make([]table.Row, 0, len(regs))
	for _, r := range regs {
		rows = append(rows, table.Row{
			r.iface,
			r.serviceType,
			truncate(r.url, 40),
			formatLifetime(r.lifetime),
			formatRemaining(r.remaining, r.lifetime),
		})
	}
	return rows
}

func formatLifetime(l uint16) string {
	if l == slp.NoExpiry {
		return "permanent"
	}
	return fmt.Sprintf("%ds", l)
}

func formatRemaining(d time.Duration, l uint16) string {
	if l == slp.NoExpiry {
		return "-"
	}
	return d.Round(time.Second).String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func (m model) View() string {
	header := headerStyle.Render(fmt.Sprintf("slpmon — %d interface(s), updated %s", len(m.interfaces), m.lastDraw.Format("15:04:05")))
	footer := footerStyle.Render("q to quit")
	return fmt.Sprintf("%s\n\n%s\n\n%s\n\n%s\n", header, m.table.View(), m.activityView(), footer)
}

func (m model) activityView() string {
	summaries := m.daemon.ActivitySnapshot()
	if len(summaries) == 0 {
		return footerStyle.Render("no traffic observed yet")
	}
	lines := make([]string, 0, len(summaries)+1)
	lines = append(lines, headerStyle.Render("Traffic"))
	for _, s := range summaries {
		lines = append(lines, fmt.Sprintf("  %-15s total=%-4d %s", s.Interface, s.Total, formatCounts(s.Counts)))
	}
	return strings.Join(lines, "\n")
}

func formatCounts(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, counts[name]))
	}
	return strings.Join(parts, " ")
}
