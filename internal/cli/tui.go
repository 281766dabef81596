package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/mavcrawl/pkg/crawl"
	"github.com/matzehuels/mavcrawl/pkg/observability"
)

// Event list styles
var (
	eventResolvedStyle = lipgloss.NewStyle().Foreground(colorGreen)
	eventFailedStyle   = lipgloss.NewStyle().Foreground(colorRed)
	eventSkippedStyle  = lipgloss.NewStyle().Foreground(colorDim)
	eventActiveStyle   = lipgloss.NewStyle().Foreground(colorCyan)
)

// maxEvents is the number of recent transitions kept on screen.
const maxEvents = 12

// =============================================================================
// Messages
// =============================================================================

type stateMsg struct {
	coord string
	state crawl.State
	err   error
	at    time.Time
}

type probeMsg struct {
	deps     int
	duration time.Duration
	err      error
}

type doneMsg struct {
	stats crawl.Stats
	err   error
}

type tickMsg time.Time

// tuiHooks forwards crawl events to a running program.
type tuiHooks struct {
	p *tea.Program
}

func (h *tuiHooks) OnState(_ context.Context, coord, state string, err error) {
	h.p.Send(stateMsg{coord: coord, state: crawl.State(state), err: err, at: time.Now()})
}

func (h *tuiHooks) OnProbe(_ context.Context, _ string, deps int, d time.Duration, err error) {
	h.p.Send(probeMsg{deps: deps, duration: d, err: err})
}

// =============================================================================
// CrawlModel - Live crawl progress
// =============================================================================

// CrawlModel is the bubbletea model for the live crawl view.
type CrawlModel struct {
	Title  string
	Counts map[crawl.State]int
	Active map[string]bool
	Events []stateMsg
	Probes int
	// ProbeTime is the summed duration of all probes.
	ProbeTime time.Duration
	Started   time.Time
	Now       time.Time
	Done      *doneMsg
	Quitting  bool

	cancel context.CancelFunc
}

// NewCrawlModel creates a model. cancel is called when the user quits early.
func NewCrawlModel(title string, cancel context.CancelFunc) CrawlModel {
	now := time.Now()
	return CrawlModel{
		Title:   title,
		Counts:  make(map[crawl.State]int),
		Active:  make(map[string]bool),
		Started: now,
		Now:     now,
		cancel:  cancel,
	}
}

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m CrawlModel) Init() tea.Cmd {
	return tick()
}

func (m CrawlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quitting = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case stateMsg:
		m.Counts[msg.state]++
		switch {
		case msg.state == crawl.StateFetching:
			m.Active[msg.coord] = true
		case msg.state.Terminal():
			delete(m.Active, msg.coord)
		}
		if msg.state != crawl.StateDiscovered {
			m.Events = append(m.Events, msg)
			if len(m.Events) > maxEvents {
				m.Events = m.Events[len(m.Events)-maxEvents:]
			}
		}
	case probeMsg:
		m.Probes++
		m.ProbeTime += msg.duration
	case tickMsg:
		m.Now = time.Time(msg)
		return m, tick()
	case doneMsg:
		m.Done = &msg
		m.Now = time.Now()
		return m, tea.Quit
	}
	return m, nil
}

// inFlight is the number of coordinates between fetching and a terminal state.
func (m CrawlModel) inFlight() int {
	return len(m.Active)
}

func (m CrawlModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(m.Now.Sub(m.Started).Round(time.Second).String()))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q quit"))
	b.WriteString("\n\n")

	counts := []string{
		fmt.Sprintf("%s %d", StyleDim.Render("discovered"), m.Counts[crawl.StateDiscovered]),
		fmt.Sprintf("%s %d", StyleDim.Render("in flight"), m.inFlight()),
		fmt.Sprintf("%s %s", StyleDim.Render("resolved"), eventResolvedStyle.Render(fmt.Sprint(m.Counts[crawl.StateResolved]))),
		fmt.Sprintf("%s %d", StyleDim.Render("skipped"), m.Counts[crawl.StateSkipped]),
		fmt.Sprintf("%s %s", StyleDim.Render("failed"), eventFailedStyle.Render(fmt.Sprint(m.Counts[crawl.StateFailed]))),
	}
	b.WriteString("  " + strings.Join(counts, StyleDim.Render(" · ")))
	b.WriteString("\n")
	if m.Probes > 0 {
		avg := (m.ProbeTime / time.Duration(m.Probes)).Round(time.Millisecond)
		b.WriteString("  " + StyleDim.Render(fmt.Sprintf("%d probes, avg %s", m.Probes, avg)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.Events) > 0 {
		rows := make([][]string, 0, len(m.Events))
		for _, e := range m.Events {
			detail := ""
			if e.err != nil {
				detail = truncate(e.err.Error(), 60)
			}
			rows = append(rows, []string{e.at.Format("15:04:05"), string(e.state), e.coord, detail})
		}
		headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
			Headers("Time", "State", "Coordinate", "Detail").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == -1 {
					return headerStyle
				}
				if row >= len(m.Events) || col != 1 {
					return lipgloss.NewStyle()
				}
				return stateStyle(m.Events[row].state)
			})
		b.WriteString(t.Render())
		b.WriteString("\n")
	}

	if m.Done != nil {
		b.WriteString("\n")
		if m.Done.err != nil {
			b.WriteString(eventFailedStyle.Render(iconError + " " + m.Done.err.Error()))
		} else {
			b.WriteString(eventResolvedStyle.Render(iconSuccess + " done"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func stateStyle(s crawl.State) lipgloss.Style {
	switch s {
	case crawl.StateResolved:
		return eventResolvedStyle
	case crawl.StateFailed:
		return eventFailedStyle
	case crawl.StateSkipped:
		return eventSkippedStyle
	default:
		return eventActiveStyle
	}
}

// =============================================================================
// Runner
// =============================================================================

// runWithTUI runs work while a live view renders its crawl events. Logging
// is muted while the view owns the terminal. Quitting the view cancels work.
func (c *CLI) runWithTUI(ctx context.Context, title string, work func(context.Context) (crawl.Stats, error)) (crawl.Stats, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewCrawlModel(title, cancel), tea.WithOutput(os.Stderr))

	prev := observability.Crawl()
	observability.SetCrawlHooks(&tuiHooks{p: p})
	defer observability.SetCrawlHooks(prev)

	c.Logger.SetOutput(io.Discard)
	defer c.Logger.SetOutput(os.Stderr)

	type result struct {
		stats crawl.Stats
		err   error
	}
	done := make(chan result, 1)
	go func() {
		stats, err := work(ctx)
		done <- result{stats, err}
		p.Send(doneMsg{stats: stats, err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return crawl.Stats{}, err
	}
	r := <-done
	return r.stats, r.err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
