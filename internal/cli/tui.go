package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/gutterview/pkg/pipeline"
	"github.com/matzehuels/gutterview/pkg/solver/worker"
	"github.com/matzehuels/gutterview/pkg/store"
)

// =============================================================================
// solveModel - live view of a running solve
// =============================================================================

type snapshotMsg worker.Snapshot

type solveDoneMsg struct {
	sol    pipeline.Solution
	cached bool
	err    error
}

type tickMsg time.Time

// solveModel shows the best cost of a running solve as it improves.
// q or ctrl+c cancels the solve; the best order so far is kept.
type solveModel struct {
	title  string
	nodes  int
	edges  int
	chains int
	start  time.Time

	latest  worker.Snapshot
	history []uint32

	updates <-chan worker.Snapshot
	results <-chan solveDoneMsg
	cancel  context.CancelFunc

	done   bool
	result solveDoneMsg
}

const sparkWidth = 48

func newSolveModel(title string, nodes, edges, chains int, updates <-chan worker.Snapshot,
	results <-chan solveDoneMsg, cancel context.CancelFunc) solveModel {
	return solveModel{
		title:   title,
		nodes:   nodes,
		edges:   edges,
		chains:  chains,
		start:   time.Now(),
		updates: updates,
		results: results,
		cancel:  cancel,
	}
}

func (m solveModel) Init() tea.Cmd {
	return tea.Batch(waitSnapshot(m.updates), waitResult(m.results), tick())
}

func waitSnapshot(ch <-chan worker.Snapshot) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(s)
	}
}

func waitResult(ch <-chan solveDoneMsg) tea.Cmd {
	return func() tea.Msg { return <-ch }
}

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m solveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancel()
		}
	case snapshotMsg:
		m.latest = worker.Snapshot(msg)
		m.history = append(m.history, msg.Cost)
		if len(m.history) > sparkWidth {
			m.history = m.history[len(m.history)-sparkWidth:]
		}
		return m, waitSnapshot(m.updates)
	case solveDoneMsg:
		m.done = true
		m.result = msg
		return m, tea.Quit
	case tickMsg:
		if !m.done {
			return m, tick()
		}
	}
	return m, nil
}

func (m solveModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d nodes · %d edges · %d chains · q stop", m.nodes, m.edges, m.chains)))
	b.WriteString("\n\n")

	cost := "—"
	if len(m.history) > 0 {
		cost = fmt.Sprintf("%d", m.latest.Cost)
	}
	b.WriteString(styleKey.Render("best cost") + " " + StyleNumber.Render(cost) + "\n")
	b.WriteString(styleKey.Render("batches") + " " + StyleValue.Render(fmt.Sprintf("%d", m.latest.Batches)) + "\n")
	b.WriteString(styleKey.Render("steps") + " " + StyleValue.Render(fmt.Sprintf("%d", m.latest.Steps)) + "\n")
	b.WriteString(styleKey.Render("elapsed") + " " + StyleValue.Render(time.Since(m.start).Round(100*time.Millisecond).String()) + "\n")
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(colorCyan).Render(sparkline(m.history, sparkWidth)))
	b.WriteString("\n")

	return b.String()
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// sparkline draws the last width values, scaled between their min and max.
func sparkline(vals []uint32, width int) string {
	if len(vals) > width {
		vals = vals[len(vals)-width:]
	}
	if len(vals) == 0 {
		return ""
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		lo, hi = min(lo, v), max(hi, v)
	}
	out := make([]rune, len(vals))
	for i, v := range vals {
		k := 0
		if hi > lo {
			k = int(uint64(v-lo) * uint64(len(sparkRunes)-1) / uint64(hi-lo))
		}
		out[i] = sparkRunes[k]
	}
	return string(out)
}

// =============================================================================
// Run table
// =============================================================================

// runsTable renders stored runs as a bordered table.
func runsTable(runs []store.Run) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, len(runs))
	for i, r := range runs {
		status := iconSuccess
		if r.Error != "" {
			status = iconError
		}
		rows[i] = []string{
			status,
			r.ID,
			shortHash(r.GraphHash),
			fmt.Sprintf("%d", r.Nodes),
			fmt.Sprintf("%d", r.Cost),
			r.Elapsed.Round(time.Millisecond).String(),
			formatRelativeTime(r.CreatedAt, time.Now()),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Run", "Graph", "Nodes", "Cost", "Elapsed", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(runs) {
				return lipgloss.NewStyle()
			}
			if col == 0 {
				if runs[row].Error != "" {
					return StyleError
				}
				return StyleSuccess
			}
			if col == 4 {
				return StyleNumber
			}
			return StyleValue
		})

	return t.Render()
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
