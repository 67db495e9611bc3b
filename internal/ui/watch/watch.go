// File: internal/ui/watch/watch.go

// Package watch polls an object's archive status in a terminal UI until a
// pending restore completes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cosctl/pkg/archive"
	"cosctl/pkg/storage"
)

// ErrInterrupted is returned when the user quits before the restore finished
var ErrInterrupted = errors.New("watch interrupted")

// StatusFunc fetches the current archive status of the watched object
type StatusFunc func(ctx context.Context) (storage.ArchiveStatus, error)

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	hintStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	stateStyles = map[archive.State]lipgloss.Style{
		archive.StateNormal:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		archive.StateRestored:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		archive.StateRestoring: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		archive.StateArchive:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	}
)

type statusMsg struct {
	status storage.ArchiveStatus
	err    error
}

type tickMsg time.Time

type Model struct {
	ctx      context.Context
	fetch    StatusFunc
	interval time.Duration
	label    string

	spinner  spinner.Model
	status   *storage.ArchiveStatus
	polls    int
	err      error
	done     bool
	quitting bool
}

func New(ctx context.Context, label string, fetch StatusFunc, interval time.Duration) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return Model{
		ctx:      ctx,
		fetch:    fetch,
		interval: interval,
		label:    label,
		spinner:  s,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.poll())
}

func (m Model) poll() tea.Cmd {
	return func() tea.Msg {
		status, err := m.fetch(m.ctx)
		return statusMsg{status: status, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case statusMsg:
		m.polls++
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		status := msg.status
		m.status = &status
		if status.Status.State != archive.StateRestoring {
			m.done = true
			return m, tea.Quit
		}
		return m, tea.Tick(m.interval, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})

	case tickMsg:
		return m, m.poll()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	}
	if m.done {
		return fmt.Sprintf("%s is %s\n", m.label, renderState(m.status.Status))
	}

	var sb strings.Builder
	sb.WriteString(m.spinner.View())
	sb.WriteString(" Waiting for restore of ")
	sb.WriteString(m.label)
	if m.status != nil {
		fmt.Fprintf(&sb, " (state %s, %d checks)", renderState(m.status.Status), m.polls)
	}
	sb.WriteString("\n")
	sb.WriteString(hintStyle.Render(fmt.Sprintf("checking every %s, press q to quit", m.interval)))
	sb.WriteString("\n")
	return sb.String()
}

// Result returns the last observed status
func (m Model) Result() (storage.ArchiveStatus, error) {
	if m.err != nil {
		return storage.ArchiveStatus{}, m.err
	}
	var status storage.ArchiveStatus
	if m.status != nil {
		status = *m.status
	}
	if m.quitting && !m.done {
		return status, ErrInterrupted
	}
	return status, nil
}

func renderState(s archive.Status) string {
	style, ok := stateStyles[s.State]
	if !ok {
		return string(s.State)
	}
	return style.Render(string(s.State))
}

// Run shows the watch UI until the object leaves the restoring state, the user
// quits or ctx is done
func Run(ctx context.Context, label string, fetch StatusFunc, interval time.Duration, in io.Reader, out io.Writer) (storage.ArchiveStatus, error) {
	p := tea.NewProgram(
		New(ctx, label, fetch, interval),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)

	final, err := p.Run()
	if err != nil {
		return storage.ArchiveStatus{}, fmt.Errorf("error running status watch: %w", err)
	}
	return final.(Model).Result()
}
