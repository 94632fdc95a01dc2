// Package progress renders a terminal progress bar for long batch loops
// such as level conversion and clip assembly. On a TTY it runs a Bubble
// Tea program around a bubbles progress bar; otherwise it falls back to
// periodic log lines so output stays readable in pipelines.
package progress

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

var labelStyle = lipgloss.NewStyle().Bold(true)

// Bar tracks the completion of a fixed-size batch of work.
type Bar struct {
	label string
	total int
	done  int

	prog   *tea.Program
	finish chan struct{}
	logger *log.Logger
}

// New starts a progress bar for total units of work labelled with label.
// Call Add as units complete and Finish when the loop ends.
func New(logger *log.Logger, label string, total int) *Bar {
	b := &Bar{label: label, total: total, logger: logger}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return b
	}

	b.finish = make(chan struct{})
	b.prog = tea.NewProgram(newModel(label), tea.WithoutSignalHandler())
	go func() {
		defer close(b.finish)
		if _, err := b.prog.Run(); err != nil {
			logger.Warn("progress bar failed", "err", err)
		}
	}()
	return b
}

// Add marks n more units as done.
func (b *Bar) Add(n int) {
	b.done += n
	if b.total <= 0 {
		return
	}
	ratio := float64(b.done) / float64(b.total)
	if b.prog != nil {
		b.prog.Send(ratioMsg(ratio))
		return
	}
	// log roughly every tenth outside a TTY
	step := b.total / 10
	if step == 0 || b.done%step == 0 || b.done == b.total {
		b.logger.Info(b.label, "done", b.done, "total", b.total)
	}
}

// Finish stops the bar and waits for the terminal to be restored.
func (b *Bar) Finish() {
	if b.prog == nil {
		return
	}
	b.prog.Send(ratioMsg(1))
	b.prog.Quit()
	<-b.finish
}

type ratioMsg float64

type model struct {
	label string
	bar   progress.Model
	ratio float64
	width int
}

func newModel(label string) model {
	return model{
		label: label,
		bar:   progress.New(progress.WithDefaultGradient()),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = msg.Width - len(m.label) - 12
		if m.bar.Width < 10 {
			m.bar.Width = 10
		}
		return m, nil

	case ratioMsg:
		m.ratio = float64(msg)
		if m.ratio >= 1 {
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m model) View() string {
	var sb strings.Builder
	sb.WriteString(labelStyle.Render(m.label))
	sb.WriteString(" ")
	sb.WriteString(m.bar.ViewAs(m.ratio))
	sb.WriteString(fmt.Sprintf(" %3.0f%%", m.ratio*100))
	sb.WriteString("\n")
	return sb.String()
}
