// Package tui provides the Bubble Tea front end of the interactive client.
//
// The model is a read-eval-print loop: a text input with the session
// prompt, a spinner while a command runs and a progress bar during batch
// downloads. Command output is printed above the prompt so it scrolls
// like a regular terminal session.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/dmx/internal/download"
	"github.com/handiism/dmx/internal/interactive"
)

// Handler executes input lines. *interactive.Interpreter implements it.
type Handler interface {
	HandleLine(ctx context.Context, line string) interactive.Effect
	Prompt() string
}

// Options configures the model.
type Options struct {
	// InitialQuery is run as the first command when set.
	InitialQuery string

	// Verbose shows LevelVerbose download events.
	Verbose bool

	// Banner lines are printed once at startup.
	Banner []string
}

// Feed carries progress from collaborator callbacks into the program.
// Sends never block; updates are dropped when the program falls behind.
type Feed struct {
	ch chan tea.Msg
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{ch: make(chan tea.Msg, 64)}
}

// Progress forwards batch progress. Pass it to Interpreter.OnProgress.
func (f *Feed) Progress(p interactive.Progress) {
	f.send(progressMsg(p))
}

// Event forwards dispatcher events. Pass it to download.NewDispatcher.
func (f *Feed) Event(e download.ProgressEvent) {
	f.send(eventMsg(e))
}

func (f *Feed) send(msg tea.Msg) {
	select {
	case f.ch <- msg:
	default:
	}
}

func (f *Feed) wait(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-f.ch:
			return msg
		case <-ctx.Done():
			return nil
		}
	}
}

// Message types
type (
	// progressMsg is a batch progress update.
	progressMsg interactive.Progress

	// eventMsg is a dispatcher event.
	eventMsg download.ProgressEvent

	// submitMsg runs a line as if it had been typed.
	submitMsg string

	// effectMsg is sent when a command completes.
	effectMsg struct {
		Effect interactive.Effect
	}
)

// Model is the Bubble Tea model for the interactive client.
type Model struct {
	handler   Handler
	feed      *Feed
	opts      Options
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model

	// Session context and the context of the running command
	ctx       context.Context
	cancel    context.CancelFunc
	cmdCancel context.CancelFunc

	// prompt is read from the handler only while idle
	prompt  string
	busy    bool
	running string
	batch   interactive.Progress

	history []string
	histPos int

	quitting bool
}

// NewModel creates a new model bound to handler. feed may be nil.
func NewModel(ctx context.Context, handler Handler, feed *Feed, opts Options) Model {
	if feed == nil {
		feed = NewFeed()
	}

	ti := textinput.New()
	ti.Placeholder = "search, or h for help"
	prompt := handler.Prompt()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(ctx)

	return Model{
		handler:   handler,
		feed:      feed,
		opts:      opts,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		ctx:       ctx,
		cancel:    cancel,
		prompt:    prompt,
	}
}

// Init prints the banner and runs the initial query, if any.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick, m.feed.wait(m.ctx)}
	if len(m.opts.Banner) > 0 {
		cmds = append(cmds, tea.Println(renderBanner(m.opts.Banner)))
	}
	if q := strings.TrimSpace(m.opts.InitialQuery); q != "" {
		cmds = append(cmds, func() tea.Msg { return submitMsg(q) })
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		m.textInput.Width = max(msg.Width-len(m.prompt)-2, 20)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			m.quitting = true
			return m, tea.Sequence(tea.Println(warningStyle.Render("Interrupted")), tea.Quit)

		case "esc":
			if m.busy && m.cmdCancel != nil {
				m.cmdCancel()
				return m, nil
			}

		case "enter":
			if m.busy {
				return m, nil
			}
			line := m.textInput.Value()
			m.textInput.SetValue("")
			return m.submit(line)

		case "up", "down":
			if !m.busy {
				m.recall(msg.String() == "up")
				return m, nil
			}
		}

	case submitMsg:
		if !m.busy {
			return m.submit(string(msg))
		}
		return m, nil

	case effectMsg:
		return m.finish(msg.Effect)

	case progressMsg:
		m.batch = interactive.Progress(msg)
		var percent float64
		if m.batch.Total > 0 {
			percent = float64(m.batch.Done) / float64(m.batch.Total)
		}
		cmds = append(cmds, m.progress.SetPercent(percent), m.feed.wait(m.ctx))

	case eventMsg:
		cmds = append(cmds, m.feed.wait(m.ctx))
		if msg.Level != download.LevelVerbose || m.opts.Verbose {
			cmds = append(cmds, tea.Println(renderEvent(download.ProgressEvent(msg))))
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Input is inert while a command runs
	if !m.busy {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// submit echoes line and runs it in the background.
func (m Model) submit(line string) (Model, tea.Cmd) {
	echo := tea.Println(promptStyle.Render(m.prompt) + line)
	if strings.TrimSpace(line) == "" {
		return m, echo
	}
	m.history = append(m.history, line)
	m.histPos = len(m.history)

	ctx, cancel := context.WithCancel(m.ctx)
	m.busy = true
	m.running = line
	m.cmdCancel = cancel
	m.batch = interactive.Progress{}

	handler := m.handler
	run := func() tea.Msg {
		defer cancel()
		return effectMsg{Effect: handler.HandleLine(ctx, line)}
	}
	return m, tea.Sequence(echo, run)
}

// finish prints the effect of a completed command.
func (m Model) finish(effect interactive.Effect) (Model, tea.Cmd) {
	m.busy = false
	m.running = ""
	m.cmdCancel = nil
	m.batch = interactive.Progress{}
	m.prompt = m.handler.Prompt()
	m.textInput.Prompt = promptStyle.Render(m.prompt)

	var cmds []tea.Cmd
	if out := Render(effect); out != "" {
		cmds = append(cmds, tea.Println(out))
	}
	if effect.Kind == interactive.EffectQuit {
		m.cancel()
		m.quitting = true
		cmds = append(cmds, tea.Quit)
	}
	return m, tea.Sequence(cmds...)
}

// recall moves through the input history.
func (m *Model) recall(older bool) {
	if len(m.history) == 0 {
		return
	}
	if older {
		m.histPos = max(m.histPos-1, 0)
	} else {
		m.histPos = min(m.histPos+1, len(m.history))
	}
	if m.histPos == len(m.history) {
		m.textInput.SetValue("")
		return
	}
	m.textInput.SetValue(m.history[m.histPos])
	m.textInput.CursorEnd()
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.busy {
		return m.textInput.View() + "\n" + dimStyle.Render(helpText)
	}

	var b strings.Builder
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(m.running))
	b.WriteString("\n")
	if m.batch.Total > 0 {
		b.WriteString(m.progress.View())
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(progressLine(m.batch)))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("esc: cancel • ctrl+c: quit"))
	return b.String()
}

const helpText = "enter: run • up/down: history • h: help • q: quit"

// Run starts the interactive client and blocks until the user quits.
func Run(ctx context.Context, handler Handler, feed *Feed, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, handler, feed, opts))
	_, err := p.Run()
	return err
}
