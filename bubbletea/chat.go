package bubbletea

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/enciclo/control"
)

// ChatHelp is the status line of an idle chat.
const ChatHelp = "Enter to ask, Ctrl+C to quit"

// AskFunc answers one question. It blocks until the answer arrives or ctx
// is cancelled.
type AskFunc func(ctx context.Context, question string) (string, error)

// ChatModel asks questions and shows the rendered answers.
type ChatModel struct {
	// Input is the question input. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable transcript. Exported for test access.
	Viewport viewport.Model
	// Spinner animates while a question is pending.
	Spinner spinner.Model

	ctx    context.Context
	ask    AskFunc
	theme  control.Theme
	styles Styles
	expiry <-chan struct{}

	watch
	blocks []Block
	asking bool
	cancel context.CancelFunc
	err    error
	width  int
	height int
	ready  bool
}

// NewChat creates a chat screen. expired may be nil.
func NewChat(ctx context.Context, ask AskFunc, theme control.Theme, expired <-chan struct{}) ChatModel {
	in := textinput.New()
	in.Placeholder = "Ask a question..."
	in.Prompt = ""
	in.CharLimit = 0
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return ChatModel{
		Input:   in,
		Spinner: sp,
		ctx:     ctx,
		ask:     ask,
		theme:   theme,
		styles:  NewStyles(theme),
		expiry:  expired,
	}
}

// Asking reports whether a question is pending.
func (m ChatModel) Asking() bool { return m.asking }

// Err returns the error of the last question, if any.
func (m ChatModel) Err() error { return m.err }

// Expired reports whether the session expired while the screen was open.
func (m ChatModel) Expired() bool { return m.expired }

// LoginRequested reports whether the user left the expiry modal asking to
// log in again.
func (m ChatModel) LoginRequested() bool { return m.login }

// Init implements tea.Model.
func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, listenForExpiry(m.ctx, m.expiry))
}

// Update implements tea.Model.
func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case AnswerMsg:
		m.asking = false
		m.cancel = nil
		switch {
		case msg.Err != nil && errors.Is(msg.Err, context.Canceled):
		case msg.Err != nil:
			m.err = msg.Err
			m.blocks = append(m.blocks, NewErrorBlock(msg.Err, m.styles))
		default:
			m.blocks = append(m.blocks, NewAnswerBlock(msg.Answer, m.theme))
		}
		m.refresh()
		return m, m.Input.Focus()

	case ExpiredMsg:
		m.expired = true
		if m.cancel != nil {
			m.cancel()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.asking {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	if !m.asking {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m ChatModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.expired {
		return m.modal(m.styles, m.width, m.height)
	}
	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m ChatModel) resize(msg tea.WindowSizeMsg) ChatModel {
	m.width, m.height = msg.Width, msg.Height
	// Status and input lines plus their separators.
	h := max(msg.Height-4, 1)
	if !m.ready {
		m.Viewport = viewport.New(msg.Width, h)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = h
	}
	m.Input.Width = msg.Width
	m.refresh()
	return m
}

func (m ChatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.expired {
		switch {
		case msg.Type == tea.KeyEnter:
			m.login = true
			return m, tea.Quit
		case msg.Type == tea.KeyCtrlC, msg.Type == tea.KeyEsc, msg.String() == "q":
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.asking && m.cancel != nil {
			m.cancel()
			return m, nil
		}
		return m, tea.Quit
	case tea.KeyEnter:
		if m.asking {
			return m, nil
		}
		q := strings.TrimSpace(m.Input.Value())
		if q == "" {
			return m, nil
		}
		return m.submit(q)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	// Runes go to the input only; 'j' and 'k' also scroll the viewport.
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	if !m.asking {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m ChatModel) submit(q string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.Input.Blur()
	m.err = nil
	m.blocks = append(m.blocks, NewQuestionBlock(q, m.styles))
	m.refresh()

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.asking = true
	ask := m.ask
	return m, tea.Batch(m.Spinner.Tick, func() tea.Msg {
		defer cancel()
		answer, err := ask(ctx, q)
		return AnswerMsg{Answer: answer, Err: err}
	})
}

func (m *ChatModel) refresh() {
	if !m.ready {
		return
	}
	views := make([]string, len(m.blocks))
	for i, b := range m.blocks {
		views[i] = b.View(m.Viewport.Width)
	}
	m.Viewport.SetContent(strings.Join(views, "\n\n"))
	m.Viewport.GotoBottom()
}

func (m ChatModel) statusLine() string {
	switch {
	case m.asking:
		return m.Spinner.View() + m.styles.Muted.Render(" Waiting for the answer...")
	case m.err != nil:
		return m.styles.Error.Render("Error: " + m.err.Error())
	}
	return m.styles.Muted.Render(ChatHelp)
}
