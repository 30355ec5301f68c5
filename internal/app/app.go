package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/tu613/vet-learning-app/internal/conversation"
	"github.com/tu613/vet-learning-app/internal/evaluation"
	"github.com/tu613/vet-learning-app/internal/grounding"
	"github.com/tu613/vet-learning-app/internal/llm"
	"github.com/tu613/vet-learning-app/internal/logger"
	"github.com/tu613/vet-learning-app/internal/persona"
	"github.com/tu613/vet-learning-app/internal/router"
	"github.com/tu613/vet-learning-app/internal/screen"
	"github.com/tu613/vet-learning-app/internal/screens/casedetail"
	"github.com/tu613/vet-learning-app/internal/screens/caseselect"
	"github.com/tu613/vet-learning-app/internal/screens/chat"
	"github.com/tu613/vet-learning-app/internal/screens/feedback"
	"github.com/tu613/vet-learning-app/internal/screens/history"
	"github.com/tu613/vet-learning-app/internal/screens/login"
	"github.com/tu613/vet-learning-app/internal/session"
	"github.com/tu613/vet-learning-app/internal/store"
	"github.com/tu613/vet-learning-app/internal/ui/layout"
)

// Chats is the owner conversation backend. *conversation.Driver
// implements it.
type Chats interface {
	session.ChatResetter
	Expect(key string)
	EnsureSession(ctx context.Context, key, prompt string) error
	SendUserTurn(ctx context.Context, t conversation.Transcript, text string) (conversation.Transcript, error)
}

// Grader grades a finished conversation. *evaluation.Evaluator
// implements it.
type Grader interface {
	Evaluate(ctx context.Context, in evaluation.Input) (*evaluation.Result, error)
}

// Options holds the dependencies the screens need.
type Options struct {
	Catalog   caseselect.Catalog
	Chats     Chats
	Evaluator Grader
	History   store.PracticeHistory // optional
	Persona   persona.Options

	// Timeout bounds each text-generation call. Zero means no deadline.
	Timeout time.Duration

	Log *logger.Logger
}

// Results of background work. epoch ties each one to the chat entry that
// started it so replies for an abandoned conversation are dropped.
type (
	sessionReadyMsg struct {
		epoch int
		err   error
	}
	turnDoneMsg struct {
		epoch      int
		transcript conversation.Transcript
		err        error
	}
	evaluationDoneMsg struct {
		epoch  int
		result *evaluation.Result
		err    error
	}
)

// AppModel is the root Bubble Tea model. It owns the session machine and
// keeps the bottom of the router stack in step with the machine's screen.
type AppModel struct {
	opts    Options
	log     *logger.Logger
	machine *session.Machine
	router  *router.Router
	shown   session.Screen
	width   int
	height  int
}

// New creates the root model on the login screen.
func New(opts Options) *AppModel {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	return &AppModel{
		opts:    opts,
		log:     log,
		machine: session.NewMachine(opts.Chats),
		router:  router.New(login.New()),
		shown:   session.ScreenLogin,
	}
}

// State returns the current session state.
func (m *AppModel) State() session.State {
	return m.machine.State()
}

func (m *AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}

	case screen.LoginMsg:
		m.apply("login", m.machine.Login(session.User{Name: msg.Name, Role: session.ParseRole(msg.Role)}))
		return m, m.sync()

	case screen.LogoutMsg:
		m.machine.Logout()
		return m, m.sync()

	case screen.SelectCaseMsg:
		m.apply("select case", m.machine.SelectCase(msg.Case))
		return m, m.sync()

	case screen.StartChatMsg:
		return m, m.startChat()

	case screen.BackMsg:
		m.apply("back", m.machine.Back())
		return m, m.sync()

	case screen.SendTurnMsg:
		return m, m.sendTurn(msg.Text)

	case screen.EndSessionMsg:
		return m, m.endSession()

	case screen.BackToListMsg:
		m.apply("back to list", m.machine.BackToList())
		return m, m.sync()

	case screen.OpenHistoryMsg:
		st := m.machine.State()
		if m.opts.History == nil || st.User == nil {
			m.machine.SetNotice("Practice history is not available.")
			return m, nil
		}
		return m, m.router.Push(history.New(m.opts.History, st.User.Name))

	case sessionReadyMsg:
		if msg.err != nil && msg.epoch == m.machine.State().ChatEpoch {
			m.machine.SetNotice("Could not reach the owner. " + llm.Describe(msg.err))
		}
		return m, nil

	case turnDoneMsg:
		if msg.epoch != m.machine.State().ChatEpoch {
			m.log.Debug("dropping stale owner reply", "epoch", msg.epoch)
			return m, nil
		}
		result := screen.TurnResultMsg{}
		if msg.err != nil {
			result.Err = msg.err
			var se *conversation.SendError
			if errors.As(msg.err, &se) {
				result.Text = se.Text
			}
		} else {
			m.machine.UpdateTranscript(msg.epoch, msg.transcript)
		}
		return m, m.router.Update(result)

	case evaluationDoneMsg:
		if msg.epoch != m.machine.State().ChatEpoch {
			return m, nil
		}
		if msg.err != nil {
			m.apply("fail evaluation", m.machine.FailEvaluation(msg.err))
		} else {
			m.apply("complete evaluation", m.machine.CompleteEvaluation(msg.result))
		}
		return m, m.sync()
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// apply logs a rejected transition. The machine leaves its state untouched
// in that case, so there is nothing else to do.
func (m *AppModel) apply(trigger string, err error) {
	if err != nil {
		m.log.Debug("transition rejected", "trigger", trigger, "screen", m.machine.Screen().String(), "error", err)
	}
}

// sync enforces the login guard and swaps the base screen when the
// machine moved to a different step.
func (m *AppModel) sync() tea.Cmd {
	m.machine.Enforce()
	st := m.machine.State()
	if st.Screen == m.shown {
		return nil
	}
	m.shown = st.Screen
	return m.router.Reset(m.screenFor(st))
}

func (m *AppModel) screenFor(st session.State) screen.Screen {
	switch st.Screen {
	case session.ScreenCaseSelection:
		return caseselect.New(m.opts.Catalog)
	case session.ScreenCaseDetail:
		return casedetail.New(*st.Case)
	case session.ScreenChat:
		return chat.New(m.machine)
	case session.ScreenFeedback:
		return feedback.New(m.machine)
	}
	return login.New()
}

func (m *AppModel) callContext() (context.Context, context.CancelFunc) {
	if m.opts.Timeout > 0 {
		return context.WithTimeout(context.Background(), m.opts.Timeout)
	}
	return context.WithCancel(context.Background())
}

func chatKey(caseID string, epoch int) string {
	return fmt.Sprintf("%s#%d", caseID, epoch)
}

func (m *AppModel) startChat() tea.Cmd {
	st := m.machine.State()
	if st.Case == nil {
		return nil
	}
	prompt := persona.Build(*st.Case, m.opts.Persona)
	if err := m.machine.StartChat(prompt); err != nil {
		m.apply("start chat", err)
		return m.sync()
	}

	epoch := m.machine.State().ChatEpoch
	chats := m.opts.Chats
	key := chatKey(prompt.CaseID, epoch)
	chats.Expect(key)
	ensure := func() tea.Msg {
		ctx, cancel := m.callContext()
		defer cancel()
		return sessionReadyMsg{epoch: epoch, err: chats.EnsureSession(ctx, key, prompt.Text)}
	}
	return tea.Batch(m.sync(), ensure)
}

func (m *AppModel) sendTurn(text string) tea.Cmd {
	st := m.machine.State()
	if st.Screen != session.ScreenChat {
		return nil
	}
	epoch, transcript, prompt := st.ChatEpoch, st.Transcript, st.OwnerPrompt
	chats := m.opts.Chats
	key := chatKey(prompt.CaseID, epoch)
	return func() tea.Msg {
		ctx, cancel := m.callContext()
		defer cancel()
		if err := chats.EnsureSession(ctx, key, prompt.Text); err != nil {
			return turnDoneMsg{epoch: epoch, transcript: transcript, err: &conversation.SendError{Text: text, Err: err}}
		}
		t, err := chats.SendUserTurn(ctx, transcript, text)
		return turnDoneMsg{epoch: epoch, transcript: t, err: err}
	}
}

func (m *AppModel) endSession() tea.Cmd {
	if err := m.machine.BeginEvaluation(); err != nil {
		m.apply("end session", err)
		return nil
	}
	st := m.machine.State()
	in := evaluation.Input{Transcript: st.Transcript}
	if st.User != nil {
		in.UserName, in.UserRole = st.User.Name, string(st.User.Role)
	}
	if st.Case != nil {
		in.Case = *st.Case
	}
	epoch := st.ChatEpoch
	catalog, grader := m.opts.Catalog, m.opts.Evaluator
	return func() tea.Msg {
		ctx, cancel := m.callContext()
		defer cancel()
		ref := catalog.Reference(ctx)
		in.MethodologyContext = grounding.FormatMethodology(ref.Steps)
		in.ChecklistContext = grounding.FormatChecklist(ref.Stages)
		res, err := grader.Evaluate(ctx, in)
		return evaluationDoneMsg{epoch: epoch, result: res, err: err}
	}
}

func (m *AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	st := m.machine.State()
	title := ""
	if active := m.router.Active(); active != nil {
		title = active.Title()
	}
	user := ""
	if st.User != nil {
		user = fmt.Sprintf("%s (%s)", st.User.Name, st.User.Role)
	}

	header := layout.RenderHeader(title, user, m.width)
	notice := layout.RenderNotice(st.Notice, m.width)
	footer := layout.RenderFooter(m.keyHints(), m.width)

	top := header
	if notice != "" {
		top += "\n" + notice
	}
	content := m.router.View(m.width, layout.ContentHeight(m.height, top, footer))

	v.SetContent(layout.RenderFrame(header, notice, content, footer, m.width, m.height))
	return v
}

func (m *AppModel) keyHints() []layout.KeyHint {
	if p, ok := m.router.Active().(screen.KeyHintProvider); ok {
		return p.KeyHints()
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
