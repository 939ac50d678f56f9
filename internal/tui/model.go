package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/evolvenxt/tarschat/internal/chat"
	"github.com/evolvenxt/tarschat/internal/config"
	apierrors "github.com/evolvenxt/tarschat/internal/errors"
	"github.com/evolvenxt/tarschat/internal/models"
	"github.com/evolvenxt/tarschat/internal/render"
)

// Animation tick message
type animationTickMsg time.Time

// replyMsg carries a finished request back into the event loop
type replyMsg struct {
	res chat.Result
}

// Options configures the chat view
type Options struct {
	Markdown config.MarkdownConfig
	Logger   *zap.Logger
}

// Model represents the TUI state. All transcript and session state lives in
// the controller; the model only holds view state.
type Model struct {
	ctx      context.Context
	ctrl     *chat.Controller
	logger   *zap.Logger
	markdown config.MarkdownConfig

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	ready          bool
	animationFrame int
	err            error  // failure of the latest request, cleared on the next submit
	notice         string // feedback from slash commands

	selectingDataset bool
	datasetCursor    int

	focusButtons bool
	buttonCursor int

	// chartErrs holds IDs of messages whose chart failure was already logged
	chartErrs map[string]struct{}

	width  int
	height int
}

// NewChatModel creates the chat view around ctrl
func NewChatModel(ctx context.Context, ctrl *chat.Controller, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ta := textarea.New()
	ta.Placeholder = "Ask TARS about your data..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		ctx:       ctx,
		ctrl:      ctrl,
		logger:    logger,
		markdown:  opts.Markdown,
		textarea:  ta,
		spinner:   s,
		chartErrs: make(map[string]struct{}),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case replyMsg:
		m.applyReply(msg.res)

	case spinner.TickMsg:
		if m.ctrl.Busy() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.ctrl.Busy() {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch {
		case m.selectingDataset:
			return m.updateDatasetSelection(msg)
		case m.focusButtons:
			return m.updateButtons(msg)
		}
		return m.updateInput(msg)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// resize lays out the panels for a new terminal size
func (m *Model) resize(width, height int) {
	// Renderers are cached per wrap width; the old width's are dead weight now.
	if m.ready && width != m.width {
		m.logger.Debug("terminal resized, dropping cached renderers",
			zap.Int("width", width),
			zap.Int("option_sets", render.CacheSize()),
		)
		render.ClearCache()
	}
	m.width = width
	m.height = height

	headerHeight := 4
	inputHeight := 6
	statusHeight := 2
	padding := 2

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
	if vpHeight < 5 {
		vpHeight = 5
	}
	contentWidth := m.width - 4

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
	m.refresh()
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg.String() {
	case "esc":
		return m, tea.Quit

	case "enter":
		return m.submit()

	case "ctrl+d":
		m.openDatasetSelector()
		return m, nil

	case "tab":
		if _, buttons := m.activeButtons(); len(buttons) > 0 {
			m.focusButtons = true
			m.buttonCursor = 0
			m.textarea.Blur()
			m.updateViewport()
		}
		return m, nil

	case "pgup", "pgdown":
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	// The draft stays editable while a request is in flight
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.ctrl.SetDraft(m.textarea.Value())

	return m, tea.Batch(cmds...)
}

// submit sends the draft through the primary path. It does nothing for a blank
// draft or while a request is in flight.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if cmd, handled := m.runCommand(strings.TrimSpace(m.textarea.Value())); handled {
		return m, cmd
	}

	m.ctrl.SetDraft(m.textarea.Value())
	p, ok := m.ctrl.Submit()
	if !ok {
		return m, nil
	}

	m.textarea.Reset()
	m.err = nil
	m.notice = ""
	m.animationFrame = 0
	m.refresh()

	return m, tea.Batch(
		m.dispatch(p),
		m.spinner.Tick,
		animationTick(),
	)
}

// dispatch runs the request off the event loop
func (m Model) dispatch(p chat.Pending) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return replyMsg{res: ctrl.Dispatch(ctx, p)}
	}
}

func (m *Model) applyReply(res chat.Result) {
	current := m.ctrl.IsCurrent(res.Generation)
	m.ctrl.Apply(res)
	if current && res.Err != nil {
		m.err = res.Err
	}
	m.refresh()
}

// activeButtons returns the newest message showing options and its labels.
// Older button rows stay visible but are not focusable.
func (m Model) activeButtons() (string, []string) {
	msgs := m.ctrl.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].HasOptions() {
			return msgs[i].ID, msgs[i].Options
		}
	}
	return "", nil
}

func (m Model) updateButtons(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	_, buttons := m.activeButtons()
	if len(buttons) == 0 {
		m.blurButtons()
		return m, nil
	}

	switch msg.String() {
	case "esc", "tab":
		m.blurButtons()

	case "left", "h", "shift+tab", "up", "k":
		m.buttonCursor--
		if m.buttonCursor < 0 {
			m.buttonCursor = len(buttons) - 1
		}

	case "right", "l", "down", "j":
		m.buttonCursor++
		if m.buttonCursor >= len(buttons) {
			m.buttonCursor = 0
		}

	case "enter", " ":
		label := buttons[m.buttonCursor%len(buttons)]
		wasBusy := m.ctrl.Busy()
		m.blurButtons()

		p, ok := m.ctrl.SelectOption(label)
		if !ok {
			return m, nil
		}
		m.err = nil
		m.notice = ""
		m.refresh()

		if wasBusy {
			return m, m.dispatch(p)
		}
		m.animationFrame = 0
		return m, tea.Batch(m.dispatch(p), m.spinner.Tick, animationTick())
	}

	m.updateViewport()
	return m, nil
}

func (m *Model) blurButtons() {
	m.focusButtons = false
	m.buttonCursor = 0
	m.textarea.Focus()
	m.updateViewport()
}

func (m *Model) selectDataset(ds models.Dataset) {
	m.ctrl.SelectDataset(ds)
	m.refresh()
}

// refresh re-renders the transcript and scrolls to the newest message
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.updateViewport()
	m.viewport.GotoBottom()
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	if m.selectingDataset {
		return m.renderDatasetSelector()
	}

	var sections []string
	contentWidth := m.width - 4

	headerContent := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("✦ EvolveNXT AI"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render("Dataset "),
		datasetStyle.Render(m.ctrl.Dataset().DisplayName()),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	messagesPanel := messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(m.viewport.View())
	sections = append(sections, messagesPanel)

	label := inputLabelStyle.Render("You")
	if m.ctrl.Busy() {
		label = m.renderLoadingAnimation()
	}
	inputContent := lipgloss.JoinVertical(lipgloss.Left, label, m.textarea.View())
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.err != nil {
		sections = append(sections, m.formatError(m.err))
	} else if m.notice != "" {
		sections = append(sections, noticeStyle.Render("  "+m.notice))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderLoadingAnimation renders the animated waiting indicator
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "▓", "▒", "░"}

	frame := m.animationFrame

	spinColor := gradientColors[frame%len(gradientColors)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[frame%len(chars)])

	barWidth := 16
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + frame) % len(gradientColors)
		charIdx := (i + frame/2) % len(barChars)
		bar.WriteString(lipgloss.NewStyle().Foreground(gradientColors[colorIdx]).Render(barChars[charIdx]))
	}

	text := lipgloss.NewStyle().Foreground(colorText).
		Render(fmt.Sprintf(" %s is thinking ", models.DefaultAssistantName))

	return fmt.Sprintf("%s %s %s", spin, bar.String(), text)
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Tab", "Options"},
		{"Ctrl+D", "Dataset"},
		{"Esc", "Quit"},
	}
	if m.focusButtons {
		shortcuts = []struct {
			key  string
			desc string
		}{
			{"←→", "Choose"},
			{"Enter", "Select"},
			{"Esc", "Back"},
		}
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	opts := render.OptionsFromConfig(m.markdown, bubbleWidth-4)
	activeID, _ := m.activeButtons()

	for i, msg := range m.ctrl.Messages() {
		if i > 0 {
			content.WriteString("\n")
		}

		view := render.BuildView(msg)
		m.logChartError(msg, view)
		body := render.Body(view, opts)

		if msg.Role == models.RoleUser {
			content.WriteString(userLabelStyle.Render("● You"))
			content.WriteString("\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(body))
		} else {
			content.WriteString(assistantLabelStyle.Render("✦ " + models.DefaultAssistantName))
			content.WriteString("\n")
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(body))
		}

		if len(view.Buttons) > 0 {
			content.WriteString("\n")
			content.WriteString(m.renderButtons(view.Buttons, m.focusButtons && msg.ID == activeID))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

func (m Model) renderButtons(labels []string, focused bool) string {
	rendered := make([]string, len(labels))
	for i, label := range labels {
		style := buttonStyle
		if focused && i == m.buttonCursor {
			style = buttonFocusedStyle
		}
		rendered[i] = style.Render(label)
	}
	return buttonRowStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
}

// logChartError records a chart parse failure once per message
func (m *Model) logChartError(msg models.Message, view render.MessageView) {
	if view.ChartErr == nil {
		return
	}
	if _, seen := m.chartErrs[msg.ID]; seen {
		return
	}
	m.chartErrs[msg.ID] = struct{}{}
	m.logger.Warn("chart payload rendered as text",
		zap.String("message_id", msg.ID),
		zap.Error(view.ChartErr),
	)
}

// formatError shows a short hint for the latest failure. Details are in the log.
func (m Model) formatError(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(errorStyle.Render("  ⚠ No reply"))

	detailStyle := lipgloss.NewStyle().Foreground(colorTextDim).PaddingLeft(2)
	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(detailStyle.Render(fmt.Sprintf("HTTP %d", status)))
	}

	hint := ""
	switch {
	case apierrors.IsTimeoutError(err):
		hint = "The request timed out. Try again"
	case apierrors.IsNetworkError(err):
		hint = "Could not reach the chat API. Check api_base_url with 'tarschat config show'"
	case apierrors.IsParseError(err):
		hint = "The server sent a reply tarschat could not read"
	case apierrors.GetHTTPStatus(err) > 0:
		hint = "The chat API rejected the request"
	}
	if hint != "" {
		sb.WriteString(detailStyle.Render(hint))
	}
	return sb.String()
}

// RunChat starts the chat TUI and blocks until it exits
func RunChat(ctx context.Context, ctrl *chat.Controller, opts Options) error {
	m := NewChatModel(ctx, ctrl, opts)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	return err
}
