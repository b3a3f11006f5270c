package tui

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/dmcore/engine"
	"github.com/nathoo/dmcore/engine/state"
	"github.com/nathoo/dmcore/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for meta-command output
}

// Model is the Bubble Tea model for the DMCore TUI.
type Model struct {
	engine     *engine.Engine
	resetState func() *types.WorldState

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated transcript lines (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
}

// stepMsg carries a turn result from the engine into the Update loop.
type stepMsg struct {
	input    string   // echoed player input (empty for intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// New creates a TUI model wired to the given engine.
func New(eng *engine.Engine) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		engine:     eng,
		resetState: state.Default,
		input:      ti,
		history:    NewHistory(100),
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine) error {
	m := New(eng)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces the intro text.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		ws := m.engine.State

		title := "DMCore"
		if ws.Campaign.Title != "" {
			title = ws.Campaign.Title
		}

		lines := []string{
			title,
			"",
			fmt.Sprintf("Day %d, %s. You are in %s.", ws.Clock.Day, ws.Clock.Phase, ws.Location.Name),
			"",
			"Type your action (e.g. \"investigate the missing courier at the market\").",
			"Unrecognized actions trigger clarification. /help for commands.",
		}

		return stepMsg{lines: lines}
	}
}

// Update handles messages (key presses, window resize, turn output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case stepMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(stepMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	// Player action or clarification answer.
	res, err := m.engine.Step(input)
	if errors.Is(err, engine.ErrBusy) {
		m = m.appendOutput(stepMsg{
			input: input, lines: []string{"Hold on — the current turn is still resolving."}, isSystem: true,
		})
		return m, nil
	}

	var lines []string
	for _, msg := range res.Messages {
		if msg.Role == types.RoleUser {
			continue
		}
		lines = append(lines, msg.Content)
	}
	if m.trace {
		lines = append(lines, m.formatTrace(res)...)
	}
	m = m.appendOutput(stepMsg{input: input, lines: lines})
	m.syncPrompt()
	return m, nil
}

// syncPrompt reflects clarification progress in the input prompt.
func (m *Model) syncPrompt() {
	if m.engine.Clarifying() {
		answered, total := m.engine.ClarifyProgress()
		m.input.Prompt = fmt.Sprintf("(%d/%d)> ", answered, total)
	} else {
		m.input.Prompt = "> "
	}
}

// appendOutput adds lines to the transcript and refreshes the viewport.
func (m Model) appendOutput(msg stepMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current
// width and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "/quit", "/exit":
		return []string{"Farewell."}, true

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/log":
		return m.cmdLog(args), false

	case "/inv":
		return m.cmdInventory(args), false

	case "/quest":
		return m.cmdQuest(args), false

	case "/roll":
		return m.cmdRoll(args), false

	case "/setup":
		return m.cmdSetup(args), false

	case "/export":
		return m.cmdExport(args), false

	case "/import":
		return m.cmdImport(args), false

	case "/reset":
		if err := m.engine.Reset(m.resetState()); err != nil {
			return []string{"Reset failed: " + err.Error()}, false
		}
		m.syncPrompt()
		return []string{"World and logs reset."}, false

	case "/clear":
		if err := m.engine.ClearLogs(); err != nil {
			return []string{"Clear failed: " + err.Error()}, false
		}
		m.rawLines = nil
		return []string{"Chat history and event log cleared."}, false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdHelp() []string {
	return []string{
		"Commands:",
		"  /state                  — World and character overview",
		"  /log [n]                — Recent event log entries (newest first)",
		"  /inv [add <name> | rm <index>]",
		"  /quest [add <name> | adv <index> [delta]]",
		"  /roll <NdX[+M]> [adv|dis] — Manual dice roll",
		"  /setup <title>          — Set the campaign title",
		"  /export [file]          — Export state+history+log as JSON",
		"  /import <file>          — Import a save document",
		"  /reset                  — Reset world and logs to defaults",
		"  /clear                  — Clear chat history and event log",
		"  /trace                  — Toggle check detail output",
		"  /quit                   — Exit",
		"",
		"Anything else is treated as your character's action.",
		"Navigation: PgUp/PgDn to scroll, Up/Down for input history",
	}
}

func (m *Model) cmdState() []string {
	ws := m.engine.State
	output := []string{
		fmt.Sprintf("Day %d, %s — %s (danger %d), weather: %s",
			ws.Clock.Day, ws.Clock.Phase, ws.Location.Name, ws.Location.Danger, ws.Weather),
		fmt.Sprintf("%s the %s — HP %d, AC %d",
			ws.Player.Name, ws.Player.Class, ws.Player.HP, ws.Player.AC),
	}

	var skills []string
	for k, v := range ws.Player.Skills {
		skills = append(skills, fmt.Sprintf("%s %+d", k, v))
	}
	if len(skills) > 0 {
		output = append(output, "Skills: "+strings.Join(skills, ", "))
	}
	if len(ws.Player.Traits) > 0 {
		output = append(output, "Traits: "+strings.Join(ws.Player.Traits, ", "))
	}
	if ws.Campaign.Title != "" {
		output = append(output, "Campaign: "+ws.Campaign.Title)
	}
	return output
}

func (m *Model) cmdLog(args []string) []string {
	n := 10
	if len(args) > 0 {
		if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
			n = v
		}
	}
	entries := m.engine.EventLog
	if len(entries) == 0 {
		return []string{"No events yet."}
	}
	if n > len(entries) {
		n = len(entries)
	}
	var output []string
	for _, e := range entries[:n] {
		output = append(output, fmt.Sprintf("%s  [%s]  %s", e.Time.Local().Format("15:04:05"), e.Kind, e.Text))
	}
	return output
}

func (m *Model) cmdInventory(args []string) []string {
	switch {
	case len(args) == 0:
		inv := m.engine.State.Player.Inventory
		if len(inv) == 0 {
			return []string{"Inventory is empty."}
		}
		var output []string
		for i, item := range inv {
			output = append(output, fmt.Sprintf("%d. %s", i, item))
		}
		return output

	case args[0] == "add" && len(args) > 1:
		name := strings.Join(args[1:], " ")
		ok, err := m.engine.AddItem(name)
		switch {
		case err != nil:
			return []string{err.Error()}
		case ok:
			return []string{"Added: " + name}
		default:
			return []string{"Nothing to add."}
		}

	case args[0] == "rm" && len(args) > 1:
		idx, err := strconv.Atoi(args[1])
		if err != nil {
			return []string{"Usage: /inv rm <index>"}
		}
		item, ok, err := m.engine.RemoveItem(idx)
		switch {
		case err != nil:
			return []string{err.Error()}
		case ok:
			return []string{"Removed: " + item}
		default:
			return []string{"No such item slot."}
		}

	default:
		return []string{"Usage: /inv [add <name> | rm <index>]"}
	}
}

func (m *Model) cmdQuest(args []string) []string {
	switch {
	case len(args) == 0:
		quests := m.engine.State.Quests
		if len(quests) == 0 {
			return []string{"No quests."}
		}
		var output []string
		for i, q := range quests {
			line := fmt.Sprintf("%d. [%s] %s — stage %d", i, q.ID, q.Name, q.Stage)
			if q.Notes != "" {
				line += " (" + q.Notes + ")"
			}
			output = append(output, line)
		}
		return output

	case args[0] == "add" && len(args) > 1:
		name := strings.Join(args[1:], " ")
		q, ok, err := m.engine.AddQuest(name)
		switch {
		case err != nil:
			return []string{err.Error()}
		case ok:
			return []string{fmt.Sprintf("Quest accepted: [%s] %s", q.ID, q.Name)}
		default:
			return []string{"Nothing to add."}
		}

	case args[0] == "adv" && len(args) > 1:
		idx, err := strconv.Atoi(args[1])
		if err != nil {
			return []string{"Usage: /quest adv <index> [delta]"}
		}
		delta := 1
		if len(args) > 2 {
			if v, err := strconv.Atoi(args[2]); err == nil {
				delta = v
			}
		}
		q, ok, err := m.engine.AdvanceQuest(idx, delta)
		switch {
		case err != nil:
			return []string{err.Error()}
		case ok:
			return []string{fmt.Sprintf("Quest %s now at stage %d.", q.Name, q.Stage)}
		default:
			return []string{"No such quest."}
		}

	default:
		return []string{"Usage: /quest [add <name> | adv <index> [delta]]"}
	}
}

func (m *Model) cmdRoll(args []string) []string {
	if len(args) == 0 {
		return []string{"Usage: /roll <NdX[+M]> [adv|dis]"}
	}
	bias := 0
	if len(args) > 1 {
		switch args[1] {
		case "adv":
			bias = 1
		case "dis":
			bias = -1
		}
	}
	text, err := m.engine.RollDice(args[0], bias)
	if err != nil {
		return []string{err.Error()}
	}
	return []string{text}
}

func (m *Model) cmdSetup(args []string) []string {
	if len(args) == 0 {
		return []string{"Usage: /setup <campaign title>"}
	}
	campaign := m.engine.State.Campaign
	campaign.Title = strings.Join(args, " ")
	campaign.SetupDone = true
	if err := m.engine.SetCampaign(campaign); err != nil {
		return []string{err.Error()}
	}
	return []string{"Campaign set: " + campaign.Title}
}

func (m *Model) cmdExport(args []string) []string {
	path := fmt.Sprintf("dm_save_%d.json", time.Now().Unix())
	if len(args) > 0 {
		path = args[0]
	}
	data, err := m.engine.Export()
	if err != nil {
		return []string{"Export failed: " + err.Error()}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return []string{"Export failed: " + err.Error()}
	}
	return []string{"Exported to " + path}
}

func (m *Model) cmdImport(args []string) []string {
	if len(args) == 0 {
		return []string{"Usage: /import <file>"}
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return []string{"Import failed: " + err.Error()}
	}
	if err := m.engine.Import(data); err != nil {
		return []string{"Import failed: " + err.Error()}
	}
	return []string{"Import complete."}
}

// formatTrace renders check mechanics and log entries for a turn.
func (m *Model) formatTrace(res types.Result) []string {
	var lines []string
	if c := res.Check; c != nil {
		lines = append(lines, fmt.Sprintf("[trace] d20: r1=%d r2=%d picked=%s mod=%+d total=%d vs DC %d",
			c.Roll1, c.Roll2, c.Picked, c.Modifier, c.Total, c.Difficulty))
	}
	for _, e := range res.Entries {
		lines = append(lines, fmt.Sprintf("[trace] log %s: %s", e.Kind, e.Text))
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
