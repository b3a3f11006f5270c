// Package cli provides terminal I/O, output formatting, and
// meta-command dispatch for the DMCore adjudication engine.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nathoo/dmcore/engine"
	"github.com/nathoo/dmcore/engine/state"
	"github.com/nathoo/dmcore/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine     *engine.Engine
	In         io.Reader
	Out        io.Writer
	EchoInput  bool                          // echo each input line after the prompt (for script playback)
	ResetState func() *types.WorldState      // defaults applied by /reset
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine) *CLI {
	return &CLI{
		Engine:     eng,
		In:         os.Stdin,
		Out:        os.Stdout,
		ResetState: state.Default,
	}
}

// Run starts the session loop: prompt → input → dispatch → output.
func (c *CLI) Run() {
	c.printSystem("Type your action (e.g. \"investigate the missing courier at the market\"). Unrecognized actions trigger clarification. /help for commands.")

	scanner := bufio.NewScanner(c.In)
	for {
		c.print(c.prompt())
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		res, err := c.Engine.Step(input)
		if errors.Is(err, engine.ErrBusy) {
			c.printSystem("Hold on — the current turn is still resolving.")
			continue
		}
		c.printResult(res)
	}
}

// prompt reflects whether a clarification session is collecting
// answers.
func (c *CLI) prompt() string {
	if c.Engine.Clarifying() {
		answered, total := c.Engine.ClarifyProgress()
		return fmt.Sprintf("(%d/%d)> ", answered, total)
	}
	return "> "
}

// printResult renders the assistant and system messages from a step.
// The player's own input is not echoed back.
func (c *CLI) printResult(res types.Result) {
	for _, m := range res.Messages {
		switch m.Role {
		case types.RoleAssistant:
			c.printLine("DM: " + m.Content)
		case types.RoleSystem:
			c.printLine(m.Content)
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the session
// should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Farewell.")
		return true

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/log":
		c.cmdLog(args)

	case "/inv":
		c.cmdInventory(args)

	case "/quest":
		c.cmdQuest(args)

	case "/roll":
		c.cmdRoll(args)

	case "/setup":
		c.cmdSetup(args)

	case "/export":
		c.cmdExport(args)

	case "/import":
		c.cmdImport(args)

	case "/reset":
		if err := c.Engine.Reset(c.ResetState()); err != nil {
			c.printSystem("Reset failed: " + err.Error())
		} else {
			c.printSystem("World and logs reset.")
		}

	case "/clear":
		if err := c.Engine.ClearLogs(); err != nil {
			c.printSystem("Clear failed: " + err.Error())
		} else {
			c.printSystem("Chat history and event log cleared.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}
	return false
}

func (c *CLI) cmdHelp() {
	for _, line := range []string{
		"Commands:",
		"  /state                  — World and character overview",
		"  /log [n]                — Recent event log entries (newest first)",
		"  /inv                    — List inventory",
		"  /inv add <name>         — Add an item",
		"  /inv rm <index>         — Remove/use an item by index",
		"  /quest                  — List quests",
		"  /quest add <name>       — Add a quest",
		"  /quest adv <idx> [d]    — Advance a quest stage (default +1)",
		"  /roll <NdX[+M]> [adv|dis] — Manual dice roll (e.g. /roll 2d6+1)",
		"  /setup <title>          — Set the campaign title",
		"  /export [file]          — Export state+history+log as JSON",
		"  /import <file>          — Import a save document",
		"  /reset                  — Reset world and logs to defaults",
		"  /clear                  — Clear chat history and event log",
		"  /quit                   — Exit",
		"",
		"Anything else is treated as your character's action.",
	} {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	ws := c.Engine.State
	c.printLine(fmt.Sprintf("Day %d, %s — %s (danger %d), weather: %s",
		ws.Clock.Day, ws.Clock.Phase, ws.Location.Name, ws.Location.Danger, ws.Weather))
	c.printLine(fmt.Sprintf("%s the %s — HP %d, AC %d",
		ws.Player.Name, ws.Player.Class, ws.Player.HP, ws.Player.AC))

	var skills []string
	for k, v := range ws.Player.Skills {
		skills = append(skills, fmt.Sprintf("%s %+d", k, v))
	}
	if len(skills) > 0 {
		c.printLine("Skills: " + strings.Join(skills, ", "))
	}
	if len(ws.Player.Traits) > 0 {
		c.printLine("Traits: " + strings.Join(ws.Player.Traits, ", "))
	}
	if ws.Campaign.Title != "" {
		c.printLine("Campaign: " + ws.Campaign.Title)
	}
}

func (c *CLI) cmdLog(args []string) {
	n := 10
	if len(args) > 0 {
		if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
			n = v
		}
	}
	entries := c.Engine.EventLog
	if len(entries) == 0 {
		c.printLine("No events yet.")
		return
	}
	if n > len(entries) {
		n = len(entries)
	}
	for _, e := range entries[:n] {
		c.printLine(fmt.Sprintf("%s  [%s]  %s", e.Time.Local().Format("15:04:05"), e.Kind, e.Text))
	}
}

func (c *CLI) cmdInventory(args []string) {
	switch {
	case len(args) == 0:
		inv := c.Engine.State.Player.Inventory
		if len(inv) == 0 {
			c.printLine("Inventory is empty.")
			return
		}
		for i, item := range inv {
			c.printLine(fmt.Sprintf("  %d. %s", i, item))
		}

	case args[0] == "add" && len(args) > 1:
		name := strings.Join(args[1:], " ")
		ok, err := c.Engine.AddItem(name)
		switch {
		case err != nil:
			c.printSystem(err.Error())
		case ok:
			c.printSystem("Added: " + name)
		default:
			c.printSystem("Nothing to add.")
		}

	case args[0] == "rm" && len(args) > 1:
		idx, err := strconv.Atoi(args[1])
		if err != nil {
			c.printSystem("Usage: /inv rm <index>")
			return
		}
		item, ok, err := c.Engine.RemoveItem(idx)
		switch {
		case err != nil:
			c.printSystem(err.Error())
		case ok:
			c.printSystem("Removed: " + item)
		default:
			c.printSystem("No such item slot.")
		}

	default:
		c.printSystem("Usage: /inv [add <name> | rm <index>]")
	}
}

func (c *CLI) cmdQuest(args []string) {
	switch {
	case len(args) == 0:
		quests := c.Engine.State.Quests
		if len(quests) == 0 {
			c.printLine("No quests.")
			return
		}
		for i, q := range quests {
			line := fmt.Sprintf("  %d. [%s] %s — stage %d", i, q.ID, q.Name, q.Stage)
			if q.Notes != "" {
				line += " (" + q.Notes + ")"
			}
			c.printLine(line)
		}

	case args[0] == "add" && len(args) > 1:
		name := strings.Join(args[1:], " ")
		q, ok, err := c.Engine.AddQuest(name)
		switch {
		case err != nil:
			c.printSystem(err.Error())
		case ok:
			c.printSystem(fmt.Sprintf("Quest accepted: [%s] %s", q.ID, q.Name))
		default:
			c.printSystem("Nothing to add.")
		}

	case args[0] == "adv" && len(args) > 1:
		idx, err := strconv.Atoi(args[1])
		if err != nil {
			c.printSystem("Usage: /quest adv <index> [delta]")
			return
		}
		delta := 1
		if len(args) > 2 {
			if v, err := strconv.Atoi(args[2]); err == nil {
				delta = v
			}
		}
		q, ok, err := c.Engine.AdvanceQuest(idx, delta)
		switch {
		case err != nil:
			c.printSystem(err.Error())
		case ok:
			c.printSystem(fmt.Sprintf("Quest %s now at stage %d.", q.Name, q.Stage))
		default:
			c.printSystem("No such quest.")
		}

	default:
		c.printSystem("Usage: /quest [add <name> | adv <index> [delta]]")
	}
}

func (c *CLI) cmdRoll(args []string) {
	if len(args) == 0 {
		c.printSystem("Usage: /roll <NdX[+M]> [adv|dis]")
		return
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
	text, err := c.Engine.RollDice(args[0], bias)
	if err != nil {
		c.printSystem(err.Error())
		return
	}
	c.printLine(text)
}

func (c *CLI) cmdSetup(args []string) {
	if len(args) == 0 {
		c.printSystem("Usage: /setup <campaign title>")
		return
	}
	campaign := c.Engine.State.Campaign
	campaign.Title = strings.Join(args, " ")
	campaign.SetupDone = true
	if err := c.Engine.SetCampaign(campaign); err != nil {
		c.printSystem(err.Error())
		return
	}
	c.printSystem("Campaign set: " + campaign.Title)
}

func (c *CLI) cmdExport(args []string) {
	path := fmt.Sprintf("dm_save_%d.json", time.Now().Unix())
	if len(args) > 0 {
		path = args[0]
	}
	data, err := c.Engine.Export()
	if err != nil {
		c.printSystem("Export failed: " + err.Error())
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printSystem("Export failed: " + err.Error())
		return
	}
	c.printSystem("Exported to " + path)
}

func (c *CLI) cmdImport(args []string) {
	if len(args) == 0 {
		c.printSystem("Usage: /import <file>")
		return
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		c.printSystem("Import failed: " + err.Error())
		return
	}
	if err := c.Engine.Import(data); err != nil {
		c.printSystem("Import failed: " + err.Error())
		return
	}
	c.printSystem("Import complete.")
}

func (c *CLI) print(s string) {
	fmt.Fprint(c.Out, s)
}

func (c *CLI) printLine(s string) {
	fmt.Fprintln(c.Out, s)
}

func (c *CLI) printSystem(s string) {
	fmt.Fprintln(c.Out, "["+s+"]")
}
