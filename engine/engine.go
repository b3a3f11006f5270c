// Package engine provides the turn-resolution core: classification,
// clarification routing, the environment resolver, dice checks, and
// the transaction that commits exactly one world-state snapshot per
// resolved turn.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/nathoo/dmcore/engine/clarify"
	"github.com/nathoo/dmcore/engine/classify"
	"github.com/nathoo/dmcore/engine/env"
	"github.com/nathoo/dmcore/engine/save"
	"github.com/nathoo/dmcore/engine/state"
	"github.com/nathoo/dmcore/types"
)

// ErrBusy is returned when an input arrives while a turn or
// clarification step is still in flight. The engine is a single
// logical actor; inputs are never queued.
var ErrBusy = errors.New("a turn is already being resolved")

const (
	baseDifficulty  = 10
	improvisedTotal = 11
	defaultWait     = 8 * time.Second
)

// Saver persists the three records after each change. Implementations
// own their error handling; persistence is best-effort and never
// blocks or fails a turn.
type Saver interface {
	SaveState(ws *types.WorldState)
	SaveHistory(history []types.Message)
	SaveEventLog(eventLog []types.LogEntry)
}

// Engine holds the world state, transcript, and event log, and is
// their only writer.
type Engine struct {
	State    *types.WorldState
	History  []types.Message
	EventLog []types.LogEntry

	RNG         *RNG
	Encounters  EncounterTable
	Suggester   env.Suggester
	SuggestWait time.Duration
	Saver       Saver

	session *clarify.Session

	mu   sync.Mutex
	busy bool
	now  func() time.Time
}

// New creates an engine around the given starting state.
func New(ws *types.WorldState) *Engine {
	state.Normalize(ws)
	return &Engine{
		State:       ws,
		History:     []types.Message{},
		EventLog:    []types.LogEntry{},
		RNG:         NewRNG(time.Now().UnixNano()),
		Encounters:  DefaultEncounters(),
		SuggestWait: defaultWait,
		now:         time.Now,
	}
}

// Step processes one line of player input: an answer if a
// clarification session is active, otherwise a fresh action.
func (e *Engine) Step(input string) (types.Result, error) {
	if err := e.acquire(); err != nil {
		return types.Result{}, err
	}
	defer e.release()

	var res types.Result
	input = strings.TrimSpace(input)
	if input == "" {
		return res, nil
	}

	// 1. While a session is active every raw line is an answer —
	// never reclassified, never a turn of its own.
	if e.session != nil {
		e.append(&res, e.message(types.RoleUser, input))
		sess, prompt, done := e.session.Step(input)
		if done == nil {
			*e.session = sess
			e.append(&res, e.message(types.RoleAssistant, prompt))
			res.Clarifying = true
			e.persistHistory()
			return res, nil
		}
		e.session = nil
		e.append(&res, e.message(types.RoleSystem, clarifiedSummary(done)))
		e.resolveTurn(&res, done.Skill, done.Label, done.Approach, done.RiskDeclared, true, done.Goal)
		return res, nil
	}

	// 2. Classify the action.
	e.append(&res, e.message(types.RoleUser, input))
	tag, ok := classify.Classify(input)
	if !ok {
		// Classifier miss: open a session. No clock advance, no
		// encounter — the turn resolves when the session completes.
		sess, prompt := clarify.Start(input)
		e.session = &sess
		e.append(&res, e.message(types.RoleAssistant, clarify.Intro))
		e.append(&res, e.message(types.RoleAssistant, prompt))
		res.Clarifying = true
		e.persistHistory()
		return res, nil
	}

	// 3. Direct match resolves a full turn. Risk is never declared on
	// this path, so the difficulty carries the +1 penalty.
	e.resolveTurn(&res, tag.Skill, tag.Label, input, false, false, "")
	return res, nil
}

// resolveTurn is the turn resolution transaction: snapshot, clock,
// encounter, check, narrative, commit. Runs exactly once per resolved
// turn. The only non-local step is the suggester call, which is
// already fail-safe.
func (e *Engine) resolveTurn(res *types.Result, skill types.Skill, label, approach string, riskDeclared, clarified bool, goal string) {
	// 1. Snapshot: independent of live state until committed.
	snap := state.Clone(e.State)

	// 2. Clock advances exactly once.
	state.AdvanceClock(snap)

	// 3. Encounter gate, at most once per turn.
	if text, ok := maybeEncounter(e.RNG, e.Encounters, snap.Location.Danger); ok {
		e.append(res, e.message(types.RoleSystem, "[Encounter] "+text))
		e.log(res, types.LogEncounter, text)
	}

	riskPenalty := 1
	if riskDeclared {
		riskPenalty = 0
	}

	// 4. The check itself.
	if skill != types.SkillNone {
		modifier := snap.Player.Skills[string(skill)]
		effect := e.resolveEnv(snap, skill, approach)
		difficulty := baseDifficulty + snap.Location.Danger + riskPenalty + effect.DifficultyDelta
		roll := RollD20(e.RNG, modifier, effect.AdvantageBias)
		check := types.CheckResult{
			Roll1:      roll.Roll1,
			Roll2:      roll.Roll2,
			Picked:     roll.Picked,
			Modifier:   roll.Modifier,
			Total:      roll.Total,
			Difficulty: difficulty,
			Succeeded:  roll.Total >= difficulty,
		}
		res.Check = &check

		e.append(res, e.message(types.RoleAssistant, checkNarrative(label, check, effect, riskDeclared, clarified)))
		e.log(res, outcomeKind(check.Succeeded), outcomeLog(label, check.Succeeded, clarified, goal))
	} else {
		// Improvised: fixed neutral total, no environment input, no
		// mechanical roll recorded.
		difficulty := baseDifficulty + snap.Location.Danger + riskPenalty
		succeeded := improvisedTotal >= difficulty
		if succeeded {
			e.append(res, e.message(types.RoleAssistant, "Without a clear skill to lean on, your careful attempt still works out."))
		} else {
			e.append(res, e.message(types.RoleAssistant, "The attempt comes to nothing; for now the situation is unchanged."))
		}
		e.log(res, outcomeKind(succeeded), outcomeLog("Improvised", succeeded, clarified, goal))
	}

	// 5/6. Commit in a single assignment, then notify persistence.
	e.State = snap
	e.persistAll()
}

// resolveEnv bounds the optional inference call. Timeout or failure
// degrades to the deterministic local effect inside env.Resolve.
func (e *Engine) resolveEnv(ws *types.WorldState, skill types.Skill, text string) types.EnvironmentEffect {
	wait := e.SuggestWait
	if wait <= 0 {
		wait = defaultWait
	}
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	return env.Resolve(ctx, ws, skill, text, e.Suggester)
}

// Clarifying reports whether a clarification session is active.
func (e *Engine) Clarifying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil
}

// ClarifyProgress returns answered and total step counts for the
// active session, or zeros when idle.
func (e *Engine) ClarifyProgress() (answered, total int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return 0, 0
	}
	return e.session.Progress()
}

// AddItem appends an inventory item and logs the gain.
func (e *Engine) AddItem(name string) (bool, error) {
	if err := e.acquire(); err != nil {
		return false, err
	}
	defer e.release()

	snap := state.Clone(e.State)
	if !state.AddItem(snap, name) {
		return false, nil
	}
	e.logOnly(types.LogItemGain, "gained item: "+strings.TrimSpace(name))
	e.State = snap
	e.persistAll()
	return true, nil
}

// RemoveItem removes the inventory slot at index. Out-of-range
// indexes are a silent no-op.
func (e *Engine) RemoveItem(index int) (string, bool, error) {
	if err := e.acquire(); err != nil {
		return "", false, err
	}
	defer e.release()

	snap := state.Clone(e.State)
	item, ok := state.RemoveItem(snap, index)
	if !ok {
		return "", false, nil
	}
	e.logOnly(types.LogItemUse, "removed/used item: "+item)
	e.State = snap
	e.persistAll()
	return item, true, nil
}

// AddQuest adds a quest at stage 0.
func (e *Engine) AddQuest(name string) (types.Quest, bool, error) {
	if err := e.acquire(); err != nil {
		return types.Quest{}, false, err
	}
	defer e.release()

	snap := state.Clone(e.State)
	q, ok := state.AddQuest(snap, name)
	if !ok {
		return types.Quest{}, false, nil
	}
	e.logOnly(types.LogQuestAdd, "new quest: "+q.Name)
	e.State = snap
	e.persistAll()
	return q, true, nil
}

// AdvanceQuest shifts a quest's stage by delta. Out-of-range indexes
// are a silent no-op.
func (e *Engine) AdvanceQuest(index, delta int) (types.Quest, bool, error) {
	if err := e.acquire(); err != nil {
		return types.Quest{}, false, err
	}
	defer e.release()

	snap := state.Clone(e.State)
	q, ok := state.AdvanceQuest(snap, index, delta)
	if !ok {
		return types.Quest{}, false, nil
	}
	e.logOnly(types.LogQuestAdv, fmt.Sprintf("quest advanced: %s → stage %d", q.Name, q.Stage))
	e.State = snap
	e.persistAll()
	return q, true, nil
}

// SetCampaign replaces the campaign metadata.
func (e *Engine) SetCampaign(c types.Campaign) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.release()

	snap := state.Clone(e.State)
	snap.Campaign = c
	e.logOnly(types.LogSetup, "campaign setup: "+c.Title)
	e.State = snap
	e.persistAll()
	return nil
}

// RollDice performs a manual roll from a spec like "2d6+3". A single
// d20 honors the bias; everything else sums individual draws. The
// roll is logged but touches no world state.
func (e *Engine) RollDice(spec string, bias int) (string, error) {
	if err := e.acquire(); err != nil {
		return "", err
	}
	defer e.release()

	count, faces, modifier, err := ParseRollSpec(spec)
	if err != nil {
		return "", err
	}

	var text string
	if count == 1 && faces == 20 {
		r := RollD20(e.RNG, modifier, bias)
		text = fmt.Sprintf("d20 roll: r1=%d, r2=%d, picked=%s, modifier=%+d, total=%d",
			r.Roll1, r.Roll2, r.Picked, r.Modifier, r.Total)
	} else {
		rolls := RollMany(e.RNG, count, faces)
		total := modifier
		for _, r := range rolls {
			total += r
		}
		text = fmt.Sprintf("%dd%d roll: %v %+d = %d", count, faces, rolls, modifier, total)
	}

	e.logOnly(types.LogRoll, text)
	e.persistLog()
	return text, nil
}

// Reset restores the given defaults, clears the transcript and log,
// and abandons any active clarification session without resolving it.
func (e *Engine) Reset(defaults *types.WorldState) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.release()

	state.Normalize(defaults)
	e.session = nil
	e.State = defaults
	e.History = []types.Message{}
	e.EventLog = []types.LogEntry{}
	e.persistAll()
	return nil
}

// ClearLogs clears the transcript and event log, leaving world state
// untouched.
func (e *Engine) ClearLogs() error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.release()

	e.History = []types.Message{}
	e.EventLog = []types.LogEntry{}
	e.persistHistory()
	e.persistLog()
	return nil
}

// Export packages state, history, and event log as one document.
func (e *Engine) Export() ([]byte, error) {
	if err := e.acquire(); err != nil {
		return nil, err
	}
	defer e.release()
	return save.Export(e.State, e.History, e.EventLog)
}

// Import replaces only the sections present in the document. A
// malformed document mutates nothing.
func (e *Engine) Import(data []byte) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.release()

	doc, err := save.Import(data)
	if err != nil {
		return err
	}

	if doc.HasState {
		e.State = doc.State
	}
	if doc.HasHistory {
		e.History = doc.History
	}
	if doc.HasEventLog {
		e.EventLog = doc.EventLog
	}
	e.persistAll()
	return nil
}

// acquire claims the in-flight guard; a second caller gets ErrBusy
// instead of queueing.
func (e *Engine) acquire() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy {
		return ErrBusy
	}
	e.busy = true
	return nil
}

func (e *Engine) release() {
	e.mu.Lock()
	e.busy = false
	e.mu.Unlock()
}

func (e *Engine) message(role types.Role, content string) types.Message {
	return types.Message{
		ID:      ulid.Make().String(),
		Role:    role,
		Content: content,
		Time:    e.now(),
	}
}

// append records a message in the transcript and the step result.
func (e *Engine) append(res *types.Result, m types.Message) {
	e.History = append(e.History, m)
	res.Messages = append(res.Messages, m)
}

// log prepends an entry to the event log (newest first) and records
// it in the step result.
func (e *Engine) log(res *types.Result, kind types.LogKind, text string) {
	entry := types.LogEntry{Time: e.now(), Kind: kind, Text: text}
	e.EventLog = append([]types.LogEntry{entry}, e.EventLog...)
	res.Entries = append(res.Entries, entry)
}

// logOnly prepends an entry outside of a step result (external edits).
func (e *Engine) logOnly(kind types.LogKind, text string) {
	e.EventLog = append([]types.LogEntry{{Time: e.now(), Kind: kind, Text: text}}, e.EventLog...)
}

func (e *Engine) persistAll() {
	if e.Saver == nil {
		return
	}
	e.Saver.SaveState(e.State)
	e.Saver.SaveHistory(e.History)
	e.Saver.SaveEventLog(e.EventLog)
}

func (e *Engine) persistHistory() {
	if e.Saver != nil {
		e.Saver.SaveHistory(e.History)
	}
}

func (e *Engine) persistLog() {
	if e.Saver != nil {
		e.Saver.SaveEventLog(e.EventLog)
	}
}

func clarifiedSummary(r *clarify.Resolved) string {
	risk := r.Risk
	if risk == "" {
		risk = "(none declared)"
	}
	return fmt.Sprintf("[Clarified] Your goal is %q, your approach is %q, and the cost you accept is %q.",
		r.Goal, r.Approach, risk)
}

func checkNarrative(label string, check types.CheckResult, effect types.EnvironmentEffect, riskDeclared, clarified bool) string {
	envNote := ""
	if len(effect.Notes) > 0 {
		envNote = " (environment: " + strings.Join(effect.Notes, "; ") + ")"
	}

	if clarified {
		if check.Succeeded {
			s := fmt.Sprintf("The %s check succeeds (DC %d, result %d)%s.", label, check.Difficulty, check.Total, envNote)
			if riskDeclared {
				return s + " You declared your risk, so the difficulty held steady."
			}
			return s + " No risk declared, so the difficulty edged up."
		}
		return fmt.Sprintf("The %s check fails (DC %d, result %d)%s. You pay a price but come away with a lead.",
			label, check.Difficulty, check.Total, envNote)
	}

	if check.Succeeded {
		return fmt.Sprintf("Your %s check succeeds (DC %d, result %d)%s. The situation shifts in your favor.",
			label, check.Difficulty, check.Total, envNote)
	}
	return fmt.Sprintf("Your %s check fails (DC %d, result %d)%s. Things grow complicated, and it costs you.",
		label, check.Difficulty, check.Total, envNote)
}

func outcomeKind(succeeded bool) types.LogKind {
	if succeeded {
		return types.LogSuccess
	}
	return types.LogFailure
}

func outcomeLog(label string, succeeded, clarified bool, goal string) string {
	outcome := "failure"
	if succeeded {
		outcome = "success"
	}
	if clarified {
		if goal != "" {
			return fmt.Sprintf("clarified action (%s): %s — goal: %s", label, outcome, goal)
		}
		return fmt.Sprintf("clarified action (%s): %s", label, outcome)
	}
	return fmt.Sprintf("action (%s): %s", label, outcome)
}
