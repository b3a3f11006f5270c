// Package types defines the shared data structures for the DMCore engine.
// This package contains only type definitions — no logic, no methods.
package types

import "time"

// Phase is the time-of-day segment of the world clock.
type Phase string

const (
	PhaseMorning Phase = "morning"
	PhaseNoon    Phase = "noon"
	PhaseEvening Phase = "evening"
	PhaseNight   Phase = "night"
)

// Weather is the current weather condition. Only rain carries
// mechanical rules; the others are narrative color.
type Weather string

const (
	WeatherClear Weather = "clear"
	WeatherRain  Weather = "rain"
	WeatherFog   Weather = "fog"
	WeatherStorm Weather = "storm"
)

// Skill identifies which skill a check rolls against.
type Skill string

const (
	SkillArcana     Skill = "arcana"
	SkillStealth    Skill = "stealth"
	SkillPersuasion Skill = "persuasion"
	SkillAttack     Skill = "attack"
	SkillNone       Skill = ""
)

// Clock tracks in-world time. Day starts at 1 and increments when the
// phase wraps from night back to morning.
type Clock struct {
	Day   int   `json:"day"`
	Phase Phase `json:"phase"`
}

// Location is where the player currently is. Danger feeds both the
// base check difficulty and the encounter gate.
type Location struct {
	Name   string   `json:"name"`
	Danger int      `json:"danger"`
	Tags   []string `json:"tags"`
}

// Player holds the player character sheet.
type Player struct {
	Name      string         `json:"name"`
	Class     string         `json:"class"`
	HP        int            `json:"hp"`
	AC        int            `json:"ac"`
	Skills    map[string]int `json:"skills"`
	Traits    []string       `json:"traits"`
	Inventory []string       `json:"inventory"`
}

// Quest is a single tracked quest.
type Quest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Stage int    `json:"stage"`
	Notes string `json:"notes"`
}

// Campaign holds campaign-level setup metadata.
type Campaign struct {
	Title     string   `json:"title"`
	Themes    []string `json:"themes"`
	Rules     string   `json:"rules"`
	SetupDone bool     `json:"setupDone"`
}

// WorldState is the single mutable world record. It is mutated only
// through snapshot-and-commit inside the engine.
type WorldState struct {
	Clock    Clock    `json:"clock"`
	Location Location `json:"location"`
	Weather  Weather  `json:"weather"`
	Player   Player   `json:"player"`
	Quests   []Quest  `json:"quests"`
	Campaign Campaign `json:"campaign"`
}

// ActionTag is the classification of a free-text action. Stateless,
// recomputed per input.
type ActionTag struct {
	Skill Skill
	Label string
}

// EnvironmentEffect is the computed difficulty/advantage adjustment
// from world conditions and (optionally) external inference. Produced
// fresh per check, folded into a CheckResult, never persisted alone.
type EnvironmentEffect struct {
	DifficultyDelta int
	AdvantageBias   int // -1 disadvantage, 0 neutral, 1 advantage
	Notes           []string
}

// CheckResult is a fully resolved d20 check. Immutable once computed.
type CheckResult struct {
	Roll1      int
	Roll2      int
	Picked     string // e.g. "12", "max(3,17)", "min(3,17)"
	Modifier   int
	Total      int
	Difficulty int
	Succeeded  bool
}

// LogKind classifies an event log entry.
type LogKind string

const (
	LogRoll      LogKind = "roll"
	LogSuccess   LogKind = "success"
	LogFailure   LogKind = "failure"
	LogEncounter LogKind = "encounter"
	LogItemGain  LogKind = "item_gain"
	LogItemUse   LogKind = "item_use"
	LogQuestAdd  LogKind = "quest_add"
	LogQuestAdv  LogKind = "quest_adv"
	LogSetup     LogKind = "setup"
)

// LogEntry is one structured event log record. The log slice is kept
// newest-first and entries are never mutated or individually removed.
type LogEntry struct {
	Time time.Time `json:"t"`
	Kind LogKind   `json:"kind"`
	Text string    `json:"text"`
}

// Role is the speaker of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one line of the narrative transcript, in arrival order.
type Message struct {
	ID      string    `json:"id"`
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	Time    time.Time `json:"t"`
}

// Result is the output of one engine step: the messages and log
// entries appended by that step, plus the check if one was rolled.
type Result struct {
	Messages   []Message
	Entries    []LogEntry
	Check      *CheckResult
	Clarifying bool // a clarification session is active after this step
}
