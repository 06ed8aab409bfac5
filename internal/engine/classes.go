package engine

import (
	"slices"
	"strings"
	"unicode/utf8"
)

type ClassID string

const (
	ClassGhostrunner ClassID = "ghostrunner"
	ClassNetcrasher  ClassID = "netcrasher"
	ClassSynthmancer ClassID = "synthmancer"
	ClassEdgewalker  ClassID = "edgewalker"
)

const (
	// ClassSwitchCost is charged from the bank when changing an existing class.
	ClassSwitchCost = 5000

	// ClassQuestXP is the reward for a claimed daily class quest.
	ClassQuestXP = 20
)

// ClassDef describes a player class. Locked classes become selectable once
// Unlock reports true.
type ClassDef struct {
	ID     ClassID
	Name   string
	Lore   string
	Bonus  string
	NPC    string
	Quote  string
	Locked bool
	Unlock func(p Progress) bool
	Quests []string

	bonus func(t Task, base int) int
}

func builtinClasses() []ClassDef {
	return []ClassDef{
		{
			ID:    ClassGhostrunner,
			Name:  "Ghostrunner",
			Lore:  "Move quiet. Move fast. Leave no task behind.",
			Bonus: "+20% XP for fast tasks (10 chars or less)",
			NPC:   "Shadeflux",
			Quote: "You're light on your feet. But is your mind as sharp?",
			Quests: []string{
				"Clear three quick tasks before noon",
				"Finish one task in under ten minutes",
				"Close every tab you opened today",
			},
			bonus: func(t Task, base int) int {
				if utf8.RuneCountInString(t.Title) <= 10 {
					return base * 20 / 100
				}
				return 0
			},
		},
		{
			ID:    ClassNetcrasher,
			Name:  "Netcrasher",
			Lore:  "There is no task too tangled for a line of truth.",
			Bonus: "+5 XP for code, debug, fix or study tasks",
			NPC:   "ZeroTrace",
			Quote: "The system bends to those who persist.",
			Quests: []string{
				"Fix one bug you have been avoiding",
				"Study a new concept for 25 minutes",
				"Refactor one messy function",
			},
			bonus: keywordBonus(5, "code", "debug", "fix", "study"),
		},
		{
			ID:    ClassSynthmancer,
			Name:  "Synthmancer",
			Lore:  "Balance brings mastery. Consistency is divinity.",
			Bonus: "+2 XP for every completed task",
			NPC:   "Resonance",
			Quote: "A rhythm kept is progress earned.",
			Quests: []string{
				"Complete one task from every area of your life",
				"Keep a steady rhythm: one task per hour for three hours",
				"Review and tidy your task list",
			},
			bonus: func(Task, int) int { return 2 },
		},
		{
			ID:     ClassEdgewalker,
			Name:   "Edgewalker",
			Lore:   "They do not chase XP. They hunt legacy.",
			Bonus:  "+5 XP for boss, project or long tasks",
			NPC:    "Ashveil",
			Quote:  "Legacy is not given. It is taken.",
			Locked: true,
			Unlock: func(p Progress) bool { return p.Streak >= StreakBadgeDay },
			Quests: []string{
				"Push a long project one milestone forward",
				"Land a hit on a boss",
				"Spend an hour on your hardest task",
			},
			bonus: func(t Task, base int) int {
				if t.BossID != "" {
					return 5
				}
				return keywordBonus(5, "boss", "project", "long")(t, base)
			},
		},
	}
}

func keywordBonus(xp int, words ...string) func(Task, int) int {
	return func(t Task, _ int) int {
		title := strings.ToLower(t.Title)
		for _, w := range words {
			if strings.Contains(title, w) {
				return xp
			}
		}
		return 0
	}
}

func Classes() []ClassDef {
	return builtinClasses()
}

func LookupClass(id ClassID) (ClassDef, bool) {
	defs := builtinClasses()
	i := slices.IndexFunc(defs, func(d ClassDef) bool { return d.ID == id })
	if i < 0 {
		return ClassDef{}, false
	}
	return defs[i], true
}

func ParseClass(s string) (ClassID, bool) {
	id := ClassID(strings.ToLower(strings.TrimSpace(s)))
	_, ok := LookupClass(id)
	return id, ok
}

// TaskXP returns the XP a completed task is worth for the given class.
func TaskXP(class ClassID, t Task) int {
	xp := TaskBaseXP
	if def, ok := LookupClass(class); ok && def.bonus != nil {
		xp += def.bonus(t, TaskBaseXP)
	}
	return xp
}

// ClassState is the player's chosen class and the classes they may pick.
type ClassState struct {
	Current  ClassID   `json:"current,omitempty"`
	Unlocked []ClassID `json:"unlocked"`
}

func NewClassState() ClassState {
	var s ClassState
	for _, d := range builtinClasses() {
		if !d.Locked {
			s.Unlocked = append(s.Unlocked, d.ID)
		}
	}
	return s
}

func (s ClassState) IsUnlocked(id ClassID) bool {
	return slices.Contains(s.Unlocked, id)
}

// EvaluateUnlocks opens every locked class whose condition now holds and
// returns the newly unlocked ids.
func (s *ClassState) EvaluateUnlocks(p Progress) []ClassID {
	var out []ClassID
	for _, d := range builtinClasses() {
		if s.IsUnlocked(d.ID) {
			continue
		}
		if !d.Locked || (d.Unlock != nil && d.Unlock(p)) {
			s.Unlocked = append(s.Unlocked, d.ID)
			out = append(out, d.ID)
		}
	}
	return out
}

func (s *ClassState) normalize() {
	base := NewClassState()
	for _, id := range base.Unlocked {
		if !s.IsUnlocked(id) {
			s.Unlocked = append(s.Unlocked, id)
		}
	}
	s.Unlocked = slices.DeleteFunc(s.Unlocked, func(id ClassID) bool {
		_, ok := LookupClass(id)
		return !ok
	})
	if s.Current != "" {
		if _, ok := LookupClass(s.Current); !ok {
			s.Current = ""
		}
	}
}

// ClassQuestState tracks the daily class quest.
type ClassQuestState struct {
	Date          string  `json:"date,omitempty"`
	Quest         string  `json:"quest,omitempty"`
	Class         ClassID `json:"class,omitempty"`
	Completed     bool    `json:"completed"`
	Streak        int     `json:"streak"`
	LastCompleted string  `json:"lastCompleted,omitempty"`
}
