package engine

import (
	"slices"
	"time"
)

const (
	// BossDefeatXP is credited once when a boss falls.
	BossDefeatXP = 50

	// ZoneResetThreshold is the defeated count in the active roster that
	// triggers a zone reset.
	ZoneResetThreshold = 8
)

var tierDamagePercent = map[Tier]int{
	TierMini:  10,
	TierElite: 5,
	TierMega:  1,
}

var tierDefaultTotalXP = map[Tier]int{
	TierMini:  1000,
	TierElite: 3000,
	TierMega:  10000,
}

// TierDamagePercent is the share of a boss's total HP removed per linked task.
func TierDamagePercent(t Tier) int {
	if p, ok := tierDamagePercent[t]; ok {
		return p
	}
	return tierDamagePercent[TierMini]
}

func DefaultTotalXP(t Tier) int {
	if v, ok := tierDefaultTotalXP[t]; ok {
		return v
	}
	return tierDefaultTotalXP[TierMini]
}

// Damage is the HP one linked task removes. Always at least 1.
func (b Boss) Damage() int {
	d := b.TotalXP * TierDamagePercent(b.Tier) / 100
	if d < 1 {
		d = 1
	}
	return d
}

// ApplyDamage removes one task's worth of HP. defeated is true only on the
// call that moves the boss into the defeated state.
func (b *Boss) ApplyDamage(now time.Time) (damage int, defeated bool) {
	b.normalize()
	if b.IsDefeated {
		return 0, false
	}
	damage = b.Damage()
	if damage > b.XPRemaining {
		damage = b.XPRemaining
	}
	b.XPRemaining -= damage
	b.recompute()
	if b.IsDefeated {
		t := now
		b.DefeatedAt = &t
		return damage, true
	}
	return damage, false
}

func (b *Boss) recompute() {
	if b.XPRemaining <= 0 {
		b.XPRemaining = 0
		b.IsDefeated = true
	}
	b.Progress = float64(b.TotalXP-b.XPRemaining) * 100 / float64(b.TotalXP)
}

// normalize clamps stored values. A boss stored as defeated stays defeated.
func (b *Boss) normalize() {
	if !b.Tier.IsValid() {
		b.Tier = TierMini
	}
	if b.TotalXP <= 0 {
		b.TotalXP = DefaultTotalXP(b.Tier)
		if !b.IsDefeated && b.XPRemaining <= 0 {
			b.XPRemaining = b.TotalXP
		}
	}
	if b.XPRemaining > b.TotalXP {
		b.XPRemaining = b.TotalXP
	}
	if b.IsDefeated || b.XPRemaining < 0 {
		b.XPRemaining = 0
	}
	b.recompute()
}

// IsAssignable reports whether every prerequisite of b is defeated in roster.
// Unknown prerequisite ids count as not defeated.
func IsAssignable(b Boss, roster []Boss) bool {
	return len(LockedBy(b, roster)) == 0
}

// LockedBy returns the prerequisite ids of b that are not yet defeated.
func LockedBy(b Boss, roster []Boss) []string {
	var out []string
	for _, id := range b.UnlockAfter {
		i := slices.IndexFunc(roster, func(o Boss) bool { return o.ID == id })
		if i < 0 || !roster[i].IsDefeated {
			out = append(out, id)
		}
	}
	return out
}

func DefeatedCount(roster []Boss) int {
	n := 0
	for _, b := range roster {
		if b.IsDefeated {
			n++
		}
	}
	return n
}

// ZoneFor maps a defeated count onto map zones 1..3.
func ZoneFor(defeated int) int {
	switch {
	case defeated < 3:
		return 1
	case defeated < 6:
		return 2
	default:
		return 3
	}
}

// ZoneResetDue reports whether the roster has hit the reset threshold.
func ZoneResetDue(roster []Boss) bool {
	return DefeatedCount(roster) >= ZoneResetThreshold
}

type seedBoss struct {
	key         string
	title       string
	description string
	tier        Tier
	after       []string
}

var seedBosses = []seedBoss{
	{key: "spam", title: "Spam Daemon", description: "Floods every channel with noise.", tier: TierMini},
	{key: "inbox", title: "Inbox Hydra", description: "Answer one mail, two more appear.", tier: TierMini},
	{key: "lag", title: "Lag Goblin", description: "Feeds on half-finished chores.", tier: TierMini},
	{key: "golem", title: "Procrastination Golem", description: "Slow, heavy, always tomorrow.", tier: TierElite, after: []string{"spam"}},
	{key: "wraith", title: "Deadline Wraith", description: "Appears when the calendar turns red.", tier: TierElite, after: []string{"inbox"}},
	{key: "swarm", title: "Context-Switch Swarm", description: "A thousand tabs, zero focus.", tier: TierElite, after: []string{"lag"}},
	{key: "engine", title: "The Burnout Engine", description: "Runs hot until everything stops.", tier: TierMega, after: []string{"golem", "wraith", "swarm"}},
	{key: "sovereign", title: "Null Sovereign", description: "Rules the empty backlog at the end of the grid.", tier: TierMega, after: []string{"engine"}},
}

// SeedRoster builds a fresh roster for a new zone cycle. newID supplies ids.
func SeedRoster(now time.Time, newID func() string) []Boss {
	ids := make(map[string]string, len(seedBosses))
	for _, s := range seedBosses {
		ids[s.key] = newID()
	}

	roster := make([]Boss, 0, len(seedBosses))
	for i, s := range seedBosses {
		b := Boss{
			ID:          ids[s.key],
			Title:       s.title,
			Description: s.description,
			Tier:        s.tier,
			TotalXP:     DefaultTotalXP(s.tier),
			XPRemaining: DefaultTotalXP(s.tier),
			CreatedAt:   now,
		}
		for _, k := range s.after {
			b.UnlockAfter = append(b.UnlockAfter, ids[k])
		}
		if i+1 < len(seedBosses) {
			b.ConnectsTo = []string{ids[seedBosses[i+1].key]}
		}
		roster = append(roster, b)
	}
	return roster
}
