package engine

const (
	// BaseLevelXP and LevelXPStep define the per-level threshold:
	// XP_req(level) = 100 + (level-1)*20.
	BaseLevelXP = 100
	LevelXPStep = 20

	// TaskBaseXP is awarded for every completed task before class bonuses.
	TaskBaseXP = 10
)

// XPForLevel returns the XP needed to advance from level to level+1.
// Levels below 1 are treated as 1.
func XPForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return BaseLevelXP + (level-1)*LevelXPStep
}

// LevelChange describes the effect of an AddXP call.
type LevelChange struct {
	Gained      int
	LevelBefore int
	LevelAfter  int
}

func (c LevelChange) LevelUps() int { return c.LevelAfter - c.LevelBefore }
func (c LevelChange) LeveledUp() bool { return c.LevelAfter > c.LevelBefore }

// AddXP credits amount to both the leveling counter and the bank, then
// cascades level-ups. Negative amounts are treated as zero.
func (p *Progress) AddXP(amount int) LevelChange {
	p.normalize()
	if amount < 0 {
		amount = 0
	}
	before := p.Level
	p.XP += amount
	p.XPBank += amount
	p.cascade()
	return LevelChange{Gained: amount, LevelBefore: before, LevelAfter: p.Level}
}

// SpendFromBank deducts cost from the bank. It reports false and leaves the
// progress untouched when the bank cannot cover it.
func (p *Progress) SpendFromBank(cost int) bool {
	p.normalize()
	if cost <= 0 {
		return false
	}
	if p.XPBank < cost {
		return false
	}
	p.XPBank -= cost
	return true
}

// Reset zeroes the counters. Streak state is left alone.
func (p *Progress) Reset() {
	p.XP = 0
	p.XPBank = 0
	p.Level = 1
}

// XPToNext returns how much XP is still missing for the next level.
func (p Progress) XPToNext() int {
	return XPForLevel(p.Level) - p.XP
}

func (p *Progress) cascade() {
	for p.XP >= XPForLevel(p.Level) {
		p.XP -= XPForLevel(p.Level)
		p.Level++
	}
}

// normalize clamps values read from a stale or hand-edited store.
func (p *Progress) normalize() {
	if p.Level < 1 {
		p.Level = 1
	}
	if p.XP < 0 {
		p.XP = 0
	}
	if p.XPBank < 0 {
		p.XPBank = 0
	}
	if p.Streak < 0 {
		p.Streak = 0
	}
	p.cascade()
}
