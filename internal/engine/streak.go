package engine

import "time"

const (
	StreakBonusDay = 3
	StreakBonusXP  = 20
	StreakBadgeDay = 7
)

// StreakResult reports what a day's first productive event changed.
// BonusXP is not credited by RecordActivity; the caller adds it to the ledger.
type StreakResult struct {
	NewDay      bool
	Streak      int
	BonusXP     int
	BadgeEarned bool
}

// RecordActivity updates the streak for a productive event at now.
// Milestones only fire on the first event of a calendar day.
func (p *Progress) RecordActivity(now time.Time) StreakResult {
	p.normalize()

	today := DateKey(now)
	if p.LastActiveDate == today {
		return StreakResult{Streak: p.Streak}
	}

	if p.LastActiveDate == DateKey(now.AddDate(0, 0, -1)) {
		p.Streak++
	} else {
		p.Streak = 1
	}
	p.LastActiveDate = today

	res := StreakResult{NewDay: true, Streak: p.Streak}
	switch p.Streak {
	case StreakBonusDay:
		res.BonusXP = StreakBonusXP
	case StreakBadgeDay:
		res.BadgeEarned = true
	}
	return res
}
