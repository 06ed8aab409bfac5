package engine

import "slices"

// checkBossGate returns a LockedBossError naming the prerequisite titles
// that still stand between the player and b.
func checkBossGate(b Boss, roster []Boss) error {
	missing := LockedBy(b, roster)
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	for _, id := range missing {
		if i := slices.IndexFunc(roster, func(o Boss) bool { return o.ID == id }); i >= 0 {
			names = append(names, roster[i].Title)
		} else {
			names = append(names, id)
		}
	}
	return LockedBossError{BossID: b.ID, Title: b.Title, Missing: names}
}

// BossView is a boss together with its assignability, evaluated against the
// roster at the time of the call.
type BossView struct {
	Boss       Boss
	Assignable bool
	LockedBy   []string
}

func viewBosses(roster []Boss) []BossView {
	out := make([]BossView, 0, len(roster))
	for _, b := range roster {
		missing := LockedBy(b, roster)
		out = append(out, BossView{Boss: b, Assignable: len(missing) == 0 && !b.IsDefeated, LockedBy: missing})
	}
	return out
}
