package engine

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"time"
)

// Activity detail keys and values used to tell entries of one type apart.
const (
	detailEvent       = "event"
	eventBossDefeated = "defeated"
	eventZoneReset    = "zone_reset"
	eventQuestFailed  = "failed"
)

// MonthlySummary aggregates one calendar month of the activity log.
type MonthlySummary struct {
	Month           string
	XP              int
	TasksCompleted  int
	BossesDefeated  int
	QuestsCompleted int
}

func sameMonth(a, b time.Time) bool {
	ay, am, _ := a.Date()
	by, bm, _ := b.In(a.Location()).Date()
	return ay == by && am == bm
}

// SummarizeMonth derives the month containing at from the activity log.
func SummarizeMonth(at time.Time, activity []ActivityEntry) MonthlySummary {
	s := MonthlySummary{Month: at.Format("2006-01")}
	for _, e := range activity {
		if !sameMonth(at, e.Date) {
			continue
		}
		s.XP += max(e.XP, 0)
		switch e.Type {
		case ActivityTask:
			s.TasksCompleted++
		case ActivityBoss:
			if e.Details[detailEvent] == eventBossDefeated {
				s.BossesDefeated++
			}
		case ActivityQuest:
			if e.Details[detailEvent] != eventQuestFailed {
				s.QuestsCompleted++
			}
		}
	}
	return s
}

// RecentActivity returns up to n entries, newest first. n <= 0 means all.
func RecentActivity(activity []ActivityEntry, n int, types ...ActivityType) []ActivityEntry {
	var out []ActivityEntry
	for i := len(activity) - 1; i >= 0; i-- {
		e := activity[i]
		if len(types) > 0 && !slices.Contains(types, e.Type) {
			continue
		}
		out = append(out, e)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}

// SimRoster is the stored state of the simulated leaderboard rivals.
type SimRoster struct {
	LastSimulated string      `json:"lastSimulated,omitempty"`
	Players       []SimPlayer `json:"players"`
}

func SeedSimPlayers() []SimPlayer {
	return []SimPlayer{
		{ID: "sim_neonfox", Name: "NeonFox", XP: 120, TasksCompleted: 9, BossesDefeated: 1},
		{ID: "sim_bytewitch", Name: "ByteWitch", XP: 95, TasksCompleted: 12},
		{ID: "sim_gridrunner", Name: "GridRunner", XP: 60, TasksCompleted: 5},
		{ID: "sim_synthia", Name: "Synthia", XP: 40, TasksCompleted: 4, BossesDefeated: 1},
		{ID: "sim_nullptr", Name: "NullPointer", XP: 15, TasksCompleted: 2},
	}
}

// SimulateDailyProgress gives every rival a random day of work.
func SimulateDailyProgress(r *rand.Rand, players []SimPlayer) []SimPlayer {
	out := make([]SimPlayer, len(players))
	for i, p := range players {
		p.XP += r.IntN(50)
		p.TasksCompleted += r.IntN(5)
		if r.Float64() < 0.1 {
			p.BossesDefeated++
		}
		out[i] = p
	}
	return out
}

type LeaderboardEntry struct {
	Rank           int
	ID             string
	Name           string
	XP             int
	TasksCompleted int
	BossesDefeated int
	IsPlayer       bool
}

// PlayerEntryID identifies the local player on the leaderboard.
const PlayerEntryID = "me"

// RankLeaderboard orders rivals and the player by XP, then bosses, then tasks.
func RankLeaderboard(name string, me MonthlySummary, sims []SimPlayer) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(sims)+1)
	for _, p := range sims {
		entries = append(entries, LeaderboardEntry{
			ID: p.ID, Name: p.Name, XP: p.XP,
			TasksCompleted: p.TasksCompleted, BossesDefeated: p.BossesDefeated,
		})
	}
	entries = append(entries, LeaderboardEntry{
		ID: PlayerEntryID, Name: name, XP: me.XP,
		TasksCompleted: me.TasksCompleted, BossesDefeated: me.BossesDefeated,
		IsPlayer: true,
	})
	slices.SortStableFunc(entries, func(a, b LeaderboardEntry) int {
		return cmp.Or(
			cmp.Compare(b.XP, a.XP),
			cmp.Compare(b.BossesDefeated, a.BossesDefeated),
			cmp.Compare(b.TasksCompleted, a.TasksCompleted),
		)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
