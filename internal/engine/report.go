package engine

import (
	"context"
	"slices"
	"time"
)

// Activity returns up to n log entries, newest first.
func (s *Service) Activity(n int, types ...ActivityType) []ActivityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RecentActivity(s.st.Activity, n, types...)
}

func (s *Service) BossHistory() []BossHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.st.BossHistory)
}

func (s *Service) QuestHistory() []QuestHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.st.QuestHistory)
}

// MonthlySummary derives the totals for the month containing at.
func (s *Service) MonthlySummary(at time.Time) MonthlySummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SummarizeMonth(at, s.st.Activity)
}

// Leaderboard ranks the player's current month against simulated rivals.
// Rivals advance at most once per calendar day.
func (s *Service) Leaderboard(ctx context.Context, name string) ([]LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	today := DateKey(now)
	if s.st.Sims.LastSimulated != today {
		s.st.Sims.Players = SimulateDailyProgress(s.rng, s.st.Sims.Players)
		s.st.Sims.LastSimulated = today
		s.mark(KeySimPlayers)
		if err := s.commit(ctx); err != nil {
			return nil, err
		}
	}
	return RankLeaderboard(name, SummarizeMonth(now, s.st.Activity), s.st.Sims.Players), nil
}

func (s *Service) Achievements() []Achievement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return NewAchievementChecker(s.st).GetAchievements()
}
