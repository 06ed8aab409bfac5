package engine

import (
	"context"
	"fmt"
	"time"
)

type CompleteResult struct {
	TaskID      string
	TaskXP      int
	XPDelta     int
	LevelBefore int
	LevelAfter  int
	LeveledUp   bool

	Streak      StreakResult
	BadgeEarned bool

	Boss         *Boss
	BossDamage   int
	BossDefeated *Boss
	ZoneUnlocked int
	ZoneReset    bool

	QuestsCompleted []BucketQuest
	ClassesUnlocked []ClassID
}

// LevelUps is the number of levels gained, counting cascades.
func (r CompleteResult) LevelUps() int { return r.LevelAfter - r.LevelBefore }

// CompleteTask runs the full progression pipeline for one task: task XP,
// streak, boss damage, then quest progress. All changed keys are written
// before it returns.
func (s *Service) CompleteTask(ctx context.Context, id string) (*CompleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.st.taskIndex(id)
	if i < 0 {
		return nil, NotFoundError{Kind: "task", ID: id}
	}
	task := &s.st.Tasks[i]
	if task.Completed {
		return nil, ErrTaskAlreadyDone
	}

	now := s.now()
	st := s.st
	res := &CompleteResult{TaskID: id, LevelBefore: st.Progress.Level}
	bankBefore := st.Progress.XPBank

	xp := TaskXP(st.Class.Current, *task)
	completedAt := now
	task.Completed = true
	task.CompletedAt = &completedAt
	task.XPAwarded = xp
	s.mark(KeyTasks)
	res.TaskXP = xp

	s.credit(xp)
	s.logActivity(ActivityEntry{
		Date:        now,
		Type:        ActivityTask,
		Description: "Completed task: " + task.Title,
		XP:          xp,
		Details:     map[string]string{"taskId": task.ID},
	})

	s.applyStreak(now, res)

	var done []BucketQuest
	if task.BossID != "" {
		done = append(done, s.applyBossDamage(task.BossID, now, res)...)
	}
	done = append(done, st.Quests.Advance(QuestTask)...)
	s.rewardQuests(done, now)
	res.QuestsCompleted = done

	res.LevelAfter = st.Progress.Level
	res.LeveledUp = res.LevelAfter > res.LevelBefore
	res.XPDelta = st.Progress.XPBank - bankBefore

	if err := s.commit(ctx); err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("task", id).
		Int("xp", res.XPDelta).
		Int("level", res.LevelAfter).
		Int("quests", len(done)).
		Msg("task completed")
	return res, nil
}

func (s *Service) applyStreak(now time.Time, res *CompleteResult) {
	sr := s.st.Progress.RecordActivity(now)
	res.Streak = sr
	if !sr.NewDay {
		return
	}
	s.mark(KeyProgress)

	if sr.BonusXP > 0 {
		s.credit(sr.BonusXP)
		s.logActivity(ActivityEntry{
			Date:        now,
			Type:        ActivityStreak,
			Description: fmt.Sprintf("%d day streak bonus", sr.Streak),
			XP:          sr.BonusXP,
		})
	}
	if sr.BadgeEarned && s.st.Rewards.Grant(StreakBadgeID) {
		res.BadgeEarned = true
		s.mark(KeyRewardsUnlocked)
		s.logActivity(ActivityEntry{
			Date:        now,
			Type:        ActivityReward,
			Description: "Earned the Streak Flame badge",
			Details:     map[string]string{"rewardId": StreakBadgeID},
		})
	}
	if unlocked := s.st.Class.EvaluateUnlocks(s.st.Progress); len(unlocked) > 0 {
		res.ClassesUnlocked = unlocked
		s.mark(KeyPlayerClass)
		for _, c := range unlocked {
			s.logActivity(ActivityEntry{
				Date:        now,
				Type:        ActivityClass,
				Description: "Unlocked class " + string(c),
				Details:     map[string]string{"class": string(c)},
			})
		}
	}
}

// applyBossDamage hits the linked boss once. Tasks whose boss has left the
// roster deal no damage.
func (s *Service) applyBossDamage(bossID string, now time.Time, res *CompleteResult) []BucketQuest {
	bi := s.st.bossIndex(bossID)
	if bi < 0 {
		return nil
	}
	zoneBefore := ZoneFor(DefeatedCount(s.st.Bosses))

	b := &s.st.Bosses[bi]
	dmg, defeated := b.ApplyDamage(now)
	res.BossDamage = dmg
	s.mark(KeyBosses)
	if !defeated {
		snap := *b
		res.Boss = &snap
		return nil
	}

	snap := *b
	res.Boss = &snap
	res.BossDefeated = &snap
	s.credit(BossDefeatXP)
	s.logActivity(ActivityEntry{
		Date:        now,
		Type:        ActivityBoss,
		Description: "Defeated boss: " + b.Title,
		XP:          BossDefeatXP,
		Details:     map[string]string{"bossId": b.ID, "tier": string(b.Tier), detailEvent: eventBossDefeated},
	})
	s.st.BossHistory = append(s.st.BossHistory, BossHistoryEntry{
		BossID: b.ID, Title: b.Title, Tier: b.Tier, DefeatedAt: now,
	})
	s.mark(KeyBossHistory)

	done := s.st.Quests.Advance(QuestBoss)

	if zoneAfter := ZoneFor(DefeatedCount(s.st.Bosses)); zoneAfter > zoneBefore {
		res.ZoneUnlocked = zoneAfter
	}
	if ZoneResetDue(s.st.Bosses) {
		s.zoneReset()
		res.ZoneReset = true
	}
	return done
}

// rewardQuests credits each newly completed quest exactly once.
func (s *Service) rewardQuests(done []BucketQuest, now time.Time) {
	for _, bq := range done {
		s.markBucket(bq.Bucket)
		s.credit(bq.Quest.RewardXP)
		s.logActivity(ActivityEntry{
			Date:        now,
			Type:        ActivityQuest,
			Description: fmt.Sprintf("%s quest complete: %s", bq.Bucket, bq.Quest.Title),
			XP:          bq.Quest.RewardXP,
			Details:     map[string]string{"questId": bq.Quest.ID, "bucket": string(bq.Bucket)},
		})
		s.st.QuestHistory = append(s.st.QuestHistory, QuestHistoryEntry{
			Date:     now,
			QuestID:  bq.Quest.ID,
			Quest:    bq.Quest.Title,
			Bucket:   bq.Bucket,
			RewardXP: bq.Quest.RewardXP,
		})
		s.mark(KeyQuestHistory)
	}
}
