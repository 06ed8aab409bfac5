package engine

// Achievement is a profile milestone derived from current state. Nothing
// about achievements is stored.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Earned      bool
}

// AchievementChecker computes achievements from a state snapshot.
type AchievementChecker struct {
	progress    Progress
	tasks       []Task
	bossHistory []BossHistoryEntry
	activity    []ActivityEntry
	rewards     RewardLedger
}

func NewAchievementChecker(st *State) *AchievementChecker {
	return &AchievementChecker{
		progress:    st.Progress,
		tasks:       st.Tasks,
		bossHistory: st.BossHistory,
		activity:    st.Activity,
		rewards:     st.Rewards,
	}
}

func (c *AchievementChecker) GetAchievements() []Achievement {
	return []Achievement{
		c.levelAchievement("boot_sequence", "Boot Sequence", "Reach level 2", "🌱", 2),
		c.levelAchievement("overclocked", "Overclocked", "Reach level 5", "⚡", 5),
		c.levelAchievement("mainframe", "Mainframe", "Reach level 10", "💫", 10),

		c.taskAchievement("first_task", "First Quest", "Complete 1 task", "✓", 1),
		c.taskAchievement("productive", "Productive", "Complete 25 tasks", "📋", 25),
		c.taskAchievement("powerhouse", "Powerhouse", "Complete 100 tasks", "🏆", 100),

		c.bossAchievement("first_blood", "First Blood", "Defeat a boss", "⚔", 1, ""),
		c.bossAchievement("zone_clear", "Zone Clear", "Defeat 8 bosses", "🗺", ZoneResetThreshold, ""),
		c.bossAchievement("megaslayer", "Megaslayer", "Defeat a mega boss", "👑", 1, TierMega),

		c.streakAchievement("on_fire", "On Fire", "Reach a 3 day streak", "🔥", StreakBonusDay),
		c.streakAchievement("unbroken", "Unbroken", "Reach a 7 day streak", "🌟", StreakBadgeDay),

		c.questAchievement("questor", "Questor", "Complete 10 quests", "📜", 10),
		c.collectorAchievement("collector", "Collector", "Unlock 5 rewards", "🎁", 5),
	}
}

func (c *AchievementChecker) CountEarned() int {
	n := 0
	for _, a := range c.GetAchievements() {
		if a.Earned {
			n++
		}
	}
	return n
}

func (c *AchievementChecker) CountTotal() int {
	return len(c.GetAchievements())
}

func (c *AchievementChecker) levelAchievement(id, name, desc, icon string, level int) Achievement {
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: c.progress.Level >= level}
}

func (c *AchievementChecker) taskAchievement(id, name, desc, icon string, count int) Achievement {
	done := 0
	for _, e := range c.activity {
		if e.Type == ActivityTask {
			done++
		}
	}
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: done >= count}
}

// bossAchievement counts defeats in the boss history, optionally of one tier.
func (c *AchievementChecker) bossAchievement(id, name, desc, icon string, count int, tier Tier) Achievement {
	n := 0
	for _, h := range c.bossHistory {
		if tier == "" || h.Tier == tier {
			n++
		}
	}
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: n >= count}
}

func (c *AchievementChecker) streakAchievement(id, name, desc, icon string, days int) Achievement {
	earned := c.progress.Streak >= days
	if days == StreakBadgeDay && c.rewards.Has(StreakBadgeID) {
		earned = true
	}
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: earned}
}

func (c *AchievementChecker) questAchievement(id, name, desc, icon string, count int) Achievement {
	n := 0
	for _, e := range c.activity {
		if e.Type == ActivityQuest && e.Details[detailEvent] != eventQuestFailed {
			n++
		}
	}
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: n >= count}
}

func (c *AchievementChecker) collectorAchievement(id, name, desc, icon string, count int) Achievement {
	n := 0
	for _, rid := range c.rewards.Unlocked {
		if rid != StreakBadgeID {
			n++
		}
	}
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: n >= count}
}
