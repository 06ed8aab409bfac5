package engine

import (
	"strings"
	"time"
)

// Persisted keys. The set and shapes are shared with the remote document.
const (
	KeyProgress        = "progress"
	KeyTasks           = "tasks"
	KeyBosses          = "bosses"
	KeyRewardsUnlocked = "rewards.unlocked"
	KeyRewardsEquipped = "rewards.equipped"
	KeyActivityHistory = "activityHistory"
	KeyBossHistory     = "bossHistory"
	KeyQuestHistory    = "questHistory"
	KeyPlayerClass     = "playerClass"
	KeyClassQuest      = "classQuest"
	KeySimPlayers      = "simPlayers"
)

// QuestKey, LastResetKey and HistoryKey name the per-bucket quest keys.
func QuestKey(b Bucket) string     { return "quests." + string(b) }
func LastResetKey(b Bucket) string { return "lastReset." + string(b) }
func HistoryKey(b Bucket) string   { return "history." + string(b) }

// AllKeys lists every key the engine reads and writes.
func AllKeys() []string {
	keys := []string{
		KeyProgress, KeyTasks, KeyBosses,
		KeyRewardsUnlocked, KeyRewardsEquipped,
		KeyActivityHistory, KeyBossHistory, KeyQuestHistory,
		KeyPlayerClass, KeyClassQuest, KeySimPlayers,
	}
	for _, b := range Buckets {
		keys = append(keys, QuestKey(b), LastResetKey(b), HistoryKey(b))
	}
	return keys
}

// Progress is the player's XP, level and streak state.
type Progress struct {
	Level          int    `json:"level"`
	XP             int    `json:"xp"`
	XPBank         int    `json:"xpBank"`
	Streak         int    `json:"streak"`
	LastActiveDate string `json:"lastActiveDate,omitempty"`
}

func NewProgress() Progress {
	return Progress{Level: 1}
}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	BossID      string     `json:"bossId,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	XPAwarded   int        `json:"xpAwarded,omitempty"`
}

type Tier string

const (
	TierMini  Tier = "mini"
	TierElite Tier = "elite"
	TierMega  Tier = "mega"
)

func (t Tier) IsValid() bool {
	switch t {
	case TierMini, TierElite, TierMega:
		return true
	default:
		return false
	}
}

type Boss struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Tier        Tier       `json:"tier"`
	TotalXP     int        `json:"totalXp"`
	XPRemaining int        `json:"xpRemaining"`
	Progress    float64    `json:"progress"`
	IsDefeated  bool       `json:"isDefeated"`
	UnlockAfter []string   `json:"unlockAfter,omitempty"`
	ConnectsTo  []string   `json:"connectsTo,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	DefeatedAt  *time.Time `json:"defeatedAt,omitempty"`
}

// Bucket is a quest periodicity bucket.
type Bucket string

const (
	BucketDaily  Bucket = "Daily"
	BucketWeekly Bucket = "Weekly"
	BucketEvent  Bucket = "Event"
)

var Buckets = []Bucket{BucketDaily, BucketWeekly, BucketEvent}

func ParseBucket(s string) (Bucket, bool) {
	for _, b := range Buckets {
		if strings.EqualFold(string(b), strings.TrimSpace(s)) {
			return b, true
		}
	}
	return "", false
}

type QuestType string

const (
	QuestTask  QuestType = "task"
	QuestBoss  QuestType = "boss"
	QuestClass QuestType = "class"
)

type Condition struct {
	Target  int `json:"target"`
	Current int `json:"current"`
}

type Quest struct {
	ID          string        `json:"id"`
	TemplateID  string        `json:"templateId"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Type        QuestType     `json:"type"`
	Condition   Condition     `json:"condition"`
	Progress    float64       `json:"progress"`
	IsComplete  bool          `json:"isComplete"`
	IsFailed    bool          `json:"isFailed"`
	RewardXP    int           `json:"rewardXp"`
	TimeLimit   time.Duration `json:"timeLimit,omitempty"`
	StartTime   time.Time     `json:"startTime"`
}

// Terminal reports whether the quest is complete or failed.
func (q Quest) Terminal() bool {
	return q.IsComplete || q.IsFailed
}

// ActivityType tags activity log entries. Task and streak entries extend the
// quest/boss/class/reward set; readers of the synced log must accept them.
type ActivityType string

const (
	ActivityQuest  ActivityType = "quest"
	ActivityBoss   ActivityType = "boss"
	ActivityClass  ActivityType = "class"
	ActivityReward ActivityType = "reward"
	ActivityTask   ActivityType = "task"
	ActivityStreak ActivityType = "streak"
)

type ActivityEntry struct {
	Date        time.Time         `json:"date"`
	Type        ActivityType      `json:"type"`
	Description string            `json:"description"`
	XP          int               `json:"xp,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
}

type BossHistoryEntry struct {
	BossID     string    `json:"bossId"`
	Title      string    `json:"title"`
	Tier       Tier      `json:"tier"`
	DefeatedAt time.Time `json:"defeatedAt"`
}

type QuestHistoryEntry struct {
	Date     time.Time `json:"date"`
	QuestID  string    `json:"questId,omitempty"`
	Quest    string    `json:"quest"`
	Bucket   Bucket    `json:"bucket,omitempty"`
	Class    ClassID   `json:"class,omitempty"`
	RewardXP int       `json:"rewardXp"`
}

type SimPlayer struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	XP             int    `json:"xp"`
	TasksCompleted int    `json:"tasksCompleted"`
	BossesDefeated int    `json:"bossesDefeated"`
}
