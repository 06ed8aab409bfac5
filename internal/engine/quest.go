package engine

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	// HistoryWindow bounds the per-bucket list of recently used templates.
	HistoryWindow = 10

	// EventTimeLimit is how long an Event quest stays open after generation.
	EventTimeLimit = 6 * time.Hour

	rewardNoise = 20
)

type questTemplate struct {
	ID         string
	Title      string
	Desc       string
	Type       QuestType
	BaseTarget int
	BaseXP     int
}

var taskTemplates = []questTemplate{
	{ID: "task_5", Title: "Complete {n} Tasks", Desc: "Stay productive.", Type: QuestTask, BaseTarget: 5, BaseXP: 30},
	{ID: "task_speed", Title: "Check Off {n} Tasks Fast", Desc: "Speedrun your life.", Type: QuestTask, BaseTarget: 3, BaseXP: 20},
}

var bossTemplates = []questTemplate{
	{ID: "boss_mini", Title: "Defeat {n} Mini Bosses", Desc: "Show your skills.", Type: QuestBoss, BaseTarget: 2, BaseXP: 50},
	{ID: "boss_elite", Title: "Crush {n} Elite Bosses", Desc: "No mercy for elites.", Type: QuestBoss, BaseTarget: 3, BaseXP: 80},
	{ID: "boss_mega", Title: "Annihilate {n} Mega Boss", Desc: "The ultimate challenge.", Type: QuestBoss, BaseTarget: 1, BaseXP: 150},
}

var bucketQuestCount = map[Bucket]int{
	BucketDaily:  2,
	BucketWeekly: 3,
	BucketEvent:  2,
}

var bucketScale = map[Bucket]int{
	BucketDaily:  1,
	BucketWeekly: 2,
	BucketEvent:  3,
}

func templatePool(b Bucket) []questTemplate {
	if b == BucketEvent {
		return slices.Clone(bossTemplates)
	}
	return append(slices.Clone(taskTemplates), bossTemplates...)
}

// QuestGenerator rolls new quests for a bucket.
type QuestGenerator struct {
	Rand  *rand.Rand
	NewID func() string
}

// Generate returns fresh quests for b and the updated template history.
// Templates in history are skipped while enough others remain; after that
// the least recently used templates are reused first.
func (g QuestGenerator) Generate(b Bucket, history []string, now time.Time) ([]Quest, []string) {
	pool := templatePool(b)
	count := bucketQuestCount[b]
	scale := bucketScale[b]

	var fresh, used []questTemplate
	for _, t := range pool {
		if slices.Contains(history, t.ID) {
			used = append(used, t)
		} else {
			fresh = append(fresh, t)
		}
	}
	g.Rand.Shuffle(len(fresh), func(i, j int) { fresh[i], fresh[j] = fresh[j], fresh[i] })

	selected := fresh
	if len(selected) > count {
		selected = selected[:count]
	}
	if len(selected) < count {
		slices.SortStableFunc(used, func(a, c questTemplate) int {
			return lastIndex(history, a.ID) - lastIndex(history, c.ID)
		})
		for _, t := range used {
			if len(selected) == count {
				break
			}
			selected = append(selected, t)
		}
	}

	quests := make([]Quest, 0, len(selected))
	for _, t := range selected {
		target := t.BaseTarget*scale + g.Rand.IntN(scale)
		q := Quest{
			ID:          t.ID + "_" + g.NewID(),
			TemplateID:  t.ID,
			Title:       strings.ReplaceAll(t.Title, "{n}", strconv.Itoa(target)),
			Description: t.Desc,
			Type:        t.Type,
			Condition:   Condition{Target: target},
			RewardXP:    t.BaseXP*scale + g.Rand.IntN(rewardNoise),
			StartTime:   now,
		}
		if b == BucketEvent {
			q.TimeLimit = EventTimeLimit
		}
		quests = append(quests, q)
		history = append(history, t.ID)
	}
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}
	return quests, history
}

func lastIndex(s []string, v string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == v {
			return i
		}
	}
	return -1
}

// normalize clamps a stored quest and re-derives completion from its counters.
func (q *Quest) normalize() {
	if q.Condition.Target < 1 {
		q.Condition.Target = 1
	}
	if q.Condition.Current < 0 {
		q.Condition.Current = 0
	}
	if q.RewardXP < 0 {
		q.RewardXP = 0
	}
	if q.IsComplete && q.IsFailed {
		q.IsFailed = false
	}
	if !q.IsFailed && q.Condition.Current >= q.Condition.Target {
		q.IsComplete = true
	}
	if q.Condition.Current > q.Condition.Target {
		q.Condition.Current = q.Condition.Target
	}
	q.recompute()
}

func (q *Quest) recompute() {
	p := float64(q.Condition.Current) * 100 / float64(q.Condition.Target)
	q.Progress = min(p, 100)
}

// Expired reports whether the quest's time limit has elapsed at now.
func (q Quest) Expired(now time.Time) bool {
	if q.TimeLimit <= 0 || q.StartTime.IsZero() {
		return false
	}
	return now.Sub(q.StartTime) > q.TimeLimit
}

// BucketQuest is a quest together with the bucket that holds it.
type BucketQuest struct {
	Bucket Bucket
	Quest  Quest
}

// QuestBoard holds the three quest buckets with their reset dates and
// template histories.
type QuestBoard struct {
	Quests    map[Bucket][]Quest
	LastReset map[Bucket]string
	History   map[Bucket][]string
}

func NewQuestBoard() QuestBoard {
	return QuestBoard{
		Quests:    map[Bucket][]Quest{},
		LastReset: map[Bucket]string{},
		History:   map[Bucket][]string{},
	}
}

// Refresh regenerates every bucket whose reset boundary has passed and
// returns the regenerated buckets.
func (qb *QuestBoard) Refresh(g QuestGenerator, now time.Time) []Bucket {
	var out []Bucket
	for _, b := range Buckets {
		if !ResetDue(b, qb.LastReset[b], now, qb.Quests[b]) {
			continue
		}
		qb.Regenerate(g, b, now)
		out = append(out, b)
	}
	return out
}

// Regenerate replaces bucket b unconditionally.
func (qb *QuestBoard) Regenerate(g QuestGenerator, b Bucket, now time.Time) {
	quests, history := g.Generate(b, qb.History[b], now)
	qb.Quests[b] = quests
	qb.History[b] = history
	qb.LastReset[b] = DateKey(now)
}

// Advance counts one event of type t against every open quest of that type
// in all buckets. It returns the quests that completed on this call.
func (qb *QuestBoard) Advance(t QuestType) []BucketQuest {
	var done []BucketQuest
	for _, b := range Buckets {
		qs := qb.Quests[b]
		for i := range qs {
			q := &qs[i]
			if q.Type != t || q.Terminal() {
				continue
			}
			q.Condition.Current++
			if q.Condition.Current >= q.Condition.Target {
				q.Condition.Current = q.Condition.Target
				q.IsComplete = true
				done = append(done, BucketQuest{Bucket: b, Quest: *q})
			}
			q.recompute()
		}
	}
	return done
}

// Expire fails every open quest whose time limit has elapsed.
func (qb *QuestBoard) Expire(now time.Time) []BucketQuest {
	var failed []BucketQuest
	for _, b := range Buckets {
		qs := qb.Quests[b]
		for i := range qs {
			q := &qs[i]
			if q.Terminal() || !q.Expired(now) {
				continue
			}
			q.IsFailed = true
			failed = append(failed, BucketQuest{Bucket: b, Quest: *q})
		}
	}
	return failed
}

func (qb *QuestBoard) normalize() {
	for b, qs := range qb.Quests {
		for i := range qs {
			qs[i].normalize()
		}
		qb.Quests[b] = qs
	}
	for b, h := range qb.History {
		if len(h) > HistoryWindow {
			qb.History[b] = h[len(h)-HistoryWindow:]
		}
	}
}
