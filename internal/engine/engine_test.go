package engine

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/phuchgg/neon-rpg/internal/storage"
)

// monday 2026-10-19, 09:00 UTC
var testStart = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestKV(t *testing.T) *storage.KVRepo {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.Open(context.Background(), path, zerolog.Nop())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return storage.NewKVRepo(db)
}

func openTestService(t *testing.T, kv KV, clock *testClock) *Service {
	t.Helper()
	svc, err := Open(context.Background(), kv,
		WithClock(clock.Now),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return svc
}

func newTestService(t *testing.T) (*Service, *storage.KVRepo, *testClock) {
	t.Helper()
	kv := newTestKV(t)
	clock := &testClock{t: testStart}
	return openTestService(t, kv, clock), kv, clock
}

func seedValue(t *testing.T, kv *storage.KVRepo, key string, v any) {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", key, err)
	}
	if err := kv.Put(context.Background(), key, raw); err != nil {
		t.Fatalf("put %s: %v", key, err)
	}
}

func mustTask(t *testing.T, svc *Service, title, bossID string) Task {
	t.Helper()
	task, err := svc.CreateTask(context.Background(), CreateTaskInput{Title: title, BossID: bossID})
	if err != nil {
		t.Fatalf("CreateTask(%q): %v", title, err)
	}
	return *task
}

func mustComplete(t *testing.T, svc *Service, id string) *CompleteResult {
	t.Helper()
	res, err := svc.CompleteTask(context.Background(), id)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	return res
}

func TestOpenSeedsDefaults(t *testing.T) {
	svc, _, _ := newTestService(t)

	p := svc.Progress()
	if p.Level != 1 || p.XP != 0 || p.XPBank != 0 {
		t.Fatalf("progress=%+v, want fresh level 1", p)
	}
	if got := len(svc.Bosses()); got != len(seedBosses) {
		t.Fatalf("bosses=%d, want %d", got, len(seedBosses))
	}
	want := map[Bucket]int{BucketDaily: 2, BucketWeekly: 3, BucketEvent: 2}
	for b, n := range want {
		if got := len(svc.Quests(b)); got != n {
			t.Fatalf("%s quests=%d, want %d", b, got, n)
		}
	}
	for _, q := range svc.Quests(BucketEvent) {
		if q.Type != QuestBoss {
			t.Fatalf("event quest %s has type %s, want boss", q.ID, q.Type)
		}
		if q.TimeLimit != EventTimeLimit {
			t.Fatalf("event quest time limit=%s, want %s", q.TimeLimit, EventTimeLimit)
		}
	}
}

func TestCompleteTaskAwardsXPAndStartsStreak(t *testing.T) {
	svc, _, _ := newTestService(t)
	task := mustTask(t, svc, "write the weekly report", "")

	res := mustComplete(t, svc, task.ID)
	if res.TaskXP != TaskBaseXP {
		t.Fatalf("TaskXP=%d, want %d", res.TaskXP, TaskBaseXP)
	}
	if res.Streak.Streak != 1 || !res.Streak.NewDay {
		t.Fatalf("streak=%+v, want first day", res.Streak)
	}

	p := svc.Progress()
	if p.XPBank != res.XPDelta {
		t.Fatalf("XPBank=%d, want %d", p.XPBank, res.XPDelta)
	}
	if p.LastActiveDate != "2026-10-19" {
		t.Fatalf("LastActiveDate=%q", p.LastActiveDate)
	}

	got, err := svc.Task(task.ID)
	if err != nil {
		t.Fatalf("Task: %v", err)
	}
	if !got.Completed || got.CompletedAt == nil || got.XPAwarded != TaskBaseXP {
		t.Fatalf("task not marked complete: %+v", got)
	}

	if _, err := svc.CompleteTask(context.Background(), task.ID); !errors.Is(err, ErrTaskAlreadyDone) {
		t.Fatalf("second CompleteTask err=%v, want ErrTaskAlreadyDone", err)
	}
}

func TestCompleteUnknownTask(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CompleteTask(context.Background(), "nope")
	var nf NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "task" {
		t.Fatalf("err=%v, want task NotFoundError", err)
	}
}

func TestQuestRewardCreditedOnce(t *testing.T) {
	kv := newTestKV(t)
	clock := &testClock{t: testStart}
	seedValue(t, kv, QuestKey(BucketDaily), []Quest{{
		ID: "task_5_seed", TemplateID: "task_5", Title: "Complete 5 Tasks", Type: QuestTask,
		Condition: Condition{Target: 5, Current: 4}, RewardXP: 40, StartTime: testStart,
	}})
	seedValue(t, kv, LastResetKey(BucketDaily), DateKey(testStart))
	svc := openTestService(t, kv, clock)

	first := mustComplete(t, svc, mustTask(t, svc, "one", "").ID)
	if len(first.QuestsCompleted) != 1 {
		t.Fatalf("quests completed=%d, want 1", len(first.QuestsCompleted))
	}
	if first.XPDelta != TaskBaseXP+40 {
		t.Fatalf("XPDelta=%d, want %d", first.XPDelta, TaskBaseXP+40)
	}
	q := svc.Quests(BucketDaily)[0]
	if !q.IsComplete || q.Condition.Current != 5 || q.Progress != 100 {
		t.Fatalf("quest=%+v, want complete at 5/5", q)
	}

	second := mustComplete(t, svc, mustTask(t, svc, "two", "").ID)
	for _, bq := range second.QuestsCompleted {
		if bq.Quest.ID == "task_5_seed" {
			t.Fatalf("quest rewarded twice")
		}
	}
	if got := len(svc.QuestHistory()); got != 1 {
		t.Fatalf("quest history=%d, want 1", got)
	}
}

func TestBossDefeatCreditsAndRecordsHistory(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	boss, err := svc.CreateBoss(ctx, CreateBossInput{Title: "Paper Tiger", Tier: TierMini, TotalXP: 1})
	if err != nil {
		t.Fatalf("CreateBoss: %v", err)
	}
	task := mustTask(t, svc, "file the receipts", boss.ID)

	res := mustComplete(t, svc, task.ID)
	if res.BossDefeated == nil || res.BossDefeated.ID != boss.ID {
		t.Fatalf("BossDefeated=%v, want %s", res.BossDefeated, boss.ID)
	}
	if res.BossDefeated.Progress != 100 || res.BossDefeated.XPRemaining != 0 {
		t.Fatalf("defeated boss=%+v", res.BossDefeated)
	}
	if res.XPDelta < TaskBaseXP+BossDefeatXP {
		t.Fatalf("XPDelta=%d, want at least %d", res.XPDelta, TaskBaseXP+BossDefeatXP)
	}
	if got := svc.BossHistory(); len(got) != 1 || got[0].BossID != boss.ID {
		t.Fatalf("boss history=%+v", got)
	}

	other := mustTask(t, svc, "another", "")
	if err := svc.AssignTask(ctx, other.ID, boss.ID); !errors.Is(err, ErrBossDefeated) {
		t.Fatalf("AssignTask err=%v, want ErrBossDefeated", err)
	}
}

func TestBossDamageFollowsTier(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	boss, err := svc.CreateBoss(ctx, CreateBossInput{Title: "Tax Season", Tier: TierMini, TotalXP: 3000})
	if err != nil {
		t.Fatalf("CreateBoss: %v", err)
	}
	res := mustComplete(t, svc, mustTask(t, svc, "gather forms", boss.ID).ID)
	if res.BossDamage != 300 {
		t.Fatalf("damage=%d, want 300", res.BossDamage)
	}
	if res.Boss.XPRemaining != 2700 || res.Boss.Progress != 10 || res.Boss.IsDefeated {
		t.Fatalf("boss=%+v, want 2700 left at 10%%", res.Boss)
	}
}

func TestLockedBossRejectsTasks(t *testing.T) {
	svc, _, _ := newTestService(t)

	var locked BossView
	for _, v := range svc.Bosses() {
		if !v.Assignable {
			locked = v
			break
		}
	}
	if locked.Boss.ID == "" {
		t.Fatalf("expected a locked boss in the seed roster")
	}

	_, err := svc.CreateTask(context.Background(), CreateTaskInput{Title: "x", BossID: locked.Boss.ID})
	var lbe LockedBossError
	if !errors.As(err, &lbe) {
		t.Fatalf("err=%v, want LockedBossError", err)
	}
	if lbe.BossID != locked.Boss.ID || len(lbe.Missing) == 0 {
		t.Fatalf("LockedBossError=%+v", lbe)
	}
}

func TestZoneResetAfterThreshold(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	var last *CompleteResult
	for i := 0; i < ZoneResetThreshold; i++ {
		b, err := svc.CreateBoss(ctx, CreateBossInput{Title: "Minion", TotalXP: 1})
		if err != nil {
			t.Fatalf("CreateBoss: %v", err)
		}
		last = mustComplete(t, svc, mustTask(t, svc, "hit", b.ID).ID)
		if i < ZoneResetThreshold-1 && last.ZoneReset {
			t.Fatalf("zone reset after %d defeats", i+1)
		}
	}
	if !last.ZoneReset {
		t.Fatalf("no zone reset after %d defeats", ZoneResetThreshold)
	}
	views := svc.Bosses()
	if len(views) != len(seedBosses) {
		t.Fatalf("roster=%d, want fresh seed of %d", len(views), len(seedBosses))
	}
	for _, v := range views {
		if v.Boss.IsDefeated {
			t.Fatalf("fresh roster has defeated boss %s", v.Boss.Title)
		}
	}
	if got := len(svc.BossHistory()); got != ZoneResetThreshold {
		t.Fatalf("boss history=%d, want %d", got, ZoneResetThreshold)
	}
}

func TestTickFailsExpiredEventQuest(t *testing.T) {
	kv := newTestKV(t)
	clock := &testClock{t: testStart}
	seedValue(t, kv, QuestKey(BucketEvent), []Quest{{
		ID: "boss_mini_seed", TemplateID: "boss_mini", Title: "Defeat 6 Mini Bosses", Type: QuestBoss,
		Condition: Condition{Target: 6}, RewardXP: 150, TimeLimit: 6 * time.Hour, StartTime: testStart,
	}})
	seedValue(t, kv, LastResetKey(BucketEvent), DateKey(testStart))
	svc := openTestService(t, kv, clock)
	ctx := context.Background()

	res, err := svc.Tick(ctx)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(res.Failed) != 0 {
		t.Fatalf("failed early: %+v", res.Failed)
	}

	clock.Advance(7 * time.Hour)
	res, err = svc.Tick(ctx)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(res.Failed) != 1 || res.Failed[0].Quest.ID != "boss_mini_seed" {
		t.Fatalf("failed=%+v, want the event quest", res.Failed)
	}

	b, err := svc.CreateBoss(ctx, CreateBossInput{Title: "Late", TotalXP: 1})
	if err != nil {
		t.Fatalf("CreateBoss: %v", err)
	}
	mustComplete(t, svc, mustTask(t, svc, "late hit", b.ID).ID)

	q := svc.Quests(BucketEvent)[0]
	if !q.IsFailed || q.IsComplete || q.Condition.Current != 0 {
		t.Fatalf("quest=%+v, want failed and untouched", q)
	}
}

func TestUnlockRewardOutcomes(t *testing.T) {
	kv := newTestKV(t)
	clock := &testClock{t: testStart}
	seedValue(t, kv, KeyProgress, Progress{Level: 3, XP: 5, XPBank: 150})
	svc := openTestService(t, kv, clock)
	ctx := context.Background()

	events, stop := svc.Subscribe(4)
	defer stop()

	res, err := svc.UnlockReward(ctx, "synthcore")
	if err != nil {
		t.Fatalf("UnlockReward: %v", err)
	}
	if res.Status != UnlockInsufficientFunds || res.Shortfall != 10 {
		t.Fatalf("result=%+v, want insufficient by 10", res)
	}

	res, err = svc.UnlockReward(ctx, "jade_echo")
	if err != nil {
		t.Fatalf("UnlockReward: %v", err)
	}
	if res.Status != UnlockSuccess || !res.Equipped {
		t.Fatalf("result=%+v, want success", res)
	}
	p := svc.Progress()
	if p.XPBank != 50 || p.XP != 5 || p.Level != 3 {
		t.Fatalf("progress=%+v, want only bank reduced", p)
	}
	if got := svc.Rewards().Equipped[CategoryTheme]; got != "jade_echo" {
		t.Fatalf("equipped theme=%q", got)
	}
	select {
	case ev := <-events:
		if ev != (CosmeticChanged{Category: CategoryTheme, ID: "jade_echo"}) {
			t.Fatalf("event=%+v", ev)
		}
	default:
		t.Fatalf("no CosmeticChanged event")
	}

	res, err = svc.UnlockReward(ctx, "jade_echo")
	if err != nil {
		t.Fatalf("UnlockReward: %v", err)
	}
	if res.Status != UnlockAlreadyUnlocked {
		t.Fatalf("status=%s, want alreadyUnlocked", res.Status)
	}
	if got := svc.Progress().XPBank; got != 50 {
		t.Fatalf("XPBank=%d after repeat unlock, want 50", got)
	}

	res, err = svc.UnlockReward(ctx, StreakBadgeID)
	if err != nil {
		t.Fatalf("UnlockReward: %v", err)
	}
	if res.Status != UnlockRejected {
		t.Fatalf("streak badge status=%s, want rejected", res.Status)
	}

	if _, err := svc.UnlockReward(ctx, "no_such_item"); err == nil {
		t.Fatalf("expected error for unknown reward")
	}
}

func TestEquipRequiresUnlock(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Equip(ctx, CategoryBadge, "badge_glitch")
	if err != nil {
		t.Fatalf("Equip: %v", err)
	}
	if res.Status != EquipNotUnlocked {
		t.Fatalf("status=%s, want notUnlocked", res.Status)
	}

	res, err = svc.Equip(ctx, CategoryTheme, DefaultTheme)
	if err != nil {
		t.Fatalf("Equip default: %v", err)
	}
	if res.Status != EquipSuccess {
		t.Fatalf("default theme status=%s", res.Status)
	}

	if _, err := svc.Equip(ctx, CategoryPet, "badge_glitch"); !errors.Is(err, ErrCategoryMismatch) {
		t.Fatalf("err=%v, want ErrCategoryMismatch", err)
	}
}

func TestStreakMilestones(t *testing.T) {
	kv := newTestKV(t)
	clock := &testClock{t: testStart}
	yesterday := DateKey(testStart.AddDate(0, 0, -1))
	seedValue(t, kv, KeyProgress, Progress{Level: 1, Streak: 2, LastActiveDate: yesterday})
	svc := openTestService(t, kv, clock)

	res := mustComplete(t, svc, mustTask(t, svc, "day three", "").ID)
	if res.Streak.Streak != 3 || res.Streak.BonusXP != StreakBonusXP {
		t.Fatalf("streak=%+v, want day 3 bonus", res.Streak)
	}
	if res.XPDelta != TaskBaseXP+StreakBonusXP {
		t.Fatalf("XPDelta=%d, want %d", res.XPDelta, TaskBaseXP+StreakBonusXP)
	}
	tasks := svc.Activity(0, ActivityTask)
	if len(tasks) != 1 || tasks[0].XP != TaskBaseXP {
		t.Fatalf("task entries=%+v, want one worth %d", tasks, TaskBaseXP)
	}
	bonus := svc.Activity(0, ActivityStreak)
	if len(bonus) != 1 || bonus[0].XP != StreakBonusXP {
		t.Fatalf("streak entries=%+v, want one worth %d", bonus, StreakBonusXP)
	}

	res = mustComplete(t, svc, mustTask(t, svc, "same day", "").ID)
	if res.Streak.NewDay || res.Streak.BonusXP != 0 {
		t.Fatalf("same-day streak=%+v, want no change", res.Streak)
	}

	for day := 4; day <= 7; day++ {
		clock.Advance(24 * time.Hour)
		res = mustComplete(t, svc, mustTask(t, svc, "daily", "").ID)
	}
	if res.Streak.Streak != 7 || !res.BadgeEarned {
		t.Fatalf("day 7 result streak=%d badge=%v", res.Streak.Streak, res.BadgeEarned)
	}
	if len(res.ClassesUnlocked) != 1 || res.ClassesUnlocked[0] != ClassEdgewalker {
		t.Fatalf("classes unlocked=%v, want edgewalker", res.ClassesUnlocked)
	}
	if !svc.Rewards().Has(StreakBadgeID) {
		t.Fatalf("streak badge not granted")
	}
	eq, err := svc.Equip(context.Background(), CategoryBadge, StreakBadgeID)
	if err != nil || eq.Status != EquipSuccess {
		t.Fatalf("Equip streak badge: %v %+v", err, eq)
	}

	clock.Advance(48 * time.Hour)
	res = mustComplete(t, svc, mustTask(t, svc, "after a gap", "").ID)
	if res.Streak.Streak != 1 {
		t.Fatalf("streak after gap=%d, want 1", res.Streak.Streak)
	}
}

func TestCorruptValueFallsBackToDefault(t *testing.T) {
	kv := newTestKV(t)
	if err := kv.Put(context.Background(), KeyProgress, json.RawMessage(`{"level":`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	seedValue(t, kv, KeyTasks, "not a list")

	svc := openTestService(t, kv, &testClock{t: testStart})
	if p := svc.Progress(); p.Level != 1 || p.XPBank != 0 {
		t.Fatalf("progress=%+v, want defaults", p)
	}
	if got := len(svc.Tasks()); got != 0 {
		t.Fatalf("tasks=%d, want 0", got)
	}
}

func TestNegativeStoredValuesAreClamped(t *testing.T) {
	kv := newTestKV(t)
	seedValue(t, kv, KeyProgress, Progress{Level: 0, XP: -5, XPBank: -10, Streak: -1})

	svc := openTestService(t, kv, &testClock{t: testStart})
	p := svc.Progress()
	if p.Level != 1 || p.XP != 0 || p.XPBank != 0 || p.Streak != 0 {
		t.Fatalf("progress=%+v, want clamped", p)
	}
}

func TestStateSurvivesReopen(t *testing.T) {
	kv := newTestKV(t)
	clock := &testClock{t: testStart}
	svc := openTestService(t, kv, clock)
	task := mustTask(t, svc, "persist me", "")
	res := mustComplete(t, svc, task.ID)
	daily := svc.Quests(BucketDaily)

	again := openTestService(t, kv, clock)
	if got := again.Progress().XPBank; got != res.XPDelta {
		t.Fatalf("XPBank after reopen=%d, want %d", got, res.XPDelta)
	}
	got, err := again.Task(task.ID)
	if err != nil || !got.Completed {
		t.Fatalf("task after reopen=%+v err=%v", got, err)
	}
	reloaded := again.Quests(BucketDaily)
	if len(reloaded) != len(daily) || reloaded[0].ID != daily[0].ID {
		t.Fatalf("daily quests regenerated on same-day reopen")
	}
}

func TestDailyRegeneratesNextDayWeeklyWaitsForMonday(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	daily := svc.Quests(BucketDaily)
	weekly := svc.Quests(BucketWeekly)

	clock.Advance(24 * time.Hour) // Tuesday
	res, err := svc.Tick(ctx)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if !slices.Contains(res.Regenerated, BucketDaily) || slices.Contains(res.Regenerated, BucketWeekly) {
		t.Fatalf("regenerated=%v, want Daily without Weekly", res.Regenerated)
	}
	if svc.Quests(BucketDaily)[0].ID == daily[0].ID {
		t.Fatalf("daily quests not replaced")
	}
	if svc.Quests(BucketWeekly)[0].ID != weekly[0].ID {
		t.Fatalf("weekly quests replaced on a Tuesday")
	}

	clock.Advance(6 * 24 * time.Hour) // next Monday
	res, err = svc.Tick(ctx)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if svc.Quests(BucketWeekly)[0].ID == weekly[0].ID {
		t.Fatalf("weekly quests not replaced on Monday: %v", res.Regenerated)
	}
}

func TestReopenTask(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	task := mustTask(t, svc, "toggle", "")

	if err := svc.ReopenTask(ctx, task.ID); !errors.Is(err, ErrTaskNotDone) {
		t.Fatalf("reopen open task err=%v", err)
	}
	mustComplete(t, svc, task.ID)
	bank := svc.Progress().XPBank

	if err := svc.ReopenTask(ctx, task.ID); err != nil {
		t.Fatalf("ReopenTask: %v", err)
	}
	got, _ := svc.Task(task.ID)
	if got.Completed || got.CompletedAt != nil {
		t.Fatalf("task still complete: %+v", got)
	}
	if svc.Progress().XPBank != bank {
		t.Fatalf("reopen changed XP")
	}
}

func TestChooseClassAndSwitchCost(t *testing.T) {
	kv := newTestKV(t)
	seedValue(t, kv, KeyProgress, Progress{Level: 1, XPBank: 6000})
	svc := openTestService(t, kv, &testClock{t: testStart})
	ctx := context.Background()

	res, err := svc.ChooseClass(ctx, ClassNetcrasher)
	if err != nil || res.Status != ClassChanged || res.Cost != 0 {
		t.Fatalf("first pick=%+v err=%v, want free change", res, err)
	}

	res, err = svc.ChooseClass(ctx, ClassEdgewalker)
	if err != nil || res.Status != ClassLocked {
		t.Fatalf("edgewalker=%+v err=%v, want locked", res, err)
	}

	res, err = svc.ChooseClass(ctx, ClassSynthmancer)
	if err != nil || res.Status != ClassChanged || res.Cost != ClassSwitchCost {
		t.Fatalf("switch=%+v err=%v", res, err)
	}
	if got := svc.Progress().XPBank; got != 1000 {
		t.Fatalf("XPBank=%d, want 1000", got)
	}

	res, err = svc.ChooseClass(ctx, ClassGhostrunner)
	if err != nil || res.Status != ClassInsufficientFunds || res.Shortfall != 4000 {
		t.Fatalf("broke switch=%+v err=%v", res, err)
	}
	if svc.Class().Current != ClassSynthmancer {
		t.Fatalf("class=%s, want synthmancer", svc.Class().Current)
	}

	task := mustTask(t, svc, "anything", "")
	if got := mustComplete(t, svc, task.ID).TaskXP; got != TaskBaseXP+2 {
		t.Fatalf("synthmancer TaskXP=%d, want %d", got, TaskBaseXP+2)
	}
}

func TestClaimClassQuest(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	if _, err := svc.ClaimClassQuest(ctx); !errors.Is(err, ErrNoClass) {
		t.Fatalf("err=%v, want ErrNoClass", err)
	}
	if _, err := svc.ChooseClass(ctx, ClassGhostrunner); err != nil {
		t.Fatalf("ChooseClass: %v", err)
	}

	cq, err := svc.ClassQuest(ctx)
	if err != nil || cq.Quest == "" || cq.Class != ClassGhostrunner {
		t.Fatalf("ClassQuest=%+v err=%v", cq, err)
	}

	res, err := svc.ClaimClassQuest(ctx)
	if err != nil {
		t.Fatalf("ClaimClassQuest: %v", err)
	}
	if res.XP < ClassQuestXP || res.Quest.Streak != 1 || !res.Quest.Completed {
		t.Fatalf("claim=%+v", res)
	}
	if _, err := svc.ClaimClassQuest(ctx); !errors.Is(err, ErrClassQuestClaimed) {
		t.Fatalf("second claim err=%v", err)
	}

	clock.Advance(24 * time.Hour)
	res, err = svc.ClaimClassQuest(ctx)
	if err != nil {
		t.Fatalf("next day claim: %v", err)
	}
	if res.Quest.Streak != 2 {
		t.Fatalf("class quest streak=%d, want 2", res.Quest.Streak)
	}
	hist := svc.QuestHistory()
	if len(hist) != 2 || hist[0].Class != ClassGhostrunner {
		t.Fatalf("quest history=%+v", hist)
	}
}

func TestClassSwitchKeepsTodaysClaim(t *testing.T) {
	svc, kv, clock := newTestService(t)
	ctx := context.Background()

	if _, err := svc.ChooseClass(ctx, ClassGhostrunner); err != nil {
		t.Fatalf("ChooseClass: %v", err)
	}
	if _, err := svc.ClaimClassQuest(ctx); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	clock.Advance(24 * time.Hour)
	if _, err := svc.ClaimClassQuest(ctx); err != nil {
		t.Fatalf("next day claim: %v", err)
	}

	p := svc.Progress()
	p.XPBank = 6000
	seedValue(t, kv, KeyProgress, p)
	if err := svc.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	res, err := svc.ChooseClass(ctx, ClassSynthmancer)
	if err != nil || res.Status != ClassChanged {
		t.Fatalf("switch=%+v err=%v", res, err)
	}
	bank := svc.Progress().XPBank

	cq, err := svc.ClassQuest(ctx)
	if err != nil {
		t.Fatalf("ClassQuest: %v", err)
	}
	if cq.Class != ClassSynthmancer || !cq.Completed || cq.Streak != 2 {
		t.Fatalf("class quest after switch=%+v", cq)
	}
	if _, err := svc.ClaimClassQuest(ctx); !errors.Is(err, ErrClassQuestClaimed) {
		t.Fatalf("same day reclaim err=%v, want ErrClassQuestClaimed", err)
	}
	if got := svc.Progress().XPBank; got != bank {
		t.Fatalf("bank=%d after rejected claim, want %d", got, bank)
	}
	if hist := svc.QuestHistory(); len(hist) != 2 {
		t.Fatalf("quest history len=%d, want 2", len(hist))
	}

	clock.Advance(24 * time.Hour)
	res2, err := svc.ClaimClassQuest(ctx)
	if err != nil {
		t.Fatalf("claim after switch day: %v", err)
	}
	if res2.Quest.Streak != 3 || res2.Quest.Class != ClassSynthmancer {
		t.Fatalf("claim=%+v, want streak 3 as synthmancer", res2.Quest)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src, _, _ := newTestService(t)
	ctx := context.Background()
	mustComplete(t, src, mustTask(t, src, "sync me", "").ID)

	values, err := src.ExportAll(ctx)
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	for _, k := range AllKeys() {
		if _, ok := values[k]; !ok {
			t.Fatalf("export missing key %s", k)
		}
	}
	values["somethingElse"] = json.RawMessage(`1`)

	dst, _, _ := newTestService(t)
	skipped, err := dst.ImportAll(ctx, values)
	if err != nil {
		t.Fatalf("ImportAll: %v", err)
	}
	if len(skipped) != 1 || skipped[0] != "somethingElse" {
		t.Fatalf("skipped=%v", skipped)
	}
	if dst.Progress() != src.Progress() {
		t.Fatalf("progress=%+v, want %+v", dst.Progress(), src.Progress())
	}
	if len(dst.Tasks()) != 1 {
		t.Fatalf("tasks not imported")
	}
}

func TestWipe(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	mustComplete(t, svc, mustTask(t, svc, "gone soon", "").ID)

	if err := svc.Wipe(ctx); err != nil {
		t.Fatalf("Wipe: %v", err)
	}
	if p := svc.Progress(); p != NewProgress() {
		t.Fatalf("progress=%+v after wipe", p)
	}
	if len(svc.Tasks()) != 0 || len(svc.Activity(0)) != 0 {
		t.Fatalf("tasks or activity survived wipe")
	}
	if len(svc.Quests(BucketDaily)) != 2 {
		t.Fatalf("quests not regenerated after wipe")
	}
}

func TestLeaderboardSimulatesOncePerDay(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	mustComplete(t, svc, mustTask(t, svc, "climb", "").ID)

	first, err := svc.Leaderboard(ctx, "Max")
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(first) != len(SeedSimPlayers())+1 {
		t.Fatalf("entries=%d", len(first))
	}
	again, err := svc.Leaderboard(ctx, "Max")
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	for i := range first {
		if first[i] != again[i] {
			t.Fatalf("rivals moved twice on the same day")
		}
	}

	clock.Advance(24 * time.Hour)
	if _, err := svc.Leaderboard(ctx, "Max"); err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if got := svc.Snapshot().Sims.LastSimulated; got != "2026-10-20" {
		t.Fatalf("LastSimulated=%q", got)
	}
}

var errStoreDown = errors.New("store down")

// flakyKV fails writes, and optionally reads, on demand.
type flakyKV struct {
	KV
	failPut bool
	failGet bool
}

func (f *flakyKV) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if f.failGet {
		return nil, errStoreDown
	}
	return f.KV.Get(ctx, key)
}

func (f *flakyKV) PutMany(ctx context.Context, values map[string]json.RawMessage) error {
	if f.failPut {
		return errStoreDown
	}
	return f.KV.PutMany(ctx, values)
}

func TestFailedWriteLeavesCommittedState(t *testing.T) {
	tests := []struct {
		name      string
		readsFail bool
	}{
		{"reload from store", false},
		{"store unreadable", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := &flakyKV{KV: newTestKV(t)}
			svc := openTestService(t, kv, &testClock{t: testStart})
			ctx := context.Background()
			done := mustTask(t, svc, "kept", "")
			mustComplete(t, svc, done.ID)
			before := svc.Progress()

			kv.failPut, kv.failGet = true, tt.readsFail
			task, err := svc.CreateTask(ctx, CreateTaskInput{Title: "lost"})
			if !errors.Is(err, errStoreDown) || task != nil {
				t.Fatalf("CreateTask=%v err=%v, want store error", task, err)
			}
			if err := svc.ReopenTask(ctx, done.ID); !errors.Is(err, errStoreDown) {
				t.Fatalf("ReopenTask err=%v, want store error", err)
			}
			if _, err := svc.CompleteTask(ctx, done.ID); !errors.Is(err, ErrTaskAlreadyDone) {
				t.Fatalf("complete after failed reopen err=%v, want ErrTaskAlreadyDone", err)
			}

			tasks := svc.Tasks()
			if len(tasks) != 1 || tasks[0].Title != "kept" {
				t.Fatalf("tasks=%+v, want only the committed one", tasks)
			}
			if got := svc.Progress(); got != before {
				t.Fatalf("progress=%+v, want %+v", got, before)
			}
		})
	}
}
