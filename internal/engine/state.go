package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/rs/zerolog"
)

// KV is the durable store the engine reads and writes whole values through.
type KV interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	PutMany(ctx context.Context, values map[string]json.RawMessage) error
	Delete(ctx context.Context, keys ...string) error
}

// State is the complete in-memory model of one player.
type State struct {
	Progress     Progress
	Tasks        []Task
	Bosses       []Boss
	Quests       QuestBoard
	Rewards      RewardLedger
	Activity     []ActivityEntry
	BossHistory  []BossHistoryEntry
	QuestHistory []QuestHistoryEntry
	Class        ClassState
	ClassQuest   ClassQuestState
	Sims         SimRoster
}

// NewState returns the defaults used for a first run or a wipe.
func NewState(now time.Time, newID func() string) *State {
	return &State{
		Progress: NewProgress(),
		Bosses:   SeedRoster(now, newID),
		Quests:   NewQuestBoard(),
		Rewards:  NewRewardLedger(),
		Class:    NewClassState(),
		Sims:     SimRoster{Players: SeedSimPlayers()},
	}
}

// Clone returns a copy that shares no mutable slices or maps with st.
func (st *State) Clone() *State {
	c := *st
	c.Tasks = slices.Clone(st.Tasks)
	c.Bosses = slices.Clone(st.Bosses)
	c.Activity = slices.Clone(st.Activity)
	c.BossHistory = slices.Clone(st.BossHistory)
	c.QuestHistory = slices.Clone(st.QuestHistory)
	c.Rewards.Unlocked = slices.Clone(st.Rewards.Unlocked)
	c.Rewards.Equipped = maps.Clone(st.Rewards.Equipped)
	c.Class.Unlocked = slices.Clone(st.Class.Unlocked)
	c.Sims.Players = slices.Clone(st.Sims.Players)
	c.Quests = NewQuestBoard()
	for b, qs := range st.Quests.Quests {
		c.Quests.Quests[b] = slices.Clone(qs)
	}
	maps.Copy(c.Quests.LastReset, st.Quests.LastReset)
	for b, h := range st.Quests.History {
		c.Quests.History[b] = slices.Clone(h)
	}
	return &c
}

func (st *State) normalize(now time.Time, newID func() string) {
	st.Progress.normalize()
	if len(st.Bosses) == 0 {
		st.Bosses = SeedRoster(now, newID)
	}
	for i := range st.Bosses {
		st.Bosses[i].normalize()
	}
	if st.Quests.Quests == nil || st.Quests.LastReset == nil || st.Quests.History == nil {
		qb := NewQuestBoard()
		maps.Copy(qb.Quests, st.Quests.Quests)
		maps.Copy(qb.LastReset, st.Quests.LastReset)
		maps.Copy(qb.History, st.Quests.History)
		st.Quests = qb
	}
	st.Quests.normalize()
	st.Rewards.normalize()
	st.Class.normalize()
	if st.ClassQuest.Streak < 0 {
		st.ClassQuest.Streak = 0
	}
	if len(st.Sims.Players) == 0 {
		st.Sims.Players = SeedSimPlayers()
	}
}

func (st *State) taskIndex(id string) int {
	return slices.IndexFunc(st.Tasks, func(t Task) bool { return t.ID == id })
}

func (st *State) bossIndex(id string) int {
	return slices.IndexFunc(st.Bosses, func(b Boss) bool { return b.ID == id })
}

// binding ties a persisted key to the part of State it holds.
type binding struct {
	key    string
	encode func(st *State) any
	decode func(st *State, raw json.RawMessage) error
}

func bindField[T any](key string, field func(st *State) *T) binding {
	return binding{
		key:    key,
		encode: func(st *State) any { return field(st) },
		decode: func(st *State, raw json.RawMessage) error {
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				return err
			}
			*field(st) = v
			return nil
		},
	}
}

func bindBucket[T any](key string, b Bucket, field func(st *State) map[Bucket]T) binding {
	return binding{
		key:    key,
		encode: func(st *State) any { return field(st)[b] },
		decode: func(st *State, raw json.RawMessage) error {
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				return err
			}
			field(st)[b] = v
			return nil
		},
	}
}

var bindings = buildBindings()

func buildBindings() map[string]binding {
	list := []binding{
		bindField(KeyProgress, func(st *State) *Progress { return &st.Progress }),
		bindField(KeyTasks, func(st *State) *[]Task { return &st.Tasks }),
		bindField(KeyBosses, func(st *State) *[]Boss { return &st.Bosses }),
		bindField(KeyRewardsUnlocked, func(st *State) *[]string { return &st.Rewards.Unlocked }),
		bindField(KeyRewardsEquipped, func(st *State) *map[Category]string { return &st.Rewards.Equipped }),
		bindField(KeyActivityHistory, func(st *State) *[]ActivityEntry { return &st.Activity }),
		bindField(KeyBossHistory, func(st *State) *[]BossHistoryEntry { return &st.BossHistory }),
		bindField(KeyQuestHistory, func(st *State) *[]QuestHistoryEntry { return &st.QuestHistory }),
		bindField(KeyPlayerClass, func(st *State) *ClassState { return &st.Class }),
		bindField(KeyClassQuest, func(st *State) *ClassQuestState { return &st.ClassQuest }),
		bindField(KeySimPlayers, func(st *State) *SimRoster { return &st.Sims }),
	}
	for _, b := range Buckets {
		list = append(list,
			bindBucket(QuestKey(b), b, func(st *State) map[Bucket][]Quest { return st.Quests.Quests }),
			bindBucket(LastResetKey(b), b, func(st *State) map[Bucket]string { return st.Quests.LastReset }),
			bindBucket(HistoryKey(b), b, func(st *State) map[Bucket][]string { return st.Quests.History }),
		)
	}
	out := make(map[string]binding, len(list))
	for _, b := range list {
		out[b.key] = b
	}
	return out
}

// IsKnownKey reports whether key is one of the persisted engine keys.
func IsKnownKey(key string) bool {
	_, ok := bindings[key]
	return ok
}

// loadState reads every key. Missing values keep their defaults; values that
// fail to parse are logged and replaced by defaults.
func loadState(ctx context.Context, kv KV, log zerolog.Logger, now time.Time, newID func() string) (*State, error) {
	st := NewState(now, newID)
	for _, key := range AllKeys() {
		raw, err := kv.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", key, err)
		}
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		if err := bindings[key].decode(st, raw); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("corrupt stored value, using default")
		}
	}
	st.normalize(now, newID)
	return st, nil
}

func encodeKeys(st *State, keys []string) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(keys))
	for _, key := range keys {
		b, ok := bindings[key]
		if !ok {
			return nil, fmt.Errorf("unknown key %q", key)
		}
		raw, err := json.Marshal(b.encode(st))
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		out[key] = raw
	}
	return out, nil
}
