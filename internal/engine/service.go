package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// Service owns one player's in-memory model. Every operation runs under a
// single lock, reads nothing back from the store, and writes the keys it
// changed before returning.
type Service struct {
	kv    KV
	log   zerolog.Logger
	now   func() time.Time
	rng   *rand.Rand
	newID func() string
	gen   QuestGenerator

	mu    sync.Mutex
	st    *State
	saved *State // last model known to match the store
	dirty map[string]bool
	bus   cosmeticBus
}

type Option func(*Service)

func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.log = l } }

// WithClock replaces time.Now. Calendar days are taken in the clock's location.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithRand(r *rand.Rand) Option { return func(s *Service) { s.rng = r } }

// WithIDs replaces the generator used for task and boss ids.
func WithIDs(newID func() string) Option { return func(s *Service) { s.newID = newID } }

// Open loads the player's state from kv and brings quests up to date.
func Open(ctx context.Context, kv KV, opts ...Option) (*Service, error) {
	s := &Service{
		kv:    kv,
		log:   zerolog.Nop(),
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
		dirty: map[string]bool{},
	}
	for _, o := range opts {
		o(s)
	}
	if s.rng == nil {
		seed := uint64(s.now().UnixNano())
		s.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	s.gen = QuestGenerator{Rand: s.rng, NewID: questSuffix}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func questSuffix() string {
	id, err := gonanoid.New(10)
	if err != nil {
		return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	}
	return id
}

func (s *Service) load(ctx context.Context) error {
	now := s.now()
	st, err := loadState(ctx, s.kv, s.log, now, s.newID)
	if err != nil {
		return err
	}
	s.st = st
	s.saved = st.Clone()
	s.dirty = map[string]bool{}

	if regen := s.st.Quests.Refresh(s.gen, now); len(regen) > 0 {
		for _, b := range regen {
			s.markBucket(b)
		}
		s.log.Debug().Interface("buckets", regen).Msg("quests regenerated")
	}
	if unlocked := s.st.Class.EvaluateUnlocks(s.st.Progress); len(unlocked) > 0 {
		s.mark(KeyPlayerClass)
	}
	return s.commit(ctx)
}

// Reload discards the in-memory model and reads it again from the store.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Service) mark(keys ...string) {
	for _, k := range keys {
		s.dirty[k] = true
	}
}

func (s *Service) markBucket(b Bucket) {
	s.mark(QuestKey(b), LastResetKey(b), HistoryKey(b))
}

// commit writes every dirty key. On failure the model is reloaded from the
// store, or rolled back to the last committed copy when the store cannot be
// read either, so memory never runs ahead of disk.
func (s *Service) commit(ctx context.Context) error {
	if len(s.dirty) == 0 {
		return nil
	}
	keys := make([]string, 0, len(s.dirty))
	for k := range s.dirty {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	values, err := encodeKeys(s.st, keys)
	if err == nil {
		err = s.kv.PutMany(ctx, values)
	}
	if err != nil {
		s.log.Error().Err(err).Strs("keys", keys).Msg("persist failed, reloading state")
		s.dirty = map[string]bool{}
		st, lerr := loadState(ctx, s.kv, s.log, s.now(), s.newID)
		if lerr != nil {
			s.log.Error().Err(lerr).Msg("reload failed, rolling back to last committed state")
			st = s.saved
		}
		s.st = st.Clone()
		s.saved = st.Clone()
		return fmt.Errorf("persist: %w", err)
	}
	s.dirty = map[string]bool{}
	s.saved = s.st.Clone()
	return nil
}

func (s *Service) logActivity(e ActivityEntry) {
	if e.Date.IsZero() {
		e.Date = s.now()
	}
	s.st.Activity = append(s.st.Activity, e)
	s.mark(KeyActivityHistory)
}

// credit adds XP to the ledger and marks progress dirty.
func (s *Service) credit(amount int) LevelChange {
	lc := s.st.Progress.AddXP(amount)
	s.mark(KeyProgress)
	return lc
}

// Snapshot returns a copy of the current model.
func (s *Service) Snapshot() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Clone()
}

func (s *Service) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Progress
}

// Subscribe delivers CosmeticChanged events until the returned func is called.
func (s *Service) Subscribe(buf int) (<-chan CosmeticChanged, func()) {
	return s.bus.subscribe(buf)
}

// ExportAll encodes every known key from the in-memory model.
func (s *Service) ExportAll(ctx context.Context) (map[string]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return encodeKeys(s.st, AllKeys())
}

// ImportAll overwrites every given known key in the store and reloads.
// Unknown keys are ignored. It holds the lock for the whole write so no
// local operation interleaves with it.
func (s *Service) ImportAll(ctx context.Context, values map[string]json.RawMessage) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := make(map[string]json.RawMessage, len(values))
	var skipped []string
	for k, v := range values {
		if IsKnownKey(k) {
			known[k] = v
		} else {
			skipped = append(skipped, k)
		}
	}
	slices.Sort(skipped)
	if len(known) == 0 {
		return skipped, nil
	}
	if err := s.kv.PutMany(ctx, known); err != nil {
		return skipped, fmt.Errorf("import: %w", err)
	}
	return skipped, s.load(ctx)
}

// Wipe resets the player to a first-run state.
func (s *Service) Wipe(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, AllKeys()...); err != nil {
		return fmt.Errorf("wipe: %w", err)
	}
	s.log.Info().Msg("player state wiped")
	return s.load(ctx)
}

func normalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", ErrTitleRequired
	}
	return t, nil
}
