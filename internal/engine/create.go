package engine

import (
	"context"
	"slices"
)

type CreateTaskInput struct {
	Title  string
	BossID string
}

// CreateTask adds an open task, optionally linked to an assignable boss.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if in.BossID != "" {
		if err := s.checkAssignable(in.BossID); err != nil {
			return nil, err
		}
	}

	t := Task{
		ID:        s.newID(),
		Title:     title,
		CreatedAt: s.now(),
		BossID:    in.BossID,
	}
	s.st.Tasks = append([]Task{t}, s.st.Tasks...)
	s.mark(KeyTasks)
	if err := s.commit(ctx); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Service) checkAssignable(bossID string) error {
	i := s.st.bossIndex(bossID)
	if i < 0 {
		return NotFoundError{Kind: "boss", ID: bossID}
	}
	b := s.st.Bosses[i]
	if b.IsDefeated {
		return ErrBossDefeated
	}
	return checkBossGate(b, s.st.Bosses)
}

// AssignTask links an open task to a boss. An empty bossID unlinks it.
func (s *Service) AssignTask(ctx context.Context, taskID, bossID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.st.taskIndex(taskID)
	if i < 0 {
		return NotFoundError{Kind: "task", ID: taskID}
	}
	if s.st.Tasks[i].Completed {
		return ErrTaskAlreadyDone
	}
	if bossID != "" {
		if err := s.checkAssignable(bossID); err != nil {
			return err
		}
	}
	s.st.Tasks[i].BossID = bossID
	s.mark(KeyTasks)
	return s.commit(ctx)
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.st.taskIndex(id)
	if i < 0 {
		return NotFoundError{Kind: "task", ID: id}
	}
	s.st.Tasks = slices.Delete(s.st.Tasks, i, i+1)
	s.mark(KeyTasks)
	return s.commit(ctx)
}

// ReopenTask marks a completed task open again. XP already awarded stays
// with the player; completing the task again awards it again.
func (s *Service) ReopenTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.st.taskIndex(id)
	if i < 0 {
		return NotFoundError{Kind: "task", ID: id}
	}
	t := &s.st.Tasks[i]
	if !t.Completed {
		return ErrTaskNotDone
	}
	t.Completed = false
	t.CompletedAt = nil
	if t.BossID != "" && s.st.bossIndex(t.BossID) < 0 {
		t.BossID = ""
	}
	s.mark(KeyTasks)
	return s.commit(ctx)
}

// Tasks returns open tasks first, newest first within each group.
func (s *Service) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := slices.Clone(s.st.Tasks)
	slices.SortStableFunc(out, func(a, b Task) int {
		if a.Completed != b.Completed {
			if a.Completed {
				return 1
			}
			return -1
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func (s *Service) Task(id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.st.taskIndex(id)
	if i < 0 {
		return Task{}, NotFoundError{Kind: "task", ID: id}
	}
	return s.st.Tasks[i], nil
}

type CreateBossInput struct {
	Title       string
	Description string
	Tier        Tier
	TotalXP     int
	UnlockAfter []string
}

// CreateBoss adds a custom boss to the active roster. TotalXP defaults to
// the tier's default when zero.
func (s *Service) CreateBoss(ctx context.Context, in CreateBossInput) (*Boss, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	tier := in.Tier
	if tier == "" {
		tier = TierMini
	}
	if !tier.IsValid() {
		return nil, NotFoundError{Kind: "tier", ID: string(tier)}
	}
	for _, id := range in.UnlockAfter {
		if s.st.bossIndex(id) < 0 {
			return nil, NotFoundError{Kind: "boss", ID: id}
		}
	}
	total := in.TotalXP
	if total <= 0 {
		total = DefaultTotalXP(tier)
	}

	b := Boss{
		ID:          s.newID(),
		Title:       title,
		Description: in.Description,
		Tier:        tier,
		TotalXP:     total,
		XPRemaining: total,
		UnlockAfter: slices.Clone(in.UnlockAfter),
		CreatedAt:   s.now(),
	}
	b.normalize()
	s.st.Bosses = append(s.st.Bosses, b)
	s.mark(KeyBosses)
	if err := s.commit(ctx); err != nil {
		return nil, err
	}
	return &b, nil
}

// Bosses returns the roster with assignability evaluated now.
func (s *Service) Bosses() []BossView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return viewBosses(s.st.Bosses)
}

// Zone is the current map zone derived from the defeated count.
func (s *Service) Zone() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ZoneFor(DefeatedCount(s.st.Bosses))
}

// ResetZone replaces the whole roster with a fresh seed roster.
func (s *Service) ResetZone(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoneReset()
	return s.commit(ctx)
}

func (s *Service) zoneReset() {
	defeated := DefeatedCount(s.st.Bosses)
	s.st.Bosses = SeedRoster(s.now(), s.newID)
	for i := range s.st.Tasks {
		if !s.st.Tasks[i].Completed {
			s.st.Tasks[i].BossID = ""
		}
	}
	s.logActivity(ActivityEntry{
		Type:        ActivityBoss,
		Description: "Zone reset: a new roster rises",
		Details:     map[string]string{detailEvent: eventZoneReset},
	})
	s.mark(KeyBosses, KeyTasks)
	s.log.Info().Int("defeated", defeated).Msg("zone reset")
}
