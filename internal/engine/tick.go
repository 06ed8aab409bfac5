package engine

import (
	"context"
	"slices"
)

type TickResult struct {
	Failed      []BucketQuest
	Regenerated []Bucket
}

// Changed reports whether the tick altered any quest.
func (r TickResult) Changed() bool {
	return len(r.Failed) > 0 || len(r.Regenerated) > 0
}

// Tick fails expired quests and regenerates buckets whose reset boundary
// has passed. Callers invoke it periodically; it writes only when something
// changed.
func (s *Service) Tick(ctx context.Context) (*TickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	res := &TickResult{}

	res.Failed = s.st.Quests.Expire(now)
	for _, f := range res.Failed {
		s.markBucket(f.Bucket)
		s.logActivity(ActivityEntry{
			Date:        now,
			Type:        ActivityQuest,
			Description: string(f.Bucket) + " quest failed: " + f.Quest.Title,
			Details:     map[string]string{"questId": f.Quest.ID, "bucket": string(f.Bucket), detailEvent: eventQuestFailed},
		})
	}

	res.Regenerated = s.st.Quests.Refresh(s.gen, now)
	for _, b := range res.Regenerated {
		s.markBucket(b)
	}

	if err := s.commit(ctx); err != nil {
		return nil, err
	}
	if res.Changed() {
		s.log.Debug().Int("failed", len(res.Failed)).Int("regenerated", len(res.Regenerated)).Msg("quest tick")
	}
	return res, nil
}

// Quests returns a copy of the quests in bucket b.
func (s *Service) Quests(b Bucket) []Quest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.st.Quests.Quests[b])
}

// RerollQuests regenerates bucket b regardless of its reset boundary.
func (s *Service) RerollQuests(ctx context.Context, b Bucket) ([]Quest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := ParseBucket(string(b)); !ok {
		return nil, NotFoundError{Kind: "bucket", ID: string(b)}
	}
	s.st.Quests.Regenerate(s.gen, b, s.now())
	s.markBucket(b)
	if err := s.commit(ctx); err != nil {
		return nil, err
	}
	return slices.Clone(s.st.Quests.Quests[b]), nil
}
