package engine

import (
	"context"
	"fmt"
)

type ClassChangeStatus string

const (
	ClassChanged           ClassChangeStatus = "changed"
	ClassAlreadyActive     ClassChangeStatus = "alreadyActive"
	ClassLocked            ClassChangeStatus = "locked"
	ClassInsufficientFunds ClassChangeStatus = "insufficientFunds"
)

type ClassChangeResult struct {
	Status    ClassChangeStatus
	Class     ClassDef
	Cost      int
	Shortfall int
}

// ChooseClass sets the player's class. The first pick is free; switching
// later costs ClassSwitchCost from the bank.
func (s *Service) ChooseClass(ctx context.Context, id ClassID) (*ClassChangeResult, error) {
	def, ok := LookupClass(id)
	if !ok {
		return nil, NotFoundError{Kind: "class", ID: string(id)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := &ClassChangeResult{Class: def}
	cs := &s.st.Class
	switch {
	case cs.Current == id:
		res.Status = ClassAlreadyActive
		return res, nil
	case !cs.IsUnlocked(id):
		res.Status = ClassLocked
		return res, nil
	}

	if cs.Current != "" {
		res.Cost = ClassSwitchCost
		if !s.st.Progress.SpendFromBank(ClassSwitchCost) {
			res.Status = ClassInsufficientFunds
			res.Shortfall = ClassSwitchCost - s.st.Progress.XPBank
			return res, nil
		}
		s.mark(KeyProgress)
	}
	cs.Current = id
	res.Status = ClassChanged
	s.mark(KeyPlayerClass)
	s.logActivity(ActivityEntry{
		Type:        ActivityClass,
		Description: "Became a " + def.Name,
		Details:     map[string]string{"class": string(id), "cost": fmt.Sprint(res.Cost)},
	})
	if err := s.commit(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) Class() ClassState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Clone().Class
}

// ClassQuest returns today's class quest, rolling a new one when the day or
// the class changed.
func (s *Service) ClassQuest(ctx context.Context) (ClassQuestState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rollClassQuest(); err != nil {
		return ClassQuestState{}, err
	}
	if err := s.commit(ctx); err != nil {
		return ClassQuestState{}, err
	}
	return s.st.ClassQuest, nil
}

func (s *Service) rollClassQuest() error {
	current := s.st.Class.Current
	if current == "" {
		return ErrNoClass
	}
	today := DateKey(s.now())
	cq := &s.st.ClassQuest
	if cq.Date == today && cq.Class == current && cq.Quest != "" {
		return nil
	}
	// A class switch rolls a new quest but keeps today's claim.
	claimed := cq.Date == today && cq.Completed
	def, _ := LookupClass(current)
	cq.Date = today
	cq.Class = current
	cq.Quest = def.Quests[s.rng.IntN(len(def.Quests))]
	cq.Completed = claimed
	s.mark(KeyClassQuest)
	return nil
}

type ClassQuestResult struct {
	Quest           ClassQuestState
	XP              int
	LevelChange     LevelChange
	QuestsCompleted []BucketQuest
}

// ClaimClassQuest completes today's class quest once.
func (s *Service) ClaimClassQuest(ctx context.Context) (*ClassQuestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rollClassQuest(); err != nil {
		return nil, err
	}
	cq := &s.st.ClassQuest
	now := s.now()
	if cq.Completed || cq.LastCompleted == DateKey(now) {
		return nil, ErrClassQuestClaimed
	}

	if cq.LastCompleted == DateKey(now.AddDate(0, 0, -1)) {
		cq.Streak++
	} else {
		cq.Streak = 1
	}
	cq.Completed = true
	cq.LastCompleted = DateKey(now)
	s.mark(KeyClassQuest)

	bankBefore := s.st.Progress.XPBank
	lc := s.credit(ClassQuestXP)
	s.logActivity(ActivityEntry{
		Date:        now,
		Type:        ActivityClass,
		Description: "Class quest complete: " + cq.Quest,
		XP:          ClassQuestXP,
		Details:     map[string]string{"class": string(cq.Class)},
	})
	s.st.QuestHistory = append(s.st.QuestHistory, QuestHistoryEntry{
		Date:     now,
		Quest:    cq.Quest,
		Class:    cq.Class,
		RewardXP: ClassQuestXP,
	})
	s.mark(KeyQuestHistory)

	done := s.st.Quests.Advance(QuestClass)
	s.rewardQuests(done, now)
	lc.LevelAfter = s.st.Progress.Level

	if err := s.commit(ctx); err != nil {
		return nil, err
	}
	return &ClassQuestResult{
		Quest:           *cq,
		XP:              s.st.Progress.XPBank - bankBefore,
		LevelChange:     lc,
		QuestsCompleted: done,
	}, nil
}
