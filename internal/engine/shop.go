package engine

import (
	"context"
	"strconv"
)

// UnlockReward buys a catalog reward from the XP bank. Expected outcomes
// (already owned, not enough XP, not for sale) come back in the result; the
// error is reserved for unknown ids and storage failures.
func (s *Service) UnlockReward(ctx context.Context, id string) (*UnlockResult, error) {
	r, ok := LookupReward(id)
	if !ok {
		return nil, NotFoundError{Kind: "reward", ID: id}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.st.Rewards.Unlock(r, &s.st.Progress)
	if res.Status != UnlockSuccess {
		return &res, nil
	}
	s.mark(KeyProgress, KeyRewardsUnlocked, KeyRewardsEquipped)
	s.logActivity(ActivityEntry{
		Type:        ActivityReward,
		Description: "Unlocked " + r.Name,
		Details: map[string]string{
			"rewardId": r.ID,
			"category": string(r.Category),
			"cost":     strconv.Itoa(r.Cost),
		},
	})
	if err := s.commit(ctx); err != nil {
		return nil, err
	}
	s.bus.publish(CosmeticChanged{Category: r.Category, ID: r.ID})
	return &res, nil
}

// Equip puts an owned reward in its category slot.
func (s *Service) Equip(ctx context.Context, c Category, id string) (*EquipResult, error) {
	r, ok := LookupReward(id)
	if !ok {
		return nil, NotFoundError{Kind: "reward", ID: id}
	}
	if r.Category != c {
		return nil, ErrCategoryMismatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.st.Rewards.Equip(r)
	if res.Status != EquipSuccess {
		return &res, nil
	}
	s.mark(KeyRewardsEquipped)
	s.logActivity(ActivityEntry{
		Type:        ActivityReward,
		Description: "Equipped " + r.Name,
		Details:     map[string]string{"rewardId": r.ID, "category": string(r.Category)},
	})
	if err := s.commit(ctx); err != nil {
		return nil, err
	}
	s.bus.publish(CosmeticChanged{Category: c, ID: id})
	return &res, nil
}

// Rewards returns a copy of the reward ledger.
func (s *Service) Rewards() RewardLedger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Clone().Rewards
}
