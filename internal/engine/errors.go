package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTaskAlreadyDone   = errors.New("task is already completed")
	ErrTaskNotDone       = errors.New("task is not completed")
	ErrBossDefeated      = errors.New("boss is already defeated")
	ErrNoClass           = errors.New("no class selected")
	ErrClassQuestClaimed = errors.New("today's class quest is already claimed")
	ErrCategoryMismatch  = errors.New("reward does not belong to that category")
	ErrTitleRequired     = errors.New("title is required")
)

// NotFoundError reports an unknown task, boss, reward or class id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// LockedBossError is returned when a task is linked to a boss whose
// prerequisites are not all defeated.
type LockedBossError struct {
	BossID  string
	Title   string
	Missing []string
}

func (e LockedBossError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("boss '%s' is locked", e.Title)
	}
	return fmt.Sprintf("boss '%s' is locked until %s defeated", e.Title, strings.Join(e.Missing, ", "))
}
