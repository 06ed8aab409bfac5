package root

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phuchgg/neon-rpg/internal/engine"
)

const shortIDLen = 8

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// resolveTask accepts a 1-based list position, a full id, or a unique id prefix.
func resolveTask(tasks []engine.Task, ref string) (engine.Task, error) {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	i, err := resolveRef("task", ids, ref)
	if err != nil {
		return engine.Task{}, err
	}
	return tasks[i], nil
}

func resolveBoss(bosses []engine.BossView, ref string) (engine.Boss, error) {
	ids := make([]string, len(bosses))
	for i, v := range bosses {
		ids[i] = v.Boss.ID
	}
	i, err := resolveRef("boss", ids, ref)
	if err != nil {
		return engine.Boss{}, err
	}
	return bosses[i].Boss, nil
}

func resolveRef(kind string, ids []string, ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1, fmt.Errorf("%s reference is required", kind)
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(ids) && len(ref) < shortIDLen {
		return n - 1, nil
	}
	match := -1
	for i, id := range ids {
		if id == ref {
			return i, nil
		}
		if strings.HasPrefix(id, ref) {
			if match >= 0 {
				return -1, fmt.Errorf("%s %q is ambiguous", kind, ref)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, engine.NotFoundError{Kind: kind, ID: ref}
	}
	return match, nil
}
