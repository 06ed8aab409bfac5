package tui

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/phuchgg/neon-rpg/internal/engine"
	"github.com/phuchgg/neon-rpg/internal/storage"
)

func newTestBoard(t *testing.T) (boardModel, *engine.Service) {
	t.Helper()
	ctx := context.Background()
	db, err := storage.OpenMemory(ctx, zerolog.Nop())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	svc, err := engine.Open(ctx, storage.NewKVRepo(db),
		engine.WithClock(func() time.Time { return now }),
		engine.WithRand(rand.New(rand.NewPCG(1, 2))),
	)
	if err != nil {
		t.Fatalf("engine open: %v", err)
	}
	if _, err := svc.CreateTask(ctx, engine.CreateTaskInput{Title: "sweep the grid"}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	return newBoardModel(ctx, svc, nil), svc
}

func update(t *testing.T, m boardModel, msg tea.Msg) (boardModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	bm, ok := next.(boardModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return bm, cmd
}

func TestBoardShowsTasksAndQuests(t *testing.T) {
	m, _ := newTestBoard(t)
	m, _ = update(t, m, m.loadCmd()())

	view := m.View()
	for _, want := range []string{"sweep the grid", "Daily Quests", "Spam Daemon", "Lv 1"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestBoardCompletesSelectedTask(t *testing.T) {
	m, svc := newTestBoard(t)
	m, _ = update(t, m, m.loadCmd()())

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if cmd == nil {
		t.Fatalf("complete key returned no command")
	}
	m, _ = update(t, m, cmd())
	if !strings.Contains(m.lastLog, "+10 XP") {
		t.Fatalf("lastLog=%q", m.lastLog)
	}
	if got := svc.Progress().XPBank; got != engine.TaskBaseXP {
		t.Fatalf("XPBank=%d, want %d", got, engine.TaskBaseXP)
	}
}

func TestBoardAppliesThemeEvents(t *testing.T) {
	m, _ := newTestBoard(t)
	m, _ = update(t, m, cosmeticMsg{Category: engine.CategoryTheme, ID: "fire_red"})
	if !strings.Contains(m.lastLog, "fire_red") {
		t.Fatalf("lastLog=%q", m.lastLog)
	}
}

func TestPadRightIgnoresStyling(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight=%q", got)
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Fatalf("padRight=%q", got)
	}
	if got := truncate("Procrastination Golem", 8); got != "Procras…" {
		t.Fatalf("truncate=%q", got)
	}
}
