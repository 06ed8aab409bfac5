package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/phuchgg/neon-rpg/internal/engine"
	"github.com/phuchgg/neon-rpg/internal/ui"
)

const tickInterval = time.Second

type boardModel struct {
	ctx    context.Context
	svc    *engine.Service
	events <-chan engine.CosmeticChanged

	width  int
	height int

	state  *engine.State
	tasks  []engine.Task
	bosses []engine.BossView
	now    time.Time

	selected int

	xpBar progress.Model
	help  help.Model

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	state  *engine.State
	tasks  []engine.Task
	bosses []engine.BossView
}

type completedMsg struct {
	res *engine.CompleteResult
	err error
}

type reopenedMsg struct {
	title string
	err   error
}

type tickMsg time.Time

type tickedMsg struct {
	res *engine.TickResult
	err error
}

type cosmeticMsg engine.CosmeticChanged

func newBoardModel(ctx context.Context, svc *engine.Service, events <-chan engine.CosmeticChanged) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		events:  events,
		xpBar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(24), progress.WithoutPercentage()),
		help:    help.New(),
		loading: true,
		lastLog: "Jacked in.",
		now:     time.Now(),
	}
}

func (m boardModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), tickCmd(), m.waitCosmetic())
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{
			state:  m.svc.Snapshot(),
			tasks:  m.svc.Tasks(),
			bosses: m.svc.Bosses(),
		}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m boardModel) runTick() tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.Tick(m.ctx)
		return tickedMsg{res: res, err: err}
	}
}

func (m boardModel) waitCosmetic() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return nil
		}
		return cosmeticMsg(ev)
	}
}

func (m boardModel) completeCmd(id string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CompleteTask(m.ctx, id)
		return completedMsg{res: res, err: err}
	}
}

func (m boardModel) reopenCmd(t engine.Task) tea.Cmd {
	return func() tea.Msg {
		return reopenedMsg{title: t.Title, err: m.svc.ReopenTask(m.ctx, t.ID)}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case loadedMsg:
		m.loading = false
		m.state = msg.state
		m.tasks = msg.tasks
		m.bosses = msg.bosses
		m.clampSelection()
		return m, nil
	case tickMsg:
		m.now = time.Time(msg)
		return m, tea.Batch(m.runTick(), tickCmd())
	case tickedMsg:
		if msg.err != nil {
			m.lastLog = "Quest refresh failed: " + msg.err.Error()
			return m, nil
		}
		if !msg.res.Changed() {
			return m, nil
		}
		for _, f := range msg.res.Failed {
			m.lastLog = fmt.Sprintf("%s %s quest failed: %s", ui.IconClock, f.Bucket, f.Quest.Title)
		}
		for _, b := range msg.res.Regenerated {
			m.lastLog = fmt.Sprintf("%s New %s quests.", ui.IconScroll, b)
		}
		return m, m.loadCmd()
	case cosmeticMsg:
		if msg.Category == engine.CategoryTheme {
			ui.SetTheme(msg.ID)
		}
		m.lastLog = fmt.Sprintf("%s Equipped %s %s.", ui.IconSparkle, msg.Category, msg.ID)
		return m, tea.Batch(m.loadCmd(), m.waitCosmetic())
	case completedMsg:
		if msg.err != nil {
			m.lastLog = "Complete failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = completeSummary(msg.res)
		return m, m.loadCmd()
	case reopenedMsg:
		if msg.err != nil {
			m.lastLog = "Reopen failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = "Reopened " + msg.title + "."
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Refresh):
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case key.Matches(msg, keys.Up):
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case key.Matches(msg, keys.Down):
			if m.selected < len(m.tasks)-1 {
				m.selected++
			}
			return m, nil
		case key.Matches(msg, keys.Complete):
			t, ok := m.selectedTask()
			if !ok {
				return m, nil
			}
			if t.Completed {
				m.lastLog = "Already done."
				return m, nil
			}
			m.lastLog = "Completing " + t.Title + "…"
			return m, m.completeCmd(t.ID)
		case key.Matches(msg, keys.Reopen):
			t, ok := m.selectedTask()
			if !ok || !t.Completed {
				return m, nil
			}
			return m, m.reopenCmd(t)
		}
	}
	return m, nil
}

func (m *boardModel) clampSelection() {
	if m.selected >= len(m.tasks) {
		m.selected = len(m.tasks) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m boardModel) selectedTask() (engine.Task, bool) {
	if m.selected < 0 || m.selected >= len(m.tasks) {
		return engine.Task{}, false
	}
	return m.tasks[m.selected], true
}

func completeSummary(res *engine.CompleteResult) string {
	parts := []string{fmt.Sprintf("%s +%d XP", ui.IconDone, res.XPDelta)}
	if res.LeveledUp {
		parts = append(parts, fmt.Sprintf("%s Lv %d → %d", ui.BadgeLevelUp, res.LevelBefore, res.LevelAfter))
	}
	if res.BossDefeated != nil {
		parts = append(parts, fmt.Sprintf("%s %s defeated", ui.IconSkull, res.BossDefeated.Title))
	} else if res.Boss != nil {
		parts = append(parts, fmt.Sprintf("-%d HP to %s", res.BossDamage, res.Boss.Title))
	}
	if res.ZoneReset {
		parts = append(parts, "zone reset")
	}
	if n := len(res.QuestsCompleted); n > 0 {
		parts = append(parts, fmt.Sprintf("%s %d quest(s)", ui.IconTrophy, n))
	}
	if res.BadgeEarned {
		parts = append(parts, ui.IconFlame+" Streak Flame")
	}
	return strings.Join(parts, " | ")
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := m.renderFooter()

	leftW := 34
	if m.width > 0 {
		leftW = min(leftW, m.width/2)
		leftW = max(leftW, 20)
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	rows := max(len(linesLeft), len(linesRight))

	var body strings.Builder
	for i := 0; i < rows; i++ {
		l, r := "", ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	if m.state == nil {
		return ui.Title.Render("NEON RPG") + " loading…"
	}
	p := m.state.Progress
	need := engine.XPForLevel(p.Level)
	bar := m.xpBar.ViewAs(float64(p.XP) / float64(need))
	return fmt.Sprintf("%s | Lv %d %s %d/%d | Bank %d | %s %d | Zone %d",
		ui.Title.Render("NEON RPG"), p.Level, bar, p.XP, need, p.XPBank,
		ui.IconFlame, p.Streak, engine.ZoneFor(engine.DefeatedCount(m.state.Bosses)))
}

func (m boardModel) renderSidebar() string {
	lines := []string{ui.PanelTitle.Render("Bosses")}
	if len(m.bosses) == 0 {
		lines = append(lines, ui.Muted.Render("(none)"))
	}
	for _, v := range m.bosses {
		b := v.Boss
		status := ""
		switch {
		case b.IsDefeated:
			status = ui.StatusText("defeated")
		case !v.Assignable:
			status = ui.IconLock
		default:
			status = fmt.Sprintf("%d HP", b.XPRemaining)
		}
		lines = append(lines, fmt.Sprintf("%s %s", ui.TierIcon(string(b.Tier)), truncate(b.Title, 22)))
		lines = append(lines, fmt.Sprintf("  %s %s", ui.Bar(b.Progress, 12), status))
	}
	if m.state != nil {
		lines = append(lines, "", ui.PanelTitle.Render("Loadout"))
		r := m.state.Rewards
		for _, c := range engine.Categories {
			id := r.EquippedID(c)
			if id == "" {
				id = "-"
			}
			lines = append(lines, fmt.Sprintf("- %s: %s", c, id))
		}
		if m.state.Class.Current != "" {
			lines = append(lines, fmt.Sprintf("- class: %s", m.state.Class.Current))
		}
	}
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	out := []string{ui.PanelTitle.Render("Tasks")}
	if len(m.tasks) == 0 {
		out = append(out, ui.Muted.Render("(no tasks yet, try: nrpg add)"))
	}
	for i, t := range m.tasks {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		mark := "[ ]"
		if t.Completed {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s%s %s", cursor, mark, t.Title)
		if t.BossID != "" {
			line += " " + ui.IconSkull
		}
		if t.Completed {
			line = ui.Dim.Render(line)
		}
		out = append(out, line)
	}

	if m.state != nil {
		for _, b := range engine.Buckets {
			out = append(out, "", ui.PanelTitle.Render(string(b)+" Quests"))
			for _, q := range m.state.Quests.Quests[b] {
				out = append(out, m.questLine(q))
			}
		}
	}
	return strings.Join(out, "\n")
}

func (m boardModel) questLine(q engine.Quest) string {
	status := "open"
	switch {
	case q.IsComplete:
		status = "complete"
	case q.IsFailed:
		status = "failed"
	}
	line := fmt.Sprintf("- %s %d/%d %s +%d",
		q.Title, q.Condition.Current, q.Condition.Target, ui.StatusText(status), q.RewardXP)
	if q.TimeLimit > 0 && !q.Terminal() {
		left := q.StartTime.Add(q.TimeLimit).Sub(m.now).Truncate(time.Second)
		line += fmt.Sprintf(" %s %s", ui.IconClock, max(left, 0))
	}
	return line
}

func (m boardModel) renderFooter() string {
	return "\n" + m.lastLog + "\n" + m.help.View(keys)
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
