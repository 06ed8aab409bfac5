package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Neon theme (CLI + TUI). The palette follows the equipped theme reward.

const (
	IconTask    = "▸"
	IconSparkle = "✨"
	IconPlus    = "➕"
	IconDone    = "✅"
	IconTrophy  = "🏆"
	IconBolt    = "⚡"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconSkull   = "💀"
	IconLock    = "🔒"
	IconFlame   = "🔥"
	IconScroll  = "📜"
	IconShop    = "🛒"
	IconSync    = "🔁"
	IconClock   = "⏳"
)

// Palette is the set of colors a theme reward swaps in.
type Palette struct {
	Primary lipgloss.Color
	Accent  lipgloss.Color
}

var palettes = map[string]Palette{
	"default":   {Primary: "63", Accent: "205"},
	"jade_echo": {Primary: "36", Accent: "49"},
	"fire_red":  {Primary: "160", Accent: "208"},
	"nightwave": {Primary: "57", Accent: "99"},
	"ice_pulse": {Primary: "39", Accent: "159"},
	"synthcore": {Primary: "129", Accent: "213"},
}

var (
	cPrimary = lipgloss.Color("63")
	cAccent  = lipgloss.Color("205")
	cGood    = lipgloss.Color("42")
	cWarn    = lipgloss.Color("214")
	cBad     = lipgloss.Color("196")
	cMuted   = lipgloss.Color("244")
	cGold    = lipgloss.Color("220")
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	Dim   = lipgloss.NewStyle().Foreground(cMuted)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

// SetTheme rebuilds the themed styles for the given theme id. Unknown ids
// fall back to the default palette.
func SetTheme(id string) {
	p, ok := palettes[id]
	if !ok {
		p = palettes["default"]
	}
	cPrimary, cAccent = p.Primary, p.Accent

	Title = Title.Foreground(cAccent)
	H2 = H2.Foreground(cPrimary)
	Key = Key.Foreground(cPrimary)
	PanelTitle = PanelTitle.Foreground(cPrimary)
	SelectedRow = SelectedRow.Background(cPrimary)
}

// CurrentPalette returns the colors in use.
func CurrentPalette() Palette {
	return Palette{Primary: cPrimary, Accent: cAccent}
}

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// StatusText colors a quest or boss status word.
func StatusText(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	switch s {
	case "done", "complete", "defeated":
		return Good.Render(s)
	case "active", "open":
		return H2.Render(s)
	case "locked", "pending":
		return Warn.Render(s)
	case "failed":
		return Bad.Render(s)
	default:
		return Muted.Render(status)
	}
}

// Bar renders a fixed-width text progress bar for pct in [0,100].
func Bar(pct float64, width int) string {
	if width < 1 {
		width = 10
	}
	pct = max(0, min(pct, 100))
	filled := int(pct * float64(width) / 100)
	return Good.Render(strings.Repeat("█", filled)) + Dim.Render(strings.Repeat("░", width-filled))
}

// TierIcon marks a boss tier.
func TierIcon(tier string) string {
	switch tier {
	case "elite":
		return "◆"
	case "mega":
		return IconSkull
	default:
		return "◇"
	}
}
