package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/phuchgg/neon-rpg/internal/engine"
	"github.com/phuchgg/neon-rpg/internal/ui"
)

func RunBoard(ctx context.Context, svc *engine.Service, out io.Writer) error {
	ui.SetTheme(svc.Rewards().EquippedID(engine.CategoryTheme))

	events, unsubscribe := svc.Subscribe(8)
	defer unsubscribe()

	m := newBoardModel(ctx, svc, events)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
