package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"notedesk/internal/notes/app/controller"
	"notedesk/internal/notes/app/subscription"
	"notedesk/internal/notes/domain/entities"
	"notedesk/internal/notes/ports/gateway"
	"notedesk/pkg/logger"
)

const ErrRunProgram = "failed to run terminal UI"

// Run запускает интерфейс и блокируется до выхода. Снимки подписок попадают
// в программу через Program.Send. При выходе подписки освобождаются.
func Run(ctx context.Context, gw gateway.Gateway, viewer entities.Viewer, opts ...tea.ProgramOption) error {
	log := logger.Log(ctx).With(zap.String("method", "tui.Run"))

	var p *tea.Program
	send := func(msg tea.Msg) {
		if p != nil {
			p.Send(msg)
		}
	}

	notes := subscription.NewNotes(gw, func(s subscription.State[entities.Note]) { send(NotesMsg(s)) })
	users := subscription.NewUsers(gw, func(s subscription.State[entities.AllowedUser]) { send(UsersMsg(s)) })
	defer notes.Close()
	defer users.Close()

	ctrl := controller.New(gw, func(err error) {
		log.Warn(ctx, "mutation failed", zap.Error(err))
	})

	model := NewModel(ctx, Deps{
		Controller: ctrl,
		Notes:      notes,
		Users:      users,
		Viewer:     viewer,
		Styles:     DefaultStyles(),
	})

	p = tea.NewProgram(model, append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)...)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("%s: %w", ErrRunProgram, err)
	}
	return nil
}
