package tui

import (
	"context"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"notedesk/internal/notes/app/subscription"
)

// modalUsers подписка на пользователей для окна назначения.
// begin и end вызываются из Update и только меняют номер сессии.
// Подписка и ее освобождение выполняются командами и сверяют номер,
// поэтому команда устаревшей сессии ничего не делает.
type modalUsers struct {
	sub     Subscriber
	session atomic.Uint64
	mu      sync.Mutex
}

func newModalUsers(sub Subscriber) *modalUsers {
	return &modalUsers{sub: sub}
}

// begin открывает новую сессию и возвращает команду подписки.
func (u *modalUsers) begin(ctx context.Context) tea.Cmd {
	session := u.session.Add(1)
	return func() tea.Msg {
		u.mu.Lock()
		defer u.mu.Unlock()
		if u.session.Load() != session {
			return nil
		}
		u.sub.Subscribe(ctx, subscription.Scope{})
		return nil
	}
}

// end завершает текущую сессию и возвращает команду освобождения подписки.
func (u *modalUsers) end() tea.Cmd {
	session := u.session.Add(1)
	return func() tea.Msg {
		u.mu.Lock()
		defer u.mu.Unlock()
		if u.session.Load() != session {
			return nil
		}
		u.sub.Close()
		return nil
	}
}
