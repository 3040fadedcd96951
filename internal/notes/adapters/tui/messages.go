package tui

import (
	"notedesk/internal/notes/app/subscription"
	"notedesk/internal/notes/domain/entities"
)

// NotesMsg новое состояние подписки на заметки.
type NotesMsg subscription.State[entities.Note]

// UsersMsg новое состояние подписки на пользователей.
type UsersMsg subscription.State[entities.AllowedUser]

// mutationDoneMsg результат закрепления или удаления.
type mutationDoneMsg struct {
	op  string
	err error
}

// assignSavedMsg результат сохранения окна назначения.
type assignSavedMsg struct {
	err error
}
