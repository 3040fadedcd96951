// Package gateway определяет контракт удаленной коллекции документов,
// которой пользуется клиент.
package gateway

import (
	"context"

	"notedesk/internal/notes/domain/entities"
)

// Unsubscribe завершает живую подписку. Повторный вызов ничего не делает.
type Unsubscribe func()

// NotesHandler получает полный снимок заметок при каждом изменении.
type NotesHandler func(notes []entities.Note)

// UsersHandler получает полный снимок пользователей при каждом изменении.
type UsersHandler func(users []entities.AllowedUser)

// ErrorHandler получает ошибку подписки. После ошибки снимков больше не будет.
type ErrorHandler func(err error)

// Gateway удаленная коллекция заметок.
type Gateway interface {
	// SubscribeToNotes при privileged отдает все заметки, иначе только назначенные viewerEmail.
	// Фильтрация выполняется запросом к хранилищу.
	SubscribeToNotes(ctx context.Context, viewerEmail string, privileged bool, onNext NotesHandler, onError ErrorHandler) (Unsubscribe, error)
	SubscribeToAllowedUsers(ctx context.Context, onNext UsersHandler, onError ErrorHandler) (Unsubscribe, error)
	// AssignNoteToUsers заменяет список назначенных пользователей целиком.
	AssignNoteToUsers(ctx context.Context, noteID string, emails []string) error
	SetPinned(ctx context.Context, noteID string, pinned bool) error
	DeleteNote(ctx context.Context, noteID string) error
}
