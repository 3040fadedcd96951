package subscription

import (
	"context"

	"notedesk/internal/notes/domain/entities"
	"notedesk/internal/notes/ports/gateway"
)

// NotesSource подписывается на заметки в рамках scope.
func NotesSource(gw gateway.Gateway) Source[entities.Note] {
	return func(ctx context.Context, scope Scope, onNext func([]entities.Note), onError func(error)) (gateway.Unsubscribe, error) {
		return gw.SubscribeToNotes(ctx, scope.ViewerEmail, scope.Privileged, onNext, onError)
	}
}

// UsersSource подписывается на список пользователей с доступом. Scope не используется.
func UsersSource(gw gateway.Gateway) Source[entities.AllowedUser] {
	return func(ctx context.Context, _ Scope, onNext func([]entities.AllowedUser), onError func(error)) (gateway.Unsubscribe, error) {
		return gw.SubscribeToAllowedUsers(ctx, onNext, onError)
	}
}

// NewNotes создает хук заметок. Без пользователя шлюз не вызывается.
func NewNotes(gw gateway.Gateway, onChange func(State[entities.Note])) *Hook[entities.Note] {
	return New(NotesSource(gw), Options[entities.Note]{
		Name:          "notes",
		RequireViewer: true,
		OnChange:      onChange,
	})
}

// NewUsers создает хук списка пользователей.
func NewUsers(gw gateway.Gateway, onChange func(State[entities.AllowedUser])) *Hook[entities.AllowedUser] {
	return New(UsersSource(gw), Options[entities.AllowedUser]{
		Name:     "allowed_users",
		OnChange: onChange,
	})
}
