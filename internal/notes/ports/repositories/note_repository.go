// Package repositories определяет интерфейсы хранилища заметок и пользователей.
package repositories

import (
	"context"
	"errors"

	"notedesk/internal/notes/domain/entities"
)

// ErrNoteNotFound возвращается, когда запись не затронула ни одной заметки.
var ErrNoteNotFound = errors.New("note not found")

// NoteRepository хранилище заметок.
type NoteRepository interface {
	Create(ctx context.Context, note *entities.Note) (string, error)
	ListAll(ctx context.Context) ([]entities.Note, error)
	// ListAssignedTo возвращает только заметки, в assigned_to которых есть email.
	ListAssignedTo(ctx context.Context, email string) ([]entities.Note, error)
	SetPinned(ctx context.Context, noteID string, pinned bool) error
	// SetAssignees заменяет assigned_to целиком.
	SetAssignees(ctx context.Context, noteID string, emails []string) error
	Delete(ctx context.Context, noteID string) error
}

// UserRepository хранилище пользователей с доступом.
type UserRepository interface {
	Create(ctx context.Context, user *entities.AllowedUser) (string, error)
	ListAllowed(ctx context.Context) ([]entities.AllowedUser, error)
}
