// Package postgres реализует репозитории заметок и пользователей на pgx.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Pool подмножество pgxpool.Pool, которым пользуются репозитории.
// pgxmock.PgxPoolIface ему тоже удовлетворяет.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RepositoryFactory создает репозитории поверх одного пула.
type RepositoryFactory struct {
	pool Pool
}

// NewRepositoryFactory создает фабрику репозиториев.
func NewRepositoryFactory(pool Pool) *RepositoryFactory {
	return &RepositoryFactory{pool: pool}
}

// NoteRepository возвращает репозиторий заметок.
func (f *RepositoryFactory) NoteRepository() *NoteRepository {
	return NewNoteRepository(f.pool)
}

// UserRepository возвращает репозиторий пользователей.
func (f *RepositoryFactory) UserRepository() *UserRepository {
	return NewUserRepository(f.pool)
}
