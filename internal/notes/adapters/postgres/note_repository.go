package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"notedesk/internal/notes/domain/entities"
	"notedesk/internal/notes/ports/repositories"
	"notedesk/pkg/logger"
)

const (
	selectNotes = `SELECT id, title, plain_text_preview, is_pinned, COALESCE(assigned_to, '{}'), updated_at FROM notes`
	orderNotes  = ` ORDER BY is_pinned DESC, updated_at DESC`

	queryListAll        = selectNotes + orderNotes
	queryListAssignedTo = selectNotes + ` WHERE assigned_to @> ARRAY[$1]::text[]` + orderNotes
	queryInsertNote     = `INSERT INTO notes (id, title, plain_text_preview, is_pinned, assigned_to) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	querySetPinned      = `UPDATE notes SET is_pinned = $1 WHERE id = $2`
	querySetAssignees   = `UPDATE notes SET assigned_to = $1, updated_at = NOW() WHERE id = $2`
	queryDeleteNote     = `DELETE FROM notes WHERE id = $1`
)

const (
	ErrCreateNote    = "failed to create note"
	ErrListNotes     = "failed to list notes"
	ErrScanNote      = "failed to scan note"
	ErrSetPinned     = "failed to update pin state"
	ErrSetAssignees  = "failed to update assignees"
	ErrDeleteNote    = "failed to delete note"
	LogNoteNotFound  = "note not found"
	LogNotesSelected = "notes selected"
)

// NoteRepository реализует repositories.NoteRepository.
type NoteRepository struct {
	pool Pool
}

var _ repositories.NoteRepository = (*NoteRepository)(nil)

// NewNoteRepository создает репозиторий заметок.
func NewNoteRepository(pool Pool) *NoteRepository {
	return &NoteRepository{pool: pool}
}

// Create сохраняет заметку и возвращает ее id. Пустой note.ID заменяется новым UUID.
func (r *NoteRepository) Create(ctx context.Context, note *entities.Note) (string, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Create"))

	id := note.ID
	if id == "" {
		id = uuid.NewString()
	}

	var noteID string
	err := r.pool.QueryRow(ctx, queryInsertNote,
		id, note.Title, note.PlainTextPreview, note.IsPinned, entities.NormalizeEmails(note.AssignedTo),
	).Scan(&noteID)
	if err != nil {
		log.Error(ctx, ErrCreateNote, zap.Error(err))
		return "", fmt.Errorf("%s: %w", ErrCreateNote, err)
	}

	log.Debug(ctx, "note created", zap.String("noteID", noteID))
	return noteID, nil
}

// ListAll возвращает все заметки: сначала закрепленные, затем по убыванию updated_at.
func (r *NoteRepository) ListAll(ctx context.Context) ([]entities.Note, error) {
	return r.list(ctx, "NoteRepository.ListAll", queryListAll)
}

// ListAssignedTo возвращает заметки, назначенные email. Сравнение регистронезависимо:
// триггер notes_normalize_assigned_to хранит assigned_to в нижнем регистре.
func (r *NoteRepository) ListAssignedTo(ctx context.Context, email string) ([]entities.Note, error) {
	return r.list(ctx, "NoteRepository.ListAssignedTo", queryListAssignedTo, entities.NormalizeEmail(email))
}

func (r *NoteRepository) list(ctx context.Context, method, query string, args ...any) ([]entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", method))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		log.Error(ctx, ErrListNotes, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrListNotes, err)
	}
	defer rows.Close()

	notes := make([]entities.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			log.Error(ctx, ErrScanNote, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", ErrScanNote, err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		log.Error(ctx, ErrListNotes, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrListNotes, err)
	}

	log.Debug(ctx, LogNotesSelected, zap.Int("count", len(notes)))
	return notes, nil
}

func scanNote(row pgx.Row) (entities.Note, error) {
	var n entities.Note
	var assigned []string
	if err := row.Scan(&n.ID, &n.Title, &n.PlainTextPreview, &n.IsPinned, &assigned, &n.UpdatedAt); err != nil {
		return entities.Note{}, err
	}
	n.AssignedTo = entities.NormalizeEmails(assigned)
	return n, nil
}

// SetPinned меняет признак закрепления.
func (r *NoteRepository) SetPinned(ctx context.Context, noteID string, pinned bool) error {
	return r.exec(ctx, "NoteRepository.SetPinned", ErrSetPinned, querySetPinned, pinned, noteID)
}

// SetAssignees заменяет assigned_to переданным списком.
func (r *NoteRepository) SetAssignees(ctx context.Context, noteID string, emails []string) error {
	return r.exec(ctx, "NoteRepository.SetAssignees", ErrSetAssignees, querySetAssignees,
		entities.NormalizeEmails(emails), noteID)
}

// Delete удаляет заметку.
func (r *NoteRepository) Delete(ctx context.Context, noteID string) error {
	return r.exec(ctx, "NoteRepository.Delete", ErrDeleteNote, queryDeleteNote, noteID)
}

func (r *NoteRepository) exec(ctx context.Context, method, errMsg, query string, args ...any) error {
	log := logger.Log(ctx).With(zap.String("method", method))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		log.Error(ctx, errMsg, zap.Error(err))
		return fmt.Errorf("%s: %w", errMsg, err)
	}
	if tag.RowsAffected() == 0 {
		log.Debug(ctx, LogNoteNotFound)
		return repositories.ErrNoteNotFound
	}
	return nil
}
