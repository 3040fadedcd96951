// Package gateway реализует удаленную коллекцию заметок поверх Postgres
// и уведомлений об изменениях. Каждая подписка получает полный снимок
// сразу и после каждого изменения коллекции.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"notedesk/internal/notes/domain/entities"
	"notedesk/internal/notes/ports/gateway"
	"notedesk/internal/notes/ports/notifier"
	"notedesk/internal/notes/ports/repositories"
	"notedesk/pkg/logger"
)

// Ошибки шлюза.
var (
	ErrViewerRequired = errors.New("viewer email is required for a scoped subscription")
	ErrInvalidEmail   = errors.New("invalid email")
	ErrNoteIDRequired = errors.New("note id is required")
)

const (
	ErrSubscribeNotes = "failed to subscribe to notes"
	ErrSubscribeUsers = "failed to subscribe to allowed users"
	ErrAssignNote     = "failed to assign note"
	ErrAddUser        = "failed to add allowed user"

	LogNotifyFailed = "write succeeded but change notification failed"
)

// Gateway реализует gateway.Gateway.
type Gateway struct {
	notes    repositories.NoteRepository
	users    repositories.UserRepository
	notifier notifier.ChangeNotifier
	validate *validator.Validate

	wg sync.WaitGroup
}

var _ gateway.Gateway = (*Gateway)(nil)

// New создает шлюз.
func New(notes repositories.NoteRepository, users repositories.UserRepository, n notifier.ChangeNotifier) *Gateway {
	return &Gateway{
		notes:    notes,
		users:    users,
		notifier: n,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// SubscribeToNotes открывает живой запрос заметок.
func (g *Gateway) SubscribeToNotes(ctx context.Context, viewerEmail string, privileged bool,
	onNext gateway.NotesHandler, onError gateway.ErrorHandler,
) (gateway.Unsubscribe, error) {
	email := entities.NormalizeEmail(viewerEmail)
	if !privileged && email == "" {
		return nil, fmt.Errorf("%s: %w", ErrSubscribeNotes, ErrViewerRequired)
	}

	q := liveQuery[entities.Note]{
		name:    "notes",
		topic:   notifier.TopicNotes,
		onNext:  onNext,
		onError: onError,
		query: func(ctx context.Context) ([]entities.Note, error) {
			if privileged {
				return g.notes.ListAll(ctx)
			}
			return g.notes.ListAssignedTo(ctx, email)
		},
	}

	unsubscribe, err := q.start(ctx, g.notifier, &g.wg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSubscribeNotes, err)
	}
	return unsubscribe, nil
}

// SubscribeToAllowedUsers открывает живой запрос списка пользователей.
func (g *Gateway) SubscribeToAllowedUsers(ctx context.Context,
	onNext gateway.UsersHandler, onError gateway.ErrorHandler,
) (gateway.Unsubscribe, error) {
	q := liveQuery[entities.AllowedUser]{
		name:    "allowed_users",
		topic:   notifier.TopicAllowedUsers,
		query:   g.users.ListAllowed,
		onNext:  onNext,
		onError: onError,
	}

	unsubscribe, err := q.start(ctx, g.notifier, &g.wg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSubscribeUsers, err)
	}
	return unsubscribe, nil
}

// AssignNoteToUsers заменяет назначенных пользователей заметки списком emails.
// Пустой список снимает все назначения.
func (g *Gateway) AssignNoteToUsers(ctx context.Context, noteID string, emails []string) error {
	if noteID == "" {
		return fmt.Errorf("%s: %w", ErrAssignNote, ErrNoteIDRequired)
	}
	normalized := entities.NormalizeEmails(emails)
	for _, e := range normalized {
		if err := g.validate.Var(e, "required,email"); err != nil {
			return fmt.Errorf("%s: %w: %s", ErrAssignNote, ErrInvalidEmail, e)
		}
	}

	if err := g.notes.SetAssignees(ctx, noteID, normalized); err != nil {
		return err
	}
	g.notify(ctx, notifier.TopicNotes)
	return nil
}

// SetPinned закрепляет или открепляет заметку.
func (g *Gateway) SetPinned(ctx context.Context, noteID string, pinned bool) error {
	if err := g.notes.SetPinned(ctx, noteID, pinned); err != nil {
		return err
	}
	g.notify(ctx, notifier.TopicNotes)
	return nil
}

// DeleteNote удаляет заметку.
func (g *Gateway) DeleteNote(ctx context.Context, noteID string) error {
	if err := g.notes.Delete(ctx, noteID); err != nil {
		return err
	}
	g.notify(ctx, notifier.TopicNotes)
	return nil
}

// CreateNote добавляет заметку и возвращает ее id.
func (g *Gateway) CreateNote(ctx context.Context, note *entities.Note) (string, error) {
	id, err := g.notes.Create(ctx, note)
	if err != nil {
		return "", err
	}
	g.notify(ctx, notifier.TopicNotes)
	return id, nil
}

// AddAllowedUser добавляет пользователя с доступом.
func (g *Gateway) AddAllowedUser(ctx context.Context, user *entities.AllowedUser) (string, error) {
	if err := g.validate.Var(user.Email, "required,email"); err != nil {
		return "", fmt.Errorf("%s: %w: %s", ErrAddUser, ErrInvalidEmail, user.Email)
	}
	id, err := g.users.Create(ctx, user)
	if err != nil {
		return "", err
	}
	g.notify(ctx, notifier.TopicAllowedUsers)
	return id, nil
}

// Wait ждет завершения горутин всех отписанных живых запросов.
func (g *Gateway) Wait() {
	g.wg.Wait()
}

// notify только логирует ошибку публикации: запись к этому моменту уже применена.
func (g *Gateway) notify(ctx context.Context, topic notifier.Topic) {
	if err := g.notifier.Publish(ctx, topic); err != nil {
		logger.Log(ctx).Warn(ctx, LogNotifyFailed, zap.String("topic", string(topic)), zap.Error(err))
	}
}
