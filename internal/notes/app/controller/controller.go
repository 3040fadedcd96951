// Package controller выполняет изменения заметок по действиям пользователя
// и хранит локальное состояние выбора.
//
// Изменения не оптимистичные: локальное состояние не трогается до подтверждения
// записи, а новое содержимое приходит через живую подписку.
package controller

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"notedesk/internal/notes/domain/entities"
	"notedesk/internal/notes/ports/gateway"
	"notedesk/pkg/logger"
)

// FallbackMessage показывается, если у ошибки нет текста.
const FallbackMessage = "Failed to save"

const (
	LogTogglePin = "toggling pin"
	LogDelete    = "deleting note"
	LogAssign    = "assigning note"
	LogFailed    = "mutation failed"
)

// ErrNoteIDRequired возвращается для действий без заметки.
var ErrNoteIDRequired = errors.New("note id is required")

// UserMessage текст ошибки для показа пользователю.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return FallbackMessage
}

// Controller выполняет изменения через шлюз.
type Controller struct {
	gw      gateway.Gateway
	onError func(error)

	mu         sync.Mutex
	selectedID string
	assign     *AssignSession
}

// New создает контроллер. onError получает ошибки закрепления и удаления; может быть nil.
func New(gw gateway.Gateway, onError func(error)) *Controller {
	return &Controller{gw: gw, onError: onError}
}

// Select запоминает выбранную заметку.
func (c *Controller) Select(noteID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedID = noteID
}

// SelectedID id выбранной заметки или "".
func (c *Controller) SelectedID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedID
}

// Selected ищет выбранную заметку в последнем снимке. Если заметки больше нет,
// выбор сбрасывается.
func (c *Controller) Selected(notes []entities.Note) (entities.Note, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selectedID == "" {
		return entities.Note{}, false
	}
	note, ok := entities.FindNote(notes, c.selectedID)
	if !ok {
		c.selectedID = ""
	}
	return note, ok
}

func (c *Controller) ClearSelection() {
	c.Select("")
}

// TogglePin переключает закрепление заметки относительно current.
// Каждое изменение получает свой идентификатор операции.
func (c *Controller) TogglePin(ctx context.Context, noteID string, current bool) error {
	ctx = logger.NewOperationContext(ctx, "")
	log := logger.Log(ctx).With(zap.String("method", "TogglePin"), zap.String("note_id", noteID))
	log.Debug(ctx, LogTogglePin, zap.Bool("pinned", !current))

	if noteID == "" {
		return c.fail(ctx, log, ErrNoteIDRequired)
	}
	if err := c.gw.SetPinned(ctx, noteID, !current); err != nil {
		return c.fail(ctx, log, err)
	}
	return nil
}

// Delete удаляет заметку. Выбор сбрасывается, если удалена выбранная заметка.
func (c *Controller) Delete(ctx context.Context, noteID string) error {
	ctx = logger.NewOperationContext(ctx, "")
	log := logger.Log(ctx).With(zap.String("method", "Delete"), zap.String("note_id", noteID))
	log.Debug(ctx, LogDelete)

	if noteID == "" {
		return c.fail(ctx, log, ErrNoteIDRequired)
	}
	if err := c.gw.DeleteNote(ctx, noteID); err != nil {
		return c.fail(ctx, log, err)
	}

	c.mu.Lock()
	if c.selectedID == noteID {
		c.selectedID = ""
	}
	c.mu.Unlock()
	return nil
}

// AssignToUsers заменяет список назначенных пользователей заметки.
// Ошибка шлюза возвращается вызывающему как есть и в onError не передается.
func (c *Controller) AssignToUsers(ctx context.Context, noteID string, emails []string) error {
	ctx = logger.NewOperationContext(ctx, "")
	log := logger.Log(ctx).With(zap.String("method", "AssignToUsers"), zap.String("note_id", noteID))
	log.Debug(ctx, LogAssign, zap.Int("assignees", len(emails)))

	if noteID == "" {
		return ErrNoteIDRequired
	}
	if err := c.gw.AssignNoteToUsers(ctx, noteID, emails); err != nil {
		log.Warn(ctx, LogFailed, zap.Error(err))
		return err
	}
	return nil
}

// OpenAssign открывает окно назначения для note, заменяя уже открытое.
func (c *Controller) OpenAssign(note entities.Note) *AssignSession {
	s := newAssignSession(c, note)

	c.mu.Lock()
	prev := c.assign
	c.assign = s
	c.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}
	return s
}

// Assign открытое окно назначения или nil.
func (c *Controller) Assign() *AssignSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.assign
}

func (c *Controller) closeAssign(s *AssignSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.assign == s {
		c.assign = nil
	}
}

func (c *Controller) fail(ctx context.Context, log *logger.Logger, err error) error {
	log.Error(ctx, LogFailed, zap.Error(err))
	if c.onError != nil {
		c.onError(err)
	}
	return err
}
