package controller

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"notedesk/internal/notes/app/selection"
	"notedesk/internal/notes/domain/entities"
	"notedesk/pkg/logger"
)

// AssignSession локальное состояние окна назначения одной заметки.
// Рабочий набор отправляется одной записью в Save.
type AssignSession struct {
	c      *Controller
	noteID string

	mu     sync.Mutex
	set    selection.Set
	saving bool
	errMsg string
	open   bool
}

func newAssignSession(c *Controller, note entities.Note) *AssignSession {
	return &AssignSession{
		c:      c,
		noteID: note.ID,
		set:    selection.Seed(note),
		open:   true,
	}
}

func (s *AssignSession) NoteID() string {
	return s.noteID
}

// Selected текущий рабочий набор.
func (s *AssignSession) Selected() selection.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set
}

// Toggle добавляет или убирает email из рабочего набора.
func (s *AssignSession) Toggle(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return
	}
	s.set = selection.Toggle(s.set, entities.NormalizeEmail(email))
}

func (s *AssignSession) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

// Err текст последней ошибки сохранения или "".
func (s *AssignSession) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Open сообщает, открыто ли окно.
func (s *AssignSession) Open() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Save записывает рабочий набор. При успехе окно закрывается, при ошибке остается
// открытым с текстом ошибки. Повторный вызов во время сохранения ничего не делает.
func (s *AssignSession) Save(ctx context.Context) error {
	s.mu.Lock()
	if !s.open || s.saving {
		s.mu.Unlock()
		return nil
	}
	s.saving = true
	s.errMsg = ""
	emails := s.set.Sorted()
	s.mu.Unlock()

	err := s.c.AssignToUsers(ctx, s.noteID, emails)

	s.mu.Lock()
	s.saving = false
	if err != nil {
		s.errMsg = UserMessage(err)
		s.mu.Unlock()
		return err
	}
	s.open = false
	s.mu.Unlock()

	s.c.closeAssign(s)
	logger.Log(ctx).Debug(ctx, "assignment saved", zap.String("note_id", s.noteID), zap.Int("assignees", len(emails)))
	return nil
}

// Cancel закрывает окно без записи. Уже отправленная запись не отменяется.
func (s *AssignSession) Cancel() {
	s.mu.Lock()
	s.open = false
	s.errMsg = ""
	s.mu.Unlock()

	s.c.closeAssign(s)
}
