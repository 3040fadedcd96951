package view

import (
	"fmt"

	"notedesk/internal/notes/app/selection"
	"notedesk/internal/notes/domain/entities"
)

const (
	AssignTitle    = "Assign Note"
	NoUsersMessage = "No users added yet. Add users in User Management first."
	SaveLabel      = "Save"
	SavingLabel    = "Saving…"
	CancelLabel    = "Cancel"
)

// AssignRow пользователь в окне назначения.
type AssignRow struct {
	Email   string
	Role    entities.Role
	Checked bool
	IsAdmin bool
}

// AssignModal модель окна назначения.
type AssignModal struct {
	Title     string
	NoteTitle string
	Rows      []AssignRow
	Empty     string
	Error     string
	Footer    string
	SaveLabel string
	CanSave   bool
}

// AssignInput данные для построения AssignModal.
type AssignInput struct {
	Note     entities.Note
	Users    []entities.AllowedUser
	Selected selection.Set
	Saving   bool
	// SaveErr ошибка сохранения, UsersErr ошибка подписки на пользователей.
	SaveErr  string
	UsersErr error
}

// NewAssignModal строит модель окна. Отметка строки сравнивает email без учета регистра.
func NewAssignModal(in AssignInput) AssignModal {
	m := AssignModal{
		Title:     AssignTitle,
		NoteTitle: in.Note.Title,
		Rows:      make([]AssignRow, 0, len(in.Users)),
		Footer:    AssignedFooter(in.Selected.Len()),
		SaveLabel: SaveLabel,
		CanSave:   !in.Saving,
		Error:     in.SaveErr,
	}
	if in.Saving {
		m.SaveLabel = SavingLabel
	}
	if m.Error == "" && in.UsersErr != nil {
		m.Error = in.UsersErr.Error()
	}

	for _, u := range in.Users {
		m.Rows = append(m.Rows, AssignRow{
			Email:   u.Email,
			Role:    u.Role,
			Checked: in.Selected.Has(entities.NormalizeEmail(u.Email)),
			IsAdmin: u.Role.IsPrivileged(),
		})
	}
	if len(m.Rows) == 0 {
		m.Empty = NoUsersMessage
	}
	return m
}

// AssignedFooter подпись со счетчиком выбранных пользователей.
func AssignedFooter(n int) string {
	if n == 1 {
		return "1 user assigned"
	}
	return fmt.Sprintf("%d users assigned", n)
}
