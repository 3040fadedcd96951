package view

import (
	"time"

	"notedesk/internal/notes/domain/entities"
)

// NoContent показывается вместо пустого превью.
const NoContent = "No content"

// ListItem строка списка заметок.
type ListItem struct {
	ID       string
	Title    string
	Preview  string
	Date     string
	Pinned   bool
	Selected bool
	// AssigneeCount больше нуля только если счетчик виден пользователю.
	AssigneeCount int
	PinLabel      string
	CanAssign     bool
	CanDelete     bool
}

// NewListItem строит строку списка для note.
func NewListItem(note entities.Note, selectedID string, caps Capabilities, now time.Time) ListItem {
	item := ListItem{
		ID:        note.ID,
		Title:     note.Title,
		Preview:   note.PlainTextPreview,
		Date:      FormatNoteDate(note.UpdatedAt, now),
		Pinned:    note.IsPinned,
		Selected:  note.ID != "" && note.ID == selectedID,
		PinLabel:  "Pin",
		CanAssign: caps.CanAssign,
		CanDelete: caps.CanDelete,
	}
	if item.Preview == "" {
		item.Preview = NoContent
	}
	if note.IsPinned {
		item.PinLabel = "Unpin"
	}
	if caps.CanSeeAssigneeCount {
		item.AssigneeCount = note.AssigneeCount()
	}
	return item
}

// NewList строит строки в порядке снимка.
func NewList(notes []entities.Note, selectedID string, caps Capabilities, now time.Time) []ListItem {
	items := make([]ListItem, 0, len(notes))
	for _, n := range notes {
		items = append(items, NewListItem(n, selectedID, caps, now))
	}
	return items
}
