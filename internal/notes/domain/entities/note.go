// Package entities описывает доменные сущности клиента заметок.
package entities

import (
	"slices"
	"strings"
	"time"
)

// Note заметка в том виде, в каком ее отдает хранилище.
type Note struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	PlainTextPreview string    `json:"plain_text_preview"`
	IsPinned         bool      `json:"is_pinned"`
	AssignedTo       []string  `json:"assigned_to,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NormalizeEmail приводит email к виду, в котором он хранится в AssignedTo.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeEmails нормализует emails, убирает пустые и повторы, сохраняя порядок.
// Для пустого входа возвращает пустой, не nil, срез.
func NormalizeEmails(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		n := NormalizeEmail(e)
		if n == "" || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// IsAssignedTo сообщает, назначена ли заметка пользователю email.
func (n *Note) IsAssignedTo(email string) bool {
	want := NormalizeEmail(email)
	for _, e := range n.AssignedTo {
		if NormalizeEmail(e) == want {
			return true
		}
	}
	return false
}

// AssigneeCount количество назначенных пользователей.
func (n *Note) AssigneeCount() int {
	return len(n.AssignedTo)
}

// FindNote ищет заметку по id в снимке.
func FindNote(notes []Note, id string) (Note, bool) {
	for _, n := range notes {
		if n.ID == id {
			return n, true
		}
	}
	return Note{}, false
}
