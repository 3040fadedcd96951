// Package selection содержит неизменяемое множество строк для рабочего
// набора назначенных пользователей.
package selection

import (
	"maps"
	"slices"

	"notedesk/internal/notes/domain/entities"
)

// Set неизменяемое множество строк. Нулевое значение пустое и готово к использованию.
// Операции возвращают новый Set и не трогают исходный.
type Set struct {
	items map[string]struct{}
}

// New создает множество из items.
func New(items ...string) Set {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return Set{items: m}
}

// Seed создает рабочий набор для заметки, приводя каждый email к нижнему регистру.
func Seed(note entities.Note) Set {
	return New(entities.NormalizeEmails(note.AssignedTo)...)
}

// Toggle возвращает новое множество: item удален, если был, иначе добавлен.
func Toggle(s Set, item string) Set {
	next := make(map[string]struct{}, len(s.items)+1)
	maps.Copy(next, s.items)
	if _, ok := next[item]; ok {
		delete(next, item)
	} else {
		next[item] = struct{}{}
	}
	return Set{items: next}
}

// Has сообщает, входит ли item в множество.
func (s Set) Has(item string) bool {
	_, ok := s.items[item]
	return ok
}

func (s Set) Len() int {
	return len(s.items)
}

// Sorted возвращает элементы в лексикографическом порядке. Для пустого множества
// возвращается пустой, не nil, срез.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s.items))
	for it := range s.items {
		out = append(out, it)
	}
	slices.Sort(out)
	return out
}

// Equal сравнивает множества по содержимому.
func (s Set) Equal(other Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	for it := range s.items {
		if !other.Has(it) {
			return false
		}
	}
	return true
}
