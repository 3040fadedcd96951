// Package view строит модели отображения списка заметок и окна назначения
// независимо от конкретного интерфейса.
package view

import "notedesk/internal/notes/domain/entities"

// Capabilities действия, доступные пользователю. Вычисляются один раз по роли.
type Capabilities struct {
	CanAssign           bool
	CanDelete           bool
	CanSeeAssigneeCount bool
	CanPin              bool
}

// CapabilitiesFor возвращает возможности роли: администратору доступно все,
// участнику только закрепление.
func CapabilitiesFor(role entities.Role) Capabilities {
	admin := role.IsPrivileged()
	return Capabilities{
		CanAssign:           admin,
		CanDelete:           admin,
		CanSeeAssigneeCount: admin,
		CanPin:              true,
	}
}
