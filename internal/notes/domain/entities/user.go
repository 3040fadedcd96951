package entities

import "strings"

// Role роль пользователя.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ParseRole возвращает RoleAdmin для "admin" без учета регистра, иначе RoleMember.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleMember
}

// IsPrivileged видит и изменяет все заметки независимо от назначения.
func (r Role) IsPrivileged() bool {
	return r == RoleAdmin
}

// AllowedUser пользователь, которому разрешен доступ.
type AllowedUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Viewer текущий пользователь клиента. Пустой Email означает, что вход не выполнен.
type Viewer struct {
	Email string
	Role  Role
}

// Authenticated сообщает, известна ли личность пользователя.
func (v Viewer) Authenticated() bool {
	return NormalizeEmail(v.Email) != ""
}

// Privileged сообщает, видит ли пользователь все заметки.
func (v Viewer) Privileged() bool {
	return v.Role.IsPrivileged()
}
