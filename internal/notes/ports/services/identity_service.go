// Package services определяет интерфейсы вспомогательных сервисов.
package services

import (
	"context"
	"errors"

	"notedesk/internal/notes/domain/entities"
)

// IdentityService определяет текущего пользователя по токену доступа.
type IdentityService interface {
	ResolveViewer(ctx context.Context, token string) (entities.Viewer, error)
}

// Ошибки токенов.
var (
	ErrInvalidJWTToken = errors.New("invalid JWT token")
	ErrExpiredJWTToken = errors.New("JWT token has expired")
)
