package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"notedesk/internal/notes/domain/entities"
	"notedesk/internal/notes/ports/repositories"
	"notedesk/pkg/logger"
)

// ErrViewerNotAllowed пользователя нет в списке допущенных.
var ErrViewerNotAllowed = errors.New("viewer is not in the allowed users list")

const errCtxDirectory = "resolving viewer from allowed users"

// ViewerFromDirectory определяет роль пользователя по списку допущенных.
// Используется, когда токен не настроен.
func ViewerFromDirectory(ctx context.Context, email string, users repositories.UserRepository) (entities.Viewer, error) {
	log := logger.Log(ctx).With(zap.String("method", "ViewerFromDirectory"))

	want := entities.NormalizeEmail(email)
	if want == "" {
		return entities.Viewer{}, nil
	}

	allowed, err := users.ListAllowed(ctx)
	if err != nil {
		return entities.Viewer{}, fmt.Errorf("%s: %w", errCtxDirectory, err)
	}
	for _, u := range allowed {
		if entities.NormalizeEmail(u.Email) == want {
			log.Debug(ctx, "viewer resolved", zap.String("email", want), zap.String("role", string(u.Role)))
			return entities.Viewer{Email: want, Role: u.Role}, nil
		}
	}
	return entities.Viewer{}, fmt.Errorf("%s: %w: %s", errCtxDirectory, ErrViewerNotAllowed, want)
}
