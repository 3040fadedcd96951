package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"notedesk/internal/notes/domain/entities"
	"notedesk/internal/notes/ports/repositories"
	"notedesk/pkg/logger"
)

const (
	queryListAllowed   = `SELECT id, email, role FROM allowed_users ORDER BY lower(email)`
	queryInsertAllowed = `INSERT INTO allowed_users (id, email, role) VALUES ($1, $2, $3) RETURNING id`
)

const (
	ErrCreateUser = "failed to create allowed user"
	ErrListUsers  = "failed to list allowed users"
	ErrScanUser   = "failed to scan allowed user"
)

// UserRepository реализует repositories.UserRepository.
type UserRepository struct {
	pool Pool
}

var _ repositories.UserRepository = (*UserRepository)(nil)

// NewUserRepository создает репозиторий пользователей.
func NewUserRepository(pool Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create добавляет пользователя. Email сохраняется как передан.
func (r *UserRepository) Create(ctx context.Context, user *entities.AllowedUser) (string, error) {
	log := logger.Log(ctx).With(zap.String("method", "UserRepository.Create"))

	id := user.ID
	if id == "" {
		id = uuid.NewString()
	}
	role := user.Role
	if role == "" {
		role = entities.RoleMember
	}

	var userID string
	if err := r.pool.QueryRow(ctx, queryInsertAllowed, id, user.Email, string(role)).Scan(&userID); err != nil {
		log.Error(ctx, ErrCreateUser, zap.Error(err))
		return "", fmt.Errorf("%s: %w", ErrCreateUser, err)
	}
	return userID, nil
}

// ListAllowed возвращает пользователей, отсортированных по email.
func (r *UserRepository) ListAllowed(ctx context.Context) ([]entities.AllowedUser, error) {
	log := logger.Log(ctx).With(zap.String("method", "UserRepository.ListAllowed"))

	rows, err := r.pool.Query(ctx, queryListAllowed)
	if err != nil {
		log.Error(ctx, ErrListUsers, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrListUsers, err)
	}
	defer rows.Close()

	users := make([]entities.AllowedUser, 0)
	for rows.Next() {
		var u entities.AllowedUser
		var role string
		if err := rows.Scan(&u.ID, &u.Email, &role); err != nil {
			log.Error(ctx, ErrScanUser, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", ErrScanUser, err)
		}
		u.Role = entities.ParseRole(role)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		log.Error(ctx, ErrListUsers, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrListUsers, err)
	}
	return users, nil
}
