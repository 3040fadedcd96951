// Package services содержит реализации вспомогательных сервисов.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"notedesk/internal/notes/domain/entities"
	"notedesk/internal/notes/ports/services"
	"notedesk/pkg/logger"
)

// Константы для работы с JWT.
const (
	methodResolveViewer = "ResolveViewer"
	methodIssue         = "Issue"
	msgValidatingToken  = "validating token"
	msgTokenValidated   = "token validated successfully"
	msgInvalidToken     = "invalid token format"
	msgTokenExpired     = "token has expired"
	msgErrParsingToken  = "error parsing token" //nolint:gosec
	errCtxValidating    = "validating token"
	errCtxIssuing       = "issuing token"
)

// ErrInvalidAlgorithm представляет статическую ошибку неверного алгоритма подписи.
var ErrInvalidAlgorithm = errors.New("invalid signing algorithm")

// Claims используется для адаптации между доменной моделью и библиотекой JWT.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// ServiceJWT реализует интерфейс IdentityService.
type ServiceJWT struct {
	secretKey []byte
	now       func() time.Time
}

var _ services.IdentityService = (*ServiceJWT)(nil)

// NewJWT создает новый экземпляр сервиса JWT.
func NewJWT(secretKey string) *ServiceJWT {
	return &ServiceJWT{
		secretKey: []byte(secretKey),
		now:       time.Now,
	}
}

// ResolveViewer проверяет JWT токен и возвращает пользователя из его claims.
func (s *ServiceJWT) ResolveViewer(ctx context.Context, tokenString string) (entities.Viewer, error) {
	log := logger.Log(ctx).With(zap.String("method", methodResolveViewer))
	log.Debug(ctx, msgValidatingToken)

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAlgorithm, token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug(ctx, msgTokenExpired)
			return entities.Viewer{}, fmt.Errorf("%s: %w", errCtxValidating, services.ErrExpiredJWTToken)
		}
		log.Error(ctx, msgErrParsingToken, zap.Error(err))
		return entities.Viewer{}, fmt.Errorf("%s: %w", errCtxValidating, services.ErrInvalidJWTToken)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		log.Debug(ctx, msgInvalidToken)
		return entities.Viewer{}, fmt.Errorf("%s: %w", errCtxValidating, services.ErrInvalidJWTToken)
	}

	viewer := entities.Viewer{Email: entities.NormalizeEmail(claims.Email), Role: entities.ParseRole(claims.Role)}
	if !viewer.Authenticated() {
		log.Debug(ctx, "email claim is empty")
		return entities.Viewer{}, fmt.Errorf("%s: %w", errCtxValidating, services.ErrInvalidJWTToken)
	}

	log.Debug(ctx, msgTokenValidated, zap.String("email", viewer.Email), zap.String("role", string(viewer.Role)))
	return viewer, nil
}

// Issue подписывает токен для viewer со сроком действия ttl.
func (s *ServiceJWT) Issue(ctx context.Context, viewer entities.Viewer, ttl time.Duration) (string, error) {
	log := logger.Log(ctx).With(zap.String("method", methodIssue))

	now := s.now()
	claims := &Claims{
		Email: entities.NormalizeEmail(viewer.Email),
		Role:  string(entities.ParseRole(string(viewer.Role))),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   entities.NormalizeEmail(viewer.Email),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		log.Error(ctx, "failed to sign token", zap.Error(err))
		return "", fmt.Errorf("%s: %w", errCtxIssuing, err)
	}
	return signed, nil
}
