// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/vigilhub/scantrack/internal/lib/jwt"
	"github.com/vigilhub/scantrack/internal/lib/password"
	"github.com/vigilhub/scantrack/internal/models"
	"github.com/vigilhub/scantrack/internal/storage/repository"
)

// ErrInvalidCredentials возвращается при неизвестном email или неверном пароле.
// Ошибка одна на оба случая, чтобы ответ не раскрывал, какая именно часть
// учетных данных не подошла.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// ListUsers возвращает всех пользователей.
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users      UserRepository
	jwtMaker   jwt.Maker
	bcryptCost int
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, bcryptCost int) *AuthService {
	if bcryptCost <= 0 {
		bcryptCost = password.DefaultCost
	}
	return &AuthService{
		users:      users,
		jwtMaker:   jwtMaker,
		bcryptCost: bcryptCost,
	}
}

// Register создает нового пользователя с хэшированием пароля.
// Роль всегда "user": публичная регистрация не принимает роль от вызывающего,
// повышенные права выдаются только через bootstrap-администратора.
func (s *AuthService) Register(ctx context.Context, email, rawPassword string) (string, error) {
	hashed, err := password.GetHash(rawPassword, s.bcryptCost)
	if err != nil {
		return "", err
	}
	user := models.User{
		Email:        email,
		PasswordHash: hashed,
		Role:         models.RoleUser,
		Status:       models.StatusActive,
	}
	return s.users.RegisterUser(ctx, user)
}

// Login проверяет пароль пользователя и генерирует JWT с uid, email и ролью.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (token, role string, err error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", "", ErrInvalidCredentials
		}
		return "", "", err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", ErrInvalidCredentials
	}
	token, err = s.jwtMaker.GenerateToken(user.UID, user.Email, user.Role)
	if err != nil {
		return "", "", err
	}
	return token, user.Role, nil
}

// ValidateToken проверяет JWT и возвращает claims с данными пользователя.
// В базу данных при этом не обращается: роль на момент выпуска токена
// действительна весь срок его жизни.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// EnsureAdmin гарантирует наличие пользователя-администратора с заданными
// учетными данными. Вызывается один раз при старте процесса; если
// администратор уже существует, ничего не делает.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, rawPassword string) error {
	const op = "services.auth.EnsureAdmin"
	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(rawPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	admin := models.User{
		Email:        email,
		PasswordHash: hashed,
		Role:         models.RoleAdmin,
		Status:       models.StatusActive,
	}
	if _, err = s.users.RegisterUser(ctx, admin); err != nil {
		// Конкурентный старт второго экземпляра мог успеть первым.
		if errors.Is(err, repository.ErrUserExists) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListUsers возвращает всех пользователей без хэшей паролей.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.PublicUser, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		result = append(result, u.Public())
	}
	return result, nil
}
