// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля и дату создания.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Роли пользователей системы.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// StatusActive — статус учётной записи по умолчанию.
const StatusActive = "active"

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта (уникальная, используется как логин)
	PasswordHash string    // Хэш пароля пользователя
	Role         string    // Роль пользователя, admin или user
	Status       string    // Статус учётной записи
	IsPremium    bool      // Признак премиум-аккаунта
	CreatedAt    time.Time // Дата создания учётной записи
}

// PublicUser — представление пользователя без хэша пароля,
// возвращаемое наружу (например, в админском списке пользователей).
type PublicUser struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	IsPremium bool      `json:"is_premium"`
	CreatedAt time.Time `json:"created_at"`
}

// Public возвращает представление пользователя без хэша пароля.
func (u *User) Public() PublicUser {
	return PublicUser{
		UID:       u.UID,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
		IsPremium: u.IsPremium,
		CreatedAt: u.CreatedAt,
	}
}
