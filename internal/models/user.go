// Package models содержит доменные сущности todo-сервиса.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User — модель аккаунта в системе.
//
// Важно:
//   - Username уникален и регистрозависим (уникальный индекс в MongoDB);
//   - PasswordHash — bcrypt-хэш, открытый пароль нигде не хранится;
//   - RefreshTokenHash — хэш единственного действующего refresh-токена
//     аккаунта; пустая строка означает отсутствие активной сессии.
//     Перезаписывается при login/refresh и очищается при logout —
//     в любой момент действителен не более одного refresh-токена.
type User struct {
	ID               uuid.UUID
	Username         string
	PasswordHash     string
	RefreshTokenHash string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
