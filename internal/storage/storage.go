package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-todo-service/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь/задача).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (username).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создает нового пользователя в БД.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByUsername находит пользователя по имени (регистрозависимо).
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// UpdateRefreshToken безусловно перезаписывает хэш refresh-токена
	// аккаунта (login: новейший токен всегда побеждает).
	UpdateRefreshToken(ctx context.Context, userID uuid.UUID, hash string) error
	// RotateRefreshToken атомарно заменяет oldHash на newHash.
	// Возвращает false, если текущее значение не совпало с oldHash
	// (токен уже ротирован, отозван или чужой) — compare-and-swap.
	RotateRefreshToken(ctx context.Context, userID uuid.UUID, oldHash, newHash string) (bool, error)
	// ClearRefreshToken очищает хэш refresh-токена аккаунта (logout).
	ClearRefreshToken(ctx context.Context, userID uuid.UUID) error
}

// TodoStorage выполняет операции над задачами.
type TodoStorage interface {
	// SaveTodo создает новую задачу.
	SaveTodo(ctx context.Context, todo *models.Todo) error
	// TodosByOwner возвращает задачи пользователя (новые первыми).
	TodosByOwner(ctx context.Context, userID uuid.UUID) ([]models.Todo, error)
}

// Storage задает контракт работы с БД.
type Storage interface {
	UserStorage
	TodoStorage
	Close(ctx context.Context) error
}
