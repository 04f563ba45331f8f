package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pribylovaa/go-todo-service/internal/models"
	"github.com/pribylovaa/go-todo-service/internal/pkg/log"
)

// ListTodos возвращает задачи владельца access-токена.
// Идентичность проверяется как в UserByAccessToken (подпись + срок действия
// + существование аккаунта), затем выполняется выборка по владельцу.
func (s *Service) ListTodos(ctx context.Context, accessToken string) ([]models.Todo, error) {
	const op = "service.todos.ListTodos"

	uid, _, err := s.UserByAccessToken(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	todos, err := s.storage.TodosByOwner(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return todos, nil
}

// CreateTodo создаёт задачу для владельца access-токена.
// Заголовок обязателен; ID задачи генерирует хранилище.
func (s *Service) CreateTodo(ctx context.Context, accessToken, title, content string) (*models.Todo, error) {
	const op = "service.todos.CreateTodo"

	uid, _, err := s.UserByAccessToken(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyTitle)
	}

	todo := &models.Todo{
		UserID:  uid,
		Title:   title,
		Content: content,
	}

	if err := s.storage.SaveTodo(ctx, todo); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("todo_created",
		slog.String("op", op),
		slog.String("user_id", uid.String()),
		slog.String("todo_id", todo.ID),
	)

	return todo, nil
}
