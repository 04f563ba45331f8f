package models

import (
	"time"

	"github.com/google/uuid"
)

// Todo — задача пользователя (MongoDB).
//
// ID — ObjectID MongoDB; наружу/вовнутрь конвертируется в hex-строку
// на уровне storage. UserID — владелец задачи.
type Todo struct {
	ID        string
	UserID    uuid.UUID
	Title     string
	Content   string
	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
