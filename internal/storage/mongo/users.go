package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/pribylovaa/go-todo-service/internal/models"
	"github.com/pribylovaa/go-todo-service/internal/storage"
)

// userDoc — представление аккаунта в коллекции users.
// UUID храним строкой: просто дебажить и стабильно для индексов.
type userDoc struct {
	ID               string    `bson:"_id"`
	Username         string    `bson:"username"`
	PasswordHash     string    `bson:"password_hash"`
	RefreshTokenHash string    `bson:"refresh_token_hash"`
	CreatedAt        time.Time `bson:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

// MongoDB DateTime хранит миллисекунды.
func toMS(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

func toUserDoc(u *models.User) userDoc {
	return userDoc{
		ID:               u.ID.String(),
		Username:         u.Username,
		PasswordHash:     u.PasswordHash,
		RefreshTokenHash: u.RefreshTokenHash,
		CreatedAt:        toMS(u.CreatedAt),
		UpdatedAt:        toMS(u.UpdatedAt),
	}
}

func (d userDoc) toModel() (*models.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("bad user id %q: %w", d.ID, err)
	}

	return &models.User{
		ID:               id,
		Username:         d.Username,
		PasswordHash:     d.PasswordHash,
		RefreshTokenHash: d.RefreshTokenHash,
		CreatedAt:        d.CreatedAt.UTC(),
		UpdatedAt:        d.UpdatedAt.UTC(),
	}, nil
}

// SaveUser создает нового пользователя.
// Конфликт по уникальному индексу username — storage.ErrAlreadyExists.
func (m *Mongo) SaveUser(ctx context.Context, user *models.User) error {
	const op = "storage.mongo.SaveUser"

	_, err := m.users.InsertOne(ctx, toUserDoc(user))
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UserByUsername находит пользователя по имени.
func (m *Mongo) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.mongo.UserByUsername"

	return m.findUser(ctx, op, bson.D{{Key: "username", Value: username}})
}

// UserByID находит пользователя по ID.
func (m *Mongo) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage.mongo.UserByID"

	return m.findUser(ctx, op, bson.D{{Key: "_id", Value: id.String()}})
}

func (m *Mongo) findUser(ctx context.Context, op string, filter bson.D) (*models.User, error) {
	var doc userDoc
	if err := m.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := doc.toModel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UpdateRefreshToken безусловно перезаписывает хэш refresh-токена аккаунта.
func (m *Mongo) UpdateRefreshToken(ctx context.Context, userID uuid.UUID, hash string) error {
	const op = "storage.mongo.UpdateRefreshToken"

	res, err := m.users.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: userID.String()}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "refresh_token_hash", Value: hash},
			{Key: "updated_at", Value: toMS(time.Now())},
		}}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// RotateRefreshToken атомарно заменяет oldHash на newHash (compare-and-swap).
// Фильтр по паре (_id, refresh_token_hash) закрывает гонку конкурентных
// обновлений: из двух одновременных ротаций одного токена побеждает ровно одна.
func (m *Mongo) RotateRefreshToken(ctx context.Context, userID uuid.UUID, oldHash, newHash string) (bool, error) {
	const op = "storage.mongo.RotateRefreshToken"

	res, err := m.users.UpdateOne(ctx,
		bson.D{
			{Key: "_id", Value: userID.String()},
			{Key: "refresh_token_hash", Value: oldHash},
		},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "refresh_token_hash", Value: newHash},
			{Key: "updated_at", Value: toMS(time.Now())},
		}}},
	)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return res.MatchedCount == 1, nil
}

// ClearRefreshToken очищает хэш refresh-токена аккаунта.
func (m *Mongo) ClearRefreshToken(ctx context.Context, userID uuid.UUID) error {
	const op = "storage.mongo.ClearRefreshToken"

	res, err := m.users.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: userID.String()}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "refresh_token_hash", Value: ""},
			{Key: "updated_at", Value: toMS(time.Now())},
		}}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
