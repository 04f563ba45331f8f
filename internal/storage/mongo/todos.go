package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pribylovaa/go-todo-service/internal/models"
)

// todoDoc — представление задачи в коллекции todos.
type todoDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	Completed bool               `bson:"completed"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d todoDoc) toModel() (models.Todo, error) {
	uid, err := uuid.Parse(d.UserID)
	if err != nil {
		return models.Todo{}, fmt.Errorf("bad todo owner %q: %w", d.UserID, err)
	}

	return models.Todo{
		ID:        d.ID.Hex(),
		UserID:    uid,
		Title:     d.Title,
		Content:   d.Content,
		Completed: d.Completed,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}, nil
}

// SaveTodo создает новую задачу. Если ID пустой — ObjectID генерирует драйвер.
func (m *Mongo) SaveTodo(ctx context.Context, todo *models.Todo) error {
	const op = "storage.mongo.SaveTodo"

	now := toMS(time.Now())
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = now
	}
	todo.UpdatedAt = now

	doc := todoDoc{
		UserID:    todo.UserID.String(),
		Title:     todo.Title,
		Content:   todo.Content,
		Completed: todo.Completed,
		CreatedAt: toMS(todo.CreatedAt),
		UpdatedAt: todo.UpdatedAt,
	}

	if todo.ID != "" {
		oid, err := primitive.ObjectIDFromHex(todo.ID)
		if err != nil {
			return fmt.Errorf("%s: bad id: %w", op, err)
		}
		doc.ID = oid
	}

	res, err := m.todos.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("%s: insert: %w", op, err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		todo.ID = oid.Hex()
	}

	return nil
}

// TodosByOwner возвращает задачи пользователя, новые первыми.
func (m *Mongo) TodosByOwner(ctx context.Context, userID uuid.UUID) ([]models.Todo, error) {
	const op = "storage.mongo.TodosByOwner"

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cur, err := m.todos.Find(ctx, bson.D{{Key: "user_id", Value: userID.String()}}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	var items []models.Todo
	for cur.Next(ctx) {
		var doc todoDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}

		todo, err := doc.toModel()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		items = append(items, todo)
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	return items, nil
}
