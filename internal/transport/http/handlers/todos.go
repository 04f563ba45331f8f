package handlers

import (
	"net/http"

	"github.com/pribylovaa/go-todo-service/internal/models"
	"github.com/pribylovaa/go-todo-service/internal/transport/http/httperr"
	"github.com/pribylovaa/go-todo-service/internal/transport/http/middleware"
)

// TodoItem — представление задачи в ответе API.
type TodoItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Completed bool   `json:"completed"`
	CreatedAt int64  `json:"created_at"` // Unix UTC
	UpdatedAt int64  `json:"updated_at"` // Unix UTC
}

// TodosResponse — ответ GET /todos.
type TodosResponse struct {
	Todos []TodoItem `json:"todos"`
}

// CreateTodoRequest — вход POST /todos.
type CreateTodoRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreateTodo — POST /todos: новая задача владельца access-токена.
func (h *Handlers) CreateTodo(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerFromContext(r.Context())

	var in CreateTodoRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrInvalidInput)
		return
	}

	todo, err := h.Service.CreateTodo(r.Context(), token, in.Title, in.Content)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, todoItem(*todo))
}

// Todos — GET /todos: задачи владельца access-токена.
func (h *Handlers) Todos(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerFromContext(r.Context())

	todos, err := h.Service.ListTodos(r.Context(), token)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	out := TodosResponse{Todos: make([]TodoItem, 0, len(todos))}
	for _, t := range todos {
		out.Todos = append(out.Todos, todoItem(t))
	}

	writeJSON(w, http.StatusOK, out)
}

func todoItem(t models.Todo) TodoItem {
	return TodoItem{
		ID:        t.ID,
		Title:     t.Title,
		Content:   t.Content,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt.Unix(),
		UpdatedAt: t.UpdatedAt.Unix(),
	}
}
