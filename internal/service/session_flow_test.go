package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-todo-service/internal/models"
	"github.com/pribylovaa/go-todo-service/internal/storage"
)

// fakeStorage — потокобезопасное in-memory хранилище для сквозных
// сценариев жизненного цикла сессии. Атомарность RotateRefreshToken
// обеспечивается общим мьютексом, как CAS-условием в реальной БД.
type fakeStorage struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
	byNm  map[string]uuid.UUID
	todos []models.Todo
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		users: make(map[uuid.UUID]*models.User),
		byNm:  make(map[string]uuid.UUID),
	}
}

func (f *fakeStorage) SaveUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.byNm[user.Username]; ok {
		return storage.ErrAlreadyExists
	}

	cp := *user
	f.users[user.ID] = &cp
	f.byNm[user.Username] = user.ID
	return nil
}

func (f *fakeStorage) UserByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.byNm[username]
	if !ok {
		return nil, storage.ErrNotFound
	}

	cp := *f.users[id]
	return &cp, nil
}

func (f *fakeStorage) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	cp := *u
	return &cp, nil
}

func (f *fakeStorage) UpdateRefreshToken(_ context.Context, userID uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok {
		return storage.ErrNotFound
	}

	u.RefreshTokenHash = hash
	return nil
}

func (f *fakeStorage) RotateRefreshToken(_ context.Context, userID uuid.UUID, oldHash, newHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok || u.RefreshTokenHash != oldHash {
		return false, nil
	}

	u.RefreshTokenHash = newHash
	return true, nil
}

func (f *fakeStorage) ClearRefreshToken(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok {
		return storage.ErrNotFound
	}

	u.RefreshTokenHash = ""
	return nil
}

func (f *fakeStorage) SaveTodo(_ context.Context, todo *models.Todo) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.todos = append(f.todos, *todo)
	return nil
}

func (f *fakeStorage) TodosByOwner(_ context.Context, userID uuid.UUID) ([]models.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Todo
	for _, td := range f.todos {
		if td.UserID == userID {
			out = append(out, td)
		}
	}
	return out, nil
}

func (f *fakeStorage) Close(context.Context) error { return nil }

// Сквозной сценарий жизненного цикла сессии:
// регистрация → вход → ротация → старый токен отклонён → выход →
// токен после выхода отклонён.
func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	st := newFakeStorage()
	svc := New(st, testAuthCfg())
	ctx := context.Background()

	// Регистрация; повторная с тем же именем — конфликт.
	user, err := svc.RegisterUser(ctx, "alice", "Abcdef1!")
	require.NoError(t, err)

	_, err = svc.RegisterUser(ctx, "alice", "another-pw")
	require.ErrorIs(t, err, ErrAccountExists)

	// Вход.
	pair1, uid, err := svc.LoginUser(ctx, "alice", "Abcdef1!")
	require.NoError(t, err)
	require.Equal(t, user.ID, uid)

	// Ротация: выдаётся новая пара, старый refresh перестаёт действовать.
	pair2, _, err := svc.RefreshTokens(ctx, pair1.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair1.RefreshToken, pair2.RefreshToken)

	_, _, err = svc.RefreshTokens(ctx, pair1.RefreshToken)
	require.ErrorIs(t, err, ErrTokenMismatch)

	// Access-токен из свежей пары идентифицирует аккаунт.
	gotUID, name, err := svc.UserByAccessToken(ctx, pair2.AccessToken)
	require.NoError(t, err)
	require.Equal(t, uid, gotUID)
	require.Equal(t, "alice", name)

	// Выход отзывает refresh-токен.
	require.NoError(t, svc.LogoutUser(ctx, pair2.AccessToken))

	_, _, err = svc.RefreshTokens(ctx, pair2.RefreshToken)
	require.ErrorIs(t, err, ErrTokenMismatch)

	// Повторный вход восстанавливает сессию.
	pair3, _, err := svc.LoginUser(ctx, "alice", "Abcdef1!")
	require.NoError(t, err)
	require.NotEmpty(t, pair3.RefreshToken)
}

// Повторный вход инвалидирует refresh-токен предыдущей сессии:
// у аккаунта действителен не более одного refresh-токена.
func TestLogin_SupersedesPreviousSession(t *testing.T) {
	t.Parallel()

	st := newFakeStorage()
	svc := New(st, testAuthCfg())
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, "bob", "pw-123456")
	require.NoError(t, err)

	pair1, _, err := svc.LoginUser(ctx, "bob", "pw-123456")
	require.NoError(t, err)

	pair2, _, err := svc.LoginUser(ctx, "bob", "pw-123456")
	require.NoError(t, err)

	_, _, err = svc.RefreshTokens(ctx, pair1.RefreshToken)
	require.ErrorIs(t, err, ErrTokenMismatch)

	_, _, err = svc.RefreshTokens(ctx, pair2.RefreshToken)
	require.NoError(t, err)
}

// Из N конкурентных ротаций одного и того же refresh-токена побеждает
// ровно одна, остальные получают ErrTokenMismatch.
func TestRefreshTokens_ConcurrentRotation(t *testing.T) {
	t.Parallel()

	st := newFakeStorage()
	svc := New(st, testAuthCfg())
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, "carol", "pw-123456")
	require.NoError(t, err)

	pair, _, err := svc.LoginUser(ctx, "carol", "pw-123456")
	require.NoError(t, err)

	const workers = 8

	var wg sync.WaitGroup
	errs := make([]error, workers)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()

			_, _, errs[i] = svc.RefreshTokens(ctx, pair.RefreshToken)
		}(i)
	}
	wg.Wait()

	var wins, mismatch int
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}

		require.ErrorIs(t, err, ErrTokenMismatch)
		mismatch++
	}

	require.Equal(t, 1, wins)
	require.Equal(t, workers-1, mismatch)
}
