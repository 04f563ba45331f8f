// service содержит бизнес-логику todo-сервиса: регистрацию и аутентификацию
// пользователей, выпуск/ротацию/отзыв токенов и выдачу задач через
// интерфейсы из пакета storage.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр Service
//     безопасен для конкурентного использования из разных горутин при условии,
//     что переданное хранилище (storage.Storage) потокобезопасно.
//   - Ошибки возвращаются и далее маппятся транспортом на HTTP-статусы
//     (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"

	"github.com/pribylovaa/go-todo-service/internal/cache"
	"github.com/pribylovaa/go-todo-service/internal/config"
	"github.com/pribylovaa/go-todo-service/internal/storage"
)

var (
	// ErrEmptyUsername — имя пользователя пустое. Транспорт: 400.
	ErrEmptyUsername = errors.New("username is empty")

	// ErrEmptyPassword — пароль пустой. Транспорт: 400.
	ErrEmptyPassword = errors.New("password is empty")

	// ErrAccountExists — имя пользователя уже занято. Транспорт: 409.
	ErrAccountExists = errors.New("account already exists")

	// ErrAccountNotFound — аккаунт не найден (по имени или по subject
	// из токена). Транспорт: 404.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidCredentials — пароль не совпал с хэшем. Транспорт: 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMissingToken — токен не предъявлен. Транспорт: 401.
	ErrMissingToken = errors.New("missing token")

	// ErrInvalidToken — токен некорректен по формату/подписи или подписан
	// не тем секретом. Транспорт: 403.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия access-токена истёк. Транспорт: 403.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenMismatch — подпись refresh-токена верна, но значение не
	// совпадает с сохранённым на аккаунте (токен уже ротирован, отозван
	// через logout или никогда не принадлежал аккаунту). Транспорт: 403.
	ErrTokenMismatch = errors.New("token mismatch")

	// ErrEmptyTitle — заголовок задачи пустой. Транспорт: 400.
	ErrEmptyTitle = errors.New("title is empty")
)

// Service описывает бизнес-логику todo-сервиса.
type Service struct {
	storage storage.Storage
	cfg     config.AuthConfig
	idcache cache.IdentityCache // может быть nil, если кэш не сконфигурирован
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, cfg config.AuthConfig) *Service {
	return &Service{
		storage: storage,
		cfg:     cfg,
	}
}

// SetIdentityCache устанавливает кэш публичной идентичности (опционально).
func (s *Service) SetIdentityCache(c cache.IdentityCache) {
	s.idcache = c
}
