package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/go-todo-service/internal/models"
	"github.com/pribylovaa/go-todo-service/internal/pkg/log"
	"github.com/pribylovaa/go-todo-service/internal/pkg/redact"
	"github.com/pribylovaa/go-todo-service/internal/storage"
)

// RegisterUser регистрирует нового пользователя.
// Имя регистрозависимо; проверка занятости перед вставкой не атомарна,
// поэтому уникальный индекс БД остаётся последней линией защиты.
func (s *Service) RegisterUser(ctx context.Context, username, password string) (*models.User, error) {
	const op = "service.auth.RegisterUser"

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyUsername)
	}

	if password == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyPassword)
	}

	_, err := s.storage.UserByUsername(ctx, username)
	if err == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrAccountExists)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrAccountExists)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_registered",
		slog.String("op", op),
		slog.String("user_id", user.ID.String()),
		slog.String("username", redact.Username(user.Username)),
	)

	return user, nil
}

// LoginUser выполняет вход по имени и паролю и выпускает пару токенов.
// Новый refresh-токен перезаписывает предыдущий: у аккаунта в любой момент
// действителен не более одного refresh-токена.
func (s *Service) LoginUser(ctx context.Context, username, password string) (*models.TokenPair, uuid.UUID, error) {
	const op = "service.auth.LoginUser"

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrEmptyUsername)
	}
	if password == "" {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrEmptyPassword)
	}

	user, err := s.storage.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrAccountNotFound)
		}

		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if !checkPassword(user.PasswordHash, password) {
		log.From(ctx).Warn("login_password_mismatch",
			slog.String("op", op),
			slog.String("username", redact.Username(username)),
		)
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	pair, err := s.issueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	s.cacheIdentity(ctx, user.ID, user.Username)

	return pair, user.ID, nil
}

// RefreshTokens обновляет пару токенов по refresh-токену (ротация).
//
// Порядок проверок соответствует контракту:
//  1. токен предъявлен;
//  2. подпись корректна (иначе ErrInvalidToken);
//  3. compare-and-swap по сохранённому значению: из двух конкурентных
//     ротаций одного токена побеждает ровно одна, проигравшая получает
//     ErrTokenMismatch. Несовпадение также покрывает отзыв через logout
//     и чужой токен.
//
// Выпуск и запись — единый неделимый шаг: если запись не удалась,
// токены наружу не возвращаются.
func (s *Service) RefreshTokens(ctx context.Context, presented string) (*models.TokenPair, uuid.UUID, error) {
	const op = "service.auth.RefreshTokens"

	if presented == "" {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrMissingToken)
	}

	uid, err := s.parseRefreshToken(presented)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()

	accessToken, err := s.generateAccessToken(ctx, uid, now)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, err := s.generateRefreshToken(ctx, uid, now)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	ok, err := s.storage.RotateRefreshToken(ctx, uid, refreshHash(presented), refreshHash(refreshToken))
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if !ok {
		// CAS не сработал: либо аккаунта нет, либо значение не совпало.
		if _, lookupErr := s.storage.UserByID(ctx, uid); lookupErr != nil {
			if errors.Is(lookupErr, storage.ErrNotFound) {
				return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrAccountNotFound)
			}

			return nil, uuid.Nil, fmt.Errorf("%s: %w", op, lookupErr)
		}

		log.From(ctx).Warn("refresh_mismatch",
			slog.String("op", op),
			slog.String("user_id", uid.String()),
		)
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrTokenMismatch)
	}

	return &models.TokenPair{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessExpiresAt: now.Add(s.cfg.AccessTokenTTL),
	}, uid, nil
}

// LogoutUser отзывает refresh-токен аккаунта по предъявленному access-токену.
// В отличие от RefreshTokens здесь проверяется и срок действия access-токена:
// просроченным токеном выйти нельзя.
func (s *Service) LogoutUser(ctx context.Context, accessToken string) error {
	const op = "service.auth.LogoutUser"

	if accessToken == "" {
		return fmt.Errorf("%s: %w", op, ErrMissingToken)
	}

	uid, err := s.parseAccessToken(accessToken)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.ClearRefreshToken(ctx, uid); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrAccountNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_logged_out",
		slog.String("op", op),
		slog.String("user_id", uid.String()),
	)

	return nil
}

// UserByAccessToken проверяет access-токен (подпись + срок действия)
// и возвращает ID аккаунта и его публичную идентичность (username).
func (s *Service) UserByAccessToken(ctx context.Context, accessToken string) (uuid.UUID, string, error) {
	const op = "service.auth.UserByAccessToken"

	if accessToken == "" {
		return uuid.Nil, "", fmt.Errorf("%s: %w", op, ErrMissingToken)
	}

	uid, err := s.parseAccessToken(accessToken)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("%s: %w", op, err)
	}

	if s.idcache != nil {
		if name, hit, cacheErr := s.idcache.Username(ctx, uid); cacheErr == nil && hit {
			return uid, name, nil
		}
	}

	user, err := s.storage.UserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return uuid.Nil, "", fmt.Errorf("%s: %w", op, ErrAccountNotFound)
		}

		return uuid.Nil, "", fmt.Errorf("%s: %w", op, err)
	}

	s.cacheIdentity(ctx, user.ID, user.Username)

	return user.ID, user.Username, nil
}

// issueTokenPair выпускает новую пару access+refresh токенов и безусловно
// перезаписывает хэш refresh-токена на аккаунте.
func (s *Service) issueTokenPair(ctx context.Context, userID uuid.UUID) (*models.TokenPair, error) {
	const op = "service.auth.issueTokenPair"

	now := time.Now().UTC()

	accessToken, err := s.generateAccessToken(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, err := s.generateRefreshToken(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.UpdateRefreshToken(ctx, userID, refreshHash(refreshToken)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.TokenPair{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessExpiresAt: now.Add(s.cfg.AccessTokenTTL),
	}, nil
}

// cacheIdentity — best-effort запись в кэш идентичности; ошибки только логируем.
func (s *Service) cacheIdentity(ctx context.Context, userID uuid.UUID, username string) {
	if s.idcache == nil || s.cfg.CacheTTL <= 0 {
		return
	}

	if err := s.idcache.SetUsername(ctx, userID, username, s.cfg.CacheTTL); err != nil {
		log.From(ctx).Warn("identity_cache_set_failed",
			slog.String("user_id", userID.String()),
			slog.String("err", err.Error()),
		)
	}
}

// hashPassword хэширует пароль с помощью bcrypt.
func hashPassword(password string) (string, error) {
	const op = "service.auth.hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
