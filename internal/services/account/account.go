// Package account содержит бизнес-логику аккаунтов: регистрацию, вход,
// проверку учётных данных и проверку доступа по статусу подписки.
package account

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/access-gate/internal/lib/apperr"
	"github.com/magabrotheeeer/access-gate/internal/lib/jwt"
	"github.com/magabrotheeeer/access-gate/internal/lib/password"
	"github.com/magabrotheeeer/access-gate/internal/models"
)

// Repository описывает хранилище аккаунтов.
type Repository interface {
	// Create сохраняет аккаунт или возвращает apperr.ErrDuplicateIdentity.
	Create(ctx context.Context, email, passwordHash string) (*models.Account, error)

	// FindByEmail возвращает аккаунт или nil, если его нет.
	FindByEmail(ctx context.Context, email string) (*models.Account, error)

	// GetStatus возвращает статус подписки и признак существования аккаунта.
	GetStatus(ctx context.Context, email string) (models.SubscriptionStatus, bool, error)
}

// Service отвечает за регистрацию, вход и проверку доступа.
type Service struct {
	accounts Repository
	jwtMaker jwt.Maker
}

// NewService создает новый экземпляр Service.
func NewService(accounts Repository, jwtMaker jwt.Maker) *Service {
	return &Service{
		accounts: accounts,
		jwtMaker: jwtMaker,
	}
}

// Register создаёт аккаунт с хэшированным паролем.
func (s *Service) Register(ctx context.Context, email, rawPassword string) error {
	const op = "account.Register"

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err = s.accounts.Create(ctx, models.NormalizeEmail(email), hashed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Authenticate проверяет пару email/пароль и возвращает аккаунт.
// Неизвестный email, аккаунт без пароля и неверный пароль неразличимы
// для вызывающего: все дают apperr.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, rawPassword string) (*models.Account, error) {
	const op = "account.Authenticate"

	account, err := s.accounts.FindByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if account == nil || !account.HasPassword() {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrInvalidCredentials)
	}

	ok, err := password.Matches(account.PasswordHash, rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrInvalidCredentials)
	}
	return account, nil
}

// Login проверяет учётные данные и выдаёт JWT. Возвращает статус подписки и токен.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (models.SubscriptionStatus, string, error) {
	const op = "account.Login"

	account, err := s.Authenticate(ctx, email, rawPassword)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	token, err := s.jwtMaker.GenerateToken(account.Email)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return account.SubscriptionStatus, token, nil
}

// IsActive сообщает, есть ли у email активная подписка. Каждый вызов читает хранилище.
func (s *Service) IsActive(ctx context.Context, email string) (bool, error) {
	const op = "account.IsActive"

	status, found, err := s.accounts.GetStatus(ctx, models.NormalizeEmail(email))
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return found && status == models.StatusActive, nil
}

// Account возвращает аккаунт по email или apperr.ErrNotFound.
func (s *Service) Account(ctx context.Context, email string) (*models.Account, error) {
	const op = "account.Account"

	account, err := s.accounts.FindByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if account == nil {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return account, nil
}
