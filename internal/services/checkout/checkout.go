// Package checkout создаёт сессии оплаты подписки для аутентифицированных пользователей.
package checkout

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/access-gate/internal/lib/apperr"
	"github.com/magabrotheeeer/access-gate/internal/models"
)

// Authenticator проверяет учётные данные пользователя.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.Account, error)
}

// Provider создаёт hosted checkout сессию у платёжного провайдера.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, email string) (string, error)
}

// Service связывает проверку учётных данных и создание сессии оплаты.
type Service struct {
	auth     Authenticator
	provider Provider
}

// NewService создает новый экземпляр Service.
func NewService(auth Authenticator, provider Provider) *Service {
	return &Service{auth: auth, provider: provider}
}

// CreateSession проверяет учётные данные и возвращает URL страницы оплаты.
// Ошибки провайдера оборачиваются в apperr.ErrProvider.
func (s *Service) CreateSession(ctx context.Context, email, password string) (string, error) {
	const op = "checkout.CreateSession"

	account, err := s.auth.Authenticate(ctx, email, password)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	url, err := s.provider.CreateCheckoutSession(ctx, account.Email)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, apperr.ErrProvider, err)
	}
	return url, nil
}
