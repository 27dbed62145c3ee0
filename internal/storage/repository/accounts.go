package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/magabrotheeeer/access-gate/internal/lib/apperr"
	"github.com/magabrotheeeer/access-gate/internal/models"
)

const accountColumns = `email, COALESCE(password_hash, ''), COALESCE(provider_customer_id, ''),
	COALESCE(provider_subscription_id, ''), subscription_status, created_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	var status string
	if err := row.Scan(&a.Email, &a.PasswordHash, &a.ProviderCustomerID,
		&a.ProviderSubscriptionID, &status, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.SubscriptionStatus = models.SubscriptionStatus(status)
	return &a, nil
}

// Create сохраняет новый аккаунт с хэшем пароля.
//
// Аккаунт, созданный webhook'ом и ещё не имеющий пароля, получает хэш и
// сохраняет данные подписки. Если пароль у email уже есть, возвращается
// apperr.ErrDuplicateIdentity и запись не меняется.
func (s *Storage) Create(ctx context.Context, email, passwordHash string) (*models.Account, error) {
	const op = "storage.Create"

	conn, err := s.Pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperr.ErrStorage, err)
	}
	defer conn.Release()

	query := `INSERT INTO accounts (email, password_hash)
			  VALUES ($1, $2)
			  ON CONFLICT (email) DO UPDATE
			      SET password_hash = EXCLUDED.password_hash
			      WHERE accounts.password_hash IS NULL
			  RETURNING ` + accountColumns
	account, err := scanAccount(conn.QueryRow(ctx, query, email, passwordHash))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrDuplicateIdentity)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperr.ErrStorage, err)
	}
	return account, nil
}

// FindByEmail возвращает аккаунт по email или nil, если его нет.
func (s *Storage) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	const op = "storage.FindByEmail"

	conn, err := s.Pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperr.ErrStorage, err)
	}
	defer conn.Release()

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	account, err := scanAccount(conn.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperr.ErrStorage, err)
	}
	return account, nil
}

// UpsertSubscription создаёт аккаунт, если его нет, иначе обновляет поля
// подписки одним выражением. Пустые customerID и subscriptionID не
// затирают уже сохранённые значения.
func (s *Storage) UpsertSubscription(ctx context.Context, email, customerID, subscriptionID string,
	status models.SubscriptionStatus) (*models.Account, error) {
	const op = "storage.UpsertSubscription"

	conn, err := s.Pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperr.ErrStorage, err)
	}
	defer conn.Release()

	query := `INSERT INTO accounts (email, provider_customer_id, provider_subscription_id, subscription_status)
			  VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4)
			  ON CONFLICT (email) DO UPDATE SET
			      provider_customer_id = COALESCE(EXCLUDED.provider_customer_id, accounts.provider_customer_id),
			      provider_subscription_id = COALESCE(EXCLUDED.provider_subscription_id, accounts.provider_subscription_id),
			      subscription_status = EXCLUDED.subscription_status
			  RETURNING ` + accountColumns
	account, err := scanAccount(conn.QueryRow(ctx, query, email, customerID, subscriptionID, string(status)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperr.ErrStorage, err)
	}
	return account, nil
}

// GetStatus возвращает статус подписки и признак существования аккаунта.
func (s *Storage) GetStatus(ctx context.Context, email string) (models.SubscriptionStatus, bool, error) {
	const op = "storage.GetStatus"

	conn, err := s.Pool.Acquire(ctx)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w: %w", op, apperr.ErrStorage, err)
	}
	defer conn.Release()

	var status string
	err = conn.QueryRow(ctx, `SELECT subscription_status FROM accounts WHERE email = $1`, email).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w: %w", op, apperr.ErrStorage, err)
	}
	return models.SubscriptionStatus(status), true, nil
}
