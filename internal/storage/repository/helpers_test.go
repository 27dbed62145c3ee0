package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/access-gate/internal/migrations"
	"github.com/magabrotheeeer/access-gate/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.RunDSN(dsn, migrationsPath))

	storage, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(storage.Close)

	return storage
}

// TestVerification читает строки напрямую, минуя методы Storage.
type TestVerification struct {
	storage *Storage
}

func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// CountAccounts возвращает число строк с данным email.
func (v *TestVerification) CountAccounts(t *testing.T, email string) int {
	t.Helper()
	var count int
	err := v.storage.Pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM accounts WHERE email = $1", email).Scan(&count)
	require.NoError(t, err)
	return count
}

// Row возвращает аккаунт целиком.
func (v *TestVerification) Row(t *testing.T, email string) *models.Account {
	t.Helper()
	row := v.storage.Pool.QueryRow(context.Background(),
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	account, err := scanAccount(row)
	require.NoError(t, err)
	return account
}
