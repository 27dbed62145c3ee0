package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/access-gate/internal/lib/apperr"
	"github.com/magabrotheeeer/access-gate/internal/models"
)

func TestStorage_Create(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		setup    func(t *testing.T)
		email    string
		hash     string
		wantErr  error
		wantHash string
		wantSub  string
	}{
		{
			name:     "new account",
			setup:    func(_ *testing.T) {},
			email:    "new@x.com",
			hash:     "hash1",
			wantHash: "hash1",
		},
		{
			name: "re-registration keeps hash",
			setup: func(t *testing.T) {
				_, err := storage.Create(ctx, "dup@x.com", "original")
				require.NoError(t, err)
			},
			email:    "dup@x.com",
			hash:     "other",
			wantErr:  apperr.ErrDuplicateIdentity,
			wantHash: "original",
		},
		{
			name: "claims webhook-born account",
			setup: func(t *testing.T) {
				_, err := storage.UpsertSubscription(ctx, "paid@x.com", "cus_1", "sub_1", models.StatusActive)
				require.NoError(t, err)
			},
			email:    "paid@x.com",
			hash:     "hash2",
			wantHash: "hash2",
			wantSub:  "sub_1",
		},
	}

	verify := NewTestVerification(storage)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup(t)

			got, err := storage.Create(ctx, tt.email, tt.hash)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.email, got.Email)
			}

			row := verify.Row(t, tt.email)
			assert.Equal(t, tt.wantHash, row.PasswordHash)
			assert.Equal(t, tt.wantSub, row.ProviderSubscriptionID)
			assert.Equal(t, 1, verify.CountAccounts(t, tt.email))
		})
	}
}

func TestStorage_CreateConcurrent(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := storage.Create(ctx, "race@x.com", fmt.Sprintf("hash%d", i))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, apperr.ErrDuplicateIdentity):
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, dup)
}

func TestStorage_FindByEmail(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()

	got, err := storage.FindByEmail(ctx, "absent@x.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = storage.Create(ctx, "a@x.com", "hash")
	require.NoError(t, err)

	got, err = storage.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Equal(t, models.StatusNone, got.SubscriptionStatus)
	assert.Empty(t, got.ProviderCustomerID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestStorage_UpsertSubscription(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()

	t.Run("creates absent account", func(t *testing.T) {
		got, err := storage.UpsertSubscription(ctx, "born@x.com", "cus_1", "sub_1", models.StatusActive)
		require.NoError(t, err)
		assert.Equal(t, "cus_1", got.ProviderCustomerID)
		assert.Equal(t, "sub_1", got.ProviderSubscriptionID)
		assert.True(t, got.IsActive())
		assert.False(t, got.HasPassword())
	})

	t.Run("updates existing account", func(t *testing.T) {
		_, err := storage.Create(ctx, "reg@x.com", "hash")
		require.NoError(t, err)

		got, err := storage.UpsertSubscription(ctx, "reg@x.com", "cus_2", "", models.StatusActive)
		require.NoError(t, err)
		assert.Equal(t, "hash", got.PasswordHash)
		assert.Equal(t, "cus_2", got.ProviderCustomerID)
		assert.Empty(t, got.ProviderSubscriptionID)
		assert.True(t, got.IsActive())
	})

	t.Run("empty ids keep stored values", func(t *testing.T) {
		_, err := storage.UpsertSubscription(ctx, "keep@x.com", "cus_3", "sub_3", models.StatusActive)
		require.NoError(t, err)

		got, err := storage.UpsertSubscription(ctx, "keep@x.com", "", "", models.SubscriptionStatus("past_due"))
		require.NoError(t, err)
		assert.Equal(t, "cus_3", got.ProviderCustomerID)
		assert.Equal(t, "sub_3", got.ProviderSubscriptionID)
		assert.Equal(t, models.SubscriptionStatus("past_due"), got.SubscriptionStatus)
	})

	t.Run("repeated upsert is idempotent", func(t *testing.T) {
		first, err := storage.UpsertSubscription(ctx, "idem@x.com", "cus_4", "sub_4", models.StatusActive)
		require.NoError(t, err)
		for range 5 {
			_, err = storage.UpsertSubscription(ctx, "idem@x.com", "cus_4", "sub_4", models.StatusActive)
			require.NoError(t, err)
		}
		assert.Equal(t, first, NewTestVerification(storage).Row(t, "idem@x.com"))
	})
}

func TestStorage_UpsertSubscriptionConcurrent(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := storage.UpsertSubscription(ctx, "busy@x.com",
				fmt.Sprintf("cus_%d", i), "sub", models.StatusActive)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	verify := NewTestVerification(storage)
	assert.Equal(t, 1, verify.CountAccounts(t, "busy@x.com"))
	row := verify.Row(t, "busy@x.com")
	assert.True(t, row.IsActive())
	assert.Regexp(t, `^cus_\d$`, row.ProviderCustomerID)
}

func TestStorage_GetStatus(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()

	_, found, err := storage.GetStatus(ctx, "absent@x.com")
	require.NoError(t, err)
	assert.False(t, found)

	_, err = storage.Create(ctx, "a@x.com", "hash")
	require.NoError(t, err)
	status, found, err := storage.GetStatus(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, models.StatusNone, status)

	_, err = storage.UpsertSubscription(ctx, "a@x.com", "cus_1", "", models.StatusActive)
	require.NoError(t, err)
	status, _, err = storage.GetStatus(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, status)
}

func TestStorage_ClosedPool(t *testing.T) {
	storage := setupTestDatabase(t)
	storage.Close()

	_, err := storage.FindByEmail(context.Background(), "a@x.com")
	require.ErrorIs(t, err, apperr.ErrStorage)
	require.ErrorIs(t, storage.Ping(context.Background()), apperr.ErrStorage)
}
