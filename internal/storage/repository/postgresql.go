// Package repository реализует хранилище аккаунтов на PostgreSQL.
// Каждая операция берёт соединение из пула и возвращает его при любом исходе.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/magabrotheeeer/access-gate/internal/lib/apperr"
)

// Storage инкапсулирует пул соединений PostgreSQL.
type Storage struct {
	Pool *pgxpool.Pool
}

// New создаёт пул соединений и проверяет доступность базы.
func New(ctx context.Context, storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	cfg, err := pgxpool.ParseConfig(storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperr.ErrStorage, err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w: %w", op, apperr.ErrStorage, err)
	}

	return &Storage{Pool: pool}, nil
}

// Ping проверяет, что база отвечает.
func (s *Storage) Ping(ctx context.Context) error {
	const op = "storage.Ping"

	if err := s.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("%s: %w: %w", op, apperr.ErrStorage, err)
	}
	return nil
}

// Close закрывает все соединения пула.
func (s *Storage) Close() {
	s.Pool.Close()
}
