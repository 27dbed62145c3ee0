// Package accessgate собирает сервис: хранилище, платёжный провайдер,
// журнал событий, уведомления и HTTP-сервер.
package accessgate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/access-gate/internal/cache"
	"github.com/magabrotheeeer/access-gate/internal/config"
	"github.com/magabrotheeeer/access-gate/internal/http/handlers/health"
	"github.com/magabrotheeeer/access-gate/internal/lib/jwt"
	"github.com/magabrotheeeer/access-gate/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/access-gate/internal/lib/sl"
	"github.com/magabrotheeeer/access-gate/internal/migrations"
	"github.com/magabrotheeeer/access-gate/internal/paymentprovider"
	accountservice "github.com/magabrotheeeer/access-gate/internal/services/account"
	checkoutservice "github.com/magabrotheeeer/access-gate/internal/services/checkout"
	"github.com/magabrotheeeer/access-gate/internal/services/reconciler"
	"github.com/magabrotheeeer/access-gate/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App владеет HTTP-сервером и внешними соединениями.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	cache    *cache.Cache
	amqpConn *amqp.Connection
	amqpCh   *amqp.Channel
}

// New применяет миграции, открывает соединения и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "accessgate.New"

	if err := migrations.RunDSN(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app := &App{logger: logger, db: db}

	checks := map[string]health.Check{"postgres": db.Ping}
	var opts []reconciler.Option

	if cfg.RedisAddress != "" {
		app.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		opts = append(opts, reconciler.WithLedger(cache.NewEventLedger(app.cache, cfg.EventTTL)))
		checks["redis"] = app.cache.Ping
	} else {
		logger.Info("redis address not set, event ledger disabled")
	}

	if cfg.RabbitMQURL != "" {
		app.amqpConn, err = rabbitmq.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.amqpCh, err = rabbitmq.SetupChannel(app.amqpConn, rabbitmq.GetNotificationQueues())
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		opts = append(opts, reconciler.WithNotifier(rabbitmq.NewPublisher(app.amqpCh)))
		conn := app.amqpConn
		checks["rabbitmq"] = func(context.Context) error {
			if conn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}
	} else {
		logger.Info("rabbitmq url not set, activation notifications disabled")
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	accounts := accountservice.NewService(db, jwtMaker)
	provider := paymentprovider.NewClient(cfg.StripeSecretKey, cfg.StripePriceID, cfg.Domain)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		Accounts:   accounts,
		Checkout:   checkoutservice.NewService(accounts, provider),
		Reconciler: reconciler.New(logger, db, cfg.StripeWebhookSecret, opts...),
		JWT:        jwtMaker,
		Limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		Health:     checks,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run обслуживает запросы до отмены ctx, затем корректно останавливает сервер
// и закрывает соединения.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.amqpCh != nil {
		if err := a.amqpCh.Close(); err != nil {
			a.logger.Warn("failed to close amqp channel", sl.Err(err))
		}
	}
	if a.amqpConn != nil {
		if err := a.amqpConn.Close(); err != nil {
			a.logger.Warn("failed to close amqp connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("failed to close redis client", sl.Err(err))
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}
