package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/transfers/internal/account"
	"github.com/congo-pay/transfers/internal/config"
	"github.com/congo-pay/transfers/internal/ledger"
	"github.com/congo-pay/transfers/internal/middleware"
	"github.com/congo-pay/transfers/internal/notification"
	"github.com/congo-pay/transfers/internal/transfer"
)

// Deps aggregates shared dependencies required to wire routes. DB, Cache and
// NATS are optional; each enables its notification sink when present.
type Deps struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Cache    *redis.Client
	NATS     *nats.Conn
	Logger   *slog.Logger
	Accounts account.Repository
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Middlewares
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	if d.Logger != nil {
		app.Use(middleware.Audit(d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers
	accounts := d.Accounts
	if accounts == nil {
		accounts = account.NewMemoryRepository()
	}
	accountSvc := account.NewService(accounts)
	transferSvc := transfer.NewService(accounts, buildNotifier(d), d.Logger, d.Cfg.LockTimeout,
		transfer.WithLedger(buildLedger(d)))

	accountHandler := account.NewHandler(accountSvc)
	transferHandler := transfer.NewHandler(transferSvc)

	// API routes
	api := app.Group("/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals(middleware.RequestIDHeader).(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterAccountRoutes(api, accountHandler, transferHandler)

	return nil
}

// buildLedger journals to PostgreSQL when a pool is configured.
func buildLedger(d Deps) ledger.Ledger {
	if d.DB != nil {
		return ledger.NewPostgresLedger(d.DB)
	}
	return ledger.NewInMemory()
}

// buildNotifier always logs and adds one breaker-protected sink per
// configured backend.
func buildNotifier(d Deps) notification.Notifier {
	settings := notification.BreakerSettings{
		ConsecutiveFailures: d.Cfg.BreakerFailures,
		Cooldown:            d.Cfg.BreakerCooldown,
	}

	sinks := []notification.Notifier{notification.NewLoggerNotifier(d.Logger)}
	if d.Cache != nil {
		sinks = append(sinks, notification.NewBreaker("redis", notification.NewRedisNotifier(d.Cache, ""), settings, d.Logger))
	}
	if d.DB != nil {
		sinks = append(sinks, notification.NewBreaker("postgres", notification.NewPostgresNotifier(d.DB), settings, d.Logger))
	}
	if d.NATS != nil {
		sinks = append(sinks, notification.NewBreaker("nats", notification.NewNATSNotifier(d.NATS, d.Cfg.NotifySubject), settings, d.Logger))
	}
	return notification.NewFanout(sinks...)
}
