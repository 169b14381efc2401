package routes

import (
    "fmt"
    "log/slog"
    "net/http"
    "time"

    "github.com/gofiber/fiber/v2"
    "github.com/gofiber/fiber/v2/middleware/recover"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/redis/go-redis/v9"

    "github.com/cardledger/cardledger/internal/card"
    "github.com/cardledger/cardledger/internal/config"
    "github.com/cardledger/cardledger/internal/correction"
    "github.com/cardledger/cardledger/internal/journal"
    "github.com/cardledger/cardledger/internal/ledger"
    "github.com/cardledger/cardledger/internal/logging"
    "github.com/cardledger/cardledger/internal/middleware"
    "github.com/cardledger/cardledger/internal/notification"
    "github.com/cardledger/cardledger/internal/user"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
    Cfg      config.Config
    DB       *pgxpool.Pool
    Cache    *redis.Client
    Logger   *slog.Logger
    Journal  journal.Journal
    Notifier notification.Notifier
    // Now overrides the correction clock; nil means time.Now.
    Now func() time.Time
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
    // Enforce DB/Redis presence outside of dev, even though config also checks.
    if !d.Cfg.IsDev() {
        if d.DB == nil {
            return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
        }
        if d.Cache == nil {
            return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
        }
    }
    if d.Logger == nil {
        d.Logger = logging.Discard()
    }
    if d.Notifier == nil {
        d.Notifier = notification.NewLoggerNotifier(d.Logger)
    }

    // Middlewares
    app.Use(recover.New())
    app.Use(middleware.RequestID())
    app.Use(middleware.Audit(d.Logger))

    // Health
    RegisterHealthRoutes(app, d)

    // Storage backends
    var (
        ledgers  ledger.Store
        userRepo user.Repository
        cardRepo card.Repository
    )
    if d.DB != nil {
        ledgers = ledger.NewPostgresStore(d.DB)
        userRepo = user.NewPostgresRepository(d.DB)
        cardRepo = card.NewPostgresRepository(d.DB)
    } else {
        ledgers = ledger.NewInMemory()
        userRepo = user.NewMemoryRepository()
        cardRepo = card.NewMemoryRepository()
    }

    // Services and handlers
    userSvc := user.NewService(userRepo)
    cardSvc := card.NewService(cardRepo, userSvc, ledgers)
    correctionSvc := correction.NewService(ledgers, d.Journal, d.Notifier, d.Logger, correction.Options{
        Location:        d.Cfg.Location,
        MaxBackfillDays: d.Cfg.MaxBackfillDays,
        Now:             d.Now,
    })

    userHandler := user.NewHandler(userSvc, cardSvc.DeleteForUser)
    cardHandler := card.NewHandler(cardSvc)
    balanceHandler := correction.NewHandler(correctionSvc, d.Journal)

    // API routes
    api := app.Group("/api/v1")
    api.Get("/ping", func(c *fiber.Ctx) error {
        reqID, _ := c.Locals("X-Request-ID").(string)
        return c.Status(http.StatusOK).JSON(fiber.Map{
            "status":     "ok",
            "request_id": reqID,
            "timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
        })
    })

    var guards []fiber.Handler
    if d.Cache != nil {
        guards = append(guards,
            middleware.RateLimit(d.Cache, "balances", d.Cfg.RateLimit, d.Logger),
            middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger),
        )
    }

    // Balance routes go first so /credit-cards/balances is not taken for a card number.
    RegisterBalanceRoutes(api, balanceHandler, guards...)
    RegisterUserRoutes(api, userHandler)
    RegisterCardRoutes(api, cardHandler)

    return nil
}
