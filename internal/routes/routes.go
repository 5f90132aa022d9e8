package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/owobank/owobank/internal/auth"
	"github.com/owobank/owobank/internal/beneficiary"
	"github.com/owobank/owobank/internal/billing"
	"github.com/owobank/owobank/internal/config"
	"github.com/owobank/owobank/internal/identity"
	"github.com/owobank/owobank/internal/ledger"
	"github.com/owobank/owobank/internal/middleware"
	"github.com/owobank/owobank/internal/notification"
	"github.com/owobank/owobank/internal/pin"
	"github.com/owobank/owobank/internal/statement"
	"github.com/owobank/owobank/internal/transfer"
	"github.com/owobank/owobank/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !isDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	if isDev(d.Cfg.AppEnv) {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	} else {
		app.Use(middleware.Audit(d.Logger))
	}
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Repositories: Postgres in deployed environments, in-memory otherwise.
	var (
		ledgerBackend   ledger.Ledger
		walletRepo      wallet.Repository
		identityRepo    identity.Repository
		beneficiaryRepo beneficiary.Repository
		statementRepo   statement.Repository
	)
	if d.DB != nil {
		ledgerBackend = ledger.NewPostgresLedger(d.DB)
		walletRepo = wallet.NewPostgresRepository(d.DB)
		identityRepo = identity.NewPostgresRepository(d.DB)
		beneficiaryRepo = beneficiary.NewPostgresRepository(d.DB)
		statementRepo = statement.NewPostgresRepository(d.DB)
	} else {
		ledgerBackend = ledger.NewInMemory()
		walletRepo = wallet.NewMemoryRepository()
		identityRepo = identity.NewMemoryRepository()
		beneficiaryRepo = beneficiary.NewMemoryRepository()
		statementRepo = statement.NewMemoryRepository()
	}

	// Services
	walletSvc := wallet.NewService(walletRepo, ledgerBackend)
	identitySvc := identity.NewService(identityRepo)
	gate := pin.NewGate(identityRepo)
	notifier := notification.NewLoggerNotifier(d.Logger)
	authSvc := auth.NewService(d.Cfg, identityRepo)
	transferSvc := transfer.NewService(ledgerBackend, walletSvc, identityRepo, gate, beneficiaryRepo, notifier)
	billingSvc := billing.NewService(ledgerBackend, walletSvc, gate, nil, d.Cfg.SettlementTimeout, d.Logger)
	statementSvc := statement.NewService(ledgerBackend, walletSvc, statementRepo, d.Cfg.StatementPreviewLimit)

	// Handlers
	authHandler := auth.NewHandler(identitySvc, authSvc, walletSvc)
	transferHandler := transfer.NewHandler(transferSvc)
	billingHandler := billing.NewHandler(billingSvc)
	statementHandler := statement.NewHandler(statementSvc)

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

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	// Protected routes
	jwtmw := middleware.JWTAuth(d.Cfg, identityRepo)
	protected := api.Group("", jwtmw)
	RegisterWalletRoutes(protected, walletSvc, identityRepo, ledgerBackend)
	RegisterPINRoutes(protected, gate)
	RegisterBankRoutes(protected)
	RegisterBeneficiaryRoutes(protected, beneficiaryRepo)
	protected.Post("/transfers", transferHandler.Create)
	protected.Post("/bills", billingHandler.Pay)
	protected.Post("/statements", statementHandler.Generate)
	protected.Get("/statements", statementHandler.History)
	protected.Get("/statements/:id", statementHandler.Get)

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
