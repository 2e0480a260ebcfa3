// Package server assembles the fiber application: middleware, error
// rendering and routes.
package server

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"shop-ledger/internal/admin"
	"shop-ledger/internal/apperr"
	"shop-ledger/internal/audit"
	"shop-ledger/internal/auth"
	"shop-ledger/internal/cashflow"
	"shop-ledger/internal/config"
	"shop-ledger/internal/customer"
	"shop-ledger/internal/dashboard"
	"shop-ledger/internal/inventory"
	"shop-ledger/internal/ledger"
	"shop-ledger/internal/misc"
	"shop-ledger/internal/models"
	"shop-ledger/internal/report"
	"shop-ledger/internal/store"
)

// ErrorHandler renders every error as {"error": "..."}. Storage failures and
// unknown errors are logged and hidden behind a generic message.
func ErrorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		status := apperr.HTTPStatus(err)
		body := fiber.Map{"error": apperr.PublicMessage(err)}
		var ve apperr.ValidationError
		if errors.As(err, &ve) {
			if ve.Field != "" {
				body["field"] = ve.Field
			}
			if len(ve.Fields) > 0 {
				body["fields"] = ve.Fields
			}
		}
		if status >= fiber.StatusInternalServerError {
			log.WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
			}).WithError(err).Error("request failed")
		}
		return c.Status(status).JSON(body)
	}
}

// RequestLogger logs one line per request once the response status is known.
func RequestLogger(log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			// hata burada işlenir ki status doğru loglansın
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		log.WithFields(logrus.Fields{
			"method":  c.Method(),
			"path":    c.Path(),
			"status":  c.Response().StatusCode(),
			"latency": time.Since(start).String(),
		}).Info("request")
		return nil
	}
}

func corsOrigins(raw string) string {
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ",")
}

// New builds the application with every route registered.
func New(cfg *config.Config, st store.Store, svc *ledger.Service) *fiber.App {
	log := config.GetLogger()

	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(log),
		// müşteri adları boşluk içerebilir
		UnescapePath: true,
	})

	app.Use(recover.New())
	app.Use(RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins(cfg.CORSOrigins),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		if err := st.Ping(c.UserContext()); err != nil {
			log.WithError(err).Warn("health check failed")
			return fiber.NewError(fiber.StatusServiceUnavailable, "store unavailable")
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Public auth
	api.Post("/auth/register-owner", auth.RegisterOwnerHandler(st))
	api.Post("/auth/login", auth.LoginHandler(cfg, st))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))
	owner := auth.RequireRole(models.RoleOwner)

	protected.Get("/auth/me", auth.MeHandler(st))
	protected.Post("/admin/users", owner, admin.CreateUserHandler(st))

	// Kasa
	protected.Get("/cash", cashflow.ListCashEntriesHandler(svc))
	protected.Post("/cash", cashflow.CreateCashEntryHandler(svc))
	protected.Get("/cash/summary", cashflow.CashSummaryHandler(svc))
	protected.Get("/cash/export", report.CashExportHandler(svc))
	protected.Put("/cash/:id", cashflow.UpdateCashEntryHandler(svc))
	protected.Delete("/cash/:id", owner, cashflow.DeleteCashEntryHandler(svc))

	// Stok
	protected.Get("/inventory", inventory.ListItemsHandler(svc))
	protected.Post("/inventory", owner, inventory.CreateItemHandler(svc))
	protected.Post("/inventory/adjust", owner, inventory.AdjustHandler(svc))
	protected.Get("/inventory/reconcile", inventory.ReconcileHandler(svc))
	protected.Delete("/inventory/:id", owner, inventory.DeleteItemHandler(svc))

	// Müşteriler
	protected.Get("/customers", customer.ListCustomersHandler(svc))
	protected.Post("/customers", customer.CreateCustomerHandler(svc))
	protected.Get("/customers/:name/entries", customer.ListEntriesHandler(svc))
	protected.Post("/customers/:name/entries", customer.AddEntryHandler(svc))
	protected.Delete("/customers/:name/entries/:id", owner, customer.DeleteEntryHandler(svc))
	protected.Get("/customers/:name/balance", customer.BalanceHandler(svc))
	protected.Get("/customers/:name/export", report.CustomerExportHandler(svc))

	// Çeşitli gelir/gider
	protected.Get("/miscellaneous", misc.ListMiscEntriesHandler(svc))
	protected.Post("/miscellaneous", misc.CreateMiscEntryHandler(svc))
	protected.Get("/miscellaneous/summary", misc.MiscSummaryHandler(svc))
	protected.Put("/miscellaneous/:id", misc.UpdateMiscEntryHandler(svc))
	protected.Delete("/miscellaneous/:id", owner, misc.DeleteMiscEntryHandler(svc))

	// Dashboard
	protected.Get("/dashboard/cash-chart", dashboard.CashChartHandler(svc))
	protected.Get("/dashboard/summary", dashboard.SummaryHandler(svc))

	// Audit logs
	protected.Get("/audit-logs", owner, audit.ListAuditLogsHandler(st))

	return app
}
