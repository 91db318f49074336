package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/ezinne-pharmarcy/backend/internal/api/http/handlers"
	"github.com/ezinne-pharmarcy/backend/internal/auth"
	"github.com/ezinne-pharmarcy/backend/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Owners         *handlers.AccountsHandler
	AdminStaff     *handlers.AccountsHandler
	RetailStaff    *handlers.AccountsHandler
	Medications    *handlers.MedicationsHandler
	Carts          *handlers.SalesHandler
	Orders         *handlers.SalesHandler
	AuthMiddleware *auth.AuthMiddleware
	LoginLimiter   *IPRateLimiter
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api/v1")

	if cfg.LoginLimiter != nil {
		api.Post("/login", cfg.LoginLimiter.Handler(), cfg.Auth.Login)
	} else {
		api.Post("/login", cfg.Auth.Login)
	}

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/logout", cfg.Auth.Logout)

	registerAccounts(protected.Group("/owners"), cfg.Owners, auth.ResourceOwner)
	registerAccounts(protected.Group("/admin-staff"), cfg.AdminStaff, auth.ResourceAdminStaff)
	registerAccounts(protected.Group("/retail-staff"), cfg.RetailStaff, auth.ResourceRetailStaff)

	meds := protected.Group("/medications")
	meds.Post("/", auth.Require(auth.ResourceMedication, auth.ActionCreate), cfg.Medications.Create)
	meds.Get("/", auth.Require(auth.ResourceMedication, auth.ActionList), cfg.Medications.List)
	meds.Get("/:id", cfg.Medications.Get)
	meds.Patch("/:id", cfg.Medications.Update)
	meds.Delete("/:id", cfg.Medications.Delete)

	registerSales(protected, "/carts", "/cart-items", cfg.Carts, auth.ResourceCart)
	registerSales(protected, "/orders", "/order-items", cfg.Orders, auth.ResourceOrder)
}

func registerAccounts(group fiber.Router, h *handlers.AccountsHandler, resource auth.Resource) {
	group.Post("/", auth.Require(resource, auth.ActionCreate), h.Create)
	group.Get("/", auth.Require(resource, auth.ActionList), h.List)
	group.Get("/:id", h.Get)
	group.Patch("/:id", h.Update)
	group.Delete("/:id", h.Delete)
}

func registerSales(router fiber.Router, salesPath, itemsPath string, h *handlers.SalesHandler, resource auth.Resource) {
	sales := router.Group(salesPath)
	sales.Post("/", auth.Require(resource, auth.ActionCreate), h.Create)
	sales.Get("/", auth.Require(resource, auth.ActionList), h.List)
	sales.Get("/:id", h.Get)
	sales.Delete("/:id", auth.Require(resource, auth.ActionDelete), h.Delete)

	items := router.Group(itemsPath)
	items.Post("/", h.CreateItem)
	items.Get("/", h.ListItems)
	items.Get("/:id", h.GetItem)
	items.Delete("/:id", h.DeleteItem)
}
