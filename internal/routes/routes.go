// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"strings"
	"time"

	"tcw1/internal/handlers"
	"tcw1/internal/metrics"
	"tcw1/internal/middleware"
	"tcw1/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

const (
	authRateLimit  = 5
	tradeRateLimit = 30
	rateWindow     = time.Minute
)

// Handlers bundles every HTTP handler the API serves.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Blockchain    *handlers.BlockchainHandler
	Wallet        *handlers.WalletHandler
	WalletRequest *handlers.WalletRequestHandler
	Deposit       *handlers.DepositHandler
	LoginApproval *handlers.LoginApprovalHandler
	Catalog       *handlers.CatalogHandler
	Marketplace   *handlers.MarketplaceHandler
	Order         *handlers.OrderHandler
	Membership    *handlers.MembershipHandler
	Admin         *handlers.AdminHandler
	User          *handlers.UserHandler
	Health        *handlers.HealthHandler
}

// Options carries the app level settings used while wiring middleware.
type Options struct {
	CORSOrigins string
	Metrics     *metrics.Collector
	AccessLog   bool
}

// SetupMiddleware installs the middleware shared by every route.
func SetupMiddleware(app *fiber.App, opts Options) {
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} | ${locals:requestid} | ${status} | ${latency} | ${method} ${path}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: !strings.Contains(opts.CORSOrigins, "*"),
	}))
	if opts.Metrics != nil {
		app.Use(opts.Metrics.Middleware())
		app.Get("/metrics", opts.Metrics.Handler())
	}
}

// SetupRoutes configures all application routes under /api.
// Route groups whose paths mix public and protected endpoints attach the
// auth middleware per route so public routes stay reachable.
func SetupRoutes(app *fiber.App, h *Handlers, auth *middleware.AuthMiddleware) {
	authed := auth.Handler
	admin := middleware.AdminAuthMiddleware

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to TCW1 API",
			"docs":    "/api",
		})
	})
	app.Get("/health", h.Health.Check)

	api := app.Group("/api")
	api.Get("/health", h.Health.Check)

	setupAuthRoutes(api, h.Auth, authed)
	setupBlockchainRoutes(api, h.Blockchain, authed)
	setupLoginApprovalRoutes(api, h.LoginApproval, authed)
	setupCatalogRoutes(api, h.Catalog, authed, admin)
	setupMarketplaceRoutes(api, h.Marketplace, authed, admin)

	wallets := api.Group("/wallets", authed, middleware.HasPermission(models.PermissionWalletRead))
	wallets.Get("/", h.Wallet.GetMyWallets)
	wallets.Get("/:type", h.Wallet.GetMyWallet)

	requests := api.Group("/wallet-requests", authed)
	requests.Post("/", h.WalletRequest.Create)
	requests.Get("/", h.WalletRequest.GetMine)
	requests.Get("/pending", admin, h.WalletRequest.GetPending)
	requests.Put("/:id/approve", admin, h.WalletRequest.Approve)
	requests.Put("/:id/reject", admin, h.WalletRequest.Reject)

	deposits := api.Group("/deposits", authed)
	deposits.Post("/", middleware.HasPermission(models.PermissionWalletWrite), h.Deposit.Create)
	deposits.Get("/", h.Deposit.GetMine)
	deposits.Get("/pending", admin, h.Deposit.GetPending)
	deposits.Put("/:id/cancel", h.Deposit.Cancel)
	deposits.Put("/:id/confirmations", admin, h.Deposit.UpdateConfirmations)
	deposits.Put("/:id/failed", admin, h.Deposit.MarkFailed)

	orders := api.Group("/orders", authed)
	orders.Post("/", middleware.HasPermission(models.PermissionOrderWrite), h.Order.Create)
	orders.Get("/", h.Order.GetMine)
	orders.Get("/:id", h.Order.Get)
	orders.Put("/:id/cancel", h.Order.Cancel)
	orders.Put("/:id/status", admin, h.Order.UpdateStatus)
	orders.Put("/:id/payment", admin, h.Order.UpdatePayment)
	orders.Put("/:id/shipping", admin, h.Order.AddShipping)

	membership := api.Group("/membership", authed)
	membership.Post("/", h.Membership.Create)
	membership.Get("/me", h.Membership.GetMine)
	membership.Put("/upgrade", h.Membership.Upgrade)
	membership.Put("/cancel", h.Membership.Cancel)
	membership.Post("/process-renewal", admin, h.Membership.ProcessRenewals)

	profile := api.Group("/profile", authed)
	profile.Get("/", h.User.GetProfile)
	profile.Put("/", h.User.UpdateProfile)

	privacy := api.Group("/privacy", authed)
	privacy.Get("/", h.User.GetPrivacy)
	privacy.Put("/", h.User.UpdatePrivacy)

	friends := api.Group("/friends", authed)
	friends.Get("/", h.User.ListFriends)
	friends.Get("/requests", h.User.GetFriendRequests)
	friends.Post("/requests", h.User.SendFriendRequest)
	friends.Put("/requests/:id/accept", h.User.AcceptFriendRequest)
	friends.Put("/requests/:id/reject", h.User.RejectFriendRequest)

	setupAdminRoutes(api, h, authed, admin)
}

func setupAuthRoutes(api fiber.Router, h *handlers.AuthHandler, authed fiber.Handler) {
	r := api.Group("/auth")
	r.Post("/signup", middleware.IPRateLimit(authRateLimit, rateWindow), h.Signup)
	r.Post("/login", middleware.IPRateLimit(authRateLimit, rateWindow), h.Login)
	r.Post("/refresh", h.RefreshToken)

	r.Get("/verify", authed, h.Verify)
	r.Post("/logout", authed, h.Logout)
	r.Post("/change-password", authed, middleware.HasPermission(models.PermissionChangePassword), h.ChangePassword)
	r.Post("/2fa/setup", authed, h.SetupTwoFactor)
	r.Post("/2fa/verify", authed, h.VerifyTwoFactor)
	r.Post("/2fa/disable", authed, h.DisableTwoFactor)
}

func setupBlockchainRoutes(api fiber.Router, h *handlers.BlockchainHandler, authed fiber.Handler) {
	r := api.Group("/blockchain")
	r.Get("/prices", h.GetPrices)
	r.Get("/chart/:currency", h.GetChart)
	r.Get("/recent", h.GetRecentTransactions)
	r.Get("/convert", h.Convert)

	r.Post("/trade", authed,
		middleware.HasPermission(models.PermissionTradeWrite),
		middleware.UserRateLimit(tradeRateLimit, rateWindow),
		h.ExecuteTrade)
	r.Get("/transactions", authed, h.GetTransactions)
	r.Get("/transaction/:hash", authed, h.GetTransaction)
	r.Post("/verify/:hash", authed, h.VerifyTransaction)
	r.Get("/stats", authed, h.GetStats)
}

func setupLoginApprovalRoutes(api fiber.Router, h *handlers.LoginApprovalHandler, authed fiber.Handler) {
	r := api.Group("/login-approval")
	r.Post("/request", middleware.IPRateLimit(authRateLimit, rateWindow), h.Request)
	r.Post("/approve/:token", h.Approve)
	r.Post("/reject/:token", h.Reject)
	r.Get("/status/:token", h.Status)
	r.Get("/pending", authed, h.Pending)
}

func setupCatalogRoutes(api fiber.Router, h *handlers.CatalogHandler, authed, admin fiber.Handler) {
	r := api.Group("/catalog")
	r.Get("/", h.Search)
	r.Get("/category/:category", h.ByCategory)
	r.Get("/:id", h.Get)

	r.Post("/", authed, admin, h.Create)
	r.Put("/:id", authed, admin, h.Update)
	r.Put("/:id/stock", authed, admin, h.UpdateStock)
	r.Delete("/:id", authed, admin, h.Delete)
}

func setupMarketplaceRoutes(api fiber.Router, h *handlers.MarketplaceHandler, authed, admin fiber.Handler) {
	r := api.Group("/marketplace")
	r.Get("/", h.Search)
	r.Get("/seller/:sellerId", h.BySeller)
	r.Get("/:id", h.Get)

	write := middleware.HasPermission(models.PermissionListingWrite)
	r.Post("/", authed, write, h.Create)
	r.Post("/expire-old", authed, admin, h.ExpireOld)
	r.Put("/:id", authed, write, h.Update)
	r.Put("/:id/sold", authed, write, h.MarkSold)
	r.Put("/:id/increment-sales", authed, write, h.IncrementSales)
	r.Delete("/:id", authed, write, h.Delete)
}

func setupAdminRoutes(api fiber.Router, h *Handlers, authed, admin fiber.Handler) {
	r := api.Group("/admin", authed, admin)
	r.Get("/stats", h.Admin.GetStats)
	r.Get("/users", h.Admin.GetUsers)
	r.Get("/users/:id", h.Admin.GetUser)
	r.Put("/users/:id", h.Admin.UpdateUser)
	r.Put("/users/:id/make-admin", h.Admin.MakeAdmin)
	r.Put("/users/:id/status", h.Admin.SetUserStatus)
	r.Delete("/users/:id", h.Admin.DeleteUser)
	r.Get("/transactions", h.Admin.GetTransactions)
	r.Get("/cache-stats", h.Health.CacheStats)

	r.Post("/wallets", h.Wallet.AssignWallet)
	r.Get("/wallets/:userId", h.Wallet.GetUserWallets)
	r.Put("/wallets/:userId/:type/balance", h.Wallet.UpdateBalance)
	r.Delete("/wallets/:userId/:type", h.Wallet.DeactivateWallet)
}
