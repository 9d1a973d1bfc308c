// Package routes wires controllers, middleware and the router together.
package routes

import (
	"net/http"
	"time"

	"github.com/ganzorig/mishil/app/controllers"
	"github.com/ganzorig/mishil/app/middlewares"
	"github.com/ganzorig/mishil/app/repositories"
	"github.com/ganzorig/mishil/app/services"
	"github.com/ganzorig/mishil/config"
	"github.com/ganzorig/mishil/pkg/metrics"
	"github.com/ganzorig/mishil/pkg/middleware"
	"github.com/ganzorig/mishil/pkg/reqid"
	"github.com/ganzorig/mishil/pkg/response"
	"github.com/ganzorig/mishil/pkg/router"
)

// RegisterAPI mounts the full HTTP surface on r.
func RegisterAPI(r *router.Router) {
	// Stores and the transaction runner.
	users := repositories.NewUserRepository()
	products := repositories.NewProductRepository()
	categories := repositories.NewCategoryRepository()
	orders := repositories.NewOrderRepository()
	tx := repositories.NewMongoTxRunner()

	// Services.
	authService := services.NewAuthService(users)
	catalogService := services.NewCatalogService(products, categories)
	orderService := services.NewOrderService(orders, products, tx)
	adminService := services.NewAdminService(users, products, orders)

	// Controllers.
	authController := controllers.NewAuthController(authService)
	productController := controllers.NewProductController(catalogService)
	orderController := controllers.NewOrderController(orderService)
	adminController := controllers.NewAdminController(adminService)
	adminCatalog := controllers.NewAdminCatalogController(catalogService)
	adminOrders := controllers.NewAdminOrderController(orderService)

	// Global middleware. Order matters: metrics and request id first,
	// recovery inside them so a panic is still measured and correlated.
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(corsOptions()))
	r.Use(middleware.Budget(config.RequestBudget()))

	// Operational endpoints. Health touches nothing external so the
	// platform's probe stays green while Mongo restarts. Clients call it
	// under /api; the bare path serves infrastructure probes.
	health := func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	}
	r.Get("/health", "health", health)
	r.Get("/metrics", "metrics", metrics.Handler())

	// Locally stored product images.
	storageFS := http.StripPrefix("/storage/", http.FileServer(http.Dir(config.StorageLocalRoot())))
	r.Get("/storage/*", "storage", storageFS.ServeHTTP)

	api := r.Group("/api")
	api.Get("/health", "api.health", health)

	// Auth. Tight rate limit: a 4-digit PIN survives about 10k guesses.
	loginLimit := middleware.RateLimit(10, time.Minute)
	api.Post("/auth/signup", "auth.signup", authController.Signup, loginLimit)
	api.Post("/auth/signin", "auth.signin", authController.Signin, loginLimit)

	// Public catalog.
	api.Get("/products", "products.list", productController.List)
	api.Get("/products/new", "products.new", productController.New)
	api.Get("/products/featured", "products.featured", productController.Featured)
	api.Get("/products/discounted", "products.discounted", productController.Discounted)
	api.Get("/products/search", "products.search", productController.Search)
	api.Get("/products/category/{category}", "products.category", productController.ByCategory)
	api.Get("/products/{id}", "products.get", productController.Get)
	api.Get("/categories", "categories.list", productController.Categories)

	// Checkout: guests and signed-in customers share the endpoint.
	api.Post("/orders", "orders.place", orderController.Place, middlewares.OptionalAuth(users))

	// Signed-in customer surface.
	authed := api.Group("", middlewares.Auth(users))
	authed.Get("/orders/{id}", "orders.get", orderController.Get)
	authed.Get("/users/orders", "users.orders", orderController.Mine)
	authed.Get("/users/profile", "users.profile", authController.Me)
	authed.Put("/users/profile", "users.profile.update", authController.UpdateMe)

	// Admin console.
	admin := api.Group("/admin", middlewares.Auth(users), middlewares.AdminOnly)
	admin.Get("/dashboard", "admin.dashboard", adminController.Dashboard)

	admin.Get("/users", "admin.users", adminController.Users)
	admin.Put("/users/{id}/role", "admin.users.role", adminController.SetRole)
	admin.Put("/users/{id}/password", "admin.users.password", adminController.ResetPIN)
	admin.Delete("/users/{id}", "admin.users.delete", adminController.DeleteUser)

	admin.Get("/products", "admin.products", adminCatalog.Products)
	admin.Post("/products", "admin.products.create", adminCatalog.CreateProduct)
	admin.Put("/products/{id}", "admin.products.update", adminCatalog.UpdateProduct)
	admin.Post("/products/{id}/images", "admin.products.images", adminCatalog.UploadImages)
	admin.Delete("/products/{id}", "admin.products.delete", adminCatalog.DeleteProduct)

	admin.Get("/categories", "admin.categories", adminCatalog.Categories)
	admin.Post("/categories", "admin.categories.create", adminCatalog.CreateCategory)
	admin.Put("/categories/{id}", "admin.categories.update", adminCatalog.UpdateCategory)
	admin.Delete("/categories/{id}", "admin.categories.delete", adminCatalog.DeleteCategory)

	admin.Get("/orders", "admin.orders", adminOrders.List)
	admin.Get("/orders/live", "admin.orders.live", adminOrders.Live)
	admin.Get("/orders/{id}", "admin.orders.get", adminOrders.Get)
	admin.Put("/orders/{id}/status", "admin.orders.status", adminOrders.UpdateStatus)
}

func corsOptions() middleware.CORSOptions {
	opts := middleware.DefaultCORSOptions()
	opts.AllowedOrigins = config.CORSOrigins()
	return opts
}
