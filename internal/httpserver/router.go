package httpserver

import (
	"context"
	"time"

	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/service/cart"
	"storefront/internal/service/catalog"
	"storefront/internal/service/dashboard"
	"storefront/internal/service/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type AuthService interface {
	Signup(ctx context.Context, in user.SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	AccessTTLSeconds() int
}

type CatalogService interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListActiveProducts(ctx context.Context, categoryID *int64) ([]domain.Product, error)
	ListAllProducts(ctx context.Context) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	Storefront(ctx context.Context, categoryID *int64) (*catalog.StorefrontView, error)
	UpsertCategory(ctx context.Context, c domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	UpsertProduct(ctx context.Context, p domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type CartService interface {
	AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.CartItem, error)
	View(ctx context.Context, userID string) (*cart.View, error)
	RemoveOwnedItem(ctx context.Context, userID string, itemID int64) error
}

type CheckoutService interface {
	Checkout(ctx context.Context, userID string, total decimal.Decimal, contact domain.Contact) (*domain.Order, error)
}

type OrderService interface {
	Transition(ctx context.Context, orderID int64, status string) (*domain.Order, error)
	Board(ctx context.Context) (map[domain.OrderStatus][]domain.Order, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Order, error)
}

type DashboardService interface {
	Summary(ctx context.Context) (*dashboard.Summary, error)
}

// Deps carries the services the handlers call.
type Deps struct {
	Auth      AuthService
	Catalog   CatalogService
	Cart      CartService
	Checkout  CheckoutService
	Orders    OrderService
	Dashboard DashboardService
}

type Options struct {
	// CORSOrigins lists allowed browser origins; empty allows any origin.
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db Pinger, deps Deps, opts Options) *gin.Engine {
	logger = logging.OrNop(logger)
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		requestID(),
		requestLogger(logger),
		ginRecovery(logger),
		prometheusMiddleware(),
		cors.New(corsConfig(opts.CORSOrigins)),
	)

	h := &handlers{deps: deps, logger: logger}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/auth/signup", h.signup)
	router.POST("/auth/login", h.login)

	router.GET("/categories", h.listCategories)
	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)
	router.GET("/storefront", h.storefront)

	authed := router.Group("/", authMiddleware(deps.Auth))
	authed.POST("/auth/logout", h.logout)
	authed.GET("/me", h.me)
	authed.GET("/me/orders", h.myOrders)
	authed.GET("/cart", h.getCart)
	authed.POST("/cart/items", h.addCartItem)
	authed.DELETE("/cart/items/:id", h.removeCartItem)
	authed.POST("/checkout", h.checkout)

	admin := router.Group("/admin", authMiddleware(deps.Auth), requireAdmin())
	admin.GET("/dashboard", h.dashboard)
	admin.GET("/users", h.listUsers)
	admin.GET("/orders/board", h.orderBoard)
	admin.PATCH("/orders/:id/status", h.transitionOrder)
	admin.POST("/categories", h.upsertCategory)
	admin.DELETE("/categories/:id", h.deleteCategory)
	admin.GET("/products", h.listAllProducts)
	admin.PUT("/products", h.upsertProduct)
	admin.DELETE("/products/:id", h.deleteProduct)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

type handlers struct {
	deps   Deps
	logger *zap.Logger
}
