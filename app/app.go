package app

import (
	"context"
	"errors"
	"fmt"
	"game-store/config"
	"game-store/controllers"
	"game-store/libs"
	"game-store/middleware"
	"game-store/repositories"
	"game-store/routes"
	"game-store/services"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Router *gin.Engine

	pool  *pgxpool.Pool
	redis *redis.Client
}

type stores struct {
	products repositories.ProductRepository
	carts    repositories.CartRepository
	orders   repositories.OrderRepository
	users    repositories.UserRepository
	tx       repositories.TxManager
}

// New connects the configured backends and builds the HTTP router.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	st, err := a.openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var locker libs.Locker
	if a.redis = config.ConnectRedis(ctx); a.redis != nil {
		locker = libs.NewRedisLocker(a.redis, cfg.LockTTL)
	} else {
		slog.Info("using in-process cart locks")
		locker = libs.NewKeyedMutex()
	}

	var notifier controllers.OrderNotifier
	mailer, err := libs.NewOrderMailer(cfg)
	switch {
	case err == nil:
		notifier = mailer
	case errors.Is(err, libs.ErrMailerNotConfigured):
		slog.Info("order confirmation emails disabled")
	default:
		a.Close()
		return nil, err
	}

	userService := services.NewUserService(st.users)
	if err := userService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		a.Close()
		return nil, err
	}

	ledger := services.NewInventoryLedger(st.products)
	journal := services.NewOrderJournal(st.orders)
	cart := services.NewCartService(st.carts, st.products, st.tx, locker, cfg.CartMaxQuantity)
	checkout := services.NewCheckoutService(st.tx, st.carts, st.products, ledger, journal, locker, cfg.CheckoutTimeout)

	a.Router = NewRouter(routes.Controllers{
		Auth:        controllers.NewAuthController(services.NewAuthService(st.users), userService),
		Product:     controllers.NewProductController(services.NewProductService(st.products), ledger, services.NewStockValidator(st.products)),
		Cart:        controllers.NewCartController(cart),
		Transaction: controllers.NewTransactionController(checkout, notifier),
		Order:       controllers.NewOrderController(journal),
	})
	return a, nil
}

func (a *App) openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case "memory":
		slog.Warn("using in-memory store, data is lost on restart")
		mem := repositories.NewMemoryStore()
		return &stores{
			products: repositories.NewMemoryProducts(mem),
			carts:    repositories.NewMemoryCarts(mem),
			orders:   repositories.NewMemoryOrders(mem),
			users:    repositories.NewMemoryUsers(mem),
			tx:       repositories.NewMemoryTx(mem),
		}, nil
	case "postgres", "":
		pool, err := config.ConnectDB(ctx)
		if err != nil {
			return nil, err
		}
		a.pool = pool
		retry := repositories.DefaultRetryConfig()
		retry.MaxRetries = cfg.TxMaxRetries
		return &stores{
			products: repositories.NewProductRepository(pool),
			carts:    repositories.NewCartRepository(pool),
			orders:   repositories.NewOrderRepository(pool),
			users:    repositories.NewUserRepository(pool),
			tx:       repositories.NewPgTxManager(pool, retry),
		}, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func NewRouter(ctrl routes.Controllers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORSMiddleware())
	routes.SetupRoutes(router, ctrl)
	return router
}

func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			slog.Warn("failed to close redis", slog.Any("err", err))
		}
	}
	if a.pool != nil {
		done := make(chan struct{})
		go func() {
			a.pool.Close()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			slog.Warn("timed out closing database pool")
		}
	}
}
