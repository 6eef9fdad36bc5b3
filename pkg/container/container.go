package container

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"stockops-backend/internal/config"
	orderhandler "stockops-backend/internal/domains/order/handler"
	orderrepo "stockops-backend/internal/domains/order/repository"
	orderservice "stockops-backend/internal/domains/order/service"
	reshandler "stockops-backend/internal/domains/reservation/handler"
	resrepo "stockops-backend/internal/domains/reservation/repository"
	resservice "stockops-backend/internal/domains/reservation/service"
	stockhandler "stockops-backend/internal/domains/stock/handler"
	stockrepo "stockops-backend/internal/domains/stock/repository"
	stockservice "stockops-backend/internal/domains/stock/service"
	"stockops-backend/internal/infrastructure/cache"
	"stockops-backend/internal/infrastructure/database"
	"stockops-backend/internal/infrastructure/queue"
	pkgcache "stockops-backend/pkg/cache"
	"stockops-backend/pkg/jwt"
	"stockops-backend/pkg/logger"
)

// Container wires config, infrastructure, repositories, services and
// handlers in dependency order.
type Container struct {
	Config *config.Config

	DB          *pgxpool.Pool
	Cache       pkgcache.Cache
	QueueClient *asynq.Client
	JWTManager  *jwt.Manager

	StockService       *stockservice.LedgerService
	ReservationService *resservice.ReservationService
	FulfillmentService *orderservice.FulfillmentService

	StockHandler       *stockhandler.StockHandler
	ReservationHandler *reshandler.ReservationHandler
	OrderHandler       *orderhandler.OrderHandler
}

func New(ctx context.Context) (*Container, error) {
	c := &Container{}

	c.Config = config.Load()
	if err := c.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, &c.Config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c.DB = pool

	if err := database.Migrate(c.Config.Database.DSN()); err != nil {
		pool.Close()
		return nil, err
	}

	redisCache, err := cache.NewRedisCache(&c.Config.Redis)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	c.Cache = redisCache

	c.QueueClient = queue.NewClient(&c.Config.Redis)
	c.JWTManager = jwt.NewManager(c.Config.JWT.Secret, c.Config.JWT.Issuer, c.Config.JWT.TTL)

	retries := c.Config.Stock.ConflictRetries

	c.StockService = stockservice.NewLedgerService(
		stockrepo.NewTxRunner(pool),
		stockrepo.NewReadRepository(pool),
		c.QueueClient,
		retries,
	)
	c.ReservationService = resservice.NewReservationService(
		resrepo.NewTxRunner(pool),
		resrepo.NewRepository(pool),
		retries,
	)
	c.FulfillmentService = orderservice.NewFulfillmentService(
		orderrepo.NewTxRunner(pool),
		orderrepo.NewReadRepository(pool),
		c.QueueClient,
		retries,
	)

	c.StockHandler = stockhandler.NewStockHandler(c.StockService)
	c.ReservationHandler = reshandler.NewReservationHandler(c.ReservationService)
	c.OrderHandler = orderhandler.NewOrderHandler(c.FulfillmentService)

	logger.Info("container initialized", map[string]interface{}{"env": c.Config.Env})
	return c, nil
}

func (c *Container) Cleanup() {
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Error("failed to close queue client", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
