package provider

import (
	"github.com/megano/internal/authz"
	"github.com/megano/internal/cache"
	"github.com/megano/internal/config"
	"github.com/megano/internal/logger"
	"github.com/megano/internal/models"
	"github.com/megano/internal/queue"
	"github.com/megano/internal/repository"
	"github.com/megano/internal/service"
	"github.com/megano/internal/session"
)

// Container 依赖注入容器
type Container struct {
	Config       *config.Config
	QueueClient  *queue.Client
	SessionStore session.Store

	// Repositories
	UserRepo           repository.UserRepository
	CategoryRepo       repository.CategoryRepository
	ShopProductRepo    repository.ShopProductRepository
	DiscountRepo       repository.DiscountRepository
	CheckoutOptionRepo repository.CheckoutOptionRepository
	OrderRepo          repository.OrderRepository
	PaymentRepo        repository.PaymentRepository

	// Services
	AuthzService       *authz.Service
	UserAuthService    *service.UserAuthService
	CatalogService     *service.CatalogService
	CartService        *service.CartService
	OrderGate          *service.OrderGate
	ReservationService *service.ReservationService
	CheckoutService    *service.CheckoutService
	PaymentService     *service.PaymentService
	OrderQueryService  *service.OrderQueryService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端，未启用时为空操作客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	c := &Container{
		Config:       cfg,
		QueueClient:  queueClient,
		SessionStore: newSessionStore(cfg),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

// newSessionStore Redis 可用时会话落 Redis，否则使用进程内存
func newSessionStore(cfg *config.Config) session.Store {
	if cache.Enabled() {
		return session.NewRedisStore(cache.Client(), cfg.Redis.Prefix)
	}
	logger.Warnw("provider_session_store_memory", "reason", "redis_disabled")
	return session.NewMemoryStore()
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ShopProductRepo = repository.NewShopProductRepository(db)
	c.DiscountRepo = repository.NewDiscountRepository(db)
	c.CheckoutOptionRepo = repository.NewCheckoutOptionRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.CatalogService = service.NewCatalogService(c.CategoryRepo, c.ShopProductRepo, c.DiscountRepo, c.Config.Catalog.CacheTTL())
	c.CartService = service.NewCartService(c.CatalogService)
	c.OrderGate = service.NewOrderGate(c.OrderRepo)
	c.ReservationService = service.NewReservationService(c.OrderRepo, c.ShopProductRepo, c.CatalogService)
	c.CheckoutService = service.NewCheckoutService(c.OrderGate, c.CatalogService, c.CheckoutOptionRepo, c.OrderRepo, c.PaymentRepo, c.ShopProductRepo, c.QueueClient, c.CatalogService, c.Config.Checkout)
	c.PaymentService = service.NewPaymentService(c.OrderGate, service.NewPaymentGateway(c.Config.Payment.Gateway), c.OrderRepo, c.PaymentRepo, c.ShopProductRepo, c.CatalogService, c.Config.Payment)
	c.OrderQueryService = service.NewOrderQueryService(c.OrderGate, c.OrderRepo, c.ReservationService)
}
