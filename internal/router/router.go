package router

import (
	"sort"
	"strings"

	"github.com/megano/internal/authz"
	"github.com/megano/internal/cache"
	"github.com/megano/internal/config"
	adminhandlers "github.com/megano/internal/http/handlers/admin"
	publichandlers "github.com/megano/internal/http/handlers/public"
	"github.com/megano/internal/http/response"
	"github.com/megano/internal/logger"
	"github.com/megano/internal/provider"
	"github.com/megano/internal/session"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/员工分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        cache.BuildKey("rate:login"),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_too_many",
	}
	paymentRule := RateLimitRule{
		Prefix:        cache.BuildKey("rate:payment"),
		WindowSeconds: cfg.Security.PaymentRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.PaymentRateLimit.MaxAttempts,
		MessageKey:    "error.payment_too_many",
	}
	sessionOptions := session.Options{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL(),
		Secure:     cfg.Session.Secure,
		Domain:     cfg.Session.Domain,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
		}

		apiV1.GET("/me", UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo), publicHandler.GetMe)
		apiV1.DELETE("/me", UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo), publicHandler.DeleteMe)

		// 商品目录（无会话）
		catalog := apiV1.Group("/catalog")
		{
			catalog.GET("/categories", publicHandler.GetCategories)
			catalog.GET("/categories/:slug/items", publicHandler.GetCategoryItems)
			catalog.GET("/items/:id", publicHandler.GetCatalogItem)
		}

		// 会话接口：购物车、结账、支付、订单；匿名可访问，由订单门禁判定
		shop := apiV1.Group("")
		shop.Use(
			session.Middleware(c.SessionStore, sessionOptions),
			OptionalUserJWTMiddleware(cfg.UserJWT.SecretKey, c.UserRepo),
		)
		{
			shop.GET("/cart", publicHandler.GetCart)
			shop.DELETE("/cart", publicHandler.ClearCart)
			shop.POST("/cart/items", publicHandler.AddCartItem)
			shop.POST("/cart/items/:id/decrement", publicHandler.DecrementCartItem)
			shop.DELETE("/cart/items/:id", publicHandler.RemoveCartItem)

			shop.GET("/checkout", publicHandler.PreviewCheckout)
			shop.POST("/checkout", publicHandler.PlaceOrder)
			shop.GET("/checkout/options", publicHandler.GetCheckoutOptions)
			shop.GET("/checkout/state", publicHandler.GetCheckoutState)

			shop.POST("/payment", RateLimitMiddleware(redisClient, paymentRule, KeyByUserID), publicHandler.SubmitPayment)
			shop.GET("/payment/progress", publicHandler.GetPaymentProgress)

			shop.GET("/orders", publicHandler.ListOrders)
			shop.GET("/orders/delivery-info", publicHandler.GetDeliveryInfo)
			shop.GET("/orders/:id", publicHandler.GetOrder)
		}

		// 员工接口
		admin := apiV1.Group("/admin")
		admin.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo), StaffRBACMiddleware(c.AuthzService))
		{
			admin.GET("/orders", adminHandler.AdminListOrders)
			admin.GET("/orders/:id", adminHandler.AdminGetOrder)
			admin.DELETE("/orders/:id", adminHandler.AdminDeleteOrder)
			admin.POST("/orders/:id/confirm", adminHandler.AdminConfirmOrder)
			admin.POST("/orders/:id/cancel", adminHandler.AdminCancelOrder)
			admin.PATCH("/stock-records/:id", adminHandler.AdminUpdateStockRecord)
			admin.PATCH("/categories/:id", adminHandler.AdminUpdateCategory)
			admin.PATCH("/discounts/:id", adminHandler.AdminUpdateDiscount)
			admin.POST("/staff", adminHandler.AdminGrantStaff)
			admin.GET("/permissions/catalog", func(ctx *gin.Context) {
				response.Success(ctx, buildAdminPermissionCatalog(r))
			})
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildAdminPermissionCatalog 从已注册路由生成员工接口权限清单
func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 || segments[0] != "admin" {
		return segments[0]
	}
	return segments[1]
}
