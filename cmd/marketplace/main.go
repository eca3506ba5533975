// Marketplace 主程序
// 功能：样本/样本包市场，包括目录浏览、购物车、结账、下载授权与兑换
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	authapp "github.com/wyfcoding/samplemarket/internal/auth/application"
	authdomain "github.com/wyfcoding/samplemarket/internal/auth/domain"
	authmysql "github.com/wyfcoding/samplemarket/internal/auth/infrastructure/persistence/mysql"
	authhttp "github.com/wyfcoding/samplemarket/internal/auth/interfaces/http"
	cartapp "github.com/wyfcoding/samplemarket/internal/cart/application"
	cartdomain "github.com/wyfcoding/samplemarket/internal/cart/domain"
	cartmysql "github.com/wyfcoding/samplemarket/internal/cart/infrastructure/persistence/mysql"
	carthttp "github.com/wyfcoding/samplemarket/internal/cart/interfaces/http"
	catalogapp "github.com/wyfcoding/samplemarket/internal/catalog/application"
	catalogdomain "github.com/wyfcoding/samplemarket/internal/catalog/domain"
	catalogmysql "github.com/wyfcoding/samplemarket/internal/catalog/infrastructure/persistence/mysql"
	cataloghttp "github.com/wyfcoding/samplemarket/internal/catalog/interfaces/http"
	entapp "github.com/wyfcoding/samplemarket/internal/entitlement/application"
	entdomain "github.com/wyfcoding/samplemarket/internal/entitlement/domain"
	entmysql "github.com/wyfcoding/samplemarket/internal/entitlement/infrastructure/persistence/mysql"
	entstorage "github.com/wyfcoding/samplemarket/internal/entitlement/infrastructure/storage"
	enthttp "github.com/wyfcoding/samplemarket/internal/entitlement/interfaces/http"
	followapp "github.com/wyfcoding/samplemarket/internal/follow/application"
	followdomain "github.com/wyfcoding/samplemarket/internal/follow/domain"
	followmysql "github.com/wyfcoding/samplemarket/internal/follow/infrastructure/persistence/mysql"
	followhttp "github.com/wyfcoding/samplemarket/internal/follow/interfaces/http"
	orderapp "github.com/wyfcoding/samplemarket/internal/order/application"
	orderdomain "github.com/wyfcoding/samplemarket/internal/order/domain"
	orderpayment "github.com/wyfcoding/samplemarket/internal/order/infrastructure/payment"
	ordermysql "github.com/wyfcoding/samplemarket/internal/order/infrastructure/persistence/mysql"
	orderhttp "github.com/wyfcoding/samplemarket/internal/order/interfaces/http"
	"github.com/wyfcoding/samplemarket/pkg/config"
	"github.com/wyfcoding/samplemarket/pkg/db"
	"github.com/wyfcoding/samplemarket/pkg/logger"
	"github.com/wyfcoding/samplemarket/pkg/metrics"
	"github.com/wyfcoding/samplemarket/pkg/middleware"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/marketplace/config.toml", "path to config file")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger.Info(ctx, "Starting marketplace",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)

	// 3. 初始化数据库
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize database", "error", err)
	}
	defer database.Close()

	if err := database.AutoMigrate(
		&authdomain.User{},
		&catalogdomain.Pack{},
		&catalogdomain.Sample{},
		&cartdomain.CartItem{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&entdomain.Entitlement{},
		&followdomain.Follow{},
	); err != nil {
		logger.Fatal(ctx, "Failed to migrate database", "error", err)
	}

	m := metrics.New("marketplace")

	// 4. 初始化外部协作方客户端
	paymentClient := orderpayment.NewClient(
		cfg.Payment.BaseURL, cfg.Payment.APIKey,
		time.Duration(cfg.Payment.Timeout)*time.Second,
	)
	storageSigner := entstorage.NewGatewayClient(
		cfg.Storage.BaseURL, cfg.Storage.APIKey,
		time.Duration(cfg.Storage.Timeout)*time.Second,
	)

	// 5. 初始化仓储与应用服务
	userRepo := authmysql.NewUserRepository(database.DB)
	authService := authapp.NewAuthApplicationService(userRepo, cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTL)*time.Hour)

	catalogRepo := catalogmysql.NewCatalogRepository(database.DB)
	catalogCmd := catalogapp.NewCatalogCommandService(catalogRepo)
	catalogQuery := catalogapp.NewCatalogQueryService(catalogRepo)

	cartRepo := cartmysql.NewCartRepository(database.DB)
	cartService := cartapp.NewCartApplicationService(cartRepo, m)

	entRepo := entmysql.NewEntitlementRepository(database.DB)
	sampleResolver := entmysql.NewSampleResolver(database.DB)
	entService := entapp.NewEntitlementApplicationService(entRepo, storageSigner, sampleResolver,
		time.Duration(cfg.Storage.SignedURLTTL)*time.Second, m)

	orderRepo := ordermysql.NewOrderRepository(database.DB)
	checkoutService := orderapp.NewCheckoutService(orderRepo, cartService, paymentClient, m)

	followRepo := followmysql.NewFollowRepository(database.DB)
	followService := followapp.NewFollowApplicationService(followRepo)

	// 6. 初始化 HTTP 服务
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		middleware.GinRecoveryMiddleware(),
		middleware.GinLoggingMiddleware(),
		middleware.GinCORSMiddleware(),
	)

	engine.Use(m.GinMiddleware())
	if cfg.Metrics.Enabled {
		engine.GET(cfg.Metrics.Path, m.Handler())
	}

	auth := middleware.GinAuthMiddleware(cfg.Auth.JWTSecret)
	producer := []gin.HandlerFunc{auth, middleware.GinRequireRole(string(authdomain.RoleProducer))}

	api := engine.Group("/api")
	authhttp.NewHandler(authService).RegisterRoutes(api, auth)
	cataloghttp.NewCatalogHandler(catalogCmd, catalogQuery).RegisterRoutes(api, producer...)
	carthttp.NewCartHandler(cartService).RegisterRoutes(api, auth)
	orderhttp.NewOrderHandler(checkoutService).RegisterRoutes(api, auth)
	enthttp.NewDownloadHandler(entService).RegisterRoutes(engine, api, auth)
	followhttp.NewFollowHandler(followService).RegisterRoutes(api, auth)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info(ctx, "HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "HTTP server failed", "error", err)
		}
	}()

	// 7. 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server shutdown failed", "error", err)
	}
}
