package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/strafeup/permissions/api/audit"
	"github.com/strafeup/permissions/api/config"
	"github.com/strafeup/permissions/api/controller"
	"github.com/strafeup/permissions/api/dao"
	"github.com/strafeup/permissions/api/db"
	logger "github.com/strafeup/permissions/api/logging"
	"github.com/strafeup/permissions/api/model"
	"github.com/strafeup/permissions/api/observability"
	pdp_dao "github.com/strafeup/permissions/api/pdp/dao"
	"github.com/strafeup/permissions/api/pdp/engine"
	"github.com/strafeup/permissions/api/router"
	"github.com/strafeup/permissions/api/service"
	"github.com/strafeup/permissions/api/structure"
	"github.com/strafeup/permissions/api/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	cfg := config.GetConfig()

	// Initialize logger
	logger.InitLogger(cfg.Log.Dir)
	defer logger.Sync()

	// Initialize Neo4j
	if err := db.InitNeo4j(); err != nil {
		logger.Fatal("Failed to initialize Neo4j", zap.Error(err))
	}
	defer db.CloseNeo4j()

	// Initialize Redis
	if err := db.InitRedis(); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	// Initialize services and utilities
	validationUtil := util.NewValidationUtil(cfg.Permissions.Actions)
	cacheService := util.NewCacheService(cfg.Structure.CacheTTL)
	lockService := util.NewLockService(cfg.Redis.LockTTL)
	notificationService := util.NewNotificationService()

	auditRepository, err := audit.NewElasticsearchRepository(cfg.Elasticsearch.URL, cfg.Audit.Index)
	if err != nil {
		logger.Fatal("Failed to initialize audit repository", zap.Error(err))
	}
	auditService := audit.NewService(auditRepository)
	audit.Subscribe(eventBus, auditService)

	// Initialize DAOs
	userDAO := dao.NewUserDAO(db.Neo4jDriver)
	groupDAO := dao.NewGroupDAO(db.Neo4jDriver)
	permissionStore := initPermissionStore(cfg.Storage.Permissions.Backend)
	defer db.ClosePostgres()

	structureProvider := structure.NewCachedProvider(
		structure.NewHTTPProvider(cfg.Structure.URL, cfg.Structure.Timeout, metrics),
		cacheService,
		metrics,
	)

	evaluator := engine.NewEvaluator(
		pdp_dao.NewSnapshotDAO(structureProvider, permissionStore),
		groupDAO,
		engine.EvaluatorConfig{
			AdminGroupName: cfg.Admin.GroupName,
			Actions:        validationUtil.Vocabulary(),
		},
		metrics,
	)

	// Ensure the admin user and group exist
	_, err = service.EnsureAdmin(ctx, userDAO, groupDAO, model.User{
		Email:     cfg.Admin.Email,
		FirstName: cfg.Admin.FirstName,
		LastName:  cfg.Admin.LastName,
	}, cfg.Admin.GroupName)
	if err != nil {
		logger.Fatal("Failed to bootstrap admin group", zap.Error(err))
	}

	// Initialize services
	services, err := service.InitializeServices(
		permissionStore,
		userDAO,
		groupDAO,
		structureProvider,
		evaluator,
		lockService,
		auditService,
		validationUtil,
		notificationService,
		eventBus,
		metrics,
	)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}

	// Initialize controllers
	controllers := controller.InitializeControllers(services)

	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("auth.jwtSecret must be set")
	}

	// Set up Gin
	gin.SetMode(gin.ReleaseMode)
	r := router.SetupRouter(controllers, metrics, []byte(cfg.Auth.JWTSecret), cfg.RateLimit.Requests, cfg.RateLimit.Duration)

	// Set up the server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

// initPermissionStore selects where permission records live.
func initPermissionStore(backend string) dao.PermissionStore {
	switch backend {
	case config.BackendPostgres:
		if err := db.InitPostgres(); err != nil {
			logger.Fatal("Failed to initialize Postgres", zap.Error(err))
		}
		store, err := dao.NewSQLPermissionDAO(db.PostgresDB)
		if err != nil {
			logger.Fatal("Failed to initialize permission table", zap.Error(err))
		}
		logger.Info("Permission records stored in Postgres")
		return store
	case config.BackendNeo4j, "":
		logger.Info("Permission records stored in Neo4j")
		return dao.NewPermissionDAO(db.Neo4jDriver)
	default:
		logger.Fatal("Unknown permission storage backend", zap.String("backend", backend))
		return nil
	}
}
