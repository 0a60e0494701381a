// Точка входа Lavka Admin — панель администратора интернет-магазина.
// Загружает конфигурацию, подключается к PostgreSQL (аудит), MongoDB
// (реестр администраторов и коллекции магазина) и Redis (кеш статистики),
// применяет миграции, собирает сервисный слой, Admin UI и JSON API,
// запускает topologymetrics и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	apihandlers "github.com/akolesov/lavka-admin/internal/api/handlers"
	apimiddleware "github.com/akolesov/lavka-admin/internal/api/middleware"
	"github.com/akolesov/lavka-admin/internal/assetstore"
	"github.com/akolesov/lavka-admin/internal/cache"
	"github.com/akolesov/lavka-admin/internal/config"
	"github.com/akolesov/lavka-admin/internal/database"
	"github.com/akolesov/lavka-admin/internal/domain/authz"
	"github.com/akolesov/lavka-admin/internal/idp"
	"github.com/akolesov/lavka-admin/internal/registry"
	"github.com/akolesov/lavka-admin/internal/repository"
	"github.com/akolesov/lavka-admin/internal/server"
	"github.com/akolesov/lavka-admin/internal/service"
	"github.com/akolesov/lavka-admin/internal/ui/auth"
	uihandlers "github.com/akolesov/lavka-admin/internal/ui/handlers"
	"github.com/akolesov/lavka-admin/internal/ui/i18n"
	uimiddleware "github.com/akolesov/lavka-admin/internal/ui/middleware"
	"github.com/akolesov/lavka-admin/internal/ui/nav"
	"github.com/akolesov/lavka-admin/internal/ui/templates"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Lavka Admin запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	if os.Getenv("LA_DEPHEALTH_GROUP") == "" {
		logger.Warn("LA_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Применение миграций БД аудита
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode).
	// Проверка здоровья PostgreSQL идёт через существующий пул соединений,
	// что позволяет обнаружить его исчерпание.
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Подключение к MongoDB (реестр)
	mongoClient, err := registry.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к MongoDB", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	reg := registry.New(mongoClient, cfg.MongoDatabase)

	// 6. Redis — кеш статистики Dashboard. Не критичен: без него
	// счётчики собираются на каждый запрос.
	var statsCache *cache.Cache
	statsCache, err = cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	if err != nil {
		logger.Warn("Redis недоступен, кеш статистики отключён",
			slog.String("addr", cfg.RedisAddr),
			slog.String("error", err.Error()),
		)
		statsCache = nil
	} else {
		defer func() { _ = statsCache.Close() }()
	}

	// 7. Клиент Identity Provider (Direct Grant)
	idpClient := idp.NewClient(idp.Config{
		URL:      cfg.IDPURL,
		Realm:    cfg.IDPRealm,
		ClientID: cfg.IDPClientID,
	})
	logger.Info("IdP клиент создан",
		slog.String("url", cfg.IDPURL),
		slog.String("realm", cfg.IDPRealm),
	)

	// 8. Клиент asset store (изображения товаров)
	assetClient := assetstore.NewClient(assetstore.Config{
		BaseURL:      cfg.AssetStoreURL,
		CloudName:    cfg.AssetCloudName,
		APIKey:       cfg.AssetAPIKey,
		APISecret:    cfg.AssetAPISecret,
		UploadPreset: cfg.AssetUploadPreset,
		Folder:       cfg.AssetFolder,
	})

	// 9. Repositories
	authEventRepo := repository.NewAuthEventRepository(pool)

	// 10. Services
	accessSvc := service.NewAccessService(idpClient, reg.Admins, authEventRepo, logger)
	statsSvc := service.NewStatsService(
		reg.Products, reg.Orders, reg.Customers, authEventRepo,
		statsCache, cfg.StatsCacheTTL,
		logger,
	)
	catalogSvc := service.NewCatalogService(reg.Products, reg.Categories, assetClient, statsSvc, logger)
	orderSvc := service.NewOrderService(reg.Orders, statsSvc, logger)
	customerSvc := service.NewCustomerService(reg.Customers, reg.Orders, logger)
	offerSvc := service.NewOfferService(reg.Offers, logger)
	reportSvc := service.NewReportService(reg.Orders, logger)
	storeSvc := service.NewStoreService(reg.Settings, logger)

	// 11. topologymetrics — мониторинг зависимостей (PostgreSQL + IdP)
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"lavka-admin",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseURL(),
		cfg.JWTJWKSURL,
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			defer dephealthSvc.Stop()
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 12. Переводы и шаблоны Admin UI
	bundle := i18n.Init(logger)
	if err := i18n.LoadFromEmbedFS(bundle, logger); err != nil {
		logger.Error("Ошибка загрузки переводов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	tmpl, err := templates.New(bundle)
	if err != nil {
		logger.Error("Ошибка парсинга шаблонов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 13. UI-сессии (AES-256-GCM cookie)
	sessionMgr, err := auth.NewSessionManager(cfg.SessionSecret, cfg.SecureCookie)
	if err != nil {
		logger.Error("Ошибка создания Session Manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.SessionSecret == "" {
		logger.Warn("LA_SESSION_SECRET не задан, UI-сессии не сохраняются между рестартами")
	}

	// 14. Обработчики Admin UI
	authHandler := uihandlers.NewAuthHandler(accessSvc, sessionMgr, tmpl, bundle, logger)
	dashboardHandler := uihandlers.NewDashboardHandler(statsSvc, tmpl, bundle, logger)
	productsHandler := uihandlers.NewProductsHandler(catalogSvc, tmpl, bundle, logger)
	categoriesHandler := uihandlers.NewCategoriesHandler(catalogSvc, tmpl, bundle, logger)
	ordersHandler := uihandlers.NewOrdersHandler(orderSvc, tmpl, bundle, logger)
	customersHandler := uihandlers.NewCustomersHandler(customerSvc, tmpl, bundle, logger)
	offersHandler := uihandlers.NewOffersHandler(offerSvc, tmpl, bundle, logger)
	reportsHandler := uihandlers.NewReportsHandler(reportSvc, tmpl, bundle, logger)
	contentHandler := uihandlers.NewContentHandler(storeSvc, tmpl, bundle, logger)
	settingsHandler := uihandlers.NewSettingsHandler(storeSvc, tmpl, bundle, logger)

	// 15. Контроллер навигации: рендерер на каждый раздел
	navController := nav.NewController(logger)
	registration := map[string]nav.Renderer{
		authz.SectionDashboard:  dashboardHandler.Render,
		authz.SectionProducts:   productsHandler.Render,
		authz.SectionCategories: categoriesHandler.Render,
		authz.SectionOrders:     ordersHandler.Render,
		authz.SectionUsers:      customersHandler.Render,
		authz.SectionOffers:     offersHandler.Render,
		authz.SectionReports:    reportsHandler.Render,
		authz.SectionContent:    contentHandler.Render,
		authz.SectionSettings:   settingsHandler.Render,
	}
	for section, renderer := range registration {
		if err := navController.Register(section, renderer); err != nil {
			logger.Error("Ошибка регистрации раздела",
				slog.String("section", section),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// 16. UI auth middleware — сессия, авто-refresh, перепроверка прав
	uiAuth := uimiddleware.NewUIAuth(sessionMgr, idpClient, accessSvc, logger)

	// 17. JWT middleware для JSON API
	jwtAuth, err := apimiddleware.NewJWTAuth(
		cfg.JWTJWKSURL,
		cfg.JWTIssuer,
		accessSvc,
		cfg.JWKSRefreshInterval,
		0,
		logger,
	)
	if err != nil {
		logger.Error("Ошибка создания JWT middleware", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("JWT middleware инициализирован",
		slog.String("jwks_url", cfg.JWTJWKSURL),
		slog.String("issuer", cfg.JWTIssuer),
	)

	// 18. Health endpoints
	var redisChecker apihandlers.ReadinessChecker
	if statsCache != nil {
		redisChecker = cache.NewReadinessChecker(statsCache)
	}
	healthHandler := apihandlers.NewHealthHandler(
		database.NewReadinessChecker(pool),
		registry.NewReadinessChecker(mongoClient),
		redisChecker,
	)

	// 19. JSON API
	apiHandler := apihandlers.NewAPIHandler(catalogSvc, orderSvc, offerSvc, logger)

	// 20. HTTP-сервер
	srv := server.New(cfg, &server.Deps{
		UIAuth:     uiAuth,
		Nav:        navController,
		Auth:       authHandler,
		Products:   productsHandler,
		Categories: categoriesHandler,
		Orders:     ordersHandler,
		Customers:  customersHandler,
		Offers:     offersHandler,
		Content:    contentHandler,
		Settings:   settingsHandler,
		JWTAuth:    jwtAuth,
		API:        apiHandler,
		Health:     healthHandler,
	}, logger)

	if err := srv.Run(); err != nil {
		logger.Error("Сервер завершился с ошибкой", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Lavka Admin остановлен")
}
