package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"luxe-estates.backend/internal/config"
	"luxe-estates.backend/internal/infrastructure/cache"
	"luxe-estates.backend/internal/infrastructure/clients"
	pgsource "luxe-estates.backend/internal/infrastructure/datasources/postgres"
	"luxe-estates.backend/internal/infrastructure/jobs"
	"luxe-estates.backend/internal/infrastructure/repositories"
	"luxe-estates.backend/internal/interfaces/http/handlers"
	"luxe-estates.backend/internal/interfaces/http/middleware"
	"luxe-estates.backend/internal/usecases"
	"luxe-estates.backend/pkg/jwt"
	"luxe-estates.backend/pkg/logger"
	"luxe-estates.backend/pkg/mailer"
	"luxe-estates.backend/pkg/metrics"
	"luxe-estates.backend/pkg/oauth"
	"luxe-estates.backend/pkg/payfast"
	"luxe-estates.backend/pkg/redis"
	"luxe-estates.backend/pkg/storage"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runMigrations = func(ctx context.Context, cfg config.DatabaseConfig) ([]int, error) {
		db, err := pgsource.NewConnection(cfg)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return pgsource.Migrate(ctx, db, pgsource.Migrations)
	}
	newSessionStore = redis.NewSessionStore
	newMailer       = mailer.New
	openMediaStore  = func(ctx context.Context, cfg storage.Config) (usecases.MediaStore, error) {
		store, err := storage.NewMediaStore(cfg)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}
	runServer = func(ctx context.Context, r *gin.Engine, port string) error {
		srv := &http.Server{Addr: ":" + port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	}
	getStdDB = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

// redisPublisher sends auth events over the shared redis client
type redisPublisher struct{}

func (redisPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	return redis.Publish(ctx, channel, message)
}

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	defer logger.Sync()
	bootCtx := context.Background()
	if cfg.Server.LogLevel != "" {
		if level, err := zapcore.ParseLevel(cfg.Server.LogLevel); err == nil {
			logger.SetLevel(level)
		} else {
			logger.Warn(bootCtx, "Ignoring invalid LOG_LEVEL", zap.String("value", cfg.Server.LogLevel))
		}
	}
	logger.Info(bootCtx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(bootCtx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(bootCtx, "Redis initialized")

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		logger.Warn(bootCtx, "Database not available, endpoints will return errors", zap.Error(err))
	} else {
		logger.Info(bootCtx, "Connected to PostgreSQL via GORM")
	}

	if applied, err := runMigrations(bootCtx, cfg.Database); err != nil {
		logger.Warn(bootCtx, "Schema migrations not applied", zap.Error(err))
	} else if len(applied) > 0 {
		logger.Info(bootCtx, "Schema migrations applied", zap.Ints("versions", applied))
	}

	m := metrics.New()

	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Initialize repositories
	profileRepo := repositories.NewProfileRepository(db)
	propertyRepo := repositories.NewPropertyRepository(db)
	uow := repositories.NewUnitOfWork(db)

	sessionStore, err := newSessionStore(cfg.Security.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	sender, err := newMailer(mailer.Config{
		Provider:        cfg.Mail.Provider,
		From:            mailer.Address{Name: cfg.Mail.FromName, Email: cfg.Mail.From},
		SMTPHost:        cfg.Mail.SMTPHost,
		SMTPPort:        cfg.Mail.SMTPPort,
		SMTPUser:        cfg.Mail.SMTPUser,
		SMTPPassword:    cfg.Mail.SMTPPassword,
		SendGridAPIKey:  cfg.Mail.SendGridAPIKey,
		SendGridSandbox: cfg.Mail.SendGridSandbox,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %w", err)
	}

	media, err := openMediaStore(bootCtx, storage.Config{
		Endpoint:      cfg.Storage.Endpoint,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		Bucket:        cfg.Storage.Bucket,
		UseSSL:        cfg.Storage.UseSSL,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		logger.Warn(bootCtx, "Image storage unavailable, uploads disabled", zap.Error(err))
		media = nil
	}

	authDeps := usecases.AuthDeps{
		Sessions:    sessionStore,
		Events:      redisPublisher{},
		Metrics:     m,
		AdminEmails: cfg.Security.AdminEmails,
	}
	if verifier := oauth.NewVerifier(oauth.Config{
		JWKSURL:  cfg.OAuth.JWKSURL,
		Issuer:   cfg.OAuth.Issuer,
		Audience: cfg.OAuth.Audience,
	}); verifier.Enabled() {
		authDeps.Verifier = verifier
	}

	// Exchange rates
	rateOpts := []cache.Option{cache.WithMetrics(m), cache.WithFailureBackoff(cfg.Currency.RateFailureBackoff)}
	if client := redis.GetClient(); client != nil {
		rateOpts = append(rateOpts, cache.WithMirror(client))
	}
	rateCache := cache.NewRateCache(
		clients.NewExchangeRateClient(cfg.Currency.ExchangeRateURL, cfg.Currency.LookupTimeout),
		cfg.Currency.RateCacheTTL,
		rateOpts...,
	)

	// Initialize usecases
	authUsecase := usecases.NewAuthUsecase(profileRepo, uow, jwtService, authDeps)
	profileUsecase := usecases.NewProfileUsecase(profileRepo)
	catalogUsecase := usecases.NewCatalogUsecase(propertyRepo, rateCache)
	currencyUsecase := usecases.NewCurrencyUsecase(
		clients.NewIPLookupClient(cfg.Currency.IPLookupURL, cfg.Currency.LookupTimeout),
		clients.NewReverseGeocodeClient(cfg.Currency.ReverseGeocodeURL, cfg.Currency.LookupTimeout),
		rateCache,
		cfg.Currency.LookupTimeout,
	)
	adminUsecase := usecases.NewAdminUsecase(propertyRepo, profileRepo, media)
	contactUsecase := usecases.NewContactUsecase(sender, mailer.Address{Email: cfg.Mail.ContactRecipient}, cfg.Mail.FromName, m)
	paymentLinkUsecase := usecases.NewPaymentLinkUsecase(payfast.Merchant{
		ID:         cfg.PayFast.MerchantID,
		Key:        cfg.PayFast.MerchantKey,
		Passphrase: cfg.PayFast.Passphrase,
		Sandbox:    cfg.PayFast.Sandbox,
		ReturnURL:  cfg.PayFast.ReturnURL,
		CancelURL:  cfg.PayFast.CancelURL,
		NotifyURL:  cfg.PayFast.NotifyURL,
	}, cfg.PayFast.MinAmount, m)

	if n, err := authUsecase.SyncAdminAllowList(bootCtx); err != nil {
		logger.Warn(bootCtx, "Admin allow-list not applied", zap.Error(err))
	} else if n > 0 {
		logger.Info(bootCtx, "Admin allow-list applied", zap.Int64("promoted", n))
	}

	// Start background jobs; SIGINT or SIGTERM stops them and drains the server
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rateJob := jobs.NewRateRefreshJob(rateCache, cfg.Currency.RateRefreshInterval)
	go rateJob.Start(ctx)

	if redis.GetClient() != nil {
		audit := jobs.NewSessionAuditJob(redis.Subscribe)
		go func() {
			if err := audit.Start(ctx); err != nil {
				logger.Warn(ctx, "Session audit listener stopped", zap.Error(err))
			}
		}()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware(m))

	applyCORSMiddleware(r, cfg.Server.CORSAllowedOrigins...)
	registerHealthRoute(r, cfg.Server.Version)

	deps := routeDeps{
		authHandler:     handlers.NewAuthHandler(authUsecase),
		profileHandler:  handlers.NewProfileHandler(profileUsecase),
		propertyHandler: handlers.NewPropertyHandler(catalogUsecase),
		currencyHandler: handlers.NewCurrencyHandler(currencyUsecase, cfg.IsProduction()),
		adminHandler:    handlers.NewAdminHandler(adminUsecase),
		contactHandler:  handlers.NewContactHandler(contactUsecase),
		payFastHandler:  handlers.NewPayFastHandler(paymentLinkUsecase),
		sitemapHandler:  handlers.NewSitemapHandler(cfg.Server.PublicSiteURL),

		authMiddleware:         middleware.AuthMiddleware(jwtService, sessionStore),
		optionalAuthMiddleware: middleware.OptionalAuthMiddleware(jwtService, sessionStore),
		activeAccount:          middleware.RequireActiveAccount(authUsecase),
		optionalActiveAccount:  middleware.OptionalActiveAccount(authUsecase),
		contactRateLimit: middleware.RateLimitMiddleware(
			middleware.NewIPRateLimiter(cfg.RateLimit.ContactPerMinute, cfg.RateLimit.ContactBurst),
		),
		metricsHandler: m.Handler(),
	}
	registerPublicRoutes(r, deps)
	registerAPIV1Routes(r, deps)

	for _, route := range r.Routes() {
		logger.Debug(bootCtx, "Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	go func() {
		<-ctx.Done()
		logger.Info(context.Background(), "Shutting down server")
		rateJob.Stop()
	}()

	logger.Info(bootCtx, "Luxe Estates backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("api", "http://localhost:"+cfg.Server.Port+"/api/v1"),
	)

	if err := runServer(ctx, r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
