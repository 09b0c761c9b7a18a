package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cherrycherry3/crt-backend/internal/audit"
	"github.com/cherrycherry3/crt-backend/internal/auth"
	"github.com/cherrycherry3/crt-backend/internal/config"
	"github.com/cherrycherry3/crt-backend/internal/http"
	"github.com/cherrycherry3/crt-backend/internal/http/middleware"
	"github.com/cherrycherry3/crt-backend/internal/infra/cache"
	"github.com/cherrycherry3/crt-backend/internal/rbac"
	"github.com/cherrycherry3/crt-backend/internal/rbac/presets"
	"github.com/cherrycherry3/crt-backend/internal/repository/postgres"
	"github.com/cherrycherry3/crt-backend/internal/storage/s3"
	"github.com/cherrycherry3/crt-backend/pkg/logger"
	"github.com/cherrycherry3/crt-backend/pkg/password"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	envFilePath      = ".env"
	serviceName      = "crt-backend"
	serverAddrPrefix = ":"
	signalBufferSize = 1

	// urlCacheMargin keeps a cached presigned URL from being handed out right
	// before its signature expires.
	urlCacheMargin    = time.Minute
	urlPruneInterval  = 5 * time.Minute
	limiterPruneEvery = 5 * time.Minute
	redisStartTimeout = 5 * time.Second
)

var shutdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}

func main() {
	envErr := godotenv.Load(envFilePath)

	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Options{Service: serviceName})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Options{
		Level:   cfg.App.LogLevel,
		Format:  cfg.App.LogFormat,
		Service: serviceName,
	})
	if envErr != nil {
		log.Warn().Msg(".env file not found, using environment variables")
	}
	log.Info().Str("env", cfg.App.Env).Msg("configuration loaded")

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	log.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.Database).Msg("database connection established")

	userRepo := postgres.NewUserRepository(db)
	collegeRepo := postgres.NewCollegeRepository(db)
	courseRepo := postgres.NewCourseRepository(db)
	courseFileRepo := postgres.NewCourseFileRepository(db)
	studentRepo := postgres.NewStudentRepository(db)
	enrollmentRepo := postgres.NewEnrollmentRepository(db)
	dashboardRepo := postgres.NewDashboardRepository(db)
	auditRepo := postgres.NewAuditLogRepository(db)

	checker := rbac.MustNew(presets.Platform())
	tokens := auth.NewTokenCodec(cfg.JWT.Secret, cfg.JWT.TTL())
	verifier := auth.NewCredentialVerifier(userRepo, tokens, checker)

	deps := &http.ServerDependencies{
		Config:      cfg,
		Log:         log,
		Tokens:      tokens,
		Checker:     checker,
		Verifier:    verifier,
		Users:       userRepo,
		Colleges:    collegeRepo,
		Courses:     courseRepo,
		CourseFiles: courseFileRepo,
		Students:    studentRepo,
		Enrollments: enrollmentRepo,
		Dashboards:  dashboardRepo,
		Hasher:      password.NewHasher(password.DefaultCost),
		Auditor:     audit.NewLogger(auditRepo, log),
		Metrics:     middleware.NewMetrics(),
	}

	// Storage stays a nil interface when no bucket is configured.
	if cfg.AWS.StorageEnabled() {
		s3Client, err := s3.NewClient(&cfg.AWS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create S3 client")
		}
		deps.Storage = s3Client
		log.Info().Str("bucket", cfg.AWS.Bucket).Str("region", cfg.AWS.Region).Msg("S3 client initialized")
	} else {
		log.Warn().Msg("AWS_S3_BUCKET not set, course file uploads are disabled")
	}

	urlCache := cache.NewURLCache(urlCacheMargin)
	deps.URLCache = urlCache

	if cfg.Redis.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), redisStartTimeout)
		client, err := cache.NewRedis(ctx, &cfg.Redis)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()
		deps.DashboardCache = cache.NewDashboardCache(client, cfg.Redis.DashboardCacheTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("dashboard cache enabled")
	}

	server := http.NewServer(deps)

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go pruneURLCache(janitorCtx, urlCache, log)
	go pruneRateLimiters(janitorCtx, server, log)

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := server.Start(serverAddrPrefix + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, signalBufferSize)
	signal.Notify(quit, shutdownSignals...)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server exited gracefully")
}

func pruneURLCache(ctx context.Context, urls *cache.URLCache, log zerolog.Logger) {
	ticker := time.NewTicker(urlPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := urls.Prune(); removed > 0 {
				log.Debug().Int("removed", removed).Int("remaining", urls.Len()).Msg("pruned presigned URL cache")
			}
		}
	}
}

func pruneRateLimiters(ctx context.Context, server *http.Server, log zerolog.Logger) {
	ticker := time.NewTicker(limiterPruneEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := server.PruneRateLimiters(); removed > 0 {
				log.Debug().Int("removed", removed).Msg("pruned idle rate limiters")
			}
		}
	}
}
