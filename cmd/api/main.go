package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	goredis "github.com/redis/go-redis/v9"

	"job-board-backend/config"
	_ "job-board-backend/docs" // Important for Swagger
	v1 "job-board-backend/internal/delivery/http/v1"
	"job-board-backend/internal/domain"
	"job-board-backend/internal/repository/postgres"
	"job-board-backend/internal/repository/redisstore"
	"job-board-backend/internal/usecase"
	"job-board-backend/migrations"
	"job-board-backend/pkg/audit"
	"job-board-backend/pkg/auth"
	"job-board-backend/pkg/database"
	"job-board-backend/pkg/logger"
	"job-board-backend/pkg/redis"
	"job-board-backend/pkg/storage"
	"job-board-backend/pkg/validation"
)

// @title           Job Board API
// @version         1.0
// @description     Job postings with per-field application requirements, applicant submissions and an admin review area.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting job board backend", "port", cfg.Port, "env", cfg.Environment)

	auditLog := audit.Nop()
	if cfg.AuditLogEnabled {
		auditLog = audit.New("job-board-backend", cfg.Environment)
	}
	defer auditLog.Sync()

	ctx := context.Background()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := database.Migrate(ctx, dbPool, migrations.FS); err != nil {
		logger.Log.Error("Failed to apply migrations", "error", err)
		os.Exit(1)
	}

	// 4. Setup Redis (optional)
	var redisClient *goredis.Client
	sessions := domain.SessionStore(redisstore.NewMemorySessionStore())
	if cfg.UpstashRedisURL != "" {
		redisClient, err = redis.NewClient(ctx, redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword})
		if err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory session store", "error", err)
		} else {
			defer redisClient.Close()
			sessions = redisstore.NewSessionStore(redisClient)
		}
	}

	// 5. Setup Repositories
	jobRepo := postgres.NewJobRepository(dbPool)
	applicantRepo := postgres.NewApplicantRepository(dbPool)

	// 6. Setup Photo Storage and Auth Provider
	photos, err := newPhotoStorage(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to configure photo storage", "error", err)
		os.Exit(1)
	}

	provider, err := newAuthProvider(cfg)
	if err != nil {
		logger.Log.Error("Failed to configure auth provider", "error", err)
		os.Exit(1)
	}

	// 7. Setup UseCases
	// gin's binding engine and the submission validator share one instance.
	validate, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		validate = validator.New()
	}
	validation.RegisterValidators(validate)

	photoOpts := usecase.DefaultPhotoOptions
	photoOpts.MaxBytes = cfg.PhotoMaxBytes
	photoOpts.MaxDimension = cfg.PhotoMaxDimension

	authUC := usecase.NewAuthUsecase(provider, sessions, auditLog)
	jobUC := usecase.NewJobUsecase(jobRepo, applicantRepo, auditLog)
	applicationUC := usecase.NewApplicationUsecase(jobRepo, applicantRepo, photos, validate, auditLog, photoOpts)

	health := map[string]usecase.Pinger{"database": dbPool, "redis": nil}
	if redisClient != nil {
		health["redis"] = usecase.PingFunc(func(ctx context.Context) error {
			return redis.HealthCheck(ctx, redisClient)
		})
	}
	healthUC := usecase.NewHealthUsecase(health)

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:        authUC,
		JobUC:         jobUC,
		ApplicationUC: applicationUC,
		HealthUC:      healthUC,
		Config:        cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

func newPhotoStorage(ctx context.Context, cfg *config.Config) (domain.PhotoStorage, error) {
	switch cfg.StorageProvider {
	case "s3", "wasabi":
		provider := storage.S3ProviderAWS
		if cfg.StorageProvider == "wasabi" {
			provider = storage.S3ProviderWasabi
		}
		bucket := cfg.S3Bucket
		if bucket == "" {
			bucket = cfg.PhotoBucket
		}
		return storage.NewS3Uploader(ctx, storage.S3Config{
			Provider:        provider,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          bucket,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
	case "supabase":
		if cfg.SupabaseUrl == "" || cfg.SupabaseKey == "" {
			return nil, errors.New("SUPABASE_URL and SUPABASE_KEY are required for supabase storage")
		}
		return storage.NewSupabaseUploader(cfg.SupabaseUrl, cfg.SupabaseKey, cfg.PhotoBucket), nil
	}
	return nil, fmt.Errorf("unknown STORAGE_PROVIDER %q", cfg.StorageProvider)
}

func newAuthProvider(cfg *config.Config) (domain.AuthProvider, error) {
	switch cfg.AuthProvider {
	case "local":
		return auth.NewLocalProvider(cfg.AdminEmail, cfg.AdminPasswordHash, cfg.SessionSecret, cfg.SessionTTL)
	case "supabase":
		if cfg.SupabaseUrl == "" {
			return nil, errors.New("SUPABASE_URL is required for the supabase auth provider")
		}
		return auth.NewSupabaseProvider(cfg.SupabaseUrl, cfg.SupabaseKey, cfg.SupabaseJWTSecret), nil
	}
	return nil, fmt.Errorf("unknown AUTH_PROVIDER %q", cfg.AuthProvider)
}
