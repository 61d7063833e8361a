package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vaughan-dsouza/staffdir/internal/config"
	"github.com/vaughan-dsouza/staffdir/internal/db"
	"github.com/vaughan-dsouza/staffdir/internal/handlers"
	"github.com/vaughan-dsouza/staffdir/internal/services"
	"github.com/vaughan-dsouza/staffdir/internal/store"
	"github.com/vaughan-dsouza/staffdir/internal/upload"
	"github.com/vaughan-dsouza/staffdir/internal/utils"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, employees, closeStore, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	uploader, uploadDir, err := openUploader(ctx, cfg)
	if err != nil {
		return err
	}

	tokens, err := utils.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}
	if cfg.TokenTTL == 0 {
		log.Warn("TOKEN_TTL not set; issued tokens never expire")
	}

	authSvc := services.NewAuthService(users, tokens, 0)
	employeeSvc := services.NewEmployeeService(employees, uploader)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := authSvc.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			log.Info("admin account created", "email", cfg.AdminEmail)
		}
	}

	h := handlers.NewHandler(authSvc, employeeSvc, log, cfg.MaxUploadMB<<20)
	router := handlers.NewRouter(h, handlers.RouterConfig{
		Auth:           authSvc,
		Log:            log,
		CORSOrigins:    cfg.CORSOrigins,
		LoginRateLimit: cfg.LoginRateLimit,
		TrustProxy:     cfg.TrustProxy,
		UploadDir:      uploadDir,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("server exited")
	return nil
}

// openStores uses PostgreSQL when DATABASE_URL is set and in-memory stores
// otherwise.
func openStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (store.UserStore, store.EmployeeStore, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set; using in-memory stores")
		return store.NewMemoryUsers(), store.NewMemoryEmployees(), func() {}, nil
	}

	conn, err := db.Connect(cfg.DatabaseURL, db.Pool{
		MaxOpen:     cfg.DBMaxOpen,
		MaxIdle:     cfg.DBMaxIdle,
		MaxLifetime: cfg.DBLifetime,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	if err := db.Migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, nil, nil, err
	}

	return store.NewPostgresUsers(conn), store.NewPostgresEmployees(conn), func() { conn.Close() }, nil
}

// openUploader returns the directory to serve statically for the disk
// backend, or "" for S3.
func openUploader(ctx context.Context, cfg *config.Config) (upload.Uploader, string, error) {
	if cfg.UploadBackend == config.UploadS3 {
		u, err := upload.NewS3(ctx, upload.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		return u, "", err
	}

	d, err := upload.NewDisk(cfg.UploadDir, "/uploads")
	if err != nil {
		return nil, "", err
	}
	return d, d.Dir(), nil
}
