package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"pulsechat/auth"
	"pulsechat/cleanup"
	"pulsechat/common"
	"pulsechat/config"
	"pulsechat/database"
	"pulsechat/handlers"
	"pulsechat/logging"
	"pulsechat/media"
	"pulsechat/middleware"
	"pulsechat/models"
	"pulsechat/readmodel"
	"pulsechat/relay"
)

func main() {
	log := logging.NewDefault()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log); err != nil {
		log.Error(ctx, "server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log logging.Logger) error {
	if err := models.ValidateRoleTables(); err != nil {
		return err
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	var host media.Host = media.Disabled{}
	if cfg.MediaEnabled() {
		host, err = media.NewS3Host(ctx, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3Endpoint)
		if err != nil {
			return err
		}
		log.Info(ctx, "media hosting enabled", "bucket", cfg.S3Bucket)
	} else {
		log.Warn(ctx, "media hosting disabled, inline payloads will be stored as-is")
	}

	if err := ensureDefaultAdmins(ctx, db, cfg, log); err != nil {
		return err
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenValidity)
	read := readmodel.NewService(db)
	hub := relay.NewHub()
	rly := relay.New(hub, db, read, host, log, cfg.PersistTimeout)
	cln := cleanup.NewService(db, host, log)
	guard := middleware.NewGuard(tokens, db)
	h := handlers.New(db, rly, read, host, tokens, cln, log, cfg)

	go cln.RunSweeper(ctx, cfg.SweepInterval, cfg.SweepGrace)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: h.Router(guard),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server starting", "addr", cfg.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// ensureDefaultAdmins seeds the super admin account, and a regular admin
// beside it, on first start.
func ensureDefaultAdmins(ctx context.Context, db *database.DB, cfg *config.Config, log logging.Logger) error {
	if _, err := db.GetUserByRole(ctx, models.RoleSuperAdmin); err == nil {
		return nil
	} else if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.SuperAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := db.CreateUser(ctx, "super_admin", cfg.SuperAdminEmail, string(hashed), models.RoleSuperAdmin); err != nil {
		return err
	}
	log.Info(ctx, "super admin seeded", "email", cfg.SuperAdminEmail)

	if _, err := db.GetUserByRole(ctx, models.RoleAdmin); errors.Is(err, common.ErrNotFound) {
		if _, err := db.CreateUser(ctx, "admin", "admin@chatapp.com", string(hashed), models.RoleAdmin); err != nil {
			return err
		}
		log.Info(ctx, "default admin seeded", "email", "admin@chatapp.com")
	}
	return nil
}
