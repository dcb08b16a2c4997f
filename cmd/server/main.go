package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bktrade/site/internal/config"
	"github.com/bktrade/site/internal/handler"
	"github.com/bktrade/site/internal/logging"
	"github.com/bktrade/site/internal/notify"
	"github.com/bktrade/site/internal/repository"
	"github.com/bktrade/site/internal/service"
	"github.com/bktrade/site/internal/throttle"
	"github.com/bktrade/site/pkg/auth"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/pflag"
)

const (
	notifyQueueSize     = 100
	rateLimitSweep      = 5 * time.Minute
	loginGuardIdleTTL   = 15 * time.Minute
	shutdownTimeout     = 10 * time.Second
	redisConnectTimeout = 5 * time.Second
)

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	addr := pflag.String("addr", "", "listen address, overrides PORT (e.g. 127.0.0.1:3000)")
	pflag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		slog.Warn("failed to load env file", "path", *envFile, "error", err)
	}
	cfg := config.Load()
	if *addr != "" {
		cfg.Addr = *addr
	}
	logging.Setup(cfg.LogLevel, "app", "bktrade-site", "version", cfg.Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// リード保存先（DATABASE_URL があれば Postgres、なければ SQLite）
	store, err := repository.OpenLeadRepository(ctx, cfg.DatabaseURL, cfg.DBFile)
	if err != nil {
		logging.Fatal("failed to open lead store", "error", err)
	}

	clientIP := func(r *http.Request) string { return auth.ClientIP(r, cfg.TrustedProxies) }

	submitThrottle, closeThrottle := newSubmitThrottle(ctx, cfg)

	var mailer notify.Mailer = notify.LogMailer{}
	if cfg.SMTPHost != "" {
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			Username:    cfg.SMTPUser,
			Password:    cfg.SMTPPass,
			ImplicitTLS: cfg.SMTPSecure,
		})
	} else {
		slog.Warn("SMTP_HOST not set, lead notifications are only logged")
	}
	dispatcher := notify.NewDispatcher(mailer, cfg.MailFrom, cfg.MailTo, notifyQueueSize)

	creds := auth.NewCredentials(cfg.AdminUsername, cfg.AdminPassword, cfg.AdminPasswordHash)
	if !creds.Configured() {
		slog.Warn("admin credentials not configured, admin login is disabled")
	}
	sessions := auth.NewRegistry(cfg.SessionTTL)
	guardTTL := loginGuardIdleTTL
	if cfg.LoginLockout > guardTTL {
		guardTTL = cfg.LoginLockout
	}
	guard := auth.NewLoginGuard(cfg.LoginMaxFailures, cfg.LoginLockout, guardTTL)
	rateLimiter := handler.NewRateLimiter(cfg.RateLimitPerMinute, clientIP)

	// バックグラウンドの期限切れエントリ掃除
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go sessions.Run(sweepCtx, cfg.SessionSweepInterval)
	go guard.Run(sweepCtx, cfg.SessionSweepInterval)
	go rateLimiter.Run(sweepCtx, rateLimitSweep)
	if mem, ok := submitThrottle.(*throttle.Memory); ok {
		go mem.Run(sweepCtx, cfg.SessionSweepInterval)
	}

	leadService := service.NewLeadService(store, submitThrottle, dispatcher, cfg.LeadsListMax)
	adminAuthService := service.NewAdminAuthService(creds, guard, sessions)

	router := handler.NewRouter(handler.Router{
		Handler:     handler.New(store, cfg.Version, cfg.SiteURL),
		Leads:       handler.NewLeadHandler(leadService, clientIP),
		Admin:       handler.NewAdminHandler(adminAuthService, clientIP, cfg.Production),
		Sessions:    adminAuthService,
		RateLimiter: rateLimiter,
		Site:        handler.NewSite(cfg.PublicDir),
		ClientIP:    clientIP,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr, "public_dir", cfg.PublicDir)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	stopSweep()
	if err := dispatcher.Close(shutdownCtx); err != nil {
		slog.Warn("notification queue not drained", "error", err)
	}
	closeThrottle()
	if err := store.Close(); err != nil {
		slog.Error("failed to close lead store", "error", err)
	}
}

// newSubmitThrottle returns the Redis throttle when REDIS_URL is set and
// reachable, and the in-process one otherwise.
func newSubmitThrottle(ctx context.Context, cfg config.Config) (throttle.Throttle, func()) {
	if cfg.RedisURL == "" {
		return throttle.NewMemory(cfg.SubmitCooldown), func() {}
	}
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logging.Fatal("invalid REDIS_URL", "error", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		slog.Warn("redis unavailable, using in-process submit throttle", "error", err)
		_ = client.Close()
		return throttle.NewMemory(cfg.SubmitCooldown), func() {}
	}
	return throttle.NewRedis(client, cfg.SubmitCooldown), func() {
		if err := client.Close(); err != nil {
			slog.Warn("failed to close redis client", "error", err)
		}
	}
}
