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

	"coldcall-crm/internal/analysis"
	"coldcall-crm/internal/audit"
	"coldcall-crm/internal/auth"
	"coldcall-crm/internal/callers"
	"coldcall-crm/internal/config"
	"coldcall-crm/internal/httpapi"
	"coldcall-crm/internal/leads"
	"coldcall-crm/internal/session"
	"coldcall-crm/internal/stats"
	"coldcall-crm/internal/transcripts"
	"coldcall-crm/pkg/logger"
	"coldcall-crm/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
)

// sweepLeaseKey guards the orphan-session sweep so that exactly one API
// replica runs it per tick.
const sweepLeaseKey = "coldcall:session-sweep:lease"

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Services
	callersSvc := callers.NewService(callers.NewPostgresStore(db))
	sessionSvc := session.NewService(session.NewPostgresStore(db), cfg.Session)
	leadsSvc := leads.NewService(leads.NewPostgresStore(db), callersSvc)
	statsSvc := stats.NewService(stats.NewPostgresRepo(db), cfg.Session)
	transcriptsSvc := transcripts.NewService(transcripts.NewClient(cfg.Transcribe), leadsSvc, cfg.Transcribe)
	analysisSvc := analysis.NewService(analysis.NewClient(cfg.Analyze), leadsSvc)
	auditSvc := audit.NewService(audit.NewPostgresRepo(db))

	h := httpapi.Handlers{
		Auth:        authManager,
		Callers:     callersSvc,
		Sessions:    sessionSvc,
		Leads:       leadsSvc,
		Stats:       statsSvc,
		Transcripts: transcriptsSvc,
		Analysis:    analysisSvc,
		Audit:       auditSvc,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, auth.RequireAccessToken(authManager))

	go runSweepLoop(rootCtx, log, rdb, sessionSvc, auditSvc, cfg.Session.SweepInterval)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}

// runSweepLoop closes orphaned work sessions on a fixed interval. A Redis
// lease ensures one replica sweeps per tick; the lease TTL matches the
// interval so a crashed holder is replaced on the next tick.
func runSweepLoop(ctx context.Context, log *slog.Logger, rdb *redis.Client, sessions *session.Service, auditSvc *audit.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		token, ok, err := utils.AcquireLease(ctx, rdb, sweepLeaseKey, interval)
		if err != nil {
			log.Error("sweep lease acquire failed", "err", err)
			continue
		}
		if !ok {
			continue
		}

		closed, err := sessions.ReapOrphans(ctx)
		if err != nil {
			log.Error("orphan sweep failed", "err", err)
		} else if closed > 0 {
			log.Info("orphan sweep closed sessions", "count", closed)
			if err := auditSvc.LogOrphanSweep(ctx, closed); err != nil {
				log.Error("orphan sweep audit failed", "err", err)
			}
		}

		if err := utils.ReleaseLease(ctx, rdb, sweepLeaseKey, token); err != nil {
			log.Error("sweep lease release failed", "err", err)
		}
	}
}
