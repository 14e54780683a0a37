package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dukerupert/shoplist/internal/config"
	"github.com/dukerupert/shoplist/internal/database"
	"github.com/dukerupert/shoplist/internal/logging"
	"github.com/dukerupert/shoplist/internal/server"
)

const usage = `usage: shoplist [command]

commands:
  serve                 run the HTTP server (default)
  backup run            take an encrypted snapshot now
  backup list           show recent snapshots
  backup verify <id>    download a snapshot and check it decrypts cleanly
  backup cleanup        delete snapshots past the retention period
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if cfg.UsingDevSecret() {
		logger.Warn("SHOPLIST_JWT_SECRET not set, using development secret")
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	args := os.Args[1:]
	if len(args) == 0 || args[0] == "serve" {
		err = serve(db, cfg, logger)
	} else if args[0] == "backup" {
		err = runBackup(db, cfg, logger, args[1:])
	} else {
		fmt.Fprint(os.Stderr, usage)
		err = fmt.Errorf("unknown command %q", args[0])
	}
	if err != nil {
		logger.Error("shoplist exited", "error", err)
		db.Close()
		os.Exit(1)
	}
}

func serve(db *sql.DB, cfg *config.Config, logger *slog.Logger) error {
	srv := server.New(db, cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv.RateLimiter().StartCleanup(ctx, 5*time.Minute)

	backupMgr := srv.BackupManager()
	backupMgr.Start(ctx)
	defer backupMgr.Stop()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("shoplist listening", "addr", httpServer.Addr, "env", cfg.Env, "backups", backupMgr.Status().State)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func runBackup(db *sql.DB, cfg *config.Config, logger *slog.Logger, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("missing backup command")
	}

	mgr := server.New(db, cfg, logger).BackupManager()
	ctx := context.Background()

	switch args[0] {
	case "run":
		b, err := mgr.RunNow(ctx)
		if err != nil {
			return err
		}
		return printJSON(b)
	case "list":
		backups, err := mgr.List(20)
		if err != nil {
			return err
		}
		return printJSON(backups)
	case "verify":
		if len(args) < 2 {
			return errors.New("backup verify needs a backup id")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid backup id %q", args[1])
		}
		if err := mgr.Verify(ctx, id); err != nil {
			return err
		}
		logger.Info("backup verified", "backup_id", id)
		return nil
	case "cleanup":
		n, err := mgr.Cleanup(ctx)
		if err != nil {
			return err
		}
		logger.Info("backup cleanup complete", "removed", n)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown backup command %q", args[0])
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
