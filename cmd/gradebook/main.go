package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/noah-isme/sma-gradebook/internal/app"
	"github.com/noah-isme/sma-gradebook/pkg/config"
	"github.com/noah-isme/sma-gradebook/pkg/logger"
	"github.com/noah-isme/sma-gradebook/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	files, err := storage.NewLocalStorage(cfg.Files.DataDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare data directory", "dir", cfg.Files.DataDir, "error", err)
	}
	audit := logger.NewAudit(files.Path(cfg.Files.AuditLogFile), nil)

	session, err := app.NewSession(app.Options{
		In:     os.Stdin,
		Out:    os.Stdout,
		Config: cfg,
		Files:  files,
		Audit:  audit,
		Logger: logr,
	})
	if err != nil {
		logr.Sugar().Fatalw("failed to start session", "error", err)
	}

	if err := session.Run(context.Background()); err != nil {
		logr.Sugar().Debugw("session ended with error", "error", err)
	}
	fmt.Println("\nProgram terminated successfully (Exit Code 0).")
}
