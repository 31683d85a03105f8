package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "net/http/pprof"

	"github.com/carerx/drug-advisor-api/catalog"
	"github.com/carerx/drug-advisor-api/config"
	"github.com/carerx/drug-advisor-api/engine"
	"github.com/carerx/drug-advisor-api/handlers"
	"github.com/carerx/drug-advisor-api/ledger"
	"github.com/carerx/drug-advisor-api/logging"
	"github.com/carerx/drug-advisor-api/models"
	"github.com/carerx/drug-advisor-api/scheduler"
	"github.com/carerx/drug-advisor-api/server"
)

func init() {
	// Get the working directory and read the env variables
	if err := godotenv.Load(); err != nil {
		// If failed, try loading from executable directory
		ex, err := os.Executable()
		if err != nil {
			logging.Error("Failed to get executable path", "error", err)
			os.Exit(1)
		}

		if err := os.Chdir(filepath.Dir(ex)); err != nil {
			logging.Error("Failed to change directory", "error", err)
			os.Exit(1)
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logging.InitLogger("logs", cfg.LogRetentionWeeks, cfg.MaxLogFileSize)

	cat, err := catalog.Load(cfg.DataFile)
	if err != nil {
		logging.Error("Failed to load drug catalog", "file", cfg.DataFile, "error", err)
		os.Exit(1)
	}
	logging.Info("Drug catalog loaded", "file", cfg.DataFile, "record_count", cat.Len())

	deps := loadModels(cfg)

	costLedger, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		logging.Error("Failed to open cost impact ledger", "path", cfg.LedgerPath, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := costLedger.Close(); err != nil {
			logging.Warn("Failed to close cost impact ledger", "error", err)
		}
	}()
	deps.Ledger = costLedger

	eng := engine.New(cat, deps)
	if deps.Grouping != nil {
		assigned := eng.AssignClusters()
		logging.Info("Assigned catalog clusters", "assigned_count", assigned)
	}

	sched := scheduler.NewScheduler(cat, costLedger)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	handler := handlers.NewHTTPHandler(eng, costLedger)
	srv := server.NewServer(cfg, handler)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logging.Error("Server failed", "error", err)
		os.Exit(1)
	case sig := <-quit:
		logging.Info("Received shutdown signal", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown failed", "error", err)
		os.Exit(1)
	}
}

// loadModels loads the pre-trained model artifacts. The risk, grouping and
// efficacy models are all optional: a missing artifact degrades the matching
// behavior instead of preventing start-up.
func loadModels(cfg *config.Config) engine.Deps {
	var deps engine.Deps

	if risk, err := models.LoadRiskModel(cfg.RiskModelPath()); err != nil {
		logging.Warn("Interaction risk model unavailable",
			"path", cfg.RiskModelPath(), "error", err)
	} else {
		deps.Risk = risk
	}

	if grouping, err := models.LoadGroupingModel(cfg.GroupingModelPath()); err != nil {
		logging.Warn("Drug grouping model unavailable",
			"path", cfg.GroupingModelPath(), "error", err)
	} else {
		deps.Grouping = grouping
	}

	if efficacy, err := models.LoadEfficacyModel(cfg.EfficacyModelPath()); err != nil {
		logging.Warn("Clinical efficacy model unavailable",
			"path", cfg.EfficacyModelPath(), "error", err)
	} else {
		deps.NMF = efficacy.NMF()
		deps.LDA = efficacy.LDA()
	}

	return deps
}
