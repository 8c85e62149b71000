package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"smartfraud/config"
	"smartfraud/db"
	"smartfraud/features"
	qhttp "smartfraud/http"
	"smartfraud/logging"
	"smartfraud/ml"
	"smartfraud/monitoring"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	// Look for config in root even if run from cmd/
	path := *configPath
	if path == "" {
		path = "config.yaml"
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = filepath.Join("..", "config.yaml")
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.String("path", path), zap.Error(err))
	}

	logger, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		zap.NewExample().Fatal("failed to build logger", zap.Error(err))
	}
	defer logger.Sync()

	states, err := loadStates(cfg, logger)
	if err != nil {
		logger.Fatal("failed to load state table", zap.Error(err))
	}

	store, err := ml.NewStore(ml.StoreConfig{
		Policy:    cfg.ReloadPolicy(),
		CacheSize: cfg.ML.CacheSize,
	}, logger)
	if err != nil {
		logger.Fatal("failed to create model store", zap.Error(err))
	}
	defer store.Close()

	detector := qhttp.NewDetector(
		features.NewTransformer(states),
		qhttp.StoreLoader(store, cfg.ML.ModelPath),
		monitoring.NewMetricsCollector(),
		logger,
	)
	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:         cfg.Http.Port,
		Timeout:      cfg.Http.Timeout,
		MaxBodyBytes: cfg.Http.MaxBodyBytes,
	}, detector, logger)

	logger.Info("fraud detector configured",
		zap.String("model_path", cfg.ML.ModelPath),
		zap.String("reload", string(cfg.ReloadPolicy())))

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
}

// loadStates uses the SQLite reference table when one is configured and
// the built-in tables otherwise.
func loadStates(cfg *config.Config, logger *zap.Logger) (features.StateDirectory, error) {
	if cfg.Database.Path == "" {
		return features.DefaultStates(), nil
	}
	if err := db.InitDB(cfg.Database.Path); err != nil {
		return nil, err
	}
	defer db.Close()

	seeded, err := db.SeedStates(features.DefaultStates())
	if err != nil {
		return nil, err
	}
	if seeded {
		logger.Info("seeded state table", zap.String("path", cfg.Database.Path))
	}
	return db.LoadStates()
}
