package main

import (
	"database/sql"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"unipole-cloud/internal/backup"
	campaignapp "unipole-cloud/internal/campaigns/application"
	campaignrepo "unipole-cloud/internal/campaigns/infrastructure/postgres"
	campaignhttp "unipole-cloud/internal/campaigns/interfaces/http"
	"unipole-cloud/internal/observability/metrics"
	settingsrepo "unipole-cloud/internal/settings/infrastructure/postgres"
	settingshttp "unipole-cloud/internal/settings/interfaces/http"
	"unipole-cloud/internal/sharelink"
	unitapp "unipole-cloud/internal/units/application"
	unitrepo "unipole-cloud/internal/units/infrastructure/postgres"
	unitinterfaces "unipole-cloud/internal/units/interfaces"
	unithttp "unipole-cloud/internal/units/interfaces/http"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		stderrFatal("config error", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		stderrFatal("logger error", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db open error", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("db ping error", zap.Error(err))
	}

	metrics.Init()

	var signer *sharelink.Signer
	if cfg.ShareSecret != "" {
		signer, err = sharelink.NewSigner([]byte(cfg.ShareSecret), cfg.ShareTTL)
		if err != nil {
			logger.Fatal("share signer error", zap.Error(err))
		}
	} else {
		logger.Warn("SHARE_TOKEN_SECRET not set, campaign sharing disabled")
	}

	unitRepository := unitrepo.NewUnitRepository(db)
	campaignRepository := campaignrepo.NewCampaignRepository(db)
	settingsRepository := settingsrepo.NewSettingsRepository(db)

	unitService, err := unitapp.NewUnitService(unitRepository, logger)
	if err != nil {
		logger.Fatal("unit service error", zap.Error(err))
	}
	importer, err := unitapp.NewImporter(unitRepository, unitinterfaces.UnitWorkbookParser{}, logger)
	if err != nil {
		logger.Fatal("importer error", zap.Error(err))
	}
	campaignService, err := campaignapp.NewCampaignService(campaignRepository, unitRepository, signer, cfg.ShareBaseURL, logger)
	if err != nil {
		logger.Fatal("campaign service error", zap.Error(err))
	}
	backupService, err := backup.NewService(unitRepository, campaignRepository, settingsRepository, logger)
	if err != nil {
		logger.Fatal("backup service error", zap.Error(err))
	}

	unitHandler, err := unithttp.NewHandler(unitService, importer, logger)
	if err != nil {
		logger.Fatal("unit handler error", zap.Error(err))
	}
	campaignHandler, err := campaignhttp.NewHandler(campaignService, logger)
	if err != nil {
		logger.Fatal("campaign handler error", zap.Error(err))
	}
	shareHandler, err := campaignhttp.NewShareHandler(campaignService, logger)
	if err != nil {
		logger.Fatal("share handler error", zap.Error(err))
	}
	settingsHandler, err := settingshttp.NewHandler(settingsRepository, logger)
	if err != nil {
		logger.Fatal("settings handler error", zap.Error(err))
	}
	backupHandler, err := backup.NewHandler(backupService, logger)
	if err != nil {
		logger.Fatal("backup handler error", zap.Error(err))
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/units", unitHandler)
	mux.Handle("/api/v1/units/", unitHandler)
	mux.Handle("/api/v1/campaigns", campaignHandler)
	mux.Handle("/api/v1/campaigns/", campaignHandler)
	mux.Handle("/share/campaigns/", shareHandler)
	mux.Handle("/api/v1/settings", settingsHandler)
	mux.HandleFunc("/api/v1/backup", backupHandler.HandleBackup)
	mux.HandleFunc("/api/v1/data", backupHandler.HandleClear)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(mux, logger)}
	logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
	logger.Fatal("server stopped", zap.Error(server.ListenAndServe()))
}

type config struct {
	DatabaseURL  string        `yaml:"database_url"`
	HTTPAddr     string        `yaml:"http_addr"`
	ShareBaseURL string        `yaml:"share_base_url"`
	ShareSecret  string        `yaml:"share_secret"`
	ShareTTL     time.Duration `yaml:"share_ttl"`
}

// loadConfig reads env vars, then overlays the optional yaml file named
// by UNIPOLE_CONFIG.
func loadConfig() (config, error) {
	cfg := config{
		DatabaseURL:  getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:     getenvDefault("HTTP_ADDR", ":8080"),
		ShareBaseURL: getenvDefault("SHARE_BASE_URL", "http://localhost:8080"),
		ShareSecret:  os.Getenv("SHARE_TOKEN_SECRET"),
		ShareTTL:     getenvDuration("SHARE_TOKEN_TTL", 0),
	}

	if path := os.Getenv("UNIPOLE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL or PG_DSN is required")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func stderrFatal(msg string, err error) {
	_, _ = os.Stderr.WriteString(msg + ": " + err.Error() + "\n")
	os.Exit(1)
}

func loggingMiddleware(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		elapsed := time.Since(start)
		metrics.ObserveHTTP(r.Method, strconv.Itoa(resp.status), elapsed)
		logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", resp.status),
			zap.Duration("elapsed", elapsed))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
