package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Skufu/heartrisk/internal/assessment"
	"github.com/Skufu/heartrisk/internal/logger"
	"github.com/Skufu/heartrisk/internal/model"
	"github.com/Skufu/heartrisk/internal/store"
)

const serviceName = "heartrisk"

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Port         string
	GinMode      string
	LogLevel     string
	LogFormat    string
	ModelPath    string
	ModelURL     string
	ModelTimeout time.Duration
	DemoMode     bool
	StoreDriver  string
	DatabaseURL  string
	SQLitePath   string
}

// modelStatus describes what is scoring requests, for /api/model and /readyz.
type modelStatus struct {
	Version   string `json:"version"`
	Source    string `json:"source"`
	Available bool   `json:"available"`
	Demo      bool   `json:"demo"`
	Error     string `json:"error,omitempty"`
}

// app is the process-wide state handed to the router. The model behind the
// assembler is loaded once and only read afterwards.
type app struct {
	assembler *assessment.Assembler
	store     store.Store
	model     modelStatus
	log       *zap.Logger
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat, serviceName)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

	classifier, status := loadClassifier(ctx, cfg, zlog)

	var st store.Store
	if cfg.StoreDriver != "none" {
		st, err = openStore(ctx, cfg)
		if err != nil {
			zlog.Fatal("store connection failed", zap.String("driver", cfg.StoreDriver), zap.Error(err))
		}
		defer st.Close()
	}

	a := &app{
		assembler: assessment.NewAssembler(classifier),
		store:     st,
		model:     status,
		log:       zlog,
	}

	staticRoot := detectStaticRoot()
	router := setupRouter(a, staticRoot)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	zlog.Info("server listening",
		zap.String("port", cfg.Port),
		zap.String("store", cfg.StoreDriver),
		zap.String("model_source", status.Source),
		zap.Bool("model_available", status.Available),
	)
	waitForShutdown(server, zlog)
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "release"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		ModelPath:   getEnv("MODEL_PATH", filepath.Join("models", "heart_disease_model.json")),
		ModelURL:    os.Getenv("MODEL_URL"),
		DemoMode:    strings.EqualFold(getEnv("DEMO_MODE", "false"), "true"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "none")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getEnv("SQLITE_PATH", filepath.Join("data", "assessments.db")),
	}

	timeout, err := time.ParseDuration(getEnv("MODEL_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("MODEL_TIMEOUT: %w", err)
	}
	cfg.ModelTimeout = timeout

	if strings.EqualFold(os.Getenv("ENABLE_DB"), "true") && cfg.StoreDriver == "none" {
		cfg.StoreDriver = "postgres"
	}

	switch cfg.StoreDriver {
	case "none", "sqlite":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (want none, sqlite or postgres)", cfg.StoreDriver)
	}

	return cfg, nil
}

// loadClassifier loads the model once. A missing model is not fatal: the
// server either scores in labelled demo mode or answers 503 per request.
func loadClassifier(ctx context.Context, cfg *Config, zlog *zap.Logger) (assessment.Classifier, modelStatus) {
	var (
		m   assessment.Model
		err error
	)
	source := "file"
	if cfg.ModelURL != "" {
		source = "remote"
		m, err = model.NewRemote(ctx, cfg.ModelURL, cfg.ModelTimeout, zlog)
	} else {
		m, err = model.Load(cfg.ModelPath)
	}

	if err == nil {
		zlog.Info("model loaded", zap.String("source", source), zap.String("version", m.Version()))
		return assessment.NewModelClassifier(m), modelStatus{
			Version:   m.Version(),
			Source:    source,
			Available: true,
		}
	}

	if cfg.DemoMode {
		zlog.Warn("model unavailable, scoring in DEMO mode; results are not predictions", zap.Error(err))
		return assessment.DemoClassifier{}, modelStatus{
			Version: "demo",
			Source:  assessment.SourceDemo,
			Demo:    true,
			Error:   err.Error(),
		}
	}

	zlog.Error("model unavailable, assessments will be rejected", zap.Error(err))
	return assessment.UnavailableClassifier{Err: err}, modelStatus{
		Source: source,
		Error:  err.Error(),
	}
}

func openStore(ctx context.Context, cfg *Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case "postgres":
		return store.NewPostgresStore(ctx, cfg.DatabaseURL)
	case "sqlite":
		return store.NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, errors.New("store disabled")
	}
}

func waitForShutdown(server *http.Server, zlog *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zlog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func detectStaticRoot() string {
	startDir, err := os.Getwd()
	if err != nil {
		return "web"
	}

	candidates := []string{
		startDir,
		filepath.Dir(startDir),
		filepath.Dir(filepath.Dir(startDir)),
	}

	for _, dir := range candidates {
		web := filepath.Join(dir, "web")
		if fileExists(filepath.Join(web, "index.html")) {
			return web
		}
	}

	return filepath.Join(startDir, "web")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
