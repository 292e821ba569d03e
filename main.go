package main

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"com/lifenture/thai-field-engine/internal/api"
	"com/lifenture/thai-field-engine/internal/config"
	"com/lifenture/thai-field-engine/internal/fields"
	"com/lifenture/thai-field-engine/internal/logging"
)

// newService loads configuration, installs the configured logger and wires the service
func newService(opts ...config.Option) (*api.Service, config.Config, error) {
	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, config.Config{}, err
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, config.Config{}, err
	}
	logging.SetLogger(logger)
	if cfg.FieldCacheTTL == 0 {
		logging.Warn("FIELD_CACHE_TTL is 0: cached registries live until their template is saved")
	}
	logging.Debug("config loaded: strategy=%s merge_fields=%v cache_ttl=%s",
		cfg.Extract.Strategy, cfg.Extract.MergeFields, cfg.FieldCacheTTL)

	return api.NewService(cfg, fields.NewMemoryStore()), cfg, nil
}

func main() {
	svc, cfg, err := newService()
	if err != nil {
		logging.Error("failed to start: %v", err)
		os.Exit(1)
	}
	defer func() { _ = logging.L().Sync() }()

	if cfg.HTTPAddr == "" {
		lambda.Start(svc.HandleLambda)
		return
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logging.Info("listening on %s", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Error("server stopped: %v", err)
		os.Exit(1)
	}
}
