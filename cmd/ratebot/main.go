package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	httpadapter "github.com/stoalabs/ratebot/internal/adapters/http"
	"github.com/stoalabs/ratebot/internal/adapters/llm"
	"github.com/stoalabs/ratebot/internal/adapters/rates"
	memstore "github.com/stoalabs/ratebot/internal/adapters/storage/memory"
	"github.com/stoalabs/ratebot/internal/adapters/telegram"
	"github.com/stoalabs/ratebot/internal/app/chat"
	"github.com/stoalabs/ratebot/internal/config"
	"github.com/stoalabs/ratebot/internal/domain"
	"github.com/stoalabs/ratebot/internal/metrics"
	"github.com/stoalabs/ratebot/internal/observability"
)

func main() {
	log := observability.Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	llmClient, err := buildLLMClient(ctx, cfg)
	if err != nil {
		log.Error("initializing completion client", "error", err)
		os.Exit(1)
	}

	rateProvider, err := rates.NewClient(cfg.RatesAPIKey, rates.WithBaseURL(cfg.RatesBaseURL))
	if err != nil {
		log.Error("initializing rate provider", "error", err)
		os.Exit(1)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	store := memstore.NewRegistryStore()
	svc := chat.NewService(store, llmClient, rateProvider, m)

	// Ops surface: /healthz and /metrics.
	go func() {
		log.Info("ops server listening", "addr", cfg.OpsAddr)
		srv := httpadapter.NewServer(prometheus.DefaultGatherer)
		if err := http.ListenAndServe(cfg.OpsAddr, srv); err != nil {
			log.Error("ops server failed", "error", err)
		}
	}()

	bot, err := telegram.New(cfg.TelegramToken, svc)
	if err != nil {
		log.Error("initializing telegram bot", "error", err)
		os.Exit(1)
	}

	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("bot loop failed", "error", err)
		os.Exit(1)
	}
}

func buildLLMClient(ctx context.Context, cfg *config.Config) (domain.CompletionClient, error) {
	log := observability.Logger()

	switch cfg.LLMBackend {
	case config.BackendMock:
		log.Info("using mock completion client")
		return llm.NewMockLLM(), nil
	case config.BackendVertex:
		log.Info("using vertex completion client", "model", cfg.VertexModel)
		return llm.NewVertexClient(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.VertexModel)
	default:
		log.Info("using openai completion client", "model", cfg.OpenAIModel)
		return llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
}
