package config

import (
	"fmt"
	"os"
)

type LLMBackend string

const (
	BackendMock   LLMBackend = "mock"
	BackendOpenAI LLMBackend = "openai"
	BackendVertex LLMBackend = "vertex"
)

type Config struct {
	TelegramToken string

	LLMBackend LLMBackend

	OpenAIAPIKey string
	OpenAIModel  string

	GCPProjectID string
	GCPLocation  string
	VertexModel  string

	RatesAPIKey  string
	RatesBaseURL string

	OpsAddr string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads all env vars, builds the config and validates that the
// credentials the selected backends need are present. Credentials live only
// in the environment, never in source.
func Load() (*Config, error) {
	backend := LLMBackend(getEnv("RATEBOT_LLM_BACKEND", string(BackendOpenAI)))
	switch backend {
	case BackendMock, BackendOpenAI, BackendVertex:
	default:
		return nil, fmt.Errorf("unknown RATEBOT_LLM_BACKEND %q", backend)
	}

	cfg := &Config{
		TelegramToken: os.Getenv("RATEBOT_TELEGRAM_TOKEN"),

		LLMBackend: backend,

		OpenAIAPIKey: os.Getenv("RATEBOT_OPENAI_API_KEY"),
		OpenAIModel:  getEnv("RATEBOT_OPENAI_MODEL", "gpt-4o-mini"),

		GCPProjectID: os.Getenv("RATEBOT_GCP_PROJECT"),
		GCPLocation:  getEnv("RATEBOT_GCP_LOCATION", "us-central1"),
		VertexModel:  getEnv("RATEBOT_VERTEX_MODEL", "gemini-2.5-flash"),

		RatesAPIKey:  os.Getenv("RATEBOT_RATES_API_KEY"),
		RatesBaseURL: getEnv("RATEBOT_RATES_BASE_URL", "https://openexchangerates.org"),

		OpsAddr: getEnv("RATEBOT_OPS_ADDR", ":8080"),
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("RATEBOT_TELEGRAM_TOKEN must be set")
	}
	if cfg.RatesAPIKey == "" {
		return nil, fmt.Errorf("RATEBOT_RATES_API_KEY must be set")
	}
	if cfg.LLMBackend == BackendOpenAI && cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("RATEBOT_OPENAI_API_KEY must be set for the openai backend")
	}
	if cfg.LLMBackend == BackendVertex && cfg.GCPProjectID == "" {
		return nil, fmt.Errorf("RATEBOT_GCP_PROJECT must be set for the vertex backend")
	}

	return cfg, nil
}
