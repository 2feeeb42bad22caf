package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Limits applied to every chat request. Mirrors the knowledge-base service's
// documented constraints rather than anything tunable per deployment.
const (
	MaxQuestionLength = 500
	MaxHistoryTurns   = 10
	TopK              = 3
)

// Config aggregates every setting the service needs.
type Config struct {
	Server ServerConfig
	Search SearchConfig
	OpenAI OpenAIConfig
	Chat   ChatConfig
	Log    LogConfig
}

// Load reads configuration from environment variables. The two collaborator
// endpoints and their keys are mandatory; startup fails without them.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	search, err := loadSearchConfig()
	if err != nil {
		return nil, err
	}

	openai, err := loadOpenAIConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: server,
		Search: search,
		OpenAI: openai,
		Chat:   chat,
		Log:    loadLogConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8000"
	}

	addr := port
	if !strings.Contains(port, ":") {
		if strings.Contains(port, " ") {
			return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
		}
		addr = ":" + port
	}

	// The form front-end runs on its own origin; default matches the
	// Streamlit dev setup.
	origins := []string{"http://localhost:8501", "http://127.0.0.1:8501"}
	if raw := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); raw != "" {
		origins = origins[:0]
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return ServerConfig{Addr: addr, AllowedOrigins: origins}, nil
}

// SearchConfig describes the knowledge-base search collaborator.
type SearchConfig struct {
	Endpoint           string
	APIKey             string
	Index              string
	APIVersion         string
	Timeout            time.Duration
	MaxAttempts        int
	RetryAfterFallback time.Duration
}

// URL builds the document-search endpoint for the configured index.
func (c SearchConfig) URL() string {
	return fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s",
		strings.TrimRight(c.Endpoint, "/"), url.PathEscape(c.Index), c.APIVersion)
}

func loadSearchConfig() (SearchConfig, error) {
	endpoint, err := requireEnv("AZURE_SEARCH_ENDPOINT")
	if err != nil {
		return SearchConfig{}, err
	}
	key, err := requireEnv("AZURE_SEARCH_KEY")
	if err != nil {
		return SearchConfig{}, err
	}

	timeout, err := parseDurationEnv("SEARCH_TIMEOUT", 15*time.Second)
	if err != nil {
		return SearchConfig{}, err
	}

	return SearchConfig{
		Endpoint:           endpoint,
		APIKey:             key,
		Index:              getEnvOrDefault("INDEX_NAME", "it-support-docs"),
		APIVersion:         getEnvOrDefault("AZURE_SEARCH_API_VERSION", "2023-07-01-Preview"),
		Timeout:            timeout,
		MaxAttempts:        3,
		RetryAfterFallback: 5 * time.Second,
	}, nil
}

// OpenAIConfig describes the generation collaborator.
type OpenAIConfig struct {
	Endpoint         string
	APIKey           string
	Deployment       string
	APIVersion       string
	RequestsPerSec   float64
	TranslateTimeout time.Duration
	GenerateTimeout  time.Duration
}

// URL builds the chat-completions endpoint for the configured deployment.
func (c OpenAIConfig) URL() string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(c.Endpoint, "/"), url.PathEscape(c.Deployment), c.APIVersion)
}

func loadOpenAIConfig() (OpenAIConfig, error) {
	endpoint, err := requireEnv("AZURE_OPENAI_ENDPOINT")
	if err != nil {
		return OpenAIConfig{}, err
	}
	key, err := requireEnv("AZURE_OPENAI_KEY")
	if err != nil {
		return OpenAIConfig{}, err
	}

	translateTimeout, err := parseDurationEnv("TRANSLATE_TIMEOUT", 10*time.Second)
	if err != nil {
		return OpenAIConfig{}, err
	}
	generateTimeout, err := parseDurationEnv("GENERATE_TIMEOUT", 30*time.Second)
	if err != nil {
		return OpenAIConfig{}, err
	}

	rps, err := parseFloatEnv("OPENAI_REQUESTS_PER_SEC", 5)
	if err != nil {
		return OpenAIConfig{}, err
	}

	return OpenAIConfig{
		Endpoint:         endpoint,
		APIKey:           key,
		Deployment:       getEnvOrDefault("AZURE_OPENAI_DEPLOYMENT", "gpt-4o"),
		APIVersion:       getEnvOrDefault("AZURE_OPENAI_API_VERSION", "2024-02-15-preview"),
		RequestsPerSec:   rps,
		TranslateTimeout: translateTimeout,
		GenerateTimeout:  generateTimeout,
	}, nil
}

// ChatConfig groups session and pipeline tunables.
type ChatConfig struct {
	SessionTTL      time.Duration
	RateLimitWindow time.Duration
	Temperature     float64
	TopP            float64
	MaxTokens       int
}

func loadChatConfig() (ChatConfig, error) {
	ttl, err := parseDurationEnv("SESSION_TTL", 2*time.Hour)
	if err != nil {
		return ChatConfig{}, err
	}
	window, err := parseDurationEnv("RATE_LIMIT_WINDOW", 3*time.Second)
	if err != nil {
		return ChatConfig{}, err
	}

	return ChatConfig{
		SessionTTL:      ttl,
		RateLimitWindow: window,
		Temperature:     0.3,
		TopP:            0.95,
		MaxTokens:       800,
	}, nil
}

// LogConfig describes the logging sinks.
type LogConfig struct {
	FilePath string
	Prod     bool
}

func loadLogConfig() LogConfig {
	prod := strings.EqualFold(strings.TrimSpace(os.Getenv("APP_ENV")), "production")
	return LogConfig{
		FilePath: getEnvOrDefault("LOG_FILE", "chatbot.log"),
		Prod:     prod,
	}
}

func requireEnv(key string) (string, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return "", fmt.Errorf("missing required environment variable %s", key)
	}
	return value, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}
