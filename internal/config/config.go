package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dobsilva08/metals-reports/internal/models"
	"github.com/joho/godotenv"
)

// DefaultFallbackOrder is the provider priority used when LLM_FALLBACK_ORDER
// is not set: PiAPI first, then Groq, OpenAI and DeepSeek.
const DefaultFallbackOrder = "piapi,groq,openai,deepseek"

// Load loads configuration from environment variables
// It first attempts to load from .env file, then reads environment variables
func Load() (*models.Config, error) {
	// Try to load .env file (optional, ignore error if not found)
	_ = godotenv.Load()

	config := &models.Config{
		// Telegram settings
		TelegramToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		MetalsChatID:    getEnvInt64("TELEGRAM_CHAT_ID_METALS", 0),
		TestChatID:      getEnvInt64("TELEGRAM_CHAT_ID_TEST", 0),
		MessageThreadID: getEnvInt64("TELEGRAM_MESSAGE_THREAD_ID", 0),
		TelegramTimeout: getEnvInt("TELEGRAM_TIMEOUT", 30),

		// LLM provider settings
		FallbackOrder: getEnvList("LLM_FALLBACK_ORDER", DefaultFallbackOrder),
		PiAPIKey:      getEnv("PIAPI_API_KEY", ""),
		PiAPIModel:    getEnv("PIAPI_MODEL", "gpt-4o-mini"),
		GroqKey:       getEnv("GROQ_API_KEY", ""),
		GroqModel:     getEnv("GROQ_MODEL", "llama-3.1-70b-versatile"),
		OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		DeepSeekKey:   getEnv("DEEPSEEK_API_KEY", ""),
		DeepSeekModel: getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		GeminiKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		// LLM generation parameters
		LLMTimeout:     getEnvInt("LLM_TIMEOUT", 60),
		LLMTemperature: getEnvFloat32("LLM_TEMPERATURE", 0.4),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 1800),

		// Market data sources
		FREDKey: getEnv("FRED_API_KEY", ""),

		// Lock/counter storage
		DataDir:         getEnv("DATA_DIR", "data"),
		SupabaseURL:     getEnv("SUPABASE_URL", ""),
		SupabaseKey:     getEnv("SUPABASE_KEY", ""),
		SupabaseTimeout: getEnvInt("SUPABASE_TIMEOUT", 10),
		ConfirmPolicy:   getEnv("LOCK_CONFIRM_POLICY", models.ConfirmPolicyConfirmed),

		// App settings
		Timezone:    getEnv("TIMEZONE", "America/Sao_Paulo"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Environment: getEnv("ENVIRONMENT", "production"),
	}

	// Validate configuration
	if err := validate(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// validate checks if all required configuration values are set
func validate(cfg *models.Config) error {
	if cfg.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.MetalsChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID_METALS is required")
	}

	if len(cfg.FallbackOrder) == 0 {
		return fmt.Errorf("LLM_FALLBACK_ORDER must list at least one provider")
	}

	// At least one provider in the chain must have a key configured
	hasKey := false
	for _, name := range cfg.FallbackOrder {
		switch name {
		case "piapi":
			hasKey = hasKey || cfg.PiAPIKey != ""
		case "groq":
			hasKey = hasKey || cfg.GroqKey != ""
		case "openai":
			hasKey = hasKey || cfg.OpenAIKey != ""
		case "deepseek":
			hasKey = hasKey || cfg.DeepSeekKey != ""
		case "gemini":
			hasKey = hasKey || cfg.GeminiKey != ""
		default:
			return fmt.Errorf("unknown provider %q in LLM_FALLBACK_ORDER", name)
		}
	}
	if !hasKey {
		return fmt.Errorf("no API key configured for any provider in LLM_FALLBACK_ORDER (%s)",
			strings.Join(cfg.FallbackOrder, ","))
	}

	// Validate positive values
	if cfg.TelegramTimeout <= 0 {
		return fmt.Errorf("TELEGRAM_TIMEOUT must be positive, got %d", cfg.TelegramTimeout)
	}
	if cfg.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive, got %d", cfg.LLMTimeout)
	}
	// Gemini's SetMaxOutputTokens takes an int32, so reject values the
	// narrowing would silently truncate
	if cfg.LLMMaxTokens <= 0 || int64(cfg.LLMMaxTokens) > math.MaxInt32 {
		return fmt.Errorf("LLM_MAX_TOKENS must be between 1 and %d, got %d", math.MaxInt32, cfg.LLMMaxTokens)
	}
	if cfg.SupabaseTimeout <= 0 {
		return fmt.Errorf("SUPABASE_TIMEOUT must be positive, got %d", cfg.SupabaseTimeout)
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("DATA_DIR must not be empty")
	}

	if cfg.ConfirmPolicy != models.ConfirmPolicyConfirmed && cfg.ConfirmPolicy != models.ConfirmPolicyAccepted {
		return fmt.Errorf("LOCK_CONFIRM_POLICY must be %q or %q; got %s",
			models.ConfirmPolicyConfirmed, models.ConfirmPolicyAccepted, cfg.ConfirmPolicy)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %s", cfg.LogLevel)
	}

	return nil
}

// getEnv retrieves environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves environment variable as integer or returns default value
func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvInt64 retrieves environment variable as int64 or returns default value
func getEnvInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvFloat32 retrieves environment variable as float32 or returns default value
func getEnvFloat32(key string, defaultValue float32) float32 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 32)
	if err != nil {
		return defaultValue
	}

	return float32(value)
}

// getEnvList retrieves a comma-separated environment variable as a slice,
// trimming whitespace and dropping empty entries
func getEnvList(key, defaultValue string) []string {
	valueStr := getEnv(key, defaultValue)

	parts := strings.Split(valueStr, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			list = append(list, p)
		}
	}
	return list
}
