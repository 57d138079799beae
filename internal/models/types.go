package models

// Confirm policies decide when a Telegram response counts as a confirmed
// delivery for lock-acquisition purposes.
const (
	// ConfirmPolicyConfirmed requires an ok response carrying a message id.
	// An ambiguous accepted-but-unconfirmed response is treated as a send
	// failure so the watchdog run can retry.
	ConfirmPolicyConfirmed = "confirmed"

	// ConfirmPolicyAccepted treats any ok response as confirmed.
	ConfirmPolicyAccepted = "accepted"
)

// DeliveryConfirmation is the result of one Telegram send
type DeliveryConfirmation struct {
	MessageID int64
	ChatID    int64
	Confirmed bool
}

// Config represents application configuration
type Config struct {
	// Telegram settings
	TelegramToken   string
	MetalsChatID    int64
	TestChatID      int64
	MessageThreadID int64
	TelegramTimeout int

	// LLM provider settings (fallback chain)
	FallbackOrder []string
	PiAPIKey      string
	PiAPIModel    string
	GroqKey       string
	GroqModel     string
	OpenAIKey     string
	OpenAIModel   string
	DeepSeekKey   string
	DeepSeekModel string
	GeminiKey     string
	GeminiModel   string

	// LLM generation parameters
	LLMTimeout     int
	LLMTemperature float32
	LLMMaxTokens   int

	// Market data sources (optional)
	FREDKey string

	// Lock/counter storage
	DataDir         string
	SupabaseURL     string
	SupabaseKey     string
	SupabaseTimeout int
	ConfirmPolicy   string

	// App settings
	Timezone    string
	LogLevel    string
	Environment string
}
