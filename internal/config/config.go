package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	return NewFromFile("")
}

// NewFromFile creates a configuration instance, reading the given file when
// path is set and searching the default locations otherwise
func NewFromFile(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/textguard/")
		v.AddConfigPath("$HOME/.textguard")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)
	return v
}

func bindEnv(v *viper.Viper) {
	v.AutomaticEnv()
	v.SetEnvPrefix("TEXTGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// The social API secrets keep their conventional unprefixed names.
	_ = v.BindEnv("twitter.api_key", "TWITTER_API_KEY")
	_ = v.BindEnv("twitter.api_secret_key", "TWITTER_API_SECRET_KEY")
	_ = v.BindEnv("twitter.access_token", "TWITTER_ACCESS_TOKEN")
	_ = v.BindEnv("twitter.access_token_secret", "TWITTER_ACCESS_TOKEN_SECRET")
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	dataDir := filepath.Join(xdg.DataHome, "textguard")

	// Dataset defaults
	v.SetDefault("dataset.path", "mail_data.csv")
	v.SetDefault("dataset.category_column", "Category")
	v.SetDefault("dataset.message_column", "Message")
	v.SetDefault("dataset.encoding", "utf8")

	// Training defaults
	v.SetDefault("training.test_size", 0.2)
	v.SetDefault("training.random_seed", 42)
	v.SetDefault("training.demo_message", "free money")

	// Vectorizer defaults
	v.SetDefault("vectorizer.lowercase", true)
	v.SetDefault("vectorizer.stop_words", "english")
	v.SetDefault("vectorizer.max_features", 5000)
	v.SetDefault("vectorizer.ngram_max", 2)
	v.SetDefault("vectorizer.min_df", 1)

	// Classifier defaults
	v.SetDefault("classifier.max_iter", 500)
	v.SetDefault("classifier.class_weight", "balanced")
	v.SetDefault("classifier.c", 1.0)
	v.SetDefault("classifier.tolerance", 1e-4)

	// Model artifact defaults
	v.SetDefault("model.dir", filepath.Join(dataDir, "model"))

	// Server defaults
	v.SetDefault("server.filter_type", "smtp")
	v.SetDefault("server.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.block_spam", false)
	v.SetDefault("server.headers.spam", "X-Spam-Status")
	v.SetDefault("server.headers.score", "X-Spam-Score")
	v.SetDefault("server.headers.reason", "X-Spam-Reason")
	v.SetDefault("server.relay.enabled", false)
	v.SetDefault("server.relay.address", "127.0.0.1")
	v.SetDefault("server.relay.port", 10026)
	v.SetDefault("server.modify_subject", false)
	v.SetDefault("server.subject_prefix", "[**SPAM**] ")
	v.SetDefault("server.max_body_size", 65536)

	// Web defaults
	v.SetDefault("web.listen_address", "127.0.0.1:8501")

	// Spam defaults
	v.SetDefault("spam.whitelisted_domains", []string{})

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_frequency", "1h")
	v.SetDefault("cache.sqlite_path", filepath.Join(dataDir, "prediction_cache.db"))
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/textguard?parseTime=true")

	// Sentiment defaults
	v.SetDefault("sentiment.provider", "vader")
	v.SetDefault("sentiment.positive_threshold", 0.05)
	v.SetDefault("sentiment.negative_threshold", -0.05)

	// NLP resource defaults
	v.SetDefault("nlp.stopwords_file", "")
	v.SetDefault("nlp.stopwords_url", "")
	v.SetDefault("nlp.warmup", true)

	// Keyword defaults
	v.SetDefault("keywords.count", 1)

	// Suggestion defaults
	v.SetDefault("suggestions.templates_file", "")

	// Social source defaults
	v.SetDefault("social.source", "twitter")
	v.SetDefault("social.default_count", 10)
	v.SetDefault("social.max_count", 100)
	v.SetDefault("social.lang", "en")
	v.SetDefault("social.mode", "extended")
	v.SetDefault("social.timeout", "15s")

	// Feed defaults
	v.SetDefault("feed.urls", []string{})

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 300)
	v.SetDefault("bedrock.temperature", 0.0)
	v.SetDefault("bedrock.top_p", 0.9)
	v.SetDefault("bedrock.max_body_size", 4096)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-pro")
	v.SetDefault("gemini.max_tokens", 300)
	v.SetDefault("gemini.temperature", 0.0)
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.max_body_size", 4096)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model_name", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 300)
	v.SetDefault("openai.temperature", 0.0)
	v.SetDefault("openai.top_p", 0.9)
	v.SetDefault("openai.max_body_size", 4096)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetInt64 gets an int64 value from the configuration
func (c *Config) GetInt64(key string) int64 {
	return c.v.GetInt64(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
