package config

import "time"

// DatasetConfig represents the labelled corpus location and layout
type DatasetConfig struct {
	Path           string
	CategoryColumn string
	MessageColumn  string
	Encoding       string
}

// TrainingConfig represents the split and demo settings used by the trainer
type TrainingConfig struct {
	TestSize    float64
	RandomSeed  int64
	DemoMessage string
}

// VectorizerConfig represents the TF-IDF settings
type VectorizerConfig struct {
	Lowercase   bool
	StopWords   string
	MaxFeatures int
	NgramMax    int
	MinDF       int
}

// ClassifierConfig represents the logistic regression settings
type ClassifierConfig struct {
	MaxIter     int
	ClassWeight string
	C           float64
	Tolerance   float64
}

// ModelConfig represents where the fitted artifacts live
type ModelConfig struct {
	Dir string
}

// CacheConfig represents the prediction cache settings
type CacheConfig struct {
	Type             string
	Enabled          bool
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
}

// ServerConfig represents the email filter settings
type ServerConfig struct {
	FilterType    string
	ListenAddress string
	BlockSpam     bool
	SpamHeader    string
	ScoreHeader   string
	ReasonHeader  string
	RelayEnabled  bool
	RelayAddress  string
	RelayPort     int
	ModifySubject bool
	SubjectPrefix string
	MaxBodySize   int
}

// SpamConfig represents the sender policy of the email filters
type SpamConfig struct {
	WhitelistedDomains []string
}

// WebConfig represents the web UI settings
type WebConfig struct {
	ListenAddress string
}

// SentimentConfig represents the sentiment scorer selection and thresholds
type SentimentConfig struct {
	Provider          string
	PositiveThreshold float64
	NegativeThreshold float64
}

// NLPConfig represents the language resources loaded at startup
type NLPConfig struct {
	StopwordsFile string
	StopwordsURL  string
	Warmup        bool
}

// KeywordsConfig represents the keyword extractor settings
type KeywordsConfig struct {
	Count int
}

// SuggestionsConfig represents the suggestion template source
type SuggestionsConfig struct {
	TemplatesFile string
}

// SocialConfig represents the post source settings
type SocialConfig struct {
	Source       string
	DefaultCount int
	MaxCount     int
	Lang         string
	Mode         string
	Timeout      time.Duration
}

// TwitterConfig represents the four secrets of the Twitter client
type TwitterConfig struct {
	APIKey            string
	APISecretKey      string
	AccessToken       string
	AccessTokenSecret string
}

// FeedConfig represents the feeds polled by the feed source
type FeedConfig struct {
	URLs []string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GetDataset returns the dataset configuration
func (c *Config) GetDataset() DatasetConfig {
	return DatasetConfig{
		Path:           c.GetString("dataset.path"),
		CategoryColumn: c.GetString("dataset.category_column"),
		MessageColumn:  c.GetString("dataset.message_column"),
		Encoding:       c.GetString("dataset.encoding"),
	}
}

// GetTraining returns the training configuration
func (c *Config) GetTraining() TrainingConfig {
	return TrainingConfig{
		TestSize:    c.GetFloat64("training.test_size"),
		RandomSeed:  c.GetInt64("training.random_seed"),
		DemoMessage: c.GetString("training.demo_message"),
	}
}

// GetVectorizer returns the vectorizer configuration
func (c *Config) GetVectorizer() VectorizerConfig {
	return VectorizerConfig{
		Lowercase:   c.GetBool("vectorizer.lowercase"),
		StopWords:   c.GetString("vectorizer.stop_words"),
		MaxFeatures: c.GetInt("vectorizer.max_features"),
		NgramMax:    c.GetInt("vectorizer.ngram_max"),
		MinDF:       c.GetInt("vectorizer.min_df"),
	}
}

// GetClassifier returns the classifier configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		MaxIter:     c.GetInt("classifier.max_iter"),
		ClassWeight: c.GetString("classifier.class_weight"),
		C:           c.GetFloat64("classifier.c"),
		Tolerance:   c.GetFloat64("classifier.tolerance"),
	}
}

// GetModel returns the model artifact configuration
func (c *Config) GetModel() ModelConfig {
	return ModelConfig{
		Dir: c.GetString("model.dir"),
	}
}

// GetCache returns the cache configuration. Unparseable durations fall back
// to the defaults.
func (c *Config) GetCache() CacheConfig {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		ttl = 24 * time.Hour
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil || cleanup <= 0 {
		cleanup = time.Hour
	}
	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          c.GetBool("cache.enabled"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
	}
}

// GetServer returns the email filter configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		FilterType:    c.GetString("server.filter_type"),
		ListenAddress: c.GetString("server.listen_address"),
		BlockSpam:     c.GetBool("server.block_spam"),
		SpamHeader:    c.GetString("server.headers.spam"),
		ScoreHeader:   c.GetString("server.headers.score"),
		ReasonHeader:  c.GetString("server.headers.reason"),
		RelayEnabled:  c.GetBool("server.relay.enabled"),
		RelayAddress:  c.GetString("server.relay.address"),
		RelayPort:     c.GetInt("server.relay.port"),
		ModifySubject: c.GetBool("server.modify_subject"),
		SubjectPrefix: c.GetString("server.subject_prefix"),
		MaxBodySize:   c.GetInt("server.max_body_size"),
	}
}

// GetSpam returns the sender policy configuration
func (c *Config) GetSpam() SpamConfig {
	return SpamConfig{
		WhitelistedDomains: c.GetStringSlice("spam.whitelisted_domains"),
	}
}

// GetWeb returns the web UI configuration
func (c *Config) GetWeb() WebConfig {
	return WebConfig{
		ListenAddress: c.GetString("web.listen_address"),
	}
}

// GetSentiment returns the sentiment configuration
func (c *Config) GetSentiment() SentimentConfig {
	return SentimentConfig{
		Provider:          c.GetString("sentiment.provider"),
		PositiveThreshold: c.GetFloat64("sentiment.positive_threshold"),
		NegativeThreshold: c.GetFloat64("sentiment.negative_threshold"),
	}
}

// GetNLP returns the NLP resource configuration
func (c *Config) GetNLP() NLPConfig {
	return NLPConfig{
		StopwordsFile: c.GetString("nlp.stopwords_file"),
		StopwordsURL:  c.GetString("nlp.stopwords_url"),
		Warmup:        c.GetBool("nlp.warmup"),
	}
}

// GetSocial returns the social source configuration
func (c *Config) GetSocial() SocialConfig {
	timeout, err := c.GetDuration("social.timeout")
	if err != nil {
		timeout = 15 * time.Second
	}
	return SocialConfig{
		Source:       c.GetString("social.source"),
		DefaultCount: c.GetInt("social.default_count"),
		MaxCount:     c.GetInt("social.max_count"),
		Lang:         c.GetString("social.lang"),
		Mode:         c.GetString("social.mode"),
		Timeout:      timeout,
	}
}

// GetTwitter returns the Twitter credentials
func (c *Config) GetTwitter() TwitterConfig {
	return TwitterConfig{
		APIKey:            c.GetString("twitter.api_key"),
		APISecretKey:      c.GetString("twitter.api_secret_key"),
		AccessToken:       c.GetString("twitter.access_token"),
		AccessTokenSecret: c.GetString("twitter.access_token_secret"),
	}
}

// GetFeed returns the feed configuration
func (c *Config) GetFeed() FeedConfig {
	return FeedConfig{
		URLs: c.GetStringSlice("feed.urls"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetKeywords returns the keyword extractor configuration
func (c *Config) GetKeywords() KeywordsConfig {
	return KeywordsConfig{Count: c.GetInt("keywords.count")}
}

// GetSuggestions returns the suggestion template configuration
func (c *Config) GetSuggestions() SuggestionsConfig {
	return SuggestionsConfig{TemplatesFile: c.GetString("suggestions.templates_file")}
}
