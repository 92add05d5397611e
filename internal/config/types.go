package config

// ProviderType identifies a generation/embedding backend.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level configuration, corresponding to .baseera.yml.
type Config struct {
	DataDir string `yaml:"data_dir" koanf:"data_dir"`

	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`
	OllamaHost        string       `yaml:"ollama_host" koanf:"ollama_host"`

	ExpandQueries     bool `yaml:"expand_queries" koanf:"expand_queries"`
	TopK              int  `yaml:"top_k" koanf:"top_k"`
	ChunkSize         int  `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap      int  `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	RequestsPerMinute int  `yaml:"requests_per_minute" koanf:"requests_per_minute"`

	MaxRetries        int `yaml:"max_retries" koanf:"max_retries"`
	RetryDelaySeconds int `yaml:"retry_delay_seconds" koanf:"retry_delay_seconds"`

	QuranBaseURL  string   `yaml:"quran_base_url" koanf:"quran_base_url"`
	HadithBaseURL string   `yaml:"hadith_base_url" koanf:"hadith_base_url"`
	HadithBooks   []string `yaml:"hadith_books" koanf:"hadith_books"`

	Server ServerConfig `yaml:"server" koanf:"server"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}
