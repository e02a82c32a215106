package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// Retrieval policy knobs. The defaults are the tuned production
	// values; they are configuration, not constants, so deployments can
	// adjust the semantic/lexical balance without a rebuild.
	VectorQuotaRatio float64 `envconfig:"VECTOR_QUOTA_RATIO" default:"0.6"`
	KeywordOverfetch int     `envconfig:"KEYWORD_OVERFETCH" default:"2"`
	BatchKeywordCap  int     `envconfig:"BATCH_KEYWORD_CAP" default:"5"`
	GoalChunkLimit   int     `envconfig:"GOAL_CHUNK_LIMIT" default:"2"`
	DefaultLimit     int     `envconfig:"DEFAULT_LIMIT" default:"5"`
	TrendingMinViews int64   `envconfig:"TRENDING_MIN_VIEWS" default:"10000"`

	// SearchTimeout bounds the embedding and store calls of a single
	// retrieval operation.
	SearchTimeout time.Duration `envconfig:"SEARCH_TIMEOUT" default:"10s"`

	// IVFFlatProbes controls ANN recall. Too low silently degrades
	// result quality without an error, so it is fixed per deployment
	// rather than per call.
	IVFFlatProbes int `envconfig:"IVFFLAT_PROBES" default:"10"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("REPSTACK", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
