package config

import (
	"fmt"
	"reviewdigest/internal/chunker"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Token        string  `env:"TOKEN,required,notEmpty"`
	AllowedUsers []int64 `env:"ALLOWED_USERS"`
	DBPath       string  `env:"DB_PATH"                 envDefault:"db.sqlite"`
	LogLevel     string  `env:"LOG_LEVEL"               envDefault:"info"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL" envDefault:"gpt-4.1-mini"`

	SteamBaseURL string        `env:"STEAM_BASE_URL" envDefault:"https://store.steampowered.com"`
	SteamTimeout time.Duration `env:"STEAM_TIMEOUT"  envDefault:"20s"`
	PagePause    time.Duration `env:"PAGE_PAUSE"     envDefault:"1s"`
	MaxReviews   int           `env:"MAX_REVIEWS"    envDefault:"50"`

	SummaryMaxLen      int  `env:"SUMMARY_MAX_LEN"     envDefault:"60"`
	SummaryMinLen      int  `env:"SUMMARY_MIN_LEN"     envDefault:"40"`
	Bulleted           bool `env:"BULLETED"            envDefault:"true"`
	SummaryParallelism int  `env:"SUMMARY_PARALLELISM" envDefault:"4"`

	Tokenizer        string `env:"TOKENIZER"         envDefault:"tiktoken"`
	TiktokenEncoding string `env:"TIKTOKEN_ENCODING" envDefault:"cl100k_base"`
	MaxInputTokens   int    `env:"MAX_INPUT_TOKENS"  envDefault:"1024"`
	ReservedOffset   int    `env:"RESERVED_OFFSET"   envDefault:"2"`
	SafetyMargin     int    `env:"SAFETY_MARGIN"     envDefault:"50"`

	DigestSpec string `env:"DIGEST_SPEC" envDefault:"0 9 * * *"`
}

func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.MaxReviews <= 0 {
		return Config{}, fmt.Errorf("MAX_REVIEWS must be positive (got %d)", cfg.MaxReviews)
	}

	if cfg.SummaryMinLen > cfg.SummaryMaxLen {
		return Config{}, fmt.Errorf(
			"SUMMARY_MIN_LEN must not exceed SUMMARY_MAX_LEN (%d > %d)",
			cfg.SummaryMinLen,
			cfg.SummaryMaxLen,
		)
	}

	if _, err = chunker.Budget(cfg.MaxInputTokens, cfg.ReservedOffset, cfg.SafetyMargin); err != nil {
		return Config{}, fmt.Errorf("check MAX_INPUT_TOKENS: %w", err)
	}

	return cfg, nil
}
