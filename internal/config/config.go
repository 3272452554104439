package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// CoinConfig holds one scraped coin's lookup parameters. The upstream pages
// change URLs and layout over time, so these are configuration to keep
// current operationally, not frozen constants.
type CoinConfig struct {
	Key         string  `mapstructure:"key"`
	URL         string  `mapstructure:"url"`
	SearchText  string  `mapstructure:"search_text"`
	DisplayName string  `mapstructure:"display_name"`
	Divisor     float64 `mapstructure:"divisor"`
}

// VeracashAnchor locates one metal's price on the Veracash page.
type VeracashAnchor struct {
	Search string  `mapstructure:"search"`
	Floor  float64 `mapstructure:"floor"`
}

// BenchmarkConfig names one reference index series.
type BenchmarkConfig struct {
	Name   string `mapstructure:"name"`
	Symbol string `mapstructure:"symbol"`
}

// Config holds all configuration for the market fetcher.
type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	UserAgent string `mapstructure:"user_agent"`

	// Base URLs for upstream endpoints (configurable for testing)
	YahooChartBaseURL  string `mapstructure:"yahoo_chart_base_url"`
	YahooQuoteBaseURL  string `mapstructure:"yahoo_quote_base_url"`
	YahooSearchBaseURL string `mapstructure:"yahoo_search_base_url"`

	FTFundsURL      string `mapstructure:"ft_funds_url"`
	FTETFURL        string `mapstructure:"ft_etf_url"`
	FTLabelSelector string `mapstructure:"ft_label_selector"`
	FTValueSelector string `mapstructure:"ft_value_selector"`

	VeracashURL     string                    `mapstructure:"veracash_url"`
	VeracashAnchors map[string]VeracashAnchor `mapstructure:"veracash_anchors"`

	Coins []CoinConfig `mapstructure:"coins"`

	Benchmarks []BenchmarkConfig `mapstructure:"benchmarks"`

	// ScrapingEnabled selects the real HTML parser; when false the scrape
	// sources degrade to "no data" and only the JSON APIs are used.
	ScrapingEnabled bool `mapstructure:"scraping_enabled"`

	// BatchDelayMS is the inter-instrument throttle during batch refresh.
	BatchDelayMS int `mapstructure:"batch_delay_ms"`

	DBPath        string `mapstructure:"db_path"`
	DebugFilePath string `mapstructure:"debug_file_path"`
}

// Load reads configuration from environment variables and an optional config
// file. Environment variables take precedence over config file values, and
// everything has a workable default: no configuration is required to run.
func Load() (*Config, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.SetDefault("log_level", "info")
	v.SetDefault("user_agent", "")

	v.SetDefault("yahoo_chart_base_url", "https://query1.finance.yahoo.com/v8/finance/chart")
	v.SetDefault("yahoo_quote_base_url", "https://query1.finance.yahoo.com/v7/finance/quote")
	v.SetDefault("yahoo_search_base_url", "https://query1.finance.yahoo.com/v1/finance/search")

	v.SetDefault("ft_funds_url", "https://markets.ft.com/data/funds/tearsheet/summary?s=%s")
	v.SetDefault("ft_etf_url", "https://markets.ft.com/data/etfs/tearsheet/summary?s=%s")
	v.SetDefault("ft_label_selector", "span.mod-ui-data-list__label")
	v.SetDefault("ft_value_selector", "span.mod-ui-data-list__value")

	v.SetDefault("veracash_url", "https://www.veracash.com/gold-silver-price")
	v.SetDefault("veracash_anchors", map[string]map[string]any{
		"GOLD_PREMIUM": {"search": "VeraOne premium", "floor": 10.0},
		"GOLD_SPOT":    {"search": "Gold spot price per gram", "floor": 10.0},
		"SILVER_SPOT":  {"search": "Silver spot price per gram", "floor": 0.1},
	})

	v.SetDefault("coins", []map[string]any{
		{
			"key":          "COIN:NAPOLEON_20F",
			"url":          "https://www.aucoffre.com/achat-vente/piece/napoleon-20-francs-marianne-coq",
			"search_text":  "Prix de vente",
			"display_name": "Napoleon 20 Francs",
			"divisor":      1.0,
		},
		{
			"key":          "COIN:KRUGERRAND_1OZ",
			"url":          "https://www.aucoffre.com/achat-vente/piece/krugerrand-1-once",
			"search_text":  "Prix de vente",
			"display_name": "Krugerrand 1 oz",
			"divisor":      1.0,
		},
	})

	v.SetDefault("benchmarks", []map[string]any{
		{"name": "equity", "symbol": "^GSPC"},
		{"name": "gold", "symbol": "GC=F"},
		{"name": "world", "symbol": "^990100-USD-STRD"},
	})

	v.SetDefault("scraping_enabled", true)
	v.SetDefault("batch_delay_ms", 500)
	v.SetDefault("db_path", "marketfetcher.db")
	v.SetDefault("debug_file_path", "marketfetcher_debug.log")

	// Optionally read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.marketfetcher")

	// Read config file (ignore if not found)
	_ = v.ReadInConfig()

	v.BindEnv("log_level", "LOG_LEVEL")
	v.BindEnv("yahoo_chart_base_url", "YAHOO_CHART_BASE_URL")
	v.BindEnv("yahoo_quote_base_url", "YAHOO_QUOTE_BASE_URL")
	v.BindEnv("yahoo_search_base_url", "YAHOO_SEARCH_BASE_URL")
	v.BindEnv("ft_funds_url", "FT_FUNDS_URL")
	v.BindEnv("ft_etf_url", "FT_ETF_URL")
	v.BindEnv("veracash_url", "VERACASH_URL")
	v.BindEnv("scraping_enabled", "SCRAPING_ENABLED")
	v.BindEnv("batch_delay_ms", "BATCH_DELAY_MS")
	v.BindEnv("db_path", "DB_PATH")
	v.BindEnv("debug_file_path", "DEBUG_FILE_PATH")

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for _, coin := range config.Coins {
		if coin.Key == "" || coin.URL == "" {
			return nil, fmt.Errorf("coin config entries need both key and url")
		}
	}

	return config, nil
}
