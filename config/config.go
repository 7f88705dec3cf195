package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Log        Logger     `mapstructure:"logger"`
	DB         Database   `mapstructure:"database"`
	API        API        `mapstructure:"api"`
	MarketData MarketData `mapstructure:"market_data"`
	Cache      Cache      `mapstructure:"cache"`
	Screener   Screener   `mapstructure:"screener"`
	Detector   Detector   `mapstructure:"detector"`
	Trading    Trading    `mapstructure:"trading"`
	Scheduler  Scheduler  `mapstructure:"scheduler"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port int `mapstructure:"port"`
}

type MarketData struct {
	BaseURL          string        `mapstructure:"base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxRequestPerMin int           `mapstructure:"max_request_per_min"`
	BarRange         string        `mapstructure:"bar_range"`
	BarInterval      string        `mapstructure:"bar_interval"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

// Screener holds the liquidity and size filters applied when the dynamic
// watchlist is rebuilt from the index universe.
type Screener struct {
	MinMarketCap         float64       `mapstructure:"min_market_cap"`
	MinPrice             float64       `mapstructure:"min_price"`
	MinAvgVolume         float64       `mapstructure:"min_avg_volume"`
	MaxStocks            int           `mapstructure:"max_stocks"`
	MaxConcurrency       int           `mapstructure:"max_concurrency"`
	ProfileCacheDuration time.Duration `mapstructure:"profile_cache_duration"`
	CronExpression       string        `mapstructure:"cron_expression"`
}

type Detector struct {
	WindowSize     int     `mapstructure:"window_size"`
	MinVolumeSurge float64 `mapstructure:"min_volume_surge"`
	MaxBreakoutPct float64 `mapstructure:"max_breakout_pct"`
	MaxConcurrency int     `mapstructure:"max_concurrency"`
	CronExpression string  `mapstructure:"cron_expression"`
}

type Trading struct {
	InitialCapital      float64       `mapstructure:"initial_capital"`
	MaxPositionFraction float64       `mapstructure:"max_position_fraction"`
	StopLossPct         float64       `mapstructure:"stop_loss_pct"`
	TakeProfitPct       float64       `mapstructure:"take_profit_pct"`
	MaxHoldingDays      int           `mapstructure:"max_holding_days"`
	TickDelay           time.Duration `mapstructure:"tick_delay"`
	TickCronExpression  string        `mapstructure:"tick_cron_expression"`
}

type Scheduler struct {
	MaxConcurrency  int           `mapstructure:"max_concurrency"`
	TimeoutDuration time.Duration `mapstructure:"timeout_duration"`
	Timezone        string        `mapstructure:"timezone"`
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")

	viper.SetDefault("api.port", 8080)

	viper.SetDefault("market_data.base_url", "https://query1.finance.yahoo.com")
	viper.SetDefault("market_data.timeout", "10s")
	viper.SetDefault("market_data.max_request_per_min", 120)
	viper.SetDefault("market_data.bar_range", "3m")
	viper.SetDefault("market_data.bar_interval", "1d")

	viper.SetDefault("cache.default_expiration", "30m")
	viper.SetDefault("cache.cleanup_interval", "1h")

	viper.SetDefault("screener.min_market_cap", 500_000_000)
	viper.SetDefault("screener.min_price", 5.0)
	viper.SetDefault("screener.min_avg_volume", 50_000)
	viper.SetDefault("screener.max_stocks", 100)
	viper.SetDefault("screener.max_concurrency", 5)
	viper.SetDefault("screener.profile_cache_duration", "20h")
	viper.SetDefault("screener.cron_expression", "30 8 * * 1-5")

	viper.SetDefault("detector.window_size", 20)
	viper.SetDefault("detector.min_volume_surge", 50.0)
	viper.SetDefault("detector.max_breakout_pct", 5.0)
	viper.SetDefault("detector.max_concurrency", 5)
	viper.SetDefault("detector.cron_expression", "*/30 9-16 * * 1-5")

	viper.SetDefault("trading.initial_capital", 100_000)
	viper.SetDefault("trading.max_position_fraction", 0.20)
	viper.SetDefault("trading.stop_loss_pct", 0.08)
	viper.SetDefault("trading.take_profit_pct", 0.20)
	viper.SetDefault("trading.max_holding_days", 30)
	viper.SetDefault("trading.tick_delay", "2m")
	viper.SetDefault("trading.tick_cron_expression", "15,45 9-16 * * 1-5")

	viper.SetDefault("scheduler.max_concurrency", 2)
	viper.SetDefault("scheduler.timeout_duration", "25m")
	viper.SetDefault("scheduler.timezone", "America/New_York")
}

func Load() (*Config, error) {
	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	// A missing config file is fine, env vars and defaults still apply.
	_ = viper.ReadInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
