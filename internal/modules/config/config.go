package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"momentum_bot/internal/helper"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDir         = "configs"
)

const (
	SizingFixed   = "fixed"
	SizingPercent = "percent"

	TradeLive     = "live"
	TradeSimulate = "simulate"

	PositionFailAllow = "allow"
	PositionFailBlock = "block"

	StoreCycle    = "cycle"
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config собирается один раз при старте и дальше только читается.
type Config struct {
	Exchange struct {
		APIKey      string        `yaml:"api_key"`
		APISecret   string        `yaml:"api_secret"`
		Testnet     bool          `yaml:"testnet"`
		Category    string        `yaml:"category"`
		Pair        string        `yaml:"pair"`
		Interval    string        `yaml:"interval"`
		CandleLimit int           `yaml:"candle_limit"`
		RecvWindow  int           `yaml:"recv_window"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"exchange"`

	Strategy struct {
		Name          string  `yaml:"name"` // rsi | emarsi
		RSIPeriod     int     `yaml:"rsi_period"`
		RSIBuy        float64 `yaml:"rsi_buy"`
		RSISell       float64 `yaml:"rsi_sell"`
		EMAFast       int     `yaml:"ema_fast"`
		EMASlow       int     `yaml:"ema_slow"`
		RSIOverbought float64 `yaml:"rsi_overbought"`
		RSIOversold   float64 `yaml:"rsi_oversold"`
	} `yaml:"strategy"`

	// StopLoss/TakeProfit пока только отдаются в /status, решений по ним нет.
	Risk struct {
		StopLoss           float64 `yaml:"stop_loss"`
		TakeProfit         float64 `yaml:"take_profit"`
		MaxLossStreak      int     `yaml:"max_loss_streak"`
		PositionFailPolicy string  `yaml:"position_fail_policy"` // allow | block
	} `yaml:"risk"`

	Sizing struct {
		Mode       string  `yaml:"mode"` // fixed | percent
		Qty        string  `yaml:"qty"`
		PctBalance float64 `yaml:"pct_balance"`
	} `yaml:"sizing"`

	Trade struct {
		Mode            string  `yaml:"mode"` // live | simulate
		SimNotionalUSDT float64 `yaml:"sim_notional_usdt"`
		SimSlippage     float64 `yaml:"sim_slippage"`
		SimMove         float64 `yaml:"sim_move"`
		SimFeeRate      float64 `yaml:"sim_fee_rate"`
	} `yaml:"trade"`

	Fetch struct {
		Retries    int           `yaml:"retries"`
		RetryDelay time.Duration `yaml:"retry_delay"`
		MinCandles int           `yaml:"min_candles"`
	} `yaml:"fetch"`

	Service struct {
		Addr     string `yaml:"addr"`
		LogDir   string `yaml:"log_dir"`
		LogLevel string `yaml:"log_level"`
		Schedule string `yaml:"schedule"` // cron с секундами, пусто — выкл
	} `yaml:"service"`

	Telegram struct {
		Token    string `yaml:"token"`
		ChatID   int64  `yaml:"chat_id"`
		Commands bool   `yaml:"commands"` // /run, /status, /resumen из чата
	} `yaml:"telegram"`

	Store struct {
		Backend       string `yaml:"backend"`
		RedisAddr     string `yaml:"redis_addr"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       int    `yaml:"redis_db"`
		DSN           string `yaml:"db_dsn"`
		SQLitePath    string `yaml:"sqlite_path"`
	} `yaml:"store"`

	Tracing struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"tracing"`
}

func Default() Config {
	var c Config

	c.Exchange.Category = "spot"
	c.Exchange.Pair = "BNBUSDT"
	c.Exchange.Interval = "1"
	c.Exchange.CandleLimit = 100
	c.Exchange.RecvWindow = 5000
	c.Exchange.Timeout = 10 * time.Second

	c.Strategy.Name = "rsi"
	c.Strategy.RSIPeriod = 14
	c.Strategy.RSIBuy = 30
	c.Strategy.RSISell = 70
	c.Strategy.EMAFast = 9
	c.Strategy.EMASlow = 21
	c.Strategy.RSIOverbought = 70
	c.Strategy.RSIOversold = 30

	c.Risk.StopLoss = 0.02
	c.Risk.TakeProfit = 0.04
	c.Risk.PositionFailPolicy = PositionFailAllow

	c.Sizing.Mode = SizingFixed
	c.Sizing.Qty = "0.1"
	c.Sizing.PctBalance = 0.01

	c.Trade.Mode = TradeLive
	c.Trade.SimNotionalUSDT = 100
	c.Trade.SimSlippage = 0.0005
	c.Trade.SimMove = 0.002
	c.Trade.SimFeeRate = 0.001

	c.Fetch.Retries = 3
	c.Fetch.RetryDelay = 2 * time.Second
	c.Fetch.MinCandles = 10

	c.Service.Addr = ":8080"
	c.Service.LogDir = "logs"
	c.Service.LogLevel = "info"

	c.Store.Backend = StoreCycle
	c.Tracing.Port = 6831

	return c
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	if err := loadFile(filepath.Join(configDir, configFileName), &cfg); err != nil {
		return nil, err
	}

	v := viper.New()
	v.AutomaticEnv()
	applyEnv(v, &cfg)
	cfg.Exchange.Interval = helper.NormInterval(cfg.Exchange.Interval)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadFile — yaml необязателен: нет файла, живём на env.
func loadFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open config file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("decode config file: %w", err)
	}
	return nil
}

func applyEnv(v *viper.Viper, c *Config) {
	envString(v, "BYBIT_API_KEY", &c.Exchange.APIKey)
	envString(v, "BYBIT_API_SECRET", &c.Exchange.APISecret)
	envBool(v, "BYBIT_TESTNET", &c.Exchange.Testnet)
	envString(v, "BYBIT_CATEGORY", &c.Exchange.Category)
	envString(v, "PAIR", &c.Exchange.Pair)
	envString(v, "INTERVAL", &c.Exchange.Interval)
	envInt(v, "CANDLE_LIMIT", &c.Exchange.CandleLimit)

	envString(v, "STRATEGY", &c.Strategy.Name)
	envInt(v, "RSI_PERIOD", &c.Strategy.RSIPeriod)
	envFloat(v, "RSI_BUY", &c.Strategy.RSIBuy)
	envFloat(v, "RSI_SELL", &c.Strategy.RSISell)
	envInt(v, "EMA_FAST", &c.Strategy.EMAFast)
	envInt(v, "EMA_SLOW", &c.Strategy.EMASlow)
	envFloat(v, "RSI_OVERBOUGHT", &c.Strategy.RSIOverbought)
	envFloat(v, "RSI_OVERSOLD", &c.Strategy.RSIOversold)

	envFloat(v, "STOP_LOSS", &c.Risk.StopLoss)
	envFloat(v, "TAKE_PROFIT", &c.Risk.TakeProfit)
	envInt(v, "MAX_LOSS_STREAK", &c.Risk.MaxLossStreak)
	envString(v, "POSITION_FAIL_POLICY", &c.Risk.PositionFailPolicy)

	envString(v, "SIZING", &c.Sizing.Mode)
	envString(v, "QTY", &c.Sizing.Qty)
	envFloat(v, "PCT_BALANCE", &c.Sizing.PctBalance)

	envString(v, "TRADE_MODE", &c.Trade.Mode)
	envFloat(v, "SIM_NOTIONAL_USDT", &c.Trade.SimNotionalUSDT)
	envFloat(v, "SIM_SLIPPAGE", &c.Trade.SimSlippage)
	envFloat(v, "SIM_MOVE", &c.Trade.SimMove)
	envFloat(v, "SIM_FEE_RATE", &c.Trade.SimFeeRate)

	envInt(v, "FETCH_RETRIES", &c.Fetch.Retries)
	envDuration(v, "FETCH_RETRY_DELAY", &c.Fetch.RetryDelay)

	envString(v, "HTTP_ADDR", &c.Service.Addr)
	envString(v, "LOG_DIR", &c.Service.LogDir)
	envString(v, "LOG_LEVEL", &c.Service.LogLevel)
	envString(v, "SCHEDULE", &c.Service.Schedule)

	envString(v, "TELEGRAM_TOKEN", &c.Telegram.Token)
	envBool(v, "TELEGRAM_COMMANDS", &c.Telegram.Commands)
	if v.IsSet("TELEGRAM_CHAT_ID") {
		c.Telegram.ChatID = v.GetInt64("TELEGRAM_CHAT_ID")
	}

	envString(v, "LOSS_STREAK_STORE", &c.Store.Backend)
	envString(v, "REDIS_ADDR", &c.Store.RedisAddr)
	envString(v, "REDIS_PASSWORD", &c.Store.RedisPassword)
	envInt(v, "REDIS_DB", &c.Store.RedisDB)
	envString(v, "DATABASE_DSN", &c.Store.DSN)
	envString(v, "SQLITE_PATH", &c.Store.SQLitePath)

	envString(v, "JAEGER_HOST", &c.Tracing.Host)
	envInt(v, "JAEGER_PORT", &c.Tracing.Port)
}

func (c *Config) Validate() error {
	if c.Exchange.Pair == "" {
		return fmt.Errorf("PAIR must not be empty")
	}
	if !helper.ValidInterval(c.Exchange.Interval) {
		return fmt.Errorf("unsupported INTERVAL %q", c.Exchange.Interval)
	}
	if c.Exchange.CandleLimit < c.Fetch.MinCandles {
		return fmt.Errorf("CANDLE_LIMIT must be >= %d", c.Fetch.MinCandles)
	}
	if c.Fetch.Retries < 1 {
		return fmt.Errorf("FETCH_RETRIES must be >= 1")
	}
	if c.Strategy.RSIPeriod < 2 {
		return fmt.Errorf("RSI_PERIOD must be >= 2")
	}
	if c.Strategy.RSIBuy >= c.Strategy.RSISell {
		return fmt.Errorf("RSI_BUY must be < RSI_SELL")
	}
	switch strings.ToLower(c.Strategy.Name) {
	case "rsi":
	case "emarsi":
		if c.Strategy.EMAFast >= c.Strategy.EMASlow {
			return fmt.Errorf("EMA_FAST must be < EMA_SLOW")
		}
	default:
		return fmt.Errorf("unknown STRATEGY %q", c.Strategy.Name)
	}
	if err := oneOf("SIZING", c.Sizing.Mode, SizingFixed, SizingPercent); err != nil {
		return err
	}
	if q, err := decimal.NewFromString(c.Sizing.Qty); err != nil || q.IsNegative() {
		return fmt.Errorf("QTY must be a non-negative number, got %q", c.Sizing.Qty)
	}
	if err := oneOf("TRADE_MODE", c.Trade.Mode, TradeLive, TradeSimulate); err != nil {
		return err
	}
	if err := oneOf("POSITION_FAIL_POLICY", c.Risk.PositionFailPolicy, PositionFailAllow, PositionFailBlock); err != nil {
		return err
	}
	if err := oneOf("LOSS_STREAK_STORE", c.Store.Backend, StoreCycle, StoreMemory, StoreRedis, StorePostgres, StoreSQLite); err != nil {
		return err
	}
	if c.Trade.Mode == TradeSimulate && c.Trade.SimNotionalUSDT <= 0 {
		return fmt.Errorf("SIM_NOTIONAL_USDT must be > 0")
	}
	return nil
}

// BaseURL — REST endpoint с учётом testnet.
func (c *Config) BaseURL() string {
	if c.Exchange.Testnet {
		return "https://api-testnet.bybit.com"
	}
	return "https://api.bybit.com"
}

func oneOf(key, val string, allowed ...string) error {
	for _, a := range allowed {
		if val == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %v, got %q", key, allowed, val)
}

func envString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func envInt(v *viper.Viper, key string, dst *int) {
	if v.IsSet(key) {
		*dst = v.GetInt(key)
	}
}

func envFloat(v *viper.Viper, key string, dst *float64) {
	if v.IsSet(key) {
		*dst = v.GetFloat64(key)
	}
}

func envBool(v *viper.Viper, key string, dst *bool) {
	if v.IsSet(key) {
		*dst = v.GetBool(key)
	}
}

func envDuration(v *viper.Viper, key string, dst *time.Duration) {
	if v.IsSet(key) {
		*dst = v.GetDuration(key)
	}
}
