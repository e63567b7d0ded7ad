package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del engine de replay.
type Config struct {
	Sim     SimConfig     `yaml:"sim"`
	Runner  RunnerConfig  `yaml:"runner"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// SimConfig controla el pricing del replay y los umbrales estadísticos.
type SimConfig struct {
	Slippage          float64 `yaml:"slippage"`           // fracción simétrica sobre entry/exit
	RiskFreeRate      float64 `yaml:"risk_free_rate"`     // para Sharpe/Sortino
	MinSampleSize     int     `yaml:"min_sample_size"`    // mínimo de trades cerrados para stats
	LookbackTrades    int     `yaml:"lookback_trades"`    // trades recientes a analizar por wallet
	InitialCapital    float64 `yaml:"initial_capital"`    // base de la curva de equity
	MinPositionValue  float64 `yaml:"min_position_value"` // filtro de dust en settlement
	MaxDrawdownFlag   float64 `yaml:"max_drawdown_flag"`  // umbral del flag de riesgo
	SignificanceAlpha float64 `yaml:"significance_alpha"` // p < alpha → significativo
}

// RunnerConfig controla el paralelismo del batch.
type RunnerConfig struct {
	Workers      int `yaml:"workers"`       // goroutines del pool (0 = NumCPU)
	WalletBudget int `yaml:"wallet_budget"` // corta el batch tras N wallets (0 = todos)
}

// APIConfig contiene los base URLs de las APIs.
type APIConfig struct {
	DataBase string `yaml:"data_base"`
	CLOBBase string `yaml:"clob_base"`
}

// StorageConfig controla dónde se persisten los reports.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rechaza valores fuera de dominio antes de arrancar ninguna
// simulación — es la única condición fatal del sistema.
func (c *Config) Validate() error {
	if c.Sim.Slippage < 0 || c.Sim.Slippage >= 1 {
		return fmt.Errorf("config.Validate: sim.slippage %.4f outside [0,1)", c.Sim.Slippage)
	}
	if c.Sim.InitialCapital <= 0 {
		return fmt.Errorf("config.Validate: sim.initial_capital %.2f must be > 0", c.Sim.InitialCapital)
	}
	if c.Sim.MinSampleSize < 2 {
		return fmt.Errorf("config.Validate: sim.min_sample_size %d must be >= 2", c.Sim.MinSampleSize)
	}
	if c.Sim.LookbackTrades <= 0 {
		return fmt.Errorf("config.Validate: sim.lookback_trades %d must be > 0", c.Sim.LookbackTrades)
	}
	if c.Sim.RiskFreeRate < 0 {
		return fmt.Errorf("config.Validate: sim.risk_free_rate %.4f must be >= 0", c.Sim.RiskFreeRate)
	}
	if c.Runner.WalletBudget < 0 {
		return fmt.Errorf("config.Validate: runner.wallet_budget %d must be >= 0", c.Runner.WalletBudget)
	}
	return nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("MIRRORSIM_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Sim.Slippage == 0 {
		cfg.Sim.Slippage = 0.005 // 50 bps
	}
	if cfg.Sim.MinSampleSize == 0 {
		cfg.Sim.MinSampleSize = 5
	}
	if cfg.Sim.LookbackTrades == 0 {
		cfg.Sim.LookbackTrades = 100
	}
	if cfg.Sim.InitialCapital == 0 {
		cfg.Sim.InitialCapital = 1000
	}
	if cfg.Sim.MinPositionValue == 0 {
		cfg.Sim.MinPositionValue = 1.0
	}
	if cfg.Sim.MaxDrawdownFlag == 0 {
		cfg.Sim.MaxDrawdownFlag = 0.30
	}
	if cfg.Sim.SignificanceAlpha == 0 {
		cfg.Sim.SignificanceAlpha = 0.10
	}
	if cfg.Runner.Workers <= 0 {
		cfg.Runner.Workers = 8
	}
	if cfg.API.DataBase == "" {
		cfg.API.DataBase = "https://data-api.polymarket.com"
	}
	if cfg.API.CLOBBase == "" {
		cfg.API.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "mirrorsim.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
