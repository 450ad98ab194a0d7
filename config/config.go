package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa de la arena.
type Config struct {
	Arena      ArenaConfig      `yaml:"arena"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
}

// ArenaConfig controla la partida y la telemetría.
type ArenaConfig struct {
	RunsDir         string `yaml:"runs_dir"`
	MaxTurns        int    `yaml:"max_turns"`
	TsStepMs        int64  `yaml:"ts_step_ms"`
	AllowExtraTurns *bool  `yaml:"allow_extra_turns"`
	EventDelayMs    int    `yaml:"event_delay_ms"` // ritmo de difusión para espectadores; 0 en tests
}

// OpenRouterConfig contiene el acceso al proveedor de modelos.
type OpenRouterConfig struct {
	BaseURL           string  `yaml:"base_url"`
	APIKey            string  `yaml:"api_key"` // normalmente via OPENROUTER_API_KEY
	DefaultModel      string  `yaml:"default_model"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	MaxRetries        int     `yaml:"max_retries"`
}

// ServerConfig controla el gateway WebSocket.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las variables de entorno sobreescriben los valores del YAML.
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

	return &cfg, nil
}

// Default devuelve la configuración por defecto cuando no hay YAML.
func Default() *Config {
	_ = godotenv.Load()
	cfg := &Config{}
	applyEnvOverrides(cfg)
	setDefaults(cfg)
	return cfg
}

// RequestTimeout devuelve el timeout por petición al proveedor.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.OpenRouter.TimeoutSeconds) * time.Second
}

// EventDelay devuelve la pausa entre difusiones como time.Duration.
func (c *Config) EventDelay() time.Duration {
	return time.Duration(c.Arena.EventDelayMs) * time.Millisecond
}

// Validate comprueba los valores que no admiten default.
func (c *Config) Validate() error {
	if c.Arena.MaxTurns <= 0 {
		return fmt.Errorf("config.Validate: arena.max_turns must be positive, got %d", c.Arena.MaxTurns)
	}
	if c.Arena.TsStepMs <= 0 {
		return fmt.Errorf("config.Validate: arena.ts_step_ms must be positive, got %d", c.Arena.TsStepMs)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config.Validate: unknown log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config.Validate: unknown log format %q", c.Log.Format)
	}
	return nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		cfg.OpenRouter.APIKey = v
	}
	if v := os.Getenv("OPENROUTER_MODEL"); v != "" {
		cfg.OpenRouter.DefaultModel = v
	}
	if v := os.Getenv("ARENA_RUNS_DIR"); v != "" {
		cfg.Arena.RunsDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Arena.RunsDir == "" {
		cfg.Arena.RunsDir = "runs"
	}
	if cfg.Arena.MaxTurns <= 0 {
		cfg.Arena.MaxTurns = 20
	}
	if cfg.Arena.TsStepMs <= 0 {
		cfg.Arena.TsStepMs = 250
	}
	if cfg.Arena.AllowExtraTurns == nil {
		v := true
		cfg.Arena.AllowExtraTurns = &v
	}
	if cfg.OpenRouter.BaseURL == "" {
		cfg.OpenRouter.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.OpenRouter.DefaultModel == "" {
		cfg.OpenRouter.DefaultModel = "openai/gpt-oss-120b"
	}
	if cfg.OpenRouter.RequestsPerSecond <= 0 {
		cfg.OpenRouter.RequestsPerSecond = 2
	}
	if cfg.OpenRouter.TimeoutSeconds <= 0 {
		cfg.OpenRouter.TimeoutSeconds = 120
	}
	if cfg.OpenRouter.MaxRetries <= 0 {
		cfg.OpenRouter.MaxRetries = 2
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8700"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
