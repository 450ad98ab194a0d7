package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alejandrodnm/monopolyarena/config"
	"github.com/alejandrodnm/monopolyarena/internal/adapters/notify"
	"github.com/alejandrodnm/monopolyarena/internal/adapters/openrouter"
	"github.com/alejandrodnm/monopolyarena/internal/adapters/telemetry"
	"github.com/alejandrodnm/monopolyarena/internal/application/coordinator"
	"github.com/alejandrodnm/monopolyarena/internal/application/pipeline"
	"github.com/alejandrodnm/monopolyarena/internal/players"
	"github.com/alejandrodnm/monopolyarena/internal/ports"
)

type cliOptions struct {
	mode               string
	seed               int64
	playersPath        string
	runID              string
	runDir             string
	stopAfterDecisions int
	mock               bool
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	mode := flag.String("mode", "headless", "headless|replay|serve")
	seed := flag.Int64("seed", 0, "deterministic game seed")
	playersPath := flag.String("players", "", "path to players.json (default: 4 seats with the default model)")
	runID := flag.String("run-id", "", "explicit run id (default: derived from seed and lineup)")
	runDir := flag.String("run-dir", "", "recorded run directory (replay mode)")
	maxTurns := flag.Int("max-turns", 0, "override arena.max_turns")
	tsStepMs := flag.Int64("ts-step-ms", 0, "override arena.ts_step_ms")
	stopAfter := flag.Int("stop-after-decisions", 0, "stop the run after N resolved decisions")
	mock := flag.Bool("mock", false, "use the deterministic scripted policy instead of OpenRouter")
	addr := flag.String("addr", "", "gateway listen address (serve mode, overrides config)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *maxTurns > 0 {
		cfg.Arena.MaxTurns = *maxTurns
	}
	if *tsStepMs > 0 {
		cfg.Arena.TsStepMs = *tsStepMs
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "err", err)
		os.Exit(1)
	}

	opts := cliOptions{
		mode:               *mode,
		seed:               *seed,
		playersPath:        *playersPath,
		runID:              *runID,
		runDir:             *runDir,
		stopAfterDecisions: *stopAfter,
		mock:               *mock,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch opts.mode {
	case "headless":
		runHeadless(ctx, cfg, opts)
	case "replay":
		runReplay(opts.runDir)
	case "serve":
		runServe(ctx, cfg, opts)
	default:
		slog.Error("unknown mode", "mode", opts.mode)
		os.Exit(2)
	}
}

// loadConfig carga el YAML si existe; sin archivo se usan los defaults y las
// variables de entorno.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return config.Load(path)
}

// loadLineup resuelve la alineación: players.json o los 4 asientos por
// defecto.
func loadLineup(cfg *config.Config, opts cliOptions) ([]players.Player, error) {
	if opts.playersPath != "" {
		return players.Load(opts.playersPath, cfg.OpenRouter.DefaultModel)
	}
	return players.Default(cfg.OpenRouter.DefaultModel), nil
}

// policyFactory decide quién juega: el pipeline contra OpenRouter o la
// política determinista de -mock.
func policyFactory(cfg *config.Config, mock bool) coordinator.PolicyFactory {
	if mock {
		return func(ports.Recorder, ports.Barrier, []players.Player) ports.DecisionPolicy {
			return pipeline.ScriptedPolicy{}
		}
	}
	client := openrouter.NewClient(cfg.OpenRouter, slog.Default())
	return func(rec ports.Recorder, barrier ports.Barrier, lineup []players.Player) ports.DecisionPolicy {
		return pipeline.New(client, rec, barrier, lineup, slog.Default())
	}
}

// newCoordinator arma el coordinador con índice SQLite y resumen en consola.
func newCoordinator(cfg *config.Config, opts cliOptions) (*coordinator.Coordinator, *telemetry.SQLiteIndex, func(), error) {
	if err := os.MkdirAll(cfg.Arena.RunsDir, 0o755); err != nil {
		return nil, nil, nil, err
	}
	idx, err := telemetry.NewSQLiteIndex(filepath.Join(cfg.Arena.RunsDir, "index.db"))
	if err != nil {
		return nil, nil, nil, err
	}

	coordCfg := coordinator.Config{
		RunsDir:            cfg.Arena.RunsDir,
		MaxTurns:           cfg.Arena.MaxTurns,
		TsStepMs:           cfg.Arena.TsStepMs,
		AllowExtraTurns:    *cfg.Arena.AllowExtraTurns,
		EventDelay:         cfg.EventDelay(),
		StopAfterDecisions: opts.stopAfterDecisions,
	}
	c := coordinator.New(coordCfg, idx, notify.NewConsole(), policyFactory(cfg, opts.mock), slog.Default())
	return c, idx, func() { idx.Close() }, nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
