package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPath overrides the default config location.
const EnvPath = "BLASTGRID_CONFIG"

const DefaultPath = "config/blastgrid.toml"

type Config struct {
	Sim       SimConfig       `toml:"sim"`
	Bomb      BombConfig      `toml:"bomb"`
	Explosion ExplosionConfig `toml:"explosion"`
	Handlers  HandlersConfig  `toml:"handlers"`
	Data      DataConfig      `toml:"data"`
	Logging   LoggingConfig   `toml:"logging"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Journal   JournalConfig   `toml:"journal"`
}

type SimConfig struct {
	TickRate time.Duration `toml:"tick_rate"`
	CellSize float64       `toml:"cell_size"`
	MaxTicks int           `toml:"max_ticks"` // 0 = until the stage ends
	Realtime bool          `toml:"realtime"`  // sleep between ticks instead of running flat out
}

// BombConfig holds defaults for bombs placed without explicit values.
type BombConfig struct {
	Fuse   time.Duration `toml:"fuse"`
	Radius int           `toml:"radius"`
	Pierce bool          `toml:"pierce"`
}

type ExplosionConfig struct {
	SegmentDuration time.Duration `toml:"segment_duration"`
	DebrisPrefab    string        `toml:"debris_prefab"` // spawned where the default reaction clears a tile
	BreakSfx        string        `toml:"break_sfx"`
}

type HandlersConfig struct {
	Dynamite  DynamiteConfig  `toml:"dynamite"`
	Power     PowerConfig     `toml:"power"`
	Resurrect ResurrectConfig `toml:"resurrect"`
	Push      PushConfig      `toml:"push"`
	Magnet    MagnetConfig    `toml:"magnet"`
	Boiler    BoilerConfig    `toml:"boiler"`
}

type DynamiteConfig struct {
	Radius int           `toml:"radius"`
	Delay  time.Duration `toml:"delay"`
}

type PowerConfig struct {
	Boost int `toml:"boost"`
}

type ResurrectConfig struct {
	Delay     time.Duration `toml:"delay"`
	Poll      time.Duration `toml:"poll"`
	Warning   time.Duration `toml:"warning"`
	Animation time.Duration `toml:"animation"`
}

type PushConfig struct {
	Duration time.Duration `toml:"duration"`
}

type MagnetConfig struct {
	Interval time.Duration `toml:"interval"`
	Range    int           `toml:"range"`
	Step     time.Duration `toml:"step"`
}

type BoilerConfig struct {
	Delay    time.Duration `toml:"delay"`
	Duration time.Duration `toml:"duration"`
	Steps    int           `toml:"steps"`
}

type DataConfig struct {
	Bindings   string `toml:"bindings"`
	Stage      string `toml:"stage"`
	ScriptsDir string `toml:"scripts_dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// JournalConfig enables the PostgreSQL detonation journal when DSN is set.
type JournalConfig struct {
	DSN        string `toml:"dsn"`
	MaxConns   int32  `toml:"max_conns"`
	FlushEvery int    `toml:"flush_every"` // ticks
	BatchSize  int    `toml:"batch_size"`
}

func (j JournalConfig) Enabled() bool { return j.DSN != "" }

// Path returns the config path from the environment, or DefaultPath.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes TOML over the defaults. name is only used in errors.
func Parse(data []byte, name string) (*Config, error) {
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", name, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", name, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config { return defaults() }

func (c *Config) validate() error {
	var errs []error
	if c.Sim.TickRate <= 0 {
		errs = append(errs, errors.New("sim.tick_rate must be positive"))
	}
	if c.Sim.CellSize <= 0 {
		errs = append(errs, errors.New("sim.cell_size must be positive"))
	}
	if c.Bomb.Radius < 0 {
		errs = append(errs, errors.New("bomb.radius must not be negative"))
	}
	if c.Explosion.SegmentDuration <= 0 {
		errs = append(errs, errors.New("explosion.segment_duration must be positive"))
	}
	if c.Handlers.Boiler.Steps < 1 {
		errs = append(errs, errors.New("handlers.boiler.steps must be at least 1"))
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		errs = append(errs, errors.New("metrics.addr is required when metrics are enabled"))
	}
	return errors.Join(errs...)
}

func defaults() *Config {
	return &Config{
		Sim: SimConfig{
			TickRate: 50 * time.Millisecond,
			CellSize: 1,
			MaxTicks: 6000,
		},
		Bomb: BombConfig{
			Fuse:   3 * time.Second,
			Radius: 2,
		},
		Explosion: ExplosionConfig{
			SegmentDuration: 500 * time.Millisecond,
			BreakSfx:        "break",
		},
		Handlers: HandlersConfig{
			Dynamite: DynamiteConfig{
				Radius: 2,
				Delay:  500 * time.Millisecond,
			},
			Power: PowerConfig{
				Boost: 10,
			},
			Resurrect: ResurrectConfig{
				Delay:     5 * time.Second,
				Poll:      100 * time.Millisecond,
				Warning:   time.Second,
				Animation: 500 * time.Millisecond,
			},
			Push: PushConfig{
				Duration: 300 * time.Millisecond,
			},
			Magnet: MagnetConfig{
				Interval: 500 * time.Millisecond,
				Range:    5,
				Step:     150 * time.Millisecond,
			},
			Boiler: BoilerConfig{
				Delay:    time.Second,
				Duration: 300 * time.Millisecond,
				Steps:    6,
			},
		},
		Data: DataConfig{
			Bindings:   "data/yaml/bindings.yaml",
			Stage:      "data/yaml/stages/demo.yaml",
			ScriptsDir: "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Addr: "127.0.0.1:9464",
		},
		Journal: JournalConfig{
			MaxConns:   4,
			FlushEvery: 20,
			BatchSize:  256,
		},
	}
}
