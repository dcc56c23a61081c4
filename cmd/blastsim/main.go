package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/blastgrid/server/internal/config"
	"github.com/blastgrid/server/internal/core/ecs"
	"github.com/blastgrid/server/internal/core/event"
	coresys "github.com/blastgrid/server/internal/core/system"
	"github.com/blastgrid/server/internal/data"
	"github.com/blastgrid/server/internal/explosion"
	"github.com/blastgrid/server/internal/fx"
	"github.com/blastgrid/server/internal/grid"
	"github.com/blastgrid/server/internal/handler"
	"github.com/blastgrid/server/internal/metrics"
	"github.com/blastgrid/server/internal/persist"
	"github.com/blastgrid/server/internal/schedule"
	"github.com/blastgrid/server/internal/scripting"
	"github.com/blastgrid/server/internal/system"
	"github.com/blastgrid/server/internal/world"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(stage string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              blastsim  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mstage:\033[0m %s\n\n", stage)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main simulation logic ─────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := config.Path()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Load data
	stage, err := data.LoadStage(cfg.Data.Stage)
	if err != nil {
		return fmt.Errorf("load stage: %w", err)
	}
	printBanner(stage.Name)

	printSection("data")
	bindings, err := data.LoadBindings(cfg.Data.Bindings)
	if err != nil {
		return fmt.Errorf("load bindings: %w", err)
	}
	printStat("handler bindings", bindings.Count())
	printStat("stage tiles", len(stage.Tiles))
	printStat("stage actors", len(stage.Actors))
	printStat("timeline entries", len(stage.Timeline))

	groups, err := handler.Build(bindings.Bindings, cfg.Handlers)
	if err != nil {
		return fmt.Errorf("build handlers: %w", err)
	}
	reg := handler.NewRegistry(log.Named("handlers"))
	reg.Add(groups...)
	diag := reg.Rebuild()
	printStat("bound tiles", diag.Bindings)
	if n := len(diag.Duplicates); n > 0 {
		printStat("duplicate tile bindings", n)
	}

	var scripts *scripting.Engine
	if cfg.Data.ScriptsDir != "" {
		scripts, err = scripting.NewEngine(cfg.Data.ScriptsDir, log.Named("lua"))
		if err != nil {
			return fmt.Errorf("load scripts: %w", err)
		}
		defer scripts.Close()
		printOK("lua scripts loaded")
	}

	// 4. Metrics
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		promReg := prometheus.NewRegistry()
		m, err = metrics.New(promReg)
		if err != nil {
			return fmt.Errorf("init metrics: %w", err)
		}
		metrics.Serve(ctx, cfg.Metrics.Addr, promReg, log)
		printOK("metrics on " + cfg.Metrics.Addr)
	}

	// 5. World, clock, propagator
	ws := world.NewState(grid.Converter{CellSize: cfg.Sim.CellSize})
	owners := stage.Apply(ws)

	clock := schedule.NewScheduler()
	bus := event.NewBus()
	env := &handler.Env{
		World:     ws,
		Log:       log.Named("handlers"),
		Clock:     clock,
		Tasks:     schedule.NewTasks[grid.Cell](clock, log.Named("tasks")),
		BombTasks: schedule.NewTasks[ecs.EntityID](clock, log.Named("tasks")),
		Presenter: fx.NewLogPresenter(log.Named("fx")),
		Scripts:   scripts,
		Bus:       bus,
		Metrics:   m,
	}
	onOutcome := func(name string, outcome schedule.Outcome, reason string) {
		m.Task(outcome.String())
		if outcome == schedule.OutcomeAbandoned {
			event.Emit(bus, event.TaskAbandoned{Task: name, Reason: reason})
		}
	}
	env.Tasks.OnOutcome = onOutcome
	env.BombTasks.OnOutcome = onOutcome

	prop := explosion.New(env, reg, explosion.Options{
		SegmentDuration: cfg.Explosion.SegmentDuration,
		DebrisPrefab:    cfg.Explosion.DebrisPrefab,
		BreakSfx:        cfg.Explosion.BreakSfx,
		Bomb: explosion.BombDefaults{
			Fuse:   cfg.Bomb.Fuse,
			Radius: cfg.Bomb.Radius,
			Pierce: cfg.Bomb.Pierce,
		},
	})
	reg.StartAll(env)
	subscribeLogging(bus, log)

	// 6. Optional detonation journal
	var journal *system.JournalSystem
	if cfg.Journal.Enabled() {
		printSection("journal")
		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		db, err := persist.NewDB(dbCtx, cfg.Journal, log)
		if err != nil {
			cancel()
			return fmt.Errorf("journal db: %w", err)
		}
		defer db.Close()
		version, err := persist.RunMigrations(dbCtx, db.Pool)
		cancel()
		if err != nil {
			return fmt.Errorf("journal migrations: %w", err)
		}
		printOK(fmt.Sprintf("schema version %d", version))
		journal = system.NewJournalSystem(bus, persist.NewJournalRepo(db), stage.Name, log.Named("journal"),
			cfg.Journal.FlushEvery, cfg.Journal.BatchSize)
	}

	// 7. Create systems and register with runner
	done := make(chan struct{})
	stageSys := system.NewStageScriptSystem(prop, stage.Timeline, owners, log.Named("stage"))
	runner := coresys.NewRunner(log)
	runner.Register(stageSys)
	runner.Register(system.NewFuseSystem(ws, prop))
	runner.Register(system.NewSchedulerSystem(clock))
	runner.Register(system.NewBombWatchSystem(ws, prop, m))
	runner.Register(system.NewSegmentSystem(ws, log.Named("segments")))
	runner.Register(system.NewEventSystem(bus))
	if journal != nil {
		runner.Register(journal)
	}
	runner.Register(system.NewCleanupSystem(ws, stageSys, env, log, func() { close(done) }))

	// 8. Start the tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	printSection("running")
	printReady(fmt.Sprintf("tick %s, realtime %t", cfg.Sim.TickRate, cfg.Sim.Realtime))
	fmt.Println()

	var tickC <-chan time.Time
	if cfg.Sim.Realtime {
		ticker := time.NewTicker(cfg.Sim.TickRate)
		defer ticker.Stop()
		tickC = ticker.C
	}

	reason := "stage settled"
loop:
	for {
		if cfg.Sim.MaxTicks > 0 && runner.Ticks() >= uint64(cfg.Sim.MaxTicks) {
			reason = "max ticks reached"
			break
		}
		if tickC != nil {
			select {
			case <-tickC:
			case sig := <-shutdownCh:
				reason = "signal " + sig.String()
				break loop
			}
		} else {
			select {
			case sig := <-shutdownCh:
				reason = "signal " + sig.String()
				break loop
			default:
			}
		}
		runner.Tick(cfg.Sim.TickRate)
		select {
		case <-done:
			break loop
		default:
		}
	}

	// 9. Shutdown
	log.Info("simulation stopped",
		zap.String("reason", reason),
		zap.Uint64("ticks", runner.Ticks()),
		zap.Duration("sim_time", clock.Now()),
		zap.Int("bombs_left", ws.Bombs.Len()),
	)
	system.EndStage(env)
	if journal != nil {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		journal.Flush(flushCtx)
		cancel()
		stored, dropped := journal.Written()
		log.Info("journal closed", zap.Int("stored", stored), zap.Int("dropped", dropped))
	}
	stats := env.Tasks.Stats()
	log.Info("tile tasks",
		zap.Int("started", stats.Started),
		zap.Int("finished", stats.Finished),
		zap.Int("cancelled", stats.Cancelled),
		zap.Int("abandoned", stats.Abandoned),
	)
	return nil
}

// subscribeLogging reports stage-level events in the log.
func subscribeLogging(bus *event.Bus, log *zap.Logger) {
	event.Subscribe(bus, func(e event.PuzzleSolved) {
		log.Info("puzzle solved", zap.String("group", e.Group))
	})
	event.Subscribe(bus, func(e event.BlackoutToggled) {
		log.Info("blackout", zap.Bool("on", e.On))
	})
	event.Subscribe(bus, func(e event.TaskAbandoned) {
		log.Debug("task abandoned", zap.String("task", e.Task), zap.String("reason", e.Reason))
	})
	event.Subscribe(bus, func(e event.Detonated) {
		if e.Depth > 0 {
			log.Debug("chain reaction",
				zap.Stringer("blast", e.BlastID),
				zap.Int("depth", e.Depth),
				zap.Stringer("cell", e.Cell),
			)
		}
	})
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
