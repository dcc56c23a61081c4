// stagecheck validates a bindings file and a stage layout together.
//
// Usage:
//
//	go run ./cmd/stagecheck [-config path] [-bindings path] [-stage path] [-strict]
//
// It prints handler diagnostics and the stage tiles no handler is bound to.
// Parse errors exit with status 1; with -strict, so do warnings.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/blastgrid/server/internal/config"
	"github.com/blastgrid/server/internal/data"
	"github.com/blastgrid/server/internal/handler"
	"github.com/blastgrid/server/internal/world"
	"go.uber.org/zap"
)

func main() {
	cfgPath := flag.String("config", "", "config file (default: $"+config.EnvPath+" or "+config.DefaultPath+")")
	bindingsPath := flag.String("bindings", "", "bindings YAML (default: from config)")
	stagePath := flag.String("stage", "", "stage YAML (default: from config)")
	strict := flag.Bool("strict", false, "treat warnings as errors")
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stagecheck: %v\n", err)
		os.Exit(1)
	}
	if *bindingsPath == "" {
		*bindingsPath = cfg.Data.Bindings
	}
	if *stagePath == "" {
		*stagePath = cfg.Data.Stage
	}

	warnings, err := check(os.Stdout, *bindingsPath, *stagePath, cfg.Handlers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stagecheck: %v\n", err)
		os.Exit(1)
	}
	if *strict && warnings > 0 {
		os.Exit(1)
	}
}

// loadConfig reads the config when one is available. A missing default
// config is not an error; the built-in defaults are used.
func loadConfig(path string) (*config.Config, error) {
	explicit := path != ""
	if !explicit {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// check loads both files and writes a report to w. It returns the number of
// warnings found.
func check(w io.Writer, bindingsPath, stagePath string, hcfg config.HandlersConfig) (int, error) {
	bindings, err := data.LoadBindings(bindingsPath)
	if err != nil {
		return 0, err
	}
	stage, err := data.LoadStage(stagePath)
	if err != nil {
		return 0, err
	}
	groups, err := handler.Build(bindings.Bindings, hcfg)
	if err != nil {
		return 0, err
	}

	reg := handler.NewRegistry(zap.NewNop())
	reg.Add(groups...)
	diag := reg.Rebuild()

	fmt.Fprintf(w, "stage %q: %d tiles, %d actors, %d timeline entries\n",
		stage.Name, len(stage.Tiles), len(stage.Actors), len(stage.Timeline))
	fmt.Fprintf(w, "handlers: %d groups, %d capability bindings\n", diag.Groups, diag.Bindings)

	warnings := 0
	for _, d := range diag.Duplicates {
		fmt.Fprintf(w, "warn: tile %q %s bound by %q and %q; %q wins\n",
			d.Tile, d.Capability, d.Replaced, d.Winner, d.Winner)
		warnings++
	}
	if diag.EmptyTiles > 0 {
		fmt.Fprintf(w, "warn: %d empty tile names in bindings\n", diag.EmptyTiles)
		warnings++
	}
	for _, name := range diag.Inert {
		fmt.Fprintf(w, "warn: group %q implements no capability\n", name)
		warnings++
	}

	for _, layer := range []world.Layer{world.LayerDestructible, world.LayerIndestructible} {
		for _, tile := range stage.TileIDs(layer) {
			if !reg.Bound(tile) {
				fmt.Fprintf(w, "note: %s tile %q has no handler (default reaction)\n", layer, tile)
			}
		}
	}
	if warnings == 0 {
		fmt.Fprintln(w, "ok")
	}
	return warnings, nil
}
