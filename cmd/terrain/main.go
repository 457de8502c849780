package main

import (
	"flag"
	"log/slog"
	"os"
	"runtime"

	"github.com/mkrall/go-terrain/internal/config"
	"github.com/mkrall/go-terrain/internal/trace"
	"github.com/mkrall/go-terrain/pkg/render"
	"github.com/mkrall/go-terrain/pkg/stream"
)

func init() {
	// OpenGL requires all context calls on the same OS thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "path to yaml config file")
	seed := flag.Int64("seed", 0, "world seed (overrides config when non-zero)")
	radius := flag.Int("radius", 0, "chunk streaming radius (overrides config when non-zero)")
	tracePath := flag.String("trace", "", "write streaming events to this zstd JSONL file")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("loading config", "err", err)
		os.Exit(1)
	}
	if *seed != 0 {
		cfg.World.Seed = *seed
	}
	if *radius != 0 {
		cfg.World.ChunkRadius = *radius
	}
	if *tracePath != "" {
		cfg.TracePath = *tracePath
	}

	var sink stream.TraceSink
	if cfg.TracePath != "" {
		recorder, err := trace.NewRecorder(cfg.TracePath)
		if err != nil {
			log.Error("opening trace file", "path", cfg.TracePath, "err", err)
			os.Exit(1)
		}
		defer recorder.Close()
		sink = recorder
		log.Info("tracing streaming events", "path", cfg.TracePath)
	}

	renderer, err := render.NewRenderer(render.Config{
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		Title:     cfg.Window.Title,
		Vsync:     cfg.Window.Vsync,
		Seed:      cfg.World.Seed,
		Radius:    cfg.World.ChunkRadius,
		MoveSpeed: cfg.Camera.MoveSpeed,
		FOV:       cfg.Camera.FOV,
		Logger:    log,
		Trace:     sink,
	})
	if err != nil {
		log.Error("initializing renderer", "err", err)
		os.Exit(1)
	}

	log.Info("starting terrain viewer",
		"seed", cfg.World.Seed,
		"radius", cfg.World.ChunkRadius)
	renderer.Run()
}
