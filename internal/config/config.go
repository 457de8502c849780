// Package config loads the viewer's tuning file. All fields have working
// defaults so the binary runs without any file present.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root of the yaml tuning file.
type Config struct {
	Window WindowConfig `yaml:"window"`
	World  WorldConfig  `yaml:"world"`
	Camera CameraConfig `yaml:"camera"`
	// TracePath enables streaming event tracing when non-empty.
	TracePath string `yaml:"trace_path"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Vsync  bool   `yaml:"vsync"`
	Title  string `yaml:"title"`
}

type WorldConfig struct {
	Seed        int64 `yaml:"seed"`
	ChunkRadius int   `yaml:"chunk_radius"`
}

type CameraConfig struct {
	MoveSpeed float32 `yaml:"move_speed"`
	FOV       float32 `yaml:"fov"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Vsync:  true,
			Title:  "terrain",
		},
		World: WorldConfig{
			Seed:        1,
			ChunkRadius: 4,
		},
		Camera: CameraConfig{
			MoveSpeed: 12,
			FOV:       70,
		},
	}
}

// Load reads a yaml config file over the defaults. A missing file is not
// an error; a malformed or invalid one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Window.Width < 1 || c.Window.Height < 1 {
		return fmt.Errorf("window size %dx%d is invalid", c.Window.Width, c.Window.Height)
	}
	if c.World.ChunkRadius < 1 {
		return fmt.Errorf("chunk_radius must be at least 1, got %d", c.World.ChunkRadius)
	}
	if c.Camera.MoveSpeed <= 0 {
		return fmt.Errorf("move_speed must be positive, got %v", c.Camera.MoveSpeed)
	}
	if c.Camera.FOV < 20 || c.Camera.FOV > 90 {
		return fmt.Errorf("fov %v out of range 20-90", c.Camera.FOV)
	}
	return nil
}
