// Package config handles case configuration loading and management.
package config

import (
	"github.com/chazu/flowprep/pkg/domain"
)

// Config holds all case preparation settings.
type Config struct {
	Mesh       MeshConfig              `yaml:"mesh"`
	Sizing     domain.SizingConfig     `yaml:"sizing"`
	Refinement domain.RefinementConfig `yaml:"refinement"`
	Parallel   ParallelConfig          `yaml:"parallel"`
	Logging    LoggingConfig           `yaml:"logging"`
}

// MeshConfig holds base mesh generation settings.
type MeshConfig struct {
	BaseCellSize float64 `yaml:"base_cell_size"` // meters
	PreviewCells int     `yaml:"preview_cells"`  // tessellation resolution for previews
}

// ParallelConfig holds decomposition settings. Processors is an explicit
// count injected by the caller, never detected from the machine here.
type ParallelConfig struct {
	Processors int `yaml:"processors"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the standard wind-tunnel heuristics.
func Default() *Config {
	return &Config{
		Mesh: MeshConfig{
			BaseCellSize: 0.25,
			PreviewCells: 100,
		},
		Sizing:     domain.DefaultSizing(),
		Refinement: domain.DefaultRefinement(),
		Parallel: ParallelConfig{
			Processors: 1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
