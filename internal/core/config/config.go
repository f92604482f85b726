package config

import (
	"runtime"
	"time"
)

const (
	// FileName is the project file the settings are read from.
	FileName = "pyproject.toml"
	// Section is the pyproject table holding the settings.
	Section = "tool.docstring-generator"

	DefaultStyle     = "numpy"
	DefaultThreshold = 90
	DefaultChecker   = "builtin"
)

type Config struct {
	Style             string        `toml:"style"`
	CoverageThreshold int           `toml:"coverage_threshold"`
	Checker           string        `toml:"checker"`
	PydocstylePath    string        `toml:"pydocstyle_path"`
	CheckerRate       float64       `toml:"checker_rate"`
	Workers           int           `toml:"workers"`
	IncludePrivate    bool          `toml:"include_private"`
	Exclude           Exclude       `toml:"exclude"`
	Watch             Watch         `toml:"watch"`
	History           History       `toml:"history"`
	Observability     Observability `toml:"observability"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
	Project string `toml:"project"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

// pyproject is the subset of pyproject.toml that carries the settings.
type pyproject struct {
	Tool struct {
		DocstringGenerator Config `toml:"docstring-generator"`
	} `toml:"tool"`
}

// Default returns the canonical settings used when no usable configuration
// file exists.
func Default() *Config {
	cfg := &Config{
		Style:             DefaultStyle,
		CoverageThreshold: DefaultThreshold,
		Checker:           DefaultChecker,
		IncludePrivate:    true,
	}
	applyDefaults(cfg)
	return cfg
}

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n > 8 {
		n = 8
	}
	return n
}
