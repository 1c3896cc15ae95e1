package config

import "io"

// ConfigBuilder provides a fluent API for building Config instances.
type ConfigBuilder struct {
	cfg *Config
}

// NewConfigBuilder creates a new ConfigBuilder with default values.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: NewConfig(),
	}
}

// From starts the builder from an existing configuration, typically one
// loaded from a file that flags then override.
func From(cfg *Config) *ConfigBuilder {
	c := *cfg
	return &ConfigBuilder{cfg: &c}
}

// Build returns the built Config.
func (b *ConfigBuilder) Build() *Config {
	return b.cfg
}

// WithLevel sets the evaluation level.
func (b *ConfigBuilder) WithLevel(level int) *ConfigBuilder {
	b.cfg.Search.Level = level
	return b
}

// WithForesight enables alpha-beta lookahead to depth plies.
func (b *ConfigBuilder) WithForesight(enabled bool, depth int) *ConfigBuilder {
	b.cfg.Search.Foresight = enabled
	if depth > 0 {
		b.cfg.Search.Depth = depth
	}
	return b
}

// WithTolerance sets the greedy tolerance.
func (b *ConfigBuilder) WithTolerance(tol float64) *ConfigBuilder {
	b.cfg.Search.Tolerance = tol
	return b
}

// WithWorkers sets the number of search workers.
func (b *ConfigBuilder) WithWorkers(n int) *ConfigBuilder {
	b.cfg.Search.Workers = n
	return b
}

// WithSeed fixes the random seed.
func (b *ConfigBuilder) WithSeed(seed uint64) *ConfigBuilder {
	b.cfg.Search.Seed = seed
	return b
}

// WithLogLevel sets the log level name.
func (b *ConfigBuilder) WithLogLevel(level string) *ConfigBuilder {
	b.cfg.Log.Level = level
	return b
}

// WithJSONLogs switches log output to JSON.
func (b *ConfigBuilder) WithJSONLogs(enabled bool) *ConfigBuilder {
	if enabled {
		b.cfg.Log.Format = LogJSON
	} else {
		b.cfg.Log.Format = LogConsole
	}
	return b
}

// WithAddr sets the server listen address.
func (b *ConfigBuilder) WithAddr(addr string) *ConfigBuilder {
	b.cfg.Server.Addr = addr
	return b
}

// WithVariantsFile replaces the embedded variant table.
func (b *ConfigBuilder) WithVariantsFile(path string) *ConfigBuilder {
	b.cfg.Data.VariantsFile = path
	return b
}

// WithCatalogFile replaces the embedded piece catalog.
func (b *ConfigBuilder) WithCatalogFile(path string) *ConfigBuilder {
	b.cfg.Data.CatalogFile = path
	return b
}

// WithSnapshotFile sets where sessions are saved.
func (b *ConfigBuilder) WithSnapshotFile(path string) *ConfigBuilder {
	b.cfg.Data.SnapshotFile = path
	return b
}

// WithOutput sets the output writer.
func (b *ConfigBuilder) WithOutput(w io.Writer) *ConfigBuilder {
	b.cfg.OutputFile = w
	return b
}

// WithLogOutput sets the log writer.
func (b *ConfigBuilder) WithLogOutput(w io.Writer) *ConfigBuilder {
	b.cfg.LogFile = w
	return b
}
