package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lgbarn/fairychess-go/internal/errors"
)

// TestSearchConfig_Defaults verifies SearchConfig has sensible defaults
func TestSearchConfig_Defaults(t *testing.T) {
	cfg := NewSearchConfig()

	if cfg.Level != 3 {
		t.Errorf("Level = %d, want 3", cfg.Level)
	}
	if cfg.Foresight {
		t.Error("Foresight should be false by default")
	}
	if cfg.Depth != 2 {
		t.Errorf("Depth = %d, want 2", cfg.Depth)
	}
	if cfg.Tolerance != 4 {
		t.Errorf("Tolerance = %v, want 4", cfg.Tolerance)
	}
	if cfg.Workers != 0 {
		t.Errorf("Workers = %d, want 0", cfg.Workers)
	}
}

// TestSearchConfig_Validate verifies search config validation
func TestSearchConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SearchConfig)
		wantErr bool
	}{
		{"defaults are valid", func(*SearchConfig) {}, false},
		{"level 1", func(s *SearchConfig) { s.Level = 1 }, false},
		{"level 5", func(s *SearchConfig) { s.Level = 5 }, false},
		{"level 0", func(s *SearchConfig) { s.Level = 0 }, true},
		{"level 6", func(s *SearchConfig) { s.Level = 6 }, true},
		{"depth 0", func(s *SearchConfig) { s.Depth = 0 }, true},
		{"negative tolerance", func(s *SearchConfig) { s.Tolerance = -1 }, true},
		{"negative workers", func(s *SearchConfig) { s.Workers = -2 }, true},
		{"negative cache", func(s *SearchConfig) { s.CacheSize = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewSearchConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

// TestLogConfig_Validate verifies level and format checks
func TestLogConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LogConfig
		wantErr bool
	}{
		{"defaults", *NewLogConfig(), false},
		{"json debug", LogConfig{Level: "debug", Format: LogJSON}, false},
		{"trace", LogConfig{Level: "trace", Format: LogConsole}, false},
		{"unknown level", LogConfig{Level: "loud", Format: LogConsole}, true},
		{"empty level", LogConfig{Level: "", Format: LogConsole}, true},
		{"unknown format", LogConfig{Level: "info", Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestServerConfig_Validate verifies the listen address is required
func TestServerConfig_Validate(t *testing.T) {
	if err := NewServerConfig().Validate(); err != nil {
		t.Errorf("default Validate() error = %v", err)
	}
	if err := (&ServerConfig{}).Validate(); !errors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("empty Validate() error = %v, want ErrInvalidConfig", err)
	}
}

// TestConfig_SetOutput verifies output stream setting
func TestConfig_SetOutput(t *testing.T) {
	cfg := NewConfig()
	buf := &bytes.Buffer{}

	cfg.SetOutput(buf)

	if cfg.OutputFile != buf {
		t.Error("SetOutput did not set OutputFile")
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		check   func(*testing.T, *Config)
		wantErr bool
	}{
		{
			name: "empty document gives defaults",
			doc:  "",
			check: func(t *testing.T, cfg *Config) {
				if cfg.Search.Level != 3 || cfg.Server.Addr != "localhost:8080" {
					t.Errorf("Decode(\"\") = %+v, want defaults", cfg)
				}
			},
		},
		{
			name: "sections override defaults",
			doc: `
search:
  level: 5
  foresight: true
  seed: 42
log:
  level: debug
  format: json
server:
  addr: ":9000"
  allowed_origins: ["http://localhost:3000"]
data:
  snapshot_file: /tmp/save.yaml
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Search.Level != 5 || !cfg.Search.Foresight || cfg.Search.Seed != 42 {
					t.Errorf("Search = %+v", cfg.Search)
				}
				if cfg.Search.Depth != 2 {
					t.Errorf("Search.Depth = %d, want default 2", cfg.Search.Depth)
				}
				if cfg.Log.Level != "debug" || cfg.Log.Format != LogJSON {
					t.Errorf("Log = %+v", cfg.Log)
				}
				if cfg.Server.Addr != ":9000" || len(cfg.Server.AllowedOrigins) != 1 {
					t.Errorf("Server = %+v", cfg.Server)
				}
				if cfg.Data.SnapshotFile != "/tmp/save.yaml" {
					t.Errorf("Data.SnapshotFile = %q", cfg.Data.SnapshotFile)
				}
			},
		},
		{
			name:    "unknown key",
			doc:     "search:\n  speed: 3\n",
			wantErr: true,
		},
		{
			name:    "invalid value",
			doc:     "search:\n  level: 9\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			doc:     "search: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Decode(strings.NewReader(tt.doc))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrInvalidConfig) {
					t.Errorf("Decode() error = %v, want ErrInvalidConfig", err)
				}
				return
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fairychess.yaml")
	if err := os.WriteFile(path, []byte("search:\n  level: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Search.Level != 1 {
		t.Errorf("Search.Level = %d, want 1", cfg.Search.Level)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load(missing) should fail")
	}
}

// TestConfigBuilder verifies the builder pattern works correctly
func TestConfigBuilder(t *testing.T) {
	cfg := NewConfigBuilder().
		WithLevel(4).
		WithForesight(true, 3).
		WithWorkers(2).
		WithJSONLogs(true).
		WithAddr(":8081").
		Build()

	if cfg.Search.Level != 4 {
		t.Errorf("Level = %d, want 4", cfg.Search.Level)
	}
	if !cfg.Search.Foresight || cfg.Search.Depth != 3 {
		t.Errorf("Foresight = %v depth %d, want true depth 3", cfg.Search.Foresight, cfg.Search.Depth)
	}
	if cfg.Search.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Search.Workers)
	}
	if cfg.Log.Format != LogJSON {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	if cfg.Server.Addr != ":8081" {
		t.Errorf("Server.Addr = %q, want :8081", cfg.Server.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestFrom_DoesNotAlias(t *testing.T) {
	base := NewConfig()
	cfg := From(base).WithLevel(5).Build()

	if base.Search.Level != 3 {
		t.Errorf("base Level = %d, want 3", base.Search.Level)
	}
	if cfg.Search.Level != 5 {
		t.Errorf("Level = %d, want 5", cfg.Search.Level)
	}
}
