package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lgbarn/fairychess-go/internal/catalog"
	"github.com/lgbarn/fairychess-go/internal/chess"
	"github.com/lgbarn/fairychess-go/internal/config"
	"github.com/lgbarn/fairychess-go/internal/errors"
	"github.com/lgbarn/fairychess-go/internal/variant"
)

const gardnerOnly = `
- id: gardner
  name: Gardner Minichess
  size: 5
  castling: false
  promote2: [Q, R, B, N]
  placers:
    1: [R, N, B, Q, K]
    2: [P, P, P, P, P]
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadData(t *testing.T) {
	t.Run("built-in data", func(t *testing.T) {
		cat, reg, err := loadData(config.NewConfig())
		if err != nil {
			t.Fatalf("loadData() error = %v", err)
		}
		if cat.Len() == 0 || reg.Len() != variant.MustDefault().Len() {
			t.Errorf("loadData() = %d kinds, %d variants", cat.Len(), reg.Len())
		}
	})

	t.Run("variants file", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.Data.VariantsFile = writeTemp(t, "variants.yaml", gardnerOnly)
		_, reg, err := loadData(cfg)
		if err != nil {
			t.Fatalf("loadData() error = %v", err)
		}
		if reg.Len() != 1 {
			t.Errorf("reg.Len() = %d, want 1", reg.Len())
		}
		if _, err := reg.Lookup("standard"); !errors.Is(err, errors.ErrInvalidVariant) {
			t.Errorf("Lookup(standard) error = %v, want ErrInvalidVariant", err)
		}
	})

	t.Run("catalog file keeps built-in variants", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.Data.CatalogFile = filepath.Join("..", "..", "internal", "catalog", "kinds.yaml")
		_, reg, err := loadData(cfg)
		if err != nil {
			t.Fatalf("loadData() error = %v", err)
		}
		if reg.Len() != variant.MustDefault().Len() {
			t.Errorf("reg.Len() = %d, want %d", reg.Len(), variant.MustDefault().Len())
		}
	})

	t.Run("broken variants file names the file", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.Data.VariantsFile = writeTemp(t, "bad.yaml", "- id: x\n  size: 99\n")
		_, _, err := loadData(cfg)
		if err == nil || !strings.Contains(err.Error(), "bad.yaml") {
			t.Errorf("loadData() error = %v, want one naming bad.yaml", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.Data.CatalogFile = "/nonexistent/kinds.yaml"
		if _, _, err := loadData(cfg); err == nil {
			t.Error("loadData() expected error for missing catalog")
		}
	})
}

func TestWriteVariants(t *testing.T) {
	var buf bytes.Buffer
	if err := writeVariants(&buf, variant.MustDefault()); err != nil {
		t.Fatalf("writeVariants() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != variant.MustDefault().Len() {
		t.Fatalf("got %d lines, want %d", len(lines), variant.MustDefault().Len())
	}
	if !strings.HasPrefix(lines[0], "standard") || !strings.Contains(lines[0], "castling") {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.Contains(buf.String(), "chess960 start") {
		t.Errorf("chess960 should be marked as a random start:\n%s", buf.String())
	}
}

func TestNewRand_Seeded(t *testing.T) {
	a, b := newRand(7), newRand(7)
	for i := 0; i < 5; i++ {
		if x, y := a.Uint64(), b.Uint64(); x != y {
			t.Fatalf("draw %d: %d != %d with the same seed", i, x, y)
		}
	}
}

func TestStartOptions(t *testing.T) {
	t.Run("fixed position", func(t *testing.T) {
		defer saveRestoreInt(startNumber, variant.StandardPosition)()
		if got := len(startOptions(newRand(1))); got != 2 {
			t.Errorf("len(startOptions()) = %d, want 2", got)
		}

		v, err := variant.MustDefault().Lookup("chess960")
		if err != nil {
			t.Fatal(err)
		}
		st, err := v.Start(catalog.MustDefault(), startOptions(newRand(1))...)
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if pc, ok := st.Board.At(chess.MustParsePosition("e1")); !ok || pc.Kind != chess.King {
			t.Errorf("e1 = %v, want the king of the classical array", pc)
		}
	})

	t.Run("drawn position", func(t *testing.T) {
		defer saveRestoreInt(startNumber, -1)()
		if got := len(startOptions(newRand(1))); got != 1 {
			t.Errorf("len(startOptions()) = %d, want 1", got)
		}
	})
}
