package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-pipeparams/pkg/literal"
	"github.com/goliatone/go-pipeparams/pkg/params"
	"github.com/goliatone/go-pipeparams/pkg/schema"
)

func newRegistry(t *testing.T) *params.Registry {
	t.Helper()
	rows := []schema.Row{
		{Key: "highpass", Group: "Filtering", Default: "1", GUIType: "slider", GUIArgs: "{'min_val': 0, 'max_val': 300}"},
		{Key: "ica_method", Group: "ICA", Default: "fastica", GUIType: "combo", GUIArgs: "{'options': ['fastica', 'infomax', 'picard']}"},
		{Key: "t_epoch", Group: "Epochs", Default: "(-0.5, 1.5)", GUIType: "tuple", GUIArgs: "{'max_val': 10}"},
	}
	reg := params.NewRegistry()
	if err := reg.Load(rows); err != nil {
		t.Fatalf("load registry: %v", err)
	}
	return reg
}

func roundTrip(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	source := newRegistry(t)
	if err := source.Set("highpass", 40); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := source.Set("t_epoch", []float64{-0.2, 0.8}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Save(ctx, source); err != nil {
		t.Fatalf("save: %v", err)
	}

	target := newRegistry(t)
	if err := s.Load(ctx, target); err != nil {
		t.Fatalf("load: %v", err)
	}

	got, err := target.Get("highpass")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Equal(literal.Int(40)) {
		t.Fatalf("highpass: want 40, got %v", got)
	}
	got, _ = target.Get("t_epoch")
	if !got.Equal(literal.Tuple(-0.2, 0.8)) {
		t.Fatalf("t_epoch: want (-0.2, 0.8), got %v", got)
	}
	// Untouched parameters stay at their defaults.
	got, _ = target.Get("ica_method")
	if !got.Equal(literal.String("fastica")) {
		t.Fatalf("ica_method: want default, got %v", got)
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	roundTrip(t, s)
}

func TestFileStore_MissingFile(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	reg := newRegistry(t)
	if err := s.Load(context.Background(), reg); err != nil {
		t.Fatalf("missing file should load cleanly: %v", err)
	}
	if len(reg.Overrides()) != 0 {
		t.Fatal("missing file produced overrides")
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "overrides.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer s.Close()
	roundTrip(t, s)
}

func TestApplyOverrides_SkipsInvalidEntries(t *testing.T) {
	reg := newRegistry(t)
	err := applyOverrides(reg, map[string]string{
		"highpass":   "40",
		"ica_method": "'unknown'", // no longer a valid option
		"removed":    "1",         // key dropped from the schema
	})
	if err == nil {
		t.Fatal("expected joined errors for stale entries")
	}
	// The valid entry must still land.
	got, _ := reg.Get("highpass")
	if !got.Equal(literal.Int(40)) {
		t.Fatalf("valid override lost: %v", got)
	}
	if reg.HasOverride("ica_method") {
		t.Fatal("invalid override installed")
	}
}
