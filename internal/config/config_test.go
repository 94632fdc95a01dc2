package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := DefaultPipelineConfig()
	if cfg.Video != want.Video {
		t.Fatalf("video config = %+v, want %+v", cfg.Video, want.Video)
	}
	if cfg.Render.Scheme != "rgb" {
		t.Fatalf("scheme = %q, want rgb", cfg.Render.Scheme)
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coinrun.yaml")
	body := "data_root: /data/runs\nvideo:\n  fps: 60\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataRoot != "/data/runs" {
		t.Fatalf("data_root = %q", cfg.DataRoot)
	}
	if cfg.Video.FPS != 60 {
		t.Fatalf("fps = %d, want 60", cfg.Video.FPS)
	}
}

func TestLoadMissingCustomPathFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing custom config")
	}
}
