package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PLC.Slot != 2 || cfg.PLC.RequestedPDULength != 480 {
		t.Fatalf("unexpected defaults: %+v", cfg.PLC)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.PLC.Address = "10.0.0.5:102"
	cfg.PLC.Rack = 0
	cfg.PLC.Slot = 1
	cfg.Publish.Enabled = true
	cfg.Publish.Broker = "tcp://localhost:1883"
	cfg.Publish.Tags = []TagConfig{{Name: "temp", Address: "DB1.DBW0", Size: 2}}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.PLC.Address != "10.0.0.5:102" || loaded.PLC.Slot != 1 {
		t.Fatalf("loaded PLC config = %+v", loaded.PLC)
	}
	if !loaded.Publish.Enabled || loaded.Publish.Broker != "tcp://localhost:1883" {
		t.Fatalf("loaded publish config = %+v", loaded.Publish)
	}
	if len(loaded.Publish.Tags) != 1 || loaded.Publish.Tags[0].Name != "temp" {
		t.Fatalf("loaded tags = %+v", loaded.Publish.Tags)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("plc: [this is not a mapping"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}
