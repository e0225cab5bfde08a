package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	if cfg.Master.ListenAddr != def.Master.ListenAddr {
		t.Fatalf("ListenAddr = %q, want default %q", cfg.Master.ListenAddr, def.Master.ListenAddr)
	}
	if cfg.Histogram.NumBuckets != DefaultHistogramBuckets {
		t.Fatalf("NumBuckets = %d, want default %d", cfg.Histogram.NumBuckets, DefaultHistogramBuckets)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Master.PingPeriod.Get() != DefaultPingPeriod {
		t.Fatalf("PingPeriod = %v, want %v", cfg.Master.PingPeriod.Get(), DefaultPingPeriod)
	}
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loadcoord.yaml")
	contents := []byte(`
master:
  listenAddr: ":9999"
  slaves:
    - "http://slave-1:7080"
    - "http://slave-2:7080"
  pingPeriod: "10s"
`)
	if err := os.WriteFile(path, contents, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Master.ListenAddr != ":9999" {
		t.Fatalf("ListenAddr = %q, want :9999", cfg.Master.ListenAddr)
	}
	if len(cfg.Master.Slaves) != 2 {
		t.Fatalf("Slaves = %v, want 2 entries", cfg.Master.Slaves)
	}
	if cfg.Master.PingPeriod.Get().String() != "10s" {
		t.Fatalf("PingPeriod = %v, want 10s", cfg.Master.PingPeriod.Get())
	}
	if cfg.Histogram.NumBuckets != DefaultHistogramBuckets {
		t.Fatalf("NumBuckets should fall back to default, got %d", cfg.Histogram.NumBuckets)
	}
}
