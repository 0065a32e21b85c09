package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/Hila-Propack/eto-manufacturing-dashboard/config"
)

func TestDaemonServesSampleData(t *testing.T) {
	cfg := config.Default()
	cfg.Dashboard.Addr = "127.0.0.1:0"
	cfg.Dashboard.DatabaseURL = ""

	d, err := newDaemon(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := d.Stop(); err != nil {
			t.Error(err)
		}
	}()

	if d.refresher.Current() == nil {
		t.Fatal("Expected dataset loaded after start")
	}
	if expected, actual := "sample", d.refresher.Current().Source; actual != expected {
		t.Errorf("Expected source=%v but actual=%v", expected, actual)
	}

	resp, err := http.Get(fmt.Sprintf("http://%v/api/v1/summary", d.ws.Addr()))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if expected, actual := http.StatusOK, resp.StatusCode; actual != expected {
		t.Errorf("Expected status=%v but actual=%v", expected, actual)
	}
}

func TestMemoryProfilingWritesProfile(t *testing.T) {
	if webCmd.Flags().Lookup("memory-profiling") == nil {
		t.Fatal("Expected web command to expose --memory-profiling")
	}

	dir := t.TempDir()
	p := startMemoryProfiling(dir)
	p.Stop()

	if _, err := os.Stat(filepath.Join(dir, "mem.pprof")); err != nil {
		t.Errorf("Expected memory profile to be written: %s", err)
	}
}
