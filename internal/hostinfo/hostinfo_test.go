package hostinfo

import (
	"context"
	"errors"
	"runtime"
	"testing"
)

type failingCollector struct{}

func (failingCollector) Name() string { return "broken" }

func (failingCollector) Collect(context.Context, *Facts) error {
	return errors.New("unsupported")
}

func TestInspectorFacts(t *testing.T) {
	facts, err := New().Facts(context.Background())
	if err != nil {
		t.Logf("partial facts: %v", err)
	}
	if facts.OS != runtime.GOOS || facts.Arch != runtime.GOARCH {
		t.Errorf("expected %s/%s, got %s/%s", runtime.GOOS, runtime.GOARCH, facts.OS, facts.Arch)
	}
	if facts.GoVersion == "" {
		t.Error("expected go version")
	}
}

func TestCPUCollector(t *testing.T) {
	var f Facts
	if err := (&CPUCollector{}).Collect(context.Background(), &f); err != nil {
		t.Skipf("cpu facts unavailable: %v", err)
	}
	if f.LogicalCores < 1 {
		t.Errorf("expected at least one core, got %d", f.LogicalCores)
	}
	if f.CPUUsagePercent < 0 || f.CPUUsagePercent > 100 {
		t.Errorf("invalid CPU usage percent: %f", f.CPUUsagePercent)
	}
}

func TestMemoryCollector(t *testing.T) {
	var f Facts
	if err := (&MemoryCollector{}).Collect(context.Background(), &f); err != nil {
		t.Skipf("memory facts unavailable: %v", err)
	}
	if f.MemoryTotal == 0 {
		t.Error("expected total memory")
	}
}

func TestCollectorFailureIsPartial(t *testing.T) {
	i := &Inspector{collectors: []Collector{failingCollector{}, &MemoryCollector{}}}
	facts, err := i.Facts(context.Background())
	if err == nil {
		t.Fatal("expected collector error")
	}
	if facts.GoVersion == "" {
		t.Error("expected runtime facts despite the failure")
	}
}

func TestStatic(t *testing.T) {
	facts, err := Static{Hostname: "bench-01", LogicalCores: 8}.Facts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if facts.Hostname != "bench-01" || facts.LogicalCores != 8 {
		t.Errorf("unexpected facts %+v", facts)
	}
}
