// Package hostinfo collects facts about the machine a benchmark ran on so
// timings can be compared across runs.
package hostinfo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Facts describes the host and the current process.
type Facts struct {
	Hostname        string  `json:"hostname,omitempty"`
	OS              string  `json:"os"`
	Platform        string  `json:"platform,omitempty"`
	PlatformVersion string  `json:"platform_version,omitempty"`
	Arch            string  `json:"arch"`
	GoVersion       string  `json:"go_version"`
	CPUModel        string  `json:"cpu_model,omitempty"`
	LogicalCores    int     `json:"logical_cores"`
	PhysicalCores   int     `json:"physical_cores,omitempty"`
	CPUUsagePercent float64 `json:"cpu_usage_percent"`
	MemoryTotal     uint64  `json:"memory_total_bytes,omitempty"`
	MemoryAvailable uint64  `json:"memory_available_bytes,omitempty"`
	ProcessRSS      uint64  `json:"process_rss_bytes,omitempty"`
}

// Collector gathers one group of facts.
type Collector interface {
	Name() string
	Collect(ctx context.Context, f *Facts) error
}

// Provider returns host facts.
type Provider interface {
	Facts(ctx context.Context) (Facts, error)
}

// Inspector runs a set of collectors.
type Inspector struct {
	collectors []Collector
}

// New returns an inspector with the CPU, memory, host and process collectors.
func New() *Inspector {
	return &Inspector{collectors: []Collector{
		&CPUCollector{},
		&MemoryCollector{},
		&HostCollector{},
		&ProcessCollector{pid: int32(os.Getpid())},
	}}
}

// Facts runs every collector. A failing collector leaves its fields zero;
// the failures are returned joined alongside the partial facts.
func (i *Inspector) Facts(ctx context.Context) (Facts, error) {
	f := Facts{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		GoVersion: runtime.Version(),
	}
	var errs []error
	for _, c := range i.collectors {
		if err := c.Collect(ctx, &f); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
		}
	}
	return f, errors.Join(errs...)
}

type CPUCollector struct{}

func (c *CPUCollector) Name() string {
	return "cpu"
}

func (c *CPUCollector) Collect(ctx context.Context, f *Facts) error {
	logical, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return err
	}
	f.LogicalCores = logical
	if physical, err := cpu.CountsWithContext(ctx, false); err == nil {
		f.PhysicalCores = physical
	}

	infos, err := cpu.InfoWithContext(ctx)
	if err == nil && len(infos) > 0 {
		f.CPUModel = infos[0].ModelName
	}

	percentages, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return err
	}
	if len(percentages) > 0 {
		f.CPUUsagePercent = percentages[0]
	}
	return nil
}

type MemoryCollector struct{}

func (c *MemoryCollector) Name() string {
	return "memory"
}

func (c *MemoryCollector) Collect(ctx context.Context, f *Facts) error {
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return err
	}
	f.MemoryTotal = v.Total
	f.MemoryAvailable = v.Available
	return nil
}

type HostCollector struct{}

func (c *HostCollector) Name() string {
	return "host"
}

func (c *HostCollector) Collect(ctx context.Context, f *Facts) error {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return err
	}
	f.Hostname = info.Hostname
	f.Platform = info.Platform
	f.PlatformVersion = info.PlatformVersion
	return nil
}

type ProcessCollector struct {
	pid int32
}

func (c *ProcessCollector) Name() string {
	return "process"
}

func (c *ProcessCollector) Collect(ctx context.Context, f *Facts) error {
	p, err := process.NewProcessWithContext(ctx, c.pid)
	if err != nil {
		return err
	}
	m, err := p.MemoryInfoWithContext(ctx)
	if err != nil {
		return err
	}
	f.ProcessRSS = m.RSS
	return nil
}

// Static is a Provider returning fixed facts.
type Static Facts

func (s Static) Facts(context.Context) (Facts, error) {
	return Facts(s), nil
}
