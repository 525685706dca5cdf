package main

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/hupe1980/byteslice/internal/simd"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// printHost reports the machine the benchmark runs on. Probe failures are
// printed as unknown rather than aborting the run.
func printHost(ctx context.Context, out io.Writer) {
	model := "unknown"
	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		model = infos[0].ModelName
	}
	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		cores = runtime.NumCPU()
	}

	memory := "unknown"
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		memory = fmt.Sprintf("%s total, %s available", humanize.IBytes(vm.Total), humanize.IBytes(vm.Available))
	}

	fmt.Fprintf(out, "cpu            = %s (%d threads)\n", model, cores)
	fmt.Fprintf(out, "memory         = %s\n", memory)
	fmt.Fprintf(out, "go             = %s %s/%s GOMAXPROCS=%d\n", runtime.Version(), runtime.GOOS, runtime.GOARCH, runtime.GOMAXPROCS(0))
	fmt.Fprintf(out, "simd           = %s\n", simd.ActiveISA())
}
