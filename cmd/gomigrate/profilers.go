package main

import (
	"context"
	"log/slog"
	"os"
	"runtime/pprof"
)

// profiler writes a profile of the running migration to a file. CPU profiles
// are recorded for its whole lifetime, allocation profiles are written when it
// is stopped.
//
//nolint:containedctx
type profiler struct {
	ctx      context.Context
	cancel   context.CancelFunc
	doneChan chan struct{}
}

func newCPUProfiler(ctx context.Context, path string) *profiler {
	return startProfiler(ctx, func(ctx context.Context) {
		f, err := os.Create(path)
		if err != nil {
			slog.Error("Could not create cpu profile", "path", path, "err", err)

			return
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			slog.Error("Could not start cpu profile", "path", path, "err", err)

			return
		}
		defer pprof.StopCPUProfile()

		<-ctx.Done()
	})
}

func newAllocProfiler(ctx context.Context, path string) *profiler {
	return startProfiler(ctx, func(ctx context.Context) {
		<-ctx.Done()

		f, err := os.Create(path)
		if err != nil {
			slog.Error("Could not create allocs profile", "path", path, "err", err)

			return
		}
		defer f.Close()

		if err := pprof.Lookup("allocs").WriteTo(f, 0); err != nil {
			slog.Error("Could not write allocs profile", "path", path, "err", err)
		}
	})
}

func startProfiler(ctx context.Context, profile func(ctx context.Context)) *profiler {
	prof := &profiler{}
	prof.ctx, prof.cancel = context.WithCancel(ctx)
	prof.doneChan = make(chan struct{})

	go func() {
		defer close(prof.doneChan)
		profile(prof.ctx)
	}()

	return prof
}

// Stop ends the profiling and waits for the profile to be written.
func (prof *profiler) Stop() {
	prof.cancel()
	<-prof.doneChan
}
