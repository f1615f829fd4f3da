package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/joshuapare/pocketrt/heap"
	"github.com/joshuapare/pocketrt/internal/logger"
	"github.com/joshuapare/pocketrt/internal/metrics"
	"github.com/joshuapare/pocketrt/vfs"
)

var (
	serveAddr     string
	serveInterval time.Duration
	serveBatch    int
)

func init() {
	rootCmd.AddCommand(newServeCmd())
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a background workload and export runtime metrics",
		Long: `The serve command boots the runtime, keeps a heap and file-layer
workload running, and serves Prometheus metrics for the allocator and the
file layer on /metrics until interrupted.

Example:
  slotctl serve --addr :2112 --interval 100ms`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
	cmd.Flags().StringVar(&serveAddr, "addr", ":2112", "Listen address")
	cmd.Flags().DurationVar(&serveInterval, "interval", 250*time.Millisecond, "Pause between workload batches")
	cmd.Flags().IntVar(&serveBatch, "batch", 100, "Heap operations per batch")
	return cmd
}

func runServe(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sys, _, err := bootBoard(ctx)
	if err != nil {
		return err
	}

	// The runtime is single-threaded; scrapes and the workload take turns.
	var mu sync.Mutex
	snapshot := func() (heap.Stats, vfs.Stats) {
		mu.Lock()
		defer mu.Unlock()
		return sys.Snapshot()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		metrics.New(snapshot),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: serveAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() {
		printInfo("Prometheus metrics available at http://%s/metrics\n", serveAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	w := newWorkload(sys.Heap, heapSeed, heapMaxSize, false)
	names := sys.FS.Names()
	ticker := time.NewTicker(serveInterval)
	defer ticker.Stop()

	for round := 0; ; round++ {
		select {
		case <-ctx.Done():
			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdown)
		case err, ok := <-errc:
			if ok {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		case <-ticker.C:
		}

		mu.Lock()
		err := serveRound(sys.FS, w, names, round)
		mu.Unlock()
		if err != nil {
			return err
		}
	}
}

// serveRound runs one batch of heap operations and reads a little of one
// resource through a mapping so both layers move.
func serveRound(fs *vfs.FS, w *workload, names vfs.NameTable, round int) error {
	for range serveBatch {
		if err := w.step(); err != nil {
			return err
		}
	}
	if len(w.live) > 256 {
		if err := w.drain(); err != nil {
			return err
		}
	}

	for name := range names {
		fd, err := fs.OpenFD(name)
		if err != nil {
			logger.L.Debug("serve: open failed", "name", name, "error", err)
			continue
		}
		if addr, _, err := fs.Mmap(fd, 256, 0); err == nil {
			_ = fs.Munmap(addr)
		}
		_ = fs.CloseFD(fd)
		if round%2 == 0 {
			break
		}
	}
	return nil
}
