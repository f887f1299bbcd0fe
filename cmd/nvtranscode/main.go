// Command nvtranscode runs the GPU-accelerated transcoding daemon: either
// as an HTTP ingestion service (default) or, with --batch, as a one-shot
// directory scan that drains once ingestion is complete.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brightcue/nvtranscode/internal/admission"
	"github.com/brightcue/nvtranscode/internal/api"
	"github.com/brightcue/nvtranscode/internal/config"
	"github.com/brightcue/nvtranscode/internal/log"
	"github.com/brightcue/nvtranscode/internal/notifier"
	"github.com/brightcue/nvtranscode/internal/pipeline/exec/ffmpeg"
	"github.com/brightcue/nvtranscode/internal/pipeline/hardware"
	"github.com/brightcue/nvtranscode/internal/processed"
	"github.com/brightcue/nvtranscode/internal/queue"
	"github.com/brightcue/nvtranscode/internal/router"
	"github.com/brightcue/nvtranscode/internal/scanner"
	"github.com/brightcue/nvtranscode/internal/stats"
	"github.com/brightcue/nvtranscode/internal/worker"
)

var version = "dev"

func main() {
	noGPU := flag.Bool("no-gpu", false, "diagnostic mode: acknowledge jobs without transcoding")
	batch := flag.Bool("batch", false, "scan the input directory once instead of running the HTTP daemon")
	flag.Parse()

	log.Configure(log.Config{Level: "info", Service: "nvtranscode", Version: version})
	logger := log.WithComponent("main")

	cfg := config.Load()
	cfg.NoGPU = *noGPU
	cfg.Batch = *batch

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		logger.Fatal().Err(err).Str("output_dir", cfg.OutputDir).Msg("failed to create output directory")
	}

	if !cfg.NoGPU {
		preflighter := ffmpeg.NewPreflighter(cfg.FFmpegBin, 15*time.Second)
		preflighter.CheckAll(ctx, cfg.GPUCount)

		ready := hardware.ReadyGPUCount(cfg.GPUCount)
		logger.Info().Int("ready", ready).Int("total", cfg.GPUCount).Msg("gpu preflight summary")
		if ready == 0 {
			logger.Fatal().Msg("no gpu passed preflight, refusing to start")
		}
	}

	q := queue.New(cfg.QueueCapacity)
	proc := processed.New(cfg.ProcessedRingSize, cfg.OutputDir)
	rt := router.New(q, cfg.InputDir)
	statsReg := stats.New(cfg.Workers, q.Depth)
	notify := notifier.New(cfg.CallbackTimeout)
	mon := admission.NewMonitor(cfg.GPUCount)
	mon.SetLogger(log.WithComponent("admission"))
	mon.StartCPUSampler(ctx, 2*time.Second, admission.ReadSystemLoad)

	stopStats := make(chan struct{})
	statsReg.StartReporter(cfg.StatsInterval, stopStats)

	pool := worker.New(worker.Deps{
		Queue:     q,
		Processed: proc,
		Stats:     statsReg,
		Notifier:  notify,
		Admission: mon,
		OutputDir: cfg.OutputDir,
		NoGPU:     cfg.NoGPU,
	}, cfg.Workers, cfg.GPUCount, cfg.SpawnStagger)
	pool.Start(ctx)

	if cfg.Batch {
		sc := scanner.New(cfg.InputDir, proc, rt)
		res, err := sc.Scan()
		if err != nil {
			logger.Error().Err(err).Msg("scan failed")
		} else {
			logger.Info().Int("enqueued", res.Enqueued).Int("skipped", res.Skipped).Msg("batch scan complete")
		}

		q.Close()
		pool.Wait()
		close(stopStats)
		logger.Info().Msg("batch run complete, exiting")
		os.Exit(0)
	}

	server := api.New(rt, statsReg)
	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("listen_addr", cfg.ListenAddr).Msg("http control plane listening")
		serveErr <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http listener failed")
			q.Close()
			pool.Wait()
			close(stopStats)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http server shutdown did not complete cleanly")
	}

	q.Close()
	pool.Wait()
	close(stopStats)
	logger.Info().Msg("shutdown complete")
}
