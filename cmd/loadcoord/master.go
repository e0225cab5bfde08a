package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/loadcoord/loadcoord/internal/config"
	"github.com/loadcoord/loadcoord/internal/history"
	"github.com/loadcoord/loadcoord/internal/logging"
	"github.com/loadcoord/loadcoord/internal/master"
	"github.com/loadcoord/loadcoord/internal/report"
	"github.com/loadcoord/loadcoord/internal/stats"
	"github.com/loadcoord/loadcoord/internal/telemetry"
	"github.com/loadcoord/loadcoord/internal/testspec"
)

var flagSpecFile string
var flagStayAlive bool

var masterCmd = &cobra.Command{
	Use:   "master",
	Short: "Run the master coordinator",
	RunE:  runMaster,
}

func init() {
	masterCmd.Flags().StringVarP(&flagSpecFile, "spec", "s", "", "Path to a JSON TestSpec to run immediately on startup")
	masterCmd.Flags().BoolVar(&flagStayAlive, "stay-alive", false, "Keep the stat registry after a run completes instead of clearing it")
}

func runMaster(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	log := logging.New("master")
	stats.SetDefaultPercentiles(cfg.Histogram.Percentiles)

	store, err := history.Open(cfg.History.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer store.Close()

	pool := master.NewPool(cfg.Master.PingPeriod.Get(), cfg.Master.ProgressWindow.Get(), log)
	renderer := report.NewConsoleRenderer(os.Stdout)
	pool.OnProgress(func(interval map[string]stats.Snapshot) {
		renderer.RenderInterval(interval)
	})

	startedAt := time.Now()

	mux := http.NewServeMux()
	mux.Handle("/remote/progress", pool.ProgressHandler())
	httpServer := &http.Server{Addr: cfg.Master.ListenAddr, Handler: mux}

	metricsServer := &http.Server{Addr: cfg.Master.MetricsAddr, Handler: telemetry.Handler()}

	errCh := make(chan error, 2)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	log.Info("msg", "master listening", "addr", cfg.Master.ListenAddr, "metrics", cfg.Master.MetricsAddr)

	if flagSpecFile != "" {
		spec, err := loadSpec(flagSpecFile)
		if err != nil {
			return err
		}
		completion := func(summary map[string]map[string]interface{}, doneCount, errCount int) {
			renderer.RenderSummary(summary)
			if _, err := store.Record(startedAt, time.Now(), len(cfg.Master.Slaves), doneCount, errCount, summary); err != nil {
				log.Error("msg", "failed to record run history", "err", err)
			}
		}
		if err := pool.Start(context.Background(), cfg.Master.Slaves, spec, completion, flagStayAlive); err != nil {
			return fmt.Errorf("failed to start run: %w", err)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Info("msg", "shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(ctx)
		metricsServer.Shutdown(ctx)
		return nil
	}
}

func loadSpec(path string) (*testspec.TestSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read test spec %s: %w", path, err)
	}
	var spec testspec.TestSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse test spec %s: %w", path, err)
	}
	return &spec, nil
}
