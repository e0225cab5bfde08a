package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/loadcoord/loadcoord/internal/config"
	"github.com/loadcoord/loadcoord/internal/logging"
	"github.com/loadcoord/loadcoord/internal/scheduler"
	"github.com/loadcoord/loadcoord/internal/slave"
	"github.com/loadcoord/loadcoord/internal/stats"
	"github.com/loadcoord/loadcoord/internal/testspec"
)

var flagMasterAddr string
var flagSlaveID string

var slaveCmd = &cobra.Command{
	Use:   "slave",
	Short: "Run a slave agent",
	RunE:  runSlave,
}

func init() {
	slaveCmd.Flags().StringVarP(&flagMasterAddr, "master", "m", "", "Master address to push progress reports to")
	slaveCmd.Flags().StringVar(&flagSlaveID, "id", "", "Slave id reported to the master (defaults to the config file's slave.id)")
}

func runSlave(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	id := flagSlaveID
	if id == "" {
		id = cfg.Slave.ID
	}
	masterAddr := flagMasterAddr

	log := logging.New("slave")

	stats.SetDefaultPercentiles(cfg.Histogram.Percentiles)

	catalog := testspec.NewCatalog()
	catalog.Register("http", func() testspec.Generator {
		return scheduler.NewHTTPGeneratorWithBuckets(cfg.Histogram.NumBuckets)
	})

	agent := slave.NewAgent(id, masterAddr, catalog, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("msg", "shutting down")
		cancel()
	}()

	log.Info("msg", "slave listening", "id", id, "addr", cfg.Slave.ListenAddr, "master", masterAddr)
	return agent.Start(ctx, cfg.Slave.ListenAddr)
}
