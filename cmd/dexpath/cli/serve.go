package cli

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lithammer/dedent"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/streamingfast/cli/sflags"
	"github.com/streamingfast/derr"
	"github.com/streamingfast/dexpath/app/dexpath"
	"github.com/streamingfast/dexpath/pathfinder"
	"github.com/streamingfast/logging"
	"go.uber.org/zap"
)

func newServeCmd(logger *zap.Logger, tracer logging.Tracer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Maintain the liquidity graph until terminated",
		Long: strings.TrimSpace(dedent.Dedent(`
			Loads the offers snapshot into the liquidity graph and keeps it current.

			With --enable-ingestion, the offer store at --kvdb-dsn becomes the source of
			truth and every ledger file found in --events-store-url is applied in order.
			Without it, the snapshot is served as is.
		`)),
		Args: cobra.NoArgs,
		RunE: serveRunE(logger, tracer),
	}

	cmd.Flags().String("snapshot-url", "", "Offers snapshot, JSON lines of offers, any dstore URL")
	cmd.Flags().Uint64("snapshot-ledger", 0, "Ledger the snapshot was taken at, ingestion resumes right after it")
	cmd.Flags().Bool("enable-ingestion", false, "Apply ledger events on top of the snapshot")
	cmd.Flags().String("events-store-url", "", "Store holding one JSON lines file of offer events per ledger")
	cmd.Flags().String("kvdb-dsn", "badger:///data/dexpath/offers.db", "Offer store DSN, any kvdb backend")
	cmd.Flags().Int("max-path-length", pathfinder.DefaultMaxPathLength, "Maximum number of assets in a path, source and destination included")
	cmd.Flags().Duration("poll-interval", 5*time.Second, "Delay before looking for new ledgers once caught up")
	cmd.Flags().Duration("stats-interval", time.Minute, "Interval at which graph statistics are logged, 0 to disable")
	cmd.Flags().String("metrics-listen-addr", ":9102", "If non-empty, the process will listen on this address to serve Prometheus metrics")

	return cmd
}

func serveRunE(logger *zap.Logger, tracer logging.Tracer) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app := dexpath.New(&dexpath.Config{
			SnapshotURL:     sflags.MustGetString(cmd, "snapshot-url"),
			SnapshotLedger:  uint32(sflags.MustGetUint64(cmd, "snapshot-ledger")),
			EventsStoreURL:  sflags.MustGetString(cmd, "events-store-url"),
			KvdbDSN:         sflags.MustGetString(cmd, "kvdb-dsn"),
			MaxPathLength:   sflags.MustGetInt(cmd, "max-path-length"),
			PollInterval:    sflags.MustGetDuration(cmd, "poll-interval"),
			EnableIngestion: sflags.MustGetBool(cmd, "enable-ingestion"),
		})

		if addr := sflags.MustGetString(cmd, "metrics-listen-addr"); addr != "" {
			go serveMetrics(logger, addr)
		}

		if err := app.Run(); err != nil {
			return fmt.Errorf("running app: %w", err)
		}

		if interval := sflags.MustGetDuration(cmd, "stats-interval"); interval > 0 {
			go logStats(logger, app, interval)
		}

		signalHandler := derr.SetupSignalHandler(0 * time.Second)
		select {
		case <-signalHandler:
			logger.Info("received termination signal, quitting")
			app.Shutdown(nil)
			<-app.Terminated()
			return nil
		case <-app.Terminating():
			<-app.Terminated()
			if err := app.Err(); err != nil {
				logger.Error("app shutdown unexpectedly", zap.Error(err))
				return err
			}
			logger.Info("app triggered a clean shutdown, quitting")
			return nil
		}
	}
}

func serveMetrics(logger *zap.Logger, addr string) {
	logger.Info("serving prometheus metrics", zap.String("listen_addr", addr))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("metrics server stopped", zap.Error(err))
	}
}

func logStats(logger *zap.Logger, app *dexpath.App, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-app.Terminating():
			return
		case <-ticker.C:
			stats := app.Graph().Stats()
			logger.Info("liquidity graph stats",
				zap.Bool("ready", app.IsReady()),
				zap.String("assets", humanize.Comma(int64(stats.Assets))),
				zap.String("edges", humanize.Comma(int64(stats.Edges))),
				zap.String("orders", humanize.Comma(int64(stats.Orders))),
			)
		}
	}
}
