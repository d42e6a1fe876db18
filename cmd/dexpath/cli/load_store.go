package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"
	"github.com/streamingfast/cli/sflags"
	"github.com/streamingfast/dexpath/ingest"
	"github.com/streamingfast/dexpath/offerstore"
	"github.com/streamingfast/logging"
	"go.uber.org/zap"
)

func newLoadStoreCmd(logger *zap.Logger, tracer logging.Tracer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load-store <snapshot-url>",
		Short: "Seed the offer store from an offers snapshot",
		Long: strings.TrimSpace(dedent.Dedent(`
			Writes every offer of the snapshot to the offer store and records
			--snapshot-ledger as the ingestion cursor. A store already holding a
			cursor is refused unless --force is given.
		`)),
		Args: cobra.ExactArgs(1),
		RunE: loadStoreRunE(logger, tracer),
	}

	cmd.Flags().String("kvdb-dsn", "badger:///data/dexpath/offers.db", "Offer store DSN, any kvdb backend")
	cmd.Flags().Uint64("snapshot-ledger", 0, "Ledger the snapshot was taken at")
	cmd.Flags().Bool("force", false, "Load even if the store already went through some ledgers")

	return cmd
}

func loadStoreRunE(logger *zap.Logger, tracer logging.Tracer) func(cmd *cobra.Command, args []string) (err error) {
	return func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		t0 := time.Now()

		store, err := offerstore.NewFromDSN(sflags.MustGetString(cmd, "kvdb-dsn"), logger)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("closing offer store: %w", closeErr)
			}
		}()

		cursor, found, err := store.LoadCursor(ctx)
		if err != nil {
			return err
		}
		if found && !sflags.MustGetBool(cmd, "force") {
			return fmt.Errorf("offer store already at ledger %d, use --force to load anyway", cursor)
		}

		offers, err := ingest.LoadSnapshot(ctx, args[0])
		if err != nil {
			return err
		}

		for _, offer := range offers {
			if _, err := store.PutOffer(ctx, offer); err != nil {
				return err
			}
		}

		ledger := uint32(sflags.MustGetUint64(cmd, "snapshot-ledger"))
		if err := store.StoreCursor(ctx, ledger); err != nil {
			return err
		}

		logger.Info("offer store loaded",
			zap.String("offer_count", humanize.Comma(int64(len(offers)))),
			zap.Uint32("cursor", ledger),
			zap.Duration("elapsed", time.Since(t0)),
		)
		return nil
	}
}
