package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/streamingfast/cli/sflags"
	"github.com/streamingfast/dexpath/asset"
	"github.com/streamingfast/dexpath/graph"
	"github.com/streamingfast/dexpath/orderbook"
	"github.com/streamingfast/logging"
	"go.uber.org/zap"
)

func newOrderBookCmd(logger *zap.Logger, tracer logging.Tracer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orderbook <snapshot-url> <selling-asset> <buying-asset>",
		Short: "Print the aggregated price levels of both sides of a trading pair",
		Args:  cobra.ExactArgs(3),
		RunE:  orderBookRunE(logger, tracer),
	}

	cmd.Flags().Int("limit", 10, "Maximum number of price levels per side, 0 for all of them")

	return cmd
}

func orderBookRunE(logger *zap.Logger, tracer logging.Tracer) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		selling, buying, err := parsePair(args[1], args[2])
		if err != nil {
			return err
		}

		limit := sflags.MustGetInt(cmd, "limit")
		if limit < 0 {
			return fmt.Errorf("limit must be positive, got %d", limit)
		}

		g, err := loadGraph(cmd.Context(), logger, args[0])
		if err != nil {
			return err
		}

		printOrderBook(cmd.OutOrStdout(), g.OrderBook(selling, buying, limit))
		return nil
	}
}

func printOrderBook(out io.Writer, summary *graph.OrderBookSummary) {
	fmt.Fprintf(out, "%s / %s\n", summary.Selling, summary.Buying)
	printLevels(out, "asks", summary.Asks)
	printLevels(out, "bids", summary.Bids)
}

func printLevels(out io.Writer, side string, levels []orderbook.Level) {
	if len(levels) == 0 {
		fmt.Fprintf(out, "  %s: none\n", side)
		return
	}

	fmt.Fprintf(out, "  %s:\n", side)
	for _, level := range levels {
		fmt.Fprintf(out, "    %s  %s  (%d)\n", formatPrice(level.Price), asset.FormatAmount(level.Amount), level.Orders)
	}
}
