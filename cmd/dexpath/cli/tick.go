package cli

import (
	"fmt"
	"io"
	"math/big"

	"github.com/spf13/cobra"
	"github.com/streamingfast/dexpath/graph"
	"github.com/streamingfast/logging"
	"go.uber.org/zap"
)

const priceDecimals = 7

func newTickCmd(logger *zap.Logger, tracer logging.Tracer) *cobra.Command {
	return &cobra.Command{
		Use:   "tick <snapshot-url> <selling-asset> <buying-asset>",
		Short: "Print the best ask and bid of a trading pair",
		Args:  cobra.ExactArgs(3),
		RunE:  tickRunE(logger, tracer),
	}
}

func tickRunE(logger *zap.Logger, tracer logging.Tracer) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		selling, buying, err := parsePair(args[1], args[2])
		if err != nil {
			return err
		}

		g, err := loadGraph(cmd.Context(), logger, args[0])
		if err != nil {
			return err
		}

		printTick(cmd.OutOrStdout(), g.Tick(selling, buying))
		return nil
	}
}

func printTick(out io.Writer, tick *graph.Tick) {
	fmt.Fprintf(out, "%s / %s\n", tick.Selling, tick.Buying)
	fmt.Fprintf(out, "  ask: %s\n", formatPrice(tick.BestAsk))
	fmt.Fprintf(out, "  bid: %s\n", formatPrice(tick.BestBid))
}

func formatPrice(price *big.Rat) string {
	if price == nil {
		return "-"
	}
	return price.FloatString(priceDecimals)
}
