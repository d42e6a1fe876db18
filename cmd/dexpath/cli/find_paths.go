package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"
	"github.com/streamingfast/cli/sflags"
	"github.com/streamingfast/dexpath/asset"
	"github.com/streamingfast/dexpath/pathfinder"
	"github.com/streamingfast/logging"
	"go.uber.org/zap"
)

func newFindPathsCmd(logger *zap.Logger, tracer logging.Tracer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find-paths <snapshot-url> <destination-asset> <destination-amount> <source-asset> [<source-asset>...]",
		Short: "Print the cheapest way for each source asset to deliver an amount of the destination asset",
		Long: strings.TrimSpace(dedent.Dedent(`
			Builds the liquidity graph from the offers snapshot and searches payment paths
			delivering <destination-amount> of <destination-asset>.

			Assets are either "native" or "CODE:ISSUER". Amounts are decimal with up to
			seven fractional digits.
		`)),
		Example: `dexpath find-paths ./offers.jsonl EUR:GDUKMGUGD 10 native USD:GDUKMGUGD`,
		Args:    cobra.MinimumNArgs(4),
		RunE:    findPathsRunE(logger, tracer),
	}

	cmd.Flags().Bool("all", false, "Print every discovered path instead of the cheapest one per source")
	cmd.Flags().Int("max-path-length", pathfinder.DefaultMaxPathLength, "Maximum number of assets in a path, source and destination included")

	return cmd
}

func findPathsRunE(logger *zap.Logger, tracer logging.Tracer) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		destination, err := asset.Parse(args[1])
		if err != nil {
			return fmt.Errorf("destination asset: %w", err)
		}

		amount, err := asset.ParseAmount(args[2])
		if err != nil {
			return fmt.Errorf("destination amount: %w", err)
		}

		sources, err := asset.ParseList(args[3:])
		if err != nil {
			return fmt.Errorf("source assets: %w", err)
		}

		g, err := loadGraph(ctx, logger, args[0])
		if err != nil {
			return err
		}

		finder := pathfinder.New(g,
			pathfinder.WithMaxPathLength(sflags.MustGetInt(cmd, "max-path-length")),
			pathfinder.WithLogger(logger),
		)
		result := finder.FindPaths(sources, destination, amount)
		if tracer.Enabled() {
			logger.Debug("paths found", zap.Int("source_count", len(result)))
		}

		if sflags.MustGetBool(cmd, "all") {
			printAllPaths(cmd.OutOrStdout(), sources, result)
			return nil
		}

		printBestPaths(cmd.OutOrStdout(), sources, result.Best(destination, amount))
		return nil
	}
}

func printBestPaths(out io.Writer, sources []asset.ID, best map[asset.ID]*pathfinder.PaymentPath) {
	for _, source := range sortedUnique(sources) {
		path, found := best[source]
		if !found {
			fmt.Fprintf(out, "%s: no path\n", source)
			continue
		}

		fmt.Fprintf(out, "%s: pay %s for %s via %s\n",
			source,
			asset.FormatAmount(path.SourceAmount),
			asset.FormatAmount(path.DestinationAmount),
			formatAssets(path.Path),
		)
	}
}

func printAllPaths(out io.Writer, sources []asset.ID, result pathfinder.Result) {
	for _, source := range sortedUnique(sources) {
		paths := result[source]
		if len(paths) == 0 {
			fmt.Fprintf(out, "%s: no path\n", source)
			continue
		}

		fmt.Fprintf(out, "%s:\n", source)
		for _, path := range paths {
			fmt.Fprintf(out, "  %s via %s\n", asset.FormatAmount(path.Amount), formatAssets(path.Assets))
		}
	}
}

func formatAssets(path []asset.ID) string {
	if len(path) == 0 {
		return "direct"
	}

	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = id.String()
	}
	return strings.Join(parts, " -> ")
}

func sortedUnique(ids []asset.ID) []asset.ID {
	seen := map[asset.ID]bool{}
	out := make([]asset.ID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
