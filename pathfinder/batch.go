package pathfinder

import (
	"context"
	"fmt"

	"github.com/abourget/llerrgroup"
	"github.com/shopspring/decimal"
	"github.com/streamingfast/dexpath/asset"
	"go.uber.org/zap"
)

type Query struct {
	Sources     []asset.ID
	Destination asset.ID
	Amount      decimal.Decimal
}

// FindPathsBatch runs every query against the graph with at most
// parallelism searches in flight, results are returned in query order.
func (f *Finder) FindPathsBatch(ctx context.Context, queries []*Query, parallelism int) ([]Result, error) {
	if parallelism < 1 {
		parallelism = 1
	}

	results := make([]Result, len(queries))
	eg := llerrgroup.New(parallelism)
	for i, query := range queries {
		if eg.Stop() {
			break
		}

		i := i
		query := query
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}

			results[i] = f.FindPaths(query.Sources, query.Destination, query.Amount)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	f.logger.Debug("batch path search completed", zap.Int("query_count", len(queries)), zap.Int("parallelism", parallelism))
	return results, nil
}
