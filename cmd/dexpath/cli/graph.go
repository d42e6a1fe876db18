package cli

import (
	"context"
	"fmt"

	"github.com/streamingfast/dexpath/asset"
	"github.com/streamingfast/dexpath/graph"
	"github.com/streamingfast/dexpath/ingest"
	"go.uber.org/zap"
)

func loadGraph(ctx context.Context, logger *zap.Logger, snapshotURL string) (*graph.Graph, error) {
	offers, err := ingest.LoadSnapshot(ctx, snapshotURL)
	if err != nil {
		return nil, err
	}

	g := graph.New(logger)
	if err := g.Build(offers); err != nil {
		return nil, fmt.Errorf("building graph: %w", err)
	}

	stats := g.Stats()
	logger.Debug("graph built", zap.Int("assets", stats.Assets), zap.Int("edges", stats.Edges), zap.Int("orders", stats.Orders))
	return g, nil
}

func parsePair(selling, buying string) (asset.ID, asset.ID, error) {
	sellingID, err := asset.Parse(selling)
	if err != nil {
		return "", "", fmt.Errorf("selling asset: %w", err)
	}

	buyingID, err := asset.Parse(buying)
	if err != nil {
		return "", "", fmt.Errorf("buying asset: %w", err)
	}

	if sellingID == buyingID {
		return "", "", fmt.Errorf("selling and buying are both %s", sellingID)
	}
	return sellingID, buyingID, nil
}
