package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/streamingfast/dexpath/graph"
	"go.uber.org/zap"
)

// LoadSnapshot reads every resting offer from a JSON lines file, one
// graph.Offer per line. Any dstore URL is accepted.
func LoadSnapshot(ctx context.Context, url string) ([]*graph.Offer, error) {
	t0 := time.Now()

	var out []*graph.Offer
	err := readFile(ctx, url, func(line string) error {
		var offer *graph.Offer
		if err := json.Unmarshal([]byte(line), &offer); err != nil {
			return fmt.Errorf("unable to decode offer: %w", err)
		}
		if err := offer.Validate(); err != nil {
			return err
		}

		out = append(out, offer)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %q: %w", url, err)
	}

	zlog.Info("offers snapshot loaded",
		zap.String("url", url),
		zap.String("offer_count", humanize.Comma(int64(len(out)))),
		zap.Duration("elapsed", time.Since(t0)),
	)
	return out, nil
}
