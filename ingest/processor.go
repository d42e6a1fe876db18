package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/streamingfast/dexpath/asset"
	"github.com/streamingfast/dexpath/graph"
	"github.com/streamingfast/dexpath/metrics"
	"github.com/streamingfast/dexpath/offerstore"
	"github.com/streamingfast/dexpath/tick"
	"github.com/streamingfast/shutter"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

type pair struct {
	selling asset.ID
	buying  asset.ID
}

// Processor keeps the offer store and the liquidity graph in sync with the
// ledger, one ledger at a time. It is the single writer of the graph.
type Processor struct {
	*shutter.Shutter

	store  *offerstore.Store
	graph  *graph.Graph
	ticks  *tick.Manager
	logger *zap.Logger

	cursor *atomic.Uint32
	ready  *atomic.Bool
}

func NewProcessor(store *offerstore.Store, g *graph.Graph, ticks *tick.Manager, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zlog
	}

	return &Processor{
		Shutter: shutter.New(),
		store:   store,
		graph:   g,
		ticks:   ticks,
		logger:  logger,
		cursor:  atomic.NewUint32(0),
		ready:   atomic.NewBool(false),
	}
}

// Bootstrap fills the graph. When the store already went through a ledger
// it is the source of truth, otherwise the snapshot seeds both the store
// and the graph and snapshotLedger becomes the cursor.
func (p *Processor) Bootstrap(ctx context.Context, snapshotURL string, snapshotLedger uint32) error {
	cursor, found, err := p.store.LoadCursor(ctx)
	if err != nil {
		return fmt.Errorf("loading cursor: %w", err)
	}

	if found {
		offers, err := p.store.AllOffers(ctx)
		if err != nil {
			return fmt.Errorf("reading stored offers: %w", err)
		}
		if err := p.graph.Build(offers); err != nil {
			return fmt.Errorf("building graph from store: %w", err)
		}

		p.logger.Info("graph restored from offer store", zap.Uint32("cursor", cursor), zap.String("offer_count", humanize.Comma(int64(len(offers)))))
		p.setCursor(cursor)
		return nil
	}

	if snapshotURL == "" {
		return errors.New("offer store is empty and no snapshot was provided")
	}

	offers, err := LoadSnapshot(ctx, snapshotURL)
	if err != nil {
		return err
	}

	for _, offer := range offers {
		if _, err := p.store.PutOffer(ctx, offer); err != nil {
			return fmt.Errorf("seeding offer store: %w", err)
		}
	}
	if err := p.store.StoreCursor(ctx, snapshotLedger); err != nil {
		return err
	}

	if err := p.graph.Build(offers); err != nil {
		return fmt.Errorf("building graph from snapshot: %w", err)
	}

	p.logger.Info("graph built from snapshot", zap.Uint32("cursor", snapshotLedger), zap.String("offer_count", humanize.Comma(int64(len(offers)))))
	p.setCursor(snapshotLedger)
	return nil
}

func (p *Processor) setCursor(ledger uint32) {
	p.cursor.Store(ledger)
	p.ready.Store(true)
	metrics.HeadLedgerNumber.SetUint64(uint64(ledger))
}

func (p *Processor) Cursor() uint32 {
	return p.cursor.Load()
}

// IsReady reports whether the graph holds a complete view of some ledger.
func (p *Processor) IsReady() bool {
	return p.ready.Load()
}

// ProcessLedger applies every event of one ledger to the store, then
// rebuilds each touched pair from the store and pushes it to the graph.
func (p *Processor) ProcessLedger(ctx context.Context, ledger uint32, events []*OfferEvent) error {
	if p.IsReady() && ledger <= p.Cursor() {
		p.logger.Debug("skipping already applied ledger", zap.Uint32("ledger", ledger), zap.Uint32("cursor", p.Cursor()))
		return nil
	}

	var touched []pair
	seen := map[pair]bool{}
	touch := func(selling, buying asset.ID) {
		key := pair{selling: selling, buying: buying}
		if !seen[key] {
			seen[key] = true
			touched = append(touched, key)
		}
	}

	for _, event := range events {
		if err := event.Validate(); err != nil {
			return err
		}

		if tracer.Enabled() {
			p.logger.Debug("applying offer event", zap.Uint32("ledger", ledger), zap.String("type", string(event.Type)), zap.Uint64("offer_id", event.Offer.ID))
		}

		switch event.Type {
		case EventCreated, EventUpdated:
			previous, err := p.store.PutOffer(ctx, event.Offer)
			if err != nil {
				return err
			}
			if previous != nil {
				touch(previous.Selling, previous.Buying)
			}
			touch(event.Offer.Selling, event.Offer.Buying)

		case EventRemoved:
			removed, err := p.store.DeleteOffer(ctx, event.Offer.ID)
			if err != nil {
				if errors.Is(err, offerstore.ErrNotFound) {
					p.logger.Warn("removing an offer that was never recorded", zap.Uint32("ledger", ledger), zap.Uint64("offer_id", event.Offer.ID))
					continue
				}
				return err
			}
			touch(removed.Selling, removed.Buying)
		}
	}

	for _, key := range touched {
		offers, err := p.store.PairOffers(ctx, key.selling, key.buying)
		if err != nil {
			return fmt.Errorf("reading offers of %s -> %s: %w", key.selling, key.buying, err)
		}

		if len(offers) == 0 {
			// created and removed within this ledger, the graph never saw it
			if _, found := p.graph.EdgeData(key.selling, key.buying); !found {
				continue
			}
		}

		if err := p.graph.Update(key.selling, key.buying, offers); err != nil {
			return fmt.Errorf("updating graph for %s -> %s: %w", key.selling, key.buying, err)
		}
	}
	p.publishTicks(touched)

	if err := p.store.StoreCursor(ctx, ledger); err != nil {
		return err
	}
	p.setCursor(ledger)
	metrics.IngestedEventCount.AddInt(len(events))

	p.logger.Debug("ledger applied", zap.Uint32("ledger", ledger), zap.Int("event_count", len(events)), zap.Int("touched_pair_count", len(touched)))
	return nil
}

// publishTicks runs once the whole ledger is in the graph. A pair's asks
// are the bids of the opposite pair so both sides are notified.
func (p *Processor) publishTicks(touched []pair) {
	if p.ticks == nil {
		return
	}

	published := map[pair]bool{}
	for _, key := range touched {
		for _, side := range []pair{key, {selling: key.buying, buying: key.selling}} {
			if published[side] || !p.ticks.HasSubscribers(side.selling, side.buying) {
				continue
			}
			published[side] = true
			p.ticks.Publish(p.graph.Tick(side.selling, side.buying))
		}
	}
}

// Launch polls source for ledgers past the cursor until the processor is
// shut down. Any processing error terminates the processor.
func (p *Processor) Launch(ctx context.Context, source *EventSource, pollInterval time.Duration) {
	p.logger.Info("launching offer ingestion", zap.Uint32("cursor", p.Cursor()), zap.Duration("poll_interval", pollInterval))

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if err := source.ReadLedgers(ctx, p.Cursor()+1, func(ledger uint32, events []*OfferEvent) error {
			return p.ProcessLedger(ctx, ledger, events)
		}); err != nil {
			p.Shutdown(fmt.Errorf("ingesting ledgers: %w", err))
			return
		}

		select {
		case <-p.Terminating():
			return
		case <-ctx.Done():
			p.Shutdown(ctx.Err())
			return
		case <-ticker.C:
		}
	}
}
