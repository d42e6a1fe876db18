package graph

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/streamingfast/dexpath/asset"
	"github.com/streamingfast/dexpath/metrics"
	"github.com/streamingfast/dexpath/orderbook"
	"go.uber.org/zap"
)

// Graph is the liquidity graph, keyed by selling asset. A single writer
// (ingestion) mutates it while any number of readers query it, every
// mutation is applied under the write lock and leaves every order book
// sorted before the lock is released.
type Graph struct {
	edges     adjacency
	edgesLock sync.RWMutex

	logger *zap.Logger
}

func New(logger *zap.Logger) *Graph {
	if logger == nil {
		logger = zlog
	}

	return &Graph{
		edges:  adjacency{},
		logger: logger,
	}
}

// Build replaces the whole graph by folding every offer into the edge of
// its pair. The new adjacency is assembled aside and swapped in at once.
func (g *Graph) Build(offers []*Offer) error {
	edges := adjacency{}
	for _, offer := range offers {
		if err := offer.Validate(); err != nil {
			return err
		}

		existing := edges.get(offer.Selling, offer.Buying)
		if existing == nil {
			if err := edges.add(offer.Selling, offer.Buying, NewEdgeData([]*Offer{offer})); err != nil {
				return fmt.Errorf("building graph: %w", err)
			}
			continue
		}

		existing.Data.add(offer)
	}
	edges.sortAll()

	g.edgesLock.Lock()
	g.edges = edges
	stats := g.edges.stats()
	g.edgesLock.Unlock()

	metrics.GraphMutationCount.Inc()
	g.setStatsMetrics(stats)

	g.logger.Info("liquidity graph built",
		zap.Int("offer_count", len(offers)),
		zap.Int("asset_count", stats.Assets),
		zap.Int("edge_count", stats.Edges),
	)
	return nil
}

// Update sets the content of the `selling -> buying` edge to exactly the
// given offers, the current full state of that pair. An empty list means
// the last offer of the pair went away and drops the edge.
func (g *Graph) Update(selling, buying asset.ID, offers []*Offer) error {
	if len(offers) == 0 {
		g.DropEdge(selling, buying)
		return nil
	}

	for _, offer := range offers {
		if err := offer.Validate(); err != nil {
			return err
		}
		if offer.Selling != selling || offer.Buying != buying {
			return fmt.Errorf("%w: offer %d is for pair %s -> %s, not %s -> %s", ErrInvalidOffer, offer.ID, offer.Selling, offer.Buying, selling, buying)
		}
	}

	g.UpdateEdge(selling, buying, NewEdgeData(offers))
	return nil
}

// AddEdge fails with ErrDuplicateEdge when the pair already has an edge.
func (g *Graph) AddEdge(from, to asset.ID, data *EdgeData) error {
	data.OrderBook.Sort()

	g.edgesLock.Lock()
	err := g.edges.add(from, to, data)
	stats := g.edges.stats()
	g.edgesLock.Unlock()

	if err != nil {
		return err
	}

	metrics.GraphMutationCount.Inc()
	g.setStatsMetrics(stats)
	return nil
}

// UpdateEdge replaces the content of the pair, creating the edge if needed.
// The caller must not mutate data afterwards.
func (g *Graph) UpdateEdge(from, to asset.ID, data *EdgeData) {
	data.OrderBook.Sort()

	g.edgesLock.Lock()
	g.edges.put(from, to, data)
	stats := g.edges.stats()
	g.edgesLock.Unlock()

	metrics.GraphMutationCount.Inc()
	g.setStatsMetrics(stats)

	if tracer.Enabled() {
		g.logger.Debug("edge updated", from.ZapField("from"), to.ZapField("to"), zap.Stringer("capacity", data.Capacity), zap.Int("order_count", data.OrderBook.Len()))
	}
}

// DropEdge removes the edge if present. Dropping an unknown edge is a no-op,
// it only means upstream removed liquidity we never recorded.
func (g *Graph) DropEdge(from, to asset.ID) {
	g.edgesLock.Lock()
	dropped := g.edges.drop(from, to)
	stats := g.edges.stats()
	g.edgesLock.Unlock()

	if !dropped {
		metrics.InconsistentGraphCount.Inc()
		g.logger.Warn("inconsistent graph, dropping an edge that does not exist", from.ZapField("from"), to.ZapField("to"))
		return
	}

	metrics.GraphMutationCount.Inc()
	g.setStatsMetrics(stats)
}

// EdgeData returns the current data of the pair. The returned value is a
// published snapshot and must be treated as read-only.
func (g *Graph) EdgeData(from, to asset.ID) (*EdgeData, bool) {
	g.edgesLock.RLock()
	defer g.edgesLock.RUnlock()

	e := g.edges.get(from, to)
	if e == nil {
		return nil, false
	}
	return e.Data, true
}

// GetEdges never fails, an unknown asset has no outgoing edges.
func (g *Graph) GetEdges(from asset.ID) []EdgeSummary {
	g.edgesLock.RLock()
	defer g.edgesLock.RUnlock()

	edges := g.edges[from]
	out := make([]EdgeSummary, 0, len(edges))
	for _, e := range edges {
		out = append(out, EdgeSummary{
			To:        e.To,
			Capacity:  e.Data.Capacity,
			BestPrice: e.Data.OrderBook.BestPrice(),
			Orders:    e.Data.OrderBook.Len(),
		})
	}
	return out
}

// Assets lists every asset having an adjacency entry, in no particular order.
func (g *Graph) Assets() []asset.ID {
	g.edgesLock.RLock()
	defer g.edgesLock.RUnlock()

	out := make([]asset.ID, 0, len(g.edges))
	for id := range g.edges {
		out = append(out, id)
	}
	return out
}

// Reader is a consistent view of the graph, valid only for the duration of
// the View callback that handed it out.
type Reader interface {
	Edges(from asset.ID) []*Edge
}

type reader struct {
	edges adjacency
}

func (r reader) Edges(from asset.ID) []*Edge {
	return r.edges[from]
}

// View runs f while holding the read lock, every read f performs sees the
// same version of the graph.
func (g *Graph) View(f func(r Reader)) {
	g.edgesLock.RLock()
	defer g.edgesLock.RUnlock()

	f(reader{edges: g.edges})
}

type Stats struct {
	Assets int
	Edges  int
	Orders int
}

func (g *Graph) Stats() Stats {
	g.edgesLock.RLock()
	defer g.edgesLock.RUnlock()

	return g.edges.stats()
}

func (g *Graph) setStatsMetrics(stats Stats) {
	metrics.AssetCount.SetUint64(uint64(stats.Assets))
	metrics.EdgeCount.SetUint64(uint64(stats.Edges))
	metrics.OrderCount.SetUint64(uint64(stats.Orders))
}

type Tick struct {
	Selling asset.ID
	Buying  asset.ID
	BestAsk *big.Rat
	BestBid *big.Rat
}

// Tick returns the best ask of `selling -> buying` and the best bid, the
// inverse of the best ask of the opposite pair. A side without liquidity is nil.
func (g *Graph) Tick(selling, buying asset.ID) *Tick {
	g.edgesLock.RLock()
	defer g.edgesLock.RUnlock()

	out := &Tick{Selling: selling, Buying: buying}
	if e := g.edges.get(selling, buying); e != nil {
		out.BestAsk = e.Data.OrderBook.BestPrice()
	}
	if e := g.edges.get(buying, selling); e != nil {
		if inverse := e.Data.OrderBook.BestPrice(); inverse != nil {
			out.BestBid = new(big.Rat).Inv(inverse)
		}
	}
	return out
}

type OrderBookSummary struct {
	Selling asset.ID
	Buying  asset.ID
	Asks    []orderbook.Level
	Bids    []orderbook.Level
}

// OrderBook summarizes both sides of a pair in at most limit price levels
// each, asks from `selling -> buying` and bids from the opposite edge with
// prices inverted.
func (g *Graph) OrderBook(selling, buying asset.ID, limit int) *OrderBookSummary {
	g.edgesLock.RLock()
	defer g.edgesLock.RUnlock()

	out := &OrderBookSummary{Selling: selling, Buying: buying}
	if e := g.edges.get(selling, buying); e != nil {
		out.Asks = e.Data.OrderBook.Levels(limit)
	}
	if e := g.edges.get(buying, selling); e != nil {
		for _, level := range e.Data.OrderBook.Levels(limit) {
			out.Bids = append(out.Bids, level.Invert())
		}
	}
	return out
}
