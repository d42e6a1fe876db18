package pathfinder

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/streamingfast/dexpath/asset"
	"github.com/streamingfast/dexpath/graph"
	"github.com/streamingfast/dexpath/metrics"
	"go.uber.org/zap"
)

// DefaultMaxPathLength counts every asset of a path, source and destination
// included, so at most 6 hops.
const DefaultMaxPathLength = 7

// Path is one way of delivering the requested destination amount: Amount
// of the source asset converted through Assets, ordered from the source
// towards the destination, both excluded.
type Path struct {
	Amount decimal.Decimal
	Assets []asset.ID
}

// Result maps each requested source asset to the paths discovered for it,
// in discovery order. Each entry is strictly cheaper than the previous one.
type Result map[asset.ID][]Path

type Finder struct {
	graph         *graph.Graph
	maxPathLength int
	logger        *zap.Logger
}

type Option func(f *Finder)

func WithMaxPathLength(length int) Option {
	return func(f *Finder) {
		f.maxPathLength = length
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(f *Finder) {
		f.logger = logger
	}
}

func New(g *graph.Graph, opts ...Option) *Finder {
	f := &Finder{
		graph:         g,
		maxPathLength: DefaultMaxPathLength,
		logger:        zlog,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.maxPathLength < 1 {
		f.maxPathLength = 1
	}
	return f
}

// FindPaths searches backward from destination for every way to deliver
// exactly amount of it paying with one of sources. It never fails, a source
// without any viable path maps to an empty list.
func (f *Finder) FindPaths(sources []asset.ID, destination asset.ID, amount decimal.Decimal) Result {
	t0 := time.Now()
	defer metrics.PathQueryDuration.ObserveSince(t0)
	metrics.PathQueryCount.Inc()

	result := make(Result, len(sources))
	sourceSet := make(map[asset.ID]bool, len(sources))
	for _, source := range sources {
		sourceSet[source] = true
		result[source] = []Path{}
	}

	if destination.IsNative() && len(sourceSet) == 1 && sourceSet[asset.Native] {
		result[asset.Native] = []Path{{Amount: amount, Assets: []asset.ID{}}}
		return result
	}

	s := &search{
		sources:       sourceSet,
		lowestCost:    map[asset.ID]decimal.Decimal{},
		onPath:        map[asset.ID]bool{},
		maxPathLength: f.maxPathLength,
		result:        result,
	}

	f.graph.View(func(r graph.Reader) {
		s.reader = r
		s.visit(destination, amount)
	})

	if tracer.Enabled() {
		f.logger.Debug("path search completed",
			destination.ZapField("destination"),
			zap.Stringer("amount", amount),
			zap.Int("visited_assets", len(s.lowestCost)),
			zap.Int("visits", s.visits),
			zap.Duration("elapsed", time.Since(t0)),
		)
	}

	return result
}

type search struct {
	reader        graph.Reader
	sources       map[asset.ID]bool
	lowestCost    map[asset.ID]decimal.Decimal
	path          []asset.ID
	onPath        map[asset.ID]bool
	maxPathLength int
	result        Result
	visits        int
}

// visit walks edges where current is the selling asset: acquiring
// amountNeeded of current costs some amount of the asset across the edge.
// The active path holds the destination first and current last.
func (s *search) visit(current asset.ID, amountNeeded decimal.Decimal) {
	s.visits++

	if s.onPath[current] {
		return
	}

	if lowest, found := s.lowestCost[current]; found && !amountNeeded.LessThan(lowest) {
		return
	}
	s.lowestCost[current] = amountNeeded

	s.path = append(s.path, current)
	s.onPath[current] = true
	defer func() {
		s.path = s.path[:len(s.path)-1]
		delete(s.onPath, current)
	}()

	if s.sources[current] {
		s.result[current] = append(s.result[current], Path{
			Amount: amountNeeded,
			Assets: intermediate(s.path),
		})
	}

	if len(s.path) >= s.maxPathLength {
		return
	}

	for _, edge := range s.reader.Edges(current) {
		if edge.Data.Capacity.LessThan(amountNeeded) {
			continue
		}

		cost, filled := edge.Data.OrderBook.Buy(amountNeeded)
		if !filled {
			continue
		}

		s.visit(edge.To, cost)
	}
}

// intermediate turns the active path (destination first) into the assets
// strictly between source and destination, source side first.
func intermediate(path []asset.ID) []asset.ID {
	if len(path) <= 2 {
		return []asset.ID{}
	}

	out := make([]asset.ID, 0, len(path)-2)
	for i := len(path) - 2; i >= 1; i-- {
		out = append(out, path[i])
	}
	return out
}
