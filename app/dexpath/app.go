package dexpath

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/streamingfast/dexpath/graph"
	"github.com/streamingfast/dexpath/ingest"
	"github.com/streamingfast/dexpath/metrics"
	"github.com/streamingfast/dexpath/offerstore"
	"github.com/streamingfast/dexpath/pathfinder"
	"github.com/streamingfast/dexpath/tick"
	"github.com/streamingfast/dmetrics"
	"github.com/streamingfast/shutter"
	"go.uber.org/zap"
)

type Config struct {
	SnapshotURL     string
	SnapshotLedger  uint32
	EventsStoreURL  string
	KvdbDSN         string
	MaxPathLength   int
	PollInterval    time.Duration
	EnableIngestion bool
}

var registerMetrics sync.Once

type App struct {
	*shutter.Shutter
	Config *Config

	graph     *graph.Graph
	finder    *pathfinder.Finder
	ticks     *tick.Manager
	processor *ingest.Processor
	store     *offerstore.Store
}

func New(config *Config) *App {
	g := graph.New(zlog)

	return &App{
		Shutter: shutter.New(),
		Config:  config,
		graph:   g,
		finder:  pathfinder.New(g, pathfinder.WithMaxPathLength(config.MaxPathLength), pathfinder.WithLogger(zlog)),
		ticks:   tick.NewManager(),
	}
}

func (a *App) Run() error {
	zlog.Info("launching dexpath", zap.Reflect("config", a.Config))

	if err := a.Config.validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	registerMetrics.Do(func() {
		dmetrics.Register(metrics.Metricset)
	})

	ctx, cancel := context.WithCancel(context.Background())
	a.OnTerminating(func(_ error) {
		cancel()
	})

	if !a.Config.EnableIngestion {
		offers, err := ingest.LoadSnapshot(ctx, a.Config.SnapshotURL)
		if err != nil {
			return err
		}
		if err := a.graph.Build(offers); err != nil {
			return fmt.Errorf("building graph: %w", err)
		}

		zlog.Info("serving static graph, ingestion disabled")
		return nil
	}

	store, err := offerstore.NewFromDSN(a.Config.KvdbDSN, zlog)
	if err != nil {
		return err
	}
	a.store = store
	a.OnTerminated(func(_ error) {
		if err := store.Close(); err != nil {
			zlog.Warn("closing offer store", zap.Error(err))
		}
	})

	source, err := ingest.NewEventSource(a.Config.EventsStoreURL)
	if err != nil {
		return err
	}

	a.processor = ingest.NewProcessor(store, a.graph, a.ticks, zlog)
	if err := a.processor.Bootstrap(ctx, a.Config.SnapshotURL, a.Config.SnapshotLedger); err != nil {
		return fmt.Errorf("bootstrapping graph: %w", err)
	}

	a.OnTerminating(a.processor.Shutdown)
	a.processor.OnTerminated(a.Shutdown)

	go a.processor.Launch(ctx, source, a.Config.PollInterval)
	return nil
}

func (a *App) Graph() *graph.Graph {
	return a.graph
}

func (a *App) Finder() *pathfinder.Finder {
	return a.finder
}

func (a *App) Ticks() *tick.Manager {
	return a.ticks
}

// IsReady is true once the graph reflects a complete ledger.
func (a *App) IsReady() bool {
	if a.processor == nil {
		return a.graph.Stats().Assets > 0
	}
	return a.processor.IsReady()
}

func (c *Config) validate() error {
	if c.MaxPathLength < 2 {
		return fmt.Errorf("max path length must be at least 2, got %d", c.MaxPathLength)
	}

	if !c.EnableIngestion {
		if c.SnapshotURL == "" {
			return errors.New("a snapshot is required when ingestion is disabled")
		}
		return nil
	}

	if c.KvdbDSN == "" {
		return errors.New("kvdb dsn is required when ingestion is enabled")
	}
	if c.EventsStoreURL == "" {
		return errors.New("events store url is required when ingestion is enabled")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	return nil
}
