package dexpath

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/streamingfast/dexpath/asset"
	"github.com/streamingfast/dexpath/graph"
	"github.com/streamingfast/dexpath/ingest"
	_ "github.com/streamingfast/kvdb/store/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var usd = asset.MustParse("USD:IssuerX")
var eur = asset.MustParse("EUR:IssuerY")

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		config    *Config
		expectErr bool
	}{
		{name: "static graph", config: &Config{SnapshotURL: "file:///tmp/offers.jsonl", MaxPathLength: 7}},
		{name: "static graph without snapshot", config: &Config{MaxPathLength: 7}, expectErr: true},
		{name: "path length too short", config: &Config{SnapshotURL: "file:///tmp/offers.jsonl", MaxPathLength: 1}, expectErr: true},
		{
			name:   "ingestion",
			config: &Config{EnableIngestion: true, KvdbDSN: "badger:///tmp/x.db", EventsStoreURL: "file:///tmp/events", PollInterval: time.Second, MaxPathLength: 7},
		},
		{
			name:      "ingestion without dsn",
			config:    &Config{EnableIngestion: true, EventsStoreURL: "file:///tmp/events", PollInterval: time.Second, MaxPathLength: 7},
			expectErr: true,
		},
		{
			name:      "ingestion without events",
			config:    &Config{EnableIngestion: true, KvdbDSN: "badger:///tmp/x.db", PollInterval: time.Second, MaxPathLength: 7},
			expectErr: true,
		},
		{
			name:      "ingestion without poll interval",
			config:    &Config{EnableIngestion: true, KvdbDSN: "badger:///tmp/x.db", EventsStoreURL: "file:///tmp/events", MaxPathLength: 7},
			expectErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.config.validate()
			if test.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestApp_RunStatic(t *testing.T) {
	snapshot := writeJSONLines(t, filepath.Join(t.TempDir(), "offers.jsonl"),
		&graph.Offer{ID: 1, Selling: eur, Buying: usd, Amount: decimal.NewFromInt(500), PriceN: 1, PriceD: 2},
		&graph.Offer{ID: 2, Selling: usd, Buying: asset.Native, Amount: decimal.NewFromInt(1000), PriceN: 1, PriceD: 1},
	)

	app := New(&Config{SnapshotURL: "file://" + snapshot, MaxPathLength: 7})
	require.NoError(t, app.Run())
	defer app.Shutdown(nil)

	assert.True(t, app.IsReady())

	best := app.Finder().FindPaths([]asset.ID{asset.Native}, eur, decimal.NewFromInt(100)).Best(eur, decimal.NewFromInt(100))
	require.Contains(t, best, asset.Native)
	assert.True(t, decimal.NewFromInt(50).Equal(best[asset.Native].SourceAmount))
}

func TestApp_RunWithIngestion(t *testing.T) {
	tmp := t.TempDir()
	snapshot := writeJSONLines(t, filepath.Join(tmp, "offers.jsonl"),
		&graph.Offer{ID: 1, Selling: eur, Buying: usd, Amount: decimal.NewFromInt(500), PriceN: 1, PriceD: 2},
	)

	eventsDir := filepath.Join(tmp, "events")
	require.NoError(t, os.MkdirAll(eventsDir, 0755))
	writeJSONLines(t, filepath.Join(eventsDir, ingest.EventFilename(6)),
		&ingest.OfferEvent{Ledger: 6, Type: ingest.EventCreated, Offer: &graph.Offer{ID: 2, Selling: usd, Buying: asset.Native, Amount: decimal.NewFromInt(1000), PriceN: 1, PriceD: 1}},
	)

	app := New(&Config{
		SnapshotURL:     "file://" + snapshot,
		SnapshotLedger:  5,
		EventsStoreURL:  "file://" + eventsDir,
		KvdbDSN:         "badger://" + filepath.Join(tmp, "kv.db") + "?createTables=true",
		MaxPathLength:   7,
		PollInterval:    10 * time.Millisecond,
		EnableIngestion: true,
	})
	require.NoError(t, app.Run())

	require.Eventually(t, func() bool {
		_, found := app.Graph().EdgeData(usd, asset.Native)
		return found
	}, 5*time.Second, 10*time.Millisecond)
	assert.True(t, app.IsReady())

	result := app.Finder().FindPaths([]asset.ID{asset.Native}, eur, decimal.NewFromInt(100))
	require.Len(t, result[asset.Native], 1)

	app.Shutdown(nil)
	select {
	case <-app.Terminated():
	case <-time.After(5 * time.Second):
		t.Fatal("app did not terminate")
	}
}

func writeJSONLines(t *testing.T, path string, values ...interface{}) string {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	encoder := json.NewEncoder(f)
	for _, value := range values {
		require.NoError(t, encoder.Encode(value))
	}
	return path
}
