package pathfinder

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/streamingfast/dexpath/asset"
	"github.com/streamingfast/dexpath/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var usd = asset.MustParse("USD:IssuerX")
var eur = asset.MustParse("EUR:IssuerY")

func TestFinder_FindPaths_EndToEnd(t *testing.T) {
	// EUR is sold for USD at 1/2 and USD is sold for native at 1/1, so
	// delivering 100 EUR costs 50 USD, which itself costs 50 native.
	finder := testFinder(t,
		testOffer(1, eur, usd, 500, 1, 2),
		testOffer(2, usd, asset.Native, 1000, 1, 1),
	)

	result := finder.FindPaths([]asset.ID{asset.Native, usd}, eur, decimal.NewFromInt(100))

	require.Len(t, result[usd], 1)
	assertDecimal(t, 50, result[usd][0].Amount)
	assert.Equal(t, []asset.ID{}, result[usd][0].Assets)

	require.Len(t, result[asset.Native], 1)
	assertDecimal(t, 50, result[asset.Native][0].Amount)
	assert.Equal(t, []asset.ID{usd}, result[asset.Native][0].Assets)
}

func TestFinder_FindPaths_NativeShortcut(t *testing.T) {
	finder := testFinder(t, testOffer(1, asset.Native, usd, 1000, 1, 1))

	result := finder.FindPaths([]asset.ID{asset.Native}, asset.Native, decimal.NewFromInt(42))
	require.Len(t, result[asset.Native], 1)
	assertDecimal(t, 42, result[asset.Native][0].Amount)
	assert.Empty(t, result[asset.Native][0].Assets)
}

func TestFinder_FindPaths_DestinationIsSource(t *testing.T) {
	finder := testFinder(t, testOffer(1, eur, usd, 1000, 1, 1))

	result := finder.FindPaths([]asset.ID{eur, usd}, eur, decimal.NewFromInt(10))
	require.Len(t, result[eur], 1)
	assertDecimal(t, 10, result[eur][0].Amount)
	assert.Empty(t, result[eur][0].Assets)

	require.Len(t, result[usd], 1)
	assertDecimal(t, 10, result[usd][0].Amount)
}

func TestFinder_FindPaths_Unreachable(t *testing.T) {
	btc := asset.MustParse("BTC:IssuerZ")
	finder := testFinder(t, testOffer(1, eur, usd, 1000, 1, 1))

	result := finder.FindPaths([]asset.ID{btc}, eur, decimal.NewFromInt(10))
	assert.NotNil(t, result[btc])
	assert.Len(t, result[btc], 0)

	result = finder.FindPaths([]asset.ID{usd}, asset.MustParse("XYZ:Nobody"), decimal.NewFromInt(10))
	assert.Len(t, result[usd], 0)
}

func TestFinder_FindPaths_CapacityGating(t *testing.T) {
	mid := asset.MustParse("MID:Issuer")
	finder := testFinder(t,
		testOffer(1, eur, usd, 50, 1, 1),
		testOffer(2, eur, mid, 1000, 1, 1),
		testOffer(3, mid, usd, 1000, 1, 1),
	)

	result := finder.FindPaths([]asset.ID{usd}, eur, decimal.NewFromInt(100))
	require.Len(t, result[usd], 1)
	assertDecimal(t, 100, result[usd][0].Amount)
	assert.Equal(t, []asset.ID{mid}, result[usd][0].Assets, "the direct edge lacks capacity")
}

func TestFinder_FindPaths_SkipsEdgesThatCannotFill(t *testing.T) {
	// capacity covers the amount but the ledger rounding leaves the book one unit short
	finder := testFinder(t, testOffer(1, eur, usd, 10, 1, 3))

	result := finder.FindPaths([]asset.ID{usd}, eur, decimal.NewFromInt(10))
	assert.Len(t, result[usd], 0)

	result = finder.FindPaths([]asset.ID{usd}, eur, decimal.NewFromInt(9))
	require.Len(t, result[usd], 1)
	assertDecimal(t, 3, result[usd][0].Amount)
}

func TestFinder_FindPaths_HopBound(t *testing.T) {
	var chain []asset.ID
	for i := 0; i < 8; i++ {
		chain = append(chain, asset.MustNew(fmt.Sprintf("A%d", i), "Issuer"))
	}

	var offers []*graph.Offer
	for i := 0; i < len(chain)-1; i++ {
		offers = append(offers, testOffer(uint64(i), chain[i], chain[i+1], 1000, 1, 1))
	}
	finder := testFinder(t, offers...)

	result := finder.FindPaths(chain[1:], chain[0], decimal.NewFromInt(10))
	for source, paths := range result {
		for _, path := range paths {
			assert.LessOrEqual(t, len(path.Assets), 6, "path from %s", source)
		}
	}

	for i := 1; i <= 6; i++ {
		require.Len(t, result[chain[i]], 1, "source %s", chain[i])
		assert.Len(t, result[chain[i]][0].Assets, i-1)
	}
	assert.Len(t, result[chain[7]], 0, "reaching A7 would take 7 hops")

	short := New(testGraph(t, offers...), WithMaxPathLength(3))
	result = short.FindPaths(chain[1:], chain[0], decimal.NewFromInt(10))
	assert.Len(t, result[chain[2]], 1)
	assert.Len(t, result[chain[3]], 0)
}

func TestFinder_FindPaths_DiamondPruning(t *testing.T) {
	cheap := asset.MustParse("CHEAP:Issuer")
	costly := asset.MustParse("COSTLY:Issuer")
	src := asset.MustParse("SRC:Issuer")

	tests := []struct {
		name          string
		offers        []*graph.Offer
		expectAmounts []int64
		expectVia     [][]asset.ID
	}{
		{
			name: "cheaper route explored first prunes the other one",
			offers: []*graph.Offer{
				testOffer(1, eur, cheap, 1000, 1, 1),
				testOffer(2, eur, costly, 1000, 2, 1),
				testOffer(3, cheap, src, 1000, 1, 1),
				testOffer(4, costly, src, 1000, 1, 1),
			},
			expectAmounts: []int64{100},
			expectVia:     [][]asset.ID{{cheap}},
		},
		{
			name: "costly route explored first is improved upon",
			offers: []*graph.Offer{
				testOffer(1, eur, costly, 1000, 2, 1),
				testOffer(2, eur, cheap, 1000, 1, 1),
				testOffer(3, cheap, src, 1000, 1, 1),
				testOffer(4, costly, src, 1000, 1, 1),
			},
			expectAmounts: []int64{200, 100},
			expectVia:     [][]asset.ID{{costly}, {cheap}},
		},
		{
			name: "tie is not strictly lower",
			offers: []*graph.Offer{
				testOffer(1, eur, cheap, 1000, 1, 1),
				testOffer(2, eur, costly, 1000, 1, 1),
				testOffer(3, cheap, src, 1000, 1, 1),
				testOffer(4, costly, src, 1000, 1, 1),
			},
			expectAmounts: []int64{100},
			expectVia:     [][]asset.ID{{cheap}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			finder := testFinder(t, test.offers...)
			result := finder.FindPaths([]asset.ID{src}, eur, decimal.NewFromInt(100))

			require.Len(t, result[src], len(test.expectAmounts))
			for i, expected := range test.expectAmounts {
				assertDecimal(t, expected, result[src][i].Amount)
				assert.Equal(t, test.expectVia[i], result[src][i].Assets)
			}
		})
	}
}

func TestFinder_FindPaths_CyclesAreCut(t *testing.T) {
	finder := testFinder(t,
		testOffer(1, eur, usd, 1000, 1, 1),
		testOffer(2, usd, eur, 1000, 1, 2),
		testOffer(3, usd, asset.Native, 1000, 1, 1),
	)

	result := finder.FindPaths([]asset.ID{asset.Native}, eur, decimal.NewFromInt(10))
	require.Len(t, result[asset.Native], 1)
	assert.Equal(t, []asset.ID{usd}, result[asset.Native][0].Assets)
}

func TestFinder_FindPaths_SourceIsNotALeaf(t *testing.T) {
	finder := testFinder(t,
		testOffer(1, eur, usd, 1000, 1, 1),
		testOffer(2, usd, asset.Native, 1000, 1, 2),
	)

	result := finder.FindPaths([]asset.ID{usd, asset.Native}, eur, decimal.NewFromInt(100))
	require.Len(t, result[usd], 1)
	require.Len(t, result[asset.Native], 1)
	assertDecimal(t, 50, result[asset.Native][0].Amount)
}

func TestResult_Best(t *testing.T) {
	a := asset.MustParse("A:Issuer")
	b := asset.MustParse("B:Issuer")
	result := Result{
		usd: {
			{Amount: decimal.NewFromInt(30), Assets: []asset.ID{a}},
			{Amount: decimal.NewFromInt(20), Assets: []asset.ID{a, b}},
			{Amount: decimal.NewFromInt(20), Assets: []asset.ID{b}},
		},
		asset.Native: {},
	}

	best := result.Best(eur, decimal.NewFromInt(100))
	require.Len(t, best, 1)
	require.Contains(t, best, usd)
	assertDecimal(t, 20, best[usd].SourceAmount)
	assert.Equal(t, []asset.ID{b}, best[usd].Path)
	assert.Equal(t, eur, best[usd].Destination)
	assertDecimal(t, 100, best[usd].DestinationAmount)
}

func TestFinder_FindPathsBatch(t *testing.T) {
	finder := testFinder(t,
		testOffer(1, eur, usd, 500, 1, 2),
		testOffer(2, usd, asset.Native, 1000, 1, 1),
	)

	var queries []*Query
	for i := int64(1); i <= 20; i++ {
		queries = append(queries, &Query{Sources: []asset.ID{asset.Native}, Destination: eur, Amount: decimal.NewFromInt(i * 10)})
	}

	results, err := finder.FindPathsBatch(context.Background(), queries, 4)
	require.NoError(t, err)
	require.Len(t, results, len(queries))
	for i, result := range results {
		require.Len(t, result[asset.Native], 1)
		assertDecimal(t, int64(i+1)*5, result[asset.Native][0].Amount)
	}
}

func TestFinder_FindPathsBatch_Canceled(t *testing.T) {
	finder := testFinder(t, testOffer(1, eur, usd, 500, 1, 2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := finder.FindPathsBatch(ctx, []*Query{{Sources: []asset.ID{usd}, Destination: eur, Amount: decimal.NewFromInt(1)}}, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func testGraph(t *testing.T, offers ...*graph.Offer) *graph.Graph {
	t.Helper()

	g := graph.New(zap.NewNop())
	require.NoError(t, g.Build(offers))
	return g
}

func testFinder(t *testing.T, offers ...*graph.Offer) *Finder {
	t.Helper()
	return New(testGraph(t, offers...))
}

func testOffer(id uint64, selling, buying asset.ID, amount int64, priceN, priceD int32) *graph.Offer {
	return &graph.Offer{
		ID:      id,
		Selling: selling,
		Buying:  buying,
		Amount:  decimal.NewFromInt(amount),
		PriceN:  priceN,
		PriceD:  priceD,
	}
}

func assertDecimal(t *testing.T, expected int64, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.NewFromInt(expected).Equal(actual), "expected %d, got %s", expected, actual)
}
