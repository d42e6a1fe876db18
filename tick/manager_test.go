package tick

import (
	"math/big"
	"testing"

	"github.com/streamingfast/dexpath/asset"
	"github.com/streamingfast/dexpath/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var usd = asset.MustParse("USD:GISSUERX")
var eur = asset.MustParse("EUR:GISSUERY")

func TestManager_PublishToMatchingPair(t *testing.T) {
	m := NewManager()
	sub := m.Subscribe(usd, eur)
	other := m.Subscribe(eur, usd)

	m.Publish(&graph.Tick{Selling: usd, Buying: eur, BestAsk: big.NewRat(1, 2)})

	require.Len(t, sub.Stream, 1)
	received := <-sub.Stream
	assert.Equal(t, "1/2", received.BestAsk.String())
	assert.Len(t, other.Stream, 0)
}

func TestManager_Unsubscribe(t *testing.T) {
	m := NewManager()
	sub := m.Subscribe(usd, eur)
	assert.True(t, m.HasSubscribers(usd, eur))

	assert.True(t, m.Unsubscribe(sub))
	assert.False(t, m.HasSubscribers(usd, eur))
	assert.True(t, sub.Closed())
	assert.NoError(t, sub.Err)

	_, open := <-sub.Stream
	assert.False(t, open)

	assert.False(t, m.Unsubscribe(sub))
	m.Publish(&graph.Tick{Selling: usd, Buying: eur})
}

func TestManager_SlowSubscriberIsDropped(t *testing.T) {
	m := NewManager()
	slow := m.Subscribe(usd, eur)
	fast := m.Subscribe(usd, eur)

	for i := 0; i < defaultStreamSize; i++ {
		m.Publish(&graph.Tick{Selling: usd, Buying: eur})
		<-fast.Stream
	}
	assert.False(t, slow.Closed())

	m.Publish(&graph.Tick{Selling: usd, Buying: eur})
	assert.True(t, slow.Closed())
	assert.ErrorIs(t, slow.Err, ErrSlowSubscriber)
	assert.False(t, fast.Closed())
	assert.Len(t, fast.Stream, 1)

	assert.Equal(t, [][2]asset.ID{{usd, eur}}, m.Pairs())
}
