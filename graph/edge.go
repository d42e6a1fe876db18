package graph

import (
	"math/big"

	"github.com/shopspring/decimal"
	"github.com/streamingfast/dexpath/asset"
	"github.com/streamingfast/dexpath/orderbook"
)

// EdgeData is the liquidity resting on one directed `selling -> buying`
// pair. Once published in the graph it is never mutated, updates swap in a
// new instance.
type EdgeData struct {
	Capacity  decimal.Decimal
	OrderBook *orderbook.OrderBook
}

func NewEdgeData(offers []*Offer) *EdgeData {
	data := &EdgeData{Capacity: decimal.Zero, OrderBook: orderbook.New()}
	for _, offer := range offers {
		data.add(offer)
	}
	return data
}

func (d *EdgeData) add(offer *Offer) {
	d.OrderBook.Add(offer.Order())
	d.Capacity = d.Capacity.Add(offer.Amount)
}

type Edge struct {
	To   asset.ID
	Data *EdgeData
}

// EdgeSummary is the read-only view of an edge handed out of the graph.
type EdgeSummary struct {
	To        asset.ID
	Capacity  decimal.Decimal
	BestPrice *big.Rat
	Orders    int
}

type adjacency map[asset.ID][]*Edge

func (a adjacency) get(from, to asset.ID) *Edge {
	for _, e := range a[from] {
		if e.To == to {
			return e
		}
	}
	return nil
}

func (a adjacency) add(from, to asset.ID, data *EdgeData) error {
	if a.get(from, to) != nil {
		return &DuplicateEdgeError{From: from, To: to}
	}

	a[from] = append(a[from], &Edge{To: to, Data: data})
	return nil
}

// put replaces the edge data, creating the edge when the pair is unknown.
func (a adjacency) put(from, to asset.ID, data *EdgeData) {
	if e := a.get(from, to); e != nil {
		e.Data = data
		return
	}
	a[from] = append(a[from], &Edge{To: to, Data: data})
}

// drop keeps an empty entry for from so lookups stay total. It never
// mutates the previous backing array, slices handed to readers stay valid.
func (a adjacency) drop(from, to asset.ID) bool {
	edges, found := a[from]
	if !found {
		return false
	}

	for i, e := range edges {
		if e.To == to {
			out := make([]*Edge, 0, len(edges)-1)
			out = append(out, edges[:i]...)
			a[from] = append(out, edges[i+1:]...)
			return true
		}
	}
	return false
}

func (a adjacency) sortAll() {
	for _, edges := range a {
		for _, e := range edges {
			e.Data.OrderBook.Sort()
		}
	}
}

func (a adjacency) stats() (out Stats) {
	out.Assets = len(a)
	for _, edges := range a {
		out.Edges += len(edges)
		for _, e := range edges {
			out.Orders += e.Data.OrderBook.Len()
		}
	}
	return
}
