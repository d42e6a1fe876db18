package pathfinder

import (
	"github.com/shopspring/decimal"
	"github.com/streamingfast/dexpath/asset"
)

// PaymentPath is the single path retained for a source asset.
type PaymentPath struct {
	Source            asset.ID
	SourceAmount      decimal.Decimal
	Destination       asset.ID
	DestinationAmount decimal.Decimal
	Path              []asset.ID
}

// Best keeps the cheapest path of every source having one. Equal amounts
// prefer fewer hops, then the path found first.
func (r Result) Best(destination asset.ID, destinationAmount decimal.Decimal) map[asset.ID]*PaymentPath {
	out := map[asset.ID]*PaymentPath{}
	for source, paths := range r {
		var best *Path
		for i := range paths {
			candidate := &paths[i]
			if best == nil || candidate.Amount.LessThan(best.Amount) ||
				(candidate.Amount.Equal(best.Amount) && len(candidate.Assets) < len(best.Assets)) {
				best = candidate
			}
		}

		if best == nil {
			continue
		}

		out[source] = &PaymentPath{
			Source:            source,
			SourceAmount:      best.Amount,
			Destination:       destination,
			DestinationAmount: destinationAmount,
			Path:              best.Assets,
		}
	}
	return out
}
