package orderbook

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Level aggregates every order resting at the same exact price.
type Level struct {
	Price  *big.Rat
	Amount decimal.Decimal
	Orders int
}

// Levels returns up to limit aggregated price levels, best price first. A
// limit of zero or less returns every level.
func (b *OrderBook) Levels(limit int) (out []Level) {
	orders := b.orders
	if !b.IsSorted() {
		orders = b.Orders()
		sortOrders(orders)
	}

	for _, o := range orders {
		price := o.Price()
		if n := len(out); n > 0 && out[n-1].Price.Cmp(price) == 0 {
			out[n-1].Amount = out[n-1].Amount.Add(o.Amount)
			out[n-1].Orders++
			continue
		}

		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, Level{Price: price, Amount: o.Amount, Orders: 1})
	}
	return out
}

// Invert returns the level with its price seen from the opposite side of
// the pair. The amount stays in the asset the orders are selling.
func (l Level) Invert() Level {
	return Level{
		Price:  new(big.Rat).Inv(l.Price),
		Amount: l.Amount,
		Orders: l.Orders,
	}
}
