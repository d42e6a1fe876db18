package orderbook

import (
	"math/big"
	"sort"

	"github.com/shopspring/decimal"
)

// OrderBook holds the resting sell orders of one directed edge, in matching
// order once Sort has been called. It is not safe for concurrent mutation,
// the owning graph serializes writers.
type OrderBook struct {
	orders []Order
	sorted bool
}

func New(orders ...Order) *OrderBook {
	b := &OrderBook{}
	for _, o := range orders {
		b.Add(o)
	}
	return b
}

// Add appends without sorting, call Sort once all orders are in.
func (b *OrderBook) Add(order Order) {
	b.orders = append(b.orders, order)
	b.sorted = len(b.orders) <= 1
}

func (b *OrderBook) Sort() {
	if b.sorted {
		return
	}
	sortOrders(b.orders)
	b.sorted = true
}

func (b *OrderBook) IsSorted() bool {
	return b.sorted || len(b.orders) <= 1
}

func (b *OrderBook) Len() int {
	return len(b.orders)
}

func (b *OrderBook) Orders() []Order {
	out := make([]Order, len(b.orders))
	copy(out, b.orders)
	return out
}

// Capacity sums every order amount. Graph edges keep their own running
// capacity, this is used on rebuild and for consistency checks.
func (b *OrderBook) Capacity() decimal.Decimal {
	total := decimal.Zero
	for _, o := range b.orders {
		total = total.Add(o.Amount)
	}
	return total
}

// BestPrice returns the lowest price of the book, or nil when empty.
func (b *OrderBook) BestPrice() *big.Rat {
	if len(b.orders) == 0 {
		return nil
	}

	best := b.orders[0]
	if !b.IsSorted() {
		for _, o := range b.orders[1:] {
			if cmpPrice(o, best) < 0 {
				best = o
			}
		}
	}
	return best.Price()
}

// SellingBound is the largest amount of the selling asset the order can
// absorb while producing an integral buying amount, truncated the way the
// ledger truncates: floor the buying side, then ceil back to selling.
func SellingBound(order Order) decimal.Decimal {
	if order.PriceN > order.PriceD {
		return order.Amount
	}
	return intToDecimal(sellingBound(order).Num())
}

func sellingBound(order Order) *big.Rat {
	amount := order.Amount.Rat()
	if order.PriceN > order.PriceD {
		return amount
	}

	n := big.NewInt(int64(order.PriceN))
	d := big.NewInt(int64(order.PriceD))

	buying := ratFloor(new(big.Rat).Mul(amount, new(big.Rat).SetFrac(n, d)))
	selling := ratCeil(new(big.Rat).SetFrac(new(big.Int).Mul(buying, d), n))

	return new(big.Rat).SetInt(selling)
}

// Buy returns the amount of the buying asset needed to acquire exactly
// amountToBuy of the selling asset by consuming orders in price order. The
// cost is accumulated exactly and rounded up to an integral base unit once
// at the end. filled is false when the book ran out before amountToBuy was
// reached, in which case cost only covers what the book could provide.
func (b *OrderBook) Buy(amountToBuy decimal.Decimal) (cost decimal.Decimal, filled bool) {
	orders := b.orders
	if !b.IsSorted() {
		orders = b.Orders()
		sortOrders(orders)
	}

	remaining := amountToBuy.Rat()
	total := new(big.Rat)

	for _, order := range orders {
		if remaining.Sign() <= 0 {
			break
		}

		bound := sellingBound(order)
		price := order.Price()

		if remaining.Cmp(bound) > 0 {
			total.Add(total, new(big.Rat).Mul(bound, price))
			remaining.Sub(remaining, bound)
			continue
		}

		total.Add(total, new(big.Rat).Mul(remaining, price))
		remaining.SetInt64(0)
		break
	}

	return intToDecimal(ratCeil(total)), remaining.Sign() <= 0
}

func sortOrders(orders []Order) {
	sort.Stable(byPrice(orders))
}

type byPrice []Order

func (o byPrice) Len() int           { return len(o) }
func (o byPrice) Swap(i, j int)      { o[i], o[j] = o[j], o[i] }
func (o byPrice) Less(i, j int) bool { return cmpPrice(o[i], o[j]) < 0 }
