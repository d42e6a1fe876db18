package orderbook

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Order is the economics of one resting offer on an edge. Amount is in
// units of the selling asset, the price PriceN/PriceD is units of the
// buying asset per unit of the selling asset.
type Order struct {
	Amount decimal.Decimal
	PriceN int32
	PriceD int32
}

func NewOrder(amount decimal.Decimal, priceN, priceD int32) Order {
	return Order{Amount: amount, PriceN: priceN, PriceD: priceD}
}

func (o Order) Validate() error {
	if o.PriceN <= 0 || o.PriceD <= 0 {
		return fmt.Errorf("price %d/%d must be strictly positive", o.PriceN, o.PriceD)
	}
	if o.Amount.IsNegative() {
		return fmt.Errorf("amount %s is negative", o.Amount)
	}
	return nil
}

// Price returns the exact price, never use a float approximation for
// anything affecting amounts.
func (o Order) Price() *big.Rat {
	return big.NewRat(int64(o.PriceN), int64(o.PriceD))
}

func (o Order) String() string {
	return fmt.Sprintf("%s @ %d/%d", o.Amount, o.PriceN, o.PriceD)
}

// cmpPrice compares the price of a and b, returns -1 if a < b, 0 if a == b, +1 if a > b
func cmpPrice(a, b Order) int {
	left := new(big.Int).Mul(big.NewInt(int64(a.PriceN)), big.NewInt(int64(b.PriceD)))
	right := new(big.Int).Mul(big.NewInt(int64(b.PriceN)), big.NewInt(int64(a.PriceD)))
	return left.Cmp(right)
}
