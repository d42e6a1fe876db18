package orderbook

import (
	"math/big"

	"github.com/shopspring/decimal"
)

var bigOne = big.NewInt(1)

// ratFloor relies on big.Int.DivMod being Euclidean with the always
// positive denominator of a big.Rat, which makes it a floor division.
func ratFloor(r *big.Rat) *big.Int {
	q := new(big.Int)
	m := new(big.Int)
	q.DivMod(r.Num(), r.Denom(), m)
	return q
}

func ratCeil(r *big.Rat) *big.Int {
	q := new(big.Int)
	m := new(big.Int)
	q.DivMod(r.Num(), r.Denom(), m)
	if m.Sign() != 0 {
		q.Add(q, bigOne)
	}
	return q
}

func intToDecimal(i *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(i, 0)
}
