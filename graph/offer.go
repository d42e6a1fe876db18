package graph

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/streamingfast/dexpath/asset"
	"github.com/streamingfast/dexpath/orderbook"
)

// Offer is a resting offer as pushed by ingestion, selling Amount of
// Selling for Buying at PriceN/PriceD units of Buying per unit of Selling.
type Offer struct {
	ID      uint64          `json:"id"`
	Seller  string          `json:"seller,omitempty"`
	Selling asset.ID        `json:"selling"`
	Buying  asset.ID        `json:"buying"`
	Amount  decimal.Decimal `json:"amount"`
	PriceN  int32           `json:"price_n"`
	PriceD  int32           `json:"price_d"`
}

func (o *Offer) Order() orderbook.Order {
	return orderbook.NewOrder(o.Amount, o.PriceN, o.PriceD)
}

func (o *Offer) Validate() error {
	if o.Selling == "" || o.Buying == "" {
		return fmt.Errorf("%w: offer %d is missing an asset", ErrInvalidOffer, o.ID)
	}
	if o.Selling == o.Buying {
		return fmt.Errorf("%w: offer %d sells and buys %s", ErrInvalidOffer, o.ID, o.Selling)
	}
	if err := o.Order().Validate(); err != nil {
		return fmt.Errorf("%w: offer %d: %s", ErrInvalidOffer, o.ID, err)
	}
	return nil
}

func (o *Offer) String() string {
	return fmt.Sprintf("offer %d %s -> %s (%s @ %d/%d)", o.ID, o.Selling, o.Buying, o.Amount, o.PriceN, o.PriceD)
}
