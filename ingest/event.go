package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/streamingfast/dexpath/graph"
)

type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventRemoved EventType = "removed"
)

// OfferEvent is one offer change extracted from a ledger. Removals only
// need the offer ID to be meaningful.
type OfferEvent struct {
	Ledger uint32       `json:"ledger"`
	Type   EventType    `json:"type"`
	Offer  *graph.Offer `json:"offer"`
}

func (e *OfferEvent) Validate() error {
	if e.Offer == nil {
		return fmt.Errorf("ledger %d %s event has no offer", e.Ledger, e.Type)
	}

	switch e.Type {
	case EventCreated, EventUpdated:
		return e.Offer.Validate()
	case EventRemoved:
		return nil
	default:
		return fmt.Errorf("ledger %d offer %d: unknown event type %q", e.Ledger, e.Offer.ID, e.Type)
	}
}

func decodeEvent(line string) (*OfferEvent, error) {
	event := &OfferEvent{}
	if err := json.Unmarshal([]byte(line), event); err != nil {
		return nil, fmt.Errorf("unable to decode offer event: %w", err)
	}
	return event, nil
}
