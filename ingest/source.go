package ingest

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/streamingfast/dstore"
	"go.uber.org/zap"
)

const eventFileSuffix = ".jsonl"

// EventFilename names the file holding the offer events of one ledger,
// zero padded so lexical and ledger order agree.
func EventFilename(ledger uint32) string {
	return fmt.Sprintf("%010d%s", ledger, eventFileSuffix)
}

// EventSource reads ledger event files out of a dstore.
type EventSource struct {
	store dstore.Store
}

func NewEventSource(storeURL string) (*EventSource, error) {
	store, err := dstore.NewSimpleStore(storeURL)
	if err != nil {
		return nil, fmt.Errorf("opening events store %q: %w", storeURL, err)
	}
	return NewEventSourceFromStore(store), nil
}

func NewEventSourceFromStore(store dstore.Store) *EventSource {
	return &EventSource{store: store}
}

// ReadLedgers calls f, in ledger order, for every ledger file at or above
// startLedger. Events of a file belonging to another ledger are rejected.
func (s *EventSource) ReadLedgers(ctx context.Context, startLedger uint32, f func(ledger uint32, events []*OfferEvent) error) error {
	var ledgers []uint32
	err := s.store.Walk(ctx, "", func(filename string) error {
		ledger, ok := parseEventFilename(filename)
		if !ok {
			zlog.Debug("skipping unrelated file", zap.String("filename", filename))
			return nil
		}
		if ledger >= startLedger {
			ledgers = append(ledgers, ledger)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("listing event files: %w", err)
	}
	sort.Slice(ledgers, func(i, j int) bool { return ledgers[i] < ledgers[j] })

	for _, ledger := range ledgers {
		events, err := s.readLedger(ctx, ledger)
		if err != nil {
			return err
		}

		if err := f(ledger, events); err != nil {
			return fmt.Errorf("processing ledger %d: %w", ledger, err)
		}
	}
	return nil
}

func (s *EventSource) readLedger(ctx context.Context, ledger uint32) (out []*OfferEvent, err error) {
	reader, err := s.store.OpenObject(ctx, EventFilename(ledger))
	if err != nil {
		return nil, fmt.Errorf("opening ledger %d events: %w", ledger, err)
	}
	defer reader.Close()

	err = readLines(reader, func(line string) error {
		event, err := decodeEvent(line)
		if err != nil {
			return err
		}
		if event.Ledger != ledger {
			return fmt.Errorf("event of ledger %d found in ledger %d file", event.Ledger, ledger)
		}

		out = append(out, event)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading ledger %d events: %w", ledger, err)
	}
	return out, nil
}

func parseEventFilename(filename string) (uint32, bool) {
	if !strings.HasSuffix(filename, eventFileSuffix) {
		return 0, false
	}

	ledger, err := strconv.ParseUint(strings.TrimSuffix(filename, eventFileSuffix), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(ledger), true
}
