package offerstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/streamingfast/dexpath/asset"
	"github.com/streamingfast/dexpath/graph"
	"github.com/streamingfast/kvdb/store"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("offer not found")

// Store persists the current set of resting offers, keyed by pair so the
// full content of one pair is a single prefix scan, plus the last ledger
// applied to it.
type Store struct {
	kv     store.KVStore
	logger *zap.Logger
}

func New(kv store.KVStore, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zlog
	}

	return &Store{
		kv:     kv,
		logger: logger,
	}
}

func NewFromDSN(dsn string, logger *zap.Logger) (*Store, error) {
	kv, err := store.New(dsn)
	if err != nil {
		return nil, fmt.Errorf("opening kvdb store %q: %w", dsn, err)
	}
	return New(kv, logger), nil
}

// PutOffer creates or overwrites an offer. The previous version, if any, is
// returned so callers know which pair it used to live in.
func (s *Store) PutOffer(ctx context.Context, offer *graph.Offer) (previous *graph.Offer, err error) {
	previous, err = s.GetOffer(ctx, offer.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if previous != nil && (previous.Selling != offer.Selling || previous.Buying != offer.Buying) {
		if err := s.kv.BatchDelete(ctx, [][]byte{Keys.offer(previous.Selling, previous.Buying, previous.ID)}); err != nil {
			return nil, fmt.Errorf("deleting offer %d from previous pair: %w", offer.ID, err)
		}
	}

	payload, err := json.Marshal(offer)
	if err != nil {
		return nil, fmt.Errorf("encoding offer %d: %w", offer.ID, err)
	}

	key := Keys.offer(offer.Selling, offer.Buying, offer.ID)
	if err := s.kv.Put(ctx, key, payload); err != nil {
		return nil, fmt.Errorf("writing offer %d: %w", offer.ID, err)
	}
	if err := s.kv.Put(ctx, Keys.offerIndex(offer.ID), key); err != nil {
		return nil, fmt.Errorf("writing offer %d index: %w", offer.ID, err)
	}
	if err := s.kv.FlushPuts(ctx); err != nil {
		return nil, fmt.Errorf("flushing offer %d: %w", offer.ID, err)
	}

	return previous, nil
}

func (s *Store) GetOffer(ctx context.Context, offerID uint64) (*graph.Offer, error) {
	key, err := s.kv.Get(ctx, Keys.offerIndex(offerID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("offer %d: %w", offerID, ErrNotFound)
		}
		return nil, fmt.Errorf("reading offer %d index: %w", offerID, err)
	}

	payload, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("offer %d indexed but missing: %w", offerID, ErrNotFound)
		}
		return nil, fmt.Errorf("reading offer %d: %w", offerID, err)
	}

	return decodeOffer(payload)
}

// DeleteOffer removes the offer and returns what was stored, the ledger
// only tells which offer went away, not which pair it belonged to.
func (s *Store) DeleteOffer(ctx context.Context, offerID uint64) (*graph.Offer, error) {
	offer, err := s.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}

	keys := [][]byte{
		Keys.offer(offer.Selling, offer.Buying, offer.ID),
		Keys.offerIndex(offer.ID),
	}
	if err := s.kv.BatchDelete(ctx, keys); err != nil {
		return nil, fmt.Errorf("deleting offer %d: %w", offerID, err)
	}

	return offer, nil
}

func (s *Store) PairOffers(ctx context.Context, selling, buying asset.ID) ([]*graph.Offer, error) {
	return s.scan(ctx, Keys.pairPrefix(selling, buying))
}

func (s *Store) AllOffers(ctx context.Context) ([]*graph.Offer, error) {
	return s.scan(ctx, Keys.offersPrefix())
}

func (s *Store) scan(ctx context.Context, prefix []byte) (out []*graph.Offer, err error) {
	iter := s.kv.Prefix(ctx, prefix, store.Unlimited)
	if iter.Err() != nil {
		return nil, fmt.Errorf("scanning offers: %w", iter.Err())
	}

	for iter.Next() {
		item := iter.Item()
		offer, err := decodeOffer(item.Value)
		if err != nil {
			return nil, fmt.Errorf("offer %d: %w", Keys.unpackOfferID(item.Key), err)
		}
		out = append(out, offer)
	}

	if iter.Err() != nil {
		return nil, fmt.Errorf("scanning offers: %w", iter.Err())
	}
	return out, nil
}

// StoreCursor records the last ledger whose events are fully reflected in
// the store.
func (s *Store) StoreCursor(ctx context.Context, ledger uint32) error {
	value := make([]byte, 4)
	binary.BigEndian.PutUint32(value, ledger)

	if err := s.kv.Put(ctx, Keys.cursor(), value); err != nil {
		return fmt.Errorf("writing cursor: %w", err)
	}
	if err := s.kv.FlushPuts(ctx); err != nil {
		return fmt.Errorf("flushing cursor: %w", err)
	}

	s.logger.Debug("cursor stored", zap.Uint32("ledger", ledger))
	return nil
}

func (s *Store) LoadCursor(ctx context.Context) (ledger uint32, found bool, err error) {
	value, err := s.kv.Get(ctx, Keys.cursor())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("reading cursor: %w", err)
	}

	if len(value) != 4 {
		return 0, false, fmt.Errorf("invalid cursor value of %d bytes", len(value))
	}
	return binary.BigEndian.Uint32(value), true, nil
}

func (s *Store) Close() error {
	return s.kv.Close()
}

func decodeOffer(payload []byte) (*graph.Offer, error) {
	offer := &graph.Offer{}
	if err := json.Unmarshal(payload, offer); err != nil {
		return nil, fmt.Errorf("unable to decode offer: %w", err)
	}
	return offer, nil
}
