package tick

import (
	"errors"
	"sync"

	"github.com/streamingfast/dexpath/asset"
	"github.com/streamingfast/dexpath/graph"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

var ErrSlowSubscriber = errors.New("subscriber stream is full")

const defaultStreamSize = 200

type pair struct {
	selling asset.ID
	buying  asset.ID
}

func (p pair) String() string {
	return p.selling.String() + " -> " + p.buying.String()
}

// Subscription receives every tick of one pair on Stream. Stream is closed
// when the subscription ends, Err then tells why (nil on Unsubscribe).
type Subscription struct {
	Stream chan *graph.Tick
	Err    error

	pair   pair
	closed *atomic.Bool
}

func NewSubscription(selling, buying asset.ID) *Subscription {
	return &Subscription{
		Stream: make(chan *graph.Tick, defaultStreamSize),
		pair:   pair{selling: selling, buying: buying},
		closed: atomic.NewBool(false),
	}
}

func (s *Subscription) close(err error) {
	if !s.closed.CAS(false, true) {
		return
	}
	s.Err = err
	close(s.Stream)
}

func (s *Subscription) Closed() bool {
	return s.closed.Load()
}

// Manager fans ticks out to the subscriptions of the pair they belong to.
// Publishing never blocks, a subscriber that falls behind is dropped.
// Streams are only closed under the write lock and only written to under
// the read lock.
type Manager struct {
	sync.RWMutex

	subscriptions map[pair][]*Subscription
}

func NewManager() *Manager {
	return &Manager{
		RWMutex:       sync.RWMutex{},
		subscriptions: map[pair][]*Subscription{},
	}
}

func (m *Manager) Subscribe(selling, buying asset.ID) *Subscription {
	sub := NewSubscription(selling, buying)

	m.Lock()
	defer m.Unlock()
	m.subscriptions[sub.pair] = append(m.subscriptions[sub.pair], sub)
	zlog.Info("subscribed",
		zap.Stringer("pair", sub.pair),
		zap.Int("new_length", len(m.subscriptions[sub.pair])),
	)
	return sub
}

func (m *Manager) Unsubscribe(toRemove *Subscription) bool {
	m.Lock()
	defer m.Unlock()

	removed := m.remove(toRemove)
	toRemove.close(nil)
	return removed
}

// remove must be called with the write lock held.
func (m *Manager) remove(toRemove *Subscription) bool {
	subs, ok := m.subscriptions[toRemove.pair]
	if !ok {
		return false
	}

	var newListeners []*Subscription
	found := false
	for _, sub := range subs {
		if sub == toRemove {
			found = true
			continue
		}
		newListeners = append(newListeners, sub)
	}

	if len(newListeners) == 0 {
		delete(m.subscriptions, toRemove.pair)
	} else {
		m.subscriptions[toRemove.pair] = newListeners
	}

	zlog.Info("unsubscribed",
		zap.Stringer("pair", toRemove.pair),
		zap.Int("new_length", len(newListeners)),
	)
	return found
}

func (m *Manager) Publish(t *graph.Tick) {
	key := pair{selling: t.Selling, buying: t.Buying}

	var slow []*Subscription
	m.RLock()
	for _, sub := range m.subscriptions[key] {
		if sub.Closed() {
			continue
		}

		select {
		case sub.Stream <- t:
		default:
			slow = append(slow, sub)
		}
	}
	m.RUnlock()

	if len(slow) == 0 {
		return
	}

	m.Lock()
	defer m.Unlock()
	for _, sub := range slow {
		zlog.Warn("dropping slow tick subscriber", zap.Stringer("pair", sub.pair), zap.Int("stream_length", len(sub.Stream)))
		m.remove(sub)
		sub.close(ErrSlowSubscriber)
	}
}

// Pairs lists the pairs having at least one subscriber.
func (m *Manager) Pairs() (out [][2]asset.ID) {
	m.RLock()
	defer m.RUnlock()

	for p := range m.subscriptions {
		out = append(out, [2]asset.ID{p.selling, p.buying})
	}
	return out
}

func (m *Manager) HasSubscribers(selling, buying asset.ID) bool {
	m.RLock()
	defer m.RUnlock()

	return len(m.subscriptions[pair{selling: selling, buying: buying}]) > 0
}
