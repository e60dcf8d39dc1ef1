package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBuffer is the per-subscriber channel capacity used when New is given
// a non-positive size.
const DefaultBuffer = 256

// Broker is a non-blocking fan-out of Events.
type Broker struct {
	mu      sync.RWMutex
	buffer  int
	nextSeq atomic.Uint64
	nextID  int
	subs    map[int]*Subscription
	closed  bool
}

// Subscription is one observer's view of the stream.
type Subscription struct {
	id      int
	ch      chan Event
	dropped atomic.Uint64
}

// Events returns the receive channel. It is closed on Unsubscribe or when the
// broker closes.
func (s *Subscription) Events() <-chan Event { return s.ch }

// Dropped reports how many events were discarded because the buffer was full.
func (s *Subscription) Dropped() uint64 { return s.dropped.Load() }

// New constructs a Broker with the given per-subscriber buffer.
func New(buffer int) *Broker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Broker{buffer: buffer, subs: make(map[int]*Subscription)}
}

// Subscribe attaches a new observer. Subscribing to a closed broker returns a
// subscription whose channel is already closed.
func (b *Broker) Subscribe() *Subscription {
	sub := &Subscription{ch: make(chan Event, b.buffer)}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(sub.ch)
		return sub
	}
	b.nextID++
	sub.id = b.nextID
	b.subs[sub.id] = sub
	return sub
}

// Unsubscribe detaches sub and closes its channel. It is safe to call more
// than once.
func (b *Broker) Unsubscribe(sub *Subscription) {
	if b == nil || sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub.id]; !ok {
		return
	}
	delete(b.subs, sub.id)
	close(sub.ch)
}

// Publish stamps evt and offers it to every subscriber without blocking.
func (b *Broker) Publish(evt Event) {
	if b == nil {
		return
	}
	evt.Sequence = b.nextSeq.Add(1)
	if evt.Time.IsZero() {
		evt.Time = time.Now().UTC()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		select {
		case sub.ch <- evt:
		default:
			sub.dropped.Add(1)
		}
	}
}

// Subscribers reports the number of attached observers.
func (b *Broker) Subscribers() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close detaches every subscriber. Later Publish calls are no-ops.
func (b *Broker) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}
