package broadcast

import (
	"sync"
)

// DefaultSubscriberBuffer is used when Subscribe is called with a non-positive buffer.
const DefaultSubscriberBuffer = 16

// Observer receives bus bookkeeping. *metrics.NotificationMetrics satisfies it.
type Observer interface {
	IncDropped()
	SetSubscribers(n int)
}

// Bus fans events out to in-process subscribers. Delivery is at-most-once:
// Publish never blocks, and an event is dropped for any subscriber whose
// buffer is full.
type Bus[T any] struct {
	mu       sync.RWMutex
	subs     map[uint64]chan T
	nextID   uint64
	observer Observer
}

// Subscription is a live attachment to a Bus.
type Subscription[T any] struct {
	bus  *Bus[T]
	id   uint64
	ch   chan T
	once sync.Once
}

// New constructs an empty bus. observer may be nil.
func New[T any](observer Observer) *Bus[T] {
	return &Bus[T]{
		subs:     make(map[uint64]chan T),
		observer: observer,
	}
}

// Subscribe attaches a new subscriber with the given channel buffer.
func (b *Bus[T]) Subscribe(buffer int) *Subscription[T] {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	ch := make(chan T, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	count := len(b.subs)
	b.mu.Unlock()

	b.reportSubscribers(count)
	return &Subscription[T]{bus: b, id: id, ch: ch}
}

// Publish delivers event to every subscriber with buffer space and returns how
// many subscribers received it.
func (b *Bus[T]) Publish(event T) int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for _, ch := range b.subs {
		select {
		case ch <- event:
			delivered++
		default:
			if b.observer != nil {
				b.observer.IncDropped()
			}
		}
	}
	return delivered
}

// Subscribers returns the number of attached subscribers.
func (b *Bus[T]) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Bus[T]) unsubscribe(id uint64) {
	b.mu.Lock()
	ch, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
		// Publish holds the read lock while sending, so closing under the write lock is safe.
		close(ch)
	}
	count := len(b.subs)
	b.mu.Unlock()

	if ok {
		b.reportSubscribers(count)
	}
}

func (b *Bus[T]) reportSubscribers(n int) {
	if b.observer != nil {
		b.observer.SetSubscribers(n)
	}
}

// C returns the receive channel. It is closed once the subscription is closed.
func (s *Subscription[T]) C() <-chan T {
	if s == nil {
		return nil
	}
	return s.ch
}

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription[T]) Close() {
	if s == nil || s.bus == nil {
		return
	}
	s.once.Do(func() {
		s.bus.unsubscribe(s.id)
	})
}
