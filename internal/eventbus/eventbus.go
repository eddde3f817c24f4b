package eventbus

import "sync"

// Event is any value published on the bus.
type Event any

// EventBus is an in-process publish/subscribe fan-out.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the default EventBus. Subscriber channels are buffered and delivery
// never blocks the publisher: a slow subscriber drops events.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan Event
	byCh   map[<-chan Event]int
	closed bool
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[int]chan Event), byCh: make(map[<-chan Event]int)}
}

// Publish delivers e to every subscriber without blocking.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a subscriber and returns its receive channel.
func (b *Bus) Subscribe() <-chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.byCh[ch] = id
	return ch
}

// Unsubscribe removes the subscriber and closes its channel. Unknown channels
// and calls after Close are no-ops.
func (b *Bus) Unsubscribe(sub <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.byCh[sub]
	if !ok {
		return
	}
	if !b.closed {
		close(b.subs[id])
	}
	delete(b.subs, id)
	delete(b.byCh, sub)
}

// Close closes all subscriber channels. Further publishes are dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
	b.byCh = make(map[<-chan Event]int)
}
