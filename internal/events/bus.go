package events

import "sync"

// Handler receives a published event.
type Handler func(Event)

type subscription struct {
	id      int
	kind    Kind
	all     bool
	handler Handler
}

// Bus is a publish/subscribe channel shared by all components of one tour
// session. Dispatch is synchronous: Publish invokes every matching handler
// before returning, in subscription order. Handlers may publish further
// events; nested publishes also run to completion.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   []subscription
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for one event kind and returns a subscription
// id usable with Unsubscribe.
func (b *Bus) Subscribe(kind Kind, h Handler) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs = append(b.subs, subscription{id: b.nextID, kind: kind, handler: h})
	return b.nextID
}

// SubscribeAll registers a handler for every event kind.
func (b *Bus) SubscribeAll(h Handler) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs = append(b.subs, subscription{id: b.nextID, all: true, handler: h})
	return b.nextID
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers an event to all matching subscribers registered before the
// call. The handler list is snapshotted so handlers can subscribe, unsubscribe
// or publish without deadlocking the bus.
func (b *Bus) Publish(e Event) {
	if e == nil {
		return
	}
	b.mu.Lock()
	matched := make([]Handler, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.all || sub.kind == e.Kind() {
			matched = append(matched, sub.handler)
		}
	}
	b.mu.Unlock()

	for _, h := range matched {
		h(e)
	}
}
