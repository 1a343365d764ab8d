package broadcast

import (
	"log"
	"sync"

	"museumtour/internal/events"
)

// Sink receives encoded events. *wshub.Hub satisfies this.
type Sink interface {
	Broadcast(data []byte)
}

// Broadcaster bridges the in-process event bus to connected clients: every
// published event is encoded once and fanned out to the WebSocket hub and to
// any SSE subscribers.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[chan []byte]bool
	subID   int
}

// NewBroadcaster wires a Broadcaster into the bus. The returned value keeps
// its subscription for the lifetime of the bus.
func NewBroadcaster(bus *events.Bus, sink Sink) *Broadcaster {
	b := &Broadcaster{
		clients: make(map[chan []byte]bool),
	}
	b.subID = bus.SubscribeAll(func(e events.Event) {
		data, err := Encode(e)
		if err != nil {
			log.Printf("[Broadcast] %v\n", err)
			return
		}
		if sink != nil {
			sink.Broadcast(data)
		}
		b.fanOut(data)
	})
	return b
}

// Subscribe returns a channel that receives every encoded event. Used by the
// SSE handler.
func (b *Broadcaster) Subscribe() chan []byte {
	ch := make(chan []byte, 10)
	b.mu.Lock()
	b.clients[ch] = true
	b.mu.Unlock()
	return ch
}

func (b *Broadcaster) Unsubscribe(ch chan []byte) {
	b.mu.Lock()
	delete(b.clients, ch)
	b.mu.Unlock()
	close(ch)
}

func (b *Broadcaster) fanOut(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.clients {
		select {
		case ch <- data:
		default:
			// skip clients with full data channels
		}
	}
}
