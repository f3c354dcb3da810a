package sse

import (
	"context"
	"sync"

	"qr-admin-service/internal/models"
)

// Broadcaster fans sync progress events out to connected dashboard clients.
// It is constructed once in main and passed explicitly to everything that
// emits; there is no global handle. Delivery is fire-and-forget: a slow or
// absent client never blocks the sync job, and missed events are not
// replayed.
type Broadcaster struct {
	clients     map[chan models.SyncEvent]struct{}
	clientMutex sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[chan models.SyncEvent]struct{}),
	}
}

// Subscribe registers a client channel, removed again when ctx ends.
func (b *Broadcaster) Subscribe(ctx context.Context) chan models.SyncEvent {
	clientChan := make(chan models.SyncEvent, 16)

	b.clientMutex.Lock()
	b.clients[clientChan] = struct{}{}
	b.clientMutex.Unlock()

	go func() {
		<-ctx.Done()
		b.remove(clientChan)
	}()

	return clientChan
}

// Emit broadcasts one event to every subscriber without blocking.
func (b *Broadcaster) Emit(name string, payload interface{}) {
	event := models.SyncEvent{Name: name, Payload: payload}

	b.clientMutex.RLock()
	defer b.clientMutex.RUnlock()

	for clientChan := range b.clients {
		select {
		case clientChan <- event:
		default:
			// Buffer full, drop the event for this client.
		}
	}
}

// ClientCount returns the number of connected subscribers.
func (b *Broadcaster) ClientCount() int {
	b.clientMutex.RLock()
	defer b.clientMutex.RUnlock()
	return len(b.clients)
}

func (b *Broadcaster) remove(clientChan chan models.SyncEvent) {
	b.clientMutex.Lock()
	defer b.clientMutex.Unlock()

	if _, ok := b.clients[clientChan]; ok {
		delete(b.clients, clientChan)
		close(clientChan)
	}
}
