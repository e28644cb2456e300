// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

// Package watch fans out the event trace the driver produces to interested
// subscribers, such as a CLI follower or a dashboard, without coupling the driver
// to any particular consumer.
package watch

import (
	"context"
	"sync"

	"github.com/wagomu-sim/elastisim-scheduler/internal/eventlog"
)

// DefaultBufferSize is the default per-subscriber channel capacity.
const DefaultBufferSize = 100

// Broadcaster fans out recorded events to any number of subscribers. It implements
// eventlog.Sink, so a driver can write to it exactly like any other sink.
type Broadcaster struct {
	mu          sync.RWMutex
	bufferSize  int
	subscribers map[int]chan eventlog.Event
	nextID      int
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		bufferSize:  DefaultBufferSize,
		subscribers: make(map[int]chan eventlog.Event),
	}
}

// WithBufferSize sets the channel capacity used for subscribers registered afterward.
func (b *Broadcaster) WithBufferSize(size int) *Broadcaster {
	b.bufferSize = size
	return b
}

// Subscribe registers a new subscriber and returns its event channel and a cancel
// function. The channel closes when ctx is done or the returned cancel function is
// called.
func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan eventlog.Event, func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan eventlog.Event, b.bufferSize)
	b.subscribers[id] = ch
	b.mu.Unlock()

	cancel := func() { b.unsubscribe(id) }

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return ch, cancel
}

func (b *Broadcaster) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, exists := b.subscribers[id]; exists {
		delete(b.subscribers, id)
		close(ch)
	}
}

// Record implements eventlog.Sink: it delivers event to every live subscriber,
// dropping it for a subscriber whose channel is full rather than blocking the tick
// that produced it.
func (b *Broadcaster) Record(event eventlog.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close unsubscribes and closes every subscriber channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
}
