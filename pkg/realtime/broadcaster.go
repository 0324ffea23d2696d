package realtime

import "sync"

// subscriberBuffer bounds how many events a stream may have pending.
const subscriberBuffer = 4

// Broadcaster fans named events out to stream subscribers. A lagging
// subscriber loses its oldest pending event, never the newest, so the last
// transition of a room always reaches every open stream.
type Broadcaster struct {
	mu        sync.Mutex
	subs      map[chan string]struct{}
	displaced int
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan string]struct{})}
}

// Subscribe registers a subscriber. The channel is closed by Unsubscribe.
func (b *Broadcaster) Subscribe() chan string {
	ch := make(chan string, subscriberBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscriber and closes its channel. It is a no-op for
// channels that are not subscribed.
func (b *Broadcaster) Unsubscribe(ch chan string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; !ok {
		return
	}
	delete(b.subs, ch)
	close(ch)
}

// Publish queues event for every subscriber and returns how many took it
// without displacing an older pending event.
func (b *Broadcaster) Publish(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	clean := 0
	for ch := range b.subs {
		select {
		case ch <- event:
			clean++
			continue
		default:
		}
		// Sends only happen under mu, so one receive always frees a slot.
		select {
		case <-ch:
			b.displaced++
		default:
		}
		select {
		case ch <- event:
		default:
		}
	}
	return clean
}

// Displaced returns how many pending events were pushed out by newer ones.
func (b *Broadcaster) Displaced() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.displaced
}

// Len returns the number of active subscribers.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
