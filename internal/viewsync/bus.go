package viewsync

import "sync"

// Bus is the invalidation clock shared by mounted collections. Advancing it
// tells every subscriber that remote state changed outside its own
// mutations.
type Bus struct {
	mu     sync.Mutex
	token  uint64
	nextID uint64
	subs   map[uint64]chan uint64
}

// NewBus returns a Bus at token zero.
func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]chan uint64)}
}

// Token returns the current token.
func (b *Bus) Token() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token
}

// Advance increments the token and notifies subscribers. It returns the
// new token.
func (b *Bus) Advance() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token++
	for _, ch := range b.subs {
		offerLatest(ch, b.token)
	}
	return b.token
}

// Subscribe returns a channel that receives the newest token after each
// Advance. Slow readers only see the latest value. The returned func
// unsubscribes and closes the channel.
func (b *Bus) Subscribe() (<-chan uint64, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	ch := make(chan uint64, 1)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

// Subscribers returns the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func offerLatest(ch chan uint64, token uint64) {
	select {
	case ch <- token:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- token:
	default:
	}
}
