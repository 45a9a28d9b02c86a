package bus

import (
	"context"
	"fmt"
	"sync"
)

// memoryBus fans notifications out to in-process subscribers. Used when Redis is not
// configured and in tests.
type memoryBus struct {
	mu     sync.RWMutex
	subs   map[int]func(Notification)
	nextID int
	closed bool
}

func NewMemoryBus() Bus {
	return &memoryBus{subs: map[int]func(Notification){}}
}

func (b *memoryBus) Publish(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("memory bus closed")
	}
	for _, fn := range b.subs {
		fn(n)
	}
	return nil
}

func (b *memoryBus) StartForwarder(ctx context.Context, onMsg func(n Notification)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("memory bus closed")
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = onMsg
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}()
	return nil
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = map[int]func(Notification){}
	return nil
}
