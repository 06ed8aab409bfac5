package engine

import "sync"

// CosmeticChanged is published whenever an unlock or equip changes what is
// shown for a category.
type CosmeticChanged struct {
	Category Category
	ID       string
}

type cosmeticBus struct {
	mu   sync.Mutex
	next int
	subs map[int]chan CosmeticChanged
}

// subscribe registers a buffered channel. Events are dropped for a
// subscriber whose buffer is full.
func (b *cosmeticBus) subscribe(buf int) (<-chan CosmeticChanged, func()) {
	if buf < 1 {
		buf = 1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = map[int]chan CosmeticChanged{}
	}
	id := b.next
	b.next++
	ch := make(chan CosmeticChanged, buf)
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

func (b *cosmeticBus) publish(ev CosmeticChanged) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
