package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

// Persister mirrors a Store into a durable slot so the cart survives reloads.
type Persister struct {
	mu      sync.Mutex
	slots   storage.SlotStore
	key     string
	timeout time.Duration
}

func NewPersister(slots storage.SlotStore, key string) *Persister {
	return &Persister{
		slots:   slots,
		key:     key,
		timeout: 2 * time.Second,
	}
}

// Load restores the store from the slot. A missing slot leaves the store empty.
func (p *Persister) Load(ctx context.Context, store *Store) error {
	raw, err := p.slots.Get(ctx, p.key)
	if errors.Is(err, storage.ErrSlotNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}

	var snap domain.CartSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("unmarshal cart failed: %w", err)
	}
	store.Restore(snap)
	return nil
}

// Attach saves store after each change. Save failures are logged, never
// reported to the code that mutated the cart.
func (p *Persister) Attach(store *Store) {
	store.Subscribe(func(domain.CartSnapshot) {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		if err := p.Save(ctx, store); err != nil {
			slog.ErrorContext(ctx, "cart persist error", "error", err)
		}
	})
}

// Save writes the store's current state. It reads the state under its own lock
// so concurrent saves never leave an older snapshot behind.
func (p *Persister) Save(ctx context.Context, store *Store) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := json.Marshal(store.Snapshot())
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	return p.slots.Set(ctx, p.key, data)
}
