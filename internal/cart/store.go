package cart

import (
	"errors"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrItemNotFound    = errors.New("item not found in cart")
)

// Listener is called after every effective mutation with the resulting cart.
type Listener func(domain.CartSnapshot)

// Store is the in-memory cart: one line per product, insertion order preserved.
type Store struct {
	mu        sync.Mutex
	items     []domain.CartLineItem
	listeners []Listener
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

// Add appends item, or merges it into the existing line for the same product:
// quantities add up, price and display fields take the latest values.
func (s *Store) Add(item domain.CartLineItem) error {
	return s.AddChecked(item, nil)
}

// AddChecked is Add with limit consulted under the store lock. limit gets the
// quantity already held for the product; a non-nil error leaves the cart
// unchanged and is returned.
func (s *Store) AddChecked(item domain.CartLineItem, limit func(current int) error) error {
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	i := s.indexOf(item.ProductID)
	if limit != nil {
		current := 0
		if i >= 0 {
			current = s.items[i].Quantity
		}
		if err := limit(current); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	if i >= 0 {
		existing := &s.items[i]
		existing.Quantity += item.Quantity
		existing.UnitPrice = item.UnitPrice
		existing.ProductName = item.ProductName
		existing.ProductImage = item.ProductImage
	} else {
		s.items = append(s.items, item)
	}
	s.unlockAndNotify()
	return nil
}

// UpdateQuantity sets the quantity directly. Values below 1 are ignored.
func (s *Store) UpdateQuantity(productID string, quantity int) error {
	if quantity < 1 {
		return nil
	}

	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return ErrItemNotFound
	}
	if s.items[i].Quantity == quantity {
		s.mu.Unlock()
		return nil
	}
	s.items[i].Quantity = quantity
	s.unlockAndNotify()
	return nil
}

// Remove deletes the line for productID if present.
func (s *Store) Remove(productID string) {
	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.unlockAndNotify()
}

func (s *Store) Clear() {
	s.mu.Lock()
	if len(s.items) == 0 {
		s.mu.Unlock()
		return
	}
	s.items = nil
	s.unlockAndNotify()
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []domain.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItems()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// ItemCount is the sum of quantities across lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

// QuantityOf returns the quantity held for productID, 0 if absent.
func (s *Store) QuantityOf(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(productID); i >= 0 {
		return s.items[i].Quantity
	}
	return 0
}

// Total is the exact sum of line subtotals. Round only for display.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// TotalString is Total rounded to two decimal places.
func (s *Store) TotalString() string {
	return s.Total().StringFixed(2)
}

func (s *Store) Snapshot() domain.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Restore replaces the cart with snapshot. Lines with quantity below 1 are
// dropped and duplicate products are merged the way Add merges them.
func (s *Store) Restore(snapshot domain.CartSnapshot) {
	items := make([]domain.CartLineItem, 0, len(snapshot.Items))
	index := make(map[string]int, len(snapshot.Items))
	for _, item := range snapshot.Items {
		if item.Quantity < 1 {
			continue
		}
		if i, ok := index[item.ProductID]; ok {
			items[i].Quantity += item.Quantity
			items[i].UnitPrice = item.UnitPrice
			items[i].ProductName = item.ProductName
			items[i].ProductImage = item.ProductImage
			continue
		}
		index[item.ProductID] = len(items)
		items = append(items, item)
	}

	s.mu.Lock()
	s.items = items
	s.unlockAndNotify()
}

// Subscribe registers l for change notifications.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Store) indexOf(productID string) int {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) copyItems() []domain.CartLineItem {
	out := make([]domain.CartLineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) snapshot() domain.CartSnapshot {
	return domain.CartSnapshot{Items: s.copyItems(), SavedAt: s.now()}
}

// unlockAndNotify must be called with mu held; listeners run after release.
func (s *Store) unlockAndNotify() {
	snap := s.snapshot()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}
