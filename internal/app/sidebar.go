package app

import (
	"errors"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var ErrUnknownSidebarView = errors.New("unknown sidebar view")

// Sidebar holds the admin section currently selected.
type Sidebar struct {
	mu      sync.RWMutex
	current domain.SidebarView
}

func NewSidebar() *Sidebar {
	return &Sidebar{current: domain.SidebarProducts}
}

func (s *Sidebar) Current() domain.SidebarView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set selects view. Unknown views leave the selection unchanged.
func (s *Sidebar) Set(view domain.SidebarView) error {
	if !view.Valid() {
		return ErrUnknownSidebarView
	}
	s.mu.Lock()
	s.current = view
	s.mu.Unlock()
	return nil
}
