package storage

import (
	"context"
	"errors"
)

// Well-known slot keys.
const (
	TokenSlot = "token"
	CartSlot  = "cart"
)

// SlotStore is a durable key-value holder that outlives the process.
type SlotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrSlotNotFound = errors.New("slot not found")
