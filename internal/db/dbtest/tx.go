// Package dbtest provides an in-memory stand-in for db.TxManager used by service tests.
package dbtest

import (
	"context"
	"sync"
)

// Snapshotter is an in-memory store that can capture and later restore its state.
type Snapshotter interface {
	Snapshot() (restore func())
}

type nestedKey struct{}

// TxManager serializes transactions and restores every tracked store when fn fails.
type TxManager struct {
	mu      sync.Mutex
	stores  []Snapshotter
	Commits int
	Aborts  int
}

// NewTxManager creates a TxManager tracking the given stores.
func NewTxManager(stores ...Snapshotter) *TxManager {
	return &TxManager{stores: stores}
}

// Track adds stores to roll back on failure.
func (m *TxManager) Track(stores ...Snapshotter) {
	m.stores = append(m.stores, stores...)
}

func (m *TxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(nestedKey{}) != nil {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	restores := make([]func(), 0, len(m.stores))
	for _, s := range m.stores {
		restores = append(restores, s.Snapshot())
	}

	if err := fn(context.WithValue(ctx, nestedKey{}, true)); err != nil {
		for _, restore := range restores {
			restore()
		}
		m.Aborts++
		return err
	}
	m.Commits++
	return nil
}
