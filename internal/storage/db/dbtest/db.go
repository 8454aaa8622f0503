// Package dbtest provides an in-process stand-in for db.DB used by service
// and handler tests that run against in-memory repositories.
package dbtest

import (
	"context"
	"sync"

	"github.com/tuanvumaihuynh/barcode-server/internal/storage/db"
)

var (
	_ db.DB            = (*DB)(nil)
	_ db.HealthChecker = (*DB)(nil)
)

// DB runs transaction callbacks inline and records how they were scoped.
// Query methods are not implemented; repositories under test must not use them.
type DB struct {
	db.DB

	mu              sync.Mutex
	txCalls         int
	readOnlyTxCalls int

	// PingErr is returned by IsHealthy when set.
	PingErr error
}

func New() *DB {
	return &DB{}
}

func (d *DB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	d.mu.Lock()
	d.txCalls++
	d.mu.Unlock()
	return txFunc(d)
}

func (d *DB) WithReadOnlyTx(_ context.Context, txFunc func(db.DB) error) error {
	d.mu.Lock()
	d.readOnlyTxCalls++
	d.mu.Unlock()
	return txFunc(d)
}

func (d *DB) IsHealthy(_ context.Context) (bool, error) {
	if d.PingErr != nil {
		return false, d.PingErr
	}
	return true, nil
}

// TxCalls returns the number of read-write transactions opened.
func (d *DB) TxCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.txCalls
}

// ReadOnlyTxCalls returns the number of read-only transactions opened.
func (d *DB) ReadOnlyTxCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readOnlyTxCalls
}
