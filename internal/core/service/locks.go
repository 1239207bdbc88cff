package service

import (
	"sync"

	"github.com/google/uuid"
)

// orderLocks serializes all status mutation per order id, so a background
// scheduler tick and a user-driven check never race on the same order.
type orderLocks struct {
	mu    *sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newOrderLocks() orderLocks {
	return orderLocks{
		mu:    &sync.Mutex{},
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// lock acquires the order's mutex and returns its unlock func.
func (l orderLocks) lock(orderID uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.locks[orderID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[orderID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
