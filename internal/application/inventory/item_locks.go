package inventory

import (
	"context"
	"sync"
)

// itemLocks serializa los movimientos de un mismo ítem dentro del proceso.
// Ítems distintos no se bloquean entre sí; las entradas se liberan al quedar sin uso.
type itemLocks struct {
	mu    sync.Mutex
	locks map[string]*itemLock
}

type itemLock struct {
	sem  chan struct{}
	refs int
}

func newItemLocks() *itemLocks {
	return &itemLocks{locks: make(map[string]*itemLock)}
}

// lock espera el turno del ítem o hasta que ctx termine. Devuelve la función de liberación.
func (l *itemLocks) lock(ctx context.Context, id string) (func(), error) {
	l.mu.Lock()
	il, ok := l.locks[id]
	if !ok {
		il = &itemLock{sem: make(chan struct{}, 1)}
		l.locks[id] = il
	}
	il.refs++
	l.mu.Unlock()

	select {
	case il.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(id, il)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-il.sem
			l.release(id, il)
		})
	}, nil
}

func (l *itemLocks) release(id string, il *itemLock) {
	l.mu.Lock()
	il.refs--
	if il.refs == 0 {
		delete(l.locks, id)
	}
	l.mu.Unlock()
}

func (l *itemLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
