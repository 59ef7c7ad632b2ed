package api

import (
	"context"
	"sync"

	"github.com/dannbuckley/intcode/vm"
	"github.com/pkg/errors"
)

var ErrClosed = errors.New("session store closed")

// sessionStore owns the session vms. Only its worker goroutine touches them;
// callers submit closures through do.
type sessionStore struct {
	reqs chan func(map[string]*vm.VM)
	quit chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func newSessionStore() *sessionStore {
	st := &sessionStore{
		reqs: make(chan func(map[string]*vm.VM)),
		quit: make(chan struct{}),
	}
	st.wg.Add(1)
	go st.work()
	return st
}

func (st *sessionStore) work() {
	defer st.wg.Done()
	sessions := make(map[string]*vm.VM)
	for {
		select {
		case fn := <-st.reqs:
			fn(sessions)
		case <-st.quit:
			return
		}
	}
}

// do runs fn on the worker and waits for it to finish.
func (st *sessionStore) do(ctx context.Context, fn func(map[string]*vm.VM)) error {
	done := make(chan struct{})
	req := func(sessions map[string]*vm.VM) {
		defer close(done)
		fn(sessions)
	}
	select {
	case st.reqs <- req:
	case <-st.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	<-done
	return nil
}

func (st *sessionStore) close() {
	st.once.Do(func() {
		close(st.quit)
	})
	st.wg.Wait()
}
