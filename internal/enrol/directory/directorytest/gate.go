package directorytest

import (
	"context"
	"sync"
)

// Gate holds calls to one operation until released. It lets tests put a
// request "in flight" and race other actions against it.
type Gate struct {
	entered     chan struct{}
	enteredOnce sync.Once
	release     chan struct{}
	releaseOnce sync.Once
}

func newGate() *Gate {
	return &Gate{entered: make(chan struct{}), release: make(chan struct{})}
}

// Entered is closed once the first held call arrives.
func (g *Gate) Entered() <-chan struct{} { return g.entered }

// Release lets every held and future call through.
func (g *Gate) Release() { g.releaseOnce.Do(func() { close(g.release) }) }

func (g *Gate) wait(ctx context.Context) error {
	g.enteredOnce.Do(func() { close(g.entered) })
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Hold installs a gate on op. When arg is non-empty only calls whose key
// argument (id, email) equals arg are held.
func (m *Memory) Hold(op, arg string) *Gate {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := newGate()
	m.gates[op+"\x00"+arg] = g
	return g
}

// Fail makes every subsequent call to op return err. A nil err clears it.
func (m *Memory) Fail(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fails, op)
		return
	}
	m.fails[op] = err
}

// Calls returns how many times op was invoked.
func (m *Memory) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *Memory) enter(ctx context.Context, op, arg string) error {
	m.mu.Lock()
	m.calls[op]++
	g := m.gates[op+"\x00"+arg]
	if g == nil {
		g = m.gates[op+"\x00"]
	}
	err := m.fails[op]
	m.mu.Unlock()

	if g != nil {
		if werr := g.wait(ctx); werr != nil {
			return werr
		}
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}
