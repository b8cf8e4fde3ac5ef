package ui

import (
	"sync"

	"github.com/user/traffic-silencer/internal/logger"
)

type toggleRequest struct {
	name    string
	blocked bool
}

// toggler applies checkbox toggles on one worker, in the order they were made.
type toggler struct {
	set    func(name string, blocked bool) (bool, error)
	failed func(name string, blocked bool)

	mu     sync.Mutex
	closed bool
	ch     chan toggleRequest
	done   chan struct{}
}

func newToggler(set func(string, bool) (bool, error), failed func(string, bool)) *toggler {
	t := &toggler{
		set:    set,
		failed: failed,
		ch:     make(chan toggleRequest, 64),
		done:   make(chan struct{}),
	}
	go t.loop()
	return t
}

// submit queues a toggle and reports whether it was accepted. It blocks only
// while the queue is full.
func (t *toggler) submit(name string, blocked bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.ch <- toggleRequest{name: name, blocked: blocked}
	return true
}

// close stops accepting toggles and waits for the queued ones.
func (t *toggler) close() {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.ch)
	}
	t.mu.Unlock()
	<-t.done
}

func (t *toggler) loop() {
	defer close(t.done)
	for req := range t.ch {
		t.apply(req)
	}
}

func (t *toggler) apply(req toggleRequest) {
	defer logger.Recover("setBlocked")

	ok, err := t.set(req.name, req.blocked)
	switch {
	case err != nil:
		logger.Warning("Toggle for %s failed: %v", req.name, err)
	case !ok:
		t.failed(req.name, req.blocked)
	}
}
