package ui

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu     sync.Mutex
	calls  []string
	failed []string
}

func (r *recorder) set(name string, blocked bool) (bool, error) {
	if name == "slow" {
		time.Sleep(20 * time.Millisecond)
	}
	r.mu.Lock()
	r.calls = append(r.calls, fmt.Sprintf("%s=%v", name, blocked))
	r.mu.Unlock()
	switch name {
	case "broken":
		return false, nil
	case "missing":
		return false, errors.New("executable group not found")
	case "panics":
		panic("boom")
	}
	return true, nil
}

func (r *recorder) fail(name string, blocked bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, fmt.Sprintf("%s=%v", name, blocked))
}

func TestTogglerKeepsClickOrder(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	tg := newToggler(r.set, r.fail)
	assert.True(t, tg.submit("slow", true))
	assert.True(t, tg.submit("slow", false))
	assert.True(t, tg.submit("app", true))
	tg.close()

	assert.Equal(t, []string{"slow=true", "slow=false", "app=true"}, r.calls)
	assert.Empty(t, r.failed)
}

func TestTogglerReportsFailures(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	tg := newToggler(r.set, r.fail)
	tg.submit("broken", true)
	tg.submit("missing", true)
	tg.submit("panics", false)
	tg.submit("app", false)
	tg.close()

	assert.Equal(t, []string{"broken=true", "missing=true", "panics=false", "app=false"}, r.calls)
	assert.Equal(t, []string{"broken=true"}, r.failed)
}

func TestTogglerRejectsAfterClose(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	tg := newToggler(r.set, r.fail)
	tg.close()
	tg.close()

	assert.False(t, tg.submit("app", true))
	assert.Empty(t, r.calls)
}
