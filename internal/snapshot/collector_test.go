package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/traffic-silencer/internal/process"
)

type fakeLister struct {
	entries []process.Entry
	err     error
}

func (f *fakeLister) List() ([]process.Entry, error) {
	return f.entries, f.err
}

type fakeProber struct {
	denied map[int]bool
	paths  map[int]string
	panics map[int]bool
}

func (f *fakeProber) CanAccess(pid int) bool {
	return !f.denied[pid]
}

func (f *fakeProber) ExecutablePath(pid int) (string, error) {
	if f.panics[pid] {
		panic("probe exploded")
	}
	if p, ok := f.paths[pid]; ok {
		return p, nil
	}
	return "", fmt.Errorf("pid %d: %w", pid, process.ErrProcessExited)
}

type fakeRules struct {
	mu      sync.Mutex
	blocked map[string]bool
	calls   []string
}

func (f *fakeRules) Exists(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
	return f.blocked[strings.ToLower(path)]
}

type fakeIcons struct {
	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeIcons) Resolve(path string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[path]++
	return []byte("icon:" + path)
}

func TestCollectGroupsByName(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{entries: []process.Entry{
		{PID: 20, Name: "svc"},
		{PID: 10, Name: "svc"},
	}}
	prober := &fakeProber{paths: map[int]string{
		20: `C:\a\svc.exe`,
		10: `C:\b\svc.exe`,
	}}
	rules := &fakeRules{blocked: map[string]bool{`c:\a\svc.exe`: true}}
	icons := &fakeIcons{}

	snap := NewCollector(lister, prober, rules, icons, 1).Collect(context.Background())

	require.Equal(t, 1, snap.Len())
	grp, ok := snap.Get("SVC")
	require.True(t, ok)
	assert.Equal(t, "svc", grp.Name)
	assert.Equal(t, `C:\a\svc.exe`, grp.Path)
	assert.True(t, grp.Blocked)
	assert.Equal(t, []process.Entry{{PID: 10, Name: "svc"}, {PID: 20, Name: "svc"}}, grp.Processes)
	assert.Equal(t, []byte(`icon:C:\a\svc.exe`), grp.Icon)

	assert.Equal(t, []string{`C:\a\svc.exe`}, rules.calls, "blocked is queried once with the first path")
	assert.Equal(t, map[string]int{`C:\a\svc.exe`: 1}, icons.calls)
}

func TestCollectDropsInaccessible(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{entries: []process.Entry{
		{PID: 4, Name: "System"},
		{PID: 100, Name: "app"},
	}}
	prober := &fakeProber{
		denied: map[int]bool{4: true},
		paths:  map[int]string{100: `C:\app\app.exe`},
	}

	snap := NewCollector(lister, prober, &fakeRules{}, nil, 2).Collect(context.Background())

	assert.Equal(t, 1, snap.Len())
	_, ok := snap.Get("System")
	assert.False(t, ok)
	_, ok = snap.Get("app")
	assert.True(t, ok)
}

func TestCollectEmptyPathIsNotBlocked(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{entries: []process.Entry{{PID: 7, Name: "ghost"}}}
	rules := &fakeRules{blocked: map[string]bool{"": true}}

	snap := NewCollector(lister, &fakeProber{}, rules, &fakeIcons{}, 1).Collect(context.Background())

	grp, ok := snap.Get("ghost")
	require.True(t, ok)
	assert.Empty(t, grp.Path)
	assert.False(t, grp.Blocked)
	assert.Empty(t, rules.calls)
	assert.Equal(t, []byte("icon:"), grp.Icon)
}

func TestCollectPathFromLaterProcess(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{entries: []process.Entry{
		{PID: 1, Name: "tool"},
		{PID: 2, Name: "tool"},
	}}
	prober := &fakeProber{paths: map[int]string{2: `C:\t\tool.exe`}}
	rules := &fakeRules{blocked: map[string]bool{`c:\t\tool.exe`: true}}

	snap := NewCollector(lister, prober, rules, nil, 1).Collect(context.Background())

	grp, ok := snap.Get("tool")
	require.True(t, ok)
	assert.Equal(t, `C:\t\tool.exe`, grp.Path)
	assert.True(t, grp.Blocked)
	assert.Equal(t, []string{`C:\t\tool.exe`}, rules.calls)
}

func TestCollectBlockedIndependentOfOrder(t *testing.T) {
	t.Parallel()

	for _, order := range [][]int{{1, 2}, {2, 1}} {
		order := order
		t.Run(fmt.Sprint(order), func(t *testing.T) {
			t.Parallel()

			var entries []process.Entry
			for _, pid := range order {
				entries = append(entries, process.Entry{PID: pid, Name: "tool"})
			}
			prober := &fakeProber{paths: map[int]string{2: `C:\t\tool.exe`}}
			rules := &fakeRules{blocked: map[string]bool{`c:\t\tool.exe`: true}}

			snap := NewCollector(&fakeLister{entries: entries}, prober, rules, nil, 1).Collect(context.Background())

			grp, ok := snap.Get("tool")
			require.True(t, ok)
			assert.Equal(t, `C:\t\tool.exe`, grp.Path)
			assert.True(t, grp.Blocked)
			assert.Len(t, rules.calls, 1)
			assert.Equal(t, []process.Entry{{PID: 1, Name: "tool"}, {PID: 2, Name: "tool"}}, grp.Processes)
		})
	}
}

func TestCollectListingError(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{err: errors.New("snapshot failed")}
	snap := NewCollector(lister, &fakeProber{}, &fakeRules{}, nil, 1).Collect(context.Background())

	assert.Nil(t, snap)
}

func TestCollectSurvivesProbePanic(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{entries: []process.Entry{
		{PID: 1, Name: "bad"},
		{PID: 2, Name: "good"},
	}}
	prober := &fakeProber{
		paths:  map[int]string{2: `C:\good.exe`},
		panics: map[int]bool{1: true},
	}

	snap := NewCollector(lister, prober, &fakeRules{}, nil, 2).Collect(context.Background())

	assert.Equal(t, 1, snap.Len())
	_, ok := snap.Get("good")
	assert.True(t, ok)
}

func TestCollectCancelled(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{entries: []process.Entry{{PID: 1, Name: "a"}, {PID: 2, Name: "b"}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap := NewCollector(lister, &fakeProber{}, &fakeRules{}, nil, 1).Collect(ctx)
	assert.Equal(t, 0, snap.Len())
}

type countingProber struct {
	fakeProber
	inFlight atomic.Int32
	peak     atomic.Int32
	gate     chan struct{}
}

func (c *countingProber) CanAccess(pid int) bool {
	n := c.inFlight.Add(1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	<-c.gate
	c.inFlight.Add(-1)
	return true
}

func TestCollectBoundedConcurrency(t *testing.T) {
	t.Parallel()

	const procs = 64
	entries := make([]process.Entry, procs)
	paths := make(map[int]string, procs)
	for i := range entries {
		entries[i] = process.Entry{PID: i + 1, Name: fmt.Sprintf("p%d", i%8)}
		paths[i+1] = fmt.Sprintf(`C:\p%d.exe`, i%8)
	}

	prober := &countingProber{
		fakeProber: fakeProber{paths: paths},
		gate:       make(chan struct{}),
	}
	go func() {
		for i := 0; i < procs; i++ {
			prober.gate <- struct{}{}
		}
	}()

	snap := NewCollector(&fakeLister{entries: entries}, prober, &fakeRules{}, &fakeIcons{}, 4).Collect(context.Background())

	assert.Equal(t, 8, snap.Len())
	assert.Equal(t, procs, snap.ProcessCount())
	assert.LessOrEqual(t, prober.peak.Load(), int32(4))
	for _, grp := range snap.Groups {
		assert.Len(t, grp.Processes, procs/8)
	}
}

func TestSortedOrder(t *testing.T) {
	t.Parallel()

	snap := New()
	for _, name := range []string{"zeta", "alpha", "Mid", "mid"} {
		snap.Groups[name] = &Group{Name: name}
	}

	var names []string
	for _, g := range snap.Sorted() {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"alpha", "Mid", "mid", "zeta"}, names)
}
