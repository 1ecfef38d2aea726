package carousel

import (
	"context"
	"time"
)

const DefaultInterval = 4000 * time.Millisecond

type ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// Rotator drives an Engine from a single goroutine. The auto-advance timer
// only exists while the carousel is visible and not hovered, and restarts
// its period whenever it is re-armed.
type Rotator struct {
	n         int
	start     int
	interval  time.Duration
	onChange  func(active int)
	newTicker func(time.Duration) ticker

	cmds chan func(*Engine)
	done chan struct{}
}

// NewRotator returns a rotator over n items. onChange runs on the rotator's
// goroutine after every index change.
func NewRotator(n int, interval time.Duration, onChange func(active int)) *Rotator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if onChange == nil {
		onChange = func(int) {}
	}
	return &Rotator{
		n:        n,
		interval: interval,
		onChange: onChange,
		newTicker: func(d time.Duration) ticker {
			return timeTicker{time.NewTicker(d)}
		},
		cmds: make(chan func(*Engine), 16),
		done: make(chan struct{}),
	}
}

// StartAt sets the index the engine begins on. Call it before Run; the
// starting index is not reported through onChange.
func (r *Rotator) StartAt(i int) *Rotator {
	r.start = i
	return r
}

// Run owns the engine until ctx is cancelled. Call it once.
func (r *Rotator) Run(ctx context.Context) {
	defer close(r.done)

	e := New(r.n)
	e.Select(r.start)
	var t ticker
	var tickC <-chan time.Time

	arm := func() {
		eligible := e.InView && !e.Hovering
		switch {
		case eligible && t == nil:
			t = r.newTicker(r.interval)
			tickC = t.C()
		case !eligible && t != nil:
			t.Stop()
			t, tickC = nil, nil
		}
	}
	defer func() {
		if t != nil {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tickC:
			if e.Tick() {
				r.onChange(e.Active())
			}
		case cmd := <-r.cmds:
			before := e.Active()
			cmd(e)
			arm()
			if e.Active() != before {
				r.onChange(e.Active())
			}
		}
	}
}

func (r *Rotator) do(cmd func(*Engine)) {
	select {
	case r.cmds <- cmd:
	case <-r.done:
	}
}

func (r *Rotator) SetInView(v bool) {
	r.do(func(e *Engine) { e.InView = v })
}

func (r *Rotator) SetHovering(v bool) {
	r.do(func(e *Engine) { e.Hovering = v })
}

func (r *Rotator) Swipe(distance int) {
	r.do(func(e *Engine) { e.Swipe(distance) })
}

func (r *Rotator) Next() {
	r.do(func(e *Engine) { e.Next() })
}

func (r *Rotator) Prev() {
	r.do(func(e *Engine) { e.Prev() })
}

func (r *Rotator) Select(i int) {
	r.do(func(e *Engine) { e.Select(i) })
}

// Resize follows the backing list when projects are added or removed.
func (r *Rotator) Resize(n int) {
	r.do(func(e *Engine) { e.Resize(n) })
}

// Active returns the current index, or -1 once the rotator has stopped.
func (r *Rotator) Active() int {
	reply := make(chan int, 1)
	r.do(func(e *Engine) { reply <- e.Active() })
	select {
	case v := <-reply:
		return v
	case <-r.done:
		return -1
	}
}

// Done is closed when Run returns.
func (r *Rotator) Done() <-chan struct{} {
	return r.done
}
