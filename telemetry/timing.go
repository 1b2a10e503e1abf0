package telemetry

import (
	"io"
	"sync"
	"time"

	"github.com/robinvdvleuten/ledger-parser/output"
)

// TimingCollector builds a tree of timers. A timer started while another one
// is running becomes its child; several roots are reported one after another.
//
// It is safe for concurrent use, although nesting is only meaningful for
// timers started from the same goroutine.
type TimingCollector struct {
	mu    sync.Mutex
	roots []*timerNode
	open  []*timerNode // stack of running timers started through Start
	now   func() time.Time
}

type timerNode struct {
	name     string
	start    time.Time
	end      time.Time
	children []*timerNode
}

func (n *timerNode) duration() time.Duration {
	if n.end.IsZero() {
		return 0
	}
	return n.end.Sub(n.start)
}

// NewTimingCollector creates an empty timing collector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{now: time.Now}
}

// Start begins timing an operation under the innermost running timer.
func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &timerNode{name: name, start: c.now()}
	if n := len(c.open); n > 0 {
		parent := c.open[n-1]
		parent.children = append(parent.children, node)
	} else {
		c.roots = append(c.roots, node)
	}
	c.open = append(c.open, node)

	return &timingTimer{collector: c, node: node}
}

// Report writes every root timer and its children as a tree.
func (c *TimingCollector) Report(w io.Writer, styles *output.Styles) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, root := range c.roots {
		formatTimingTree(w, root, styles)
	}
}

// Total is the summed duration of the finished root timers.
func (c *TimingCollector) Total() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total time.Duration
	for _, root := range c.roots {
		total += root.duration()
	}
	return total
}

type timingTimer struct {
	collector *TimingCollector
	node      *timerNode
	once      sync.Once
}

// End stops the timer. Calling it more than once has no effect.
func (t *timingTimer) End() {
	t.once.Do(func() {
		c := t.collector
		c.mu.Lock()
		defer c.mu.Unlock()

		t.node.end = c.now()

		// Timers left running inside this one end with it.
		for i := len(c.open) - 1; i >= 0; i-- {
			if c.open[i] == t.node {
				for _, inner := range c.open[i+1:] {
					if inner.end.IsZero() {
						inner.end = t.node.end
					}
				}
				c.open = c.open[:i]
				break
			}
		}
	})
}

// Child starts a timer nested under t regardless of what else is running.
func (t *timingTimer) Child(name string) Timer {
	c := t.collector
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &timerNode{name: name, start: c.now()}
	t.node.children = append(t.node.children, node)
	return &timingTimer{collector: c, node: node}
}
