// Package tracker holds the set of currently held keys.
//
// Several physical keys may share one display label (both Shift keys, the
// numpad and main-row Enter). The tracker records which physical codes are
// down, counts codes per label, and keeps the visible labels in the order
// in which each label first became visible.
package tracker

import "sync"

// Publisher receives the ordered label list after each visible change.
// Publish is called with the tracker's write lock held, so it must not
// call back into the tracker.
type Publisher interface {
	Publish(keys []string)
}

// Tracker is safe for concurrent use.
type Tracker struct {
	mu          sync.RWMutex
	codeToLabel map[uint32]string
	labelRefs   map[string]int
	order       []string
	pub         Publisher
}

// New returns an empty tracker. pub may be nil.
func New(pub Publisher) *Tracker {
	return &Tracker{
		codeToLabel: make(map[uint32]string),
		labelRefs:   make(map[string]int),
		pub:         pub,
	}
}

// Press records code as held with the given label. Repeated presses of a
// held code are ignored. It reports whether code was newly recorded.
func (t *Tracker) Press(code uint32, label string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.codeToLabel[code]; ok {
		return false
	}
	t.codeToLabel[code] = label
	t.labelRefs[label]++
	if t.labelRefs[label] == 1 {
		t.order = append(t.order, label)
		t.publishLocked()
	}
	return true
}

// Release forgets code. Releasing a code that is not held is a no-op. It
// reports whether code was held.
func (t *Tracker) Release(code uint32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	label, ok := t.codeToLabel[code]
	if !ok {
		return false
	}
	delete(t.codeToLabel, code)

	if t.labelRefs[label] > 1 {
		t.labelRefs[label]--
		return true
	}
	delete(t.labelRefs, label)
	for i, l := range t.order {
		if l == label {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	t.publishLocked()
	return true
}

// Clear forgets every held key. It always publishes, even when nothing was
// held, so subscribers can use it to resynchronise.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	clear(t.codeToLabel)
	clear(t.labelRefs)
	t.order = t.order[:0]
	t.publishLocked()
}

// Snapshot returns a copy of the visible labels in display order.
func (t *Tracker) Snapshot() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked()
}

// IsDown reports whether the physical key code is held.
func (t *Tracker) IsDown(code uint32) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.codeToLabel[code]
	return ok
}

// Len returns the number of held physical keys.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.codeToLabel)
}

func (t *Tracker) snapshotLocked() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

func (t *Tracker) publishLocked() {
	if t.pub != nil {
		t.pub.Publish(t.snapshotLocked())
	}
}
