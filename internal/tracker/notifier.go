package tracker

import "sync"

// Notifier is a single-slot broadcast of the latest label list. Subscribers
// are woken on change and read whatever is current; intermediate values
// may be skipped.
type Notifier struct {
	mu      sync.Mutex
	latest  []string
	version uint64
	subs    map[*Subscription]struct{}
}

// NewNotifier returns a notifier whose initial value is the empty list.
func NewNotifier() *Notifier {
	return &Notifier{
		latest: []string{},
		subs:   make(map[*Subscription]struct{}),
	}
}

// Publish stores keys as the latest value and wakes every subscriber.
// It never blocks.
func (n *Notifier) Publish(keys []string) {
	cp := make([]string, len(keys))
	copy(cp, keys)

	n.mu.Lock()
	defer n.mu.Unlock()
	n.latest = cp
	n.version++
	for s := range n.subs {
		select {
		case s.c <- struct{}{}:
		default:
		}
	}
}

// Latest returns the current value and a counter that increases on every
// Publish.
func (n *Notifier) Latest() ([]string, uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.latest))
	copy(out, n.latest)
	return out, n.version
}

// Subscribe registers a new subscriber. Call Close when done.
func (n *Notifier) Subscribe() *Subscription {
	s := &Subscription{n: n, c: make(chan struct{}, 1)}
	n.mu.Lock()
	n.subs[s] = struct{}{}
	n.mu.Unlock()
	return s
}

// Subscription is one consumer's view of a Notifier.
type Subscription struct {
	n    *Notifier
	c    chan struct{}
	once sync.Once
}

// C is signalled after one or more Publish calls.
func (s *Subscription) C() <-chan struct{} {
	return s.c
}

// Latest returns the notifier's current value.
func (s *Subscription) Latest() []string {
	keys, _ := s.n.Latest()
	return keys
}

// Close unregisters the subscription.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.n.mu.Lock()
		delete(s.n.subs, s)
		s.n.mu.Unlock()
	})
}
