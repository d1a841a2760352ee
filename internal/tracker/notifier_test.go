package tracker

import (
	"reflect"
	"testing"
	"time"
)

// TestNotifierWakesSubscribers tests delivery of the latest value
func TestNotifierWakesSubscribers(t *testing.T) {
	n := NewNotifier()
	sub := n.Subscribe()
	defer sub.Close()

	n.Publish([]string{"A"})
	n.Publish([]string{"A", "B"})

	select {
	case <-sub.C():
	case <-time.After(time.Second):
		t.Fatal("Expected wake-up")
	}
	if got := sub.Latest(); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("Expected [A B], got %v", got)
	}

	// Both publishes collapse into one pending signal.
	select {
	case <-sub.C():
		t.Error("Expected no second pending signal")
	default:
	}
}

// TestNotifierNeverBlocks tests that a subscriber that never reads does not
// stall Publish
func TestNotifierNeverBlocks(t *testing.T) {
	n := NewNotifier()
	sub := n.Subscribe()
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			n.Publish([]string{"X"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on an idle subscriber")
	}

	_, version := n.Latest()
	if version != 1000 {
		t.Errorf("Expected version 1000, got %d", version)
	}
}

// TestNotifierClose tests that closed subscriptions are not signalled
func TestNotifierClose(t *testing.T) {
	n := NewNotifier()
	sub := n.Subscribe()
	sub.Close()
	sub.Close()

	n.Publish([]string{"A"})
	select {
	case <-sub.C():
		t.Error("Expected no signal after Close")
	default:
	}
}

// TestNotifierCopiesInput tests that publishers may reuse their slice
func TestNotifierCopiesInput(t *testing.T) {
	n := NewNotifier()
	keys := []string{"A"}
	n.Publish(keys)
	keys[0] = "B"

	if got, _ := n.Latest(); got[0] != "A" {
		t.Errorf("Expected A, got %v", got)
	}
}
