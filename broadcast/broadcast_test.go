package broadcast

import (
	"testing"
	"time"
)

func receive(t *testing.T, c <-chan interface{}) interface{} {
	t.Helper()
	select {
	case v := <-c:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
	}
	return nil
}

func TestEveryListenerReceivesInOrder(t *testing.T) {
	b := NewBroadcaster()
	first, cancelFirst := b.Listen()
	defer cancelFirst()
	second, cancelSecond := b.Listen()
	defer cancelSecond()

	b.Broadcast(1)
	b.Broadcast(2)

	for _, c := range []<-chan interface{}{first, second} {
		if v := receive(t, c); v != 1 {
			t.Errorf("expected 1, got %v", v)
		}
		if v := receive(t, c); v != 2 {
			t.Errorf("expected 2, got %v", v)
		}
	}
}

func TestLateListenerMissesEarlierValues(t *testing.T) {
	b := NewBroadcaster()
	b.Broadcast("early")

	c, cancel := b.Listen()
	defer cancel()
	b.Broadcast("late")
	if v := receive(t, c); v != "late" {
		t.Errorf("expected late, got %v", v)
	}
}

func TestCancelAndClose(t *testing.T) {
	b := NewBroadcaster()
	c, cancel := b.Listen()
	cancel()
	cancel()
	if _, ok := <-c; ok {
		t.Error("cancelled listener should be closed")
	}

	c, _ = b.Listen()
	b.Close()
	b.Broadcast("ignored")
	select {
	case _, ok := <-c:
		if ok {
			t.Error("expected closed channel after Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("listener not released by Close")
	}
}
