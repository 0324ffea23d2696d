package realtime

import (
	"testing"
)

func TestNewBroadcaster(t *testing.T) {
	b := NewBroadcaster()
	if b == nil {
		t.Fatal("NewBroadcaster returned nil")
	}
	if b.Len() != 0 {
		t.Errorf("Len %d, want 0", b.Len())
	}
}

func TestBroadcaster_PublishDeliversToSubscriber(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish("spin")
	got := <-ch
	if got != "spin" {
		t.Errorf("got event %q, want %q", got, "spin")
	}
}

func TestBroadcaster_PublishDeliversToMultipleSubscribers(t *testing.T) {
	b := NewBroadcaster()
	ch1 := b.Subscribe()
	ch2 := b.Subscribe()
	defer b.Unsubscribe(ch1)
	defer b.Unsubscribe(ch2)

	b.Publish("settled")
	if got := <-ch1; got != "settled" {
		t.Errorf("ch1 got %q, want settled", got)
	}
	if got := <-ch2; got != "settled" {
		t.Errorf("ch2 got %q, want settled", got)
	}
}

func TestBroadcaster_LaggingSubscriberKeepsNewest(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < subscriberBuffer; i++ {
		if n := b.Publish("names"); n != 1 {
			t.Fatalf("publish %d reached %d subscribers cleanly, want 1", i, n)
		}
	}
	if n := b.Publish("spin"); n != 0 {
		t.Errorf("publish into a full buffer reported %d clean deliveries", n)
	}
	b.Publish("settled")
	if got := b.Displaced(); got != 2 {
		t.Errorf("Displaced %d, want 2", got)
	}
	if got := len(ch); got != subscriberBuffer {
		t.Fatalf("buffered %d events, want %d", got, subscriberBuffer)
	}
	var last string
	for len(ch) > 0 {
		last = <-ch
	}
	if last != "settled" {
		t.Errorf("last pending event %q, want settled", last)
	}
}

func TestBroadcaster_PublishWithoutSubscribers(t *testing.T) {
	b := NewBroadcaster()
	if n := b.Publish("spin"); n != 0 {
		t.Errorf("Publish reached %d subscribers, want 0", n)
	}
}

func TestBroadcaster_UnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()
	b.Unsubscribe(ch)
	_, open := <-ch
	if open {
		t.Error("channel should be closed after Unsubscribe")
	}
	if b.Len() != 0 {
		t.Errorf("Len %d, want 0", b.Len())
	}
	// A second Unsubscribe must not panic on the closed channel.
	b.Unsubscribe(ch)
}
