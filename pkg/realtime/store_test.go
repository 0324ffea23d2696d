package realtime

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestRoomStore_Create_Get(t *testing.T) {
	s := NewRoomStore[string]()
	s.Create("room1", "state1")
	room, ok := s.Get("room1")
	if !ok {
		t.Fatal("Get returned false for existing room")
	}
	if room.ID != "room1" {
		t.Errorf("room ID %q, want room1", room.ID)
	}
	if room.State != "state1" {
		t.Errorf("room State %q, want state1", room.State)
	}
	if s.Len() != 1 {
		t.Errorf("Len %d, want 1", s.Len())
	}

	_, ok = s.Get("nonexistent")
	if ok {
		t.Error("Get should return false for missing ID")
	}
}

func TestRoomStore_IDs(t *testing.T) {
	s := NewRoomStore[int]()
	if ids := s.IDs(); len(ids) != 0 {
		t.Fatalf("IDs %v, want empty", ids)
	}
	s.Create("b", 2)
	s.Create("a", 1)
	ids := s.IDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("IDs %v, want [a b]", ids)
	}
}

func TestRoomStore_Publish(t *testing.T) {
	s := NewRoomStore[string]()
	s.Create("r1", "x")
	hub := s.Broadcaster("r1")
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	s.Publish("r1", "event1")
	got := <-ch
	if got != "event1" {
		t.Errorf("got %q, want event1", got)
	}
}

func TestRoomStore_BroadcasterUnknownRoomIsDetached(t *testing.T) {
	s := NewRoomStore[string]()
	hub := s.Broadcaster("unknown")
	if hub == nil {
		t.Fatal("Broadcaster returned nil for unknown ID")
	}
	if _, ok := s.Get("unknown"); ok {
		t.Error("Broadcaster must not create a room for an unknown ID")
	}
}

func TestRoomStore_Delete(t *testing.T) {
	s := NewRoomStore[string]()
	s.Create("r1", "x")
	s.RunLoop("r1", func() string { return "x" }, func(string, time.Time) (time.Time, []string, bool) {
		return time.Now().Add(time.Hour), nil, false
	})
	if !s.Running("r1") {
		t.Fatal("loop should be running")
	}
	s.Delete("r1")
	if _, ok := s.Get("r1"); ok {
		t.Error("room should be gone after Delete")
	}
	if s.Running("r1") {
		t.Error("loop should be unregistered after Delete")
	}
}

func TestRoomStore_RunLoop_PublishesFinalEventsAndStops(t *testing.T) {
	s := NewRoomStore[int]()
	s.Create("r1", 0)
	hub := s.Broadcaster("r1")
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	var ticks atomic.Int32
	s.RunLoop("r1", func() int { return 0 }, func(int, time.Time) (time.Time, []string, bool) {
		if ticks.Add(1) == 1 {
			return time.Now().Add(10 * time.Millisecond), nil, false
		}
		return time.Time{}, []string{"settled"}, true
	})

	select {
	case got := <-ch:
		if got != "settled" {
			t.Errorf("got %q, want settled", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the final event")
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.Running("r1") {
		if time.Now().After(deadline) {
			t.Fatal("loop did not unregister after stopping")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := ticks.Load(); got != 2 {
		t.Errorf("ticks %d, want 2", got)
	}
}

func TestRoomStore_RunLoop_SecondCallWakesExistingLoop(t *testing.T) {
	s := NewRoomStore[int]()
	s.Create("r1", 0)

	var ticks atomic.Int32
	tick := func(int, time.Time) (time.Time, []string, bool) {
		ticks.Add(1)
		return time.Now().Add(time.Hour), nil, false
	}
	s.RunLoop("r1", func() int { return 0 }, tick)
	s.RunLoop("r1", func() int { return 0 }, tick)
	defer s.Delete("r1")

	deadline := time.Now().Add(2 * time.Second)
	for ticks.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("ticks %d, want the second RunLoop to wake the loop", ticks.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRoomStore_Wake_NoPanicWhenNoLoop(t *testing.T) {
	s := NewRoomStore[string]()
	s.Wake("nonexistent")
}
