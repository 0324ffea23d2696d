package wheel

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type stubSource struct {
	mu     sync.Mutex
	names  []string
	winner string
	err    error
}

func (s *stubSource) Load(context.Context) ([]string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names, s.winner, s.err
}

func (s *stubSource) set(names []string, winner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names, s.winner = names, winner
}

func newTestStore(source NameSource, duration time.Duration) *Store {
	settings := DefaultSettings()
	settings.Duration = duration
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewStore(source, settings, fixedRNG(1), logger)
}

// waitEvent reads ch until want arrives or fails after timeout.
func waitEvent(t *testing.T, ch chan string, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case got := <-ch:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q event", want)
		}
	}
}

func TestStore_CreateGetRemove(t *testing.T) {
	s := newTestStore(&stubSource{names: fourNames}, time.Second)
	w, err := s.CreateWheel(context.Background())
	if err != nil {
		t.Fatalf("CreateWheel: %v", err)
	}
	got, ok := s.GetWheel(w.ID)
	if !ok || got != w {
		t.Fatal("GetWheel did not return the created wheel")
	}
	if s.Len() != 1 {
		t.Errorf("Len %d, want 1", s.Len())
	}
	if !s.RemoveWheel(w.ID) {
		t.Error("RemoveWheel returned false for existing wheel")
	}
	if _, ok := s.GetWheel(w.ID); ok {
		t.Error("wheel still present after RemoveWheel")
	}
	if s.RemoveWheel(w.ID) {
		t.Error("RemoveWheel returned true twice")
	}
}

func TestStore_CreateWheelLoadError(t *testing.T) {
	boom := errors.New("boom")
	s := newTestStore(&stubSource{err: boom}, time.Second)
	if _, err := s.CreateWheel(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err %v, want wrapped load error", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len %d after failed create", s.Len())
	}
}

func TestStore_SpinUnknownWheel(t *testing.T) {
	s := newTestStore(&stubSource{names: fourNames}, time.Second)
	if _, err := s.Spin(context.Background(), "missing"); !errors.Is(err, ErrWheelNotFound) {
		t.Fatalf("err %v, want ErrWheelNotFound", err)
	}
}

func TestStore_SpinSettlesAndPublishes(t *testing.T) {
	s := newTestStore(&stubSource{names: fourNames}, 200*time.Millisecond)
	w, err := s.CreateWheel(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	hub := s.Broadcaster(w.ID)
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	outcome, err := s.Spin(context.Background(), w.ID)
	if err != nil {
		t.Fatalf("Spin: %v", err)
	}
	waitEvent(t, ch, EventSpin, time.Second)
	if _, err := s.Spin(context.Background(), w.ID); !errors.Is(err, ErrSpinInFlight) {
		t.Errorf("second Spin err %v, want ErrSpinInFlight", err)
	}
	waitEvent(t, ch, EventSettled, 2*time.Second)

	st, ok := w.LastSettlement()
	if !ok || st.SpinID != outcome.ID || st.Winner != "Bob" {
		t.Errorf("settlement %+v, want Bob for spin %s", st, outcome.ID)
	}
	snap := w.Snapshot(time.Now().UTC())
	if snap.Phase != PhaseSettled || snap.Winner != "Bob" {
		t.Errorf("phase %q winner %q", snap.Phase, snap.Winner)
	}
}

func TestStore_SpinReloadsNames(t *testing.T) {
	src := &stubSource{names: fourNames}
	s := newTestStore(src, 10*time.Millisecond)
	w, err := s.CreateWheel(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	src.set([]string{"Xavier", "Yolanda"}, "Yolanda")
	outcome, err := s.Spin(context.Background(), w.ID)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.WinningIndex != 1 {
		t.Errorf("WinningIndex %d, want predetermined Yolanda at 1", outcome.WinningIndex)
	}
}

func TestStore_SpinEmptyList(t *testing.T) {
	s := newTestStore(&stubSource{}, 10*time.Millisecond)
	w, err := s.CreateWheel(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Spin(context.Background(), w.ID); !errors.Is(err, ErrNoNames) {
		t.Fatalf("err %v, want ErrNoNames", err)
	}
	if snap := w.Snapshot(time.Now().UTC()); snap.Phase != PhaseIdle {
		t.Errorf("phase %q, want idle", snap.Phase)
	}
}

func TestStore_Reload(t *testing.T) {
	src := &stubSource{names: fourNames}
	s := newTestStore(src, time.Second)
	w, err := s.CreateWheel(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	hub := s.Broadcaster(w.ID)
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	src.set([]string{"Only"}, "")
	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	waitEvent(t, ch, EventNames, time.Second)
	snap := w.Snapshot(time.Now().UTC())
	if len(snap.Names) != 1 || snap.Names[0] != "Only" {
		t.Errorf("names %v after reload", snap.Names)
	}
}

func TestStore_ConcurrentSpinsShareSource(t *testing.T) {
	const wheels = 8
	rng := &countingRNG{value: 2}
	settings := DefaultSettings()
	settings.Duration = 10 * time.Millisecond
	s := NewStore(&stubSource{names: fourNames}, settings, rng, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ids := make([]string, wheels)
	for i := range ids {
		w, err := s.CreateWheel(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		ids[i] = w.ID
	}

	var wg sync.WaitGroup
	errs := make(chan error, wheels)
	for _, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := s.Spin(context.Background(), id)
			if err == nil && outcome.WinningIndex != 2 {
				err = errors.New("unexpected winner index")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("Spin: %v", err)
		}
	}

	rng.mu.Lock()
	defer rng.mu.Unlock()
	// One draw for the winner and one for the landing point per spin.
	if rng.calls != 2*wheels {
		t.Errorf("rng called %d times, want %d", rng.calls, 2*wheels)
	}
}

func TestStore_DefaultSourceAcrossWheels(t *testing.T) {
	settings := DefaultSettings()
	settings.Duration = 10 * time.Millisecond
	s := NewStore(&stubSource{names: fourNames}, settings, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w, err := s.CreateWheel(context.Background())
			if err != nil {
				t.Error(err)
				return
			}
			outcome, err := s.Spin(context.Background(), w.ID)
			if err != nil {
				t.Error(err)
				return
			}
			if outcome.WinningIndex < 0 || outcome.WinningIndex >= len(fourNames) {
				t.Errorf("winning index %d out of range", outcome.WinningIndex)
			}
		}()
	}
	wg.Wait()
}
