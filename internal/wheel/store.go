package wheel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spinwheel/pkg/realtime"
)

// Event names published to wheel subscribers.
const (
	EventSpin    = "spin"
	EventSettled = "settled"
	EventNames   = "names"
)

// NameSource supplies the persisted names and the optional predetermined winner.
type NameSource interface {
	Load(ctx context.Context) (names []string, winner string, err error)
}

// Store holds wheel views and delegates to realtime.RoomStore for broadcast and settle timing.
type Store struct {
	r        *realtime.RoomStore[*Wheel]
	source   NameSource
	settings Settings
	rng      RNG
	logger   *slog.Logger
	now      func() time.Time
}

// NewStore creates an in-memory wheel store reading names from source.
// rng is shared by all wheels and may be called from concurrent spins; nil
// selects the process-wide source.
func NewStore(source NameSource, settings Settings, rng RNG, logger *slog.Logger) *Store {
	if rng == nil {
		rng = NewRandomSource()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		r:        realtime.NewRoomStore[*Wheel](),
		source:   source,
		settings: settings,
		rng:      rng,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Settings returns the settings new wheels are created with.
func (s *Store) Settings() Settings {
	return s.settings
}

// CreateWheel instantiates an idle wheel over the currently persisted names.
func (s *Store) CreateWheel(ctx context.Context) (*Wheel, error) {
	names, winner, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load names: %w", err)
	}
	w := NewWheel(names, winner, s.settings, s.rng, s.now())
	s.r.Create(w.ID, w)
	s.logger.Info("wheel created", "wheel", w.ID, "names", len(names))
	return w, nil
}

// GetWheel returns a wheel by ID if it exists.
func (s *Store) GetWheel(id string) (*Wheel, bool) {
	room, ok := s.r.Get(id)
	if !ok {
		return nil, false
	}
	return room.State, true
}

// RemoveWheel tears a wheel view down and stops its settle loop.
func (s *Store) RemoveWheel(id string) bool {
	if _, ok := s.r.Get(id); !ok {
		return false
	}
	s.r.Delete(id)
	s.logger.Info("wheel removed", "wheel", id)
	return true
}

// Len returns the number of live wheels.
func (s *Store) Len() int {
	return s.r.Len()
}

// Spin refreshes the wheel from storage and starts a spin. The settle loop
// announces the result when the spin's deadline passes.
func (s *Store) Spin(ctx context.Context, id string) (SpinOutcome, error) {
	w, ok := s.GetWheel(id)
	if !ok {
		return SpinOutcome{}, ErrWheelNotFound
	}
	names, winner, err := s.source.Load(ctx)
	if err != nil {
		// Spin over the names the wheel already shows.
		s.logger.Warn("reload names before spin", "wheel", id, "err", err)
	} else {
		w.Refresh(names, winner)
	}
	outcome, err := w.Spin(s.now())
	if err != nil {
		// A spin may have settled lazily inside Spin; let the loop announce it.
		s.EnsureSettleLoop(id)
		return SpinOutcome{}, err
	}
	s.logger.Info("spin started",
		"wheel", id,
		"spin", outcome.ID,
		"target", outcome.TargetRotation,
		"settles_at", outcome.SettlesAt(),
	)
	s.Publish(id, EventSpin)
	s.EnsureSettleLoop(id)
	return outcome, nil
}

// Reload pushes the persisted names to every wheel (spins in flight keep their own) and
// notifies their subscribers.
func (s *Store) Reload(ctx context.Context) error {
	names, winner, err := s.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load names: %w", err)
	}
	for _, id := range s.r.IDs() {
		w, ok := s.GetWheel(id)
		if !ok {
			continue
		}
		w.Refresh(names, winner)
		s.Publish(id, EventNames)
	}
	return nil
}

// Broadcaster returns the SSE broadcaster for a wheel.
func (s *Store) Broadcaster(id string) *realtime.Broadcaster {
	return s.r.Broadcaster(id)
}

// Publish notifies subscribers of a wheel update with a typed event.
func (s *Store) Publish(id string, event string) {
	s.r.Publish(id, event)
}

// EnsureSettleLoop starts the settle loop for a wheel, or wakes it if running.
func (s *Store) EnsureSettleLoop(id string) {
	getState := func() *Wheel {
		w, _ := s.GetWheel(id)
		return w
	}
	tick := func(w *Wheel, now time.Time) (time.Time, []string, bool) {
		if w == nil {
			return time.Time{}, nil, true
		}
		w.AdvanceIfNeeded(now)
		var events []string
		if settled := w.DrainSettlements(); len(settled) > 0 {
			for _, st := range settled {
				s.logSettlement(id, st)
			}
			events = append(events, EventSettled)
		}
		next, ok := w.NextTimer(now)
		if !ok {
			return time.Time{}, events, true
		}
		return next, events, false
	}
	s.r.RunLoop(id, getState, tick)
}

func (s *Store) logSettlement(id string, st Settlement) {
	if !st.Consistent() {
		s.logger.Error("settled index disagrees with selection",
			"wheel", id,
			"spin", st.SpinID,
			"selected", st.WinningIndex,
			"settled", st.SettledIndex,
			"rotation", st.Rotation,
		)
		return
	}
	s.logger.Info("spin settled",
		"wheel", id,
		"spin", st.SpinID,
		"winner", st.Winner,
		"rotation", st.Rotation,
	)
}
