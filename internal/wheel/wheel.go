package wheel

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"spinwheel/pkg/realtime"
)

// Phase is the state of a wheel's spin cycle.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseSpinning Phase = "spinning"
	PhaseSettled  Phase = "settled"
)

// Settings tunes how a wheel spins.
type Settings struct {
	Duration      time.Duration
	FullTurns     int
	PointerAngle  float64
	LandingSpread float64
	Palette       []string
}

// DefaultSettings returns an 8 second spin of six full turns read at 12 o'clock.
func DefaultSettings() Settings {
	return Settings{
		Duration:      8 * time.Second,
		FullTurns:     6,
		PointerAngle:  0,
		LandingSpread: 0.7,
		Palette:       DefaultPalette,
	}
}

// Validate checks that the settings can drive a spin.
func (s Settings) Validate() error {
	if s.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %v", ErrInvalidSettings, s.Duration)
	}
	if s.FullTurns < MinFullTurns {
		return fmt.Errorf("%w: full turns must be at least %d, got %d", ErrInvalidSettings, MinFullTurns, s.FullTurns)
	}
	if s.LandingSpread < 0 || s.LandingSpread > 0.9 {
		return fmt.Errorf("%w: landing spread must be within [0, 0.9], got %v", ErrInvalidSettings, s.LandingSpread)
	}
	return nil
}

// SpinOutcome is produced once per accepted spin.
type SpinOutcome struct {
	ID             string
	WinningIndex   int
	StartRotation  float64
	TargetRotation float64
	StartedAt      time.Time
	Duration       time.Duration
}

// SettlesAt returns when the spin completes.
func (o SpinOutcome) SettlesAt() time.Time {
	return o.StartedAt.Add(o.Duration)
}

// Settlement records how a spin came to rest.
type Settlement struct {
	SpinID       string
	WinningIndex int
	SettledIndex int
	Winner       string
	Rotation     float64
	SettledAt    time.Time
}

// Consistent reports whether the index read off the final rotation matches
// the index chosen when the spin started.
func (s Settlement) Consistent() bool {
	return s.WinningIndex == s.SettledIndex
}

// Wheel is the spin state machine for one wheel view. All methods are safe for
// concurrent use; time is always passed in so callers control the clock.
type Wheel struct {
	mu        sync.Mutex
	ID        string
	CreatedAt time.Time

	settings      Settings
	rng           RNG
	names         []string
	predetermined string

	phase       Phase
	rotation    float64
	winner      string
	winnerIndex int
	transition  realtime.Transition

	// Set for the spin in flight or the last settled one.
	outcome   SpinOutcome
	spinNames []string

	spins       int
	last        Settlement
	unannounced []Settlement
}

// NewWheel creates an idle wheel over a snapshot of names.
func NewWheel(names []string, predetermined string, settings Settings, rng RNG, now time.Time) *Wheel {
	if rng == nil {
		rng = NewRandomSource()
	}
	if len(settings.Palette) == 0 {
		settings.Palette = DefaultPalette
	}
	return &Wheel{
		ID:            uuid.NewString(),
		CreatedAt:     now,
		settings:      settings,
		rng:           rng,
		names:         slices.Clone(names),
		predetermined: predetermined,
		phase:         PhaseIdle,
		winnerIndex:   -1,
		transition:    realtime.Transition{Duration: settings.Duration},
	}
}

// Refresh replaces the names and predetermined winner used by the next spin.
// A spin in flight keeps the names it started with.
func (w *Wheel) Refresh(names []string, predetermined string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.names = slices.Clone(names)
	w.predetermined = predetermined
}

// Spin starts a spin at now. It returns ErrSpinInFlight while a spin is
// running and ErrNoNames when there is nothing to spin; in both cases the wheel
// is left untouched.
func (w *Wheel) Spin(now time.Time) (SpinOutcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advanceIfNeededLocked(now)
	if w.phase == PhaseSpinning {
		return SpinOutcome{}, ErrSpinInFlight
	}
	names := slices.Clone(w.names)
	index, err := SelectWinner(names, w.predetermined, w.rng)
	if err != nil {
		return SpinOutcome{}, err
	}
	target := PlanRotation(PlanInput{
		WinningIndex: index,
		SegmentWidth: SegmentWidth(len(names)),
		PointerAngle: w.settings.PointerAngle,
		Current:      w.rotation,
		FullTurns:    w.settings.FullTurns,
		Landing:      LandingPoint(w.rng, w.settings.LandingSpread),
	})
	w.outcome = SpinOutcome{
		ID:             uuid.NewString(),
		WinningIndex:   index,
		StartRotation:  w.rotation,
		TargetRotation: target,
		StartedAt:      now,
		Duration:       w.settings.Duration,
	}
	w.spinNames = names
	w.winner = ""
	w.winnerIndex = -1
	w.phase = PhaseSpinning
	w.transition.Begin(now)
	w.spins++
	return w.outcome, nil
}

// AdvanceIfNeeded settles the running spin once its deadline has passed.
func (w *Wheel) AdvanceIfNeeded(now time.Time) (Settlement, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.advanceIfNeededLocked(now)
}

func (w *Wheel) advanceIfNeededLocked(now time.Time) (Settlement, bool) {
	if w.phase != PhaseSpinning || !w.transition.Complete(now) {
		return Settlement{}, false
	}
	return w.settleLocked(), true
}

// settleLocked derives the winner from the final rotation alone.
func (w *Wheel) settleLocked() Settlement {
	final := w.outcome.TargetRotation
	index := IndexAtAngle(PointerOffset(final, w.settings.PointerAngle), len(w.spinNames))
	w.rotation = final
	w.winnerIndex = index
	w.winner = w.spinNames[index]
	w.phase = PhaseSettled
	w.last = Settlement{
		SpinID:       w.outcome.ID,
		WinningIndex: w.outcome.WinningIndex,
		SettledIndex: index,
		Winner:       w.winner,
		Rotation:     final,
		SettledAt:    w.outcome.SettlesAt(),
	}
	w.unannounced = append(w.unannounced, w.last)
	return w.last
}

// NextTimer returns when the running spin settles.
func (w *Wheel) NextTimer(now time.Time) (time.Time, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase != PhaseSpinning {
		return time.Time{}, false
	}
	return w.transition.NextWake(now)
}

// DrainSettlements returns settlements not yet announced to subscribers.
func (w *Wheel) DrainSettlements() []Settlement {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.unannounced
	w.unannounced = nil
	return out
}

// LastSettlement returns the most recent settlement, if any.
func (w *Wheel) LastSettlement() (Settlement, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last, w.last.SpinID != ""
}

// Outcomes returns the number of spins accepted so far.
func (w *Wheel) Outcomes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.spins
}

// DisplayRotation returns the eased rotation to draw at now.
func (w *Wheel) DisplayRotation(now time.Time) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advanceIfNeededLocked(now)
	return w.displayRotationLocked(now)
}

func (w *Wheel) displayRotationLocked(now time.Time) float64 {
	if w.phase != PhaseSpinning {
		return w.rotation
	}
	eased := realtime.EaseOutExpo(w.transition.Progress(now))
	return w.outcome.StartRotation + (w.outcome.TargetRotation-w.outcome.StartRotation)*eased
}

// Snapshot captures what a renderer needs at now.
type Snapshot struct {
	ID              string
	Phase           Phase
	Names           []string
	Segments        []Segment
	PointerAngle    float64
	// Rotation is the resting rotation; while spinning it is where the spin started.
	Rotation        float64
	DisplayRotation float64
	TargetRotation  float64
	Progress        float64
	SpinID          string
	SpinStartedAt   time.Time
	SpinDuration    time.Duration
	SettlesAt       time.Time
	Winner          string
	// WinnerIndex is -1 unless the shown segments are the ones the winner was drawn from.
	WinnerIndex int
	Spins       int
}

// Spinning reports whether a spin is in flight.
func (s Snapshot) Spinning() bool {
	return s.Phase == PhaseSpinning
}

// CanSpin reports whether a spin request would be accepted.
func (s Snapshot) CanSpin() bool {
	return s.Phase != PhaseSpinning && len(s.Names) > 0
}

// Snapshot returns a consistent view of the wheel, settling first if due.
func (w *Wheel) Snapshot(now time.Time) Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advanceIfNeededLocked(now)

	names := w.names
	if w.phase == PhaseSpinning {
		names = w.spinNames
	}
	names = slices.Clone(names)
	winnerIndex := -1
	if w.phase == PhaseSettled && slices.Equal(names, w.spinNames) {
		winnerIndex = w.winnerIndex
	}
	snap := Snapshot{
		ID:              w.ID,
		Phase:           w.phase,
		Names:           names,
		Segments:        Layout(names, w.settings.Palette),
		PointerAngle:    w.settings.PointerAngle,
		Rotation:        w.rotation,
		DisplayRotation: w.displayRotationLocked(now),
		TargetRotation:  w.rotation,
		Winner:          w.winner,
		WinnerIndex:     winnerIndex,
		Spins:           w.spins,
	}
	if w.phase == PhaseSpinning {
		snap.TargetRotation = w.outcome.TargetRotation
		snap.Progress = w.transition.Progress(now)
		snap.SpinID = w.outcome.ID
		snap.SpinStartedAt = w.outcome.StartedAt
		snap.SpinDuration = w.outcome.Duration
		snap.SettlesAt = w.outcome.SettlesAt()
	} else if w.spins > 0 {
		snap.SpinID = w.outcome.ID
		snap.Progress = 1
	}
	return snap
}
