package handlers

import (
	"math"
	"strings"
	"testing"
	"time"

	"spinwheel/internal/wheel"
)

func TestPoint_ClockwiseFromTop(t *testing.T) {
	tests := []struct {
		deg    float64
		wx, wy float64
	}{
		{0, 0, -10},
		{90, 10, 0},
		{180, 0, 10},
		{270, -10, 0},
	}
	for _, tt := range tests {
		x, y := point(tt.deg, 10)
		if math.Abs(x-tt.wx) > 1e-9 || math.Abs(y-tt.wy) > 1e-9 {
			t.Errorf("point(%v) = (%v, %v), want (%v, %v)", tt.deg, x, y, tt.wx, tt.wy)
		}
	}
}

func TestSlicePath_LargeArcFlag(t *testing.T) {
	if p := slicePath(0, 120); !strings.Contains(p, " 0 0 1 ") {
		t.Errorf("narrow slice path %q should use the small arc", p)
	}
	if p := slicePath(0, 240); !strings.Contains(p, " 0 1 1 ") {
		t.Errorf("wide slice path %q should use the large arc", p)
	}
}

func TestShortLabel(t *testing.T) {
	if got := shortLabel("Alice"); got != "Alice" {
		t.Errorf("short label changed: %q", got)
	}
	got := shortLabel("Bartholomew Fitzgerald")
	if n := len([]rune(got)); n != maxLabelRune || !strings.HasSuffix(got, "…") {
		t.Errorf("shortLabel = %q (%d runes)", got, n)
	}
}

func TestBuildFigure_MarksWinnerAfterSettling(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	settings := wheel.DefaultSettings()
	settings.Duration = time.Second
	w := wheel.NewWheel([]string{"Alice", "Bob", "Carol"}, "Bob", settings, fixedRNG(0), now)

	fig := buildFigure(w.Snapshot(now))
	if fig.Spinning || len(fig.Segments) != 3 {
		t.Fatalf("idle figure %+v", fig)
	}
	for _, seg := range fig.Segments {
		if seg.Winner {
			t.Errorf("segment %d marked before any spin", seg.Index)
		}
	}

	if _, err := w.Spin(now); err != nil {
		t.Fatal(err)
	}
	spinning := buildFigure(w.Snapshot(now.Add(100 * time.Millisecond)))
	if !spinning.Spinning || spinning.DurationMs != 1000 || spinning.StartedMs != now.UnixMilli() {
		t.Errorf("spinning figure %+v", spinning)
	}
	if spinning.TargetRotation <= spinning.StartRotation {
		t.Errorf("target %v not ahead of start %v", spinning.TargetRotation, spinning.StartRotation)
	}

	settled := w.Snapshot(now.Add(2 * time.Second))
	fig = buildFigure(settled)
	for _, seg := range fig.Segments {
		if seg.Winner != (seg.Index == 1) {
			t.Errorf("segment %d winner=%v", seg.Index, seg.Winner)
		}
	}
	if fig.Key == spinning.Key {
		t.Error("figure key unchanged across settlement")
	}
	status := buildStatus(settled)
	if status.Winner != "Bob" || status.Spinning || !status.CanSpin {
		t.Errorf("status %+v", status)
	}
}

func TestBuildFigure_KeyChangesOnSameLengthReplacement(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	w := wheel.NewWheel([]string{"Alice", "Bob"}, "", wheel.DefaultSettings(), fixedRNG(0), now)
	before := buildFigure(w.Snapshot(now)).Key

	w.Refresh([]string{"Xavier", "Yolanda"}, "")
	after := buildFigure(w.Snapshot(now)).Key
	if before == after {
		t.Fatalf("figure key %q unchanged after replacing names", before)
	}

	w.Refresh([]string{"Xavier", "Yolanda"}, "")
	if again := buildFigure(w.Snapshot(now)).Key; again != after {
		t.Errorf("figure key changed without a name change: %q -> %q", after, again)
	}
}

func TestBuildFigure_SingleName(t *testing.T) {
	w := wheel.NewWheel([]string{"Solo"}, "", wheel.DefaultSettings(), fixedRNG(0), time.Now())
	fig := buildFigure(w.Snapshot(time.Now()))
	if !fig.FullCircle || fig.Segments[0].LabelX != 0 {
		t.Errorf("single name figure %+v", fig)
	}
}
