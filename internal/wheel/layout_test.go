package wheel

import (
	"math"
	"testing"
)

func TestLayout_CoversFullTurn(t *testing.T) {
	for n := 1; n <= 64; n++ {
		names := make([]string, n)
		for i := range names {
			names[i] = string(rune('a' + i%26))
		}
		segments := Layout(names, nil)
		if len(segments) != n {
			t.Fatalf("n=%d: %d segments", n, len(segments))
		}
		width := 360.0 / float64(n)
		if segments[0].StartAngle != 0 {
			t.Errorf("n=%d: first segment starts at %v", n, segments[0].StartAngle)
		}
		if segments[n-1].EndAngle != 360 {
			t.Errorf("n=%d: last segment ends at %v", n, segments[n-1].EndAngle)
		}
		for i, seg := range segments {
			if seg.Index != i {
				t.Errorf("n=%d: segment %d has index %d", n, i, seg.Index)
			}
			if math.Abs(seg.Width()-width) > 1e-9 {
				t.Errorf("n=%d: segment %d width %v, want %v", n, i, seg.Width(), width)
			}
			if i > 0 && seg.StartAngle != segments[i-1].EndAngle {
				t.Errorf("n=%d: gap or overlap before segment %d", n, i)
			}
			if seg.Label != names[i] {
				t.Errorf("n=%d: segment %d label %q, want %q", n, i, seg.Label, names[i])
			}
		}
	}
}

func TestLayout_Empty(t *testing.T) {
	if got := Layout(nil, nil); len(got) != 0 {
		t.Errorf("Layout(nil) returned %d segments", len(got))
	}
}

func TestLayout_PaletteCycles(t *testing.T) {
	names := make([]string, 10)
	segments := Layout(names, []string{"#000", "#111", "#222"})
	want := []string{"#000", "#111", "#222", "#000", "#111", "#222", "#000", "#111", "#222", "#000"}
	for i, seg := range segments {
		if seg.Color != want[i] {
			t.Errorf("segment %d color %q, want %q", i, seg.Color, want[i])
		}
	}
	segments = Layout([]string{"a", "b"}, nil)
	if segments[1].Color != DefaultPalette[1] {
		t.Errorf("default palette not applied: %q", segments[1].Color)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{359.5, 359.5},
		{360, 0},
		{720, 0},
		{725, 5},
		{-90, 270},
		{-360, 0},
		{-1e-15, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	for _, tt := range tests {
		got := Normalize(tt.in)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Normalize(%v) %v, want %v", tt.in, got, tt.want)
		}
		if got < 0 || got >= 360 {
			t.Errorf("Normalize(%v) %v out of range", tt.in, got)
		}
	}
}

func TestIndexAtAngle(t *testing.T) {
	tests := []struct {
		angle float64
		n     int
		want  int
	}{
		{0, 4, 0},
		{89.999, 4, 0},
		{90, 4, 1},
		{180, 4, 2},
		{359.999, 4, 3},
		{360, 4, 0},
		{-45, 4, 3},
		{725, 4, 0},
		{200, 1, 0},
		{10, 0, -1},
	}
	for _, tt := range tests {
		if got := IndexAtAngle(tt.angle, tt.n); got != tt.want {
			t.Errorf("IndexAtAngle(%v, %d) %d, want %d", tt.angle, tt.n, got, tt.want)
		}
	}
}

func TestIndexAtAngle_MatchesSegmentContains(t *testing.T) {
	segments := Layout([]string{"a", "b", "c", "d", "e", "f", "g"}, nil)
	for a := 0.0; a < 360; a += 0.25 {
		idx := IndexAtAngle(a, len(segments))
		if !segments[idx].Contains(a) {
			t.Fatalf("angle %v mapped to segment %d [%v, %v)", a, idx, segments[idx].StartAngle, segments[idx].EndAngle)
		}
	}
}

func TestPointerOffset(t *testing.T) {
	// Turning clockwise by 90 brings the segment at wheel-local 270 to the top.
	if got := PointerOffset(90, 0); got != 270 {
		t.Errorf("PointerOffset(90, 0) %v, want 270", got)
	}
	if got := PointerOffset(450, 90); got != 0 {
		t.Errorf("PointerOffset(450, 90) %v, want 0", got)
	}
}
