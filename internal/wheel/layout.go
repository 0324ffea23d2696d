package wheel

import "math"

// Angles are in degrees, clockwise from 12 o'clock. Segment i occupies the
// wheel-local span [i*w, (i+1)*w). Turning the wheel clockwise by r degrees
// brings wheel-local angle a to screen angle a+r, so the pointer at screen
// angle p reads wheel-local angle p-r.

const fullTurn = 360.0

// DefaultPalette is the segment color cycle.
var DefaultPalette = []string{
	"#ff6b6b", "#4ecdc4", "#45b7d1", "#f7d794",
	"#ff8a5c", "#7fb069", "#d88c9a", "#3c3c3c",
}

// Segment is one angular slice of the wheel, one per name.
type Segment struct {
	Index      int
	StartAngle float64
	EndAngle   float64
	Color      string
	Label      string
}

// Width returns the angular width of the segment.
func (s Segment) Width() float64 {
	return s.EndAngle - s.StartAngle
}

// MidAngle returns the wheel-local angle halfway through the segment.
func (s Segment) MidAngle() float64 {
	return (s.StartAngle + s.EndAngle) / 2
}

// Contains reports whether the wheel-local angle falls inside the segment.
func (s Segment) Contains(angle float64) bool {
	return angle >= s.StartAngle && angle < s.EndAngle
}

// SegmentWidth returns the width of each of n equal segments, or 0 when n < 1.
func SegmentWidth(n int) float64 {
	if n < 1 {
		return 0
	}
	return fullTurn / float64(n)
}

// Layout partitions the wheel into one segment per name, in list order.
// Colors cycle through palette (DefaultPalette when empty). An empty name list
// yields no segments.
func Layout(names []string, palette []string) []Segment {
	if len(names) == 0 {
		return nil
	}
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	width := SegmentWidth(len(names))
	segments := make([]Segment, len(names))
	for i, name := range names {
		end := float64(i+1) * width
		if i == len(names)-1 {
			end = fullTurn
		}
		segments[i] = Segment{
			Index:      i,
			StartAngle: float64(i) * width,
			EndAngle:   end,
			Color:      palette[i%len(palette)],
			Label:      name,
		}
	}
	return segments
}

// Normalize maps any angle onto [0, 360). Non-finite input maps to 0.
func Normalize(angle float64) float64 {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return 0
	}
	a := math.Mod(angle, fullTurn)
	if a < 0 {
		a += fullTurn
	}
	// -tiny + 360 rounds to exactly 360.
	if a >= fullTurn {
		a = 0
	}
	return a
}

// IndexAtAngle returns the index of the segment containing the wheel-local
// angle on a wheel of n segments, or -1 when n < 1.
func IndexAtAngle(angle float64, n int) int {
	if n < 1 {
		return -1
	}
	idx := int(math.Floor(Normalize(angle) / SegmentWidth(n)))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return idx
}

// PointerOffset returns the wheel-local angle under a pointer fixed at screen
// angle pointer once the wheel has turned clockwise by rotation degrees.
func PointerOffset(rotation, pointer float64) float64 {
	return Normalize(pointer - rotation)
}
