package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"testing"
	"time"

	"spinwheel/internal/wheel"
)

type fixedRNG int

func (f fixedRNG) Intn(n int) int { return int(f) % n }

func rgb(img image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func hexRGB(t *testing.T, hex string) (uint8, uint8, uint8) {
	t.Helper()
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		t.Fatalf("parse %q: %v", hex, err)
	}
	return r, g, b
}

func near(a, b uint8) bool {
	d := int(a) - int(b)
	return d >= -3 && d <= 3
}

// settledSnapshot spins a wheel to rest on the named winner.
func settledSnapshot(t *testing.T, names []string, winner string, pointer float64) wheel.Snapshot {
	t.Helper()
	settings := wheel.DefaultSettings()
	settings.PointerAngle = pointer
	settings.LandingSpread = 0
	now := time.Now().UTC()
	w := wheel.NewWheel(names, winner, settings, fixedRNG(0), now)
	outcome, err := w.Spin(now)
	if err != nil {
		t.Fatalf("Spin: %v", err)
	}
	return w.Snapshot(outcome.SettlesAt())
}

func TestDraw_PointerSitsOnWinner(t *testing.T) {
	names := []string{"Alice", "Bob", "Carol", "Dave", "Erin"}
	for _, pointer := range []float64{0, 90, 200} {
		for i, name := range names {
			snap := settledSnapshot(t, names, name, pointer)
			const size = 256
			img, err := Draw(snap, size)
			if err != nil {
				t.Fatalf("Draw: %v", err)
			}
			c := float64(size) / 2
			r := c - float64(size)*0.06
			a := radians(pointer)
			x := int(math.Round(c + 0.35*r*math.Cos(a)))
			y := int(math.Round(c + 0.35*r*math.Sin(a)))

			wr, wg, wb := hexRGB(t, snap.Segments[i].Color)
			gr, gg, gb := rgb(img, x, y)
			if !near(gr, wr) || !near(gg, wg) || !near(gb, wb) {
				t.Errorf("pointer %v winner %s: pixel (%d,%d) is #%02x%02x%02x, want %s",
					pointer, name, x, y, gr, gg, gb, snap.Segments[i].Color)
			}
		}
	}
}

func TestWheelPNG(t *testing.T) {
	snap := settledSnapshot(t, []string{"Alice", "Bob"}, "Bob", 0)
	var buf bytes.Buffer
	if err := WheelPNG(&buf, snap, 100); err != nil {
		t.Fatalf("WheelPNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 100 {
		t.Errorf("bounds %v, want 100x100", b)
	}
}

func TestDraw_EmptyWheel(t *testing.T) {
	now := time.Now().UTC()
	snap := wheel.NewWheel(nil, "", wheel.DefaultSettings(), fixedRNG(0), now).Snapshot(now)
	img, err := Draw(snap, MinSize)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	// Halfway between hub and rim.
	r, g, b := rgb(img, MinSize/2+MinSize/5, MinSize/2)
	wr, wg, wb := hexRGB(t, emptyWheel)
	if !near(r, wr) || !near(g, wg) || !near(b, wb) {
		t.Errorf("empty wheel pixel #%02x%02x%02x, want %s", r, g, b, emptyWheel)
	}
}

func TestClampSize(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, DefaultSize},
		{1, MinSize},
		{300, 300},
		{1 << 20, MaxSize},
	}
	for _, tt := range tests {
		if got := ClampSize(tt.in); got != tt.want {
			t.Errorf("ClampSize(%d) %d, want %d", tt.in, got, tt.want)
		}
	}
}
