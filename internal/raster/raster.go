// Package raster draws a wheel snapshot as a raster image.
package raster

import (
	"fmt"
	"image"
	"io"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"spinwheel/internal/wheel"
)

const (
	MinSize     = 64
	MaxSize     = 2048
	DefaultSize = 512

	background   = "#1e1e1e"
	emptyWheel   = "#3c3c3c"
	pointerColor = "#ffd700"
	hubColor     = "#0a0a0a"
	labelDark    = "#1e1e1e"
	labelLight   = "#ffffff"
)

var (
	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error
)

func labelFont() (*text.FontSource, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewFontSource(goregular.TTF)
	})
	return fontSource, fontErr
}

// ClampSize keeps a requested edge length within [MinSize, MaxSize].
// Zero means DefaultSize.
func ClampSize(size int) int {
	switch {
	case size == 0:
		return DefaultSize
	case size < MinSize:
		return MinSize
	case size > MaxSize:
		return MaxSize
	}
	return size
}

// radians converts a clockwise-from-top angle in degrees into the canvas
// convention, where 0 points right and angles grow clockwise in y-down space.
func radians(deg float64) float64 {
	return (deg - 90) * math.Pi / 180
}

// Draw renders the wheel at its display rotation onto a size×size canvas.
func Draw(snap wheel.Snapshot, size int) (image.Image, error) {
	dc, err := paint(snap, size)
	if err != nil {
		return nil, err
	}
	defer dc.Close()
	return dc.Image(), nil
}

// WheelPNG renders the wheel and encodes it as PNG.
func WheelPNG(w io.Writer, snap wheel.Snapshot, size int) error {
	dc, err := paint(snap, size)
	if err != nil {
		return err
	}
	defer dc.Close()
	return dc.EncodePNG(w)
}

func paint(snap wheel.Snapshot, size int) (*gg.Context, error) {
	size = ClampSize(size)
	dc := gg.NewContext(size, size)
	if err := drawWheel(dc, snap, size); err != nil {
		dc.Close()
		return nil, err
	}
	return dc, nil
}

func drawWheel(dc *gg.Context, snap wheel.Snapshot, size int) error {
	dc.ClearWithColor(gg.Hex(background))

	c := float64(size) / 2
	margin := float64(size) * 0.06
	r := c - margin

	if len(snap.Segments) == 0 {
		dc.SetHexColor(emptyWheel)
		dc.DrawCircle(c, c, r)
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("fill empty wheel: %w", err)
		}
	}
	for _, seg := range snap.Segments {
		start := radians(seg.StartAngle + snap.DisplayRotation)
		end := radians(seg.EndAngle + snap.DisplayRotation)
		slice(dc, c, r, start, end)
		dc.SetHexColor(seg.Color)
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("fill segment %d: %w", seg.Index, err)
		}
	}
	if snap.WinnerIndex >= 0 && snap.WinnerIndex < len(snap.Segments) {
		seg := snap.Segments[snap.WinnerIndex]
		slice(dc, c, r-2, radians(seg.StartAngle+snap.DisplayRotation), radians(seg.EndAngle+snap.DisplayRotation))
		dc.SetHexColor(pointerColor)
		dc.SetLineWidth(math.Max(2, float64(size)/128))
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("outline winner: %w", err)
		}
	}
	if err := drawLabels(dc, snap, c, r); err != nil {
		return err
	}

	dc.SetHexColor(hubColor)
	dc.DrawCircle(c, c, r*0.08)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("fill hub: %w", err)
	}
	if err := drawPointer(dc, snap.PointerAngle, c, r, margin); err != nil {
		return err
	}
	if err := dc.FlushGPU(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// slice traces a pie slice from the center out to the arc between a1 and a2.
func slice(dc *gg.Context, c, r, a1, a2 float64) {
	dc.MoveTo(c, c)
	dc.LineTo(c+r*math.Cos(a1), c+r*math.Sin(a1))
	dc.DrawArc(c, c, r, a1, a2)
	dc.ClosePath()
}

func drawLabels(dc *gg.Context, snap wheel.Snapshot, c, r float64) error {
	if len(snap.Segments) == 0 {
		return nil
	}
	src, err := labelFont()
	if err != nil {
		return fmt.Errorf("load label font: %w", err)
	}
	// Shrink labels as slices narrow.
	pt := math.Min(r/8, math.Max(8, r*2*math.Pi/float64(len(snap.Segments))/4))
	dc.SetFont(src.Face(pt))
	for _, seg := range snap.Segments {
		mid := radians(seg.MidAngle() + snap.DisplayRotation)
		x := c + r*0.68*math.Cos(mid)
		y := c + r*0.68*math.Sin(mid)
		if seg.Color == emptyWheel {
			dc.SetHexColor(labelLight)
		} else {
			dc.SetHexColor(labelDark)
		}
		dc.DrawStringAnchored(shorten(seg.Label, 14), x, y, 0.5, 0.5)
	}
	return nil
}

// drawPointer draws a triangle outside the rim pointing at the center.
func drawPointer(dc *gg.Context, pointer, c, r, margin float64) error {
	a := radians(pointer)
	tip := r - margin*0.6
	base := r + margin*0.8
	half := 0.09
	dc.MoveTo(c+tip*math.Cos(a), c+tip*math.Sin(a))
	dc.LineTo(c+base*math.Cos(a-half), c+base*math.Sin(a-half))
	dc.LineTo(c+base*math.Cos(a+half), c+base*math.Sin(a+half))
	dc.ClosePath()
	dc.SetHexColor(pointerColor)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("fill pointer: %w", err)
	}
	return nil
}

func shorten(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
