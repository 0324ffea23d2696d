package handlers

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"spinwheel/internal/viewmodel"
	"spinwheel/internal/wheel"
)

// SVG wheel geometry, in viewBox units around the origin.
const (
	wheelRadius  = 100.0
	labelRadius  = 62.0
	pointerTip   = 94.0
	pointerBase  = 116.0
	pointerHalf  = 5.0
	maxLabelRune = 14
)

// point maps a clockwise-from-top angle onto SVG coordinates (y down).
func point(deg, r float64) (float64, float64) {
	rad := deg * math.Pi / 180
	return r * math.Sin(rad), -r * math.Cos(rad)
}

func slicePath(start, end float64) string {
	x1, y1 := point(start, wheelRadius)
	x2, y2 := point(end, wheelRadius)
	large := 0
	if end-start > 180 {
		large = 1
	}
	return fmt.Sprintf("M0 0 L%.3f %.3f A%.0f %.0f 0 %d 1 %.3f %.3f Z", x1, y1, wheelRadius, wheelRadius, large, x2, y2)
}

func pointerPath(angle float64) string {
	tx, ty := point(angle, pointerTip)
	lx, ly := point(angle-pointerHalf, pointerBase)
	rx, ry := point(angle+pointerHalf, pointerBase)
	return fmt.Sprintf("M%.3f %.3f L%.3f %.3f L%.3f %.3f Z", tx, ty, lx, ly, rx, ry)
}

func shortLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= maxLabelRune {
		return s
	}
	return string(runes[:maxLabelRune-1]) + "…"
}

func buildFigure(snap wheel.Snapshot) viewmodel.WheelFigure {
	segments := make([]viewmodel.SegmentView, len(snap.Segments))
	for i, seg := range snap.Segments {
		mid := seg.MidAngle()
		lx, ly := point(mid, labelRadius)
		if len(snap.Segments) == 1 {
			lx, ly = 0, -labelRadius
		}
		segments[i] = viewmodel.SegmentView{
			Index:      seg.Index,
			Label:      shortLabel(seg.Label),
			Color:      seg.Color,
			Path:       slicePath(seg.StartAngle, seg.EndAngle),
			LabelX:     lx,
			LabelY:     ly,
			LabelAngle: mid - 90,
			Winner:     seg.Index == snap.WinnerIndex,
		}
	}
	fig := viewmodel.WheelFigure{
		WheelID:         snap.ID,
		Segments:        segments,
		FullCircle:      len(segments) == 1,
		Empty:           len(segments) == 0,
		PointerPath:     pointerPath(snap.PointerAngle),
		StartRotation:   snap.Rotation,
		TargetRotation:  snap.TargetRotation,
		DisplayRotation: snap.DisplayRotation,
		Spinning:        snap.Spinning(),
		Key:             figureKey(snap),
	}
	if snap.Spinning() {
		fig.StartedMs = snap.SpinStartedAt.UnixMilli()
		fig.DurationMs = snap.SpinDuration.Milliseconds()
	}
	return fig
}

// figureKey changes whenever the drawn wheel would, so the client can skip
// swapping an identical figure mid-animation.
func figureKey(snap wheel.Snapshot) string {
	return strings.Join([]string{
		string(snap.Phase),
		snap.SpinID,
		namesDigest(snap.Names),
		fmt.Sprint(snap.WinnerIndex),
	}, "|")
}

func namesDigest(names []string) string {
	h := fnv.New64a()
	for _, name := range names {
		h.Write([]byte(name))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%d-%x", len(names), h.Sum64())
}

func buildStatus(snap wheel.Snapshot) viewmodel.WheelStatus {
	status := viewmodel.WheelStatus{
		WheelID:   snap.ID,
		Phase:     string(snap.Phase),
		Spinning:  snap.Spinning(),
		CanSpin:   snap.CanSpin(),
		Winner:    snap.Winner,
		NameCount: len(snap.Names),
		Spins:     snap.Spins,
	}
	if snap.Spinning() {
		status.SettlesMs = snap.SettlesAt.UnixMilli()
	}
	return status
}
