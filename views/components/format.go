package components

import (
	"strconv"

	"spinwheel/internal/viewmodel"
)

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

func rotate(deg float64) string {
	return "rotate(" + num(deg) + ")"
}

// labelTransform turns a label about its own anchor.
func labelTransform(seg viewmodel.SegmentView) string {
	return "rotate(" + num(seg.LabelAngle) + " " + num(seg.LabelX) + " " + num(seg.LabelY) + ")"
}
