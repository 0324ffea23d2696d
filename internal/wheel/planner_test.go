package wheel

import "testing"

func TestPlanRotation_RoundTrip(t *testing.T) {
	currents := []float64{0, 123.4, 2160.75, 1e5 + 0.3}
	pointers := []float64{0, 90, 271.5}
	landings := []float64{0.05, 0.5, 0.95}
	for n := 1; n <= 60; n++ {
		width := SegmentWidth(n)
		for i := 0; i < n; i++ {
			for _, current := range currents {
				for _, pointer := range pointers {
					for _, landing := range landings {
						target := PlanRotation(PlanInput{
							WinningIndex: i,
							SegmentWidth: width,
							PointerAngle: pointer,
							Current:      current,
							FullTurns:    MinFullTurns,
							Landing:      landing,
						})
						got := IndexAtAngle(PointerOffset(target, pointer), n)
						if got != i {
							t.Fatalf("n=%d i=%d current=%v pointer=%v landing=%v: settled on %d", n, i, current, pointer, landing, got)
						}
					}
				}
			}
		}
	}
}

func TestPlanRotation_TurnsAndRange(t *testing.T) {
	for _, turns := range []int{0, 1, 3, 6, 10} {
		current := 400.0
		target := PlanRotation(PlanInput{
			WinningIndex: 1,
			SegmentWidth: 90,
			Current:      current,
			FullTurns:    turns,
		})
		want := turns
		if want < MinFullTurns {
			want = MinFullTurns
		}
		delta := target - current
		if delta < float64(want)*360 || delta >= float64(want+1)*360 {
			t.Errorf("turns=%d: delta %v outside [%d, %d) turns", turns, delta, want, want+1)
		}
	}
}

func TestPlanRotation_ScenarioAMiddle(t *testing.T) {
	// Four names, Carol at index 2 spans [180, 270); its middle 225 must reach the top.
	target := PlanRotation(PlanInput{WinningIndex: 2, SegmentWidth: 90, FullTurns: 3})
	if target != 3*360+135 {
		t.Errorf("target %v, want %v", target, 3*360+135)
	}
}

func TestLandingPoint(t *testing.T) {
	if got := LandingPoint(fixedRNG(999), 0); got != 0.5 {
		t.Errorf("zero spread landing %v, want 0.5", got)
	}
	lo := LandingPoint(fixedRNG(0), 2)
	hi := LandingPoint(fixedRNG(999), 2)
	if lo <= 0 || hi >= 1 || lo >= hi {
		t.Errorf("clamped spread landing range [%v, %v] not inside (0, 1)", lo, hi)
	}
	if lo < 0.049 || hi > 0.951 {
		t.Errorf("landing range [%v, %v] wider than 0.9 of the segment", lo, hi)
	}
}
