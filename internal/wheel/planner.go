package wheel

// MinFullTurns is the fewest whole revolutions a spin adds before landing.
const MinFullTurns = 3

// landingSteps is the resolution of the random landing point inside a segment.
const landingSteps = 1000

// PlanInput describes one rotation to plan.
type PlanInput struct {
	WinningIndex int
	SegmentWidth float64
	PointerAngle float64
	// Current is the accumulated rotation before the spin.
	Current   float64
	FullTurns int
	// Landing is where inside the winning segment the pointer should stop,
	// as a fraction of its width in (0, 1). Out-of-range values mean the middle.
	Landing float64
}

// PlanRotation returns the accumulated rotation at which the pointer rests on
// the winning segment: Current plus at least MinFullTurns whole turns plus an
// offset in [0, 360). The result is always greater than Current.
func PlanRotation(in PlanInput) float64 {
	turns := in.FullTurns
	if turns < MinFullTurns {
		turns = MinFullTurns
	}
	landing := in.Landing
	if landing <= 0 || landing >= 1 {
		landing = 0.5
	}
	// Wheel-local angle that must end up under the pointer.
	target := (float64(in.WinningIndex) + landing) * in.SegmentWidth
	offset := Normalize(in.PointerAngle - target - in.Current)
	return in.Current + float64(turns)*fullTurn + offset
}

// LandingPoint draws a landing fraction around the segment middle. spread is
// the share of the segment width the landing may wander over, clamped to
// [0, 0.9] so the pointer never stops on a boundary.
func LandingPoint(rng RNG, spread float64) float64 {
	if spread <= 0 {
		return 0.5
	}
	if spread > 0.9 {
		spread = 0.9
	}
	u := float64(rng.Intn(landingSteps)) / landingSteps
	return 0.5 + spread*(u-0.5)
}
