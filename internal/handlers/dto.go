package handlers

import (
	"time"

	"spinwheel/internal/wheel"
)

type NamesRequest struct {
	Names []string `json:"names"`
}

type NameRequest struct {
	Name string `json:"name"`
}

type WinnerRequest struct {
	Winner string `json:"winner"`
}

// NamesResponse is the JSON shape of the persisted list.
type NamesResponse struct {
	Names  []string `json:"names"`
	Winner string   `json:"winner,omitempty"`
}

type SegmentResponse struct {
	Index      int     `json:"index"`
	StartAngle float64 `json:"startAngle"`
	EndAngle   float64 `json:"endAngle"`
	Color      string  `json:"color"`
	Label      string  `json:"label"`
}

// WheelResponse is the state a renderer needs to draw a wheel.
type WheelResponse struct {
	ID              string            `json:"id"`
	Phase           string            `json:"phase"`
	Segments        []SegmentResponse `json:"segments"`
	PointerAngle    float64           `json:"pointerAngle"`
	Rotation        float64           `json:"rotation"`
	DisplayRotation float64           `json:"displayRotation"`
	TargetRotation  float64           `json:"targetRotation"`
	IsSpinning      bool              `json:"isSpinning"`
	CanSpin         bool              `json:"canSpin"`
	Winner          *string           `json:"winner"`
	WinnerIndex     *int              `json:"winnerIndex,omitempty"`
	SpinID          string            `json:"spinId,omitempty"`
	SettlesAt       *time.Time        `json:"settlesAt,omitempty"`
	Spins           int               `json:"spins"`
}

// SpinResponse describes an accepted spin. The winner is only revealed once
// the wheel settles.
type SpinResponse struct {
	SpinID         string    `json:"spinId"`
	StartRotation  float64   `json:"startRotation"`
	TargetRotation float64   `json:"targetRotation"`
	StartedAt      time.Time `json:"startedAt"`
	SettlesAt      time.Time `json:"settlesAt"`
	DurationMS     int64     `json:"durationMs"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toWheelResponse(snap wheel.Snapshot) WheelResponse {
	segments := make([]SegmentResponse, len(snap.Segments))
	for i, seg := range snap.Segments {
		segments[i] = SegmentResponse{
			Index:      seg.Index,
			StartAngle: seg.StartAngle,
			EndAngle:   seg.EndAngle,
			Color:      seg.Color,
			Label:      seg.Label,
		}
	}
	resp := WheelResponse{
		ID:              snap.ID,
		Phase:           string(snap.Phase),
		Segments:        segments,
		PointerAngle:    snap.PointerAngle,
		Rotation:        snap.Rotation,
		DisplayRotation: snap.DisplayRotation,
		TargetRotation:  snap.TargetRotation,
		IsSpinning:      snap.Spinning(),
		CanSpin:         snap.CanSpin(),
		SpinID:          snap.SpinID,
		Spins:           snap.Spins,
	}
	if snap.Winner != "" {
		winner := snap.Winner
		resp.Winner = &winner
	}
	if snap.WinnerIndex >= 0 {
		idx := snap.WinnerIndex
		resp.WinnerIndex = &idx
	}
	if snap.Spinning() {
		settles := snap.SettlesAt
		resp.SettlesAt = &settles
	}
	return resp
}

func toSpinResponse(o wheel.SpinOutcome) SpinResponse {
	return SpinResponse{
		SpinID:         o.ID,
		StartRotation:  o.StartRotation,
		TargetRotation: o.TargetRotation,
		StartedAt:      o.StartedAt,
		SettlesAt:      o.SettlesAt(),
		DurationMS:     o.Duration.Milliseconds(),
	}
}
