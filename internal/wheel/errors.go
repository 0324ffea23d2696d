package wheel

import "errors"

var (
	ErrNoNames         = errors.New("wheel has no names")
	ErrSpinInFlight    = errors.New("spin already in progress")
	ErrWheelNotFound   = errors.New("wheel not found")
	ErrInvalidSettings = errors.New("invalid wheel settings")
)
