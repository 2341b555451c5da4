package service

import (
	"math"
	"time"

	"sifs_backend/internals/features/certificates/verification/model"
)

// SettleInterval is how long clients wait after mount before measuring the container.
const SettleInterval = 100 * time.Millisecond

// ComputeScale fits the native canvas into the container width without ever upscaling.
func ComputeScale(containerWidthPx float64, o model.Orientation) float64 {
	if math.IsNaN(containerWidthPx) || containerWidthPx <= 0 {
		return 0
	}
	s := containerWidthPx / float64(o.NativeWidth())
	if s > 1 {
		return 1
	}
	return s
}

// Box is a pixel rectangle size.
type Box struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ReservedBox is the layout space the scaled certificate occupies.
func ReservedBox(scale float64, o model.Orientation) Box {
	w, h := o.NativeSize()
	return Box{Width: float64(w) * scale, Height: float64(h) * scale}
}

func NativeBox(o model.Orientation) Box {
	return ReservedBox(1, o)
}
