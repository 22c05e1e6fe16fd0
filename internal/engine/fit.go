package engine

import (
	"math"

	"github.com/klytics/sheetcanvas/internal/errors"
	"github.com/klytics/sheetcanvas/internal/geometry"
)

// FitOptions tune the contain-fit of pictures into their anchor frame.
type FitOptions struct {
	// BasePadding is the inset applied to every frame, in pixels.
	BasePadding float64
	// MaxExtraPadding is added on top of BasePadding as the image aspect
	// ratio approaches ExtremeAspect.
	MaxExtraPadding float64
	// ExtremeAspect is the long/short side ratio from which an image counts
	// as extreme.
	ExtremeAspect float64
	// SubpixelTrim is subtracted from both sides of extreme images.
	SubpixelTrim float64
}

// DefaultFitOptions returns the default contain-fit tuning.
func DefaultFitOptions() FitOptions {
	return FitOptions{BasePadding: 2, MaxExtraPadding: 6, ExtremeAspect: 3, SubpixelTrim: 0.5}
}

// padding returns the inset for an image of the given aspect ratio inside
// frame. It never exceeds a quarter of the frame's shorter side.
func (o FitOptions) padding(frame geometry.Rect, aspect float64) float64 {
	extra := 0.0
	if o.ExtremeAspect > 1 {
		t := (aspect - 1) / (o.ExtremeAspect - 1)
		extra = o.MaxExtraPadding * math.Max(0, math.Min(1, t))
	}
	pad := math.Max(0, o.BasePadding+extra)
	return math.Min(pad, math.Min(frame.W, frame.H)/4)
}

// ContainFit scales an image of naturalW x naturalH into frame, keeping
// its aspect ratio. The result lies inside frame, is never larger than the
// natural size, and is centered in the padded frame. Sizes are floored;
// extreme aspect ratios lose a further SubpixelTrim.
func ContainFit(frame geometry.Rect, naturalW, naturalH float64, o FitOptions) (geometry.Rect, error) {
	if !frame.Finite() || frame.Empty() {
		return geometry.Rect{}, errors.New(errors.ErrCodeDegenerateGeometry, "frame %v has no area", frame)
	}
	if !(naturalW > 0) || !(naturalH > 0) || math.IsInf(naturalW, 0) || math.IsInf(naturalH, 0) {
		return geometry.Rect{}, errors.New(errors.ErrCodeDegenerateGeometry, "invalid natural size %vx%v", naturalW, naturalH)
	}

	aspect := math.Max(naturalW/naturalH, naturalH/naturalW)
	inner := frame.Inset(o.padding(frame, aspect))

	scale := math.Min(1, math.Min(inner.W/naturalW, inner.H/naturalH))
	w := math.Floor(naturalW * scale)
	h := math.Floor(naturalH * scale)
	if o.ExtremeAspect > 1 && aspect >= o.ExtremeAspect {
		w = math.Max(0, w-o.SubpixelTrim)
		h = math.Max(0, h-o.SubpixelTrim)
	}
	if w < 1 || h < 1 {
		return geometry.Rect{}, errors.New(errors.ErrCodeDegenerateGeometry, "image %vx%v does not fit frame %vx%v", naturalW, naturalH, frame.W, frame.H)
	}

	x := inner.X + (inner.W-w)/2
	y := inner.Y + (inner.H-h)/2
	x = math.Max(frame.X, math.Min(x, frame.Right()-w))
	y = math.Max(frame.Y, math.Min(y, frame.Bottom()-h))
	return geometry.Rect{X: x, Y: y, W: w, H: h}, nil
}
