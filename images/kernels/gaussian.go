// Package kernels - convolution kernels used by the blur filters.
package kernels

import (
	"math"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidSigma is returned when a Gaussian is requested for a sigma
	// that is not a finite positive number, or whose density cannot be
	// represented in float64.
	ErrInvalidSigma = errors.New("gaussian sigma must be finite and positive")
	// ErrKernelTooLarge is returned when the weight table would exceed MaxTaps.
	ErrKernelTooLarge = errors.New("gaussian kernel too large")
)

// MaxTaps is the largest number of weights NewGaussian will allocate.
const MaxTaps = 1 << 24

// minNormal is the smallest positive normal float64. Weights below it lose
// precision when multiplied by channel values.
const minNormal = 0x1p-1022

// Gaussian is a square, odd-sized matrix of 2-D normal density weights.
//
// The weights are not normalized. Convolution divides by the sum of the taps
// it actually used, so border pixels are averaged over the in-bounds part of
// the window only.
type Gaussian struct {
	Sigma   float64   // Standard deviation the weights were sampled with.
	Size    int       // Side length n, always odd.
	Half    int       // n/2, the offset of the center tap.
	Weights []float64 // Row-major n*n weights, indexed by (dx+Half)*Size + (dy+Half).
}

// NewGaussian samples the 2-D Gaussian density for sigma.
//
// The side length is int(sigma*10), bumped to the next odd number, and is
// capped at 2*maxHalf+1. Taps farther than maxHalf from the center never fall
// inside a grid whose larger side is maxHalf+1, so the cap does not change
// any convolution over such a grid.
func NewGaussian(sigma float64, maxHalf int) (*Gaussian, error) {
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return nil, errors.Wrapf(ErrInvalidSigma, "sigma=%v", sigma)
	}
	if maxHalf < 0 {
		maxHalf = 0
	}

	variance := sigma * sigma
	factor := 1.0 / (2.0 * math.Pi * variance)
	if variance == 0 || math.IsInf(factor, 0) || factor < minNormal {
		return nil, errors.Wrapf(ErrInvalidSigma, "sigma=%v has no representable density", sigma)
	}
	denom := 2.0 * variance

	// Compare in float64 so huge sigmas cannot overflow int.
	half := maxHalf
	if span := sigma * 10; span < float64(2*maxHalf+1) {
		size := int(span)
		if size%2 == 0 {
			size++
		}
		half = size / 2
	}
	size := 2*half + 1

	if size > MaxTaps/size {
		return nil, errors.Wrapf(ErrKernelTooLarge, "sigma=%v needs %dx%d taps", sigma, size, size)
	}

	weights := make([]float64, size*size)
	for dx := -half; dx <= half; dx++ {
		for dy := -half; dy <= half; dy++ {
			d2 := float64(dx*dx + dy*dy)
			w := factor * math.Exp(-d2/denom)
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, errors.Wrapf(ErrInvalidSigma, "sigma=%v gives weight %v at (%d,%d)", sigma, w, dx, dy)
			}
			weights[(dx+half)*size+(dy+half)] = w
		}
	}

	return &Gaussian{Sigma: sigma, Size: size, Half: half, Weights: weights}, nil
}

// Weight returns the tap at offset (dx, dy) from the center.
func (g *Gaussian) Weight(dx, dy int) float64 {
	return g.Weights[(dx+g.Half)*g.Size+(dy+g.Half)]
}

// Sum returns the total of all weights.
func (g *Gaussian) Sum() float64 {
	var sum float64
	for _, w := range g.Weights {
		sum += w
	}
	return sum
}

// Window returns the tap ranges that keep center+offset inside [0, n) on each
// axis, for a window centered at (r, c) over a rows*cols grid.
// Taps outside the returned ranges are excluded from the convolution.
func (g *Gaussian) Window(r, c, rows, cols int) (dxMin, dxMax, dyMin, dyMax int) {
	dxMin, dxMax = clampSpan(r, rows, g.Half)
	dyMin, dyMax = clampSpan(c, cols, g.Half)
	return dxMin, dxMax, dyMin, dyMax
}

// clampSpan limits [-half, half] so that center+offset stays within [0, n).
func clampSpan(center, n, half int) (lo, hi int) {
	lo, hi = -half, half
	if center+lo < 0 {
		lo = -center
	}
	if center+hi >= n {
		hi = n - 1 - center
	}
	return lo, hi
}
