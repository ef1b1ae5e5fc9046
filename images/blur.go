package images

import (
	"github.com/nvr-ai/go-ppm/images/kernels"
	"github.com/pkg/errors"
)

// BlurOptions configures BlurWithOptions.
type BlurOptions struct {
	// Parallel splits the rows across goroutines. Output is identical to the
	// sequential path because every output pixel reads only the source.
	Parallel bool `json:"parallel" yaml:"parallel"`
}

// Blur applies a full 2-D Gaussian blur sequentially.
//
// Arguments:
// - in: The source image. Consumed when sigma > 0.
// - sigma: Standard deviation of the Gaussian kernel.
//
// Returns:
// - The blurred image, or in itself when sigma is 0.
// - error if sigma is negative or not finite, or allocation fails.
//
// @example
// blurred, err := Blur(img, 1.5)
func Blur(in *Image, sigma float64) (*Image, error) {
	return BlurWithOptions(in, sigma, BlurOptions{})
}

// BlurWithOptions applies a full 2-D Gaussian blur.
//
// A sigma of exactly 0 is a no-op and returns in unchanged. Otherwise each
// output channel is the weighted mean of the kernel taps that fall inside the
// image; taps outside the image count toward neither the sum nor the weight
// total. Results are truncated to 8 bits. The input is released on success.
//
// Arguments:
// - in: The source image.
// - sigma: Standard deviation of the Gaussian kernel.
// - opt: Execution options.
//
// Returns:
// - The blurred image.
// - ErrInvalidParameter if sigma is invalid or its density underflows or
// overflows float64, ErrAllocation if the kernel or output is too large;
// in is untouched then.
//
// @example
// blurred, err := BlurWithOptions(img, 2, BlurOptions{Parallel: true})
func BlurWithOptions(in *Image, sigma float64, opt BlurOptions) (*Image, error) {
	if sigma == 0 {
		return in, nil
	}

	// Taps beyond the larger image side are never in bounds.
	kernel, err := kernels.NewGaussian(sigma, max(in.Rows, in.Cols)-1)
	switch {
	case errors.Is(err, kernels.ErrKernelTooLarge):
		return nil, &kindError{kind: ErrAllocation, cause: err}
	case err != nil:
		return nil, InvalidParameter(err)
	}

	dst, err := NewImage(in.Rows, in.Cols)
	if err != nil {
		return nil, err
	}

	rowTask := func(start, end int) {
		for r := start; r < end; r++ {
			for c := 0; c < in.Cols; c++ {
				dst.Data[r*dst.Cols+c] = convolveAt(in, kernel, r, c)
			}
		}
	}

	if opt.Parallel {
		Parallel(in.Rows, rowTask)
	} else {
		rowTask(0, in.Rows)
	}

	in.Release()
	return dst, nil
}

// convolveAt computes the normalized weighted sum around (r, c).
func convolveAt(src *Image, k *kernels.Gaussian, r, c int) Pixel {
	dxMin, dxMax, dyMin, dyMax := k.Window(r, c, src.Rows, src.Cols)

	var sumR, sumG, sumB, total float64
	for dx := dxMin; dx <= dxMax; dx++ {
		row := (r + dx) * src.Cols
		for dy := dyMin; dy <= dyMax; dy++ {
			w := k.Weight(dx, dy)
			p := src.Data[row+c+dy]
			sumR += float64(p.R) * w
			sumG += float64(p.G) * w
			sumB += float64(p.B) * w
			total += w
		}
	}

	return Pixel{
		R: uint8(sumR / total),
		G: uint8(sumG / total),
		B: uint8(sumB / total),
	}
}
