package images

import (
	"math"
	"runtime"
	"sync"
)

// Luma weights applied to the red, green and blue channels.
const (
	// RedWeight is the red contribution to perceived brightness.
	RedWeight = 0.30
	// GreenWeight is the green contribution to perceived brightness.
	GreenWeight = 0.59
	// BlueWeight is the blue contribution to perceived brightness.
	BlueWeight = 0.11
)

// Luma returns the rounded weighted intensity of p.
//
// Arguments:
// - p: The pixel to measure.
//
// Returns:
// - round(0.30*R + 0.59*G + 0.11*B), always within [0, 255].
//
// @example
// gray := Luma(Pixel{R: 255}) // Returns 77
func Luma(p Pixel) uint8 {
	v := RedWeight*float64(p.R) + GreenWeight*float64(p.G) + BlueWeight*float64(p.B)
	return uint8(Clamp(math.Round(v), 0, 255))
}

// Grayscale replaces every channel of every pixel with its luma, in place.
//
// Arguments:
// - img: The image to convert. It is mutated.
//
// Returns:
// - The same image pointer.
//
// @example
// gray := Grayscale(img)
func Grayscale(img *Image) *Image {
	for i, p := range img.Data {
		gray := Luma(p)
		img.Data[i] = Pixel{R: gray, G: gray, B: gray}
	}
	return img
}

// Saturate scales every channel's distance from the pixel luma, in place.
// A scale of 1 leaves the image untouched, 0 produces grayscale and negative
// values push each channel to the opposite side of gray.
//
// Arguments:
// - img: The image to adjust. It is mutated.
// - scale: The saturation factor.
//
// Returns:
// - The same image pointer.
//
// @example
// vivid := Saturate(img, 1.5)
func Saturate(img *Image, scale float64) *Image {
	for i, p := range img.Data {
		gray := float64(Luma(p))
		img.Data[i] = Pixel{
			R: uint8(Clamp((float64(p.R)-gray)*scale+gray, 0, 255)),
			G: uint8(Clamp((float64(p.G)-gray)*scale+gray, 0, 255)),
			B: uint8(Clamp((float64(p.B)-gray)*scale+gray, 0, 255)),
		}
	}
	return img
}

// Blend alpha-composites a over b into a new image large enough for both.
//
// The overlap of the two images gets round(a*alpha + b*(1-alpha)) per channel.
// Outside the overlap each pixel comes from a when a covers it, otherwise from
// b, otherwise it stays black. alpha is not clamped: results outside [0, 255]
// wrap when narrowed to 8 bits. Neither input is released.
//
// Arguments:
// - a: The first image, preferred outside the overlap.
// - b: The second image.
// - alpha: The weight of a.
//
// Returns:
// - The blended image.
// - error if the output cannot be allocated.
//
// @example
// mixed, err := Blend(foreground, background, 0.75)
func Blend(a, b *Image, alpha float64) (*Image, error) {
	maxRows, minRows := max(a.Rows, b.Rows), min(a.Rows, b.Rows)
	maxCols, minCols := max(a.Cols, b.Cols), min(a.Cols, b.Cols)

	dst, err := NewImage(maxRows, maxCols)
	if err != nil {
		return nil, err
	}

	// Overlap: weighted mix of both sources.
	beta := 1 - alpha
	for r := 0; r < minRows; r++ {
		for c := 0; c < minCols; c++ {
			pa := a.Data[r*a.Cols+c]
			pb := b.Data[r*b.Cols+c]
			dst.Data[r*dst.Cols+c] = Pixel{
				R: narrow(math.Round(float64(pa.R)*alpha + float64(pb.R)*beta)),
				G: narrow(math.Round(float64(pa.G)*alpha + float64(pb.G)*beta)),
				B: narrow(math.Round(float64(pa.B)*alpha + float64(pb.B)*beta)),
			}
		}
	}

	// Rows below the shorter image span the full output width.
	for r := minRows; r < maxRows; r++ {
		for c := 0; c < maxCols; c++ {
			fillFromSources(dst, a, b, r, c)
		}
	}

	// Columns right of the narrower image, within the shared rows.
	for r := 0; r < minRows; r++ {
		for c := minCols; c < maxCols; c++ {
			fillFromSources(dst, a, b, r, c)
		}
	}

	return dst, nil
}

// fillFromSources copies (r, c) from a, or from b when a does not cover it.
func fillFromSources(dst, a, b *Image, r, c int) {
	switch {
	case a.Contains(r, c):
		dst.Data[r*dst.Cols+c] = a.Data[r*a.Cols+c]
	case b.Contains(r, c):
		dst.Data[r*dst.Cols+c] = b.Data[r*b.Cols+c]
	}
}

// RotateCCW rotates an image 90 degrees counter-clockwise.
// The image is transposed and the transposed rows are then reversed.
// The input is consumed: it is released before returning.
//
// Arguments:
// - in: The image to rotate.
//
// Returns:
// - A new image with rows and columns swapped.
// - error if the output cannot be allocated.
//
// @example
// rotated, err := RotateCCW(img)
func RotateCCW(in *Image) (*Image, error) {
	dst, err := NewImage(in.Cols, in.Rows)
	if err != nil {
		return nil, err
	}

	// Transpose: dst[c][r] = in[r][c].
	for r := 0; r < in.Rows; r++ {
		for c := 0; c < in.Cols; c++ {
			dst.Data[c*dst.Cols+r] = in.Data[r*in.Cols+c]
		}
	}

	// Reverse the row order of the transposed buffer.
	for top, bottom := 0, dst.Rows-1; top < bottom; top, bottom = top+1, bottom-1 {
		upper := dst.Data[top*dst.Cols : (top+1)*dst.Cols]
		lower := dst.Data[bottom*dst.Cols : (bottom+1)*dst.Cols]
		for c := range upper {
			upper[c], lower[c] = lower[c], upper[c]
		}
	}

	in.Release()
	return dst, nil
}

// narrow truncates a channel value toward zero and keeps its low 8 bits.
func narrow(v float64) uint8 {
	return uint8(int64(v))
}

// Clamp restricts a value to the specified range [min, max].
// This is used to prevent overflow in color calculations.
//
// Arguments:
// - value: The value to Clamp.
// - min: Minimum allowed value.
// - max: Maximum allowed value.
//
// Returns:
// - The clamped value within [min, max].
//
// @example
// clamped := Clamp(300.5, 0, 255) // Returns 255
// clamped := Clamp(-10.0, 0, 255) // Returns 0
func Clamp(value, min, max float64) float64 {
	// Check lower bound first (common case for underflow).
	if value < min {
		return min
	}
	// Check upper bound.
	if value > max {
		return max
	}
	// Value is within range.
	return value
}

// Parallel executes a function in Parallel across multiple goroutines.
// Partitions are contiguous and cover [0, dataSize) exactly once.
//
// Arguments:
// - dataSize: The size of the data to process.
// - fn: Function to execute for each partition (receives start and end indices).
//
// Returns:
// - None.
//
// @example
//
//	Parallel(rows, func(start, end int) {
//	    for r := start; r < end; r++ {
//	        // Process row r
//	    }
//	})
func Parallel(dataSize int, fn func(partStart, partEnd int)) {
	// Determine number of goroutines to use.
	numGoroutines := runtime.NumCPU()

	// For small data sizes, parallel processing overhead isn't worth it.
	if dataSize < numGoroutines*2 {
		fn(0, dataSize)
		return
	}

	// Calculate partition size for each goroutine.
	partSize := dataSize / numGoroutines

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		partStart := i * partSize
		partEnd := partStart + partSize

		// Last partition gets any remaining data.
		if i == numGoroutines-1 {
			partEnd = dataSize
		}

		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(partStart, partEnd)
	}

	wg.Wait()
}
