package images

import (
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// ResampleFilter defines the resampling algorithm used for image scaling.
type ResampleFilter int

const (
	// NearestNeighborFilter uses nearest-neighbor interpolation (fastest, lowest quality).
	NearestNeighborFilter ResampleFilter = iota
	// BilinearFilter uses bilinear interpolation (fast, good quality).
	BilinearFilter
	// BicubicFilter uses bicubic interpolation (slower, better quality).
	BicubicFilter
	// LanczosFilter uses Lanczos resampling with a=3 (slowest, best quality).
	LanczosFilter
	// MitchellNetravaliFilter uses Mitchell-Netravali cubic filter (balanced).
	MitchellNetravaliFilter
)

// resampleFilters maps each filter to its interpolation function.
var resampleFilters = map[ResampleFilter]resize.InterpolationFunction{
	NearestNeighborFilter:   resize.NearestNeighbor,
	BilinearFilter:          resize.Bilinear,
	BicubicFilter:           resize.Bicubic,
	LanczosFilter:           resize.Lanczos3,
	MitchellNetravaliFilter: resize.MitchellNetravali,
}

// resampleFilterNames maps the names accepted on the command line to filters.
var resampleFilterNames = map[string]ResampleFilter{
	"nearest":  NearestNeighborFilter,
	"bilinear": BilinearFilter,
	"bicubic":  BicubicFilter,
	"lanczos":  LanczosFilter,
	"mitchell": MitchellNetravaliFilter,
}

// ParseResampleFilter resolves a filter name such as "lanczos".
func ParseResampleFilter(name string) (ResampleFilter, error) {
	f, ok := resampleFilterNames[name]
	if !ok {
		return 0, errors.Wrapf(ErrInvalidParameter, "unknown resample filter %q", name)
	}
	return f, nil
}

// Resize resamples an image to rows x cols.
// The input is released on success.
//
// Arguments:
// - in: The source image.
// - rows: Target row count (height).
// - cols: Target column count (width).
// - filter: The resampling filter to use for interpolation.
//
// Returns:
// - The resized image.
// - error for non-positive targets, unknown filters or allocation failure.
//
// @example
// thumb, err := Resize(img, 120, 160, LanczosFilter)
func Resize(in *Image, rows, cols int, filter ResampleFilter) (*Image, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.Wrapf(ErrInvalidDimensions, "resize target %dx%d", rows, cols)
	}
	if rows > MaxPixels/cols {
		return nil, errors.Wrapf(ErrAllocation, "resize target %dx%d exceeds %d pixels", rows, cols, MaxPixels)
	}

	interp, ok := resampleFilters[filter]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidParameter, "unknown resample filter %d", filter)
	}

	// Same size: nothing to resample, hand the input back.
	if rows == in.Rows && cols == in.Cols {
		return in, nil
	}

	resized := resize.Resize(uint(cols), uint(rows), in, interp)

	dst, err := FromImage(resized)
	if err != nil {
		return nil, errors.Wrap(err, "converting resized image")
	}

	in.Release()
	return dst, nil
}
