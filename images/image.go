// Package images - owned RGB pixel buffers and the filters that transform them.
package images

import (
	"image"
	"image/color"
	"math"

	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"
)

// MaxPixels is the largest pixel count NewImage will allocate.
const MaxPixels = 1 << 28

var (
	// ErrAllocation is returned when storage for an image cannot be obtained.
	ErrAllocation = errors.New("image allocation failed")
	// ErrInvalidDimensions is returned for non-positive row or column counts.
	ErrInvalidDimensions = errors.New("image dimensions must be positive")
	// ErrInvalidParameter is returned when a filter parameter is out of its domain.
	ErrInvalidParameter = errors.New("invalid filter parameter")
)

// kindError classifies a cause under one of the package sentinels. errors.Is
// matches both the sentinel and anything in the cause chain.
type kindError struct {
	kind  error
	cause error
}

func (e *kindError) Error() string { return e.kind.Error() + ": " + e.cause.Error() }

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *kindError) Unwrap() error { return e.cause }

// Cause exposes the cause to errors.Cause.
func (e *kindError) Cause() error { return e.cause }

// Is reports whether target is the classifying sentinel.
func (e *kindError) Is(target error) bool { return target == e.kind }

// InvalidParameter marks cause as ErrInvalidParameter without hiding it.
//
// Arguments:
// - cause: The underlying error.
//
// Returns:
// - An error matching both ErrInvalidParameter and cause under errors.Is.
//
// @example
// return nil, InvalidParameter(err)
func InvalidParameter(cause error) error {
	return &kindError{kind: ErrInvalidParameter, cause: cause}
}

// Pixel is a single 8-bit RGB sample.
type Pixel struct {
	// R is the red channel.
	R uint8
	// G is the green channel.
	G uint8
	// B is the blue channel.
	B uint8
}

// Image represents a row-major RGB image that exclusively owns its pixel data.
//
// The pixel at row r and column c is stored at Data[r*Cols+c]. An Image with
// zero rows, zero columns and no data is the empty sentinel left behind by
// Release and by failed construction.
type Image struct {
	// The pixels of the image, row by row.
	Data []Pixel
	// The number of rows (height) of the image.
	Rows int
	// The number of columns (width) of the image.
	Cols int
}

// NewImage allocates a zero-filled (black) image.
//
// Arguments:
// - rows: The number of rows, must be > 0.
// - cols: The number of columns, must be > 0.
//
// Returns:
// - The allocated image.
// - ErrInvalidDimensions for non-positive sizes, ErrAllocation when the pixel
// count cannot be represented or exceeds MaxPixels.
//
// @example
// img, err := NewImage(480, 640)
func NewImage(rows, cols int) (*Image, error) {
	if err := CheckDimensions(rows, cols); err != nil {
		return nil, err
	}

	return &Image{
		Data: make([]Pixel, rows*cols),
		Rows: rows,
		Cols: cols,
	}, nil
}

// CheckDimensions applies the NewImage size rules without allocating.
// It returns ErrInvalidDimensions for non-positive sizes and ErrAllocation
// when rows*cols overflows or exceeds MaxPixels.
func CheckDimensions(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return errors.Wrapf(ErrInvalidDimensions, "%dx%d", rows, cols)
	}

	// Reject counts that would overflow int or exceed the allocation ceiling.
	if rows > math.MaxInt/cols || rows*cols > MaxPixels {
		return errors.Wrapf(ErrAllocation, "%dx%d exceeds %d pixels", rows, cols, MaxPixels)
	}
	return nil
}

// Release drops the pixel storage and leaves the image as the empty sentinel.
// It is safe to call more than once and on a nil image.
func (img *Image) Release() {
	if img == nil {
		return
	}
	img.Data = nil
	img.Rows = 0
	img.Cols = 0
}

// Dimensions returns the row and column counts.
func (img *Image) Dimensions() (rows, cols int) {
	return img.Rows, img.Cols
}

// Empty reports whether img is nil or the empty sentinel.
func (img *Image) Empty() bool {
	return img == nil || img.Rows <= 0 || img.Cols <= 0 || len(img.Data) != img.Rows*img.Cols
}

// Offset returns the linear index of (r, c) in Data.
func (img *Image) Offset(r, c int) int {
	return r*img.Cols + c
}

// PixelAt returns the pixel at row r and column c.
func (img *Image) PixelAt(r, c int) Pixel {
	return img.Data[r*img.Cols+c]
}

// SetPixel stores p at row r and column c.
func (img *Image) SetPixel(r, c int, p Pixel) {
	img.Data[r*img.Cols+c] = p
}

// Contains reports whether (r, c) lies inside the image.
func (img *Image) Contains(r, c int) bool {
	return r >= 0 && r < img.Rows && c >= 0 && c < img.Cols
}

// Clone returns a deep copy of img.
func (img *Image) Clone() *Image {
	data := make([]Pixel, len(img.Data))
	copy(data, img.Data)
	return &Image{Data: data, Rows: img.Rows, Cols: img.Cols}
}

// Equal reports whether both images have the same dimensions and pixels.
func (img *Image) Equal(other *Image) bool {
	if img.Rows != other.Rows || img.Cols != other.Cols || len(img.Data) != len(other.Data) {
		return false
	}
	for i := range img.Data {
		if img.Data[i] != other.Data[i] {
			return false
		}
	}
	return true
}

// ColorModel implements image.Image.
func (img *Image) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image. X runs over columns and Y over rows.
func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Cols, img.Rows)
}

// At implements image.Image and returns an opaque color.
func (img *Image) At(x, y int) color.Color {
	if !img.Contains(y, x) {
		return color.RGBA{}
	}
	p := img.Data[y*img.Cols+x]
	return color.RGBA{R: p.R, G: p.G, B: p.B, A: 255}
}

// FromImage converts any image.Image into an owned RGB image. Alpha is discarded.
//
// Arguments:
// - src: The image to convert.
//
// Returns:
// - The converted image.
// - error if src has empty bounds or is too large.
//
// @example
// img, err := FromImage(resized)
func FromImage(src image.Image) (*Image, error) {
	bounds := src.Bounds()
	dst, err := NewImage(bounds.Dy(), bounds.Dx())
	if err != nil {
		return nil, err
	}

	// Normalize to non-premultiplied RGBA so we can read raw bytes.
	nrgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Copy(nrgba, image.Point{}, src, bounds, xdraw.Src, nil)

	for r := 0; r < dst.Rows; r++ {
		row := r * nrgba.Stride
		for c := 0; c < dst.Cols; c++ {
			off := row + c*4
			dst.Data[r*dst.Cols+c] = Pixel{R: nrgba.Pix[off], G: nrgba.Pix[off+1], B: nrgba.Pix[off+2]}
		}
	}

	return dst, nil
}
