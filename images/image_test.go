package images

import (
	"image"
	"image/color"
	"math"
	"reflect"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestImage builds a rows x cols image filled by fn.
func newTestImage(t testing.TB, rows, cols int, fn func(r, c int) Pixel) *Image {
	t.Helper()
	img, err := NewImage(rows, cols)
	require.NoError(t, err)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			img.SetPixel(r, c, fn(r, c))
		}
	}
	return img
}

// solid returns a fill function for a single color.
func solid(p Pixel) func(r, c int) Pixel {
	return func(int, int) Pixel { return p }
}

// gradient gives every coordinate a distinct color.
func gradient(r, c int) Pixel {
	return Pixel{R: uint8(r*16 + c), G: uint8(c * 7), B: uint8(255 - r)}
}

func TestNewImageZeroFilled(t *testing.T) {
	img, err := NewImage(3, 4)
	require.NoError(t, err)

	rows, cols := img.Dimensions()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 4, cols)
	assert.Len(t, img.Data, 12)
	for _, p := range img.Data {
		assert.Equal(t, Pixel{}, p)
	}
	assert.False(t, img.Empty())
}

func TestNewImageInvalid(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		want       error
	}{
		{"zero rows", 0, 5, ErrInvalidDimensions},
		{"negative cols", 5, -1, ErrInvalidDimensions},
		{"too many pixels", MaxPixels, 2, ErrAllocation},
		{"overflow", math.MaxInt, math.MaxInt, ErrAllocation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := NewImage(tt.rows, tt.cols)
			assert.Nil(t, img)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestReleaseIdempotent(t *testing.T) {
	img := newTestImage(t, 2, 2, gradient)

	img.Release()
	assert.True(t, img.Empty())
	assert.Nil(t, img.Data)
	assert.Equal(t, 0, img.Rows)
	assert.Equal(t, 0, img.Cols)

	assert.NotPanics(t, img.Release)

	var nilImage *Image
	assert.NotPanics(t, nilImage.Release)
	assert.True(t, nilImage.Empty())
}

func TestPixelAccessRowMajor(t *testing.T) {
	img := newTestImage(t, 2, 3, gradient)

	assert.Equal(t, 5, img.Offset(1, 2))
	assert.Equal(t, gradient(1, 2), img.Data[5])
	assert.Equal(t, gradient(1, 2), img.PixelAt(1, 2))
	assert.True(t, img.Contains(1, 2))
	assert.False(t, img.Contains(2, 0))
	assert.False(t, img.Contains(0, -1))
}

func TestCloneAndEqual(t *testing.T) {
	img := newTestImage(t, 3, 3, gradient)
	clone := img.Clone()

	assert.True(t, img.Equal(clone))

	clone.SetPixel(0, 0, Pixel{R: 1, G: 2, B: 3})
	assert.False(t, img.Equal(clone), "clone must not alias the original")

	other := newTestImage(t, 1, 9, gradient)
	assert.False(t, img.Equal(other))
}

func TestImageInterface(t *testing.T) {
	img := newTestImage(t, 2, 3, gradient)

	var view image.Image = img
	assert.Equal(t, image.Rect(0, 0, 3, 2), view.Bounds())

	// x is the column, y the row.
	p := gradient(1, 2)
	assert.Equal(t, color.RGBA{R: p.R, G: p.G, B: p.B, A: 255}, view.At(2, 1))
	assert.Equal(t, color.RGBA{}, view.At(3, 0))
}

func TestFromImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 20, 13, 22))
	src.SetRGBA(10, 20, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	src.SetRGBA(12, 21, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	img, err := FromImage(src)
	require.NoError(t, err)

	assert.Equal(t, 2, img.Rows)
	assert.Equal(t, 3, img.Cols)
	assert.Equal(t, Pixel{R: 1, G: 2, B: 3}, img.PixelAt(0, 0))
	assert.Equal(t, Pixel{R: 200, G: 100, B: 50}, img.PixelAt(1, 2))
}

func TestFromImageRoundTrip(t *testing.T) {
	img := newTestImage(t, 4, 5, gradient)

	back, err := FromImage(img)
	require.NoError(t, err)
	assert.True(t, img.Equal(back))
}

func TestFromImageEmpty(t *testing.T) {
	_, err := FromImage(image.NewRGBA(image.Rect(0, 0, 0, 4)))
	assert.True(t, errors.Is(err, ErrInvalidDimensions))
}

func TestCheckDimensions(t *testing.T) {
	assert.NoError(t, CheckDimensions(1, 1))
	assert.True(t, errors.Is(CheckDimensions(0, 3), ErrInvalidDimensions))
	assert.True(t, errors.Is(CheckDimensions(16384, 16385), ErrAllocation))
	assert.True(t, errors.Is(CheckDimensions(math.MaxInt, 2), ErrAllocation))
}

func TestInvalidParameterKeepsCause(t *testing.T) {
	cause := errors.New("sigma out of range")
	err := errors.Wrap(InvalidParameter(cause), "blur failed")

	assert.True(t, errors.Is(err, ErrInvalidParameter))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrAllocation))
	assert.Equal(t, cause, errors.Cause(err))
	assert.Contains(t, err.Error(), "sigma out of range")
}

func TestPixelStorageUntagged(t *testing.T) {
	for _, typ := range []reflect.Type{reflect.TypeOf(Pixel{}), reflect.TypeOf(Image{})} {
		for i := 0; i < typ.NumField(); i++ {
			assert.Empty(t, typ.Field(i).Tag, "%s.%s", typ.Name(), typ.Field(i).Name)
		}
	}
}
