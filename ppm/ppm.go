// Package ppm - reads and writes binary (P6) portable pixel-map images.
package ppm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/nvr-ai/go-ppm/images"
	"github.com/pkg/errors"
)

const (
	// Magic is the tag that opens every binary pixel map.
	Magic = "P6"
	// MaxValue is the only color depth supported.
	MaxValue = 255
)

// Decode errors. Each one means the input is not a usable P6 image.
var (
	ErrBadTag        = errors.New("ppm: not a P6 pixel map (bad tag)")
	ErrBadNumber     = errors.New("ppm: malformed header number")
	ErrBadDepth      = errors.New("ppm: color depth must be 255")
	ErrBadDimensions = errors.New("ppm: non-positive dimensions")
	ErrTruncated     = errors.New("ppm: truncated pixel data")
)

// IsDecodeError reports whether err means the input was not a valid pixel map.
func IsDecodeError(err error) bool {
	for _, target := range []error{ErrBadTag, ErrBadNumber, ErrBadDepth, ErrBadDimensions, ErrTruncated} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Decode reads a P6 image.
//
// The header is the tag, the column count, the row count and the color depth.
// Any run of whitespace and '#' comment lines may precede each number.
//
// Exactly one whitespace byte must follow the depth; anything else after it is
// ErrBadNumber. The raster starts at the very next byte, so leading pixel bytes
// whose values happen to be whitespace (such as 0x0a or 0x20) are kept as
// pixel data. This is stricter than readers that skip all whitespace after
// the depth, which misread such images.
//
// Arguments:
// - r: The source stream.
//
// Returns:
// - The decoded image, never partially filled.
// - A decode error (see IsDecodeError) or an allocation error.
//
// @example
// img, err := Decode(bytes.NewReader(data))
func Decode(r io.Reader) (*images.Image, error) {
	br := bufio.NewReader(r)

	tag, err := readToken(br)
	if err != nil || tag != Magic {
		return nil, errors.Wrapf(ErrBadTag, "got %q", tag)
	}

	cols, err := readNumber(br)
	if err != nil {
		return nil, errors.Wrap(err, "reading width")
	}
	rows, err := readNumber(br)
	if err != nil {
		return nil, errors.Wrap(err, "reading height")
	}
	depth, err := readNumber(br)
	if err != nil {
		return nil, errors.Wrap(err, "reading color depth")
	}

	if depth != MaxValue {
		return nil, errors.Wrapf(ErrBadDepth, "got %d", depth)
	}
	if cols <= 0 || rows <= 0 {
		return nil, errors.Wrapf(ErrBadDimensions, "%dx%d", cols, rows)
	}

	// Exactly one whitespace byte separates the header from the raster.
	sep, err := br.ReadByte()
	if err != nil {
		return nil, errors.Wrap(ErrTruncated, "missing raster")
	}
	if !isSpace(sep) {
		return nil, errors.Wrapf(ErrBadNumber, "unexpected %q after color depth", sep)
	}

	if err := images.CheckDimensions(rows, cols); err != nil {
		return nil, err
	}

	data, err := readRaster(br, rows, cols)
	if err != nil {
		return nil, err
	}

	return &images.Image{Data: data, Rows: rows, Cols: cols}, nil
}

// rasterChunk is the number of pixels read per step.
const rasterChunk = 1 << 16

// readRaster reads rows*cols RGB triples in bounded chunks. Storage grows with
// the bytes actually read, so a header that overstates the raster fails with
// ErrTruncated before reserving the full claimed size.
func readRaster(br *bufio.Reader, rows, cols int) ([]images.Pixel, error) {
	total := rows * cols
	data := make([]images.Pixel, 0, min(total, rasterChunk))
	buf := make([]byte, 3*min(total, rasterChunk))

	for len(data) < total {
		chunk := buf[:3*min(total-len(data), rasterChunk)]
		if n, err := io.ReadFull(br, chunk); err != nil {
			return nil, errors.Wrapf(ErrTruncated, "want %d bytes, got %d", 3*total, 3*len(data)+n)
		}

		// Double the capacity, never past the final size.
		if need := len(data) + len(chunk)/3; need > cap(data) {
			grown := make([]images.Pixel, len(data), min(max(2*cap(data), need), total))
			copy(grown, data)
			data = grown
		}
		for i := 0; i < len(chunk); i += 3 {
			data = append(data, images.Pixel{R: chunk[i], G: chunk[i+1], B: chunk[i+2]})
		}
	}

	return data, nil
}

// Encode writes img as a P6 image.
//
// Arguments:
// - w: The destination stream.
// - img: The image to write.
//
// Returns:
// - error if img is empty or the write fails.
func Encode(w io.Writer, img *images.Image) error {
	if img.Empty() {
		return errors.Wrap(images.ErrInvalidDimensions, "ppm: cannot encode an empty image")
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%s\n%d %d\n%d\n", Magic, img.Cols, img.Rows, MaxValue); err != nil {
		return errors.Wrap(err, "ppm: writing header")
	}

	for _, p := range img.Data {
		if _, err := bw.Write([]byte{p.R, p.G, p.B}); err != nil {
			return errors.Wrap(err, "ppm: writing raster")
		}
	}

	return errors.Wrap(bw.Flush(), "ppm: flushing")
}

// ReadFile opens and decodes the pixel map at path.
func ReadFile(path string) (*images.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return img, nil
}

// WriteFile encodes img into a new file at path.
func WriteFile(path string, img *images.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Encode(f, img); err != nil {
		f.Close()
		return errors.Wrapf(err, "encoding %s", path)
	}
	return f.Close()
}

// skipSeparators consumes whitespace and '#' comments up to the next token.
func skipSeparators(br *bufio.Reader) error {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return err
		}
		switch {
		case isSpace(b):
			continue
		case b == '#':
			if _, err := br.ReadString('\n'); err != nil {
				return err
			}
		default:
			return br.UnreadByte()
		}
	}
}

// readToken returns the next run of non-whitespace bytes.
func readToken(br *bufio.Reader) (string, error) {
	if err := skipSeparators(br); err != nil {
		return "", err
	}

	var tok []byte
	for len(tok) < 20 {
		b, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if isSpace(b) {
			return string(tok), br.UnreadByte()
		}
		tok = append(tok, b)
	}
	return string(tok), nil
}

// readNumber parses an optionally negative decimal integer.
func readNumber(br *bufio.Reader) (int, error) {
	if err := skipSeparators(br); err != nil {
		return 0, errors.Wrap(ErrBadNumber, err.Error())
	}

	var digits []byte
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, errors.Wrap(ErrBadNumber, err.Error())
		}
		if (b >= '0' && b <= '9') || (b == '-' && len(digits) == 0) {
			digits = append(digits, b)
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, errors.Wrap(ErrBadNumber, err.Error())
		}
		break
	}

	n, err := strconv.Atoi(string(digits))
	if err != nil {
		return 0, errors.Wrapf(ErrBadNumber, "%q", digits)
	}
	return n, nil
}

// isSpace matches the whitespace bytes allowed in a pixel-map header.
func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
