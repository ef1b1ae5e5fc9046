package images

// PointillismDensity is the fraction of pixels that seed a disk.
const PointillismDensity = 0.03

// PointillismMaxRadius is the largest disk radius drawn.
const PointillismMaxRadius = 5

// RandomSource is a caller-owned pseudo-random stream.
// *math/rand.Rand and *random.Glibc both satisfy it.
type RandomSource interface {
	// Int31 returns a non-negative pseudo-random 31-bit integer.
	Int31() int32
}

// Pointillism repaints an image as colored disks on a black canvas.
//
// floor(3% of the pixel count) disks are drawn. For each one the source yields,
// in order, the radius (1..5), the center column and the center row; the disk
// takes the color of the source pixel under its center. Later disks overwrite
// earlier ones. The input is released before returning.
//
// Arguments:
// - in: The source image.
// - src: The random stream driving placement. Same stream, same output.
//
// Returns:
// - The stylized image.
// - error if the output cannot be allocated.
//
// @example
// painted, err := Pointillism(img, random.NewGlibc(1))
func Pointillism(in *Image, src RandomSource) (*Image, error) {
	dst, err := NewImage(in.Rows, in.Cols)
	if err != nil {
		return nil, err
	}

	points := int(float64(in.Rows*in.Cols) * PointillismDensity)
	for i := 0; i < points; i++ {
		radius := int(src.Int31())%PointillismMaxRadius + 1
		x := int(src.Int31()) % in.Cols
		y := int(src.Int31()) % in.Rows

		stampDisk(dst, y, x, radius, in.Data[y*in.Cols+x])
	}

	in.Release()
	return dst, nil
}

// stampDisk paints every in-bounds pixel within radius of (row, col).
func stampDisk(dst *Image, row, col, radius int, color Pixel) {
	for j := -radius; j <= radius; j++ {
		for k := -radius; k <= radius; k++ {
			if j*j+k*k > radius*radius {
				continue
			}
			r, c := row+j, col+k
			if dst.Contains(r, c) {
				dst.Data[r*dst.Cols+c] = color
			}
		}
	}
}
