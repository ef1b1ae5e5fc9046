package images

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
)

// Checksum generates a deterministic checksum for an image to verify idempotency.
//
// Arguments:
// - img: The image to compute checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string over the dimensions and pixel bytes.
//
// Example:
//
// ```go
//
//	checksum := Checksum(img)
//	fmt.Printf("Image checksum: %s\n", checksum)
//
// ```
func Checksum(img *Image) string {
	if img.Empty() {
		return "empty"
	}

	hash := md5.New()

	var dims [16]byte
	binary.BigEndian.PutUint64(dims[0:8], uint64(img.Rows))
	binary.BigEndian.PutUint64(dims[8:16], uint64(img.Cols))
	hash.Write(dims[:])

	buf := make([]byte, 0, len(img.Data)*3)
	for _, p := range img.Data {
		buf = append(buf, p.R, p.G, p.B)
	}
	hash.Write(buf)

	return fmt.Sprintf("%x", hash.Sum(nil))
}
