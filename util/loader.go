// Package util - loads pixel-map input files from disk.
package util

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// PPMExtension is the file extension accepted for inputs and outputs.
const PPMExtension = ".ppm"

var (
	// ErrOpen is returned when an input file cannot be read.
	ErrOpen = errors.New("cannot open image file")
	// ErrExtension is returned when a path does not end in PPMExtension.
	ErrExtension = errors.New("image file must have a .ppm extension")
)

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Data is the raw bytes of the image file.
	Data []byte
}

// HasPPMExtension reports whether path ends in .ppm (case-insensitive).
func HasPPMExtension(path string) bool {
	return strings.EqualFold(filepath.Ext(path), PPMExtension)
}

// CheckExtension returns ErrExtension when path is not a .ppm file.
func CheckExtension(path string) error {
	if !HasPPMExtension(path) {
		return errors.Wrapf(ErrExtension, "%q", path)
	}
	return nil
}

// LoadImageFiles reads every path in order.
//
// Arguments:
// - paths: Paths to .ppm files.
//
// Returns:
// - []ImageFile: One entry per path, in the same order.
// - error: ErrExtension or ErrOpen for the first path that fails.
func LoadImageFiles(paths ...string) ([]ImageFile, error) {
	files := make([]ImageFile, 0, len(paths))
	for _, path := range paths {
		if err := CheckExtension(path); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(ErrOpen, "%s: %v", path, err)
		}

		files = append(files, ImageFile{
			Path: path,
			Data: data,
		})
	}

	return files, nil
}
