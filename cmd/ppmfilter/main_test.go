package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/nvr-ai/go-ppm/images"
	"github.com/nvr-ai/go-ppm/operations"
	"github.com/nvr-ai/go-ppm/ppm"
	"github.com/nvr-ai/go-ppm/random"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeInput stores a deterministic rows x cols image under dir.
func writeInput(t *testing.T, dir, name string, rows, cols int) (string, *images.Image) {
	t.Helper()
	img, err := images.NewImage(rows, cols)
	require.NoError(t, err)
	for i := range img.Data {
		img.Data[i] = images.Pixel{R: uint8(i * 3), G: uint8(i * 5), B: uint8(i * 7)}
	}
	path := filepath.Join(dir, name)
	require.NoError(t, ppm.WriteFile(path, img))
	return path, img
}

func TestRunGrayscale(t *testing.T) {
	dir := t.TempDir()
	in, img := writeInput(t, dir, "in.ppm", 6, 8)
	out := filepath.Join(dir, "out.ppm")

	var stderr bytes.Buffer
	code := run([]string{in, out, "grayscale"}, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	got, err := ppm.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, images.Grayscale(img).Equal(got))
}

func TestRunBlend(t *testing.T) {
	dir := t.TempDir()
	a, imgA := writeInput(t, dir, "a.ppm", 4, 5)
	b, imgB := writeInput(t, dir, "b.ppm", 6, 3)
	out := filepath.Join(dir, "mix.ppm")

	var stderr bytes.Buffer
	code := run([]string{a, b, "blend", out, "0.3"}, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	want, err := images.Blend(imgA, imgB, 0.3)
	require.NoError(t, err)
	got, err := ppm.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}

func TestRunPointillismDefaultSeed(t *testing.T) {
	dir := t.TempDir()
	in, img := writeInput(t, dir, "in.ppm", 20, 25)
	out := filepath.Join(dir, "dots.ppm")

	var stderr bytes.Buffer
	code := run([]string{in, out, "pointilism"}, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	want, err := images.Pointillism(img, random.NewGlibc(1))
	require.NoError(t, err)
	got, err := ppm.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, images.Checksum(want), images.Checksum(got))
}

func TestRunFlagsAndConfig(t *testing.T) {
	dir := t.TempDir()
	in, img := writeInput(t, dir, "in.ppm", 20, 25)
	out := filepath.Join(dir, "dots.ppm")

	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := "log:\n  level: debug\n  format: json\npointillism:\n  seed: 9\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	var stderr bytes.Buffer
	code := run([]string{"-config", cfgPath, "-seed", "5", "-profile", in, out, "pointillism"}, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	// The flag overrides the file's seed.
	want, err := images.Pointillism(img, random.NewGlibc(5))
	require.NoError(t, err)
	got, err := ppm.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	assert.Contains(t, stderr.String(), `"msg":"operation timing"`)
	assert.Contains(t, stderr.String(), `"msg":"operation output"`)
}

func TestRunExitCodes(t *testing.T) {
	dir := t.TempDir()
	in, _ := writeInput(t, dir, "in.ppm", 4, 4)
	out := filepath.Join(dir, "out.ppm")

	broken := filepath.Join(dir, "broken.ppm")
	require.NoError(t, os.WriteFile(broken, []byte("P3\n1 1\n255\n0 0 0\n"), 0o644))

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no arguments", nil, ExitMissingFilename},
		{"only input", []string{in}, ExitMissingFilename},
		{"no operation", []string{in, out}, ExitInvalidOperation},
		{"missing input", []string{filepath.Join(dir, "nope.ppm"), out, "grayscale"}, ExitOpenFailed},
		{"input extension", []string{filepath.Join(dir, "in.png"), out, "grayscale"}, ExitOpenFailed},
		{"not a P6 file", []string{broken, out, "grayscale"}, ExitInvalidPPM},
		{"unknown operation", []string{in, out, "sharpen"}, ExitInvalidOperation},
		{"missing sigma", []string{in, out, "blur"}, ExitInvalidOpArgs},
		{"extra argument", []string{in, out, "grayscale", "1"}, ExitInvalidOpArgs},
		{"blend without output", []string{in, in, "blend"}, ExitMissingFilename},
		{"blend without alpha", []string{in, in, "blend", out}, ExitInvalidOpArgs},
		{"sigma not a number", []string{in, out, "blur", "soft"}, ExitOpArgsRange},
		{"negative sigma", []string{in, out, "blur", "-2"}, ExitOpArgsRange},
		{"output extension", []string{in, filepath.Join(dir, "out.png"), "grayscale"}, ExitWriteFailed},
		{"unwritable output", []string{in, filepath.Join(dir, "missing", "out.ppm"), "grayscale"}, ExitWriteFailed},
		{"bad flag value", []string{"-random", "dice", in, out, "grayscale"}, ExitOpArgsRange},
		{"undefined flag", []string{"-bogus", in, out, "grayscale"}, ExitInvalidOpArgs},
		{"help", []string{"-h"}, ExitSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			assert.Equal(t, tt.want, run(tt.args, &stderr), stderr.String())
		})
	}
}

func TestParseInvocation(t *testing.T) {
	inv, err := parseInvocation([]string{"in.ppm", "out.ppm", "resize", "64", "48"})
	require.NoError(t, err)
	assert.Equal(t, []string{"in.ppm"}, inv.inputs)
	assert.Equal(t, "out.ppm", inv.output)
	assert.Equal(t, operations.Resize, inv.op.Name)
	assert.Equal(t, operations.Params{Cols: 64, Rows: 48}, inv.params)

	inv, err = parseInvocation([]string{"a.ppm", "b.ppm", "blend", "c.PPM", "0.75"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.ppm", "b.ppm"}, inv.inputs)
	assert.Equal(t, "c.PPM", inv.output)
	assert.Equal(t, 0.75, inv.params.Alpha)
}

func TestExitCodeDefault(t *testing.T) {
	assert.Equal(t, ExitSuccess, exitCode(nil))
	assert.Equal(t, ExitUnspecified, exitCode(images.ErrAllocation))
}

func TestPrintUsageListsOperations(t *testing.T) {
	var stderr bytes.Buffer
	run([]string{"-h"}, &stderr)

	for _, op := range operations.List() {
		assert.Contains(t, stderr.String(), string(op.Name))
	}
	assert.Contains(t, stderr.String(), "blur <sigma>")
	assert.Contains(t, stderr.String(), "resize <cols> <rows>")
}
