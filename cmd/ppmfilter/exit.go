package main

import (
	"github.com/nvr-ai/go-ppm/images"
	"github.com/nvr-ai/go-ppm/operations"
	"github.com/nvr-ai/go-ppm/ppm"
	"github.com/nvr-ai/go-ppm/util"
	"github.com/pkg/errors"
)

// Exit codes returned by the command.
const (
	ExitSuccess          = 0
	ExitMissingFilename  = 1
	ExitOpenFailed       = 2
	ExitInvalidPPM       = 3
	ExitInvalidOperation = 4
	ExitInvalidOpArgs    = 5
	ExitOpArgsRange      = 6
	ExitWriteFailed      = 7
	ExitUnspecified      = 8
)

var (
	errMissingFilename = errors.New("missing filename")
	errWriteFailed     = errors.New("cannot write output")
)

// exitCode maps an error to the command's exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errMissingFilename):
		return ExitMissingFilename
	case errors.Is(err, util.ErrOpen), errors.Is(err, util.ErrExtension):
		return ExitOpenFailed
	case ppm.IsDecodeError(err):
		return ExitInvalidPPM
	case errors.Is(err, operations.ErrUnknownOperation):
		return ExitInvalidOperation
	case errors.Is(err, operations.ErrArgCount):
		return ExitInvalidOpArgs
	case errors.Is(err, operations.ErrArgValue), errors.Is(err, images.ErrInvalidParameter):
		return ExitOpArgsRange
	case errors.Is(err, errWriteFailed):
		return ExitWriteFailed
	default:
		return ExitUnspecified
	}
}
