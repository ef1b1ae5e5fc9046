package operations

import (
	"github.com/nvr-ai/go-ppm/images"
	"github.com/nvr-ai/go-ppm/profiler"
	"github.com/nvr-ai/go-ppm/random"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Runner executes operations with shared settings.
type Runner struct {
	// Logger receives debug entries with dimensions and checksums. Optional.
	Logger *logrus.Logger
	// RandomKind and Seed build the stream handed to pointillism.
	RandomKind random.Kind
	Seed       uint32
	// Blur configures Gaussian blur execution.
	Blur images.BlurOptions
	// ResizeFilter is the resampling filter for resize.
	ResizeFilter images.ResampleFilter
	// Profiler, when set, times every run.
	Profiler *profiler.Profiler
}

// newSource returns a fresh stream so every run starts at the seed.
func (r *Runner) newSource() (random.Source, error) {
	src, err := random.NewSource(r.RandomKind, r.Seed)
	if err != nil {
		return nil, images.InvalidParameter(err)
	}
	return src, nil
}

// Run applies op to inputs.
//
// Ownership follows the filter: grayscale and saturate return their input,
// rotate-ccw, pointillism, resize and non-zero blur release it, and blend leaves
// both inputs to the caller.
//
// Arguments:
// - op: The operation from Lookup.
// - params: The result of op.Parse.
// - inputs: Exactly op.Inputs decoded images.
//
// Returns:
// - The transformed image.
// - error if the input count is wrong, an input is empty or the filter fails.
func (r *Runner) Run(op Operation, params Params, inputs ...*images.Image) (*images.Image, error) {
	if len(inputs) != op.Inputs {
		return nil, errors.Wrapf(ErrArgCount, "%s needs %d image(s), got %d", op.Name, op.Inputs, len(inputs))
	}
	for i, in := range inputs {
		if in.Empty() {
			return nil, errors.Wrapf(images.ErrInvalidDimensions, "%s input %d is empty", op.Name, i)
		}
	}

	debug := r.Logger != nil && r.Logger.IsLevelEnabled(logrus.DebugLevel)
	if debug {
		log := r.Logger.WithField("operation", op.Name)
		for i, in := range inputs {
			log.WithFields(logrus.Fields{
				"input":    i,
				"rows":     in.Rows,
				"cols":     in.Cols,
				"checksum": images.Checksum(in),
			}).Debug("operation input")
		}
	}

	stop := func() {}
	if r.Profiler != nil {
		stop = r.Profiler.StartOperation(string(op.Name))
	}

	out, err := op.apply(r, inputs, params)
	stop()
	if err != nil {
		return nil, errors.Wrapf(err, "%s failed", op.Name)
	}

	if debug {
		r.Logger.WithFields(logrus.Fields{
			"operation": op.Name,
			"rows":      out.Rows,
			"cols":      out.Cols,
			"checksum":  images.Checksum(out),
		}).Debug("operation output")
	}

	return out, nil
}
