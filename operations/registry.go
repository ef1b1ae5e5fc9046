// Package operations - registry of the filters exposed on the command line.
package operations

import (
	"math"
	"sort"
	"strconv"

	"github.com/nvr-ai/go-ppm/images"
	"github.com/pkg/errors"
)

// Name identifies an operation on the command line.
type Name string

// Operation names.
const (
	Grayscale   Name = "grayscale"
	Blend       Name = "blend"
	RotateCCW   Name = "rotate-ccw"
	Pointillism Name = "pointilism"
	Blur        Name = "blur"
	Saturate    Name = "saturate"
	Resize      Name = "resize"
)

// aliases maps alternative spellings onto registered names.
var aliases = map[string]Name{
	"pointillism": Pointillism,
}

var (
	// ErrUnknownOperation is returned by Lookup for unregistered names.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrArgCount is returned when an operation gets the wrong number of arguments.
	ErrArgCount = errors.New("wrong number of operation arguments")
	// ErrArgValue is returned when an argument is not a number or is out of range.
	ErrArgValue = errors.New("invalid operation argument")
)

// Params holds the parsed arguments of an operation. Only the fields named by
// the operation's Params list are set.
type Params struct {
	Alpha float64
	Sigma float64
	Scale float64
	Rows  int
	Cols  int
}

// Operation describes one filter: how many images it reads, which arguments it
// takes and how it runs.
type Operation struct {
	// Name is the registered name.
	Name Name
	// Inputs is the number of input images (2 for blend, 1 otherwise).
	Inputs int
	// Params lists the argument names in command-line order.
	Params []string
	// Usage is a one-line description for help output.
	Usage string

	parse func(args []string) (Params, error)
	apply func(env *Runner, inputs []*images.Image, p Params) (*images.Image, error)
}

// registry holds every operation by name.
var registry = map[Name]Operation{
	Grayscale: {
		Name:   Grayscale,
		Inputs: 1,
		Usage:  "convert to luma-weighted gray",
		parse:  noArgs,
		apply: func(_ *Runner, in []*images.Image, _ Params) (*images.Image, error) {
			return images.Grayscale(in[0]), nil
		},
	},
	Blend: {
		Name:   Blend,
		Inputs: 2,
		Params: []string{"alpha"},
		Usage:  "alpha-blend the first image over the second",
		parse: func(args []string) (p Params, err error) {
			p.Alpha, err = parseFloat("alpha", args[0])
			return p, err
		},
		apply: func(_ *Runner, in []*images.Image, p Params) (*images.Image, error) {
			return images.Blend(in[0], in[1], p.Alpha)
		},
	},
	RotateCCW: {
		Name:   RotateCCW,
		Inputs: 1,
		Usage:  "rotate 90 degrees counter-clockwise",
		parse:  noArgs,
		apply: func(_ *Runner, in []*images.Image, _ Params) (*images.Image, error) {
			return images.RotateCCW(in[0])
		},
	},
	Pointillism: {
		Name:   Pointillism,
		Inputs: 1,
		Usage:  "repaint as seeded colored disks",
		parse:  noArgs,
		apply: func(env *Runner, in []*images.Image, _ Params) (*images.Image, error) {
			src, err := env.newSource()
			if err != nil {
				return nil, err
			}
			return images.Pointillism(in[0], src)
		},
	},
	Blur: {
		Name:   Blur,
		Inputs: 1,
		Params: []string{"sigma"},
		Usage:  "Gaussian blur; sigma 0 leaves the image unchanged",
		parse: func(args []string) (p Params, err error) {
			if p.Sigma, err = parseFloat("sigma", args[0]); err != nil {
				return p, err
			}
			if p.Sigma < 0 {
				return p, errors.Wrapf(ErrArgValue, "sigma must be >= 0, got %v", p.Sigma)
			}
			return p, nil
		},
		apply: func(env *Runner, in []*images.Image, p Params) (*images.Image, error) {
			return images.BlurWithOptions(in[0], p.Sigma, env.Blur)
		},
	},
	Saturate: {
		Name:   Saturate,
		Inputs: 1,
		Params: []string{"scale"},
		Usage:  "scale each channel's distance from gray",
		parse: func(args []string) (p Params, err error) {
			p.Scale, err = parseFloat("scale", args[0])
			return p, err
		},
		apply: func(_ *Runner, in []*images.Image, p Params) (*images.Image, error) {
			return images.Saturate(in[0], p.Scale), nil
		},
	},
	Resize: {
		Name:   Resize,
		Inputs: 1,
		Params: []string{"cols", "rows"},
		Usage:  "resample to cols x rows",
		parse: func(args []string) (p Params, err error) {
			if p.Cols, err = parsePositiveInt("cols", args[0]); err != nil {
				return p, err
			}
			p.Rows, err = parsePositiveInt("rows", args[1])
			return p, err
		},
		apply: func(env *Runner, in []*images.Image, p Params) (*images.Image, error) {
			return images.Resize(in[0], p.Rows, p.Cols, env.ResizeFilter)
		},
	},
}

// Lookup returns the operation registered under name.
//
// Arguments:
// - name: An operation name or alias, e.g. "blur" or "pointillism".
//
// Returns:
// - The operation.
// - ErrUnknownOperation if nothing is registered under name.
func Lookup(name string) (Operation, error) {
	if alias, ok := aliases[name]; ok {
		name = string(alias)
	}
	op, ok := registry[Name(name)]
	if !ok {
		return Operation{}, errors.Wrapf(ErrUnknownOperation, "%q", name)
	}
	return op, nil
}

// List returns every registered operation sorted by name.
func List() []Operation {
	ops := make([]Operation, 0, len(registry))
	for _, op := range registry {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })
	return ops
}

// Parse validates and converts the operation's arguments.
//
// Arguments:
// - args: The raw arguments following the operation name.
//
// Returns:
// - The parsed parameters.
// - ErrArgCount or ErrArgValue.
func (op Operation) Parse(args []string) (Params, error) {
	if len(args) != len(op.Params) {
		return Params{}, errors.Wrapf(ErrArgCount, "%s takes %d argument(s), got %d", op.Name, len(op.Params), len(args))
	}
	return op.parse(args)
}

func noArgs([]string) (Params, error) {
	return Params{}, nil
}

// parseFloat parses a finite decimal number.
func parseFloat(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Wrapf(ErrArgValue, "%s: %q is not a number", name, s)
	}
	return v, nil
}

// parsePositiveInt parses an integer greater than zero.
func parsePositiveInt(name, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(ErrArgValue, "%s: %q is not an integer", name, s)
	}
	if v <= 0 {
		return 0, errors.Wrapf(ErrArgValue, "%s must be > 0, got %d", name, v)
	}
	return v, nil
}
