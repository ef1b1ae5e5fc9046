// Command ppmfilter applies one filter to a binary pixel-map (P6) image.
//
//	ppmfilter [flags] <input.ppm> <output.ppm> <operation> [args...]
//	ppmfilter [flags] <input1.ppm> <input2.ppm> blend <output.ppm> <alpha>
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nvr-ai/go-ppm/config"
	"github.com/nvr-ai/go-ppm/images"
	"github.com/nvr-ai/go-ppm/operations"
	"github.com/nvr-ai/go-ppm/ppm"
	"github.com/nvr-ai/go-ppm/profiler"
	"github.com/nvr-ai/go-ppm/random"
	"github.com/nvr-ai/go-ppm/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// invocation is the positional layout of one command line.
type invocation struct {
	inputs []string
	output string
	op     operations.Operation
	params operations.Params
}

// run executes the command and returns its exit status.
func run(args []string, stderr io.Writer) int {
	flags := flag.NewFlagSet("ppmfilter", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var (
		configPath = flags.String("config", "", "Path to a YAML configuration file")
		debug      = flags.Bool("debug", false, "Enable debug logging")
		seed       = flags.Uint("seed", 1, "Pointillism seed")
		source     = flags.String("random", string(random.KindGlibc), "Pointillism random source (glibc, go)")
		parallel   = flags.Bool("parallel", false, "Blur rows in parallel")
		profile    = flags.Bool("profile", false, "Log operation timings")
		filter     = flags.String("filter", "lanczos", "Resize filter (nearest, bilinear, bicubic, lanczos, mitchell)")
	)
	flags.Usage = func() { printUsage(stderr, flags) }
	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return ExitSuccess
		}
		return ExitInvalidOpArgs
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "ERROR: %v\n", err)
			return ExitUnspecified
		}
		cfg = loaded
	}

	// Explicit flags win over the file.
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug":
			if *debug {
				cfg.Log.Level = "debug"
			}
		case "seed":
			cfg.Pointillism.Seed = uint32(*seed)
		case "random":
			cfg.Pointillism.Source = random.Kind(*source)
		case "parallel":
			cfg.Blur.Parallel = *parallel
		case "profile":
			cfg.Profile = *profile
		case "filter":
			cfg.Resize.Filter = *filter
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return ExitOpArgsRange
	}

	logger := initLogger(cfg.Log, stderr)

	inv, err := parseInvocation(flags.Args())
	if err != nil {
		logger.WithError(err).Error("invalid command line")
		printUsage(stderr, flags)
		return exitCode(err)
	}

	if err := execute(inv, cfg, logger); err != nil {
		code := exitCode(err)
		logger.WithFields(logrus.Fields{
			"operation": inv.op.Name,
			"exit_code": code,
		}).WithError(err).Error("filter failed")
		return code
	}

	return ExitSuccess
}

// parseInvocation splits positional arguments into inputs, output, operation
// and operation arguments.
func parseInvocation(args []string) (invocation, error) {
	if len(args) < 2 {
		return invocation{}, errors.Wrap(errMissingFilename, "input and output filenames are required")
	}
	if len(args) < 3 {
		return invocation{}, errors.Wrap(operations.ErrUnknownOperation, "no operation given")
	}

	op, err := operations.Lookup(args[2])
	if err != nil {
		return invocation{}, err
	}

	inv := invocation{op: op}
	rest := args[3:]
	if op.Inputs == 2 {
		// Two inputs: the output name follows the operation.
		if len(rest) < 1 {
			return invocation{}, errors.Wrapf(errMissingFilename, "%s needs an output filename", op.Name)
		}
		inv.inputs = []string{args[0], args[1]}
		inv.output = rest[0]
		rest = rest[1:]
	} else {
		inv.inputs = []string{args[0]}
		inv.output = args[1]
	}

	if inv.params, err = op.Parse(rest); err != nil {
		return invocation{}, err
	}

	if !util.HasPPMExtension(inv.output) {
		return invocation{}, errors.Wrapf(errWriteFailed, "output %q lacks a %s extension", inv.output, util.PPMExtension)
	}

	return inv, nil
}

// execute loads, filters and writes one invocation.
func execute(inv invocation, cfg config.Config, logger *logrus.Logger) error {
	filter, err := images.ParseResampleFilter(cfg.Resize.Filter)
	if err != nil {
		return err
	}

	var prof *profiler.Profiler
	if cfg.Profile {
		prof = profiler.New(logger)
		defer prof.Report()
	}

	files, err := util.LoadImageFiles(inv.inputs...)
	if err != nil {
		return err
	}

	inputs := make([]*images.Image, 0, len(files))
	defer func() {
		for _, in := range inputs {
			in.Release()
		}
	}()
	for _, file := range files {
		img, err := decode(file, prof)
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"path": file.Path,
			"rows": img.Rows,
			"cols": img.Cols,
		}).Debug("decoded input")
		inputs = append(inputs, img)
	}

	runner := &operations.Runner{
		Logger:       logger,
		RandomKind:   cfg.Pointillism.Source,
		Seed:         cfg.Pointillism.Seed,
		Blur:         images.BlurOptions{Parallel: cfg.Blur.Parallel},
		ResizeFilter: filter,
		Profiler:     prof,
	}

	out, err := runner.Run(inv.op, inv.params, inputs...)
	if err != nil {
		return err
	}
	defer out.Release()

	if err := ppm.WriteFile(inv.output, out); err != nil {
		return errors.Wrap(errWriteFailed, err.Error())
	}

	logger.WithFields(logrus.Fields{
		"operation": inv.op.Name,
		"output":    inv.output,
		"rows":      out.Rows,
		"cols":      out.Cols,
	}).Info("image written")

	return nil
}

// decode parses one loaded file, timing it when profiling.
func decode(file util.ImageFile, prof *profiler.Profiler) (*images.Image, error) {
	if prof != nil {
		defer prof.StartOperation("decode")()
	}
	img, err := ppm.Decode(bytes.NewReader(file.Data))
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", file.Path)
	}
	return img, nil
}

// initLogger initializes the logger with appropriate level and format.
func initLogger(cfg config.LogConfig, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == config.LogFormatJSON {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: level == logrus.DebugLevel,
		})
	}

	return logger
}

// printUsage writes the command synopsis and the operation list.
func printUsage(w io.Writer, flags *flag.FlagSet) {
	fmt.Fprintln(w, "USAGE: ppmfilter [flags] <input.ppm> <output.ppm> <operation> [args...]")
	fmt.Fprintln(w, "       ppmfilter [flags] <input1.ppm> <input2.ppm> blend <output.ppm> <alpha>")
	fmt.Fprintln(w, "OPERATIONS:")
	for _, op := range operations.List() {
		synopsis := string(op.Name)
		if len(op.Params) > 0 {
			synopsis += " <" + strings.Join(op.Params, "> <") + ">"
		}
		fmt.Fprintf(w, "  %-28s %s\n", synopsis, op.Usage)
	}
	fmt.Fprintln(w, "FLAGS:")
	flags.PrintDefaults()
}
