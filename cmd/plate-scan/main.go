package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/plate-tools-mcp/internal/config"
	"github.com/ironsheep/plate-tools-mcp/internal/detection"
	"github.com/ironsheep/plate-tools-mcp/internal/imaging"
	"github.com/ironsheep/plate-tools-mcp/internal/pipeline"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// errUsage marks command-line mistakes, reported with exit code 2.
var errUsage = errors.New("usage error")

type options struct {
	outDir   string
	save     bool
	annotate bool
	workers  int
	version  bool
	inputs   []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}
	if opts.version {
		fmt.Fprintf(stdout, "plate-scan %s (built %s, commit %s)\n", Version, BuildTime, GitCommit)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 2
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}

	logger := config.NewLogger(cfg.LogLevel, stderr)
	log := logger.WithField("run_id", uuid.NewString())

	files, err := expandInputs(opts.inputs)
	if err != nil {
		log.WithError(err).Error("Failed to read inputs")
		return 2
	}
	if len(files) == 0 {
		fmt.Fprintln(stderr, "no supported image files found")
		return 2
	}

	var saver *imaging.PlateSaver
	if opts.save {
		saver, err = imaging.NewPlateSaver(opts.outDir)
		if err != nil {
			log.WithError(err).Error("Failed to prepare output directory")
			return 1
		}
	}

	jobs := make([]pipeline.Job, len(files))
	for i, path := range files {
		jobs[i] = pipeline.Job{
			Name: path,
			Load: func() (*imaging.Frame, error) { return imaging.OpenFrame(path) },
		}
	}

	log.WithFields(logrus.Fields{
		"frames":  len(jobs),
		"workers": cfg.Workers,
	}).Info("Scanning frames")

	processor := pipeline.NewProcessor(cfg, logger)
	results, batchErr := processor.ProcessBatch(ctx, jobs, cfg.Workers)

	failed, found := 0, 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(stdout, "%s\terror: %v\n", r.Name, r.Err)
			continue
		}
		if !r.Result.Found() {
			fmt.Fprintf(stdout, "%s\tno plate\n", r.Name)
			continue
		}
		found++

		c := r.Result.Candidate
		line := fmt.Sprintf("%s\tplate x=%d y=%d w=%d h=%d aspect=%.2f",
			r.Name, c.BoundingBox.X, c.BoundingBox.Y, c.BoundingBox.Width, c.BoundingBox.Height, c.AspectRatio())

		if saver != nil {
			saved, err := savePlate(saver, r, opts.annotate)
			if err != nil {
				log.WithError(err).WithField("frame", r.Name).Warn("Failed to save plate")
			} else {
				line += "\tsaved " + saved.OriginalPath
			}
		}
		fmt.Fprintln(stdout, line)
	}

	log.WithFields(logrus.Fields{
		"frames": len(results),
		"found":  found,
		"failed": failed,
	}).Info("Scan complete")

	if batchErr != nil {
		log.WithError(batchErr).Warn("Scan interrupted")
	}
	if failed == len(results) {
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("plate-scan", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.outDir, "out", "Plates", "directory for saved plate images")
	fs.BoolVar(&opts.save, "save", false, "save original and enhanced plate crops")
	fs.BoolVar(&opts.annotate, "annotate", false, "with -save, also save the frame with the plate outlined")
	fs.IntVar(&opts.workers, "workers", 0, fmt.Sprintf("concurrent frames (default PLATE_WORKERS or %d)", runtime.NumCPU()))
	fs.BoolVar(&opts.version, "version", false, "print version information")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: plate-scan [flags] <file|dir>...")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.inputs = fs.Args()

	if opts.version {
		return opts, nil
	}
	if len(opts.inputs) == 0 {
		fs.Usage()
		return nil, fmt.Errorf("%w: no input files", errUsage)
	}
	if opts.workers < 0 {
		return nil, fmt.Errorf("%w: -workers must not be negative", errUsage)
	}
	if opts.annotate && !opts.save {
		return nil, fmt.Errorf("%w: -annotate requires -save", errUsage)
	}
	return opts, nil
}

// expandInputs replaces each directory with the supported images directly
// inside it, sorted by name. Files named explicitly are kept as given.
func expandInputs(inputs []string) ([]string, error) {
	var files []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, in)
			continue
		}

		entries, err := os.ReadDir(in)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() || !imaging.IsSupported(e.Name()) {
				continue
			}
			found = append(found, filepath.Join(in, e.Name()))
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

// savePlate writes one detected plate. The annotated frame is reloaded from
// disk because batch results keep only the region.
func savePlate(saver *imaging.PlateSaver, r pipeline.BatchResult, annotate bool) (*imaging.SavedPlate, error) {
	var annotated *imaging.Frame
	if annotate {
		frame, err := imaging.OpenFrame(r.Name)
		if err != nil {
			return nil, err
		}
		annotated, err = detection.Annotate(frame, r.Result.Candidate, detection.DefaultAnnotationStyle())
		if err != nil {
			return nil, err
		}
	}
	return saver.Save(r.Result.Region, r.Result.Enhanced, annotated)
}
