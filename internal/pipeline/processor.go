// Package pipeline chains plate selection and enhancement for one frame at a
// time, and fans independent frames out over a bounded worker pool.
package pipeline

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/plate-tools-mcp/internal/config"
	"github.com/ironsheep/plate-tools-mcp/internal/detection"
	"github.com/ironsheep/plate-tools-mcp/internal/enhance"
	"github.com/ironsheep/plate-tools-mcp/internal/imaging"
)

// Result is the outcome of processing one frame.
type Result struct {
	// Candidate is the selected plate, or nil when the frame has none.
	Candidate *detection.PlateCandidate

	// Region is the frame crop under the candidate's bounding box.
	Region *imaging.Frame

	// Enhanced is the binarised, upscaled region.
	Enhanced *imaging.GrayImage
}

// Found reports whether a plate candidate was selected.
func (r *Result) Found() bool {
	return r != nil && r.Candidate != nil
}

// Processor runs the selector and the enhancer with fixed parameters.
//
// A Processor holds only read-only configuration and a logger, so one value
// may be shared by any number of goroutines.
type Processor struct {
	detection detection.Params
	enhance   enhance.Params
	logger    *logrus.Logger
}

// NewProcessor creates a processor from cfg. A nil cfg uses the calibrated defaults.
func NewProcessor(cfg *config.Config, logger *logrus.Logger) *Processor {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Processor{
		detection: cfg.Detection,
		enhance:   cfg.Enhance,
		logger:    logger,
	}
}

// DetectionParams returns the selector parameters in use.
func (p *Processor) DetectionParams() detection.Params {
	return p.detection
}

// EnhanceParams returns the enhancer parameters in use.
func (p *Processor) EnhanceParams() enhance.Params {
	return p.enhance
}

// Process selects a plate candidate in frame and, when one is found, enhances it.
//
// A frame without a plate returns a Result whose Candidate is nil and a nil
// error. Errors are returned only for malformed input.
func (p *Processor) Process(frame *imaging.Frame) (*Result, error) {
	start := time.Now()

	candidate, region, err := detection.SelectCandidate(frame, p.detection)
	if err != nil {
		return nil, err
	}

	result := &Result{Candidate: candidate, Region: region}
	if candidate == nil {
		p.logger.WithField("duration_ms", time.Since(start).Milliseconds()).Debug("No plate candidate in frame")
		return result, nil
	}

	enhanced, err := enhance.Enhance(region, p.enhance)
	if err != nil {
		return nil, err
	}
	result.Enhanced = enhanced

	p.logger.WithFields(logrus.Fields{
		"bbox":         candidate.BoundingBox,
		"aspect_ratio": candidate.AspectRatio(),
		"duration_ms":  time.Since(start).Milliseconds(),
	}).Debug("Plate candidate selected")

	return result, nil
}

// Job is one frame of a batch. Load is called on a worker goroutine, so
// decoding happens in parallel with processing.
type Job struct {
	Name string
	Load func() (*imaging.Frame, error)
}

// BatchResult pairs a job with its outcome. Exactly one of Result and Err is set.
type BatchResult struct {
	Name   string
	Result *Result
	Err    error
}

// ProcessBatch processes jobs on at most workers goroutines and returns the
// outcomes in job order.
//
// A failing frame only affects its own BatchResult. Once ctx is cancelled no
// further jobs are started; the skipped jobs carry ctx.Err() and ProcessBatch
// returns it as well.
func (p *Processor) ProcessBatch(ctx context.Context, jobs []Job, workers int) ([]BatchResult, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]BatchResult, len(jobs))
	var g errgroup.Group
	g.SetLimit(workers)

	for i, job := range jobs {
		results[i].Name = job.Name
		if ctx.Err() != nil {
			results[i].Err = ctx.Err()
			continue
		}
		g.Go(func() error {
			results[i] = p.runJob(ctx, job)
			return nil
		})
	}
	_ = g.Wait()

	return results, ctx.Err()
}

func (p *Processor) runJob(ctx context.Context, job Job) BatchResult {
	out := BatchResult{Name: job.Name}
	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}

	log := p.logger.WithField("frame", job.Name)

	frame, err := job.Load()
	if err != nil {
		log.WithError(err).Warn("Failed to load frame")
		out.Err = err
		return out
	}

	res, err := p.Process(frame)
	if err != nil {
		log.WithError(err).Warn("Failed to process frame")
		out.Err = err
		return out
	}

	out.Result = res
	return out
}
