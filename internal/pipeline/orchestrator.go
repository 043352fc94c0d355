// Package pipeline drives the per-page render and refine workflow.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/hotmob/notebooklm-slide-refiner/internal/assemble"
	"github.com/hotmob/notebooklm-slide-refiner/internal/fsutil"
	"github.com/hotmob/notebooklm-slide-refiner/internal/imaging"
	"github.com/hotmob/notebooklm-slide-refiner/internal/manifest"
	"github.com/hotmob/notebooklm-slide-refiner/internal/pages"
	"github.com/hotmob/notebooklm-slide-refiner/internal/ratelimit"
	"github.com/hotmob/notebooklm-slide-refiner/internal/refine"
	"github.com/hotmob/notebooklm-slide-refiner/internal/render"
	"github.com/hotmob/notebooklm-slide-refiner/internal/retry"
)

var (
	// ErrNoPagesSelected indicates the page selection resolved to nothing.
	ErrNoPagesSelected = errors.New("no pages selected for processing")
	// ErrNoOutputImages indicates every selected page failed, leaving
	// nothing to assemble.
	ErrNoOutputImages = errors.New("no output images available for assembly")
)

// Options configures one pipeline run.
type Options struct {
	OutDir            string
	DeckPath          string
	Resolution        imaging.Resolution
	DPI               int
	Concurrency       int
	SkipRefine        bool
	Pages             string
	RemoveCornerMarks bool
	Background        imaging.BackgroundMode
	MaxAttempts       int

	// Progress, when set, is called once per page as each stage completes.
	Progress func(stage string, completed, total int)
}

// Orchestrator owns one run of the page-processing pipeline. It enforces
// refine concurrency and rate limits, skips work whose output already
// exists, aggregates partial failures, and decides whether assembly runs.
type Orchestrator struct {
	renderer  render.Renderer
	refiner   refine.Refiner
	limiter   ratelimit.Limiter
	assembler assemble.Assembler
	manifest  *manifest.Writer
	logger    zerolog.Logger
	opts      Options

	// backoffSleep overrides the retry backoff wait in tests.
	backoffSleep func(ctx context.Context, d time.Duration) error
}

// New creates an orchestrator. The limiter is constructed once per run and
// threaded through every refine task.
func New(
	renderer render.Renderer,
	refiner refine.Refiner,
	limiter ratelimit.Limiter,
	assembler assemble.Assembler,
	manifestWriter *manifest.Writer,
	logger zerolog.Logger,
	opts Options,
) *Orchestrator {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = retry.DefaultMaxAttempts
	}
	if opts.DeckPath == "" {
		opts.DeckPath = filepath.Join(opts.OutDir, "deck.pptx")
	}
	return &Orchestrator{
		renderer:  renderer,
		refiner:   refiner,
		limiter:   limiter,
		assembler: assembler,
		manifest:  manifestWriter,
		logger:    logger,
		opts:      opts,
	}
}

// Run executes the pipeline: select pages, render, refine, aggregate into
// the manifest, and assemble the deck. Per-page failures never abort
// sibling pages; only selection-time and assembly-time emptiness are fatal.
func (o *Orchestrator) Run(ctx context.Context) (Outcome, error) {
	indices, err := pages.Parse(o.opts.Pages, o.renderer.PageCount())
	if err != nil {
		return Outcome{}, err
	}
	if len(indices) == 0 {
		return Outcome{}, ErrNoPagesSelected
	}

	tasks := make([]Task, 0, len(indices))
	for _, idx := range indices {
		tasks = append(tasks, NewTask(o.opts.OutDir, idx))
	}

	renderOutcomes, renderErrors := o.renderStage(ctx, tasks)
	refineOutcomes := o.refineStage(ctx, tasks, renderErrors)

	imagePaths, failedPages, err := o.aggregate(tasks, renderOutcomes, refineOutcomes, renderErrors)
	if err != nil {
		return Outcome{FailedPages: failedPages}, err
	}

	if len(imagePaths) == 0 {
		o.logger.Error().Msg("no images available to assemble deck")
		return Outcome{FailedPages: failedPages}, ErrNoOutputImages
	}

	if err := o.assembler.Assemble(imagePaths, o.opts.DeckPath, o.opts.Resolution); err != nil {
		return Outcome{FailedPages: failedPages}, fmt.Errorf("assemble deck: %w", err)
	}
	o.logger.Info().
		Str("deck", o.opts.DeckPath).
		Int("slides", len(imagePaths)).
		Ints("failed_pages", failedPages).
		Msg("deck assembled")

	return Outcome{FailedPages: failedPages, DeckPath: o.opts.DeckPath}, nil
}

// renderStage runs sequentially in page order; local rendering has no
// external rate constraint. Failed pages are remembered for aggregation and
// excluded from refine.
func (o *Orchestrator) renderStage(ctx context.Context, tasks []Task) (map[int]RenderOutcome, map[int]string) {
	outcomes := make(map[int]RenderOutcome, len(tasks))
	failures := make(map[int]string)

	for i, task := range tasks {
		outcome := o.renderOne(ctx, task, failures)
		outcomes[task.PageIndex] = outcome
		if o.opts.Progress != nil {
			o.opts.Progress("render", i+1, len(tasks))
		}
	}
	return outcomes, failures
}

func (o *Orchestrator) renderOne(ctx context.Context, task Task, failures map[int]string) RenderOutcome {
	if fsutil.Exists(task.RawPath) {
		o.logger.Debug().Int("page", task.PageIndex+1).Msg("raw image exists, skipping render")
		return RenderOutcome{
			PageIndex: task.PageIndex,
			RawPath:   task.RawPath,
			Status:    StatusSkippedRender,
		}
	}

	start := time.Now()
	img, err := o.renderer.RenderPage(ctx, task.PageIndex, o.opts.DPI, o.opts.Resolution, o.opts.Background)
	if err == nil {
		var buf bytes.Buffer
		if encodeErr := png.Encode(&buf, img); encodeErr != nil {
			err = fmt.Errorf("encode page %d: %w", task.PageIndex+1, encodeErr)
		} else {
			err = fsutil.WriteAtomic(task.RawPath, buf.Bytes())
		}
	}
	durationMS := time.Since(start).Milliseconds()

	if err != nil {
		o.logger.Warn().Int("page", task.PageIndex+1).Err(err).Msg("render failed")
		failures[task.PageIndex] = err.Error()
		return RenderOutcome{
			PageIndex: task.PageIndex,
			RawPath:   task.RawPath,
			Status:    StatusFailed,
		}
	}

	o.logger.Info().
		Int("page", task.PageIndex+1).
		Int64("duration_ms", durationMS).
		Msg("page rendered")
	return RenderOutcome{
		PageIndex:  task.PageIndex,
		RawPath:    task.RawPath,
		DurationMS: durationMS,
		Status:     StatusRendered,
	}
}

// refineStage fans out one goroutine per non-failed page, bounded by the
// concurrency semaphore and the shared rate limiter. Results arrive in
// completion order and are re-sorted by page index before aggregation.
func (o *Orchestrator) refineStage(ctx context.Context, tasks []Task, renderErrors map[int]string) []RefineOutcome {
	eligible := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		if _, failed := renderErrors[task.PageIndex]; !failed {
			eligible = append(eligible, task)
		}
	}

	if o.opts.SkipRefine {
		outcomes := make([]RefineOutcome, 0, len(eligible))
		for _, task := range eligible {
			outcomes = append(outcomes, RefineOutcome{
				PageIndex:  task.PageIndex,
				OutputPath: task.RawPath,
				Status:     StatusSkipRefine,
			})
		}
		return outcomes
	}

	prompt := refine.LoadPrompt(o.opts.RemoveCornerMarks)
	policy := retry.New(o.opts.MaxAttempts, refine.IsRetryable)
	policy.Sleep = o.backoffSleep
	sem := semaphore.NewWeighted(int64(o.opts.Concurrency))
	results := make(chan RefineOutcome, len(eligible))

	var wg sync.WaitGroup
	for _, task := range eligible {
		wg.Add(1)
		go func(task Task) {
			defer wg.Done()
			results <- o.refineOne(ctx, task, prompt, policy, sem)
		}(task)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	// Drain while workers run so progress reports per completed page, not
	// in one burst at stage end.
	var done int
	outcomes := make([]RefineOutcome, 0, len(eligible))
	for outcome := range results {
		outcomes = append(outcomes, outcome)
		done++
		if o.opts.Progress != nil {
			o.opts.Progress("refine", done, len(eligible))
		}
	}
	// Completion order across tasks is unconstrained; downstream ordering
	// must never depend on it.
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].PageIndex < outcomes[j].PageIndex })
	return outcomes
}

func (o *Orchestrator) refineOne(ctx context.Context, task Task, prompt string, policy *retry.Policy, sem *semaphore.Weighted) RefineOutcome {
	if fsutil.Exists(task.EnhancedPath) {
		o.logger.Debug().Int("page", task.PageIndex+1).Msg("enhanced image exists, skipping refine")
		enhanced := task.EnhancedPath
		return RefineOutcome{
			PageIndex:    task.PageIndex,
			EnhancedPath: &enhanced,
			OutputPath:   enhanced,
			Status:       StatusSkippedRefine,
		}
	}

	start := time.Now()
	err := func() error {
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		defer sem.Release(1)
		// Each attempt consumes a limiter token; the concurrency slot is
		// held across all attempts.
		return policy.Do(ctx, func(ctx context.Context) error {
			if err := o.limiter.Acquire(ctx); err != nil {
				return err
			}
			return o.refiner.Refine(ctx, task.RawPath, task.EnhancedPath, prompt)
		})
	}()
	durationMS := time.Since(start).Milliseconds()

	if err != nil {
		o.logger.Warn().Int("page", task.PageIndex+1).Err(err).Msg("refine failed")
		message := err.Error()
		return RefineOutcome{
			PageIndex:  task.PageIndex,
			OutputPath: task.RawPath,
			DurationMS: durationMS,
			Status:     StatusFailed,
			Error:      &message,
		}
	}

	o.logger.Info().
		Int("page", task.PageIndex+1).
		Int64("duration_ms", durationMS).
		Msg("page refined")
	enhanced := task.EnhancedPath
	return RefineOutcome{
		PageIndex:    task.PageIndex,
		EnhancedPath: &enhanced,
		OutputPath:   enhanced,
		DurationMS:   durationMS,
		Status:       StatusRefined,
	}
}

// aggregate merges render and refine outcomes into one manifest entry per
// selected page, in page-index order, and collects the ordered image list
// for assembly. Failed pages are logged but excluded from the list.
func (o *Orchestrator) aggregate(
	tasks []Task,
	renderOutcomes map[int]RenderOutcome,
	refineOutcomes []RefineOutcome,
	renderErrors map[int]string,
) ([]string, []int, error) {
	refineByPage := make(map[int]RefineOutcome, len(refineOutcomes))
	for _, outcome := range refineOutcomes {
		refineByPage[outcome.PageIndex] = outcome
	}

	var imagePaths []string
	var failedPages []int

	for _, task := range tasks {
		renderOutcome := renderOutcomes[task.PageIndex]
		refineOutcome, ok := refineByPage[task.PageIndex]
		if !ok {
			// Render failed upstream; refine was never attempted.
			message := renderErrors[task.PageIndex]
			refineOutcome = RefineOutcome{
				PageIndex:  task.PageIndex,
				OutputPath: renderOutcome.RawPath,
				Status:     StatusFailed,
				Error:      &message,
			}
		}

		entryError := refineOutcome.Error
		if entryError == nil {
			if message, failed := renderErrors[task.PageIndex]; failed {
				entryError = &message
			}
		}

		entry := manifest.Entry{
			PageIndex:    task.PageIndex,
			RawPath:      renderOutcome.RawPath,
			EnhancedPath: refineOutcome.EnhancedPath,
			Status:       refineOutcome.Status,
			DurationMS:   renderOutcome.DurationMS + refineOutcome.DurationMS,
			Error:        entryError,
		}
		if err := o.manifest.Append(entry); err != nil {
			return nil, failedPages, fmt.Errorf("append manifest entry for page %d: %w", task.PageIndex+1, err)
		}

		if refineOutcome.Status == StatusFailed {
			failedPages = append(failedPages, task.PageIndex+1)
		} else {
			imagePaths = append(imagePaths, refineOutcome.OutputPath)
		}
	}

	sort.Ints(failedPages)
	return imagePaths, failedPages, nil
}
