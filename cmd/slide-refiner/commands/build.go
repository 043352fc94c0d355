package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hotmob/notebooklm-slide-refiner/cmd/slide-refiner/ui"
	"github.com/hotmob/notebooklm-slide-refiner/internal/assemble"
	"github.com/hotmob/notebooklm-slide-refiner/internal/imaging"
	"github.com/hotmob/notebooklm-slide-refiner/internal/manifest"
	"github.com/hotmob/notebooklm-slide-refiner/internal/observability"
	"github.com/hotmob/notebooklm-slide-refiner/internal/pipeline"
	"github.com/hotmob/notebooklm-slide-refiner/internal/ratelimit"
	"github.com/hotmob/notebooklm-slide-refiner/internal/refine"
	"github.com/hotmob/notebooklm-slide-refiner/internal/render"
)

var buildFlags struct {
	input             string
	outDir            string
	resolution        string
	dpi               int
	concurrency       int
	rps               float64
	skipRefine        bool
	pages             string
	removeCornerMarks bool
	background        string
	allowPartial      bool
	format            string
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render, refine, and assemble a deck from a document",
	RunE:  runBuild,
}

func init() {
	flags := buildCmd.Flags()
	flags.StringVar(&buildFlags.input, "input", "", "input PDF path")
	flags.StringVar(&buildFlags.outDir, "out", "", "output directory")
	flags.StringVar(&buildFlags.resolution, "resolution", "", "target resolution WxH")
	flags.IntVar(&buildFlags.dpi, "dpi", 0, "render DPI")
	flags.IntVar(&buildFlags.concurrency, "concurrency", 0, "refine concurrency")
	flags.Float64Var(&buildFlags.rps, "rps", -1, "refine requests per second (0 disables limiting)")
	flags.BoolVar(&buildFlags.skipRefine, "skip-refine", false, "skip the refine stage")
	flags.StringVar(&buildFlags.pages, "pages", "", "page selection like 1-3,5,7-9")
	flags.BoolVar(&buildFlags.removeCornerMarks, "remove-corner-marks", true, "ask the refiner to remove corner marks")
	flags.StringVar(&buildFlags.background, "background", "", "letterbox background: black or edge_mean")
	flags.BoolVar(&buildFlags.allowPartial, "allow-partial", false, "tolerate per-page failures")
	flags.StringVar(&buildFlags.format, "format", "", "deck format: pptx or pdf")

	cobra.CheckErr(buildCmd.MarkFlagRequired("input"))
	cobra.CheckErr(buildCmd.MarkFlagRequired("out"))

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	logger := observability.NewLogger(observability.LogConfig{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "slide-refiner",
	})

	// Flags override configured defaults.
	resolutionStr := cfg.Pipeline.Resolution
	if buildFlags.resolution != "" {
		resolutionStr = buildFlags.resolution
	}
	resolution, err := imaging.ParseResolution(resolutionStr)
	if err != nil {
		return err
	}

	backgroundStr := cfg.Pipeline.Background
	if buildFlags.background != "" {
		backgroundStr = buildFlags.background
	}
	background, err := imaging.ParseBackgroundMode(backgroundStr)
	if err != nil {
		return err
	}

	dpi := cfg.Pipeline.DPI
	if buildFlags.dpi > 0 {
		dpi = buildFlags.dpi
	}
	concurrency := cfg.Pipeline.Concurrency
	if buildFlags.concurrency > 0 {
		concurrency = buildFlags.concurrency
	}
	rps := cfg.Pipeline.RPS
	if buildFlags.rps >= 0 {
		rps = buildFlags.rps
	}

	renderer, err := render.NewFitzRenderer(buildFlags.input)
	if err != nil {
		return err
	}
	defer renderer.Close()

	refiner, err := refine.FromConfig(cfg.Refiner)
	if err != nil {
		return err
	}

	limiter, err := newLimiter(rps)
	if err != nil {
		return err
	}

	format := strings.ToLower(buildFlags.format)
	assembler, err := assemble.ForFormat(format)
	if err != nil {
		return err
	}

	manifestWriter, err := manifest.NewWriter(filepath.Join(buildFlags.outDir, "manifest.jsonl"))
	if err != nil {
		return err
	}

	bar := ui.NewProgressBar(1, "rendering")
	barStage := ""
	orch := pipeline.New(renderer, refiner, limiter, assembler, manifestWriter, logger, pipeline.Options{
		OutDir:            buildFlags.outDir,
		DeckPath:          filepath.Join(buildFlags.outDir, deckPath(format)),
		Resolution:        resolution,
		DPI:               dpi,
		Concurrency:       concurrency,
		SkipRefine:        buildFlags.skipRefine,
		Pages:             buildFlags.pages,
		RemoveCornerMarks: buildFlags.removeCornerMarks,
		Background:        background,
		Progress: func(stage string, completed, total int) {
			if stage != barStage {
				barStage = stage
				bar.Describe(stage)
				bar.ChangeMax(int64(total))
			}
			bar.Set(int64(completed))
		},
	})

	outcome, err := orch.Run(cmd.Context())
	bar.Finish()
	if err != nil {
		return err
	}

	if len(outcome.FailedPages) > 0 {
		ui.Warn("Failures on pages: %v", outcome.FailedPages)
		if !buildFlags.allowPartial {
			return fmt.Errorf("%d page(s) failed: %v", len(outcome.FailedPages), outcome.FailedPages)
		}
	}
	ui.Success("Deck written to %s", outcome.DeckPath)
	return nil
}

func deckPath(format string) string {
	if format == "pdf" {
		return "deck.pdf"
	}
	return "deck.pptx"
}

func newLimiter(rps float64) (ratelimit.Limiter, error) {
	switch cfg.Limiter.Kind {
	case "", "memory":
		return ratelimit.NewTokenBucket(rps), nil
	case "file":
		statePath := cfg.Limiter.StatePath
		if statePath == "" {
			statePath = filepath.Join(buildFlags.outDir, ".refine.lock")
		}
		return ratelimit.NewFileLimiter(statePath, rps), nil
	}
	return nil, fmt.Errorf("unknown limiter kind %q", cfg.Limiter.Kind)
}
