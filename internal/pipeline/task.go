package pipeline

import (
	"fmt"
	"path/filepath"
)

// Render statuses.
const (
	StatusRendered      = "rendered"
	StatusSkippedRender = "skipped_render"
	StatusFailed        = "failed"
)

// Refine statuses. SkipRefine means the caller disabled the stage;
// SkippedRefine means an enhanced file already existed.
const (
	StatusRefined       = "refined"
	StatusSkipRefine    = "skip_refine"
	StatusSkippedRefine = "skipped_refine"
)

// Task identifies one unit of work: a page index and its derived file
// paths. Constructed once per selected page; immutable thereafter.
type Task struct {
	PageIndex    int
	RawPath      string
	EnhancedPath string
}

// NewTask derives a task's file paths purely from its page index, which is
// what makes re-running over the same output directory idempotent at the
// file level.
func NewTask(outDir string, pageIndex int) Task {
	name := fmt.Sprintf("page_%04d.png", pageIndex+1)
	return Task{
		PageIndex:    pageIndex,
		RawPath:      filepath.Join(outDir, "pages", "raw", name),
		EnhancedPath: filepath.Join(outDir, "pages", "enhanced", name),
	}
}

// RenderOutcome is the render stage's result for one page.
type RenderOutcome struct {
	PageIndex  int
	RawPath    string
	DurationMS int64
	Status     string
}

// RefineOutcome is the refine stage's result for one page. OutputPath is the
// path that flows into assembly: the enhanced path on success, the raw path
// on skip or failure.
type RefineOutcome struct {
	PageIndex    int
	EnhancedPath *string
	OutputPath   string
	DurationMS   int64
	Status       string
	Error        *string
}

// Outcome is the overall run result. FailedPages is the sorted, one-based
// list of pages that failed either stage; DeckPath is empty when assembly
// did not run.
type Outcome struct {
	FailedPages []int
	DeckPath    string
}
