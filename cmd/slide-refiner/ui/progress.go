// Package ui provides terminal output helpers for the slide-refiner CLI.
package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// ProgressBar wraps a progressbar instance for deterministic progress display.
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// NewProgressBar creates a progress bar with the given total and description.
func NewProgressBar(total int64, description string) *ProgressBar {
	bar := progressbar.NewOptions64(
		total,
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
	)
	return &ProgressBar{bar: bar}
}

// Set moves the bar to the given position.
func (p *ProgressBar) Set(current int64) {
	_ = p.bar.Set64(current)
}

// Describe updates the bar's description text.
func (p *ProgressBar) Describe(description string) {
	p.bar.Describe(description)
}

// ChangeMax updates the bar's total.
func (p *ProgressBar) ChangeMax(total int64) {
	p.bar.ChangeMax64(total)
}

// Finish completes the bar.
func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
}

// Success prints a green success line.
func Success(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(os.Stdout, format+"\n", args...)
}

// Warn prints a yellow warning line.
func Warn(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(os.Stdout, format+"\n", args...)
}

// Fail prints a red failure line.
func Fail(format string, args ...any) {
	color.New(color.FgRed).Fprintf(os.Stdout, format+"\n", args...)
}
