// Package driver orchestrates flow analysis over body fixture files: single
// files for the CLI's direct invocation and whole directories in parallel.
package driver

import (
	"context"
	"fmt"

	"javelin/internal/fixture"
	"javelin/internal/flow"
	"javelin/internal/observ"
)

// Options configures one analysis run.
type Options struct {
	Flow          flow.Config
	EnableTimings bool
}

// FileResult is the analysis outcome for one fixture file.
type FileResult struct {
	Path   string
	Name   string
	Result flow.Result
	Timing *observ.Report
	// Steps is the number of cooperative checkpoints the analysis hit.
	Steps int
}

// AnalyzeFile loads one fixture and runs the full analysis on it. The
// context is consulted at the cooperative checkpoints only between phases;
// the analysis itself always runs to completion.
func AnalyzeFile(ctx context.Context, path string, opts Options) (*FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var timer *observ.Timer
	if opts.EnableTimings {
		timer = observ.NewTimer()
	}

	loadPhase := -1
	if timer != nil {
		loadPhase = timer.Begin("load")
	}
	name, b, err := fixture.Load(path)
	if timer != nil {
		timer.End(loadPhase, "")
	}
	if err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}

	steps := 0
	checkpoint := func() { steps++ }

	analyzePhase := -1
	if timer != nil {
		analyzePhase = timer.Begin("analyze")
	}
	result := flow.AnalyzeWithCheckpoint(b, opts.Flow, checkpoint)
	if timer != nil {
		timer.End(analyzePhase, fmt.Sprintf("%d blocks, %d diagnostics", result.Graph.NumBlocks(), len(result.Diagnostics)))
	}

	out := &FileResult{
		Path:   path,
		Name:   name,
		Result: result,
		Steps:  steps,
	}
	if timer != nil {
		report := timer.Report()
		out.Timing = &report
	}
	return out, nil
}
