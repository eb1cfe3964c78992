package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"javelin/internal/diagfmt"
	"javelin/internal/driver"
	"javelin/internal/flow"
	"javelin/internal/project"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] <file.jfb|directory>",
	Short: "Run flow analysis on a body fixture or a directory of fixtures",
	Long:  `Run control-flow and dataflow analysis over lowered method bodies, reporting unreachable code, use-before-assignment and possible null dereferences`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	analyzeCmd.Flags().Bool("no-unreachable", false, "suppress unreachable-code diagnostics")
	analyzeCmd.Flags().Bool("no-null-deref", false, "suppress possible-null-dereference diagnostics")
	analyzeCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	analyzeCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
}

// analysisConfig resolves the flow configuration: manifest defaults first,
// then command-line overrides.
func analysisConfig(cmd *cobra.Command, startDir string) (flow.Config, error) {
	manifest, _, err := project.Load(startDir)
	if err != nil {
		return flow.Config{}, err
	}
	cfg := manifest.FlowConfig()

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return flow.Config{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if maxDiagnostics > 0 {
		cfg.MaxDiagnostics = maxDiagnostics
	}

	noUnreachable, err := cmd.Flags().GetBool("no-unreachable")
	if err != nil {
		return flow.Config{}, fmt.Errorf("failed to get no-unreachable flag: %w", err)
	}
	if noUnreachable {
		cfg.ReportUnreachable = false
	}

	noNullDeref, err := cmd.Flags().GetBool("no-null-deref")
	if err != nil {
		return flow.Config{}, fmt.Errorf("failed to get no-null-deref flag: %w", err)
	}
	if noNullDeref {
		cfg.ReportPossibleNullDeref = false
	}

	return cfg, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}

	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}

	startDir := path
	if !st.IsDir() {
		startDir = "."
	}
	cfg, err := analysisConfig(cmd, startDir)
	if err != nil {
		return err
	}

	opts := driver.Options{Flow: cfg, EnableTimings: showTimings}

	colored, err := useColor(cmd)
	if err != nil {
		return err
	}
	prettyOpts := diagfmt.PrettyOpts{Color: colored, ShowNotes: withNotes}

	hadErrors := false
	if st.IsDir() {
		jobs, err := cmd.Flags().GetInt("jobs")
		if err != nil {
			return fmt.Errorf("failed to get jobs flag: %w", err)
		}
		results, err := driver.AnalyzeDir(cmd.Context(), path, opts, jobs)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		hadErrors = driver.HasErrors(results)

		for idx, r := range results {
			if r.Err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", r.Path, r.Err)
				continue
			}
			switch format {
			case "pretty":
				if !quiet {
					if idx > 0 {
						fmt.Fprintln(os.Stdout)
					}
					fmt.Fprintf(os.Stdout, "== %s ==\n", r.Path)
				}
				diagfmt.Pretty(os.Stdout, r.Result.Result.Diagnostics, prettyOpts)
			case "json":
				if err := diagfmt.JSON(os.Stdout, r.Result.Name, r.Result.Result.Diagnostics, r.Result.Timing); err != nil {
					return fmt.Errorf("failed to format diagnostics: %w", err)
				}
			}
			if showTimings && r.Result.Timing != nil && format == "pretty" {
				printTimings(r.Result)
			}
		}
	} else {
		result, err := driver.AnalyzeFile(cmd.Context(), path, opts)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		hadErrors = driver.HasErrors([]driver.DirResult{{Path: path, Result: result}})

		switch format {
		case "pretty":
			diagfmt.Pretty(os.Stdout, result.Result.Diagnostics, prettyOpts)
		case "json":
			if err := diagfmt.JSON(os.Stdout, result.Name, result.Result.Diagnostics, result.Timing); err != nil {
				return fmt.Errorf("failed to format diagnostics: %w", err)
			}
		}
		if showTimings && result.Timing != nil && format == "pretty" {
			printTimings(result)
		}
	}

	if hadErrors {
		// Suppress cobra usage output on diagnostic errors.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("")
	}
	return nil
}

func printTimings(r *driver.FileResult) {
	fmt.Fprintf(os.Stderr, "timings for %s:\n", r.Path)
	for _, p := range r.Timing.Phases {
		fmt.Fprintf(os.Stderr, "  %-12s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			fmt.Fprintf(os.Stderr, "  // %s", p.Note)
		}
		fmt.Fprintln(os.Stderr)
	}
	fmt.Fprintf(os.Stderr, "  %-12s %7.2f ms\n", "total", r.Timing.TotalMS)
}
