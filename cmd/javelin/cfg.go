package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"javelin/internal/fixture"
	"javelin/internal/flow"
)

var cfgCmd = &cobra.Command{
	Use:   "cfg [flags] <file.jfb>",
	Short: "Dump the control-flow graph of a body fixture",
	Long:  `Build and print the basic-block graph of a lowered method body, marking unreachable blocks`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCfg,
}

func init() {
	cfgCmd.Flags().Bool("validate", false, "check graph well-formedness and fail on violations")
}

func runCfg(cmd *cobra.Command, args []string) error {
	validate, err := cmd.Flags().GetBool("validate")
	if err != nil {
		return fmt.Errorf("failed to get validate flag: %w", err)
	}

	name, b, err := fixture.Load(args[0])
	if err != nil {
		return err
	}

	g := flow.Build(b)
	if validate {
		if err := flow.Validate(g); err != nil {
			return fmt.Errorf("invalid graph for %s: %w", name, err)
		}
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if !quiet && name != "" {
		fmt.Fprintf(os.Stdout, "== %s ==\n", name)
	}
	return flow.DumpGraph(os.Stdout, g, flow.Reachability(g))
}
