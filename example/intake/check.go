package main

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"github.com/tbxark/reliefwizard/disaster"
	"github.com/tbxark/reliefwizard/field"
	"github.com/tbxark/reliefwizard/types"
)

// check <file>: validate a JSON object of field values against every step.
func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a report given as JSON field values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var values map[string]any
			if err := sonic.Unmarshal(data, &values); err != nil {
				return fmt.Errorf("failed to decode %s: %w", args[0], err)
			}
			engine, err := disaster.NewEngine()
			if err != nil {
				return err
			}
			snapshot := field.NewSnapshot(engine.Schema(), values)

			out := cmd.OutOrStdout()
			failed := 0
			for i := 1; i <= engine.StepCount(); i++ {
				step, _ := engine.Step(i)
				result := engine.ValidateStep(i, snapshot)
				if result.Valid() {
					fmt.Fprintf(out, "step %d %s: ok\n", i, step.Title)
					continue
				}
				failed++
				fmt.Fprintf(out, "step %d %s:\n%s\n", i, step.Title, types.FormatIssues(result.Issues(engine.Schema())))
			}
			if failed > 0 {
				return fmt.Errorf("%d step(s) failed validation", failed)
			}
			return nil
		},
	}
}
