package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newReviewCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review every inbox task once",
		Long: `Fetch the inbox tasks, rewrite each one with the language model, write the
new text back and move the task to the reviewed section.

A failing rewrite keeps the original text, and a failing update does not
prevent the move (unless --strict-move is set). Interrupting the command
stops it before the next task; unprocessed tasks stay in the inbox.

Progress is logged to stderr. When the run ends, stdout gets a one-line
summary of the per-task outcomes, or "No tasks to process.";
--json replaces it with the full report.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runReview(ctx, cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full run report as JSON instead of a summary")
	return cmd
}

func runReview(ctx context.Context, cmd *cobra.Command, jsonOutput bool) error {
	a, err := newApp(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))

	pipeline, _, err := a.newPipeline(ctx)
	if err != nil {
		return err
	}

	report, runErr := pipeline.Run(ctx)
	if report == nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		if err := writeJSON(out, report); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, report.Summary())
	}
	return runErr
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
