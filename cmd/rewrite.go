package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRewriteCmd() *cobra.Command {
	var showInstruction bool

	cmd := &cobra.Command{
		Use:   "rewrite <text>",
		Short: "Rewrite a piece of text without touching any task",
		Long: `Run the rewrite stage alone: correct spelling and grammar, translate to the
configured language if needed and cap the length. Useful to try out a new
model or instruction before reviewing the real inbox.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cmd, false)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			pipeline, _, err := a.newPipeline(ctx)
			if err != nil {
				return err
			}

			if showInstruction {
				fmt.Fprintf(cmd.ErrOrStderr(), "instruction: %s\n", pipeline.Instruction())
			}

			out, err := pipeline.Rewrite(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showInstruction, "show-instruction", false, "Print the system instruction sent to the model")
	return cmd
}
