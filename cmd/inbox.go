package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxreview/internal/logging"
)

func newInboxCmd() *cobra.Command {
	var (
		jsonOutput bool
		listLists  bool
	)

	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "List the tasks waiting for review",
		Long: `List the tasks waiting for review without changing them. Only the task
service credential is needed; the language model is never called.

With --lists, print the task lists of the gtasks backend instead, to find the
ID to configure as inbox_project_id.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cmd, false)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			pipeline, be, err := a.newInboxPipeline(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if listLists {
				if be.lists == nil {
					return fmt.Errorf("--lists is not supported by the %s backend", pipeline.Backend())
				}
				lists, err := be.lists.ListTaskLists(ctx)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(out, lists)
				}
				for _, l := range lists {
					fmt.Fprintf(out, "%s\t%s\n", l.ID, l.Title)
				}
				return nil
			}

			tasks, err := pipeline.Inbox(ctx)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(out, tasks)
			}
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks to process.")
				return nil
			}
			for _, t := range tasks {
				fmt.Fprintf(out, "%s\t%s\n", t.ID, logging.Preview(t.Content, 80))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print tasks as JSON")
	cmd.Flags().BoolVar(&listLists, "lists", false, "List the backend's task lists instead of the inbox (gtasks)")
	return cmd
}
