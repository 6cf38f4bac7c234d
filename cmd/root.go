package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the inboxreview application
var rootCmd = newRootCmd()

// version will be set by main
var version = "dev"

// defaultCommand runs when no subcommand is given.
const defaultCommand = "review"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inboxreview",
		Short: "Rewrites inbox tasks with a language model and files them as reviewed",
		Long: `inboxreview fetches the tasks sitting in your task inbox, asks a language
model to fix their spelling and grammar (translating them if needed), writes
the corrected text back and moves each task to a "reviewed" section.

It can run as:
  - A standalone CLI tool (default, runs one review pass)
  - An MCP (Model Context Protocol) server for AI assistants`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to the configuration file (default: $XDG_CONFIG_HOME/inboxreview/config.yaml). Can also use INBOXREVIEW_CONFIG env var.")
	flags.String("backend", "", "Task backend: todoist or gtasks")
	flags.Bool("dry-run", false, "Fetch and rewrite tasks without writing anything back")
	flags.Bool("strict-move", false, "Do not move a task whose content update failed")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: text or json")
	flags.String("log-file", "", "Also write logs to this file, rotated automatically")

	cmd.AddCommand(newReviewCmd())
	cmd.AddCommand(newInboxCmd())
	cmd.AddCommand(newRewriteCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newAuthCmd())
	cmd.AddCommand(newGenerateDocsCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "inboxreview version %s\n" .Version}}`)
	rootCmd.SetArgs(withDefaultCommand(rootCmd, os.Args[1:]))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withDefaultCommand prepends the default subcommand when args name none, so
// that "inboxreview --dry-run" behaves like "inboxreview review --dry-run".
func withDefaultCommand(root *cobra.Command, args []string) []string {
	if len(args) == 0 {
		return []string{defaultCommand}
	}
	for _, arg := range args {
		switch arg {
		case "-h", "--help", "-v", "--version", "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return args
		}
	}
	if c, _, err := root.Find(args); err == nil && c != root {
		return args
	}
	return append([]string{defaultCommand}, args...)
}
