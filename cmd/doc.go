// Package cmd implements the command-line interface for inboxreview.
//
// This package provides the following commands:
//   - review: Rewrite every inbox task and move it to the reviewed section
//   - inbox: List the tasks waiting for review
//   - rewrite: Run the rewrite stage on a piece of text
//   - config: Print the effective configuration
//   - serve: Start the MCP server to provide tools for AI assistants
//   - auth: Authorize the Google Tasks backend
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The review command is the default command when no subcommand is specified.
package cmd
