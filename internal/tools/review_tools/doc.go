// Package review_tools exposes the inbox review pipeline as MCP tools.
//
// Read-only tools, always registered:
//   - review_list_inbox: list the tasks waiting in the inbox
//   - review_rewrite_text: run the rewrite stage on a piece of text
//
// Write tools, registered only when the server runs with --yolo:
//   - review_run: rewrite every inbox task, write it back and move it to the
//     reviewed section; returns the run report as JSON
package review_tools
