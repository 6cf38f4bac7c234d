// Package gtasks provides a Google Tasks backend for the review pipeline.
//
// Google Tasks has no sections, so the backend maps the review model onto
// task lists and subtasks:
//   - a project is a task list
//   - the reviewed section is a top-level "heading" task in that list
//   - an inbox task is a top-level task that is not the heading
//   - relocating a task makes it a subtask of the heading
//
// # Authentication
//
// The client uses OAuth2 tokens stored per account by the google package.
// Run "inboxreview auth" once to authorize an account.
//
// # Example Usage
//
//	client, err := gtasks.NewClient(ctx, httpClient)
//	if err != nil {
//	    return err
//	}
//	src := gtasks.NewSource(client, listID, headingID)
//	inbox, err := src.ListTasks(ctx, listID)
package gtasks
