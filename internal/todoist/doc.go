// Package todoist provides a minimal client for the Todoist REST API (v2).
//
// Only the calls needed to triage an inbox are implemented:
//   - listing the active tasks of a project
//   - listing the sections of a project
//   - updating a task's content
//   - moving a task into a section
//
// Every request carries the API token as a Bearer credential and passes through
// a client-side rate limiter so long inboxes stay under Todoist's request quota.
//
// # Example Usage
//
//	client := todoist.NewClient(token)
//	tasks, err := client.ListTasks(ctx, "2240869572")
//	if err != nil {
//	    return err
//	}
//	for _, t := range tasks {
//	    if !t.HasSection() {
//	        _ = client.MoveToSection(ctx, t.ID, "185733968")
//	    }
//	}
package todoist
