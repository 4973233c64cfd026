// Package handlers exposes the SMTP tester operations as a JSON API.
//
// Every handler records what it does in the shared activity log, so the log
// endpoint shows the same lines an operator would see in a terminal session:
//
//	POST   /api/test-connection   verify a session without sending
//	POST   /api/send-email        verify, then send one message
//	POST   /api/batch             start a paced batch
//	GET    /api/batch             batch state and progress
//	POST   /api/batch/pause       hold before the next attempt
//	POST   /api/batch/resume      continue from the next unsent index
//	POST   /api/batch/cancel      stop the batch
//	GET    /api/logs?limit=N      activity log, newest first
//	DELETE /api/logs              clear the activity log
//	POST   /api/preflight         DNS lookup for an SMTP host
//
// Send and batch requests accept either JSON or multipart/form-data. In
// multipart bodies recipient lists are comma separated and files are sent in
// the repeated "attachments" field.
package handlers
