// Package notify sends the transactional e-mails that follow account
// lifecycle events. Sending is detached from the request: messages are
// enqueued as jobs and delivered by the worker pool, and delivery failures
// only reach the logs.
package notify
