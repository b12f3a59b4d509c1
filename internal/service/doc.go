// Package service implements the account and task use cases on top of the
// store interfaces.
//
// UserService owns signup, login and logout, profile updates, account
// deletion and avatars. Operations that touch several stores run inside
// store.RunInTransaction. Lifecycle changes are announced through
// events.EventEmitter, and emit failures never fail the request.
//
// TaskService scopes every lookup to the authenticated owner, so a task that
// belongs to another user is indistinguishable from a missing one.
package service
